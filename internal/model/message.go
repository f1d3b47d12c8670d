package model

import (
	"time"

	"github.com/google/uuid"
)

// Message represents a direct message between two users
type Message struct {
	ID         string    `json:"_id" bson:"_id"`
	SenderID   string    `json:"senderId" bson:"senderId"`
	ReceiverID string    `json:"receiverId" bson:"receiverId"`
	Text       string    `json:"text,omitempty" bson:"text,omitempty"`
	Image      string    `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// Realtime event names pushed to WebSocket clients
const (
	EventOnlineUsers = "getOnlineUsers"
	EventNewMessage  = "newMessage"
)

// Event is the envelope for every server→client WebSocket frame
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NewID returns a time-ordered identifier so that ties on created_at sort by insertion
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
