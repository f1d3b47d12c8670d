package model

import "time"

// User represents a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"_id" bson:"_id"`
	FullName     string    `json:"fullName" bson:"fullName"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"`
	ProfilePic   string    `json:"profilePic" bson:"profilePic"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}
