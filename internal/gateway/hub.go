package gateway

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"pulsechat/internal/model"
	"pulsechat/internal/presence"
)

// Hub owns every live connection and the presence registry built from them
type Hub struct {
	presence *presence.Registry[*Client]

	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		presence: presence.NewRegistry[*Client](),
		clients:  make(map[*Client]bool),
	}
}

// Attach serves an upgraded connection until it closes. A non-empty userID
// registers the connection in the presence registry; an empty one leaves it
// anonymous, receiving broadcasts only.
func (h *Hub) Attach(conn *websocket.Conn, userID string) {
	c := newClient(h, conn, userID)

	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()

	if userID != "" {
		h.presence.Register(userID, c)
		log.Printf("[WebSocket] User %s connected. Total clients: %d", userID, total)
	} else {
		log.Printf("[WebSocket] Anonymous connection. Total clients: %d", total)
	}

	h.broadcastOnlineUsers()

	go c.writePump()
	c.readPump()
}

// remove is called once per client when its read loop ends
func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	remaining := len(h.clients)
	h.mu.Unlock()

	if c.userID != "" {
		h.presence.Release(c.userID, c)
	}
	log.Printf("[WebSocket] Client disconnected. Total clients: %d", remaining)

	h.broadcastOnlineUsers()
}

// Deliver pushes a newMessage event to the receiver if it is online. It never
// blocks and never fails the caller; it reports whether the event was queued.
func (h *Hub) Deliver(msg model.Message) bool {
	c, ok := h.presence.Lookup(msg.ReceiverID)
	if !ok {
		log.Printf("[WebSocket] Receiver %s is not online, skipping push", msg.ReceiverID)
		return false
	}

	payload, err := json.Marshal(model.Event{Type: model.EventNewMessage, Data: msg})
	if err != nil {
		log.Printf("[WebSocket] ❌ Failed to encode message %s: %v", msg.ID, err)
		return false
	}

	if !c.enqueue(payload) {
		log.Printf("[WebSocket] ❌ Dropping message %s for %s: client not writable", msg.ID, msg.ReceiverID)
		return false
	}
	log.Printf("[WebSocket] 📢 Pushed message %s to %s", msg.ID, msg.ReceiverID)
	return true
}

// Broadcast sends an event to every connected client
func (h *Hub) Broadcast(event model.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[WebSocket] ❌ Failed to encode %s event: %v", event.Type, err)
		return
	}

	// clients マップをスナップショットしてからロックを外す
	h.mu.RLock()
	clientsSnapshot := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clientsSnapshot = append(clientsSnapshot, client)
	}
	h.mu.RUnlock()

	for _, client := range clientsSnapshot {
		client.enqueue(payload)
	}
}

func (h *Hub) broadcastOnlineUsers() {
	h.Broadcast(model.Event{Type: model.EventOnlineUsers, Data: h.presence.Snapshot()})
}

// OnlineUsers returns the ids of every registered user
func (h *Hub) OnlineUsers() []string {
	return h.presence.Snapshot()
}

// ClientCount returns the number of open connections, anonymous ones included
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every connection; their read loops then clean up
func (h *Hub) Shutdown() {
	h.mu.RLock()
	clientsSnapshot := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clientsSnapshot = append(clientsSnapshot, client)
	}
	h.mu.RUnlock()

	for _, client := range clientsSnapshot {
		client.shutdown()
	}
}
