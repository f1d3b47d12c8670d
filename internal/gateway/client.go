package gateway

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Client is one WebSocket connection
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string

	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(h *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    h,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// UserID returns the authenticated user of this connection, or "" when anonymous
func (c *Client) UserID() string {
	return c.userID
}

// enqueue hands a frame to the write pump without blocking. A client whose
// buffer is full is disconnected.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- payload:
		return true
	default:
		log.Printf("[WebSocket] Send buffer full for %q, closing connection", c.userID)
		c.conn.Close()
		return false
	}
}

func (c *Client) shutdown() {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown")
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	c.conn.Close()
}

// readPump drains inbound frames (keep-alive only) until the connection fails
func (c *Client) readPump() {
	defer func() {
		c.once.Do(func() { close(c.done) })
		c.conn.Close()
		c.hub.remove(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[WebSocket] Read error: %v", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// writePump is the only goroutine that writes to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WebSocket] Write error for %q: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
