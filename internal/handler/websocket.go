package handler

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"pulsechat/internal/auth"
)

// createUpgrader creates a WebSocket upgrader with the given allowed origins
func createUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowedMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		allowedMap[origin] = true
	}

	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowedMap[origin]
		},
	}
}

// HandleWebSocket handles GET /ws
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := h.handshakeUser(r)

	upgrader := createUpgrader(h.Config.AllowedOrigins)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	h.Hub.Attach(conn, userID)
}

// handshakeUser verifies the session token carried by the handshake. The
// userId query parameter is never trusted on its own.
func (h *Handler) handshakeUser(r *http.Request) string {
	claimed := r.URL.Query().Get("userId")

	token := auth.TokenFromRequest(r)
	if token == "" {
		if claimed != "" {
			log.Printf("[WebSocket] Ignoring unverified userId %s from %s", claimed, r.RemoteAddr)
		}
		return ""
	}

	userID, err := h.Signer.Verify(token)
	if err != nil {
		log.Printf("[WebSocket] ❌ Invalid session token from %s: %v", r.RemoteAddr, err)
		return ""
	}

	if claimed != "" && claimed != userID {
		log.Printf("[WebSocket] userId %s does not match session %s, using session", claimed, userID)
	}
	return userID
}
