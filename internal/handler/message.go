package handler

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

type sendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// GetUsers handles GET /messages/users
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)

	users, err := h.Messages.UsersForSidebar(r.Context(), me.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.Printf("[GET /messages/users] ✅ Returned %d users", len(users))
	writeJSON(w, http.StatusOK, users)
}

// GetMessages handles GET /messages/{id}
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	otherID := mux.Vars(r)["id"]

	messages, err := h.Messages.Conversation(r.Context(), me.ID, otherID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.Printf("[GET /messages/%s] ✅ Returned %d messages", otherID, len(messages))
	writeJSON(w, http.StatusOK, messages)
}

// SendMessage handles POST /messages/send/{id}
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	receiverID := mux.Vars(r)["id"]
	log.Printf("[POST /messages/send/%s] Request received from %s", receiverID, me.ID)

	var req sendMessageRequest
	if !decodeJSON(w, r, maxImageBody, &req) {
		return
	}

	msg, err := h.Messages.Send(r.Context(), me.ID, receiverID, req.Text, req.Image)
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.Printf("[POST /messages/send/%s] ✅ Created message: ID=%s", receiverID, msg.ID)
	writeJSON(w, http.StatusCreated, msg)
}
