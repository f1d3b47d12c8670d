package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"pulsechat/internal/auth"
	"pulsechat/internal/config"
	"pulsechat/internal/gateway"
	"pulsechat/internal/service"
)

const (
	// JSON本文の上限（認証系）
	maxJSONBody = 1 << 20
	// 画像を含む本文の上限
	maxImageBody = 10 << 20
)

// Handler holds application dependencies
type Handler struct {
	Config   config.Config
	Auth     *service.AuthService
	Messages *service.MessageService
	Hub      *gateway.Hub
	Signer   *auth.Signer
	Cookies  auth.Cookies
}

// New creates a new Handler with the given dependencies
func New(cfg config.Config, authService *service.AuthService, messageService *service.MessageService, hub *gateway.Hub, signer *auth.Signer) *Handler {
	return &Handler{
		Config:   cfg,
		Auth:     authService,
		Messages: messageService,
		Hub:      hub,
		Signer:   signer,
		Cookies:  auth.Cookies{Secure: !cfg.IsDevelopment()},
	}
}

// SetupRouter configures and returns the HTTP router
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix(h.Config.APIPrefix).Subrouter()
	if h.Config.APIPrefix == "" {
		api = r
	}

	// 認証
	api.HandleFunc("/auth/signup", h.Signup).Methods("POST")
	api.HandleFunc("/auth/login", h.Login).Methods("POST")
	api.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	api.Handle("/auth/update-profile", h.requireAuth(h.UpdateProfile)).Methods("PUT")
	api.Handle("/auth/check", h.requireAuth(h.CheckAuth)).Methods("GET")

	// メッセージ（/users は /{id} より先に登録する）
	api.Handle("/messages/users", h.requireAuth(h.GetUsers)).Methods("GET")
	api.Handle("/messages/{id}", h.requireAuth(h.GetMessages)).Methods("GET")
	api.Handle("/messages/send/{id}", h.requireAuth(h.SendMessage)).Methods("POST")

	// WebSocket
	r.HandleFunc("/ws", h.HandleWebSocket).Methods("GET")
	r.HandleFunc("/healthz", h.Health).Methods("GET")

	h.mountStatic(r)

	return r
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"onlineUsers": len(h.Hub.OnlineUsers()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// respondError translates a service error into a response. Internal causes
// are logged and never sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	route := r.Method + " " + r.URL.Path

	var se *service.Error
	if !errors.As(err, &se) {
		se = &service.Error{Kind: service.KindDependency, Message: "Internal Server Error", Err: err}
	}

	if se.Kind == service.KindDependency {
		log.Printf("[%s] ❌ Internal error: %v", route, se.Err)
	} else {
		log.Printf("[%s] ❌ %s: %s", route, se.Kind, se.Message)
	}
	writeMessage(w, se.HTTPStatus(), se.Message)
}

// decodeJSON reads a size-limited JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Printf("[%s %s] ❌ Bad Request: %v", r.Method, r.URL.Path, err)
		msg := "Invalid request body"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = "Request body too large"
		}
		writeMessage(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

func isAPIPath(prefix, path string) bool {
	return prefix != "" && (path == prefix || strings.HasPrefix(path, prefix+"/"))
}
