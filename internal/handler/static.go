package handler

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
)

// mountStatic serves local uploads and, in production, the built frontend
func (h *Handler) mountStatic(r *mux.Router) {
	cfg := h.Config

	if cfg.StorageBackend == "local" && strings.HasPrefix(cfg.UploadBaseURL, "/") {
		prefix := cfg.UploadBaseURL + "/"
		r.PathPrefix(prefix).Handler(http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.UploadDir)))).Methods("GET")
	}

	if cfg.IsProduction() && cfg.FrontendDir != "" {
		log.Printf("Serving frontend from %s", cfg.FrontendDir)
		r.PathPrefix("/").Handler(spaHandler{dir: cfg.FrontendDir, apiPrefix: cfg.APIPrefix}).Methods("GET")
	}
}

// spaHandler serves files from dir and falls back to index.html for client-side routes
type spaHandler struct {
	dir       string
	apiPrefix string
}

func (s spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(s.apiPrefix, r.URL.Path) {
		writeMessage(w, http.StatusNotFound, "Not Found")
		return
	}

	path := filepath.Join(s.dir, filepath.Clean("/"+r.URL.Path))
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		http.ServeFile(w, r, path)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.dir, "index.html"))
}
