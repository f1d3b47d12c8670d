package handler

import (
	"log"
	"net/http"
)

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	ProfilePic string `json:"profilePic"`
}

// Signup handles POST /auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	log.Printf("[POST /auth/signup] Request received from %s", r.RemoteAddr)

	var req signupRequest
	if !decodeJSON(w, r, maxJSONBody, &req) {
		return
	}

	user, token, err := h.Auth.Signup(r.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.Cookies.Set(w, token, h.Signer)
	log.Printf("[POST /auth/signup] ✅ Created user: ID=%s", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log.Printf("[POST /auth/login] Request received from %s", r.RemoteAddr)

	var req loginRequest
	if !decodeJSON(w, r, maxJSONBody, &req) {
		return
	}

	user, token, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.Cookies.Set(w, token, h.Signer)
	log.Printf("[POST /auth/login] ✅ Logged in: ID=%s", user.ID)
	writeJSON(w, http.StatusOK, user)
}

// Logout handles POST /auth/logout. Sessions are stateless, so clearing the cookie is all there is.
// The route is not behind requireAuth so that logging out with an expired or missing session still succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Cookies.Clear(w)
	log.Printf("[POST /auth/logout] ✅ Cookie cleared for %s", r.RemoteAddr)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

// UpdateProfile handles PUT /auth/update-profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)

	var req updateProfileRequest
	if !decodeJSON(w, r, maxImageBody, &req) {
		return
	}

	user, err := h.Auth.UpdateProfile(r.Context(), me.ID, req.ProfilePic)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// CheckAuth handles GET /auth/check
func (h *Handler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}
