package handler

import (
	"context"
	"net/http"

	"pulsechat/internal/auth"
	"pulsechat/internal/model"
)

type userKey struct{}

// requireAuth resolves the session token and stores the user in the request context
func (h *Handler) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.Auth.Authenticate(r.Context(), auth.TokenFromRequest(r))
		if err != nil {
			respondError(w, r, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	})
}

// currentUser returns the user set by requireAuth
func currentUser(r *http.Request) *model.User {
	user, _ := r.Context().Value(userKey{}).(*model.User)
	return user
}
