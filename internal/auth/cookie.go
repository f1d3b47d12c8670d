package auth

import (
	"net/http"
	"strings"
)

// CookieName is the name of the session cookie
const CookieName = "jwt"

// Cookies writes and clears the session cookie
type Cookies struct {
	Secure bool
}

// Set stores token in an HTTP-only, same-site cookie that expires with the token
func (c Cookies) Set(w http.ResponseWriter, token string, s *Signer) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   c.Secure,
	})
}

// Clear expires the session cookie on the client
func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   c.Secure,
	})
}

// TokenFromRequest looks for a session token in the cookie, the Authorization
// header and finally the "token" query parameter used by WebSocket handshakes
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}
