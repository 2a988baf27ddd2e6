package auth

import (
	"net/http"

	"github.com/asadazo/asadazo/config"
)

// CookieName is the session cookie set by login and register.
const CookieName = "session"

// SessionCookie wraps a signed token in the session cookie.
func SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie clears the session cookie on the client.
func ExpiredCookie() *http.Cookie {
	c := SessionCookie("")
	c.MaxAge = -1
	return c
}

// FromRequest verifies the session cookie, falling back to an
// "Authorization: Bearer" header for non-browser clients.
func FromRequest(r *http.Request) (*Claims, error) {
	token := ""
	if c, err := r.Cookie(CookieName); err == nil {
		token = c.Value
	}
	if token == "" {
		if h := r.Header.Get("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
			token = h[7:]
		}
	}
	if token == "" {
		return nil, http.ErrNoCookie
	}
	return ValidateToken(token)
}
