package middleware

import (
	"net/http"

	"github.com/asadazo/asadazo/pkg/auth"
	"github.com/asadazo/asadazo/pkg/response"
)

// Session verifies the session token when one is present and stores its
// claims in the request context. Anonymous requests pass through; use
// RequireSession to reject them.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, err := auth.FromRequest(r); err == nil {
			r = r.WithContext(auth.WithClaims(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSession replies 401 unless Session found a valid token.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.FromContext(r.Context()) == nil {
			response.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
