// Package rbac provides role-based access control middleware.
package rbac

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/asadazo/asadazo/pkg/auth"
	"github.com/asadazo/asadazo/pkg/response"
)

// HasRole returns middleware that allows access only to sessions with one of
// the given roles. Requires middleware.Session to have already run.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.FromContext(r.Context())
			if claims == nil {
				response.Unauthorized(w)
				return
			}
			if !allowed[claims.Role] {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOrKey admits admin sessions, or any request bearing the given API key
// as "Authorization: Bearer <key>". An empty key disables the key path.
func AdminOrKey(key func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.FromContext(r.Context()).IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			want := key()
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if want != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1 {
				next.ServeHTTP(w, r)
				return
			}

			if auth.FromContext(r.Context()) == nil && got == "" {
				response.Unauthorized(w)
				return
			}
			response.Forbidden(w)
		})
	}
}
