package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asadazo/asadazo/pkg/auth"
	"github.com/asadazo/asadazo/pkg/rbac"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func withRole(role string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/admin-promote", nil)
	if role == "" {
		return req
	}
	claims := &auth.Claims{Role: role}
	claims.Subject = "u1"
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func TestHasRole(t *testing.T) {
	h := rbac.HasRole("admin")(okHandler)

	cases := map[string]int{"": 401, "customer": 403, "admin": 200}
	for role, want := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withRole(role))
		assert.Equal(t, want, rec.Code, "role %q", role)
	}
}

func TestAdminOrKey(t *testing.T) {
	h := rbac.AdminOrKey(func() string { return "s3cret" })(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withRole("admin"))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := withRole("")
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = withRole("")
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withRole(""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOrKeyEmptyKeyDisablesBearer(t *testing.T) {
	h := rbac.AdminOrKey(func() string { return "" })(okHandler)

	req := withRole("customer")
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
