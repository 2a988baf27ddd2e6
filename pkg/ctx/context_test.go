package ctx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asadazo/asadazo/pkg/auth"
	appctx "github.com/asadazo/asadazo/pkg/ctx"
)

func TestWrapAndJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.OK(map[string]any{"ok": true})
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestSetAndGet(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Set("zone", "inside-ring")
		assert.Equal(t, "inside-ring", c.GetString("zone"))
		assert.Equal(t, "", c.GetString("missing"))
		c.OK(nil)
	})(rec, req)
}

func TestBindJSONValid(t *testing.T) {
	rec := httptest.NewRecorder()
	body := `{"name":"Ana","email":"ana@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Name  string `json:"name"  validate:"required"`
			Email string `json:"email" validate:"required,email"`
		}
		if !assert.True(t, c.BindJSON(&input)) {
			return
		}
		assert.Equal(t, "Ana", input.Name)
		c.OK(nil)
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBindJSONMissingField(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Name string `json:"name" validate:"required"`
		}
		assert.False(t, c.BindJSON(&input))
	})(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing required fields","fields":{"name":"The name field is required."}}`, rec.Body.String())
}

func TestBindJSONMalformed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct{}
		assert.False(t, c.BindJSON(&input))
	})(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON")
}

func TestClientIP(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")

	appctx.Wrap(func(c *appctx.Context) {
		assert.Equal(t, "1.2.3.4", c.ClientIP())
		c.OK(nil)
	})(rec, req)
}

func TestErrorShapes(t *testing.T) {
	cases := []struct {
		name string
		call func(c *appctx.Context)
		code int
		body string
	}{
		{"not found", func(c *appctx.Context) { c.NotFound("Subscription not found") }, 404, `{"error":"Subscription not found"}`},
		{"unauthorized default", func(c *appctx.Context) { c.Unauthorized() }, 401, `{"error":"Unauthorized"}`},
		{"method", func(c *appctx.Context) { c.MethodNotAllowed() }, 405, `{"error":"Method not allowed"}`},
		{"internal", func(c *appctx.Context) { c.InternalError() }, 500, `{"error":"Internal server error"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			appctx.Wrap(tc.call)(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tc.code, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}

func TestClaimsFromRequestContext(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	claims := &auth.Claims{Role: "admin"}
	claims.Subject = "u-9"
	req = req.WithContext(auth.WithClaims(req.Context(), claims))

	appctx.Wrap(func(c *appctx.Context) {
		assert.Equal(t, "u-9", c.Claims().UserID())
		c.OK(nil)
	})(rec, req)

	appctx.Wrap(func(c *appctx.Context) {
		assert.Nil(t, c.Claims())
	})(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
