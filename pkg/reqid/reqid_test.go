package reqid_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asadazo/asadazo/pkg/reqid"
)

func TestMiddlewareGeneratesAndPropagates(t *testing.T) {
	var seen string
	h := reqid.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = reqid.FromCtx(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, seen, 32)
	assert.Equal(t, seen, rec.Header().Get(reqid.Header))
}

func TestMiddlewareHonoursUpstreamID(t *testing.T) {
	var seen string
	h := reqid.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = reqid.FromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(reqid.Header, "edge-123")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "edge-123", seen)
}

func TestNewIsUnique(t *testing.T) {
	assert.NotEqual(t, reqid.New(), reqid.New())
}

func TestMiddlewareReplacesMalformedIDs(t *testing.T) {
	for name, inbound := range map[string]string{
		"spaces":   "edge 123",
		"newline":  "edge\n123",
		"too long": string(make([]byte, 200)),
	} {
		t.Run(name, func(t *testing.T) {
			var seen string
			h := reqid.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = reqid.FromCtx(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header[reqid.Header] = []string{inbound}
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.Len(t, seen, 32)
		})
	}
}
