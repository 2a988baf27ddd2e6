package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asadazo/asadazo/pkg/router"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestGroupPrefixAndNamedURL(t *testing.T) {
	r := router.New()
	api := r.Group("/api")
	api.Get("/orders/{id}", "orders.show", ok)

	url, err := r.URL("orders.show", map[string]string{"id": "42"})
	require.NoError(t, err)
	assert.Equal(t, "/api/orders/42", url)

	_, err = r.URL("orders.show", nil)
	assert.Error(t, err)
}

func TestMethodNotAllowedIsJSON(t *testing.T) {
	r := router.New()
	r.Get("/subscriptions", "subscriptions.index", ok)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/subscriptions", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
}

func TestNotFoundIsJSON(t *testing.T) {
	r := router.New()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
}

func TestMiddlewareOrder(t *testing.T) {
	var trail []string
	mw := func(tag string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				trail = append(trail, tag)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := router.New()
	g := r.Group("/a", mw("group"))
	g.Put("/x", "", ok, mw("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/a/x", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"group", "route"}, trail)
}

func TestRoutesListing(t *testing.T) {
	r := router.New()
	r.Post("/orders", "orders.store", ok)
	r.Get("/orders", "orders.index", ok)
	r.Delete("/subscriptions", "subscriptions.destroy", ok)
	r.HandleFunc("/metrics", ok)

	routes := r.Routes()
	require.Len(t, routes, 4)
	assert.Equal(t, router.RouteInfo{Method: "*", Path: "/metrics", Name: ""}, routes[0])
	assert.Equal(t, "GET", routes[1].Method)
	assert.Equal(t, "POST", routes[2].Method)
	assert.Equal(t, "/subscriptions", routes[3].Path)
}
