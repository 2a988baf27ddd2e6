package kernel_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asadazo/asadazo/config"
	"github.com/asadazo/asadazo/internal/kernel"
	"github.com/asadazo/asadazo/pkg/auth"
	"github.com/asadazo/asadazo/pkg/kv"
	"github.com/asadazo/asadazo/pkg/mail"
	"github.com/asadazo/asadazo/pkg/testkit"
)

const operator = "ops@asadazo.test"

func setConfig(t *testing.T, kvs map[string]string) {
	t.Helper()
	for k, v := range kvs {
		config.Set(k, v)
	}
	t.Cleanup(func() {
		for k := range kvs {
			config.Set(k, "")
		}
	})
}

func newApp(t *testing.T) (*kernel.App, *mail.Recorder) {
	t.Helper()
	setConfig(t, map[string]string{
		"OPERATOR_EMAIL":        operator,
		"RATE_LIMIT_PER_MINUTE": "100000",
		"ADMIN_API_KEY":         "s3cret",
		"HEALTH_PROBE_INTERVAL": "0",
	})
	rec := &mail.Recorder{}
	app, err := kernel.Build(kernel.Options{Store: kv.NewMemoryStore(), Mailer: rec, Inline: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app, rec
}

type client struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// signIn registers and logs in, keeping the session cookie.
func signIn(t *testing.T, app *kernel.App, email string) *client {
	t.Helper()
	c := &client{t: t, handler: app.Handler()}

	w := c.do(http.MethodPost, "/api/register", map[string]any{"name": "Ana", "email": email, "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodPost, "/api/login", map[string]any{"email": email, "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, ck := range w.Result().Cookies() {
		if ck.Name == auth.CookieName {
			c.cookie = ck
		}
	}
	require.NotNil(t, c.cookie, "login must set the session cookie")
	return c
}

func asAdmin(t *testing.T, app *kernel.App) *client {
	t.Helper()
	token, err := auth.GenerateToken("admin-1", "boss@asadazo.test", "admin")
	require.NoError(t, err)
	return &client{t: t, handler: app.Handler(), cookie: &http.Cookie{Name: auth.CookieName, Value: token}}
}

var weeklyBox = map[string]any{
	"type":      "weekly",
	"frequency": "weekly",
	"selectedProducts": []map[string]any{
		{"productId": "vacio", "productName": "Vacío", "weight": 2, "price": 22},
		{"productId": "entrana", "productName": "Entraña", "weight": 2, "price": 24},
	},
	"pickupOption": true,
}

// ─── Routing ─────────────────────────────────────────────────────────────────

func TestPublicSurface(t *testing.T) {
	app, rec := newApp(t)
	testkit.RunFile(t, app.Handler(), "testdata/public.json", testkit.WithMailer(rec))
}

func TestEveryEndpointIsMountedTwice(t *testing.T) {
	app, _ := newApp(t)

	seen := map[string]bool{}
	for _, ri := range app.Router.Routes() {
		seen[ri.Method+" "+ri.Path] = true
	}
	for _, want := range []string{
		"GET /orders", "POST /orders", "PUT /orders",
		"GET /subscriptions", "POST /subscriptions", "PUT /subscriptions", "DELETE /subscriptions",
		"GET /subscription-suggestions",
		"POST /register", "POST /login", "POST /logout", "GET /me", "POST /admin-promote",
		"POST /send-email", "GET /kv-health", "POST /graphql", "GET /admin/live", "GET /admin/events",
	} {
		method, path, _ := strings.Cut(want, " ")
		assert.True(t, seen[want], "missing %s", want)
		assert.True(t, seen[method+" /api"+path], "missing %s under /api", want)
	}
	assert.True(t, seen["* /metrics"])
}

func TestRequestIDIsEchoed(t *testing.T) {
	app, _ := newApp(t)
	w := (&client{t: t, handler: app.Handler()}).do(http.MethodGet, "/me", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := newApp(t)
	c := &client{t: t, handler: app.Handler()}
	c.do(http.MethodGet, "/subscription-suggestions", nil)

	w := c.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "asadazo_http_requests_total")
}

// ─── Accounts ────────────────────────────────────────────────────────────────

func TestSessionLifecycle(t *testing.T) {
	app, _ := newApp(t)
	c := signIn(t, app, "Ana@Example.com")

	me := decode(t, c.do(http.MethodGet, "/me", nil))
	user := me["user"].(map[string]any)
	assert.Equal(t, "ana@example.com", user["email"])
	assert.Equal(t, "customer", user["role"])

	w := c.do(http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == auth.CookieName {
			assert.Negative(t, ck.MaxAge)
		}
	}

	anon := &client{t: t, handler: app.Handler()}
	assert.Nil(t, decode(t, anon.do(http.MethodGet, "/me", nil))["user"])
}

func TestRegisterRejectsDuplicatesAndMissingFields(t *testing.T) {
	app, _ := newApp(t)
	signIn(t, app, "ana@example.com")
	c := &client{t: t, handler: app.Handler()}

	w := c.do(http.MethodPost, "/register", map[string]any{"name": "Ana", "email": "ANA@example.com", "password": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already registered", decode(t, w)["error"])

	w = c.do(http.MethodPost, "/register", map[string]any{"email": "b@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodPost, "/login", map[string]any{"email": "ana@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w)["error"])
}

func TestAdminPromoteGuard(t *testing.T) {
	app, _ := newApp(t)
	customer := signIn(t, app, "ana@example.com")

	anon := &client{t: t, handler: app.Handler()}
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodPost, "/admin-promote", map[string]any{"email": "ana@example.com"}).Code)
	assert.Equal(t, http.StatusForbidden, customer.do(http.MethodPost, "/admin-promote", map[string]any{"email": "ana@example.com"}).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/admin-promote", strings.NewReader(`{"email":"ana@example.com"}`))
	req.Header.Set("Authorization", "Bearer s3cret")
	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "admin", decode(t, w)["user"].(map[string]any)["role"])

	w = asAdmin(t, app).do(http.MethodPost, "/admin-promote", map[string]any{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decode(t, w)["error"])
}

// ─── Subscriptions ───────────────────────────────────────────────────────────

func TestSubscriptionRoundTrip(t *testing.T) {
	app, rec := newApp(t)
	c := signIn(t, app, "ana@example.com")

	w := c.do(http.MethodPost, "/api/subscriptions", weeklyBox)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, true, created["success"])
	sub := created["subscription"].(map[string]any)
	assert.Equal(t, "pending review", sub["status"])
	assert.EqualValues(t, 4, sub["totalWeight"])
	assert.True(t, strings.HasPrefix(sub["id"].(string), "sub_"))

	list := decode(t, c.do(http.MethodGet, "/subscriptions", nil))["subscriptions"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, sub["id"], list[0].(map[string]any)["id"])

	msgs := rec.Messages()
	require.NotEmpty(t, msgs)
	assert.Equal(t, operator, msgs[0].To)
}

func TestSubscriptionRequiresSession(t *testing.T) {
	app, _ := newApp(t)
	anon := &client{t: t, handler: app.Handler()}

	w := anon.do(http.MethodPost, "/subscriptions", weeklyBox)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized. Please log in to create a subscription.", decode(t, w)["error"])

	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, "/subscriptions", nil).Code)
}

func TestAdminTransitionsThroughHTTP(t *testing.T) {
	app, _ := newApp(t)
	c := signIn(t, app, "ana@example.com")
	sub := decode(t, c.do(http.MethodPost, "/subscriptions", weeklyBox))["subscription"].(map[string]any)
	id, owner := sub["id"].(string), sub["userId"].(string)

	admin := asAdmin(t, app)
	all := decode(t, admin.do(http.MethodGet, "/subscriptions?all=true", nil))["subscriptions"].([]any)
	require.Len(t, all, 1)

	update := func(status string) *httptest.ResponseRecorder {
		return admin.do(http.MethodPut, "/subscriptions", map[string]any{
			"subscriptionId": id,
			"adminOverride":  true,
			"targetUserId":   owner,
			"updates":        map[string]any{"status": status},
		})
	}
	assert.Equal(t, http.StatusOK, update("active").Code)

	w := c.do(http.MethodDelete, "/subscriptions?id="+id, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Subscription cancelled successfully", decode(t, w)["message"])

	w = update("active")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w)["error"], "invalid status transition")
}

func TestSuggestionsEndpoint(t *testing.T) {
	app, _ := newApp(t)
	anon := &client{t: t, handler: app.Handler()}

	weekly := decode(t, anon.do(http.MethodGet, "/subscription-suggestions", nil))
	assert.EqualValues(t, 4, weekly["targetWeight"])
	assert.EqualValues(t, 4, weekly["totalWeight"])

	monthly := decode(t, anon.do(http.MethodGet, "/api/subscription-suggestions?type=monthly", nil))
	assert.EqualValues(t, 12, monthly["targetWeight"])
}

// ─── Orders ──────────────────────────────────────────────────────────────────

var checkout = map[string]any{
	"items": []map[string]any{
		{"productId": "vacio", "name": "Vacío", "quantity": 2, "unitPrice": 22},
	},
	"deliveryZone": "inside-ring",
	"customer":     map[string]any{"name": "Ana", "email": "ana@example.com"},
}

func TestAnonymousCheckoutIsMailed(t *testing.T) {
	app, rec := newApp(t)
	anon := &client{t: t, handler: app.Handler()}

	w := anon.do(http.MethodPost, "/api/orders", checkout)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, map[string]any{"ok": true}, decode(t, w))
	require.Len(t, rec.Messages(), 1)

	w = anon.do(http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authenticated", decode(t, w)["error"])
}

func TestSignedInOrdersArePrepended(t *testing.T) {
	app, _ := newApp(t)
	c := signIn(t, app, "ana@example.com")

	first := map[string]any{}
	for k, v := range checkout {
		first[k] = v
	}
	first["id"] = "o-1"
	second := map[string]any{}
	for k, v := range checkout {
		second[k] = v
	}
	second["id"] = "o-2"

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/orders", first).Code)
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/orders", second).Code)

	w := c.do(http.MethodPost, "/orders", first)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Order ID already exists", decode(t, w)["error"])

	orders := decode(t, c.do(http.MethodGet, "/orders", nil))["orders"].([]any)
	require.Len(t, orders, 2)
	assert.Equal(t, "o-2", orders[0].(map[string]any)["id"])

	w = c.do(http.MethodPut, "/orders", map[string]any{"orderId": "o-1", "updates": map[string]any{"status": "shipped"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

// ─── Site ────────────────────────────────────────────────────────────────────

func TestContactAndHealth(t *testing.T) {
	app, rec := newApp(t)
	anon := &client{t: t, handler: app.Handler()}

	w := anon.do(http.MethodPost, "/send-email", map[string]any{"name": "Ana", "message": "Hola"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["ok"])
	assert.Len(t, rec.Messages(), 1)

	w = anon.do(http.MethodGet, "/api/kv-health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"ok": true, "value": "ok"}, decode(t, w))
}

func TestContactMailFailureIs500(t *testing.T) {
	app, rec := newApp(t)
	rec.Fail = assert.AnError

	w := (&client{t: t, handler: app.Handler()}).do(http.MethodPost, "/send-email", map[string]any{"message": "Hola"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGraphQL(t *testing.T) {
	app, _ := newApp(t)
	c := &client{t: t, handler: app.Handler()}

	w := c.do(http.MethodPost, "/graphql", map[string]any{
		"query": `{ suggestions(type: "weekly") { totalWeight } deliveryQuote(zone: "inside-ring", subtotal: 90) { fee total } catalog(category: "meat") { id } }`,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 4, data["suggestions"].(map[string]any)["totalWeight"])
	quote := data["deliveryQuote"].(map[string]any)
	assert.EqualValues(t, 0, quote["fee"])
	assert.EqualValues(t, 90, quote["total"])
	assert.NotEmpty(t, data["catalog"])

	w = c.do(http.MethodPost, "/graphql", map[string]any{"query": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ─── Live feed ───────────────────────────────────────────────────────────────

func TestLiveFeedStreamsEvents(t *testing.T) {
	app, _ := newApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	app.Start(ctx)

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	token, err := auth.GenerateToken("admin-1", "boss@asadazo.test", "admin")
	require.NoError(t, err)
	header := http.Header{}
	header.Set("Cookie", auth.CookieName+"="+token)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/admin/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return app.Hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	c := signIn(t, app, "ana@example.com")
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/subscriptions", weeklyBox).Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev map[string]any
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, "subscription.created", ev["event"])
}

func TestEventStream(t *testing.T) {
	app, _ := newApp(t)
	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	token, err := auth.GenerateToken("admin-1", "boss@asadazo.test", "admin")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/admin/events", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	c := signIn(t, app, "ana@example.com")
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/subscriptions", weeklyBox).Code)

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: subscription.created", lines.Text())
	require.True(t, lines.Scan())
	assert.True(t, strings.HasPrefix(lines.Text(), "data: {"))
}

func TestLiveFeedNeedsAdmin(t *testing.T) {
	app, _ := newApp(t)
	c := signIn(t, app, "ana@example.com")
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodGet, "/admin/live", nil).Code)
}
