package testkit_test

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asadazo/asadazo/pkg/mail"
	"github.com/asadazo/asadazo/pkg/testkit"
)

func testHandler(rec *mail.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			w.Write([]byte(`{"status":"ok","uptime":3}`)) //nolint:errcheck
		case "/echo":
			body, _ := io.ReadAll(r.Body)
			_ = rec.Send(r.Context(), "ops@asadazo.test", "echo", string(body))
			w.Write(body) //nolint:errcheck
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`)) //nolint:errcheck
		}
	})
}

func TestRunFile(t *testing.T) {
	rec := &mail.Recorder{}
	testkit.RunFile(t, testHandler(rec), "testdata/health.json", testkit.WithMailer(rec))
}

func TestWithRequestDecoratesEveryCall(t *testing.T) {
	var seen []string
	inner := testHandler(&mail.Recorder{})
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("X-Request-ID"))
		inner.ServeHTTP(w, r)
	})
	testkit.RunFile(t, h, "testdata/health.json", testkit.WithRequest(func(r *http.Request) {
		r.Header.Set("X-Request-ID", "fixed")
	}))
	assert.Equal(t, []string{"fixed", "fixed", "fixed"}, seen)
}

func TestLoadFileDefaultsAndValidation(t *testing.T) {
	scenarios, err := testkit.LoadFile("testdata/health.json")
	require.NoError(t, err)
	require.Len(t, scenarios, 3)
	assert.Equal(t, "GET", scenarios[0].RequestMethod)
	assert.Equal(t, 404, scenarios[2].ExpectedCode)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	raw, _ := json.Marshal([]map[string]any{{"name": "no url"}})
	require.NoError(t, os.WriteFile(bad, raw, 0o644))
	_, err = testkit.LoadFile(bad)
	assert.ErrorContains(t, err, "requestUrl is required")
}

func TestDiffJSONSubset(t *testing.T) {
	var exp, act any
	require.NoError(t, json.Unmarshal([]byte(`{"a":1,"list":[{"id":"x"}]}`), &exp))
	require.NoError(t, json.Unmarshal([]byte(`{"a":1.0,"b":2,"list":[{"id":"x","w":3}]}`), &act))
	assert.Empty(t, testkit.DiffJSON("", exp, act))

	require.NoError(t, json.Unmarshal([]byte(`{"a":2,"list":[]}`), &act))
	diffs := testkit.DiffJSON("", exp, act)
	assert.Len(t, diffs, 2)
}
