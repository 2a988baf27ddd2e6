package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asadazo/asadazo/pkg/mail"
)

// Option configures a run.
type Option func(*runner)

type runner struct {
	mailer *mail.Recorder
	before func(*http.Request)
}

// WithMailer checks expectedMails against rec. The recorder is reset before
// each scenario.
func WithMailer(rec *mail.Recorder) Option {
	return func(r *runner) { r.mailer = rec }
}

// WithRequest lets the caller decorate every request, e.g. with a cookie.
func WithRequest(fn func(*http.Request)) Option {
	return func(r *runner) { r.before = fn }
}

// RunFile loads path and runs each scenario as a subtest, in order.
func RunFile(t *testing.T, handler http.Handler, path string, opts ...Option) {
	t.Helper()

	scenarios, err := LoadFile(path)
	require.NoError(t, err)

	r := &runner{}
	for _, opt := range opts {
		opt(r)
	}
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			r.run(t, handler, s)
		})
	}
}

func (r *runner) run(t *testing.T, handler http.Handler, s *Scenario) {
	t.Helper()

	body, err := s.requestBytes()
	require.NoError(t, err, "[%s] request body", s.Name)
	var reqBody io.Reader = http.NoBody
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req := httptest.NewRequest(strings.ToUpper(s.RequestMethod), s.RequestURL, reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}
	if r.before != nil {
		r.before(req)
	}

	if r.mailer != nil {
		r.mailer.Reset()
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, s.ExpectedCode, rec.Code, "[%s] HTTP status code mismatch\nbody: %s", s.Name, rec.Body.String())

	for k, v := range s.ExpectedHeaders {
		assert.Equal(t, v, rec.Header().Get(k), "[%s] header %s", s.Name, k)
	}

	expected, err := s.expectedBytes()
	require.NoError(t, err, "[%s] expected body", s.Name)
	AssertJSONSubset(t, s.Name, expected, rec.Body.Bytes())

	if r.mailer != nil && s.ExpectedMails != nil {
		assert.Len(t, r.mailer.Messages(), *s.ExpectedMails, "[%s] mails sent", s.Name)
	}
}
