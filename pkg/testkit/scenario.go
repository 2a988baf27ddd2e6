// Package testkit drives REST API tests from JSON scenario files.
//
// A scenario file is an array of cases; each names the request to fire and
// what must come back:
//
//	[
//	  {
//	    "name": "anonymous order list",
//	    "requestMethod": "GET",
//	    "requestUrl": "/api/orders",
//	    "expectedCode": 401,
//	    "expectedBody": {"error": "Not authenticated"}
//	  }
//	]
//
// Bodies may be inline (requestBody, expectedBody) or loaded from files next
// to the scenario (requestFileName, responseFileName). Expected bodies are
// matched as a subset: every key given must be present and equal, extra keys
// in the response are ignored.
//
//	func TestAPI(t *testing.T) {
//	    testkit.RunFile(t, app.Handler(), "testdata/public.json")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ─── Schema ───────────────────────────────────────────────────────────────────

// Scenario describes a single REST API test case.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// Request
	RequestMethod   string            `json:"requestMethod"` // default GET
	RequestURL      string            `json:"requestUrl"`
	RequestBody     json.RawMessage   `json:"requestBody"`
	RequestFileName string            `json:"requestFileName"` // relative to the scenario file
	Headers         map[string]string `json:"headers"`

	// Response assertions
	ExpectedCode       int               `json:"expectedCode"`
	ExpectedStatusCode int               `json:"expectedStatusCode"` // alias
	ExpectedBody       json.RawMessage   `json:"expectedBody"`
	ResponseFileName   string            `json:"responseFileName"`
	ExpectedHeaders    map[string]string `json:"expectedHeaders"`

	// ExpectedMails is checked only when the runner has a mail recorder.
	ExpectedMails *int `json:"expectedMails"`

	dir string
}

// ─── Loading ──────────────────────────────────────────────────────────────────

// LoadFile reads and validates every scenario in a JSON array file.
func LoadFile(path string) ([]*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var scenarios []*Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	dir := filepath.Dir(abs)
	for i, s := range scenarios {
		s.dir = dir
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: %q item %d: %w", abs, i, err)
		}
	}
	return scenarios, nil
}

// validate fills defaults and checks required fields.
func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		s.ExpectedCode = s.ExpectedStatusCode
	}
	if s.ExpectedCode == 0 {
		s.ExpectedCode = 200
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	if len(s.RequestBody) > 0 && s.RequestFileName != "" {
		return fmt.Errorf("requestBody and requestFileName are mutually exclusive")
	}
	return nil
}

// requestBytes returns the request body, inline or from file.
func (s *Scenario) requestBytes() ([]byte, error) {
	if len(s.RequestBody) > 0 {
		return s.RequestBody, nil
	}
	if s.RequestFileName == "" {
		return nil, nil
	}
	return os.ReadFile(s.resolve(s.RequestFileName))
}

// expectedBytes returns the expected response body, inline or from file.
func (s *Scenario) expectedBytes() ([]byte, error) {
	if len(s.ExpectedBody) > 0 {
		return s.ExpectedBody, nil
	}
	if s.ResponseFileName == "" {
		return nil, nil
	}
	return os.ReadFile(s.resolve(s.ResponseFileName))
}

func (s *Scenario) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}
