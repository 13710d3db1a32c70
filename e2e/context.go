// Package e2e drives a running customs-crm instance over HTTP. The target
// base URL comes from E2E_BASE_URL; scenarios are skipped when it is unset.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TestContext carries HTTP state across the steps of one scenario.
type TestContext struct {
	BaseURL string
	client  *http.Client

	lastStatus int
	lastBody   map[string]any

	caseID       string
	inspectionID string
	webhookID    string
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.caseID = ""
	tc.inspectionID = ""
	tc.webhookID = ""
}

func (tc *TestContext) do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, tc.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Actor-ID", "e2e")
	req.Header.Set("X-Actor-Name", "End-to-end suite")

	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody = nil
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &tc.lastBody); err != nil {
			return fmt.Errorf("decode response %q: %w", string(raw), err)
		}
	}
	return nil
}

func (tc *TestContext) GET(path string) error            { return tc.do(http.MethodGet, path, nil) }
func (tc *TestContext) POST(path string, body any) error { return tc.do(http.MethodPost, path, body) }
func (tc *TestContext) PATCH(path string, body any) error {
	return tc.do(http.MethodPatch, path, body)
}

func (tc *TestContext) LastStatus() int { return tc.lastStatus }

// ResponseField returns a top-level field from the last JSON response.
func (tc *TestContext) ResponseField(field string) (any, error) {
	if tc.lastBody == nil {
		return nil, fmt.Errorf("no response body recorded")
	}
	v, ok := tc.lastBody[field]
	if !ok {
		return nil, fmt.Errorf("field %q not present in response", field)
	}
	return v, nil
}

func (tc *TestContext) CaseID() string        { return tc.caseID }
func (tc *TestContext) SetCaseID(id string)   { tc.caseID = id }
func (tc *TestContext) InspectionID() string  { return tc.inspectionID }
func (tc *TestContext) SetInspectionID(id string) {
	tc.inspectionID = id
}
func (tc *TestContext) WebhookID() string      { return tc.webhookID }
func (tc *TestContext) SetWebhookID(id string) { tc.webhookID = id }
