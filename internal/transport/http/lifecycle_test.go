package httptransport_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rodzerz/customs-crm/pkg/testutil"
)

// Walks one case end to end through the public API: registration, cargo,
// screening, inspection, decision, closure.
func TestCaseLifecycle(t *testing.T) {
	api := newAPI(t, nil)

	testutil.Given(t, "a registered case with high-risk cargo", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/cases", map[string]any{
			"id": "lifecycle-1", "origin_country": "IR", "route": "IR-TR-BG-RO-LT",
		})
		rr := testutil.DoRequest(api, testutil.WithActor(req, "officer-7", "J. Novak"))
		testutil.AssertStatus(t, rr, http.StatusCreated)

		req = testutil.NewJSONRequest(t, http.MethodPost, "/cases/lifecycle-1/cargo", map[string]any{
			"hs_code": "2710199900", "weight": 18000.0, "value": 180000.0, "currency": "EUR",
		})
		rr = testutil.DoRequest(api, testutil.WithActor(req, "officer-7", "J. Novak"))
		testutil.AssertStatus(t, rr, http.StatusCreated)

		testutil.When(t, "the case reaches screening", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/cases/lifecycle-1/transition",
				map[string]any{"status": "screening", "reason": "Documents received"})
			rr := testutil.DoRequest(api, testutil.WithActor(req, "officer-7", "J. Novak"))
			testutil.AssertStatusOK(t, rr)

			testutil.Then(t, "risk puts it above the inspection threshold", func(t *testing.T) {
				rr := testutil.DoRequest(api, testutil.NewJSONRequest(t, http.MethodPost, "/cases/lifecycle-1/analyze", nil))
				testutil.AssertStatusOK(t, rr)
				testutil.AssertJSONContains(t, rr, "should_inspect", true)
			})
		})

		var inspectionID string

		testutil.When(t, "an inspection is ordered", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/cases/lifecycle-1/inspections",
				map[string]any{"type": "physical"})
			rr := testutil.DoRequest(api, testutil.WithActor(req, "officer-7", "J. Novak"))
			testutil.AssertStatus(t, rr, http.StatusCreated)
			inspectionID = testutil.UnmarshalResponse[inspectionBody](t, rr).ID

			testutil.Then(t, "the case moves into inspection", func(t *testing.T) {
				rr := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/cases/lifecycle-1"))
				assert.Equal(t, "in_inspection", testutil.UnmarshalResponse[caseBody](t, rr).Status)
			})
		})

		testutil.When(t, "the officer releases the shipment", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/inspections/"+inspectionID+"/decision",
				map[string]any{"decision": "release", "comment": "Cleared after physical check"})
			rr := testutil.DoRequest(api, testutil.WithActor(req, "officer-7", "J. Novak"))
			testutil.AssertStatusOK(t, rr)

			testutil.Then(t, "the case is released and can be closed", func(t *testing.T) {
				rr := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/cases/lifecycle-1"))
				assert.Equal(t, "released", testutil.UnmarshalResponse[caseBody](t, rr).Status)

				req := testutil.NewJSONRequest(t, http.MethodPost, "/cases/lifecycle-1/transition",
					map[string]any{"status": "closed"})
				rr = testutil.DoRequest(api, testutil.WithActor(req, "officer-7", "J. Novak"))
				testutil.AssertStatusOK(t, rr)
			})
		})

		testutil.Then(t, "the history covers the whole journey", func(t *testing.T) {
			rr := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/cases/lifecycle-1/history"))
			testutil.AssertStatusOK(t, rr)

			body := testutil.UnmarshalResponse[struct {
				Events []struct {
					EventType string `json:"event_type"`
				} `json:"events"`
			}](t, rr)

			types := make([]string, 0, len(body.Events))
			for _, e := range body.Events {
				types = append(types, e.EventType)
			}
			// Newest first: closed, released, in_inspection, screening transitions
			// plus the cargo attach and the registration.
			assert.Equal(t, []string{
				"status_changed", "status_changed", "status_changed",
				"status_changed", "cargo_added", "created",
			}, types)
		})
	})
}
