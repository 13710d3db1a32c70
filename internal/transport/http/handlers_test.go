package httptransport_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodzerz/customs-crm/internal/caseevent"
	"github.com/rodzerz/customs-crm/internal/cases"
	"github.com/rodzerz/customs-crm/internal/inspection"
	"github.com/rodzerz/customs-crm/internal/notify"
	"github.com/rodzerz/customs-crm/internal/risk"
	"github.com/rodzerz/customs-crm/internal/storage"
	httptransport "github.com/rodzerz/customs-crm/internal/transport/http"
	"github.com/rodzerz/customs-crm/pkg/testutil"
)

type okSender struct{}

func (okSender) Send(context.Context, string, string, string, []byte) (notify.Response, error) {
	return notify.Response{StatusCode: 200}, nil
}

func newAPI(t *testing.T, checks map[string]httptransport.HealthChecker) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	caseStore := storage.NewInMemoryCaseStore()
	cargoStore := storage.NewInMemoryCargoStore()
	dispatcher := notify.NewDispatcher(storage.NewInMemoryWebhookStore(), storage.NewInMemoryDeliveryStore(), okSender{}, logger)
	admin := notify.NewAdmin(storage.NewInMemoryWebhookStore(), storage.NewInMemoryDeliveryStore())
	caseSvc := cases.NewService(caseStore, cargoStore, caseevent.NewService(storage.NewInMemoryEventStore()), dispatcher, risk.NewEngine(), logger)
	inspSvc := inspection.NewService(storage.NewInMemoryInspectionStore(), caseSvc, logger)

	return httptransport.NewRouter(checks, nil,
		httptransport.NewCaseHandler(caseSvc, inspSvc, logger),
		httptransport.NewInspectionHandler(inspSvc, logger),
		httptransport.NewWebhookHandler(admin, logger),
	)
}

type caseBody struct {
	ID                 string   `json:"id"`
	Status             string   `json:"status"`
	RiskScore          int      `json:"risk_score"`
	RiskLevel          string   `json:"risk_level"`
	RiskReason         string   `json:"risk_reason"`
	DeclaredValue      *float64 `json:"declared_value"`
	PreviousViolations int      `json:"previous_violations"`
}

type inspectionBody struct {
	ID       string `json:"id"`
	CaseID   string `json:"case_id"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	Decision string `json:"decision"`
}

type webhookBody struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Event  string `json:"event"`
	Secret string `json:"secret"`
	Active bool   `json:"active"`
}

func createCase(t *testing.T, api http.Handler, id string) {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/cases", map[string]any{
		"id": id, "origin_country": "DE", "route": "DE-PL",
	})
	rr := testutil.DoRequest(api, testutil.WithActor(req, "officer-7", "J. Novak"))
	testutil.AssertStatus(t, rr, http.StatusCreated)
}

func TestCaseEndpoints(t *testing.T) {
	api := newAPI(t, nil)

	t.Run("create returns the new case", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/cases", map[string]any{
			"id": "case-1", "vehicle_id": "veh-1", "origin_country": "DE", "route": "DE-PL",
		})
		rr := testutil.DoRequest(api, testutil.WithActor(req, "officer-7", "J. Novak"))
		testutil.AssertStatus(t, rr, http.StatusCreated)

		body := testutil.UnmarshalResponse[caseBody](t, rr)
		assert.Equal(t, "case-1", body.ID)
		assert.Equal(t, "new", body.Status)
		assert.Zero(t, body.RiskScore)
		assert.Equal(t, "low", body.RiskLevel)
	})

	t.Run("duplicate id conflicts", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/cases", map[string]any{"id": "case-1"})
		rr := testutil.DoRequest(api, req)
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	})

	t.Run("unknown body fields are rejected", func(t *testing.T) {
		rr := testutil.DoRequest(api, testutil.NewRequestWithBody(t, http.MethodPost, "/cases",
			`{"id":"case-x","surprise":true}`))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("get", func(t *testing.T) {
		rr := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/cases/case-1"))
		testutil.AssertStatusOK(t, rr)
		assert.Equal(t, "case-1", testutil.UnmarshalResponse[caseBody](t, rr).ID)
	})

	t.Run("get unknown case", func(t *testing.T) {
		rr := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/cases/missing"))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("list wraps cases", func(t *testing.T) {
		rr := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/cases"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONHasKey(t, rr, "cases")
	})

	t.Run("legal transition", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/cases/case-1/transition",
			map[string]any{"status": "screening", "reason": "Documents received"})
		rr := testutil.DoRequest(api, testutil.WithActor(req, "officer-7", "J. Novak"))
		testutil.AssertStatusOK(t, rr)
		assert.Equal(t, "screening", testutil.UnmarshalResponse[caseBody](t, rr).Status)
	})

	t.Run("illegal transition", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/cases/case-1/transition",
			map[string]any{"status": "closed"})
		rr := testutil.DoRequest(api, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "invalid_transition")
		assert.Equal(t, "cannot transition from screening to closed",
			testutil.UnmarshalErrorResponse(t, rr)["error_description"])
	})

	t.Run("attach cargo rescores the case", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/cases/case-1/cargo", map[string]any{
			"hs_code": "8703451234", "description": "Passenger car", "weight": 1800.0, "value": 12000.0, "currency": "EUR",
		})
		rr := testutil.DoRequest(api, testutil.WithActor(req, "officer-7", "J. Novak"))
		testutil.AssertStatus(t, rr, http.StatusCreated)
		testutil.AssertJSONContains(t, rr, "hs_code", "8703451234")

		got := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/cases/case-1"))
		body := testutil.UnmarshalResponse[caseBody](t, got)
		assert.Equal(t, 15, body.RiskScore)
		assert.Equal(t, "High-risk commodity (HS: 8703451234)", body.RiskReason)
	})

	t.Run("malformed cargo is rejected", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/cases/case-1/cargo", map[string]any{
			"hs_code": "87", "weight": 100.0, "value": 100.0,
		})
		rr := testutil.DoRequest(api, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "validation_failure")
	})

	t.Run("list cargo", func(t *testing.T) {
		rr := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/cases/case-1/cargo"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONHasKey(t, rr, "cargo_items")
	})

	t.Run("analyze reports the assessment", func(t *testing.T) {
		rr := testutil.DoRequest(api, testutil.NewJSONRequest(t, http.MethodPost, "/cases/case-1/analyze", nil))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "score", float64(15))
		testutil.AssertJSONContains(t, rr, "level", "low")
		testutil.AssertJSONContains(t, rr, "should_inspect", false)
	})

	t.Run("update recomputes risk", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPatch, "/cases/case-1",
			map[string]any{"declared_value": 150000.0})
		rr := testutil.DoRequest(api, testutil.WithActor(req, "officer-7", "J. Novak"))
		testutil.AssertStatusOK(t, rr)
		body := testutil.UnmarshalResponse[caseBody](t, rr)
		assert.Equal(t, 25, body.RiskScore) // commodity 15 + high value 10
		require.NotNil(t, body.DeclaredValue)
		assert.Equal(t, 150000.0, *body.DeclaredValue)
	})

	t.Run("history records the acting officer", func(t *testing.T) {
		rr := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/cases/case-1/history"))
		testutil.AssertStatusOK(t, rr)

		type eventBody struct {
			EventType string `json:"event_type"`
			Actor     struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"actor"`
		}
		body := testutil.UnmarshalResponse[struct {
			Events []eventBody `json:"events"`
		}](t, rr)
		require.NotEmpty(t, body.Events)
		// Newest first: the update from the previous subtest.
		assert.Equal(t, "updated", body.Events[0].EventType)
		assert.Equal(t, "officer-7", body.Events[0].Actor.ID)
		assert.Equal(t, "J. Novak", body.Events[0].Actor.Name)
	})
}

func TestInspectionEndpoints(t *testing.T) {
	api := newAPI(t, nil)
	createCase(t, api, "case-1")

	rr := testutil.DoRequest(api, testutil.NewJSONRequest(t, http.MethodPost, "/cases/case-1/transition",
		map[string]any{"status": "screening"}))
	testutil.AssertStatusOK(t, rr)

	var inspectionID string

	t.Run("create moves the case into inspection", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/cases/case-1/inspections",
			map[string]any{"type": "physical"})
		rr := testutil.DoRequest(api, testutil.WithActor(req, "officer-7", "J. Novak"))
		testutil.AssertStatus(t, rr, http.StatusCreated)

		body := testutil.UnmarshalResponse[inspectionBody](t, rr)
		assert.Equal(t, "case-1", body.CaseID)
		assert.Equal(t, "physical", body.Type)
		assert.Equal(t, "pending", body.Status)
		inspectionID = body.ID

		got := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/cases/case-1"))
		assert.Equal(t, "in_inspection", testutil.UnmarshalResponse[caseBody](t, got).Status)
	})

	t.Run("unknown type", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/cases/case-1/inspections",
			map[string]any{"type": "telepathic"})
		rr := testutil.DoRequest(api, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "validation_failure")
	})

	t.Run("get by id", func(t *testing.T) {
		rr := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/inspections/"+inspectionID))
		testutil.AssertStatusOK(t, rr)
	})

	t.Run("list by case", func(t *testing.T) {
		rr := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/cases/case-1/inspections"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONHasKey(t, rr, "inspections")
	})

	t.Run("decision releases the case", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/inspections/"+inspectionID+"/decision",
			map[string]any{"decision": "release", "comment": "No irregularities"})
		rr := testutil.DoRequest(api, testutil.WithActor(req, "officer-7", "J. Novak"))
		testutil.AssertStatusOK(t, rr)

		body := testutil.UnmarshalResponse[inspectionBody](t, rr)
		assert.Equal(t, "completed", body.Status)
		assert.Equal(t, "release", body.Decision)

		got := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/cases/case-1"))
		assert.Equal(t, "released", testutil.UnmarshalResponse[caseBody](t, got).Status)
	})

	t.Run("double decision", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/inspections/"+inspectionID+"/decision",
			map[string]any{"decision": "hold"})
		rr := testutil.DoRequest(api, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "ineligible_state")
	})

	t.Run("unknown inspection", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/inspections/missing/decision",
			map[string]any{"decision": "release"})
		rr := testutil.DoRequest(api, req)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}

func TestWebhookEndpoints(t *testing.T) {
	api := newAPI(t, nil)

	var webhookID string

	t.Run("create returns the secret once", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/admin/webhooks",
			map[string]any{"url": "https://consumer.example.com/hooks", "event": "case.status_changed"})
		rr := testutil.DoRequest(api, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)

		body := testutil.UnmarshalResponse[webhookBody](t, rr)
		assert.NotEmpty(t, body.Secret)
		assert.True(t, body.Active)
		webhookID = body.ID
	})

	t.Run("list omits secrets", func(t *testing.T) {
		rr := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/admin/webhooks"))
		testutil.AssertStatusOK(t, rr)

		body := testutil.UnmarshalResponse[struct {
			Webhooks []webhookBody `json:"webhooks"`
		}](t, rr)
		require.Len(t, body.Webhooks, 1)
		assert.Empty(t, body.Webhooks[0].Secret)
	})

	t.Run("relative endpoint is rejected", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/admin/webhooks",
			map[string]any{"url": "/hooks", "event": "case.created"})
		rr := testutil.DoRequest(api, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("deactivate and reactivate", func(t *testing.T) {
		rr := testutil.DoRequest(api, testutil.NewJSONRequest(t, http.MethodPost,
			"/admin/webhooks/"+webhookID+"/deactivate", nil))
		testutil.AssertStatusOK(t, rr)
		assert.False(t, testutil.UnmarshalResponse[webhookBody](t, rr).Active)

		rr = testutil.DoRequest(api, testutil.NewJSONRequest(t, http.MethodPost,
			"/admin/webhooks/"+webhookID+"/activate", nil))
		testutil.AssertStatusOK(t, rr)
		assert.True(t, testutil.UnmarshalResponse[webhookBody](t, rr).Active)
	})

	t.Run("deliveries for unknown subscription", func(t *testing.T) {
		rr := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/admin/webhooks/missing/deliveries"))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("empty delivery log", func(t *testing.T) {
		rr := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/admin/webhooks/"+webhookID+"/deliveries"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONHasKey(t, rr, "deliveries")
	})
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("healthy with no dependencies", func(t *testing.T) {
		api := newAPI(t, nil)
		rr := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "healthy")
	})

	t.Run("degraded when a dependency fails", func(t *testing.T) {
		api := newAPI(t, map[string]httptransport.HealthChecker{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})
		rr := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		testutil.AssertJSONContains(t, rr, "status", "degraded")

		body := testutil.UnmarshalResponse[struct {
			Dependencies map[string]string `json:"dependencies"`
		}](t, rr)
		assert.Equal(t, "ok", body.Dependencies["postgres"])
		assert.Contains(t, body.Dependencies["redis"], "connection refused")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	api := newAPI(t, nil)
	rr := testutil.DoRequest(api, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(t, rr)
}
