// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// domain services, and encode; no business logic lives here.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rodzerz/customs-crm/internal/cases"
	"github.com/rodzerz/customs-crm/internal/domain"
	"github.com/rodzerz/customs-crm/internal/inspection"
	"github.com/rodzerz/customs-crm/pkg/platform/httputil"
)

// CaseHandler serves the case lifecycle endpoints.
type CaseHandler struct {
	cases       *cases.Service
	inspections *inspection.Service
	logger      *slog.Logger
}

func NewCaseHandler(caseSvc *cases.Service, inspSvc *inspection.Service, logger *slog.Logger) *CaseHandler {
	return &CaseHandler{cases: caseSvc, inspections: inspSvc, logger: logger}
}

// Register mounts the case routes on the router.
func (h *CaseHandler) Register(r chi.Router) {
	r.Route("/cases", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Route("/{caseID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Patch("/", h.handleUpdate)
			r.Get("/history", h.handleHistory)
			r.Get("/cargo", h.handleListCargo)
			r.Post("/cargo", h.handleAttachCargo)
			r.Post("/transition", h.handleTransition)
			r.Post("/analyze", h.handleAnalyze)
			r.Get("/inspections", h.handleListInspections)
			r.Post("/inspections", h.handleCreateInspection)
		})
	})
}

type createCaseRequest struct {
	ID                 string     `json:"id"`
	VehicleID          string     `json:"vehicle_id"`
	Route              string     `json:"route"`
	OriginCountry      string     `json:"origin_country"`
	DestinationCountry string     `json:"destination_country"`
	DeclaredValue      *float64   `json:"declared_value"`
	ArrivedAt          *time.Time `json:"arrived_at"`
}

func (h *CaseHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCaseRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.cases.Create(r.Context(), actorFromRequest(r), cases.CreateInput{
		ID:                 req.ID,
		VehicleID:          req.VehicleID,
		Route:              req.Route,
		OriginCountry:      req.OriginCountry,
		DestinationCountry: req.DestinationCountry,
		DeclaredValue:      req.DeclaredValue,
		ArrivedAt:          req.ArrivedAt,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toCaseResponse(c))
}

func (h *CaseHandler) handleList(w http.ResponseWriter, r *http.Request) {
	cs, err := h.cases.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"cases": toCaseResponses(cs)})
}

func (h *CaseHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.cases.Get(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

type updateCaseRequest struct {
	DeclaredValue      *float64 `json:"declared_value"`
	ActualValue        *float64 `json:"actual_value"`
	PreviousViolations *int     `json:"previous_violations"`
	Route              *string  `json:"route"`
}

func (h *CaseHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateCaseRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.cases.Update(r.Context(), actorFromRequest(r), chi.URLParam(r, "caseID"), cases.UpdateInput{
		DeclaredValue:      req.DeclaredValue,
		ActualValue:        req.ActualValue,
		PreviousViolations: req.PreviousViolations,
		Route:              req.Route,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *CaseHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	events, err := h.cases.History(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": toEventResponses(events)})
}

func (h *CaseHandler) handleListCargo(w http.ResponseWriter, r *http.Request) {
	items, err := h.cases.Cargo(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]cargoResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toCargoResponse(item))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"cargo_items": out})
}

type attachCargoRequest struct {
	HSCode      string  `json:"hs_code"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
	Value       float64 `json:"value"`
	Currency    string  `json:"currency"`
}

func (h *CaseHandler) handleAttachCargo(w http.ResponseWriter, r *http.Request) {
	var req attachCargoRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	item, err := h.cases.AttachCargo(r.Context(), actorFromRequest(r), chi.URLParam(r, "caseID"), cases.CargoInput{
		HSCode:      req.HSCode,
		Description: req.Description,
		Weight:      req.Weight,
		Value:       req.Value,
		Currency:    req.Currency,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toCargoResponse(item))
}

type transitionRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h *CaseHandler) handleTransition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.cases.Transition(r.Context(), actorFromRequest(r), chi.URLParam(r, "caseID"), domain.CaseStatus(req.Status), req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *CaseHandler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	assessment, err := h.cases.Analyze(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"score":          assessment.Score,
		"level":          string(assessment.Level),
		"should_inspect": assessment.ShouldInspect,
		"reasons":        assessment.Reasons,
	})
}

func (h *CaseHandler) handleListInspections(w http.ResponseWriter, r *http.Request) {
	insps, err := h.inspections.ListByCase(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]inspectionResponse, 0, len(insps))
	for _, insp := range insps {
		out = append(out, toInspectionResponse(insp))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"inspections": out})
}

type createInspectionRequest struct {
	Type string `json:"type"`
}

func (h *CaseHandler) handleCreateInspection(w http.ResponseWriter, r *http.Request) {
	var req createInspectionRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	insp, err := h.inspections.Create(r.Context(), actorFromRequest(r), chi.URLParam(r, "caseID"), domain.InspectionType(req.Type))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toInspectionResponse(insp))
}
