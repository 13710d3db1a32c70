package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rodzerz/customs-crm/internal/domain"
	"github.com/rodzerz/customs-crm/internal/inspection"
	"github.com/rodzerz/customs-crm/pkg/platform/httputil"
)

// InspectionHandler serves inspection lookup and decision recording.
// Creation lives under the case routes since inspections belong to cases.
type InspectionHandler struct {
	inspections *inspection.Service
	logger      *slog.Logger
}

func NewInspectionHandler(inspSvc *inspection.Service, logger *slog.Logger) *InspectionHandler {
	return &InspectionHandler{inspections: inspSvc, logger: logger}
}

func (h *InspectionHandler) Register(r chi.Router) {
	r.Route("/inspections/{inspectionID}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Post("/decision", h.handleDecision)
	})
}

func (h *InspectionHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	insp, err := h.inspections.Get(r.Context(), chi.URLParam(r, "inspectionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toInspectionResponse(insp))
}

type decisionRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
	Comment  string `json:"comment"`
}

func (h *InspectionHandler) handleDecision(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	insp, err := h.inspections.RecordDecision(r.Context(), actorFromRequest(r), chi.URLParam(r, "inspectionID"), domain.Decision(req.Decision), req.Reason, req.Comment)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toInspectionResponse(insp))
}
