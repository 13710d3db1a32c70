package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rodzerz/customs-crm/internal/notify"
	"github.com/rodzerz/customs-crm/pkg/platform/httputil"
)

// WebhookHandler serves the subscription admin surface.
type WebhookHandler struct {
	admin  *notify.Admin
	logger *slog.Logger
}

func NewWebhookHandler(admin *notify.Admin, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{admin: admin, logger: logger}
}

func (h *WebhookHandler) Register(r chi.Router) {
	r.Route("/admin/webhooks", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Route("/{webhookID}", func(r chi.Router) {
			r.Post("/activate", h.handleSetActive(true))
			r.Post("/deactivate", h.handleSetActive(false))
			r.Get("/deliveries", h.handleDeliveries)
		})
	})
}

type createWebhookRequest struct {
	URL   string `json:"url"`
	Event string `json:"event"`
}

func (h *WebhookHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createWebhookRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	wh, err := h.admin.Create(r.Context(), req.URL, req.Event)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	// The signing secret appears once, in this response.
	httputil.WriteJSON(w, http.StatusCreated, toWebhookResponse(wh, true))
}

func (h *WebhookHandler) handleList(w http.ResponseWriter, r *http.Request) {
	whs, err := h.admin.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]webhookResponse, 0, len(whs))
	for _, wh := range whs {
		out = append(out, toWebhookResponse(wh, false))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"webhooks": out})
}

func (h *WebhookHandler) handleSetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wh, err := h.admin.SetActive(r.Context(), chi.URLParam(r, "webhookID"), active)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, toWebhookResponse(wh, false))
	}
}

func (h *WebhookHandler) handleDeliveries(w http.ResponseWriter, r *http.Request) {
	recs, err := h.admin.Deliveries(r.Context(), chi.URLParam(r, "webhookID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"deliveries": toDeliveryResponses(recs)})
}
