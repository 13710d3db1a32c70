package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	platformmetrics "github.com/rodzerz/customs-crm/internal/platform/metrics"
	"github.com/rodzerz/customs-crm/pkg/platform/httputil"
	"github.com/rodzerz/customs-crm/pkg/platform/middleware/metadata"
	"github.com/rodzerz/customs-crm/pkg/platform/middleware/requestid"
	"github.com/rodzerz/customs-crm/pkg/platform/middleware/requesttime"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker func(ctx context.Context) error

// Registrar is any handler group that mounts its routes on the router.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter assembles the full API surface with the shared middleware chain.
// httpMetrics may be nil to disable request instrumentation.
func NewRouter(checks map[string]HealthChecker, httpMetrics *platformmetrics.HTTP, handlers ...Registrar) http.Handler {
	logger := httplog.NewLogger("customs-crm", httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(httplog.RequestLogger(logger))
	r.Use(httpMetrics.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", handleHealth(checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				deps[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}

		body := map[string]any{"status": "healthy"}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		if len(deps) > 0 {
			body["dependencies"] = deps
		}
		httputil.WriteJSON(w, status, body)
	}
}
