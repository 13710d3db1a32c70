package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the inspection workflow.
type Metrics struct {
	InspectionsTotal *prometheus.CounterVec
	DecisionsTotal   *prometheus.CounterVec
}

// New creates a Metrics instance with all inspection metrics registered.
func New() *Metrics {
	return &Metrics{
		InspectionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "customs_inspections_total",
			Help: "Total inspections opened by type",
		}, []string{"type"}),

		DecisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "customs_inspection_decisions_total",
			Help: "Total inspection decisions recorded by type and decision",
		}, []string{"type", "decision"}),
	}
}

// ObserveInspection records one opened inspection.
func (m *Metrics) ObserveInspection(inspectionType string) {
	if m != nil {
		m.InspectionsTotal.WithLabelValues(inspectionType).Inc()
	}
}

// ObserveDecision records one recorded decision.
func (m *Metrics) ObserveDecision(inspectionType, decision string) {
	if m != nil {
		m.DecisionsTotal.WithLabelValues(inspectionType, decision).Inc()
	}
}
