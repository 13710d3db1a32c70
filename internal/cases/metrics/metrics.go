package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the case state machine.
type Metrics struct {
	TransitionsTotal *prometheus.CounterVec
}

// New creates a Metrics instance with all case metrics registered.
func New() *Metrics {
	return &Metrics{
		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "customs_case_transitions_total",
			Help: "Total case transition attempts by edge and result",
		}, []string{"from", "to", "result"}), // result: "ok", "rejected"
	}
}

// ObserveTransition records one transition attempt.
func (m *Metrics) ObserveTransition(from, to string, ok bool) {
	if m != nil {
		result := "rejected"
		if ok {
			result = "ok"
		}
		m.TransitionsTotal.WithLabelValues(from, to, result).Inc()
	}
}
