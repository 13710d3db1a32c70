package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for risk analysis.
type Metrics struct {
	AssessmentsTotal *prometheus.CounterVec
	ScoreObserved    prometheus.Histogram
}

// New creates a Metrics instance with all risk metrics registered.
func New() *Metrics {
	return &Metrics{
		AssessmentsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "customs_risk_assessments_total",
			Help: "Total risk assessments by resulting level",
		}, []string{"level"}),

		ScoreObserved: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "customs_risk_score",
			Help:    "Distribution of computed risk scores",
			Buckets: []float64{0, 10, 20, 30, 45, 60, 75, 90, 100},
		}),
	}
}

// ObserveAssessment records one completed analysis.
func (m *Metrics) ObserveAssessment(level string, score int) {
	if m != nil {
		m.AssessmentsTotal.WithLabelValues(level).Inc()
		m.ScoreObserved.Observe(float64(score))
	}
}
