package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for webhook dispatch.
type Metrics struct {
	DeliveriesTotal  *prometheus.CounterVec
	DeliveryDuration prometheus.Histogram
}

// New creates a Metrics instance with all dispatch metrics registered.
func New() *Metrics {
	return &Metrics{
		DeliveriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "customs_webhook_deliveries_total",
			Help: "Total webhook delivery attempts by outcome",
		}, []string{"outcome"}), // outcome: "success", "failure"

		DeliveryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "customs_webhook_delivery_duration_seconds",
			Help:    "Duration of single webhook delivery attempts",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// ObserveDelivery records one attempt.
func (m *Metrics) ObserveDelivery(success bool, d time.Duration) {
	if m != nil {
		outcome := "failure"
		if success {
			outcome = "success"
		}
		m.DeliveriesTotal.WithLabelValues(outcome).Inc()
		m.DeliveryDuration.Observe(d.Seconds())
	}
}
