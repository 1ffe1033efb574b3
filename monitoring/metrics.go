package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	registry        *prometheus.Registry
	roundsCompleted prometheus.Counter
	inspections     *prometheus.CounterVec
	itemsHeld       *prometheus.GaugeVec
	roundDuration   prometheus.Histogram
}

// newMetrics registers the collectors on a registry private to one monitor.
func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,
		roundsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "keepaway_rounds_completed",
			Help: "Number of rounds completed",
		}),
		inspections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "keepaway_inspections_total",
			Help: "Items inspected, by agent",
		}, []string{"agent"}),
		itemsHeld: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "keepaway_items_held",
			Help: "Items queued at each agent after the last round",
		}, []string{"agent"}),
		roundDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "keepaway_round_duration_seconds",
			Help:    "Wall time of one round",
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 12),
		}),
	}
}
