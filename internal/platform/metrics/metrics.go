package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the tracker core.
type Metrics struct {
	ProjectionWrites *prometheus.CounterVec
	DegradedWrites   *prometheus.CounterVec
	HistoryAppends   *prometheus.CounterVec
	MutationDuration *prometheus.HistogramVec
}

// New creates and registers all metrics against the given registerer. Tests
// pass a fresh prometheus.NewRegistry to keep registrations isolated.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ProjectionWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faultline_projection_writes_total",
			Help: "Projection writes and deletes by table and outcome",
		}, []string{"table", "op", "outcome"}),
		DegradedWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faultline_degraded_projection_writes_total",
			Help: "Secondary projection writes that failed after bounded retries",
		}, []string{"table"}),
		HistoryAppends: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faultline_history_appends_total",
			Help: "Change history appends by outcome",
		}, []string{"outcome"}),
		MutationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "faultline_mutation_duration_seconds",
			Help:    "End-to-end latency of issue mutations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}
