// Package telemetry exposes the service's prometheus metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters incremented by the pipeline and the
// synchronizer. Scraped via the server's /metrics endpoint.
type Metrics struct {
	QueriesTotal       *prometheus.CounterVec
	GenerationFailures *prometheus.CounterVec
	SyncRuns           *prometheus.CounterVec
	SyncedRecords      prometheus.Counter
}

// New registers the metrics on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on reg; tests pass a fresh registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	auto := promauto.With(reg)
	return &Metrics{
		QueriesTotal: auto.NewCounterVec(prometheus.CounterOpts{
			Name: "billbot_queries_total",
			Help: "Answered queries by resolution mode.",
		}, []string{"mode"}),
		GenerationFailures: auto.NewCounterVec(prometheus.CounterOpts{
			Name: "billbot_generation_failures_total",
			Help: "Generation calls that ended in a failure sentinel.",
		}, []string{"reason"}),
		SyncRuns: auto.NewCounterVec(prometheus.CounterOpts{
			Name: "billbot_sync_runs_total",
			Help: "Knowledge base synchronization sweeps by result.",
		}, []string{"result"}),
		SyncedRecords: auto.NewCounter(prometheus.CounterOpts{
			Name: "billbot_synced_records_total",
			Help: "Bill records merged into the index.",
		}),
	}
}
