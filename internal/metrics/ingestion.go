package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion Prometheus metrics.
var (
	IngestionRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatvat",
			Name:      "ingestion_runs_total",
			Help:      "Total number of ingestion runs by outcome",
		},
		[]string{"outcome"},
	)

	SourceFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatvat",
			Name:      "source_failures_total",
			Help:      "Total number of per-source fetch failures",
		},
		[]string{"kind"},
	)

	UnitsWrittenTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chatvat",
			Name:      "units_written_total",
			Help:      "Total content units written to the store",
		},
	)

	DuplicatesDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chatvat",
			Name:      "duplicates_dropped_total",
			Help:      "Total duplicate units dropped within batches",
		},
	)

	UpsertDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "chatvat",
			Name:      "upsert_duration_seconds",
			Help:      "Store upsert duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

var ingestionMetricsRegistered bool

// RegisterIngestionMetrics registers Prometheus ingestion metrics. Must be called once from main.
func RegisterIngestionMetrics() {
	if ingestionMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestionRunsTotal)
	prometheus.MustRegister(SourceFailuresTotal)
	prometheus.MustRegister(UnitsWrittenTotal)
	prometheus.MustRegister(DuplicatesDroppedTotal)
	prometheus.MustRegister(UpsertDuration)
	ingestionMetricsRegistered = true
}
