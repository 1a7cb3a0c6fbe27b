package metrics

import "github.com/prometheus/client_golang/prometheus"

// Index synchronization Prometheus metrics.
var (
	IndexOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "index_operations_total",
			Help:      "Total number of index store operations",
		},
		[]string{"type", "op", "status"}, // op: "save" / "remove"
	)

	ReindexDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "reindex_decisions_total",
			Help:      "Reindex determinations by outcome",
		},
		[]string{"type", "outcome"}, // "reindex" / "skip"
	)

	ChangeCapabilityMissingTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "change_capability_missing_total",
			Help:      "Ext fields skipped because the record cannot report saved changes",
		},
		[]string{"type", "field"},
	)

	RebuildRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "rebuild_records_total",
			Help:      "Total records reindexed by full rebuilds",
		},
		[]string{"type"},
	)

	RebuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "searchsync",
			Name:      "rebuild_duration_seconds",
			Help:      "Full rebuild duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
		},
		[]string{"type", "status"},
	)
)

// Operation status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

var indexMetricsRegistered bool

// RegisterIndexMetrics registers the index sync metrics. Must be called once from main.
func RegisterIndexMetrics() {
	if indexMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexOperationsTotal)
	prometheus.MustRegister(ReindexDecisionsTotal)
	prometheus.MustRegister(ChangeCapabilityMissingTotal)
	prometheus.MustRegister(RebuildRecordsTotal)
	prometheus.MustRegister(RebuildDuration)
	indexMetricsRegistered = true
}

// Status maps an error to a status label.
func Status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}
