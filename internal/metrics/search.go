package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SearchCacheTotal counts search cache lookups, labelled hit or miss.
	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recipedex",
			Name:      "search_cache_total",
			Help:      "Total search cache lookups by result (hit or miss)",
		},
		[]string{"result"},
	)

	// SearchDuration tracks end-to-end search latency including cache misses.
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "recipedex",
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"cached"},
	)

	// IngestRecordsTotal counts ingested records by outcome.
	IngestRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recipedex",
			Name:      "ingest_records_total",
			Help:      "Total ingested recipe records by status (ok or failed)",
		},
		[]string{"status"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the search and ingest collectors.
// Call once at startup.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(IngestRecordsTotal)
	searchMetricsRegistered = true
}
