package metrics

import "github.com/prometheus/client_golang/prometheus"

// EmbeddingCacheTotal counts embedding cache lookups, labelled hit or miss.
var EmbeddingCacheTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "recipedex",
		Name:      "embedding_cache_total",
		Help:      "Total embedding cache lookups by result (hit or miss)",
	},
	[]string{"result"},
)

var embMetricsRegistered bool

// RegisterEmbeddingMetrics registers the embedding collectors. Call once at
// startup.
func RegisterEmbeddingMetrics() {
	if embMetricsRegistered {
		return
	}
	prometheus.MustRegister(EmbeddingCacheTotal)
	embMetricsRegistered = true
}
