package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and index Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geodex",
			Name:      "searches_total",
			Help:      "Total number of search queries",
		},
		[]string{"sort", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "geodex",
			Name:      "search_duration_seconds",
			Help:      "Search query duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"sort"},
	)

	SearchTruncatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "geodex",
			Name:      "search_truncated_total",
			Help:      "Searches capped by the safety limit or a deadline",
		},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geodex",
			Name:      "search_cache_total",
			Help:      "Search result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	IndexMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geodex",
			Name:      "index_mutations_total",
			Help:      "Total index mutations",
		},
		[]string{"op", "status"},
	)

	IndexedListings = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "geodex",
			Name:      "indexed_listings",
			Help:      "Number of listings per index",
		},
		[]string{"index"}, // "catalog" / "spatial" / "text"
	)

	IndexInconsistenciesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "geodex",
			Name:      "index_inconsistencies_total",
			Help:      "Index entries found without a catalog listing",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchTruncatedTotal)
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(IndexMutationsTotal)
	prometheus.MustRegister(IndexedListings)
	prometheus.MustRegister(IndexInconsistenciesTotal)
	searchMetricsRegistered = true
}
