package segment

import "github.com/prometheus/client_golang/prometheus"

// Cache and fetch counters, registered by the server setup.
var (
	SegmentFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartfeed_segment_fetches_total",
			Help: "Number of upstream segment fetches started",
		},
		[]string{"trace"},
	)
	SegmentFetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartfeed_segment_fetch_failures_total",
			Help: "Number of upstream segment fetches that failed",
		},
		[]string{"trace"},
	)
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartfeed_segment_cache_hits_total",
			Help: "Number of segment lookups served from the cache",
		},
		[]string{"trace"},
	)
	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartfeed_segment_cache_misses_total",
			Help: "Number of segment lookups that started a fetch",
		},
		[]string{"trace"},
	)
)
