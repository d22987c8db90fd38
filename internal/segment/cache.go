package segment

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wxcharts/chartfeed/internal/series"
)

// DefaultCapacity is the segment count above which the cache trims itself.
const DefaultCapacity = 100

// cacheKey identifies a segment by its time range alone. The aggregate
// interval is a deterministic function of the trace parameters and the
// interval length, so it never disambiguates anything for a single trace
// and is left out of the key.
type cacheKey struct {
	start int64
	end   int64
}

// Cache is the bounded per-trace store of in-flight and completed segment
// fetches. Eviction is insertion-ordered truncation, not LRU: once the
// capacity is exceeded the oldest entries are dropped and the most recently
// inserted half is kept. Failed segments stay cached so the same key is not
// retried in a loop; the next pan or zoom produces fresh keys naturally.
type Cache struct {
	mu       sync.Mutex
	entries  map[cacheKey]*Segment
	order    []cacheKey
	capacity int

	fetcher *Fetcher
	params  series.Params
	logger  *logrus.Logger
}

// NewCache creates the segment cache for one trace. A capacity of 0 uses
// DefaultCapacity.
func NewCache(fetcher *Fetcher, p series.Params, capacity int, logger *logrus.Logger) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		entries:  make(map[cacheKey]*Segment),
		capacity: capacity,
		fetcher:  fetcher,
		params:   p,
		logger:   logger,
	}
}

// Segment returns the cached segment for the interval, starting a fetch if
// no entry exists yet. The fetch runs on its own context: a caller losing
// interest must not abort bytes that may be displayed after the next pan.
func (c *Cache) Segment(iv series.Interval, aggregateInterval int64) *Segment {
	k := cacheKey{start: iv.Start, end: iv.End}

	c.mu.Lock()
	if seg, ok := c.entries[k]; ok {
		c.mu.Unlock()
		CacheHits.WithLabelValues(c.fetcher.name).Inc()
		return seg
	}

	seg := newSegment(iv, aggregateInterval)
	c.entries[k] = seg
	c.order = append(c.order, k)
	c.trimLocked()
	c.mu.Unlock()

	CacheMisses.WithLabelValues(c.fetcher.name).Inc()
	go func() {
		SegmentFetches.WithLabelValues(c.fetcher.name).Inc()
		data, err := c.fetcher.Fetch(context.Background(), iv, aggregateInterval, c.params)
		if err != nil {
			SegmentFetchFailures.WithLabelValues(c.fetcher.name).Inc()
			c.logger.WithFields(logrus.Fields{
				"trace":    c.fetcher.name,
				"interval": iv.String(),
			}).WithError(err).Warn("Segment fetch failed")
		}
		seg.resolve(data, err)
	}()
	return seg
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// trimLocked drops the oldest entries once capacity is exceeded, keeping the
// most recently inserted half. Evicted in-flight segments still resolve for
// any section that already holds them.
func (c *Cache) trimLocked() {
	if len(c.order) <= c.capacity {
		return
	}
	keep := c.capacity / 2
	drop := len(c.order) - keep
	for _, k := range c.order[:drop] {
		delete(c.entries, k)
	}
	c.order = append([]cacheKey(nil), c.order[drop:]...)
}
