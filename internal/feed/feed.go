// Package feed is the facade the rendering layer talks to: one Fetcher per
// trace, asked for a window of wide data on every pan or zoom tick, either
// answered immediately from the loaded section or with a future.
package feed

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/wxcharts/chartfeed/internal/section"
	"github.com/wxcharts/chartfeed/internal/segment"
	"github.com/wxcharts/chartfeed/internal/series"
	"github.com/wxcharts/chartfeed/internal/window"
)

// Options tunes a Fetcher. Zero values pick the defaults used in
// production.
type Options struct {
	Client         *http.Client
	CacheCapacity  int
	Debounce       time.Duration
	RateLimit      float64 // upstream requests per second, 0 = unlimited
	RateLimitBurst int
}

// Fetcher owns one trace's segment cache and section loader. Traces on the
// same chart each get their own Fetcher; nothing is shared across traces
// even when their parameters overlap.
type Fetcher struct {
	name   string
	params series.Params
	loader *section.Loader
	cache  *segment.Cache
	logger *logrus.Logger
}

// Future resolves once the requested window's section has loaded.
type Future struct {
	done   chan struct{}
	points []series.Point
	err    error
}

// Done is closed when the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result returns the assembled wide data. Only valid after Done is closed.
func (f *Future) Result() ([]series.Point, error) {
	return f.points, f.err
}

// New creates the fetcher for one trace.
func New(name string, p series.Params, opts Options, logger *logrus.Logger) (*Fetcher, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	fetcher := segment.NewFetcher(name, opts.Client, limiter, logger)
	cache := segment.NewCache(fetcher, p, opts.CacheCapacity, logger)
	loader := section.NewLoader(cache, p, opts.Debounce, logger)

	return &Fetcher{
		name:   name,
		params: p,
		loader: loader,
		cache:  cache,
		logger: logger,
	}, nil
}

// Name returns the trace name.
func (f *Fetcher) Name() string {
	return f.name
}

// Params returns the trace configuration.
func (f *Fetcher) Params() series.Params {
	return f.params
}

// RequestWide returns the interval's samples extended with one interpolated
// boundary point on each side. When the interval's section is already
// loaded the points come back directly and the future is nil; callers can
// use them in the same frame. Otherwise the points are nil and the future
// resolves once the section loads, or fails with the load error or
// ErrSuperseded when a later request replaced this one.
func (f *Fetcher) RequestWide(iv series.Interval) ([]series.Point, *Future) {
	sec, sectionFut := f.loader.Request(iv)
	if sec != nil {
		return window.Extract(sec, iv), nil
	}

	fut := &Future{done: make(chan struct{})}
	go func() {
		<-sectionFut.Done()
		s, err := sectionFut.Result()
		if err != nil {
			fut.err = err
		} else {
			fut.points = window.Extract(s, iv)
		}
		close(fut.done)
	}()
	return nil, fut
}

// Loaded reports whether RequestWide for the interval would answer
// synchronously.
func (f *Fetcher) Loaded(iv series.Interval) bool {
	return f.loader.Loaded(iv)
}

// CachedSegments reports the number of live entries in the segment cache.
func (f *Fetcher) CachedSegments() int {
	return f.cache.Len()
}
