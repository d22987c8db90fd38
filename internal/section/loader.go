package section

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wxcharts/chartfeed/internal/segment"
	"github.com/wxcharts/chartfeed/internal/series"
)

// ErrSuperseded resolves futures whose target was replaced by a newer
// request before it finished loading. The caller that issued the newer
// request holds a newer future; nobody waits on a superseded one.
var ErrSuperseded = errors.New("section load superseded by a newer request")

// DefaultDebounce is how long a target must stay unchanged before its
// segments are fetched. Continuous drag and zoom gestures re-target many
// times per second; only the settled target is loaded.
const DefaultDebounce = 100 * time.Millisecond

// Future resolves once a section load completes or fails.
type Future struct {
	done    chan struct{}
	section *Section
	err     error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Done is closed when the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result returns the loaded section. Only valid after Done is closed.
func (f *Future) Result() (*Section, error) {
	return f.section, f.err
}

func (f *Future) resolve(s *Section, err error) {
	f.section = s
	f.err = err
	close(f.done)
}

// load is one debounced attempt at a target. Completions are committed only
// if the attempt is still the designated pending one; comparing the load
// value itself, rather than nulling shared callback fields, is what makes a
// slow stale response unable to overwrite a newer current section.
type load struct {
	target  Target
	timer   *time.Timer
	futures []*Future
}

// Loader runs the per-trace section state machine: Idle until the first
// request, Debouncing while the target keeps changing, Loading while the
// four segment fetches are outstanding, Loaded when a section is current.
// At most one section is current and at most one load is pending at any
// time. Superseded loads are not cancelled at the network layer; their
// segments finish fetching into the cache for later reuse.
type Loader struct {
	mu       sync.Mutex
	params   series.Params
	cache    *segment.Cache
	debounce time.Duration
	logger   *logrus.Logger

	current *Section
	pending *load
}

// NewLoader creates the loader for one trace. A debounce of 0 uses
// DefaultDebounce.
func NewLoader(cache *segment.Cache, p series.Params, debounce time.Duration, logger *logrus.Logger) *Loader {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Loader{
		params:   p,
		cache:    cache,
		debounce: debounce,
		logger:   logger,
	}
}

// Request resolves the interval to its target section. If that section is
// already loaded it is returned directly; otherwise a future is returned
// and a debounced load is armed or joined. A request for a target different
// from the pending one supersedes it: the old timer is stopped, the old
// futures resolve with ErrSuperseded, and any in-flight completion for the
// old target will be dropped.
func (l *Loader) Request(iv series.Interval) (*Section, *Future) {
	t := TargetFor(iv, l.params)

	l.mu.Lock()
	if l.current != nil && l.current.target == t {
		s := l.current
		l.mu.Unlock()
		return s, nil
	}

	if l.pending != nil && l.pending.target == t {
		fut := newFuture()
		l.pending.futures = append(l.pending.futures, fut)
		l.mu.Unlock()
		return nil, fut
	}

	superseded := l.pending
	if superseded != nil && superseded.timer != nil {
		superseded.timer.Stop()
	}

	ld := &load{target: t}
	fut := newFuture()
	ld.futures = append(ld.futures, fut)
	ld.timer = time.AfterFunc(l.debounce, func() { l.beginLoad(ld) })
	l.pending = ld
	l.mu.Unlock()

	if superseded != nil {
		for _, f := range superseded.futures {
			f.resolve(nil, ErrSuperseded)
		}
	}
	return nil, fut
}

// Current returns the loaded section, if any.
func (l *Loader) Current() (*Section, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current, l.current != nil
}

// Loaded reports whether the interval's target section is current.
func (l *Loader) Loaded(iv series.Interval) bool {
	t := TargetFor(iv, l.params)
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current != nil && l.current.target == t
}

// beginLoad fires when the debounce timer elapses. It pulls the four
// segments from the cache, which starts fetches only for misses, then waits
// for them off the lock.
func (l *Loader) beginLoad(ld *load) {
	l.mu.Lock()
	if l.pending != ld {
		l.mu.Unlock()
		return
	}
	segments := make([]*segment.Segment, SegmentsPerSection)
	for i := range segments {
		segments[i] = l.cache.Segment(ld.target.SegmentInterval(i), ld.target.AggregateInterval)
	}
	l.mu.Unlock()

	go l.awaitSegments(ld, segments)
}

func (l *Loader) awaitSegments(ld *load, segments []*segment.Segment) {
	data := make([]series.Sample, 0, SegmentsPerSection*int(ld.target.SegmentLength/ld.target.AggregateInterval))
	var loadErr error
	for _, s := range segments {
		<-s.Done()
		d, err := s.Result()
		if err != nil {
			if loadErr == nil {
				loadErr = err
			}
			continue
		}
		data = append(data, d...)
	}

	l.mu.Lock()
	if l.pending != ld {
		// A newer request took over while these segments resolved. The
		// bytes stay in the cache; the completion is dropped.
		l.mu.Unlock()
		l.logger.WithField("target_start", ld.target.Start).Debug("Dropped superseded section completion")
		return
	}
	l.pending = nil

	if loadErr != nil {
		// The previously loaded section, if any, stays current rather
		// than blanking the chart.
		l.mu.Unlock()
		for _, f := range ld.futures {
			f.resolve(nil, loadErr)
		}
		return
	}

	sec := New(ld.target, data)
	l.current = sec
	l.mu.Unlock()

	for _, f := range ld.futures {
		f.resolve(sec, nil)
	}
}
