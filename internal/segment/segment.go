// Package segment implements the smallest independently fetched and cached
// unit of chart data: a fixed-length time range of evenly spaced samples,
// fetched once over HTTP and shared by every section that overlaps it.
package segment

import (
	"github.com/wxcharts/chartfeed/internal/series"
)

// Segment is one cacheable run of samples covering Interval at
// AggregateInterval spacing. A segment begins fetching as soon as it is
// created and is immutable once resolved. The cache owns segments; sections
// hold non-owning references and wait on Done.
type Segment struct {
	Interval          series.Interval
	AggregateInterval int64

	done chan struct{}
	data []series.Sample
	err  error
}

func newSegment(iv series.Interval, aggregateInterval int64) *Segment {
	return &Segment{
		Interval:          iv,
		AggregateInterval: aggregateInterval,
		done:              make(chan struct{}),
	}
}

// Done is closed once the segment's fetch has resolved, successfully or not.
func (s *Segment) Done() <-chan struct{} {
	return s.done
}

// Result returns the fetched samples. Only valid after Done is closed.
func (s *Segment) Result() ([]series.Sample, error) {
	return s.data, s.err
}

// ExpectedLen is the number of samples a resolved segment holds.
func (s *Segment) ExpectedLen() int {
	return int(s.Interval.Duration() / s.AggregateInterval)
}

func (s *Segment) resolve(data []series.Sample, err error) {
	s.data = data
	s.err = err
	close(s.done)
}
