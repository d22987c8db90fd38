// Package section implements the quantized four-segment windows the chart
// actually loads, and the debounced loader that keeps exactly one current
// and at most one pending section per trace while the user drags and zooms.
package section

import (
	"github.com/wxcharts/chartfeed/internal/series"
)

const (
	// SegmentsPerSection is the fixed number of contiguous segments a
	// section covers.
	SegmentsPerSection = 4

	// marginSegments is how many whole segments precede the segment
	// containing the requested start, so small pans in either direction
	// stay inside the loaded section.
	marginSegments = 2
)

// Target identifies a section's geometry: where it starts, how long its
// segments are, and the sample spacing. Two requests with equal targets
// describe the same section; the loader compares targets to decide whether
// a request is already satisfied, already pending, or new.
type Target struct {
	Start             int64
	SegmentLength     int64
	AggregateInterval int64
}

// TargetFor computes the section that covers the requested interval:
// segments sized by the resolution selector, the first segment start aligned
// to an integer multiple of the segment length, and the requested start
// falling inside the third segment.
func TargetFor(iv series.Interval, p series.Params) Target {
	segmentLength := series.SegmentLength(iv, p)
	first := (series.FloorDiv(iv.Start, segmentLength) - marginSegments) * segmentLength
	return Target{
		Start:             first,
		SegmentLength:     segmentLength,
		AggregateInterval: series.AggregateInterval(segmentLength, p),
	}
}

// Interval is the full time range the section covers.
func (t Target) Interval() series.Interval {
	return series.Interval{Start: t.Start, End: t.Start + SegmentsPerSection*t.SegmentLength}
}

// SegmentInterval is the time range of the i-th segment.
func (t Target) SegmentInterval(i int) series.Interval {
	start := t.Start + int64(i)*t.SegmentLength
	return series.Interval{Start: start, End: start + t.SegmentLength}
}

// Section is a fully loaded target: the concatenation of its segments'
// samples on a single axis starting at Target.Start with
// Target.AggregateInterval spacing. Immutable once built.
type Section struct {
	target Target
	data   []series.Sample
}

// New builds a loaded section from its geometry and concatenated samples.
func New(t Target, data []series.Sample) *Section {
	return &Section{target: t, data: data}
}

// Target returns the section's geometry.
func (s *Section) Target() Target {
	return s.target
}

// Start is the time of the first sample in unix milliseconds.
func (s *Section) Start() int64 {
	return s.target.Start
}

// AggregateInterval is the sample spacing in milliseconds.
func (s *Section) AggregateInterval() int64 {
	return s.target.AggregateInterval
}

// Data returns the section's sample axis. Callers must not mutate it.
func (s *Section) Data() []series.Sample {
	return s.data
}

// Covers reports whether the section's range contains the interval.
func (s *Section) Covers(iv series.Interval) bool {
	full := s.target.Interval()
	return iv.Start >= full.Start && iv.End <= full.End
}
