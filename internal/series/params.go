package series

import (
	"fmt"
	"time"
)

// Params is the immutable per-trace configuration: where to fetch samples
// from, which server-side aggregate to request, the archive granularity of
// the underlying store, and how many points a rendered window needs at
// minimum. Offset shifts the queried range backwards in time (for comparing
// against e.g. the same trace one year earlier); the zero value means no
// shift.
type Params struct {
	URL                    string
	AggregateType          string
	ArchiveIntervalMinutes int
	MinDataPoints          int
	Offset                 time.Duration
}

// Validate checks the parameters a trace cannot function without.
func (p Params) Validate() error {
	if p.URL == "" {
		return fmt.Errorf("missing url")
	}
	if p.AggregateType == "" {
		return fmt.Errorf("missing aggregate type")
	}
	if p.ArchiveIntervalMinutes <= 0 {
		return fmt.Errorf("invalid archive interval: %d minutes", p.ArchiveIntervalMinutes)
	}
	if p.MinDataPoints <= 0 {
		return fmt.Errorf("invalid minimum data points: %d", p.MinDataPoints)
	}
	return nil
}

// PointsPerSegment is the number of samples in one segment: the configured
// minimum with 2x oversampling so zero crossings render smoothly.
func (p Params) PointsPerSegment() int64 {
	return int64(p.MinDataPoints) * 2
}

// MinSegmentLength is the shortest usable segment length in milliseconds:
// one archive interval per oversampled point.
func (p Params) MinSegmentLength() int64 {
	return int64(p.ArchiveIntervalMinutes) * 60_000 * p.PointsPerSegment()
}
