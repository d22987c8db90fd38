// Package series defines the value types shared by the chart data pipeline:
// time intervals, nullable samples, timestamped points, and per-trace
// parameters, plus the resolution selection that maps a requested interval
// to a segment length.
package series

import (
	"encoding/json"
	"fmt"
)

// Interval is a half-open time range [Start, End) in absolute unix
// milliseconds. Intervals are immutable values; equality is structural.
type Interval struct {
	Start int64
	End   int64
}

// NewInterval validates start < end.
func NewInterval(start, end int64) (Interval, error) {
	if start >= end {
		return Interval{}, fmt.Errorf("invalid interval: start %d must be before end %d", start, end)
	}
	return Interval{Start: start, End: end}, nil
}

// Duration returns the interval length in milliseconds.
func (iv Interval) Duration() int64 {
	return iv.End - iv.Start
}

// Equal reports structural equality.
func (iv Interval) Equal(other Interval) bool {
	return iv == other
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d,%d)", iv.Start, iv.End)
}

// Sample is a single value on an evenly spaced time axis. Valid is false for
// the explicit "no data" marker, which the upstream API encodes as JSON null.
type Sample struct {
	Value float64
	Valid bool
}

// Null returns the "no data" marker.
func Null() Sample {
	return Sample{}
}

// Number returns a valid sample.
func Number(v float64) Sample {
	return Sample{Value: v, Valid: true}
}

// UnmarshalJSON decodes either a number or null.
func (s *Sample) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Sample{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Sample{Value: v, Valid: true}
	return nil
}

// MarshalJSON encodes the null marker as JSON null.
func (s Sample) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// Point binds a sample to an absolute time in unix milliseconds. Assembled
// display windows are returned as points because the interpolated boundary
// samples fall off the even grid.
type Point struct {
	Time   int64
	Sample Sample
}
