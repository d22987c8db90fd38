package window_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wxcharts/chartfeed/internal/section"
	"github.com/wxcharts/chartfeed/internal/series"
	"github.com/wxcharts/chartfeed/internal/window"
)

// testSection builds a loaded section starting at 0 with 1000ms spacing and
// one segment's worth of margin either side of the given samples.
func testSection(samples ...series.Sample) *section.Section {
	target := section.Target{
		Start:             0,
		SegmentLength:     int64(len(samples)) * 1000 / section.SegmentsPerSection,
		AggregateInterval: 1000,
	}
	return section.New(target, samples)
}

func numbers(values ...float64) []series.Sample {
	samples := make([]series.Sample, len(values))
	for i, v := range values {
		samples[i] = series.Number(v)
	}
	return samples
}

func TestExtractBoundaryInterpolation(t *testing.T) {
	sec := testSection(numbers(0, 10, 20, 30, 40, 50, 60, 70)...)

	// Request bounds fall strictly between grid points 1..2 and 5..6.
	iv := series.Interval{Start: 1250, End: 5500}
	points := window.Extract(sec, iv)
	require.Len(t, points, 6)

	// Left edge: v = 10 + (20-10)*(1250-1000)/(2000-1000)
	assert.Equal(t, series.Point{Time: 1250, Sample: series.Number(12.5)}, points[0])

	// Interior samples at grid times 2000..5000.
	for i, v := range []float64{20, 30, 40, 50} {
		assert.Equal(t, series.Point{Time: int64(2000 + i*1000), Sample: series.Number(v)}, points[i+1])
	}

	// Right edge: v = 50 + (60-50)*(5500-5000)/(6000-5000)
	assert.Equal(t, series.Point{Time: 5500, Sample: series.Number(55)}, points[5])
}

func TestExtractNullNeighborOmitsBoundary(t *testing.T) {
	samples := numbers(0, 10, 20, 30, 40, 50, 60, 70)
	samples[1] = series.Null() // left neighbor of the first sliced sample
	samples[6] = series.Null() // right neighbor of the last sliced sample
	sec := testSection(samples...)

	iv := series.Interval{Start: 1250, End: 5500}
	points := window.Extract(sec, iv)
	require.Len(t, points, 4)

	// No synthetic points: the slice starts and ends on the grid.
	assert.Equal(t, int64(2000), points[0].Time)
	assert.Equal(t, int64(5000), points[3].Time)
}

func TestExtractGridAlignedBoundsAddNothing(t *testing.T) {
	sec := testSection(numbers(0, 10, 20, 30, 40, 50, 60, 70)...)

	iv := series.Interval{Start: 2000, End: 5000}
	points := window.Extract(sec, iv)
	require.Len(t, points, 4)
	assert.Equal(t, int64(2000), points[0].Time)
	assert.Equal(t, int64(5000), points[3].Time)
}

func TestExtractClampsToSectionBounds(t *testing.T) {
	sec := testSection(numbers(0, 10, 20, 30, 40, 50, 60, 70)...)

	// Requested interval sticking out on both sides of the section.
	iv := series.Interval{Start: -3000, End: 12_000}
	points := window.Extract(sec, iv)
	require.Len(t, points, 8)
	assert.Equal(t, int64(0), points[0].Time)
	assert.Equal(t, int64(7000), points[7].Time)
}

func TestExtractNullSampleAtEdgeOmitsBoundary(t *testing.T) {
	samples := numbers(0, 10, 20, 30, 40, 50, 60, 70)
	samples[2] = series.Null() // first sliced sample itself is null
	sec := testSection(samples...)

	iv := series.Interval{Start: 1250, End: 5500}
	points := window.Extract(sec, iv)

	// No left synthetic point; the null grid sample is still included.
	assert.Equal(t, int64(2000), points[0].Time)
	assert.False(t, points[0].Sample.Valid)
	// Right edge interpolates as usual.
	assert.Equal(t, series.Point{Time: 5500, Sample: series.Number(55)}, points[len(points)-1])
}
