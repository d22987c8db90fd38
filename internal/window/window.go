// Package window extracts the display-ready slice of a loaded section: the
// samples inside the requested interval plus one linearly interpolated point
// at each boundary, so a rendered line reaches the visible chart edge
// without jumping as points enter and leave the window during a pan.
package window

import (
	"github.com/wxcharts/chartfeed/internal/section"
	"github.com/wxcharts/chartfeed/internal/series"
)

// Extract returns the points of the section that fall inside the requested
// interval, inclusive of both grid positions, extended with a synthetic
// point exactly at each interval bound when the bound falls strictly
// between two non-null neighbors. No point is synthesized across a data
// gap.
func Extract(sec *section.Section, iv series.Interval) []series.Point {
	data := sec.Data()
	start := sec.Start()
	agg := sec.AggregateInterval()

	first := series.CeilDiv(iv.Start-start, agg)
	if first < 0 {
		first = 0
	}
	last := series.FloorDiv(iv.End-start, agg)
	if last > int64(len(data))-1 {
		last = int64(len(data)) - 1
	}
	if first > last {
		return nil
	}

	points := make([]series.Point, 0, last-first+3)

	if left, ok := boundaryPoint(data, start, agg, first-1, first, iv.Start); ok {
		points = append(points, left)
	}
	for i := first; i <= last; i++ {
		points = append(points, series.Point{Time: start + i*agg, Sample: data[i]})
	}
	if right, ok := boundaryPoint(data, start, agg, last, last+1, iv.End); ok {
		points = append(points, right)
	}
	return points
}

// boundaryPoint interpolates a sample at time t between grid indices i and
// j. It reports false when t is not strictly between the two grid times,
// when either index is out of range, or when either neighbor is null.
func boundaryPoint(data []series.Sample, start, agg, i, j, t int64) (series.Point, bool) {
	if i < 0 || j >= int64(len(data)) {
		return series.Point{}, false
	}
	ti := start + i*agg
	tj := start + j*agg
	if t <= ti || t >= tj {
		return series.Point{}, false
	}
	vi, vj := data[i], data[j]
	if !vi.Valid || !vj.Valid {
		return series.Point{}, false
	}
	v := vi.Value + (vj.Value-vi.Value)*float64(t-ti)/float64(tj-ti)
	return series.Point{Time: t, Sample: series.Number(v)}, true
}
