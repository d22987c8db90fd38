package series

// SegmentLength maps a requested interval to the length in milliseconds of
// the segments used to cover it. The result is always the minimum segment
// length times a power of two, chosen as the smallest such length that is at
// least as long as the interval. Quantizing to powers of two bounds the
// number of distinct resolutions in play and keeps segment boundaries
// aligned across zoom levels, so the segment cache stays reusable and
// redraws do not jitter.
func SegmentLength(iv Interval, p Params) int64 {
	length := p.MinSegmentLength()
	delta := iv.Duration()
	for length < delta {
		length <<= 1
	}
	return length
}

// AggregateInterval is the sample spacing in milliseconds for a segment of
// the given length.
func AggregateInterval(segmentLength int64, p Params) int64 {
	return segmentLength / p.PointsPerSegment()
}

// FloorDiv divides rounding towards negative infinity, so alignment math
// stays correct for timestamps before the epoch.
func FloorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// CeilDiv divides rounding towards positive infinity.
func CeilDiv(a, b int64) int64 {
	return -FloorDiv(-a, b)
}
