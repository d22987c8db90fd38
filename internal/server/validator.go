package server

import (
	"fmt"
	"time"
)

const maxTimeRange = 2 * 365 * 24 * time.Hour

// RequestValidator handles input validation for window queries.
type RequestValidator struct {
	maxRangeMs int64
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{maxRangeMs: maxTimeRange.Milliseconds()}
}

// Validate checks if the request parameters are valid.
func (v *RequestValidator) Validate(start, end int64) error {
	if start == 0 || end == 0 {
		return fmt.Errorf("missing timestamp")
	}

	if start >= end {
		return fmt.Errorf("start time must be before end time")
	}

	if end-start > v.maxRangeMs {
		return fmt.Errorf("time range exceeds maximum allowed")
	}

	return nil
}
