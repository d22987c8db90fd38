package segment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/wxcharts/chartfeed/internal/series"
)

var (
	ErrUpstreamRequest   = errors.New("error requesting upstream data")
	ErrUpstreamStatus    = errors.New("error status from upstream")
	ErrMalformedResponse = errors.New("malformed upstream response")
)

const fetchTimeout = 30 * time.Second

// Fetcher issues the per-segment HTTP GETs against the aggregation API.
// One fetcher serves one trace; its rate limiter bounds how hard a drag
// gesture can hammer the upstream.
type Fetcher struct {
	name    string
	client  *http.Client
	limiter *rate.Limiter
	logger  *logrus.Logger
}

// NewFetcher creates a fetcher for one trace. A nil client uses
// http.DefaultClient.
func NewFetcher(name string, client *http.Client, limiter *rate.Limiter, logger *logrus.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		name:    name,
		client:  client,
		limiter: limiter,
		logger:  logger,
	}
}

// upstreamResponse mirrors the aggregation API body. The values correspond
// to consecutive aggregate intervals starting at the requested start time;
// the server may omit a trailing window with no data, but never a leading
// one. Unit is informational and may be absent.
type upstreamResponse struct {
	Values []series.Sample `json:"values"`
	Unit   string          `json:"unit"`
}

// Fetch retrieves the sample vector for one segment. The returned slice
// always has exactly floor((end-start)/aggregateInterval) entries: short
// responses are tail-padded with the null marker. Responses that are too
// long, fail to decode, or arrive with a non-2xx status reject with a
// wrapped sentinel error.
func (f *Fetcher) Fetch(ctx context.Context, iv series.Interval, aggregateInterval int64, p series.Params) ([]series.Sample, error) {
	requestID := uuid.NewString()

	offsetMs := p.Offset.Milliseconds()
	q := url.Values{}
	q.Set("start", time.UnixMilli(iv.Start-offsetMs).UTC().Format(time.RFC3339))
	q.Set("end", time.UnixMilli(iv.End-offsetMs).UTC().Format(time.RFC3339))
	q.Set("aggregateInterval", fmt.Sprintf("%d", aggregateInterval/1000))
	q.Set("aggregateType", p.AggregateType)
	requestURL := p.URL + "?" + q.Encode()

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamRequest, err)
		}
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamRequest, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: got %d", ErrUpstreamStatus, resp.StatusCode)
	}

	var body upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if body.Values == nil {
		return nil, fmt.Errorf("%w: missing values", ErrMalformedResponse)
	}

	expected := int(iv.Duration() / aggregateInterval)
	if len(body.Values) > expected {
		return nil, fmt.Errorf("%w: got %d values, expected at most %d", ErrMalformedResponse, len(body.Values), expected)
	}

	// The server left-pads short leading data itself, so a short vector is
	// always missing trailing intervals only.
	values := body.Values
	for len(values) < expected {
		values = append(values, series.Null())
	}

	f.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"trace":      f.name,
		"interval":   iv.String(),
		"resolution": aggregateInterval,
		"points":     len(values),
		"duration":   time.Since(start).String(),
	}).Debug("Fetched segment")

	return values, nil
}
