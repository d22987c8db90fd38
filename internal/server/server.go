// Package server exposes assembled display windows over HTTP to the
// browser-side renderer, behind the request-id, rate-limit, logging,
// metrics and response-cache middleware chain.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/wxcharts/chartfeed/internal/feed"
	"github.com/wxcharts/chartfeed/internal/section"
	"github.com/wxcharts/chartfeed/internal/segment"
	middleware "github.com/wxcharts/chartfeed/internal/server/middlewares"
	"github.com/wxcharts/chartfeed/internal/series"
)

// ServerConfig holds configuration options for the HTTP server.
type ServerConfig struct {
	CacheSize      int     // Size of the LRU response cache
	RateLimit      float64 // Requests per second
	RateLimitBurst int     // Maximum burst size for rate limiting
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		CacheSize:      1000,
		RateLimit:      5.0,
		RateLimitBurst: 10,
	}
}

// WindowService answers window queries from the per-trace fetchers.
type WindowService struct {
	feeds     map[string]*feed.Fetcher
	validator *RequestValidator
	health    *HealthChecker
	logger    *logrus.Logger
}

// NewWindowService creates the service over the given trace fetchers.
func NewWindowService(feeds []*feed.Fetcher, logger *logrus.Logger) *WindowService {
	byName := make(map[string]*feed.Fetcher, len(feeds))
	for _, f := range feeds {
		byName[f.Name()] = f
	}
	return &WindowService{
		feeds:     byName,
		validator: NewRequestValidator(),
		health:    NewHealthChecker(),
		logger:    logger,
	}
}

// Health returns the service's health checker so the caller can flip
// component readiness.
func (s *WindowService) Health() *HealthChecker {
	return s.health
}

type pointJSON struct {
	Time  int64         `json:"time"`
	Value series.Sample `json:"value"`
}

type windowResponse struct {
	Trace  string      `json:"trace"`
	Points []pointJSON `json:"points"`
}

func (s *WindowService) handleTraces(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.feeds))
	for name := range s.feeds {
		names = append(names, name)
	}
	sort.Strings(names)
	writeJSON(w, http.StatusOK, map[string][]string{"traces": names})
}

func (s *WindowService) handleWindow(w http.ResponseWriter, r *http.Request) {
	fetcher, ok := s.feeds[r.URL.Query().Get("trace")]
	if !ok {
		http.Error(w, "unknown trace", http.StatusNotFound)
		return
	}

	start, err := parseTime(r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, fmt.Sprintf("bad start: %v", err), http.StatusBadRequest)
		return
	}
	end, err := parseTime(r.URL.Query().Get("end"))
	if err != nil {
		http.Error(w, fmt.Sprintf("bad end: %v", err), http.StatusBadRequest)
		return
	}
	if err := s.validator.Validate(start, end); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	iv := series.Interval{Start: start, End: end}

	points, fut := fetcher.RequestWide(iv)
	if fut != nil {
		select {
		case <-fut.Done():
		case <-r.Context().Done():
			return
		}
		points, err = fut.Result()
		if err != nil {
			if errors.Is(err, section.ErrSuperseded) {
				http.Error(w, "superseded by a newer request", http.StatusConflict)
				return
			}
			http.Error(w, fmt.Sprintf("window load failed: %v", err), http.StatusBadGateway)
			return
		}
	}

	resp := windowResponse{
		Trace:  fetcher.Name(),
		Points: make([]pointJSON, len(points)),
	}
	for i, p := range points {
		resp.Points[i] = pointJSON{Time: p.Time, Value: p.Sample}
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseTime accepts RFC3339 timestamps or unix milliseconds.
func parseTime(value string) (int64, error) {
	if value == "" {
		return 0, fmt.Errorf("missing timestamp")
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return ms, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

var registerOnce sync.Once

func registerMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(middleware.Requests)
		prometheus.MustRegister(middleware.Latency)
		prometheus.MustRegister(segment.SegmentFetches)
		prometheus.MustRegister(segment.SegmentFetchFailures)
		prometheus.MustRegister(segment.CacheHits)
		prometheus.MustRegister(segment.CacheMisses)
	})
}

// SetupServer wires the service's routes with the full middleware chain.
func SetupServer(svc *WindowService, config ServerConfig, logger *logrus.Logger) (http.Handler, error) {
	if err := middleware.InitializeCache(config.CacheSize); err != nil {
		return nil, err
	}

	registerMetrics()

	limiter := rate.NewLimiter(rate.Limit(config.RateLimit), config.RateLimitBurst)

	mux := http.NewServeMux()
	mux.Handle("/window", chainMiddleware(
		http.HandlerFunc(svc.handleWindow),
		middleware.RequestContext,         // Add request ID first
		middleware.RateLimiting(limiter),  // Rate limit early
		middleware.Logging(logger),        // Log all requests (with request ID)
		middleware.Metrics,                // Collect metrics
		middleware.Caching,                // Cache last to avoid caching errors
	))
	mux.Handle("/traces", chainMiddleware(
		http.HandlerFunc(svc.handleTraces),
		middleware.RequestContext,
		middleware.Logging(logger),
		middleware.Metrics,
	))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", svc.health)

	return mux, nil
}

// chainMiddleware wraps a handler so the first middleware listed runs first.
func chainMiddleware(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
