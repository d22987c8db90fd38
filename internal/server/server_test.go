package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wxcharts/chartfeed/internal/feed"
	"github.com/wxcharts/chartfeed/internal/server"
	"github.com/wxcharts/chartfeed/internal/series"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
		require.NoError(t, err)
		end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
		require.NoError(t, err)
		aggregateInterval, err := strconv.ParseInt(r.URL.Query().Get("aggregateInterval"), 10, 64)
		require.NoError(t, err)

		count := (end.UnixMilli() - start.UnixMilli()) / (aggregateInterval * 1000)
		values := make([]float64, count)
		for i := range values {
			values[i] = 42.0
		}
		json.NewEncoder(w).Encode(map[string]any{"values": values})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupHandler(t *testing.T) http.Handler {
	t.Helper()
	upstream := testUpstream(t)

	params := series.Params{
		URL:                    upstream.URL,
		AggregateType:          "avg",
		ArchiveIntervalMinutes: 1,
		MinDataPoints:          10,
	}
	f, err := feed.New("outTemp", params, feed.Options{Debounce: 10 * time.Millisecond}, testLogger())
	require.NoError(t, err)

	svc := server.NewWindowService([]*feed.Fetcher{f}, testLogger())
	svc.Health().SetReady("server", true)

	config := server.ServerConfig{
		CacheSize:      100,
		RateLimit:      1000,
		RateLimitBurst: 1000,
	}
	handler, err := server.SetupServer(svc, config, testLogger())
	require.NoError(t, err)
	return handler
}

func TestWindowEndpoint(t *testing.T) {
	handler := setupHandler(t)

	tests := []struct {
		name         string
		url          string
		expectedCode int
	}{
		{
			name:         "Success case",
			url:          "/window?trace=outTemp&start=100500&end=700500",
			expectedCode: http.StatusOK,
		},
		{
			name:         "RFC3339 bounds",
			url:          "/window?trace=outTemp&start=2024-03-01T00:00:00Z&end=2024-03-01T06:00:00Z",
			expectedCode: http.StatusOK,
		},
		{
			name:         "Unknown trace",
			url:          "/window?trace=nope&start=100500&end=700500",
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Missing start",
			url:          "/window?trace=outTemp&end=700500",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Start after end",
			url:          "/window?trace=outTemp&start=700500&end=100500",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Range too large",
			url:          "/window?trace=outTemp&start=100500&end=900000000000000",
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			require.Equal(t, tt.expectedCode, rec.Code, rec.Body.String())

			if tt.expectedCode == http.StatusOK {
				var body struct {
					Trace  string `json:"trace"`
					Points []struct {
						Time  int64    `json:"time"`
						Value *float64 `json:"value"`
					} `json:"points"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, "outTemp", body.Trace)
				assert.NotEmpty(t, body.Points)
				require.NotNil(t, body.Points[0].Value)
				assert.Equal(t, 42.0, *body.Points[0].Value)
			}
		})
	}
}

func TestTracesEndpoint(t *testing.T) {
	handler := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/traces", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"traces":["outTemp"]}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHealthzEndpoint(t *testing.T) {
	handler := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidateRequest(t *testing.T) {
	v := server.NewRequestValidator()

	tests := []struct {
		name       string
		start, end int64
		wantErr    bool
	}{
		{name: "Valid input", start: 1000, end: 2000},
		{name: "Missing start", start: 0, end: 2000, wantErr: true},
		{name: "Missing end", start: 1000, end: 0, wantErr: true},
		{name: "Inverted range", start: 2000, end: 1000, wantErr: true},
		{name: "Excessive range", start: 1000, end: 1000 + 3*365*24*3600*1000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.start, tt.end)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
