package middleware

// This in-memory cache is used to answer repeated window queries (several
// browser tabs showing the same default view) without re-assembling them.
// golang-lru evicts the least recently accessed entries.

import (
	"net/http"

	lru "github.com/hashicorp/golang-lru"
)

var cache *lru.Cache

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

type recordingWriter struct {
	http.ResponseWriter
	status int
	body   []byte
}

func (w *recordingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}

// InitializeCache sets up the in-memory LRU response cache.
func InitializeCache(size int) error {
	var err error
	cache, err = lru.New(size)
	return err
}

// Caching serves identical GET queries from the cache. Only successful
// responses are stored, so a failed section load is retried on the next
// request.
func Caching(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := r.URL.RequestURI()
		if entry, ok := cache.Get(key); ok {
			resp := entry.(cachedResponse)
			w.Header().Set("Content-Type", resp.contentType)
			w.WriteHeader(resp.status)
			w.Write(resp.body)
			return
		}

		rw := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		if rw.status == http.StatusOK {
			cache.Add(key, cachedResponse{
				status:      rw.status,
				contentType: rw.Header().Get("Content-Type"),
				body:        rw.body,
			})
		}
	})
}
