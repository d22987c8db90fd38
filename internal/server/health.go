package server

import (
	"net/http"
	"sync"
)

// HealthChecker tracks per-component readiness and serves /healthz.
type HealthChecker struct {
	mu    sync.RWMutex
	ready map[string]bool
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		ready: make(map[string]bool),
	}
}

// SetReady sets the readiness of a named component.
func (h *HealthChecker) SetReady(component string, ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready[component] = ready
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := http.StatusOK
	for _, ok := range h.ready {
		if !ok {
			status = http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, status, h.ready)
}
