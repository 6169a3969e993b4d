package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
)

// HealthChecker handles health check requests
type HealthChecker struct {
	dataDir string
}

// NewHealthChecker creates a health checker watching the data
// directory the JSON stores write to.
func NewHealthChecker(dataDir string) *HealthChecker {
	return &HealthChecker{dataDir: dataDir}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// RegisterRoutes registers the health route
func (h *HealthChecker) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
}

// HealthCheck handles the /healthz endpoint. Extended mode verifies
// the data directory is writable, since every store depends on it.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") == "extended" {
		checks := make(map[string]string)
		if err := h.checkDataDir(); err != nil {
			response.Status = "unhealthy"
			checks["data_dir"] = "unhealthy: " + err.Error()
		} else {
			checks["data_dir"] = "healthy"
		}
		response.Checks = checks

		status := http.StatusOK
		if response.Status == "unhealthy" {
			status = http.StatusServiceUnavailable
		}
		respondJSON(w, status, response)
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// checkDataDir probes that the store directory exists and accepts
// writes.
func (h *HealthChecker) checkDataDir() error {
	if err := os.MkdirAll(h.dataDir, 0o755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(h.dataDir, ".health-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}
