// Package handlers holds the HTTP surface of the dashboard: OAuth
// routes, the JSON API the frontend polls, and the static file server.
// API responses use the raw shapes the frontend expects; errors are
// always {"error": message}.
package handlers

import (
	"encoding/json"
	"net/http"
)

// respondJSON sends data as a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondJSONError sends an error JSON response
func respondJSONError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
