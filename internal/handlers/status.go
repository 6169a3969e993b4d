package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rkahn/rundash/internal/services/strava"
	"github.com/rkahn/rundash/internal/store"
)

// StatusHandler reports Strava connection state and current settings.
type StatusHandler struct {
	strava   *strava.Client
	settings *store.SettingsStore
	log      *zap.Logger
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(client *strava.Client, settings *store.SettingsStore, log *zap.Logger) *StatusHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatusHandler{strava: client, settings: settings, log: log}
}

// RegisterRoutes registers the status route
func (h *StatusHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/status", h.Status).Methods("GET")
}

// Status returns the connection flag plus settings so the frontend
// boots with one request.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Load()
	if err != nil {
		h.log.Error("settings_load_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Could not load settings")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"connected": h.strava.Connected(),
		"settings":  settings,
	})
}
