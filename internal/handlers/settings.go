package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rkahn/rundash/internal/models"
	"github.com/rkahn/rundash/internal/store"
	"github.com/rkahn/rundash/internal/validation"
)

// SettingsHandler reads and writes user preferences.
type SettingsHandler struct {
	settings *store.SettingsStore
	log      *zap.Logger

	// onChange runs after a successful save so dependent caches can
	// drop stale data (a new goal or plan changes the coaching
	// context).
	onChange func()
}

// NewSettingsHandler creates a settings handler. onChange may be nil.
func NewSettingsHandler(settings *store.SettingsStore, onChange func(), log *zap.Logger) *SettingsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettingsHandler{settings: settings, onChange: onChange, log: log}
}

// RegisterRoutes registers the settings routes
func (h *SettingsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/settings", h.Get).Methods("GET")
	r.HandleFunc("/api/settings", h.Update).Methods("POST")
}

// Get returns the saved settings (or defaults).
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Load()
	if err != nil {
		h.log.Error("settings_load_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Could not load settings")
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// Update merges a partial settings payload into the saved settings and
// returns the result.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var update models.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(update); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid settings: "+err.Error())
		return
	}

	settings, err := h.settings.Load()
	if err != nil {
		h.log.Error("settings_load_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Could not load settings")
		return
	}

	update.Apply(&settings)

	if err := h.settings.Save(settings); err != nil {
		h.log.Error("settings_save_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Could not save settings")
		return
	}
	if h.onChange != nil {
		h.onChange()
	}

	respondJSON(w, http.StatusOK, settings)
}
