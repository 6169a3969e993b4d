package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rkahn/rundash/internal/models"
	"github.com/rkahn/rundash/internal/services/strava"
	"github.com/rkahn/rundash/internal/store"
	"github.com/rkahn/rundash/internal/validation"
)

const (
	defaultActivityCount = 10
	defaultPastWeeks     = 3
)

// ActivitiesHandler serves the activity feed, weekly rollups, the
// profile card, and run-type tagging.
type ActivitiesHandler struct {
	strava   *strava.Client
	settings *store.SettingsStore
	runTypes *store.RunTypeStore
	log      *zap.Logger
}

// NewActivitiesHandler creates an activities handler.
func NewActivitiesHandler(client *strava.Client, settings *store.SettingsStore, runTypes *store.RunTypeStore, log *zap.Logger) *ActivitiesHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ActivitiesHandler{strava: client, settings: settings, runTypes: runTypes, log: log}
}

// RegisterRoutes registers the activity routes
func (h *ActivitiesHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/activities", h.Activities).Methods("GET")
	r.HandleFunc("/api/activities/{id:[0-9]+}/runtype", h.SetRunType).Methods("POST")
	r.HandleFunc("/api/weeks", h.Weeks).Methods("GET")
	r.HandleFunc("/api/profile", h.Profile).Methods("GET")
	r.HandleFunc("/api/refresh", h.Refresh).Methods("GET")
}

// queryInt reads an integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return def
}

// Activities returns recent runs with user run-type overlays plus the
// current week summary, in one payload.
func (h *ActivitiesHandler) Activities(w http.ResponseWriter, r *http.Request) {
	count := queryInt(r, "count", defaultActivityCount)
	page := queryInt(r, "page", 1)

	settings, err := h.settings.Load()
	if err != nil {
		h.log.Error("settings_load_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Could not load settings")
		return
	}

	activities, err := h.strava.RecentActivities(r.Context(), count, page)
	if err != nil {
		h.respondStravaError(w, err)
		return
	}
	h.overlayRunTypes(activities)

	week, err := h.strava.CurrentWeekSummary(r.Context(), settings.GoalMi)
	if err != nil {
		h.respondStravaError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"activities": activities,
		"weekDays":   week.WeekDays,
		"totalMi":    week.TotalMi,
		"goalMi":     week.GoalMi,
	})
}

// Weeks returns past-week summaries.
func (h *ActivitiesHandler) Weeks(w http.ResponseWriter, r *http.Request) {
	count := queryInt(r, "count", defaultPastWeeks)

	weeks, err := h.strava.PastWeeks(r.Context(), count)
	if err != nil {
		h.respondStravaError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"weeks": weeks})
}

// Profile returns the athlete profile card with per-shoe retirement
// mileage from settings applied.
func (h *ActivitiesHandler) Profile(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Load()
	if err != nil {
		h.log.Error("settings_load_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Could not load settings")
		return
	}

	profile, err := h.strava.Profile(r.Context(), settings.ShoeMaxMiles)
	if err != nil {
		h.respondStravaError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// runTypeRequest is the tag-assignment payload. An empty runType
// clears the tag.
type runTypeRequest struct {
	RunType string `json:"runType"`
}

// SetRunType saves a run-type label for one activity and clears the
// activity cache so the next fetch reflects it.
func (h *ActivitiesHandler) SetRunType(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid activity id")
		return
	}

	var req runTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	req.RunType = validation.SanitizeText(req.RunType)
	if err := validation.ValidateRunType(req.RunType); err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.runTypes.Set(id, req.RunType); err != nil {
		h.log.Error("runtype_save_failed", zap.Int64("activity_id", id), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Could not save run type")
		return
	}
	h.strava.ClearCache()

	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"activityId": id,
		"runType":    req.RunType,
	})
}

// Refresh clears the upstream cache so the next request refetches.
func (h *ActivitiesHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.strava.ClearCache()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cache cleared"})
}

// overlayRunTypes replaces fetched run-type labels with user-assigned
// ones. A saved empty label clears the fetched label.
func (h *ActivitiesHandler) overlayRunTypes(activities []models.Activity) {
	saved, err := h.runTypes.Load()
	if err != nil {
		h.log.Warn("runtype_load_failed", zap.Error(err))
		return
	}
	for i := range activities {
		key := strconv.FormatInt(activities[i].ID, 10)
		if label, ok := saved[key]; ok {
			activities[i].RunType = label
		}
	}
}

func (h *ActivitiesHandler) respondStravaError(w http.ResponseWriter, err error) {
	if errors.Is(err, strava.ErrNotConnected) {
		respondJSONError(w, http.StatusUnauthorized, "Not connected to Strava")
		return
	}
	h.log.Error("strava_request_failed", zap.Error(err))
	respondJSONError(w, http.StatusInternalServerError, "Strava request failed")
}
