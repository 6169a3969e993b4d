package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rkahn/rundash/internal/coach"
	"github.com/rkahn/rundash/internal/models"
	"github.com/rkahn/rundash/internal/services/strava"
	"github.com/rkahn/rundash/internal/services/weather"
	"github.com/rkahn/rundash/internal/store"
)

// AssistantHandler serves the coaching message. Live mode gathers
// context from Strava and the weather client; demo mode substitutes
// canned context so the assistant works without any connection.
type AssistantHandler struct {
	coach    *coach.Service
	strava   *strava.Client
	weather  *weather.Client
	settings *store.SettingsStore
	runTypes *store.RunTypeStore
	log      *zap.Logger
}

// NewAssistantHandler creates an assistant handler.
func NewAssistantHandler(svc *coach.Service, stravaClient *strava.Client, weatherClient *weather.Client, settings *store.SettingsStore, runTypes *store.RunTypeStore, log *zap.Logger) *AssistantHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AssistantHandler{
		coach:    svc,
		strava:   stravaClient,
		weather:  weatherClient,
		settings: settings,
		runTypes: runTypes,
		log:      log,
	}
}

// RegisterRoutes registers the assistant route
func (h *AssistantHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/assistant", h.Message).Methods("GET")
}

// Message returns the coaching message for the current moment.
// ?refresh=1 drops the cached message first; ?demo=1 uses canned
// context instead of Strava data.
func (h *AssistantHandler) Message(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("refresh") != "" {
		h.coach.Refresh()
	}

	var in coach.ContextInput
	if q.Get("demo") != "" {
		in = demoContext()
	} else {
		live, err := h.liveContext(r)
		if err != nil {
			h.log.Error("assistant_context_failed", zap.Error(err))
			respondJSONError(w, http.StatusInternalServerError, "Could not gather coaching context")
			return
		}
		in = live
	}

	// Weather rides along in both modes; a failed fetch just means no
	// weather lines in the context.
	in.Weather = h.weather.Forecast48h(r.Context(), defaultWeatherLocation)

	respondJSON(w, http.StatusOK, h.coach.Message(r.Context(), in))
}

// liveContext assembles the coaching input from Strava data and saved
// settings. A missing Strava connection is not fatal; the assistant
// still speaks to whatever context exists.
func (h *AssistantHandler) liveContext(r *http.Request) (coach.ContextInput, error) {
	settings, err := h.settings.Load()
	if err != nil {
		return coach.ContextInput{}, err
	}

	in := coach.ContextInput{
		GoalMi: settings.GoalMi,
		Plan:   settings.Plan,
	}

	activities, err := h.strava.RecentActivities(r.Context(), defaultActivityCount, 1)
	if err == nil {
		h.overlayRunTypes(activities)
		in.Activities = activities
	} else {
		h.log.Warn("assistant_activities_unavailable", zap.Error(err))
	}

	if week, err := h.strava.CurrentWeekSummary(r.Context(), settings.GoalMi); err == nil {
		in.Week = &week
	} else {
		h.log.Warn("assistant_week_unavailable", zap.Error(err))
	}

	// Profile is best effort.
	if profile, err := h.strava.Profile(r.Context(), settings.ShoeMaxMiles); err == nil {
		in.Profile = &profile
	}

	return in, nil
}

// overlayRunTypes applies saved run-type labels, mirroring the
// activities endpoint so the coach sees the same tags the user does.
func (h *AssistantHandler) overlayRunTypes(activities []models.Activity) {
	saved, err := h.runTypes.Load()
	if err != nil {
		return
	}
	for i := range activities {
		key := strconv.FormatInt(activities[i].ID, 10)
		if label, ok := saved[key]; ok {
			activities[i].RunType = label
		}
	}
}

// demoContext is the canned coaching input used when no Strava
// account is connected.
func demoContext() coach.ContextInput {
	return coach.ContextInput{
		Activities: []models.Activity{
			{
				ID:             1,
				Title:          "Morning Long Run",
				StartDateLocal: "2026-02-11T07:24:00",
				Distance:       "13.3 mi",
				DistanceMi:     13.3,
				MovingTime:     "1h 42m",
				Pace:           "7:42 /mi",
				RunType:        "Easy Long Run",
				Sport:          "run",
			},
			{
				ID:             2,
				Title:          "Easy Recovery Run",
				StartDateLocal: "2026-02-10T06:15:00",
				Distance:       "8.1 mi",
				DistanceMi:     8.1,
				MovingTime:     "1h 8m",
				Pace:           "8:24 /mi",
				Sport:          "run",
			},
			{
				ID:             3,
				Title:          "Tempo Run",
				StartDateLocal: "2026-02-09T05:45:00",
				Distance:       "4.8 mi",
				DistanceMi:     4.8,
				MovingTime:     "35m",
				Pace:           "7:18 /mi",
				RunType:        "Tempo Run",
				Sport:          "run",
			},
		},
		Week: &models.WeekSummary{TotalMi: 26.2, GoalMi: 50},
		Plan: []models.PlanItem{
			{Type: "Easy Long Run", Count: 0},
			{Type: "Easy Run", Count: 1},
			{Type: "Interval Run", Count: 1},
			{Type: "Tempo Run", Count: 0},
		},
		Profile: &models.Profile{Name: "Raoul Kahn", City: "Concord", State: "CA"},
		GoalMi:  50,
	}
}
