package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rkahn/rundash/internal/services/weather"
)

const defaultWeatherLocation = "concord"

// WeatherHandler serves the running-hours forecast strip.
type WeatherHandler struct {
	weather *weather.Client
	log     *zap.Logger
}

// NewWeatherHandler creates a weather handler.
func NewWeatherHandler(client *weather.Client, log *zap.Logger) *WeatherHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WeatherHandler{weather: client, log: log}
}

// RegisterRoutes registers the weather route
func (h *WeatherHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/weather", h.Forecast).Methods("GET")
}

// Forecast returns the hourly forecast for the requested location.
func (h *WeatherHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		location = defaultWeatherLocation
	}

	forecast, err := h.weather.HourlyForecast(r.Context(), location)
	if err != nil {
		h.log.Error("weather_fetch_failed", zap.String("location", location), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Weather fetch failed")
		return
	}
	respondJSON(w, http.StatusOK, forecast)
}
