// Package weather wraps the OpenWeatherMap One Call 3.0 API for
// running-hour forecasts. Two views exist: the forecast strip shown on
// the dashboard (HourlyForecast) and the flat today+tomorrow slice the
// coaching context consumes (Forecast48h).
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rkahn/rundash/internal/cache"
	"github.com/rkahn/rundash/internal/models"
	"github.com/rkahn/rundash/internal/timeutil"
)

const (
	defaultOneCallURL = "https://api.openweathermap.org/data/3.0/onecall"

	weatherTTL     = 30 * time.Minute
	requestTimeout = 10 * time.Second

	// eveningCutoverHour switches the forecast strip from "rest of
	// today" to "tomorrow's running hours".
	eveningCutoverHour = 18
	morningWindowStart = 6
	windowSpan         = 12 * time.Hour
)

// Location is one forecastable place.
type Location struct {
	Lat  float64 `json:"lat" yaml:"lat"`
	Lon  float64 `json:"lon" yaml:"lon"`
	Name string  `json:"name" yaml:"name"`
}

// DefaultLocations are the built-in forecast spots; a config overlay
// can replace them.
func DefaultLocations() map[string]Location {
	return map[string]Location{
		"concord":  {Lat: 37.978, Lon: -122.031, Name: "Concord"},
		"danville": {Lat: 37.822, Lon: -121.999, Name: "Danville"},
	}
}

// Forecast is the dashboard strip payload: which day the hours cover
// and the hour samples themselves.
type Forecast struct {
	Period string               `json:"period"`
	Hours  []models.WeatherHour `json:"hours"`
}

// Client fetches and caches hourly forecasts.
type Client struct {
	apiKey    string
	baseURL   string
	locations map[string]Location
	cache     *cache.KeyedCache
	clock     cache.Clock
	loc       *time.Location
	log       *zap.Logger
	http      *http.Client
}

// Options configures a weather client. Nil Locations means the
// defaults; empty BaseURL means production.
type Options struct {
	APIKey    string
	BaseURL   string
	Locations map[string]Location
	Cache     *cache.KeyedCache
	Clock     cache.Clock
	Location  *time.Location
	Logger    *zap.Logger

	HTTPClient *http.Client
}

// NewClient builds a weather client from opts.
func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultOneCallURL
	}
	locations := opts.Locations
	if len(locations) == 0 {
		locations = DefaultLocations()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{
		apiKey:    opts.APIKey,
		baseURL:   baseURL,
		locations: locations,
		cache:     opts.Cache,
		clock:     clock,
		loc:       loc,
		log:       log,
		http:      httpClient,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// LocationNames returns the known location keys, sorted.
func (c *Client) LocationNames() []string {
	names := make([]string, 0, len(c.locations))
	for k := range c.locations {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ClearCache drops cached forecasts, forcing fresh fetches.
func (c *Client) ClearCache() {
	c.cache.ClearAll()
}

type oneCallHour struct {
	Dt        int64   `json:"dt"`
	Temp      float64 `json:"temp"`
	Pop       float64 `json:"pop"`
	WindSpeed float64 `json:"wind_speed"`
	Weather   []struct {
		ID int `json:"id"`
	} `json:"weather"`
}

// fetchHourly pulls the raw 48h hourly series for a location key.
func (c *Client) fetchHourly(ctx context.Context, locKey string) ([]oneCallHour, error) {
	place, ok := c.locations[strings.ToLower(locKey)]
	if !ok {
		return nil, fmt.Errorf("unknown weather location %q", locKey)
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("weather API key not configured")
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%g", place.Lat))
	params.Set("lon", fmt.Sprintf("%g", place.Lon))
	params.Set("exclude", "minutely,daily,alerts")
	params.Set("appid", c.apiKey)
	params.Set("units", "imperial")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned %d", resp.StatusCode)
	}

	var payload struct {
		Hourly []oneCallHour `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}
	return payload.Hourly, nil
}

// HourlyForecast returns the dashboard forecast strip. Before 6 PM it
// covers the next 12 hours; at or after 6 PM it covers tomorrow's
// 6 AM – 6 PM running window.
func (c *Client) HourlyForecast(ctx context.Context, locKey string) (Forecast, error) {
	key := "weather_" + strings.ToLower(locKey)
	if v, ok := c.cache.Get(key, weatherTTL); ok {
		return v.(Forecast), nil
	}

	hourly, err := c.fetchHourly(ctx, locKey)
	if err != nil {
		return Forecast{}, err
	}

	now := c.clock().In(c.loc)
	var forecast Forecast

	if now.Hour() >= eveningCutoverHour {
		forecast.Period = "tomorrow"
		tomorrow := now.AddDate(0, 0, 1)
		for _, item := range hourly {
			dt := time.Unix(item.Dt, 0).In(c.loc)
			if !timeutil.SameDay(dt, tomorrow) {
				continue
			}
			if dt.Hour() < morningWindowStart || dt.Hour() > eveningCutoverHour {
				continue
			}
			forecast.Hours = append(forecast.Hours, transformHour(item, dt, 0))
		}
	} else {
		forecast.Period = "today"
		cutoff := now.Add(windowSpan)
		for _, item := range hourly {
			dt := time.Unix(item.Dt, 0).In(c.loc)
			if dt.Before(now) {
				continue
			}
			if dt.After(cutoff) {
				break
			}
			forecast.Hours = append(forecast.Hours, transformHour(item, dt, 0))
		}
	}

	c.cache.Set(key, forecast)
	return forecast, nil
}

// Forecast48h returns the flat today+tomorrow hour slice for the
// coaching context: today's remaining hours plus tomorrow's 6 AM –
// 6 PM window. Failures return an empty slice so the context simply
// omits its weather lines.
func (c *Client) Forecast48h(ctx context.Context, locKey string) []models.WeatherHour {
	key := "weather_48h_" + strings.ToLower(locKey)
	if v, ok := c.cache.Get(key, weatherTTL); ok {
		return v.([]models.WeatherHour)
	}

	hourly, err := c.fetchHourly(ctx, locKey)
	if err != nil {
		c.log.Debug("weather_48h_unavailable", zap.Error(err))
		return nil
	}

	now := c.clock().In(c.loc)
	tomorrow := now.AddDate(0, 0, 1)

	var hours []models.WeatherHour
	for _, item := range hourly {
		dt := time.Unix(item.Dt, 0).In(c.loc)
		switch {
		case timeutil.SameDay(dt, now) && !dt.Before(now):
			hours = append(hours, transformHour(item, dt, 0))
		case timeutil.SameDay(dt, tomorrow) && dt.Hour() >= morningWindowStart && dt.Hour() <= eveningCutoverHour:
			hours = append(hours, transformHour(item, dt, 1))
		}
	}

	c.cache.Set(key, hours)
	return hours
}

// transformHour shapes one raw hourly sample for the dashboard.
func transformHour(item oneCallHour, dt time.Time, dayOffset int) models.WeatherHour {
	conditionID := 800
	if len(item.Weather) > 0 {
		conditionID = item.Weather[0].ID
	}
	return models.WeatherHour{
		Time:      formatHour(dt.Hour()),
		TempF:     int(math.Round(item.Temp)),
		RainPct:   int(math.Round(item.Pop * 100)),
		Wind:      fmt.Sprintf("%d mph", int(math.Round(item.WindSpeed))),
		Condition: mapCondition(conditionID),
		DayOffset: dayOffset,
	}
}

// mapCondition collapses OpenWeatherMap condition codes to the binary
// sun/cloud classifier. 800 is clear, 801–802 few/scattered clouds.
func mapCondition(conditionID int) string {
	if conditionID >= 800 && conditionID <= 802 {
		return models.ConditionSun
	}
	return models.ConditionCloud
}

// formatHour renders a 24h hour as "9 AM" / "12 PM".
func formatHour(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	case hour == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}
