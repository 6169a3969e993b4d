package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	ServerPort string
	BaseURL    string

	// AppMode is "personal", "demo", or "development". Demo mode
	// serves canned data and never calls upstream APIs.
	AppMode string

	StravaClientID     string
	StravaClientSecret string
	RedirectURI        string

	OpenWeatherKey       string
	WeatherLocationsFile string

	OpenAIKey   string
	AIModel     string
	AIBaseURL   string
	AIDebugMode bool

	// SessionSecret signs the OAuth state token.
	SessionSecret string

	Timezone string
	DataDir  string

	CORSAllowedOrigins string
	RateLimitPerMinute int

	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		BaseURL:              getEnv("BASE_URL", "http://localhost:8080"),
		AppMode:              getEnv("APP_MODE", "development"),
		StravaClientID:       getEnv("STRAVA_CLIENT_ID", ""),
		StravaClientSecret:   getEnv("STRAVA_CLIENT_SECRET", ""),
		RedirectURI:          getEnv("REDIRECT_URI", "http://localhost:8080/auth/callback"),
		OpenWeatherKey:       getEnv("OPENWEATHER_API_KEY", ""),
		WeatherLocationsFile: getEnv("WEATHER_LOCATIONS_FILE", ""),
		OpenAIKey:            getEnv("OPENAI_API_KEY", ""),
		AIModel:              getEnv("AI_MODEL", ""),
		AIBaseURL:            getEnv("AI_BASE_URL", ""),
		AIDebugMode:          getEnvBool("AI_DEBUG_MODE", false),
		SessionSecret:        getEnv("SESSION_SECRET", "dev-secret-change-me"),
		Timezone:             getEnv("TIMEZONE", "America/Los_Angeles"),
		DataDir:              getEnv("DATA_DIR", "data"),
		CORSAllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", ""),
		RateLimitPerMinute:   getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		ServerDebugMode:      getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:          getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:         getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	switch cfg.AppMode {
	case "personal", "demo", "development":
	default:
		return nil, fmt.Errorf("APP_MODE must be personal, demo, or development, got %q", cfg.AppMode)
	}

	if cfg.AppMode == "personal" && cfg.SessionSecret == "dev-secret-change-me" {
		return nil, fmt.Errorf("SESSION_SECRET is required in personal mode")
	}

	return cfg, nil
}

// Location resolves the configured home timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// StravaConfigured reports whether Strava OAuth credentials are set.
func (c *Config) StravaConfigured() bool {
	return c.StravaClientID != "" && c.StravaClientSecret != ""
}

// WeatherLocation is one entry of the YAML locations overlay.
type WeatherLocation struct {
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
	Name string  `yaml:"name"`
}

// WeatherLocations loads the optional YAML locations overlay. A nil
// map means no overlay is configured and the built-in locations apply.
func (c *Config) WeatherLocations() (map[string]WeatherLocation, error) {
	if c.WeatherLocationsFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.WeatherLocationsFile)
	if err != nil {
		return nil, fmt.Errorf("read weather locations: %w", err)
	}
	var raw map[string]WeatherLocation
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse weather locations: %w", err)
	}
	return raw, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
