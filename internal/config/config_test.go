package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

var envMutex sync.Mutex

// configEnvVars are every env var Load reads; tests snapshot and
// restore them around each case.
var configEnvVars = []string{
	"SERVER_PORT",
	"BASE_URL",
	"APP_MODE",
	"STRAVA_CLIENT_ID",
	"STRAVA_CLIENT_SECRET",
	"REDIRECT_URI",
	"OPENWEATHER_API_KEY",
	"WEATHER_LOCATIONS_FILE",
	"OPENAI_API_KEY",
	"AI_MODEL",
	"AI_BASE_URL",
	"AI_DEBUG_MODE",
	"SESSION_SECRET",
	"TIMEZONE",
	"DATA_DIR",
	"CORS_ALLOWED_ORIGINS",
	"RATE_LIMIT_PER_MINUTE",
	"SERVER_DEBUG_MODE",
	"OTEL_ENABLED",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
}

func withEnv(t *testing.T, envVars map[string]string, fn func()) {
	t.Helper()

	envMutex.Lock()
	original := make(map[string]string)
	for _, key := range configEnvVars {
		original[key] = os.Getenv(key)
		_ = os.Unsetenv(key)
	}
	for key, value := range envVars {
		if value != "" {
			_ = os.Setenv(key, value)
		}
	}
	envMutex.Unlock()

	defer func() {
		envMutex.Lock()
		defer envMutex.Unlock()
		for key, value := range original {
			if value != "" {
				_ = os.Setenv(key, value)
			} else {
				_ = os.Unsetenv(key)
			}
		}
	}()

	fn()
}

func TestLoadDefaults(t *testing.T) {
	withEnv(t, nil, func() {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.ServerPort != "8080" {
			t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
		}
		if cfg.BaseURL != "http://localhost:8080" {
			t.Errorf("BaseURL = %q", cfg.BaseURL)
		}
		if cfg.AppMode != "development" {
			t.Errorf("AppMode = %q, want development", cfg.AppMode)
		}
		if cfg.Timezone != "America/Los_Angeles" {
			t.Errorf("Timezone = %q, want America/Los_Angeles", cfg.Timezone)
		}
		if cfg.RedirectURI != "http://localhost:8080/auth/callback" {
			t.Errorf("RedirectURI = %q", cfg.RedirectURI)
		}
		if cfg.RateLimitPerMinute != 120 {
			t.Errorf("RateLimitPerMinute = %d, want 120", cfg.RateLimitPerMinute)
		}
		if cfg.StravaConfigured() {
			t.Error("StravaConfigured() should be false without credentials")
		}
		if _, err := cfg.Location(); err != nil {
			t.Errorf("Location: %v", err)
		}
	})
}

func TestLoadExplicitValues(t *testing.T) {
	withEnv(t, map[string]string{
		"SERVER_PORT":          "9090",
		"APP_MODE":             "personal",
		"SESSION_SECRET":       "a-real-secret",
		"STRAVA_CLIENT_ID":     "123",
		"STRAVA_CLIENT_SECRET": "shh",
		"TIMEZONE":             "America/New_York",
		"OTEL_ENABLED":         "true",
	}, func() {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.ServerPort != "9090" {
			t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
		}
		if !cfg.StravaConfigured() {
			t.Error("StravaConfigured() should be true")
		}
		if !cfg.OTELEnabled {
			t.Error("OTELEnabled should be true")
		}
		loc, err := cfg.Location()
		if err != nil {
			t.Fatalf("Location: %v", err)
		}
		if loc.String() != "America/New_York" {
			t.Errorf("location = %q", loc.String())
		}
	})
}

func TestLoadRejectsBadAppMode(t *testing.T) {
	withEnv(t, map[string]string{"APP_MODE": "staging"}, func() {
		if _, err := Load(); err == nil {
			t.Fatal("expected error for unknown APP_MODE")
		}
	})
}

func TestLoadPersonalModeRequiresSecret(t *testing.T) {
	withEnv(t, map[string]string{"APP_MODE": "personal"}, func() {
		if _, err := Load(); err == nil {
			t.Fatal("expected error when personal mode keeps the dev secret")
		}
	})
}

func TestLocationRejectsUnknownZone(t *testing.T) {
	withEnv(t, map[string]string{"TIMEZONE": "Mars/Olympus_Mons"}, func() {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if _, err := cfg.Location(); err == nil {
			t.Fatal("expected error for unknown timezone")
		}
	})
}

func TestWeatherLocationsOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "locations.yaml")
	overlay := `
portland:
  lat: 45.5231
  lon: -122.6765
  name: Portland
`
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	withEnv(t, map[string]string{"WEATHER_LOCATIONS_FILE": path}, func() {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		locs, err := cfg.WeatherLocations()
		if err != nil {
			t.Fatalf("WeatherLocations: %v", err)
		}
		got, ok := locs["portland"]
		if !ok {
			t.Fatalf("portland missing from %v", locs)
		}
		if got.Lat != 45.5231 || got.Lon != -122.6765 || got.Name != "Portland" {
			t.Errorf("portland = %+v", got)
		}
	})
}

func TestWeatherLocationsAbsent(t *testing.T) {
	withEnv(t, nil, func() {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		locs, err := cfg.WeatherLocations()
		if err != nil {
			t.Fatalf("WeatherLocations: %v", err)
		}
		if locs != nil {
			t.Errorf("locs = %v, want nil without overlay", locs)
		}
	})
}
