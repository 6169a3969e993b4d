package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/rkahn/rundash/internal/cache"
	"github.com/rkahn/rundash/internal/coach"
	"github.com/rkahn/rundash/internal/config"
	"github.com/rkahn/rundash/internal/handlers"
	"github.com/rkahn/rundash/internal/logger"
	"github.com/rkahn/rundash/internal/middleware"
	"github.com/rkahn/rundash/internal/services/ai"
	"github.com/rkahn/rundash/internal/services/strava"
	"github.com/rkahn/rundash/internal/services/weather"
	"github.com/rkahn/rundash/internal/store"
	"github.com/rkahn/rundash/internal/telemetry"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	var zapLogger *zap.Logger
	if cfg.AppMode == "development" {
		zapLogger, err = logger.NewDevelopmentLogger(debugMode)
	} else {
		zapLogger, err = logger.NewProductionLogger(debugMode)
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("app_mode", cfg.AppMode),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("strava_configured", cfg.StravaConfigured()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	loc, err := cfg.Location()
	if err != nil {
		zapLogger.Fatal("invalid_timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	// Initialize OpenTelemetry if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "rundash", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		zapLogger.Fatal("failed_to_create_data_dir", zap.String("dir", cfg.DataDir), zap.Error(err))
	}

	// File-backed stores under the data directory.
	tokens := store.NewTokenStore(filepath.Join(cfg.DataDir, "tokens.json"))
	settings := store.NewSettingsStore(filepath.Join(cfg.DataDir, "settings.json"))
	runTypes := store.NewRunTypeStore(filepath.Join(cfg.DataDir, "runtypes.json"))
	geocoder := strava.NewGeocoder(filepath.Join(cfg.DataDir, "geo_cache.json"), zapLogger)

	clock := time.Now

	stravaClient := strava.NewClient(strava.Options{
		ClientID:     cfg.StravaClientID,
		ClientSecret: cfg.StravaClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Tokens:       tokens,
		Cache:        cache.NewKeyedCache(clock),
		Geocoder:     geocoder,
		Clock:        clock,
		Location:     loc,
		Logger:       zapLogger,
	})

	weatherClient := weather.NewClient(weather.Options{
		APIKey:    cfg.OpenWeatherKey,
		Locations: weatherLocations(cfg, zapLogger),
		Cache:     cache.NewKeyedCache(clock),
		Clock:     clock,
		Location:  loc,
		Logger:    zapLogger,
	})

	var generator coach.Generator
	if cfg.OpenAIKey != "" {
		generator = ai.NewOpenAIGenerator(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger, cfg.AIDebugMode || debugMode)
	} else {
		zapLogger.Warn("openai_key_not_configured_assistant_disabled")
	}
	coachSvc := coach.NewService(generator, cache.NewMessageCache(clock, loc), clock, loc, zapLogger)

	// Setup router. gorilla/mux runs middleware in registration order, so
	// the outermost concerns register first.
	r := mux.NewRouter()

	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware("rundash"))
	}
	r.Use(middleware.SecurityHeaders(cfg.AppMode == "personal"))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMinute))

	handlers.NewHealthChecker(cfg.DataDir).RegisterRoutes(r)
	r.HandleFunc("/version", versionInfo).Methods("GET")
	handlers.NewAuthHandler(stravaClient, cfg.SessionSecret, zapLogger).RegisterRoutes(r)
	handlers.NewStatusHandler(stravaClient, settings, zapLogger).RegisterRoutes(r)
	handlers.NewActivitiesHandler(stravaClient, settings, runTypes, zapLogger).RegisterRoutes(r)
	handlers.NewWeatherHandler(weatherClient, zapLogger).RegisterRoutes(r)
	handlers.NewAssistantHandler(coachSvc, stravaClient, weatherClient, settings, runTypes, zapLogger).RegisterRoutes(r)
	handlers.NewSettingsHandler(settings, coachSvc.Refresh, zapLogger).RegisterRoutes(r)

	registerStatic(r, zapLogger)

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339))
}

// weatherLocations merges the built-in locations with the optional YAML
// overlay file.
func weatherLocations(cfg *config.Config, zapLogger *zap.Logger) map[string]weather.Location {
	locations := weather.DefaultLocations()
	overlay, err := cfg.WeatherLocations()
	if err != nil {
		zapLogger.Warn("weather_locations_file_invalid",
			zap.String("file", cfg.WeatherLocationsFile),
			zap.Error(err),
		)
		return locations
	}
	for key, l := range overlay {
		locations[key] = weather.Location{Lat: l.Lat, Lon: l.Lon, Name: l.Name}
	}
	return locations
}

// registerStatic serves the dashboard frontend from ./static when the
// directory exists. The API still works without it.
func registerStatic(r *mux.Router, zapLogger *zap.Logger) {
	const dir = "static"
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		zapLogger.Info("static_dir_not_found_api_only")
		r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"service":"rundash","status":"ok"}`)
		}).Methods("GET")
		return
	}

	fs := http.FileServer(http.Dir(dir))
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", fs))
	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, filepath.Join(dir, "index.html"))
	}).Methods("GET")
}
