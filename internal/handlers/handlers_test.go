package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/rkahn/rundash/internal/cache"
	"github.com/rkahn/rundash/internal/coach"
	"github.com/rkahn/rundash/internal/services/strava"
	"github.com/rkahn/rundash/internal/services/weather"
	"github.com/rkahn/rundash/internal/store"
)

func testLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

// testEnv bundles the wired handler dependencies over fake upstreams.
type testEnv struct {
	router   *mux.Router
	strava   *strava.Client
	settings *store.SettingsStore
	runTypes *store.RunTypeStore
	tokens   *store.TokenStore
	coach    *coach.Service
}

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

// newTestEnv wires the full handler set against a fake Strava API and
// a fake weather API. connected seeds a Strava token.
func newTestEnv(t *testing.T, stravaAPI http.Handler, connected bool) *testEnv {
	t.Helper()

	loc := testLocation(t)
	now := time.Date(2026, 2, 11, 9, 0, 0, 0, loc)
	clock := func() time.Time { return now }

	dir := t.TempDir()
	tokens := store.NewTokenStore(filepath.Join(dir, "tokens.json"))
	settings := store.NewSettingsStore(filepath.Join(dir, "settings.json"))
	runTypes := store.NewRunTypeStore(filepath.Join(dir, "runtypes.json"))

	if connected {
		// oauth2 checks expiry against the wall clock, not the injected
		// clock, so the seed must be in the future for real.
		err := tokens.Save(&oauth2.Token{
			AccessToken:  "test-access",
			RefreshToken: "test-refresh",
			Expiry:       time.Now().Add(time.Hour),
		})
		if err != nil {
			t.Fatalf("seed token: %v", err)
		}
	}

	if stravaAPI == nil {
		stravaAPI = http.NotFoundHandler()
	}
	stravaSrv := httptest.NewServer(stravaAPI)
	t.Cleanup(stravaSrv.Close)

	weatherSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hourly": []}`))
	}))
	t.Cleanup(weatherSrv.Close)

	stravaClient := strava.NewClient(strava.Options{
		ClientID:     "123",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/auth/callback",
		Tokens:       tokens,
		Cache:        cache.NewKeyedCache(clock),
		Clock:        clock,
		Location:     loc,
		APIBase:      stravaSrv.URL,
		TokenURL:     stravaSrv.URL + "/oauth/token",
	})
	weatherClient := weather.NewClient(weather.Options{
		APIKey:   "test-key",
		BaseURL:  weatherSrv.URL,
		Cache:    cache.NewKeyedCache(clock),
		Clock:    clock,
		Location: loc,
	})

	gen := &stubGenerator{reply: "Nice work this week."}
	coachSvc := coach.NewService(gen, cache.NewMessageCache(clock, loc), clock, loc, zap.NewNop())

	router := mux.NewRouter()
	NewAuthHandler(stravaClient, "test-secret", zap.NewNop()).RegisterRoutes(router)
	NewStatusHandler(stravaClient, settings, zap.NewNop()).RegisterRoutes(router)
	NewActivitiesHandler(stravaClient, settings, runTypes, zap.NewNop()).RegisterRoutes(router)
	NewWeatherHandler(weatherClient, zap.NewNop()).RegisterRoutes(router)
	NewAssistantHandler(coachSvc, stravaClient, weatherClient, settings, runTypes, zap.NewNop()).RegisterRoutes(router)
	NewSettingsHandler(settings, coachSvc.Refresh, zap.NewNop()).RegisterRoutes(router)
	NewHealthChecker(dir).RegisterRoutes(router)

	return &testEnv{
		router:   router,
		strava:   stravaClient,
		settings: settings,
		runTypes: runTypes,
		tokens:   tokens,
		coach:    coachSvc,
	}
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func (e *testEnv) postJSON(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

// fakeStravaAPI serves a minimal Strava surface: one run in the
// activity list, its detail, athlete, and stats.
func fakeStravaAPI() http.Handler {
	m := http.NewServeMux()
	m.HandleFunc("/athlete/activities", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 101, "type": "Run", "start_date_local": "2026-02-10T07:00:00Z",
			 "distance": 12874.7, "moving_time": 3720}
		]`))
	})
	m.HandleFunc("/activities/101", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 101, "name": "Tuesday Tempo", "distance": 12874.7,
			"moving_time": 3720, "average_speed": 3.46,
			"start_date_local": "2026-02-10T07:00:00Z",
			"total_elevation_gain": 80, "workout_type": 3
		}`))
	})
	m.HandleFunc("/athlete", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 7, "firstname": "Riley", "lastname": "Kahn",
			"city": "Concord", "state": "California",
			"shoes": [{"id": "g1", "name": "Pegasus 41", "distance": 321868.0}]
		}`))
	})
	m.HandleFunc("/athletes/7/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ytd_run_totals": {"distance": 160934.0}}`))
	})
	return m
}

func TestStatus(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, true)
	rec := env.get(t, "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeMap(t, rec)
	if body["connected"] != true {
		t.Errorf("connected = %v, want true", body["connected"])
	}
	settings, ok := body["settings"].(map[string]any)
	if !ok {
		t.Fatalf("settings missing: %v", body)
	}
	if settings["goalMi"] != 50.0 {
		t.Errorf("goalMi = %v, want default 50", settings["goalMi"])
	}
}

func TestStatusDisconnected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, false)
	body := decodeMap(t, env.get(t, "/api/status"))
	if body["connected"] != false {
		t.Errorf("connected = %v, want false", body["connected"])
	}
}

func TestActivitiesEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, fakeStravaAPI(), true)
	rec := env.get(t, "/api/activities")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeMap(t, rec)

	activities, ok := body["activities"].([]any)
	if !ok || len(activities) != 1 {
		t.Fatalf("activities = %v", body["activities"])
	}
	first := activities[0].(map[string]any)
	if first["title"] != "Tuesday Tempo" {
		t.Errorf("title = %v", first["title"])
	}
	if first["runType"] != "Tempo Run" {
		t.Errorf("runType = %v, want Tempo Run from workout type", first["runType"])
	}

	weekDays, ok := body["weekDays"].([]any)
	if !ok || len(weekDays) != 7 {
		t.Fatalf("weekDays = %v", body["weekDays"])
	}
	if body["goalMi"] != 50.0 {
		t.Errorf("goalMi = %v", body["goalMi"])
	}
}

func TestActivitiesNotConnected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, fakeStravaAPI(), false)
	rec := env.get(t, "/api/activities")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	body := decodeMap(t, rec)
	if body["error"] != "Not connected to Strava" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestRunTypeOverlayAppliedToFeed(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, fakeStravaAPI(), true)

	rec := env.postJSON(t, "/api/activities/101/runtype", `{"runType": "Progressive Run"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set runtype status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeMap(t, rec)
	if body["status"] != "ok" || body["runType"] != "Progressive Run" {
		t.Errorf("body = %v", body)
	}

	feed := decodeMap(t, env.get(t, "/api/activities"))
	first := feed["activities"].([]any)[0].(map[string]any)
	if first["runType"] != "Progressive Run" {
		t.Errorf("runType = %v, want user overlay", first["runType"])
	}
}

func TestSetRunTypeRejectsUnknownLabel(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, fakeStravaAPI(), true)
	rec := env.postJSON(t, "/api/activities/101/runtype", `{"runType": "Moon Run"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSetRunTypeClear(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, fakeStravaAPI(), true)
	rec := env.postJSON(t, "/api/activities/101/runtype", `{"runType": ""}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	feed := decodeMap(t, env.get(t, "/api/activities"))
	first := feed["activities"].([]any)[0].(map[string]any)
	// The cleared overlay overrides the workout-type-derived label.
	if rt, present := first["runType"]; present && rt != "" {
		t.Errorf("runType = %v, want cleared", rt)
	}
}

func TestWeeksEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, fakeStravaAPI(), true)
	rec := env.get(t, "/api/weeks?count=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeMap(t, rec)
	weeks, ok := body["weeks"].([]any)
	if !ok || len(weeks) != 2 {
		t.Fatalf("weeks = %v", body["weeks"])
	}
}

func TestProfileEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, fakeStravaAPI(), true)
	body := decodeMap(t, env.get(t, "/api/profile"))
	if body["name"] != "Riley Kahn" {
		t.Errorf("name = %v", body["name"])
	}
	if body["ytd_miles"] != 100.0 {
		t.Errorf("ytd_miles = %v, want 100", body["ytd_miles"])
	}
}

func TestRefreshEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, fakeStravaAPI(), true)
	body := decodeMap(t, env.get(t, "/api/refresh"))
	if body["status"] != "cache cleared" {
		t.Errorf("body = %v", body)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, false)

	rec := env.postJSON(t, "/api/settings", `{"goalMi": 40, "plan": [{"type": "Tempo Run", "count": 1}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeMap(t, rec)
	if body["goalMi"] != 40.0 {
		t.Errorf("goalMi = %v, want 40", body["goalMi"])
	}
	// Untouched fields keep their defaults.
	if body["vo2"] != 52.0 {
		t.Errorf("vo2 = %v, want 52", body["vo2"])
	}

	got := decodeMap(t, env.get(t, "/api/settings"))
	if got["goalMi"] != 40.0 {
		t.Errorf("persisted goalMi = %v", got["goalMi"])
	}
}

func TestSettingsRejectsInvalid(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, false)
	rec := env.postJSON(t, "/api/settings", `{"goalMi": -5}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAssistantDemoMode(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, false)
	rec := env.get(t, "/api/assistant?demo=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeMap(t, rec)
	if body["message"] != "Nice work this week." {
		t.Errorf("message = %v", body["message"])
	}
	if body["mode"] == "" || body["mode"] == "error" {
		t.Errorf("mode = %v", body["mode"])
	}
}

func TestAssistantLiveModeSurvivesDisconnectedStrava(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, false)
	rec := env.get(t, "/api/assistant")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeMap(t, rec)
	if body["message"] != "Nice work this week." {
		t.Errorf("message = %v", body["message"])
	}
}

func TestAuthConnectRedirectsToStrava(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, false)
	rec := env.get(t, "/auth/strava")
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "client_id=123") {
		t.Errorf("redirect %q missing client_id", loc)
	}
	if !strings.Contains(loc, "state=") {
		t.Errorf("redirect %q missing state", loc)
	}
}

func TestAuthCallbackRejectsForgedState(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, false)
	rec := env.get(t, "/auth/callback?code=abc&state=forged")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAuthCallbackMissingCode(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, false)
	rec := env.get(t, "/auth/callback")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeMap(t, rec)
	if body["error"] != "No authorization code received" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestAuthCallbackDenied(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, false)
	rec := env.get(t, "/auth/callback?error=access_denied")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAuthStateRoundTrip(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(nil, "test-secret", zap.NewNop())
	state, err := h.signState()
	if err != nil {
		t.Fatalf("signState: %v", err)
	}
	if err := h.verifyState(state); err != nil {
		t.Errorf("verifyState: %v", err)
	}

	other := NewAuthHandler(nil, "different-secret", zap.NewNop())
	if err := other.verifyState(state); err == nil {
		t.Error("state verified under the wrong secret")
	}
}

func TestAuthDisconnect(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, true)
	rec := env.get(t, "/auth/disconnect")
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if env.tokens.Connected() {
		t.Error("token still present after disconnect")
	}
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, false)

	body := decodeMap(t, env.get(t, "/healthz"))
	if body["status"] != "healthy" {
		t.Errorf("status = %v", body["status"])
	}

	extended := decodeMap(t, env.get(t, "/healthz?mode=extended"))
	checks, ok := extended["checks"].(map[string]any)
	if !ok {
		t.Fatalf("checks missing: %v", extended)
	}
	if checks["data_dir"] != "healthy" {
		t.Errorf("data_dir = %v", checks["data_dir"])
	}
}

func TestWeatherEndpointEmptyForecast(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, false)
	rec := env.get(t, "/api/weather")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeMap(t, rec)
	if body["period"] != "today" {
		t.Errorf("period = %v, want today at 9 AM", body["period"])
	}
}
