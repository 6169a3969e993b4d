package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org/reverse"
	geocodeUserAgent    = "RunningDashboard/1.0"
	geocodeTimeout      = 5 * time.Second
)

// Geocoder resolves activity start coordinates to "City, State" labels
// via Nominatim, with a JSON-file-persisted cache keyed by coordinates
// rounded to ~111m so nearby starts deduplicate. Lookups are
// best-effort: failures cache an empty label and never propagate.
type Geocoder struct {
	baseURL string
	path    string
	http    *http.Client
	log     *zap.Logger

	mu    sync.Mutex
	cache map[string]string
}

// NewGeocoder creates a geocoder persisting its cache at path. The
// cache file is loaded eagerly; a missing or corrupt file starts empty.
func NewGeocoder(path string, log *zap.Logger) *Geocoder {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Geocoder{
		baseURL: defaultNominatimURL,
		path:    path,
		http:    &http.Client{Timeout: geocodeTimeout},
		log:     log,
		cache:   make(map[string]string),
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &g.cache); err != nil {
			log.Warn("geocode_cache_unreadable", zap.String("path", path), zap.Error(err))
			g.cache = make(map[string]string)
		}
	}
	return g
}

// Reverse resolves lat/lng to "City, State", or "" when unknown.
func (g *Geocoder) Reverse(ctx context.Context, lat, lng float64) string {
	key := fmt.Sprintf("%.3f,%.3f", lat, lng)

	g.mu.Lock()
	if label, ok := g.cache[key]; ok {
		g.mu.Unlock()
		return label
	}
	g.mu.Unlock()

	label := g.lookup(ctx, lat, lng)

	g.mu.Lock()
	g.cache[key] = label
	g.persistLocked()
	g.mu.Unlock()

	return label
}

func (g *Geocoder) lookup(ctx context.Context, lat, lng float64) string {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lng))
	q.Set("format", "json")
	q.Set("zoom", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", geocodeUserAgent)

	resp, err := g.http.Do(req)
	if err != nil {
		g.log.Debug("geocode_lookup_failed", zap.Error(err))
		return ""
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var payload struct {
		Address struct {
			City    string `json:"city"`
			Town    string `json:"town"`
			Village string `json:"village"`
			State   string `json:"state"`
		} `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ""
	}

	city := payload.Address.City
	if city == "" {
		city = payload.Address.Town
	}
	if city == "" {
		city = payload.Address.Village
	}

	var parts []string
	if city != "" {
		parts = append(parts, city)
	}
	if payload.Address.State != "" {
		parts = append(parts, payload.Address.State)
	}
	return strings.Join(parts, ", ")
}

// persistLocked writes the cache file; the caller holds g.mu.
func (g *Geocoder) persistLocked() {
	data, err := json.MarshalIndent(g.cache, "", "  ")
	if err != nil {
		return
	}
	tmp := g.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(g.path), 0o755); err != nil {
		g.log.Warn("geocode_cache_write_failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		g.log.Warn("geocode_cache_write_failed", zap.Error(err))
		return
	}
	if err := os.Rename(tmp, g.path); err != nil {
		g.log.Warn("geocode_cache_write_failed", zap.Error(err))
	}
}
