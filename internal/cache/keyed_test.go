package cache

import (
	"testing"
	"time"
)

// fakeClock is a settable clock for cache tests.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time               { return f.t }
func (f *fakeClock) Advance(d time.Duration)      { f.t = f.t.Add(d) }
func newFakeClock(t time.Time) *fakeClock         { return &fakeClock{t: t} }
func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func TestKeyedCache_SetThenGetIsAlwaysHit(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC))
	c := NewKeyedCache(clock.Now)

	c.Set("profile", "athlete")
	got, ok := c.Get("profile", 5*time.Minute)
	if !ok {
		t.Fatal("set followed by get with positive TTL must hit")
	}
	if got != "athlete" {
		t.Errorf("expected stored value, got %v", got)
	}
}

func TestKeyedCache_LazyExpiry(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC))
	c := NewKeyedCache(clock.Now)
	c.Set("recent_10_p1", []int{1, 2, 3})

	clock.Advance(4 * time.Minute)
	if _, ok := c.Get("recent_10_p1", 5*time.Minute); !ok {
		t.Error("entry younger than TTL must hit")
	}

	clock.Advance(2 * time.Minute)
	if _, ok := c.Get("recent_10_p1", 5*time.Minute); ok {
		t.Error("entry older than TTL must be treated as absent")
	}
	// Expired entries stay physically stored until overwritten.
	if c.Len() != 1 {
		t.Errorf("lazy expiry must not remove entries, len = %d", c.Len())
	}
}

func TestKeyedCache_PerReadTTL(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC))
	c := NewKeyedCache(clock.Now)
	c.Set("weather_concord", "forecast")

	clock.Advance(10 * time.Minute)
	if _, ok := c.Get("weather_concord", 5*time.Minute); ok {
		t.Error("5m TTL read should miss after 10m")
	}
	if _, ok := c.Get("weather_concord", 30*time.Minute); !ok {
		t.Error("30m TTL read should still hit after 10m")
	}
}

func TestKeyedCache_ClearAll(t *testing.T) {
	t.Parallel()

	c := NewKeyedCache(nil)
	c.Set("a", 1)
	c.Set("b", 2)
	c.ClearAll()

	if _, ok := c.Get("a", time.Hour); ok {
		t.Error("get after ClearAll must miss regardless of TTL")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache after ClearAll, len = %d", c.Len())
	}
}

func TestKeyedCache_MissingKey(t *testing.T) {
	t.Parallel()

	c := NewKeyedCache(nil)
	if _, ok := c.Get("nope", time.Hour); ok {
		t.Error("unknown key must miss")
	}
}
