package cache

import (
	"sync"
	"time"

	"github.com/rkahn/rundash/internal/models"
	"github.com/rkahn/rundash/internal/timeutil"
)

// PreRunTTL bounds how long a pre_run message may be reused. Pre-run
// guidance drifts with weather and remaining-goal context through the
// morning; all other modes hold for the rest of the local day.
const PreRunTTL = 2 * time.Hour

// MessageEntry is the cached coaching message together with the mode
// and instant it was generated under. The three fields are always
// written together.
type MessageEntry struct {
	Message     string
	Mode        models.Mode
	GeneratedAt time.Time
}

// MessageCache is the single-slot store for the most recent generated
// coaching message. One per process, since this is a single-user system.
type MessageCache struct {
	mu    sync.Mutex
	now   Clock
	loc   *time.Location
	entry *MessageEntry
}

// NewMessageCache creates an empty message cache. loc is the home zone
// used for date-rollover checks; a nil clock falls back to time.Now.
func NewMessageCache(clock Clock, loc *time.Location) *MessageCache {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &MessageCache{now: clock, loc: loc}
}

// Valid reports whether the cached entry may be served for mode right
// now. A mode transition always forces regeneration; that implicitly
// covers a run appearing today, since mode flips to post_run. pre_run
// expires after PreRunTTL; every other mode is valid until the local
// calendar date rolls over, regardless of elapsed seconds.
func (c *MessageCache) Valid(mode models.Mode) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry == nil {
		return false
	}
	if c.entry.Mode != mode {
		return false
	}

	now := c.now().In(c.loc)
	if mode == models.ModePreRun {
		return now.Sub(c.entry.GeneratedAt) < PreRunTTL
	}
	return timeutil.SameDay(c.entry.GeneratedAt.In(c.loc), now)
}

// Store atomically replaces the entry with a fresh message, mode and
// timestamp.
func (c *MessageCache) Store(message string, mode models.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = &MessageEntry{
		Message:     message,
		Mode:        mode,
		GeneratedAt: c.now(),
	}
}

// Stale returns a copy of the entry regardless of validity, or nil if
// nothing has been stored. Used as the fallback when generation fails.
func (c *MessageCache) Stale() *MessageEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return nil
	}
	entry := *c.entry
	return &entry
}

// Invalidate clears the entry. Called on explicit refresh, independent
// of mode logic.
func (c *MessageCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}
