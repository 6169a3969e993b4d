// Package cache holds the two in-memory caches the dashboard depends
// on: a generic keyed request cache used by the upstream clients, and
// the single-slot coaching message cache. Both take an injected clock
// so tests can pin time, and both expire lazily at read; there is no
// background sweeper.
package cache

import (
	"sync"
	"time"
)

// Clock returns the current time. A nil Clock falls back to time.Now.
type Clock func() time.Time

type keyedEntry struct {
	value    any
	storedAt time.Time
}

// KeyedCache is a per-key TTL cache. The TTL is supplied by the caller
// on every read, so different key classes (activity lists, activity
// detail, weather) can use different lifetimes against one cache.
// ClearAll is the only way entries disappear before their TTL; it is
// invoked whenever upstream state is known to have changed so the next
// context build sees fresh data.
type KeyedCache struct {
	mu      sync.Mutex
	now     Clock
	entries map[string]keyedEntry
}

// NewKeyedCache creates an empty cache using clock for expiry checks.
func NewKeyedCache(clock Clock) *KeyedCache {
	if clock == nil {
		clock = time.Now
	}
	return &KeyedCache{
		now:     clock,
		entries: make(map[string]keyedEntry),
	}
}

// Get returns the value for key if it was stored less than ttl ago.
// An expired entry is treated as absent but left in place (lazy
// expiry); the next Set overwrites it.
func (c *KeyedCache) Get(key string, ttl time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) >= ttl {
		return nil, false
	}
	return entry.value, true
}

// Set stores value under key with the current timestamp.
func (c *KeyedCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = keyedEntry{value: value, storedAt: c.now()}
}

// ClearAll removes every entry unconditionally.
func (c *KeyedCache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]keyedEntry)
}

// Len reports the number of physically stored entries, expired or not.
func (c *KeyedCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
