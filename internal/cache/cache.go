// Package cache holds the two pieces of shared mutable state in the engine:
// the FX rate cache and the per-user synced portfolio value cache. Both are
// TTL-based and take an injected clock so tests can control time.
package cache

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Clock returns the current time. time.Now in production.
type Clock func() time.Time

type rateEntry struct {
	rate     decimal.Decimal
	storedAt time.Time
}

// RateCache caches FX conversion rates per currency pair. A rate older than
// the TTL is no longer returned by Get, but stays available through GetStale
// as the fallback when the provider is unreachable.
type RateCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     Clock
	entries map[string]rateEntry
}

// NewRateCache creates a rate cache. now may be nil, defaulting to time.Now.
func NewRateCache(ttl time.Duration, now Clock) *RateCache {
	if now == nil {
		now = time.Now
	}
	return &RateCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]rateEntry),
	}
}

// Get returns the cached rate for a pair (e.g. "USDEUR") if it is still fresh.
func (c *RateCache) Get(pair string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[pair]
	if !ok || c.now().Sub(entry.storedAt) > c.ttl {
		return decimal.Zero, false
	}
	return entry.rate, true
}

// GetStale returns the last known rate for a pair regardless of age.
// Used as the fallback when a live fetch fails.
func (c *RateCache) GetStale(pair string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[pair]
	if !ok {
		return decimal.Zero, false
	}
	return entry.rate, true
}

// Put stores a rate for a pair, resetting its age.
func (c *RateCache) Put(pair string, rate decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[pair] = rateEntry{rate: rate, storedAt: c.now()}
}

type valueEntry struct {
	value    decimal.Decimal
	storedAt time.Time
}

// ValueCache caches the consolidated portfolio value per user. The staleness
// window is deliberately long (hours): a synced value is preferred over
// re-fetching quotes on every trigger, and callers force a refresh explicitly
// when they need a live figure.
type ValueCache struct {
	mu        sync.RWMutex
	staleness time.Duration
	now       Clock
	entries   map[uuid.UUID]valueEntry
}

// NewValueCache creates a value cache. now may be nil, defaulting to time.Now.
func NewValueCache(staleness time.Duration, now Clock) *ValueCache {
	if now == nil {
		now = time.Now
	}
	return &ValueCache{
		staleness: staleness,
		now:       now,
		entries:   make(map[uuid.UUID]valueEntry),
	}
}

// Get returns the cached value for a user if it is inside the staleness window.
func (c *ValueCache) Get(userID uuid.UUID) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[userID]
	if !ok || c.now().Sub(entry.storedAt) > c.staleness {
		return decimal.Zero, false
	}
	return entry.value, true
}

// Put stores the consolidated value for a user.
func (c *ValueCache) Put(userID uuid.UUID, value decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = valueEntry{value: value, storedAt: c.now()}
}

// Invalidate drops a user's cached value, forcing the next read to recompute.
func (c *ValueCache) Invalidate(userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}
