package datasource

import (
	"context"
	"sync"
	"time"

	"saham-bot/internal/types"
)

// Cache is an in-memory TTL cache of quote results keyed by
// exchange:symbol:interval. Each key has its own lock, so concurrent
// requests for the same key share a single fetch while unrelated keys
// never serialize each other.
type Cache struct {
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	mu        sync.Mutex
	val       *types.QuoteResult
	fetchedAt time.Time
}

// NewCache creates a cache with the given TTL and entry bound.
func NewCache(ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		entries:    make(map[string]*cacheEntry),
	}
}

// GetOrFetch returns the live cached value for key, or invokes fetch and
// stores the result. A failed fetch is never cached. While a fetch for key
// is in flight, other callers for the same key wait and then reuse its
// result instead of fetching again.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (*types.QuoteResult, error)) (*types.QuoteResult, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		if len(c.entries) >= c.maxEntries {
			c.pruneExpiredLocked()
		}
		e = &cacheEntry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.val != nil && c.now().Sub(e.fetchedAt) <= c.ttl {
		return e.val, nil
	}

	val, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	e.val = val
	e.fetchedAt = c.now()
	return val, nil
}

// pruneExpiredLocked drops expired entries. Entries with a fetch in flight
// are skipped. Caller holds c.mu.
func (c *Cache) pruneExpiredLocked() {
	now := c.now()
	for key, e := range c.entries {
		if !e.mu.TryLock() {
			continue
		}
		expired := e.val == nil || now.Sub(e.fetchedAt) > c.ttl
		e.mu.Unlock()
		if expired {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of entries currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
