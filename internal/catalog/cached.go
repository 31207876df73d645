package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

const defaultCacheTTL = 6 * time.Hour

// Cached wraps a Getter with SQLite-backed response caching.
// Cache failures are logged and bypassed; they never fail a lookup.
type Cached struct {
	getter Getter
	cache  *Cache
	ttl    time.Duration
	log    *slog.Logger
}

// NewCached creates a caching decorator around the given getter.
func NewCached(getter Getter, cache *Cache, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{
		getter: getter,
		cache:  cache,
		ttl:    defaultCacheTTL,
		log:    logger,
	}
}

// WithTTL overrides the cache TTL.
func (c *Cached) WithTTL(ttl time.Duration) *Cached {
	c.ttl = ttl
	return c
}

// GetUnit returns the cached unit when fresh, otherwise fetches and caches.
func (c *Cached) GetUnit(ctx context.Context, unitID string) (*Unit, error) {
	key := "unit:" + unitID

	if data, ok := c.cache.Get(ctx, key); ok {
		var unit Unit
		if err := json.Unmarshal(data, &unit); err == nil {
			return &unit, nil
		}
		// Corrupt entry: drop it and fall through to a fresh fetch.
		_ = c.cache.Delete(ctx, key)
	}

	unit, err := c.getter.GetUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(unit); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.log.Warn("catalog cache write failed", "unit", unitID, "error", err)
		}
	}

	return unit, nil
}
