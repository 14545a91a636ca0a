// Package cache provides the run-scoped metadata cache. Duplicate manifest
// entries collapse to a single fetch per identifier key; entries live for the
// duration of one scan run unless a cross-run Backend is attached.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/depfence/depfence/internal/core"
)

// Backend is an optional cross-run store consulted before the network and
// updated after a successful fetch. Backend errors are treated as misses.
type Backend interface {
	Get(ctx context.Context, key string) (core.Metadata, bool)
	Put(ctx context.Context, key string, md core.Metadata, ttl time.Duration)
}

// Fetcher produces metadata for an identifier. It must not fail; failures are
// encoded in the returned Metadata's Outcome.
type Fetcher func(ctx context.Context, id core.Identifier) core.Metadata

// Cache memoizes fetched metadata for one scan run.
type Cache struct {
	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]core.Metadata

	backend    Backend
	backendTTL time.Duration
}

// Option configures a Cache.
type Option func(*Cache)

// WithBackend attaches a cross-run backend with the given entry TTL.
func WithBackend(b Backend, ttl time.Duration) Option {
	return func(c *Cache) {
		c.backend = b
		c.backendTTL = ttl
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]core.Metadata),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrFetch returns cached metadata for the identifier, fetching at most
// once per key: concurrent callers for the same key share one in-flight fetch.
func (c *Cache) GetOrFetch(ctx context.Context, id core.Identifier, fetch Fetcher) core.Metadata {
	key := id.Key()

	c.mu.RLock()
	md, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return md
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		if c.backend != nil {
			if md, ok := c.backend.Get(ctx, key); ok {
				c.store(key, md)
				return md, nil
			}
		}

		md := fetch(ctx, id)
		c.store(key, md)

		// Only resolved metadata is worth persisting; degraded outcomes
		// would poison later runs with stale worst-case entries.
		if c.backend != nil && md.Outcome == core.OutcomeOK {
			c.backend.Put(ctx, key, md, c.backendTTL)
		}
		return md, nil
	})

	return v.(core.Metadata)
}

func (c *Cache) store(key string, md core.Metadata) {
	c.mu.Lock()
	c.entries[key] = md
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
