// Package cache holds the in-memory search result cache.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jsamuelsen/quote-finder/internal/ports"
	"github.com/jsamuelsen/quote-finder/internal/search"
)

// Ensure MemoryCache implements the interface.
var _ ports.SearchCache = (*MemoryCache)(nil)

// MemoryCache keeps search results in memory for a fixed TTL.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a cache whose entries expire after ttl. Expired
// entries are swept every cleanupInterval.
func NewMemoryCache(ttl, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Get implements ports.SearchCache.
func (c *MemoryCache) Get(_ context.Context, key string) (search.Result, bool) {
	if val, found := c.cache.Get(key); found {
		result, ok := val.(search.Result)
		return result, ok
	}

	return search.Result{}, false
}

// Set implements ports.SearchCache.
func (c *MemoryCache) Set(_ context.Context, key string, result search.Result) {
	c.cache.SetDefault(key, result)
}

// Purge implements ports.SearchCache.
func (c *MemoryCache) Purge(context.Context) {
	c.cache.Flush()
}

// Len returns the number of entries, including expired ones not yet swept.
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}
