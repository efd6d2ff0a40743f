package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mariiahub/taxcore/internal/logger"
	goCache "github.com/patrickmn/go-cache"
)

// DefaultExpiration is the default expiration time for cache entries
const DefaultExpiration = 30 * time.Minute

// DefaultCleanupInterval is how often expired items are removed from the cache
const DefaultCleanupInterval = 1 * time.Hour

// InMemoryCache implements the Cache interface using github.com/patrickmn/go-cache
type InMemoryCache struct {
	cache  *goCache.Cache
	logger *logger.Logger
}

var (
	globalCache *InMemoryCache
	initOnce    sync.Once
)

// Initialize sets up the global cache instance
func Initialize(log *logger.Logger) {
	initOnce.Do(func() {
		globalCache = &InMemoryCache{
			cache:  goCache.New(DefaultExpiration, DefaultCleanupInterval),
			logger: log,
		}
	})
}

// NewInMemoryCache returns the global cache instance
func NewInMemoryCache() Cache {
	if globalCache == nil {
		Initialize(nil)
	}
	return globalCache
}

// Get retrieves a value from the cache
func (c *InMemoryCache) Get(_ context.Context, key string) (interface{}, bool) {
	return c.cache.Get(key)
}

// Set adds a value to the cache with the specified expiration
func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) {
	c.cache.Set(key, value, expiration)
}

// Delete removes a key from the cache
func (c *InMemoryCache) Delete(_ context.Context, key string) {
	c.cache.Delete(key)
}

// DeleteByPrefix removes all keys with the given prefix
func (c *InMemoryCache) DeleteByPrefix(_ context.Context, prefix string) {
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			c.cache.Delete(k)
		}
	}
}

// Flush removes all items from the cache
func (c *InMemoryCache) Flush(_ context.Context) {
	c.cache.Flush()
}
