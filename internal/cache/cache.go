package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
)

// Supported backends. BackendNone disables live lookup caching.
const (
	BackendNone      = "none"
	BackendInMemory  = "in_memory"
	BackendMemcached = "memcached"
)

// Cache defines the interface for live lookup caching implementations.
// Get returns cached data if present and not expired, Set stores data with TTL.
type Cache interface {
	Get(ctx context.Context, key string) (airquality.NormalizedPollution, bool, error)
	Set(ctx context.Context, key string, value airquality.NormalizedPollution, ttl time.Duration) error
}

var _ airquality.LiveCache = Cache(nil)

// New builds the cache named by backend. It returns nil for BackendNone.
func New(backend, memcachedAddrs string, memcachedTimeout time.Duration) (Cache, error) {
	switch backend {
	case BackendNone, "":
		return nil, nil
	case BackendInMemory:
		return NewInMemoryCache(), nil
	case BackendMemcached:
		return NewMemcachedCache(memcachedAddrs, memcachedTimeout, 0)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// InMemoryCache implements Cache using an in-memory map with TTL-based expiration.
// Expired entries are removed on access.
type InMemoryCache struct {
	mu   sync.Mutex
	data map[string]cacheEntry
	now  func() time.Time
}

type cacheEntry struct {
	value     airquality.NormalizedPollution
	expiresAt time.Time
}

// NewInMemoryCache creates a new in-memory cache instance.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		data: make(map[string]cacheEntry),
		now:  time.Now,
	}
}

// Get returns (data, true, nil) on a hit and (zero, false, nil) on a miss or
// expiration.
func (c *InMemoryCache) Get(ctx context.Context, key string) (airquality.NormalizedPollution, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[key]
	if !ok {
		return airquality.NormalizedPollution{}, false, nil
	}

	if c.now().After(entry.expiresAt) {
		delete(c.data, key)
		return airquality.NormalizedPollution{}, false, nil
	}

	return entry.value, true, nil
}

// Set stores value under key until ttl elapses.
func (c *InMemoryCache) Set(ctx context.Context, key string, value airquality.NormalizedPollution, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = cacheEntry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}
