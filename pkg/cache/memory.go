package cache

import (
	"context"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// NullCache is a no-op cache that never stores anything.
// Used when caching is disabled with --no-cache.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always returns a cache miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

// MemoryCache keeps entries in process memory. The server uses it when no
// redis is configured.
type MemoryCache struct {
	mu      sync.Mutex
	clock   clock.PassiveClock
	entries map[string]cacheEntry
}

// NewMemoryCache returns an empty memory cache. A nil clock uses the real one.
func NewMemoryCache(clk clock.PassiveClock) *MemoryCache {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &MemoryCache{clock: clk, entries: map[string]cacheEntry{}}
}

// Get retrieves a value, dropping it if it expired.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.ExpiresAt.IsZero() && c.clock.Now().After(e.ExpiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set stores a copy of data.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := cacheEntry{Data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.ExpiresAt = c.clock.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete removes a value.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close drops every entry.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	c.entries = map[string]cacheEntry{}
	c.mu.Unlock()
	return nil
}

var (
	_ Cache = (*NullCache)(nil)
	_ Cache = (*MemoryCache)(nil)
)
