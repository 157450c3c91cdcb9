package cache

import (
	"context"
	"sync"
	"time"

	"github.com/scamshield/contact-monitor/internal/core"
	"go.uber.org/zap"
)

// MemoryCache is the in-memory implementation of core.CacheRepository.
// It is the read-through accelerator tier in production and the whole
// cache in tests. Expiry is checked against the wall clock on every
// read; expired entries are never served.
type MemoryCache struct {
	entries map[string]*core.CacheEntry
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(logger *zap.Logger) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*core.CacheEntry),
		logger:  logger,
	}
}

// Get retrieves a live cached entry for an identifier
func (c *MemoryCache) Get(ctx context.Context, identifier string) (*core.CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[identifier]
	if !ok {
		return nil, core.ErrCacheMiss
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, core.ErrCacheMiss
	}
	return entry, nil
}

// Set stores a cache entry
func (c *MemoryCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[entry.Identifier] = entry
	return nil
}

// Delete removes a cache entry
func (c *MemoryCache) Delete(ctx context.Context, identifier string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, identifier)
	return nil
}

// Cleanup removes expired entries
func (c *MemoryCache) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expiredCount := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			expiredCount++
		}
	}

	c.logger.Debug("Cleaned up expired cache entries", zap.Int("expired_count", expiredCount))
	return nil
}
