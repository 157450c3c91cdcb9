package cache

import (
	"context"
	"errors"

	"github.com/scamshield/contact-monitor/internal/core"
	"go.uber.org/zap"
)

// TieredCache composes the memory tier with a durable backing store
// behind the single core.CacheRepository interface. Reads go through
// memory first and promote durable hits; writes go through to both,
// with the durable store as the source of truth. A failing durable
// store degrades to memory-only rather than failing the lookup.
type TieredCache struct {
	fast    core.CacheRepository
	durable core.CacheRepository
	logger  *zap.Logger
}

// NewTieredCache layers a fast cache over a durable one.
func NewTieredCache(fast, durable core.CacheRepository, logger *zap.Logger) *TieredCache {
	return &TieredCache{fast: fast, durable: durable, logger: logger}
}

// Get reads through the tiers and promotes durable hits into memory.
func (c *TieredCache) Get(ctx context.Context, identifier string) (*core.CacheEntry, error) {
	entry, err := c.fast.Get(ctx, identifier)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, core.ErrCacheMiss) {
		c.logger.Warn("Memory cache read failed", zap.Error(err))
	}

	entry, err = c.durable.Get(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if err := c.fast.Set(ctx, entry); err != nil {
		c.logger.Warn("Failed to promote entry to memory cache", zap.Error(err))
	}
	return entry, nil
}

// Set writes through to both tiers. The durable write happens first;
// if it fails the memory tier is still updated so the running session
// keeps its verdict, and the error is returned for the caller to log.
func (c *TieredCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	durableErr := c.durable.Set(ctx, entry)
	if err := c.fast.Set(ctx, entry); err != nil {
		c.logger.Warn("Memory cache write failed", zap.Error(err))
	}
	return durableErr
}

// Delete removes the entry from both tiers.
func (c *TieredCache) Delete(ctx context.Context, identifier string) error {
	fastErr := c.fast.Delete(ctx, identifier)
	durableErr := c.durable.Delete(ctx, identifier)
	if durableErr != nil {
		return durableErr
	}
	return fastErr
}

// Cleanup sweeps expired entries from both tiers.
func (c *TieredCache) Cleanup(ctx context.Context) error {
	if err := c.fast.Cleanup(ctx); err != nil {
		c.logger.Warn("Memory cache cleanup failed", zap.Error(err))
	}
	return c.durable.Cleanup(ctx)
}
