package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scamshield/contact-monitor/internal/core"
)

func liveEntry(identifier string) *core.CacheEntry {
	now := time.Now()
	return &core.CacheEntry{
		Identifier: identifier,
		IsMatch:    true,
		Match:      &core.ScammerRecord{ID: "rec-1", Identifier: identifier},
		ResolvedAt: now,
		ExpiresAt:  now.Add(time.Minute),
	}
}

// countingCache wraps MemoryCache to count reads.
type countingCache struct {
	*MemoryCache
	gets int
}

func (c *countingCache) Get(ctx context.Context, identifier string) (*core.CacheEntry, error) {
	c.gets++
	return c.MemoryCache.Get(ctx, identifier)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(zap.NewNop())
	ctx := context.Background()

	entry := liveEntry("+250788123456")
	entry.ExpiresAt = time.Now().Add(-time.Second)
	require.NoError(t, c.Set(ctx, entry))

	_, err := c.Get(ctx, "+250788123456")
	assert.True(t, errors.Is(err, core.ErrCacheMiss), "expired entries must never be served")
}

func TestMemoryCacheCleanup(t *testing.T) {
	c := NewMemoryCache(zap.NewNop())
	ctx := context.Background()

	live := liveEntry("+250788123456")
	expired := liveEntry("+250788999999")
	expired.ExpiresAt = time.Now().Add(-time.Second)
	require.NoError(t, c.Set(ctx, live))
	require.NoError(t, c.Set(ctx, expired))

	require.NoError(t, c.Cleanup(ctx))

	_, err := c.Get(ctx, "+250788123456")
	assert.NoError(t, err)
	assert.Len(t, c.entries, 1)
}

func TestTieredCachePromotesDurableHit(t *testing.T) {
	fast := &countingCache{MemoryCache: NewMemoryCache(zap.NewNop())}
	durable := NewMemoryCache(zap.NewNop())
	tiered := NewTieredCache(fast, durable, zap.NewNop())
	ctx := context.Background()

	// Entry only in the durable tier, as after a process restart.
	require.NoError(t, durable.Set(ctx, liveEntry("+250788123456")))

	entry, err := tiered.Get(ctx, "+250788123456")
	require.NoError(t, err)
	assert.True(t, entry.IsMatch)

	// Now present in the fast tier too.
	_, err = fast.MemoryCache.Get(ctx, "+250788123456")
	assert.NoError(t, err)
}

func TestTieredCacheWriteThrough(t *testing.T) {
	fast := NewMemoryCache(zap.NewNop())
	durable := NewMemoryCache(zap.NewNop())
	tiered := NewTieredCache(fast, durable, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, tiered.Set(ctx, liveEntry("+250788123456")))

	_, err := fast.Get(ctx, "+250788123456")
	assert.NoError(t, err)
	_, err = durable.Get(ctx, "+250788123456")
	assert.NoError(t, err)
}

func TestTieredCacheDeleteBothTiers(t *testing.T) {
	fast := NewMemoryCache(zap.NewNop())
	durable := NewMemoryCache(zap.NewNop())
	tiered := NewTieredCache(fast, durable, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, tiered.Set(ctx, liveEntry("+250788123456")))
	require.NoError(t, tiered.Delete(ctx, "+250788123456"))

	_, err := tiered.Get(ctx, "+250788123456")
	assert.True(t, errors.Is(err, core.ErrCacheMiss))
}

func TestTieredCacheFastHitSkipsDurable(t *testing.T) {
	fast := NewMemoryCache(zap.NewNop())
	durable := &countingCache{MemoryCache: NewMemoryCache(zap.NewNop())}
	tiered := NewTieredCache(fast, durable, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, tiered.Set(ctx, liveEntry("+250788123456")))

	_, err := tiered.Get(ctx, "+250788123456")
	require.NoError(t, err)
	assert.Equal(t, 0, durable.gets, "a memory hit must not touch the durable store")
}
