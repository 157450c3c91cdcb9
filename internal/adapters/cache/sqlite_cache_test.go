package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scamshield/contact-monitor/internal/core"
)

func newSQLiteCache(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLiteCacheRoundTrip(t *testing.T) {
	c := newSQLiteCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, liveEntry("+250788123456")))

	entry, err := c.Get(ctx, "+250788123456")
	require.NoError(t, err)
	assert.True(t, entry.IsMatch)
	require.NotNil(t, entry.Match)
	assert.Equal(t, "rec-1", entry.Match.ID)
}

func TestSQLiteCacheMissAndExpiry(t *testing.T) {
	c := newSQLiteCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "+250788000000")
	assert.True(t, errors.Is(err, core.ErrCacheMiss))

	expired := liveEntry("+250788123456")
	expired.ExpiresAt = time.Now().Add(-time.Second)
	require.NoError(t, c.Set(ctx, expired))

	_, err = c.Get(ctx, "+250788123456")
	assert.True(t, errors.Is(err, core.ErrCacheMiss), "expired entries must never be served")
}

func TestSQLiteCacheBenignEntryHasNoRecord(t *testing.T) {
	c := newSQLiteCache(t)
	ctx := context.Background()

	entry := liveEntry("+250788123456")
	entry.IsMatch = false
	entry.Match = nil
	require.NoError(t, c.Set(ctx, entry))

	got, err := c.Get(ctx, "+250788123456")
	require.NoError(t, err)
	assert.False(t, got.IsMatch)
	assert.Nil(t, got.Match)
}

func TestSQLiteCacheDeleteAndCleanup(t *testing.T) {
	c := newSQLiteCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, liveEntry("+250788123456")))
	require.NoError(t, c.Delete(ctx, "+250788123456"))
	_, err := c.Get(ctx, "+250788123456")
	assert.True(t, errors.Is(err, core.ErrCacheMiss))

	expired := liveEntry("+250788999999")
	expired.ExpiresAt = time.Now().Add(-time.Second)
	require.NoError(t, c.Set(ctx, expired))
	require.NoError(t, c.Cleanup(ctx))
}
