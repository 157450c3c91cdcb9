package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scamshield/contact-monitor/internal/adapters/cache"
	"github.com/scamshield/contact-monitor/internal/core"
)

type scriptedRemote struct {
	checks int
	err    error
}

func (r *scriptedRemote) Check(ctx context.Context, identifier string) (*core.LookupResult, error) {
	r.checks++
	if r.err != nil {
		return nil, r.err
	}
	return &core.LookupResult{Identifier: identifier, IsMatch: false, ResolvedAt: time.Now()}, nil
}

func (r *scriptedRemote) Report(ctx context.Context, req core.ReportRequest) (*core.ScammerRecord, error) {
	return &core.ScammerRecord{ID: "rec-1"}, nil
}

func (r *scriptedRemote) RemoteStats(ctx context.Context) (*core.RemoteStats, error) {
	return &core.RemoteStats{}, nil
}

func newCachedFixture(remote *scriptedRemote, ttl time.Duration) *CachedService {
	return &CachedService{
		remote:  remote,
		cache:   cache.NewMemoryCache(zap.NewNop()),
		ttl:     ttl,
		enabled: true,
		logger:  zap.NewNop(),
	}
}

func TestCachedServiceServesFromCache(t *testing.T) {
	remote := &scriptedRemote{}
	svc := newCachedFixture(remote, time.Minute)
	ctx := context.Background()

	_, err := svc.Check(ctx, "+250788123456")
	require.NoError(t, err)
	_, err = svc.Check(ctx, "+250788123456")
	require.NoError(t, err)

	assert.Equal(t, 1, remote.checks, "second check must be a cache hit")
}

func TestCachedServiceTTLExpiry(t *testing.T) {
	remote := &scriptedRemote{}
	svc := newCachedFixture(remote, 30*time.Millisecond)
	ctx := context.Background()

	_, err := svc.Check(ctx, "+250788123456")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, err = svc.Check(ctx, "+250788123456")
	require.NoError(t, err)
	assert.Equal(t, 2, remote.checks, "an expired entry must trigger a fresh remote call")
}

// A report for a previously cached miss must invalidate the stale
// entry so the next check reaches the service again.
func TestCachedServiceInvalidate(t *testing.T) {
	remote := &scriptedRemote{}
	svc := newCachedFixture(remote, time.Minute)
	ctx := context.Background()

	_, err := svc.Check(ctx, "+250788123456")
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(ctx, "+250788123456"))

	_, err = svc.Check(ctx, "+250788123456")
	require.NoError(t, err)
	assert.Equal(t, 2, remote.checks)
}

func TestCachedServiceDoesNotCacheFailures(t *testing.T) {
	remote := &scriptedRemote{err: errors.New("connection refused")}
	svc := newCachedFixture(remote, time.Minute)
	ctx := context.Background()

	_, err := svc.Check(ctx, "+250788123456")
	require.Error(t, err)

	remote.err = nil
	_, err = svc.Check(ctx, "+250788123456")
	require.NoError(t, err)
	assert.Equal(t, 2, remote.checks, "a failure must not poison the cache")
}

func TestCachedServiceDisabled(t *testing.T) {
	remote := &scriptedRemote{}
	svc := newCachedFixture(remote, time.Minute)
	svc.enabled = false
	ctx := context.Background()

	_, err := svc.Check(ctx, "+250788123456")
	require.NoError(t, err)
	_, err = svc.Check(ctx, "+250788123456")
	require.NoError(t, err)
	assert.Equal(t, 2, remote.checks)
}
