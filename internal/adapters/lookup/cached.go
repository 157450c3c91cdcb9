package lookup

import (
	"context"
	"errors"
	"time"

	"github.com/scamshield/contact-monitor/internal/core"
	"go.uber.org/zap"
)

// remote is the slice of Client the cached layer depends on; it lets
// tests substitute a scripted backend.
type remote interface {
	Check(ctx context.Context, identifier string) (*core.LookupResult, error)
	Report(ctx context.Context, req core.ReportRequest) (*core.ScammerRecord, error)
	RemoteStats(ctx context.Context) (*core.RemoteStats, error)
}

// CachedService implements core.LookupService by layering a TTL cache
// over the remote client. The cache repository may itself be tiered
// (memory over a durable store); this layer only sees one. Cache
// read/write failures are treated as misses: the remote call proceeds
// and a warning is logged, so a broken store never stops monitoring.
type CachedService struct {
	remote  remote
	cache   core.CacheRepository
	ttl     time.Duration
	enabled bool
	logger  *zap.Logger
}

// NewCachedService wraps a remote client with the cache layer.
func NewCachedService(client *Client, cache core.CacheRepository, ttl time.Duration, enabled bool, logger *zap.Logger) *CachedService {
	return &CachedService{
		remote:  client,
		cache:   cache,
		ttl:     ttl,
		enabled: enabled,
		logger:  logger,
	}
}

// Check resolves an identifier, serving live cached entries and
// writing through fresh remote results. Remote failures are never
// cached.
func (s *CachedService) Check(ctx context.Context, identifier string) (*core.LookupResult, error) {
	if s.enabled {
		entry, err := s.cache.Get(ctx, identifier)
		if err == nil {
			s.logger.Debug("Cache hit", zap.String("identifier", identifier))
			return entry.Result(), nil
		}
		if !errors.Is(err, core.ErrCacheMiss) {
			s.logger.Warn("Cache read failed, falling through to remote",
				zap.String("identifier", identifier),
				zap.Error(err))
		}
	}

	result, err := s.remote.Check(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if s.enabled {
		now := time.Now()
		entry := &core.CacheEntry{
			Identifier: identifier,
			IsMatch:    result.IsMatch,
			Match:      result.Match,
			ResolvedAt: result.ResolvedAt,
			ExpiresAt:  now.Add(s.ttl),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Warn("Cache write failed",
				zap.String("identifier", identifier),
				zap.Error(err))
		}
	}

	return result, nil
}

// Invalidate drops the cached entry for an identifier. Called after a
// successful report so the next check sees the new state.
func (s *CachedService) Invalidate(ctx context.Context, identifier string) error {
	if !s.enabled {
		return nil
	}
	return s.cache.Delete(ctx, identifier)
}

// Report passes a report through to the remote service.
func (s *CachedService) Report(ctx context.Context, req core.ReportRequest) (*core.ScammerRecord, error) {
	return s.remote.Report(ctx, req)
}

// RemoteStats passes the stats probe through to the remote service.
func (s *CachedService) RemoteStats(ctx context.Context) (*core.RemoteStats, error) {
	return s.remote.RemoteStats(ctx)
}
