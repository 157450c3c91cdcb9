package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/scamshield/contact-monitor/internal/core"
	"go.uber.org/zap"
)

// Sweeper runs the periodic maintenance tasks: the daily history
// retention prune and the cache expiry cleanup. Both are idempotent
// and run off the hot path, so they never contend with event
// processing for writes.
type Sweeper struct {
	history         core.HistoryStore
	cache           core.CacheRepository
	retention       time.Duration
	pruneSchedule   string
	cleanupInterval time.Duration
	logger          *zap.Logger
	cron            *cron.Cron
}

// NewSweeper creates a sweeper. pruneSchedule is a cron expression
// (default "0 3 * * *", daily at 03:00 local time).
func NewSweeper(
	history core.HistoryStore,
	cache core.CacheRepository,
	retention time.Duration,
	pruneSchedule string,
	cleanupInterval time.Duration,
	logger *zap.Logger,
) *Sweeper {
	return &Sweeper{
		history:         history,
		cache:           cache,
		retention:       retention,
		pruneSchedule:   pruneSchedule,
		cleanupInterval: cleanupInterval,
		logger:          logger,
	}
}

// Start registers and starts the schedules.
func (s *Sweeper) Start() error {
	s.cron = cron.New()

	if _, err := s.cron.AddFunc(s.pruneSchedule, s.pruneHistory); err != nil {
		return fmt.Errorf("failed to register prune schedule %q: %w", s.pruneSchedule, err)
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.cleanupInterval), s.cleanupCache); err != nil {
		return fmt.Errorf("failed to register cache cleanup schedule: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Maintenance schedules started",
		zap.String("prune_schedule", s.pruneSchedule),
		zap.Duration("retention", s.retention),
		zap.Duration("cache_cleanup_interval", s.cleanupInterval))
	return nil
}

// Stop stops the schedules and waits for a running job to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// PruneNow runs the retention prune immediately.
func (s *Sweeper) PruneNow(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.retention)
	return s.history.PruneOlderThan(ctx, cutoff)
}

func (s *Sweeper) pruneHistory() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pruned, err := s.PruneNow(ctx)
	if err != nil {
		s.logger.Error("History retention prune failed", zap.Error(err))
		return
	}
	s.logger.Info("History retention prune complete", zap.Int64("pruned", pruned))
}

func (s *Sweeper) cleanupCache() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.cache.Cleanup(ctx); err != nil {
		s.logger.Error("Cache cleanup failed", zap.Error(err))
	}
}
