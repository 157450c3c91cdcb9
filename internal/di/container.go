package di

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/scamshield/contact-monitor/internal/adapters/lookup"
	"github.com/scamshield/contact-monitor/internal/config"
	"github.com/scamshield/contact-monitor/internal/core"
	"github.com/scamshield/contact-monitor/internal/factory"
	"github.com/scamshield/contact-monitor/internal/logging"
	"github.com/scamshield/contact-monitor/internal/maintenance"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStorageFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewNotifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewSourceFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewLookupFactory); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register lookup client and cached lookup service
	if err := container.Provide(func(f *factory.LookupFactory) (*lookup.Client, error) {
		return f.CreateRemoteClient()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.LookupFactory, client *lookup.Client, cacheRepo core.CacheRepository) (core.LookupService, error) {
		return f.CreateLookupService(client, cacheRepo)
	}); err != nil {
		return nil, err
	}

	// Register history and settings stores
	if err := container.Provide(func(f *factory.StorageFactory) (core.HistoryStore, error) {
		return f.CreateHistoryStore()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.StorageFactory) (core.SettingsStore, error) {
		return f.CreateSettingsStore()
	}); err != nil {
		return nil, err
	}

	// Register notifier and permission capability
	if err := container.Provide(func(f *factory.NotifierFactory) (core.Notifier, error) {
		return f.CreateNotifier()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.NotifierFactory) core.PermissionChecker {
		return f.CreatePermissionChecker()
	}); err != nil {
		return nil, err
	}

	// Register platform event sources
	if err := container.Provide(func(f *factory.SourceFactory) []core.EventSource {
		return f.CreateEventSources()
	}); err != nil {
		return nil, err
	}

	// Register normalizer
	if err := container.Provide(func(cfg *config.Config) core.Normalizer {
		n := cfg.GetNormalizer()
		return core.NewNormalizer(n.DefaultCountryCode, n.TrunkPrefix, n.MinDigits, n.MaxDigits)
	}); err != nil {
		return nil, err
	}

	// Register coordinator options
	if err := container.Provide(func(cfg *config.Config) (core.MonitorOptions, error) {
		coolDown, err := cfg.GetDuration("monitor.cool_down")
		if err != nil {
			return core.MonitorOptions{}, fmt.Errorf("invalid cool-down: %w", err)
		}
		bucket, err := cfg.GetDuration("monitor.dedup_bucket")
		if err != nil {
			return core.MonitorOptions{}, fmt.Errorf("invalid dedup bucket: %w", err)
		}
		lookupTimeout, err := cfg.GetDuration("lookup.timeout")
		if err != nil {
			return core.MonitorOptions{}, fmt.Errorf("invalid lookup timeout: %w", err)
		}
		return core.MonitorOptions{
			CoolDown:      coolDown,
			DedupBucket:   bucket,
			MaxTracked:    cfg.GetInt("monitor.max_tracked"),
			LookupTimeout: lookupTimeout,
			DeviceContext: cfg.GetString("monitor.device_context"),
		}, nil
	}); err != nil {
		return nil, err
	}

	// Register monitoring coordinator
	if err := container.Provide(core.NewMonitorService); err != nil {
		return nil, err
	}

	// Register maintenance sweeper
	if err := container.Provide(func(
		cfg *config.Config,
		storage *factory.StorageFactory,
		history core.HistoryStore,
		cacheRepo core.CacheRepository,
		logger *zap.Logger,
	) (*maintenance.Sweeper, error) {
		retention, err := storage.GetRetention()
		if err != nil {
			return nil, fmt.Errorf("invalid history retention: %w", err)
		}
		cleanupInterval, err := cfg.GetDuration("maintenance.cache_cleanup_interval")
		if err != nil {
			return nil, fmt.Errorf("invalid cache cleanup interval: %w", err)
		}
		return maintenance.NewSweeper(
			history,
			cacheRepo,
			retention,
			cfg.GetString("maintenance.prune_schedule"),
			cleanupInterval,
			logger,
		), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}
