package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/scamshield/contact-monitor/internal/adapters/cache"
	"github.com/scamshield/contact-monitor/internal/config"
	"github.com/scamshield/contact-monitor/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates cache repositories based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCacheRepository creates the two-tier cache from configuration.
// The memory tier is always present; the durable tier behind it is
// chosen by cache.durable_type ("sqlite", "mysql" or "none").
func (f *CacheFactory) CreateCacheRepository() (core.CacheRepository, error) {
	memory := cache.NewMemoryCache(f.logger)

	durableType := f.cfg.GetString("cache.durable_type")
	switch durableType {
	case "none", "":
		return memory, nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("cache.sqlite_path")
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		durable, err := cache.NewSQLiteCache(sqlitePath, f.logger)
		if err != nil {
			return nil, err
		}
		return cache.NewTieredCache(memory, durable, f.logger), nil
	case "mysql":
		durable, err := cache.NewMySQLCache(f.cfg.GetString("cache.mysql_dsn"), f.logger)
		if err != nil {
			return nil, err
		}
		return cache.NewTieredCache(memory, durable, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported durable cache type: %s", durableType)
	}
}

// GetCacheTTL returns the configured cache TTL
func (f *CacheFactory) GetCacheTTL() (time.Duration, error) {
	return f.cfg.GetDuration("cache.ttl")
}

// IsCacheEnabled returns whether caching is enabled
func (f *CacheFactory) IsCacheEnabled() bool {
	return f.cfg.GetBool("cache.enabled")
}
