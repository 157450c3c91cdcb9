package factory

import (
	"fmt"

	"github.com/scamshield/contact-monitor/internal/adapters/lookup"
	"github.com/scamshield/contact-monitor/internal/config"
	"github.com/scamshield/contact-monitor/internal/core"
	"go.uber.org/zap"
)

// LookupFactory creates the remote lookup client and its cache layer
type LookupFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLookupFactory creates a new lookup factory
func NewLookupFactory(cfg *config.Config, logger *zap.Logger) *LookupFactory {
	return &LookupFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateRemoteClient creates the bare HTTP client for the lookup service
func (f *LookupFactory) CreateRemoteClient() (*lookup.Client, error) {
	lookupCfg := f.cfg.GetLookup()
	timeout, err := f.cfg.GetDuration("lookup.timeout")
	if err != nil {
		return nil, fmt.Errorf("invalid lookup timeout: %w", err)
	}
	return lookup.NewClient(lookupCfg.BaseURL, lookupCfg.APIKey, timeout, f.logger), nil
}

// CreateLookupService wraps the remote client with the configured cache
func (f *LookupFactory) CreateLookupService(client *lookup.Client, cacheRepo core.CacheRepository) (core.LookupService, error) {
	ttl, err := f.cfg.GetDuration("cache.ttl")
	if err != nil {
		return nil, fmt.Errorf("invalid cache TTL: %w", err)
	}
	enabled := f.cfg.GetBool("cache.enabled")
	return lookup.NewCachedService(client, cacheRepo, ttl, enabled, f.logger), nil
}
