package factory

import (
	"github.com/scamshield/contact-monitor/internal/adapters/eventsource"
	"github.com/scamshield/contact-monitor/internal/config"
	"github.com/scamshield/contact-monitor/internal/core"
	"go.uber.org/zap"
)

// SourceFactory creates platform event sources based on configuration
type SourceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSourceFactory creates a new source factory
func NewSourceFactory(cfg *config.Config, logger *zap.Logger) *SourceFactory {
	return &SourceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEventSources creates one source per enabled channel. A channel
// disabled in config simply has no source; bind failures at Start are
// the coordinator's per-channel degradation path.
func (f *SourceFactory) CreateEventSources() []core.EventSource {
	var sources []core.EventSource

	if call := f.cfg.GetSource("call"); call.Enabled {
		sources = append(sources, eventsource.NewCallSource(call.ListenAddress, f.logger))
	}
	if sms := f.cfg.GetSource("sms"); sms.Enabled {
		sources = append(sources, eventsource.NewSMSSource(sms.ListenAddress, f.logger))
	}

	return sources
}
