package factory

import (
	"fmt"
	"time"

	"github.com/scamshield/contact-monitor/internal/adapters/notify"
	"github.com/scamshield/contact-monitor/internal/config"
	"github.com/scamshield/contact-monitor/internal/core"
	"go.uber.org/zap"
)

// NotifierFactory creates alert notifiers based on configuration
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger) *NotifierFactory {
	return &NotifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateNotifier creates a notifier based on the configuration
func (f *NotifierFactory) CreateNotifier() (core.Notifier, error) {
	notifierType := f.cfg.GetString("notifications.type")

	switch notifierType {
	case "webhook":
		timeout, err := f.cfg.GetDuration("notifications.timeout")
		if err != nil {
			timeout = 5 * time.Second
		}
		return notify.NewWebhookNotifier(
			f.cfg.GetString("notifications.webhook_url"),
			timeout,
			f.logger,
		), nil
	case "log":
		return notify.NewLogNotifier(f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported notifier type: %s", notifierType)
	}
}

// CreatePermissionChecker creates the notification-permission capability
func (f *NotifierFactory) CreatePermissionChecker() core.PermissionChecker {
	return notify.StaticPermission{Allowed: f.cfg.GetBool("notifications.permission_granted")}
}
