package notify

import (
	"context"

	"github.com/scamshield/contact-monitor/internal/core"
	"go.uber.org/zap"
)

// LogNotifier writes alerts to the structured log only. It is the
// fallback backend for headless deployments and tests.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-only notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs one alert
func (n *LogNotifier) Notify(ctx context.Context, alert *core.Alert) error {
	n.logger.Warn("SCAM ALERT",
		zap.String("identifier", alert.Identifier),
		zap.String("channel", string(alert.Channel)),
		zap.String("message", alert.Message),
		zap.String("processing_id", alert.ProcessingID))
	return nil
}

// StaticPermission is a config-driven core.PermissionChecker standing
// in for the platform's notification-permission capability.
type StaticPermission struct {
	Allowed bool
}

// NotificationsAllowed reports the configured permission state
func (p StaticPermission) NotificationsAllowed() bool {
	return p.Allowed
}
