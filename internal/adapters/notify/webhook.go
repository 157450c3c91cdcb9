package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/scamshield/contact-monitor/internal/core"
	"go.uber.org/zap"
)

// WebhookNotifier posts alerts as JSON to a local notification bridge
// (the UI shim that raises the actual platform notification). Delivery
// is best-effort; the coordinator logs failures and carries on.
type WebhookNotifier struct {
	httpClient *http.Client
	url        string
	logger     *zap.Logger
}

// NewWebhookNotifier creates a webhook notifier
func NewWebhookNotifier(url string, timeout time.Duration, logger *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		logger:     logger,
	}
}

// Notify delivers one alert
func (n *WebhookNotifier) Notify(ctx context.Context, alert *core.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification bridge returned status %d", resp.StatusCode)
	}

	n.logger.Debug("Alert delivered",
		zap.String("identifier", alert.Identifier),
		zap.String("channel", string(alert.Channel)))
	return nil
}
