package core

import (
	"context"
	"time"
)

// LookupService resolves the scammer status of normalized identifiers.
// The production implementation layers a two-tier cache over the remote
// HTTP service.
type LookupService interface {
	// Check resolves an identifier, preferring cached results.
	Check(ctx context.Context, identifier string) (*LookupResult, error)

	// Invalidate drops any cached result for an identifier so the next
	// Check reaches the remote service.
	Invalidate(ctx context.Context, identifier string) error

	// Report submits a user report to the remote service.
	Report(ctx context.Context, req ReportRequest) (*ScammerRecord, error)

	// RemoteStats fetches aggregate counts; also a connectivity probe.
	RemoteStats(ctx context.Context) (*RemoteStats, error)
}

// CacheRepository stores lookup results with an expiry. Get must never
// return an expired entry.
type CacheRepository interface {
	Get(ctx context.Context, identifier string) (*CacheEntry, error)
	Set(ctx context.Context, entry *CacheEntry) error
	Delete(ctx context.Context, identifier string) error

	// Cleanup removes expired entries.
	Cleanup(ctx context.Context) error
}

// HistoryStore is the append-only detection log. Append is durable
// before it returns; destructive operations run only from maintenance.
type HistoryStore interface {
	Append(ctx context.Context, record *DetectionRecord) error

	// List returns records newest-first according to the filter.
	List(ctx context.Context, filter HistoryFilter) ([]*DetectionRecord, error)

	// CountSince counts records at or after a cutoff, optionally only
	// matches.
	CountSince(ctx context.Context, since time.Time, onlyMatches bool) (int64, error)

	// PruneOlderThan deletes records strictly older than the cutoff and
	// returns how many were removed. Idempotent.
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	ClearAll(ctx context.Context) error
}

// Notifier delivers an alert to the user. Delivery is best-effort; a
// failure never blocks event processing.
type Notifier interface {
	Notify(ctx context.Context, alert *Alert) error
}

// PermissionChecker reports whether the notification capability has
// been granted by the platform.
type PermissionChecker interface {
	NotificationsAllowed() bool
}

// EventSource is one platform listener. Start registers the listener
// and invokes the handler for every inbound event until Stop.
type EventSource interface {
	Channel() Channel
	Start(handler func(MonitoringEvent)) error
	Stop() error
}

// SettingsStore is durable key/value state, used for the
// monitoring-enabled flag.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
