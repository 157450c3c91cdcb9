package core

import (
	"time"
)

// Channel identifies the platform surface an event arrived on.
type Channel string

const (
	ChannelCall   Channel = "call"
	ChannelSMS    Channel = "sms"
	ChannelManual Channel = "manual"
)

// Phase is the lifecycle stage of a monitored event. Only PhaseRinging
// (calls) and PhaseReceived (sms) are eligible for lookup; other phases
// are observed but never trigger a check.
type Phase string

const (
	PhaseRinging  Phase = "ringing"
	PhaseAnswered Phase = "answered"
	PhaseEnded    Phase = "ended"
	PhaseReceived Phase = "received"
)

// MonitoringEvent is a transient value produced by a platform event
// source. It is consumed by the coordinator and discarded; only the
// derived DetectionRecord is persisted.
type MonitoringEvent struct {
	Identifier string
	Channel    Channel
	Phase      Phase
	Body       string // sms only; never persisted
	OccurredAt time.Time
}

// ScammerRecord is the remote service's description of a reported
// scammer identifier.
type ScammerRecord struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Identifier  string    `json:"identifier"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Evidence    string    `json:"evidence,omitempty"`
	ReportedBy  string    `json:"reportedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LookupResult is the resolved scammer status for an identifier.
// IsMatch is never true with a nil Match.
type LookupResult struct {
	Identifier string
	IsMatch    bool
	Match      *ScammerRecord
	ResolvedAt time.Time
}

// CacheEntry is a LookupResult with an expiry, as stored by the cache
// tiers. Entries past ExpiresAt must never be served.
type CacheEntry struct {
	Identifier string
	IsMatch    bool
	Match      *ScammerRecord
	ResolvedAt time.Time
	ExpiresAt  time.Time
}

// Result converts a cache entry back into the lookup result it wraps.
func (e *CacheEntry) Result() *LookupResult {
	return &LookupResult{
		Identifier: e.Identifier,
		IsMatch:    e.IsMatch,
		Match:      e.Match,
		ResolvedAt: e.ResolvedAt,
	}
}

// DetectionRecord is the immutable, persisted outcome of one processed
// event. Key encodes channel and timestamp so retention pruning can
// range-scan without a secondary index.
type DetectionRecord struct {
	Key           string
	ProcessingID  string
	Identifier    string
	Channel       Channel
	IsMatch       bool
	Match         *ScammerRecord
	Timestamp     time.Time
	DeviceContext string
}

// HistoryFilter narrows and pages a history listing. A zero filter
// lists everything newest-first up to the store's default page size.
type HistoryFilter struct {
	Channel     Channel
	OnlyMatches bool
	Limit       int
	Offset      int
}

// Alert is the structured payload handed to a Notifier when a match
// passes the throttle.
type Alert struct {
	ProcessingID string         `json:"processing_id"`
	Identifier   string         `json:"identifier"`
	Channel      Channel        `json:"channel"`
	Title        string         `json:"title"`
	Message      string         `json:"message"`
	Match        *ScammerRecord `json:"match"`
	Timestamp    time.Time      `json:"timestamp"`
}

// ReportRequest is a user-submitted scammer report.
type ReportRequest struct {
	Type           string `json:"type"`
	Identifier     string `json:"identifier"`
	Description    string `json:"description"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
	Source         string `json:"source"`
}

// RemoteStats are the aggregate counts published by the lookup service.
// Fetching them doubles as a connectivity probe.
type RemoteStats struct {
	TotalReports      int64            `json:"totalReports"`
	ConfirmedScammers int64            `json:"confirmedScammers"`
	ByType            map[string]int64 `json:"byType,omitempty"`
}

// ManualCheckResult is the outcome of a user-initiated check. It is
// returned to the UI and, unless the caller opts in, never persisted.
type ManualCheckResult struct {
	Success   bool
	IsScammer bool
	Record    *ScammerRecord
	Message   string
	Err       error
}

// State is the coordinator's transient lifecycle state. It is not
// persisted; a crash mid-Starting resolves to StateStopped on relaunch.
type State string

const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

// MonitorStats is a point-in-time read of the coordinator, derived from
// listener state and the history store.
type MonitorStats struct {
	Enabled             bool
	State               State
	ActiveChannels      []Channel
	UnavailableChannels map[Channel]string
	EventsSeen          map[Channel]int64
	DetectionsToday     int64
}
