package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SettingEnabled is the durable settings key for the monitoring on/off
// switch.
const SettingEnabled = "monitoring.enabled"

// MonitorOptions tunes the coordinator pipeline.
type MonitorOptions struct {
	CoolDown      time.Duration
	DedupBucket   time.Duration
	MaxTracked    int
	LookupTimeout time.Duration
	DeviceContext string
}

// MonitorService is the monitoring coordinator. It owns the transient
// state machine (Stopped/Starting/Running/Stopping), wires platform
// events through deduplication, lookup and alerting, and exposes the
// enable/disable and statistics operations the UI consumes.
//
// Event admission is synchronous and cheap; the lookup and alert for an
// admitted event run in their own goroutine so a slow remote call never
// delays the next event's admission.
type MonitorService struct {
	lookup     LookupService
	history    HistoryStore
	notifier   Notifier
	perms      PermissionChecker
	settings   SettingsStore
	sources    []EventSource
	normalizer Normalizer
	dedup      *EventDeduplicator
	throttle   *AlertThrottle
	opts       MonitorOptions
	logger     *zap.Logger

	mu          sync.Mutex
	state       State
	enabled     bool
	active      map[Channel]bool
	unavailable map[Channel]string
	eventsSeen  map[Channel]int64
	permWarned  bool

	inflight sync.WaitGroup
}

// NewMonitorService creates the coordinator. It starts in StateStopped
// with monitoring disabled; call Init to load the persisted flag.
func NewMonitorService(
	lookup LookupService,
	history HistoryStore,
	notifier Notifier,
	perms PermissionChecker,
	settings SettingsStore,
	sources []EventSource,
	normalizer Normalizer,
	opts MonitorOptions,
	logger *zap.Logger,
) *MonitorService {
	return &MonitorService{
		lookup:      lookup,
		history:     history,
		notifier:    notifier,
		perms:       perms,
		settings:    settings,
		sources:     sources,
		normalizer:  normalizer,
		dedup:       NewEventDeduplicator(opts.DedupBucket, opts.MaxTracked),
		throttle:    NewAlertThrottle(opts.CoolDown, opts.MaxTracked),
		opts:        opts,
		logger:      logger,
		state:       StateStopped,
		active:      make(map[Channel]bool),
		unavailable: make(map[Channel]string),
		eventsSeen:  make(map[Channel]int64),
	}
}

// Init loads the persisted enabled flag and starts monitoring if it is
// set. A missing flag is treated as disabled.
func (s *MonitorService) Init(ctx context.Context) error {
	value, err := s.settings.Get(ctx, SettingEnabled)
	if err != nil {
		s.logger.Warn("Failed to load monitoring flag, staying disabled", zap.Error(err))
		return nil
	}
	if value != "true" {
		return nil
	}

	s.mu.Lock()
	s.enabled = true
	s.mu.Unlock()
	return s.Start()
}

// Enable persists the enabled flag and starts monitoring.
func (s *MonitorService) Enable(ctx context.Context) error {
	if err := s.settings.Set(ctx, SettingEnabled, "true"); err != nil {
		return fmt.Errorf("failed to persist monitoring flag: %w", err)
	}
	s.mu.Lock()
	s.enabled = true
	s.mu.Unlock()
	return s.Start()
}

// Disable persists the cleared flag and stops monitoring.
func (s *MonitorService) Disable(ctx context.Context) error {
	if err := s.settings.Set(ctx, SettingEnabled, "false"); err != nil {
		return fmt.Errorf("failed to persist monitoring flag: %w", err)
	}
	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()
	return s.Stop()
}

// Start registers the platform listeners. Registration failures are
// per-channel: the remaining channels still start, and the failure is
// surfaced through Stats. Only when every channel fails does Start
// return a ListenerError and fall back to StateStopped.
func (s *MonitorService) Start() error {
	s.mu.Lock()
	if s.state != StateStopped {
		s.mu.Unlock()
		return nil
	}
	s.state = StateStarting
	s.unavailable = make(map[Channel]string)
	s.mu.Unlock()

	started := 0
	failed := make(map[Channel]string)
	for _, src := range s.sources {
		ch := src.Channel()
		if err := src.Start(s.HandleEvent); err != nil {
			s.logger.Error("Failed to register platform listener",
				zap.String("channel", string(ch)),
				zap.Error(err))
			failed[ch] = err.Error()
			continue
		}
		s.mu.Lock()
		s.active[ch] = true
		s.mu.Unlock()
		started++
	}

	s.mu.Lock()
	s.unavailable = failed
	if started == 0 {
		s.state = StateStopped
		s.mu.Unlock()
		return &ListenerError{Failed: failed}
	}
	s.state = StateRunning
	s.mu.Unlock()

	s.logger.Info("Monitoring started",
		zap.Int("active_channels", started),
		zap.Int("failed_channels", len(failed)))
	return nil
}

// Stop releases all listeners and stops accepting events immediately.
// In-flight lookup tasks are allowed to finish and write history; use
// Drain to wait for them. Idempotent when already stopped.
func (s *MonitorService) Stop() error {
	s.mu.Lock()
	if s.state == StateStopped || s.state == StateStopping {
		s.mu.Unlock()
		return nil
	}
	s.state = StateStopping
	s.mu.Unlock()

	for _, src := range s.sources {
		ch := src.Channel()
		s.mu.Lock()
		wasActive := s.active[ch]
		delete(s.active, ch)
		s.mu.Unlock()
		if !wasActive {
			continue
		}
		if err := src.Stop(); err != nil {
			s.logger.Error("Failed to release platform listener",
				zap.String("channel", string(ch)),
				zap.Error(err))
		}
	}

	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()

	s.logger.Info("Monitoring stopped")
	return nil
}

// Drain blocks until all in-flight lookup tasks have completed.
func (s *MonitorService) Drain() {
	s.inflight.Wait()
}

// State returns the coordinator's current lifecycle state.
func (s *MonitorService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HandleEvent is the platform listener callback. It normalizes,
// validates and deduplicates synchronously, then schedules the lookup
// and alert stages as an independent task. It must stay fast: no I/O
// happens before it returns.
func (s *MonitorService) HandleEvent(event MonitoringEvent) {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		s.logger.Debug("Dropping event while not running",
			zap.String("channel", string(event.Channel)))
		return
	}
	s.mu.Unlock()

	if event.Identifier == "" {
		s.logger.Warn("Dropping event with missing identifier",
			zap.String("channel", string(event.Channel)),
			zap.String("phase", string(event.Phase)))
		return
	}

	identifier, err := s.normalizer.Normalize(event.Identifier)
	if err != nil {
		s.logger.Warn("Dropping event with malformed identifier",
			zap.String("channel", string(event.Channel)),
			zap.Error(err))
		return
	}

	s.mu.Lock()
	s.eventsSeen[event.Channel]++
	s.mu.Unlock()

	if !eligiblePhase(event.Channel, event.Phase) {
		s.logger.Debug("Observed non-triggering phase",
			zap.String("identifier", identifier),
			zap.String("channel", string(event.Channel)),
			zap.String("phase", string(event.Phase)))
		return
	}

	if !s.dedup.Admit(identifier, event.Channel, event.Phase) {
		s.logger.Debug("Suppressed duplicate event",
			zap.String("identifier", identifier),
			zap.String("channel", string(event.Channel)))
		return
	}

	if event.Channel == ChannelSMS && event.Body != "" {
		// Only the length ever leaves the event; the body itself is
		// neither logged nor stored.
		s.logger.Debug("Admitted SMS event",
			zap.String("identifier", identifier),
			zap.Int("body_length", len(event.Body)))
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.processEvent(identifier, event)
	}()
}

// processEvent runs the lookup and alert stages for one admitted event.
// Lookup failures are logged and retried implicitly by the next natural
// event for the same identifier; they produce no history record and no
// cache write.
func (s *MonitorService) processEvent(identifier string, event MonitoringEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.LookupTimeout)
	defer cancel()

	result, err := s.lookup.Check(ctx, identifier)
	if err != nil {
		s.logger.Warn("Lookup failed, skipping alert for this event",
			zap.String("identifier", identifier),
			zap.String("channel", string(event.Channel)),
			zap.Error(err))
		return
	}

	processingID := uuid.NewString()
	now := time.Now()

	if result.IsMatch && s.throttle.Reserve(identifier, event.Channel) {
		s.dispatchAlert(ctx, processingID, identifier, event.Channel, result.Match, now)
	}

	record := &DetectionRecord{
		Key:           recordKey(event.Channel, now),
		ProcessingID:  processingID,
		Identifier:    identifier,
		Channel:       event.Channel,
		IsMatch:       result.IsMatch,
		Match:         result.Match,
		Timestamp:     now,
		DeviceContext: s.opts.DeviceContext,
	}
	if err := s.history.Append(ctx, record); err != nil {
		s.logger.Warn("Failed to persist detection record",
			zap.String("identifier", identifier),
			zap.Error(err))
	}
}

// dispatchAlert delivers the notification for a throttled-in match.
// A missing permission degrades to log-only: the detection is still
// recorded by the caller, and the user is warned once, not per event.
func (s *MonitorService) dispatchAlert(ctx context.Context, processingID, identifier string, channel Channel, match *ScammerRecord, ts time.Time) {
	if !s.perms.NotificationsAllowed() {
		s.mu.Lock()
		warned := s.permWarned
		s.permWarned = true
		s.mu.Unlock()
		if !warned {
			s.logger.Warn("Notification permission not granted, alerts degraded to log-only")
		}
		s.logger.Info("Would have alerted",
			zap.String("identifier", identifier),
			zap.String("channel", string(channel)))
		return
	}

	alert := &Alert{
		ProcessingID: processingID,
		Identifier:   identifier,
		Channel:      channel,
		Title:        "Scam alert",
		Message:      alertMessage(identifier, channel),
		Match:        match,
		Timestamp:    ts,
	}
	if err := s.notifier.Notify(ctx, alert); err != nil {
		s.logger.Error("Alert delivery failed",
			zap.String("identifier", identifier),
			zap.String("channel", string(channel)),
			zap.Error(err))
	}
}

// ManualCheck runs the normalizer and lookup for a user-entered
// identifier. It bypasses deduplication and throttling, dispatches no
// alert, and writes history only when persist is set.
func (s *MonitorService) ManualCheck(ctx context.Context, raw string, persist bool) ManualCheckResult {
	identifier, err := s.normalizer.Normalize(raw)
	if err != nil {
		return ManualCheckResult{Success: false, Message: "invalid phone number", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.LookupTimeout)
	defer cancel()

	result, err := s.lookup.Check(ctx, identifier)
	if err != nil {
		return ManualCheckResult{Success: false, Message: "lookup failed", Err: err}
	}

	if persist {
		now := time.Now()
		record := &DetectionRecord{
			Key:           recordKey(ChannelManual, now),
			ProcessingID:  uuid.NewString(),
			Identifier:    identifier,
			Channel:       ChannelManual,
			IsMatch:       result.IsMatch,
			Match:         result.Match,
			Timestamp:     now,
			DeviceContext: s.opts.DeviceContext,
		}
		if err := s.history.Append(ctx, record); err != nil {
			s.logger.Warn("Failed to persist manual check", zap.Error(err))
		}
	}

	message := "no reports found for this number"
	if result.IsMatch {
		message = "this number has been reported as a scammer"
	}
	return ManualCheckResult{
		Success:   true,
		IsScammer: result.IsMatch,
		Record:    result.Match,
		Message:   message,
	}
}

// Report submits a user report for an identifier and invalidates its
// cache entry so the next check reflects the new report.
func (s *MonitorService) Report(ctx context.Context, raw string, req ReportRequest) (*ScammerRecord, error) {
	identifier, err := s.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}
	req.Identifier = identifier
	if req.Type == "" {
		req.Type = "phone"
	}

	record, err := s.lookup.Report(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.lookup.Invalidate(ctx, identifier); err != nil {
		s.logger.Warn("Failed to invalidate cache after report",
			zap.String("identifier", identifier),
			zap.Error(err))
	}
	return record, nil
}

// Stats assembles the coordinator's statistics view. It mutates
// nothing: listener state is read under the lock and the detection
// count comes from the history store.
func (s *MonitorService) Stats(ctx context.Context) (*MonitorStats, error) {
	s.mu.Lock()
	stats := &MonitorStats{
		Enabled:             s.enabled,
		State:               s.state,
		UnavailableChannels: make(map[Channel]string, len(s.unavailable)),
		EventsSeen:          make(map[Channel]int64, len(s.eventsSeen)),
	}
	for ch := range s.active {
		stats.ActiveChannels = append(stats.ActiveChannels, ch)
	}
	for ch, reason := range s.unavailable {
		stats.UnavailableChannels[ch] = reason
	}
	for ch, n := range s.eventsSeen {
		stats.EventsSeen[ch] = n
	}
	s.mu.Unlock()

	sort.Slice(stats.ActiveChannels, func(i, j int) bool {
		return stats.ActiveChannels[i] < stats.ActiveChannels[j]
	})

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	count, err := s.history.CountSince(ctx, midnight, true)
	if err != nil {
		return nil, fmt.Errorf("failed to count detections: %w", err)
	}
	stats.DetectionsToday = count

	return stats, nil
}

// eligiblePhase reports whether a phase triggers a lookup.
func eligiblePhase(channel Channel, phase Phase) bool {
	switch channel {
	case ChannelCall:
		return phase == PhaseRinging
	case ChannelSMS:
		return phase == PhaseReceived
	default:
		return false
	}
}

func alertMessage(identifier string, channel Channel) string {
	source := "incoming call"
	if channel == ChannelSMS {
		source = "SMS message"
	}
	return fmt.Sprintf("Warning: %s from %s, a number reported for scam activity", source, identifier)
}

func recordKey(channel Channel, ts time.Time) string {
	return fmt.Sprintf("%s_%d", channel, ts.UnixNano())
}
