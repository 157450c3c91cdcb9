package core

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// EventDeduplicator admits each distinct physical event exactly once.
// The admission key buckets the event timestamp so platform layers that
// re-fire the same call phase within a couple of seconds collapse into
// one admission. Tracking is LRU-bounded so long monitoring sessions
// cannot grow memory without bound.
type EventDeduplicator struct {
	mu         sync.Mutex
	bucket     time.Duration
	maxEntries int
	seen       map[string]*list.Element
	order      *list.List // front = most recently seen
	now        func() time.Time
}

// NewEventDeduplicator creates a deduplicator with the given time
// bucket and entry bound.
func NewEventDeduplicator(bucket time.Duration, maxEntries int) *EventDeduplicator {
	return &EventDeduplicator{
		bucket:     bucket,
		maxEntries: maxEntries,
		seen:       make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
	}
}

// Admit reports whether this event should be processed. It returns
// true exactly once per (identifier, channel, phase, time bucket).
func (d *EventDeduplicator) Admit(identifier string, channel Channel, phase Phase) bool {
	bucket := d.now().UnixNano() / d.bucket.Nanoseconds()
	key := fmt.Sprintf("%s|%s|%s|%d", identifier, channel, phase, bucket)

	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.MoveToFront(el)
		return false
	}

	d.seen[key] = d.order.PushFront(key)
	for d.order.Len() > d.maxEntries {
		oldest := d.order.Back()
		d.order.Remove(oldest)
		delete(d.seen, oldest.Value.(string))
	}
	return true
}

// Len returns the number of tracked admission keys.
func (d *EventDeduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.order.Len()
}

type throttleEntry struct {
	key           string
	lastAlertedAt time.Time
}

// AlertThrottle suppresses repeated alerts for the same
// (identifier, channel) pair inside a cool-down window. All state is
// guarded by one mutex, so the check-and-record in Reserve is linear
// even when a call and an SMS from the same number race each other.
// Like the deduplicator it is LRU-bounded.
type AlertThrottle struct {
	mu         sync.Mutex
	coolDown   time.Duration
	maxEntries int
	entries    map[string]*list.Element
	order      *list.List
	now        func() time.Time
}

// NewAlertThrottle creates a throttle with the given cool-down window
// and entry bound.
func NewAlertThrottle(coolDown time.Duration, maxEntries int) *AlertThrottle {
	return &AlertThrottle{
		coolDown:   coolDown,
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
	}
}

// Reserve atomically checks the cool-down and records the alert time
// when it passes. Returns true if the caller should dispatch an alert.
func (t *AlertThrottle) Reserve(identifier string, channel Channel) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.allowedLocked(identifier, channel) {
		return false
	}
	t.recordLocked(identifier, channel)
	return true
}

// ShouldAlert reports whether an alert for the pair is outside the
// cool-down window. Callers using the two-step form must call
// RecordAlert after dispatching; prefer Reserve when concurrent events
// for the same identifier are possible.
func (t *AlertThrottle) ShouldAlert(identifier string, channel Channel) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allowedLocked(identifier, channel)
}

// RecordAlert stores the dispatch time for the pair.
func (t *AlertThrottle) RecordAlert(identifier string, channel Channel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recordLocked(identifier, channel)
}

func (t *AlertThrottle) allowedLocked(identifier string, channel Channel) bool {
	el, ok := t.entries[throttleKey(identifier, channel)]
	if !ok {
		return true
	}
	return t.now().Sub(el.Value.(*throttleEntry).lastAlertedAt) >= t.coolDown
}

func (t *AlertThrottle) recordLocked(identifier string, channel Channel) {
	key := throttleKey(identifier, channel)
	if el, ok := t.entries[key]; ok {
		el.Value.(*throttleEntry).lastAlertedAt = t.now()
		t.order.MoveToFront(el)
		return
	}

	t.entries[key] = t.order.PushFront(&throttleEntry{key: key, lastAlertedAt: t.now()})
	for t.order.Len() > t.maxEntries {
		oldest := t.order.Back()
		t.order.Remove(oldest)
		delete(t.entries, oldest.Value.(*throttleEntry).key)
	}
}

func throttleKey(identifier string, channel Channel) string {
	return string(channel) + "|" + identifier
}
