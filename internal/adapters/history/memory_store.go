package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/scamshield/contact-monitor/internal/core"
)

// MemoryStore is an in-memory core.HistoryStore used in tests and for
// ephemeral runs where no durable log is wanted.
type MemoryStore struct {
	mu              sync.RWMutex
	records         []*core.DetectionRecord
	defaultPageSize int
}

// NewMemoryStore creates an empty in-memory detection log.
func NewMemoryStore(defaultPageSize int) *MemoryStore {
	return &MemoryStore{defaultPageSize: defaultPageSize}
}

// Append stores one detection record
func (s *MemoryStore) Append(ctx context.Context, record *core.DetectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// List returns records newest-first according to the filter
func (s *MemoryStore) List(ctx context.Context, filter core.HistoryFilter) ([]*core.DetectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*core.DetectionRecord
	for _, record := range s.records {
		if filter.Channel != "" && record.Channel != filter.Channel {
			continue
		}
		if filter.OnlyMatches && !record.IsMatch {
			continue
		}
		matched = append(matched, record)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if filter.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[filter.Offset:]

	limit := filter.Limit
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// CountSince counts records at or after the cutoff
func (s *MemoryStore) CountSince(ctx context.Context, since time.Time, onlyMatches bool) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if record.Timestamp.Before(since) {
			continue
		}
		if onlyMatches && !record.IsMatch {
			continue
		}
		count++
	}
	return count, nil
}

// PruneOlderThan deletes records strictly older than the cutoff
func (s *MemoryStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var pruned int64
	for _, record := range s.records {
		if record.Timestamp.Before(cutoff) {
			pruned++
			continue
		}
		kept = append(kept, record)
	}
	s.records = kept
	return pruned, nil
}

// ClearAll removes every detection record
func (s *MemoryStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}
