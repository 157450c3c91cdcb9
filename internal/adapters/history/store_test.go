package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scamshield/contact-monitor/internal/core"
)

func record(channel core.Channel, isMatch bool, ts time.Time) *core.DetectionRecord {
	r := &core.DetectionRecord{
		Key:           fmt.Sprintf("%s_%d", channel, ts.UnixNano()),
		ProcessingID:  fmt.Sprintf("proc-%d", ts.UnixNano()),
		Identifier:    "+250788123456",
		Channel:       channel,
		IsMatch:       isMatch,
		Timestamp:     ts,
		DeviceContext: "test-device",
	}
	if isMatch {
		r.Match = &core.ScammerRecord{ID: "rec-1", Identifier: r.Identifier, Status: "confirmed"}
	}
	return r
}

// The suite runs against both backends; the sqlite store is the
// production one, the memory store backs tests elsewhere.
func runStoreSuite(t *testing.T, open func(t *testing.T) core.HistoryStore) {
	ctx := context.Background()

	t.Run("ListNewestFirst", func(t *testing.T) {
		store := open(t)
		base := time.Now().Add(-time.Hour)
		for i := 0; i < 5; i++ {
			require.NoError(t, store.Append(ctx, record(core.ChannelCall, false, base.Add(time.Duration(i)*time.Minute))))
		}

		records, err := store.List(ctx, core.HistoryFilter{})
		require.NoError(t, err)
		require.Len(t, records, 5)
		for i := 1; i < len(records); i++ {
			assert.True(t, !records[i-1].Timestamp.Before(records[i].Timestamp), "records must be newest-first")
		}
	})

	t.Run("ListFilterAndPaging", func(t *testing.T) {
		store := open(t)
		base := time.Now().Add(-time.Hour)
		for i := 0; i < 4; i++ {
			require.NoError(t, store.Append(ctx, record(core.ChannelCall, i%2 == 0, base.Add(time.Duration(i)*time.Minute))))
		}
		require.NoError(t, store.Append(ctx, record(core.ChannelSMS, true, base.Add(10*time.Minute))))

		matches, err := store.List(ctx, core.HistoryFilter{OnlyMatches: true})
		require.NoError(t, err)
		assert.Len(t, matches, 3)

		sms, err := store.List(ctx, core.HistoryFilter{Channel: core.ChannelSMS})
		require.NoError(t, err)
		require.Len(t, sms, 1)
		assert.Equal(t, core.ChannelSMS, sms[0].Channel)

		page, err := store.List(ctx, core.HistoryFilter{Limit: 2, Offset: 1})
		require.NoError(t, err)
		assert.Len(t, page, 2)
	})

	t.Run("CountSince", func(t *testing.T) {
		store := open(t)
		now := time.Now()
		require.NoError(t, store.Append(ctx, record(core.ChannelCall, true, now.Add(-48*time.Hour))))
		require.NoError(t, store.Append(ctx, record(core.ChannelCall, true, now.Add(-time.Minute))))
		require.NoError(t, store.Append(ctx, record(core.ChannelCall, false, now.Add(-time.Second))))

		count, err := store.CountSince(ctx, now.Add(-time.Hour), true)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		count, err = store.CountSince(ctx, now.Add(-time.Hour), false)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("PruneRetention", func(t *testing.T) {
		store := open(t)
		now := time.Now()
		retention := 30 * 24 * time.Hour
		old := record(core.ChannelCall, true, now.Add(-retention-time.Hour))
		recent := record(core.ChannelSMS, false, now.Add(-time.Hour))
		require.NoError(t, store.Append(ctx, old))
		require.NoError(t, store.Append(ctx, recent))

		cutoff := now.Add(-retention)
		pruned, err := store.PruneOlderThan(ctx, cutoff)
		require.NoError(t, err)
		assert.Equal(t, int64(1), pruned)

		records, err := store.List(ctx, core.HistoryFilter{})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.False(t, records[0].Timestamp.Before(cutoff), "no surviving record may predate the cutoff")

		// Idempotent: a second sweep with the same cutoff removes nothing.
		pruned, err = store.PruneOlderThan(ctx, cutoff)
		require.NoError(t, err)
		assert.Equal(t, int64(0), pruned)
	})

	t.Run("ClearAll", func(t *testing.T) {
		store := open(t)
		require.NoError(t, store.Append(ctx, record(core.ChannelCall, true, time.Now())))
		require.NoError(t, store.ClearAll(ctx))

		records, err := store.List(ctx, core.HistoryFilter{})
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("MatchDetailSurvivesRoundTrip", func(t *testing.T) {
		store := open(t)
		require.NoError(t, store.Append(ctx, record(core.ChannelCall, true, time.Now())))

		records, err := store.List(ctx, core.HistoryFilter{})
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.NotNil(t, records[0].Match)
		assert.Equal(t, "confirmed", records[0].Match.Status)
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) core.HistoryStore {
		store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "detections.db"), 50, zap.NewNop())
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) core.HistoryStore {
		return NewMemoryStore(50)
	})
}
