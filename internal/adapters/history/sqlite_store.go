package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"github.com/scamshield/contact-monitor/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore is the durable core.HistoryStore. Append commits before
// returning so a crash never loses a logged detection. Record keys
// embed the timestamp, and ts is the primary ordering column, so the
// retention prune is a single range delete.
type SQLiteStore struct {
	db              *sql.DB
	logger          *zap.Logger
	defaultPageSize int
}

// NewSQLiteStore opens (and if needed creates) the detection log.
func NewSQLiteStore(dbPath string, defaultPageSize int, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS detections (
			key TEXT PRIMARY KEY,
			processing_id TEXT NOT NULL,
			identifier TEXT NOT NULL,
			channel TEXT NOT NULL,
			is_match BOOLEAN NOT NULL,
			match_json TEXT,
			ts INTEGER NOT NULL,
			device_context TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Index on ts for newest-first listing and range pruning
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_detections_ts ON detections(ts)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger, defaultPageSize: defaultPageSize}, nil
}

// Append durably stores one detection record
func (s *SQLiteStore) Append(ctx context.Context, record *core.DetectionRecord) error {
	var matchJSON sql.NullString
	if record.Match != nil {
		encoded, err := json.Marshal(record.Match)
		if err != nil {
			return fmt.Errorf("failed to encode scammer record: %w", err)
		}
		matchJSON = sql.NullString{String: string(encoded), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO detections (key, processing_id, identifier, channel, is_match, match_json, ts, device_context)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, record.Key, record.ProcessingID, record.Identifier, string(record.Channel),
		record.IsMatch, matchJSON, record.Timestamp.UnixNano(), record.DeviceContext)

	if err != nil {
		return fmt.Errorf("failed to append detection record: %w", err)
	}
	return nil
}

// List returns records newest-first according to the filter
func (s *SQLiteStore) List(ctx context.Context, filter core.HistoryFilter) ([]*core.DetectionRecord, error) {
	query := `
		SELECT key, processing_id, identifier, channel, is_match, match_json, ts, device_context
		FROM detections
	`
	var (
		where []string
		args  []interface{}
	)
	if filter.Channel != "" {
		where = append(where, "channel = ?")
		args = append(args, string(filter.Channel))
	}
	if filter.OnlyMatches {
		where = append(where, "is_match = 1")
	}
	for i, clause := range where {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	query += " ORDER BY ts DESC LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list detection records: %w", err)
	}
	defer rows.Close()

	var records []*core.DetectionRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate detection records: %w", err)
	}
	return records, nil
}

// CountSince counts records at or after the cutoff
func (s *SQLiteStore) CountSince(ctx context.Context, since time.Time, onlyMatches bool) (int64, error) {
	query := "SELECT COUNT(*) FROM detections WHERE ts >= ?"
	if onlyMatches {
		query += " AND is_match = 1"
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, query, since.UnixNano()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count detection records: %w", err)
	}
	return count, nil
}

// PruneOlderThan deletes records strictly older than the cutoff
func (s *SQLiteStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM detections
		WHERE ts < ?
	`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune detection records: %w", err)
	}

	pruned, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during prune", zap.Error(err))
		return 0, nil
	}
	return pruned, nil
}

// ClearAll removes every detection record
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM detections"); err != nil {
		return fmt.Errorf("failed to clear detection records: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanRecord(rows *sql.Rows) (*core.DetectionRecord, error) {
	var (
		record    core.DetectionRecord
		channel   string
		matchJSON sql.NullString
		ts        int64
	)
	err := rows.Scan(&record.Key, &record.ProcessingID, &record.Identifier, &channel,
		&record.IsMatch, &matchJSON, &ts, &record.DeviceContext)
	if err != nil {
		return nil, fmt.Errorf("failed to scan detection record: %w", err)
	}

	record.Channel = core.Channel(channel)
	record.Timestamp = time.Unix(0, ts)
	if matchJSON.Valid && matchJSON.String != "" {
		var match core.ScammerRecord
		if err := json.Unmarshal([]byte(matchJSON.String), &match); err != nil {
			return nil, fmt.Errorf("failed to decode stored scammer record: %w", err)
		}
		record.Match = &match
	}
	return &record, nil
}
