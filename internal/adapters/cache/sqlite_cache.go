package cache

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

// SQLiteCache is the durable implementation of core.CacheRepository.
// It is the source of truth across process restarts; the memory tier
// in front of it is repopulated from here on read. Timestamps are
// stored as unix nanoseconds so expiry and cleanup compare numerically.
type SQLiteCache struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteCache creates a new SQLite-backed cache
func NewSQLiteCache(dbPath string, logger *zap.Logger) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS lookup_cache (
			identifier TEXT PRIMARY KEY,
			is_match BOOLEAN NOT NULL,
			match_json TEXT,
			resolved_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Index on expires_at for faster cleanup
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_lookup_cache_expires_at ON lookup_cache(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &SQLiteCache{db: db, logger: logger}, nil
}

// Get retrieves a live cached entry for an identifier
func (c *SQLiteCache) Get(ctx context.Context, identifier string) (*core.CacheEntry, error) {
	var (
		isMatch               bool
		matchJSON             sql.NullString
		resolvedAt, expiresAt int64
	)

	err := c.db.QueryRowContext(ctx, `
		SELECT is_match, match_json, resolved_at, expires_at
		FROM lookup_cache
		WHERE identifier = ? AND expires_at > ?
	`, identifier, time.Now().UnixNano()).Scan(&isMatch, &matchJSON, &resolvedAt, &expiresAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	entry := &core.CacheEntry{
		Identifier: identifier,
		IsMatch:    isMatch,
		ResolvedAt: time.Unix(0, resolvedAt),
		ExpiresAt:  time.Unix(0, expiresAt),
	}
	if matchJSON.Valid && matchJSON.String != "" {
		var record core.ScammerRecord
		if err := json.Unmarshal([]byte(matchJSON.String), &record); err != nil {
			return nil, fmt.Errorf("failed to decode cached scammer record: %w", err)
		}
		entry.Match = &record
	}

	return entry, nil
}

// Set stores a cache entry
func (c *SQLiteCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	var matchJSON sql.NullString
	if entry.Match != nil {
		encoded, err := json.Marshal(entry.Match)
		if err != nil {
			return fmt.Errorf("failed to encode scammer record: %w", err)
		}
		matchJSON = sql.NullString{String: string(encoded), Valid: true}
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO lookup_cache (identifier, is_match, match_json, resolved_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.Identifier, entry.IsMatch, matchJSON, entry.ResolvedAt.UnixNano(), entry.ExpiresAt.UnixNano())

	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *SQLiteCache) Delete(ctx context.Context, identifier string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM lookup_cache
		WHERE identifier = ?
	`, identifier)

	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM lookup_cache
		WHERE expires_at <= ?
	`, time.Now().UnixNano())

	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

// Close closes the database connection
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
