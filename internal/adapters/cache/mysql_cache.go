package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	json "github.com/goccy/go-json"
	"github.com/scamshield/contact-monitor/internal/core"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of core.CacheRepository, used
// when several household devices share one durable cache.
type MySQLCache struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLCache creates a new MySQL-backed cache
func NewMySQLCache(dsn string, logger *zap.Logger) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS lookup_cache (
			identifier VARCHAR(32) PRIMARY KEY,
			is_match BOOLEAN NOT NULL,
			match_json TEXT,
			resolved_at BIGINT NOT NULL,
			expires_at BIGINT NOT NULL,
			INDEX idx_lookup_cache_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLCache{db: db, logger: logger}, nil
}

// Get retrieves a live cached entry for an identifier
func (c *MySQLCache) Get(ctx context.Context, identifier string) (*core.CacheEntry, error) {
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
func (c *MySQLCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	var matchJSON sql.NullString
	if entry.Match != nil {
		encoded, err := json.Marshal(entry.Match)
		if err != nil {
			return fmt.Errorf("failed to encode scammer record: %w", err)
		}
		matchJSON = sql.NullString{String: string(encoded), Valid: true}
	}

	_, err := c.db.ExecContext(ctx, `
		REPLACE INTO lookup_cache (identifier, is_match, match_json, resolved_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.Identifier, entry.IsMatch, matchJSON, entry.ResolvedAt.UnixNano(), entry.ExpiresAt.UnixNano())

	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *MySQLCache) Delete(ctx context.Context, identifier string) error {
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
func (c *MySQLCache) Cleanup(ctx context.Context) error {
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
func (c *MySQLCache) Close() error {
	return c.db.Close()
}
