package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/scamshield/contact-monitor/internal/adapters/history"
	"github.com/scamshield/contact-monitor/internal/adapters/settings"
	"github.com/scamshield/contact-monitor/internal/config"
	"github.com/scamshield/contact-monitor/internal/core"
	"go.uber.org/zap"
)

// StorageFactory creates the history and settings stores based on configuration
type StorageFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config, logger *zap.Logger) *StorageFactory {
	return &StorageFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateHistoryStore creates the detection log based on the configuration
func (f *StorageFactory) CreateHistoryStore() (core.HistoryStore, error) {
	historyType := f.cfg.GetString("history.type")
	pageSize := f.cfg.GetInt("history.page_size")

	switch historyType {
	case "memory":
		return history.NewMemoryStore(pageSize), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("history.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return history.NewSQLiteStore(sqlitePath, pageSize, f.logger)
	default:
		return nil, fmt.Errorf("unsupported history store type: %s", historyType)
	}
}

// CreateSettingsStore creates the durable settings store
func (f *StorageFactory) CreateSettingsStore() (core.SettingsStore, error) {
	sqlitePath := f.cfg.GetString("settings.sqlite_path")
	if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
	}
	return settings.NewSQLiteStore(sqlitePath)
}

// GetRetention returns the configured history retention window
func (f *StorageFactory) GetRetention() (time.Duration, error) {
	return f.cfg.GetDuration("history.retention")
}
