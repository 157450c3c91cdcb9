package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/scamshield/contact-monitor/internal/core"
	"github.com/scamshield/contact-monitor/internal/di"
	"github.com/scamshield/contact-monitor/internal/maintenance"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	monitor *core.MonitorService,
	sweeper *maintenance.Sweeper,
	lookupService core.LookupService,
	cacheRepo core.CacheRepository,
	historyStore core.HistoryStore,
	settingsStore core.SettingsStore,
) error {
	defer logger.Sync()

	ctx := context.Background()

	// Probe the remote service; a dead network is not fatal, the agent
	// keeps monitoring and retries on the next natural event.
	if stats, err := lookupService.RemoteStats(ctx); err != nil {
		logger.Warn("Remote lookup service unreachable at startup", zap.Error(err))
	} else {
		logger.Info("Remote lookup service reachable",
			zap.Int64("total_reports", stats.TotalReports),
			zap.Int64("confirmed_scammers", stats.ConfirmedScammers))
	}

	// Load the persisted enabled flag and start monitoring if set
	if err := monitor.Init(ctx); err != nil {
		logger.Error("Failed to start monitoring", zap.Error(err))
	}

	// Start maintenance schedules
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start maintenance schedules", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop accepting events, then let in-flight lookups finish
	if err := monitor.Stop(); err != nil {
		logger.Error("Failed to stop monitoring", zap.Error(err))
	}
	monitor.Drain()

	sweeper.Stop()

	// Close any resources that need closing
	for _, resource := range []interface{}{cacheRepo, historyStore, settingsStore} {
		if closer, ok := resource.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close resource", zap.Error(err))
			}
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
