// Package app wires the catalog sync engine together: storage, remote transport,
// sweep manager, coordinator and the status API.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labcatalog/catalog-sync/internal/config"
	"github.com/labcatalog/catalog-sync/internal/status"
	pkgsync "github.com/labcatalog/catalog-sync/internal/sync"
)

// persistTimeout bounds saving the snapshot of a one-shot sweep
const persistTimeout = 30 * time.Second

// SyncApp encapsulates all components needed to run sweeps, once or as a service
type SyncApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// cleanup releases storage resources
	cleanup func()
}

// Start runs the sweep coordinator in the background and serves the status API.
// It blocks until the HTTP server stops or fails.
func (app *SyncApp) Start(ctx context.Context) error {
	go func() {
		if err := app.components.Coordinator.Start(ctx); err != nil {
			slog.Error("Sweep coordinator failed", "error", err)
		}
	}()

	slog.Info("Status API listening", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// RunOnce performs a single sweep and persists its snapshot, including the
// partial snapshot of a cancelled sweep
func (app *SyncApp) RunOnce(ctx context.Context) (*status.Snapshot, error) {
	snap, err := app.components.Manager.PerformSync(ctx, pkgsync.Options{
		Resume: app.config.Sync.ResumeFromCheckpoint,
	})
	if snap != nil && app.components.Runs != nil {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()
		if saveErr := app.components.Runs.SaveRun(saveCtx, snap); saveErr != nil {
			return snap, errors.Join(err, fmt.Errorf("failed to persist run snapshot: %w", saveErr))
		}
	}
	return snap, err
}

// Stop stops the coordinator, then shuts the HTTP server down within timeout
// and releases storage resources
func (app *SyncApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down...")

	if err := app.components.Coordinator.Stop(); err != nil {
		slog.Error("Failed to stop sweep coordinator", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	err := app.httpServer.Shutdown(shutdownCtx)

	app.Close()

	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("Shutdown complete")
	return nil
}

// Close releases storage resources without touching the coordinator or the HTTP server
func (app *SyncApp) Close() {
	if app.cleanup != nil {
		app.cleanup()
		app.cleanup = nil
	}
}

// GetConfig returns the application configuration
func (app *SyncApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server
func (app *SyncApp) GetHTTPServer() *http.Server {
	return app.httpServer
}
