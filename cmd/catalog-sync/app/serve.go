package app

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	syncapp "github.com/labcatalog/catalog-sync/internal/app"
)

// defaultGracefulTimeout bounds HTTP shutdown after the coordinator stopped
const defaultGracefulTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run sweeps on a schedule and serve the status API",
		Long: `Run a sweep on startup and then every sync.interval, and serve the status API:

  GET  /health, /readiness, /version
  GET  /v1/runs/latest, /v1/runs?limit=N
  POST /v1/sync   trigger a sweep now`,
		RunE: runServe,
	}
	cmd.Flags().String("address", ":8080", "Address the status API listens on")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	address, err := cmd.Flags().GetString("address")
	if err != nil {
		return fmt.Errorf("failed to get address flag: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	tel, shutdownTelemetry, err := setupTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer shutdownTelemetry()

	syncApp, err := syncapp.NewSyncApp(ctx,
		syncapp.WithConfig(cfg),
		syncapp.WithAddress(address),
		syncapp.WithTelemetry(tel),
	)
	if err != nil {
		return fmt.Errorf("failed to create sync application: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- syncApp.Start(ctx)
	}()

	select {
	case err := <-errCh:
		syncApp.Close()
		return err
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	}

	if err := syncApp.Stop(defaultGracefulTimeout); err != nil {
		return err
	}
	return <-errCh
}

