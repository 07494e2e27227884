package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	syncapp "github.com/labcatalog/catalog-sync/internal/app"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one sweep and print its statistics",
		Long: `Run a single sweep over both catalog services and print the run snapshot as JSON.

Interrupting the sweep (SIGINT/SIGTERM) stops it after the entity in flight; the
partial snapshot is still saved and printed, and the command exits non-zero.`,
		RunE: runSync,
	}
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	tel, shutdownTelemetry, err := setupTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer shutdownTelemetry()

	syncApp, err := syncapp.NewSyncApp(ctx, syncapp.WithConfig(cfg), syncapp.WithTelemetry(tel))
	if err != nil {
		return fmt.Errorf("failed to create sync application: %w", err)
	}
	defer syncApp.Close()

	snap, syncErr := syncApp.RunOnce(ctx)
	if snap != nil {
		out, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format run snapshot: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	}

	if errors.Is(syncErr, context.Canceled) {
		slog.Warn("Sweep interrupted before completion")
	}
	return syncErr
}
