package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/labcatalog/catalog-sync/internal/config"
	"github.com/labcatalog/catalog-sync/internal/telemetry"
	"github.com/labcatalog/catalog-sync/internal/versions"
)

const telemetryShutdownTimeout = 10 * time.Second

// setupTelemetry creates the providers described by cfg and returns a function flushing them
func setupTelemetry(ctx context.Context, cfg *config.Config) (*telemetry.Telemetry, func(), error) {
	telCfg := cfg.Telemetry
	if telCfg != nil && telCfg.ServiceVersion == "" {
		withVersion := *telCfg
		withVersion.ServiceVersion = versions.GetVersionInfo().Version
		telCfg = &withVersion
	}

	tel, err := telemetry.New(ctx, telemetry.WithTelemetryConfig(telCfg))
	if err != nil {
		return nil, nil, err
	}

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryShutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Failed to flush telemetry", "error", err)
		}
	}
	return tel, shutdown, nil
}
