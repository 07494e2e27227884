// Package main is the entry point for the catalog-sync binary.
package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/labcatalog/catalog-sync/cmd/catalog-sync/app"
	"github.com/labcatalog/catalog-sync/internal/config"
	"github.com/labcatalog/catalog-sync/internal/telemetry"
)

// getLogLevel reads CATALOG_SYNC_LOG_LEVEL, falling back to LOG_LEVEL
func getLogLevel() string {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	level := v.GetString("LOG_LEVEL")
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	return level
}

// zapLevel maps a level name to the zap level that admits the matching slog records.
// Records pass through logr, where slog debug becomes V(4) and zapr maps V(n) to zap level -n.
func zapLevel(name string) (zapcore.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return zapcore.Level(slog.LevelDebug), true
	case "info", "warn", "warning", "":
		return zapcore.InfoLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// newLogHandler builds a JSON zap logger on stderr exposed as an slog handler
// that correlates records with the active trace
func newLogHandler(level zapcore.Level) (slog.Handler, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return telemetry.NewTraceHandler(logr.ToSlogHandler(zapr.NewLogger(zl))), nil
}

func main() {
	levelName := getLogLevel()
	level, known := zapLevel(levelName)

	handler, err := newLogHandler(level)
	if err != nil {
		slog.Error("Failed to build logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(handler))
	if !known {
		slog.Warn("Invalid LOG_LEVEL, using INFO", "value", levelName)
	}

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
