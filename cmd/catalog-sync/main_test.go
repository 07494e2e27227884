package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestZapLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		want      zapcore.Level
		wantKnown bool
	}{
		{name: "debug", input: "debug", want: zapcore.Level(-4), wantKnown: true},
		{name: "upper case", input: "DEBUG", want: zapcore.Level(-4), wantKnown: true},
		{name: "empty defaults to info", input: "", want: zapcore.InfoLevel, wantKnown: true},
		{name: "warn collapses to info", input: "warning", want: zapcore.InfoLevel, wantKnown: true},
		{name: "error", input: "error", want: zapcore.ErrorLevel, wantKnown: true},
		{name: "unknown", input: "verbose", want: zapcore.InfoLevel, wantKnown: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, known := zapLevel(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantKnown, known)
		})
	}
}

func TestNewLogHandler_Levels(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	debugHandler, err := newLogHandler(zapcore.Level(-4))
	require.NoError(t, err)
	assert.True(t, debugHandler.Enabled(ctx, slog.LevelDebug))

	infoHandler, err := newLogHandler(zapcore.InfoLevel)
	require.NoError(t, err)
	assert.False(t, infoHandler.Enabled(ctx, slog.LevelDebug))
	assert.True(t, infoHandler.Enabled(ctx, slog.LevelInfo))
}

func TestGetLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("CATALOG_SYNC_LOG_LEVEL", "")
	assert.Equal(t, "error", getLogLevel())

	t.Setenv("CATALOG_SYNC_LOG_LEVEL", "debug")
	assert.Equal(t, "debug", getLogLevel())
}
