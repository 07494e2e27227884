package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceHandler(t *testing.T) {
	t.Parallel()

	traceID, err := trace.TraceIDFromHex("0af7651916cd43dd8448eb211c80319c")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("b7ad6b7169203331")
	require.NoError(t, err)
	spanCtx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	tests := []struct {
		name      string
		ctx       context.Context
		wantTrace bool
	}{
		{name: "adds ids inside a span", ctx: spanCtx, wantTrace: true},
		{name: "leaves records without a span untouched", ctx: context.Background()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewTraceHandler(slog.NewJSONHandler(&buf, nil))).With("run_id", "r1")
			logger.InfoContext(tt.ctx, "Sweep finished")

			var record map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
			assert.Equal(t, "r1", record["run_id"])

			if tt.wantTrace {
				assert.Equal(t, traceID.String(), record["trace_id"])
				assert.Equal(t, spanID.String(), record["span_id"])
			} else {
				assert.NotContains(t, record, "trace_id")
			}
		})
	}
}
