package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader, scopeName string) map[string]metricdata.Aggregation {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := map[string]metricdata.Aggregation{}
	for _, scope := range rm.ScopeMetrics {
		if scope.Scope.Name != scopeName {
			continue
		}
		for _, m := range scope.Metrics {
			found[m.Name] = m.Data
		}
	}
	return found
}

func TestNewFetchMetrics(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when provider is nil", func(t *testing.T) {
		t.Parallel()

		metrics, err := NewFetchMetrics(nil)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("creates metrics with SDK provider", func(t *testing.T) {
		t.Parallel()

		mp := sdkmetric.NewMeterProvider()
		defer func() { _ = mp.Shutdown(context.Background()) }()

		metrics, err := NewFetchMetrics(mp)
		require.NoError(t, err)
		require.NotNil(t, metrics)
		assert.NotNil(t, metrics.fetchesTotal)
		assert.NotNil(t, metrics.fetchDuration)
	})
}

func TestFetchMetrics_RecordFetch(t *testing.T) {
	t.Parallel()

	t.Run("no-op when metrics is nil", func(t *testing.T) {
		t.Parallel()

		var metrics *FetchMetrics
		metrics.RecordFetch(context.Background(), "academy", "ok", time.Second)
	})

	t.Run("counts fetches by service and outcome", func(t *testing.T) {
		t.Parallel()

		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()

		metrics, err := NewFetchMetrics(mp)
		require.NoError(t, err)

		metrics.RecordFetch(context.Background(), "academy", "ok", 100*time.Millisecond)
		metrics.RecordFetch(context.Background(), "academy", "ok", 200*time.Millisecond)
		metrics.RecordFetch(context.Background(), "labs", "not_found", 50*time.Millisecond)

		found := collect(t, reader, FetchMetricsMeterName)
		sum, ok := found["catalog_sync_fetches_total"].(metricdata.Sum[int64])
		require.True(t, ok, "expected counter data type")

		var total int64
		for _, dp := range sum.DataPoints {
			total += dp.Value
		}
		assert.Equal(t, int64(3), total)
		assert.Len(t, sum.DataPoints, 2)

		_, ok = found["catalog_sync_fetch_duration_seconds"].(metricdata.Histogram[float64])
		assert.True(t, ok, "expected histogram data type")
	})
}

func TestSyncMetrics(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when provider is nil", func(t *testing.T) {
		t.Parallel()

		metrics, err := NewSyncMetrics(nil)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("no-op when metrics is nil", func(t *testing.T) {
		t.Parallel()

		var metrics *SyncMetrics
		metrics.RecordRunDuration(context.Background(), time.Minute, false)
		metrics.RecordEntities(context.Background(), "module", "processed", 3)
	})

	t.Run("records run duration in seconds", func(t *testing.T) {
		t.Parallel()

		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()

		metrics, err := NewSyncMetrics(mp)
		require.NoError(t, err)

		metrics.RecordRunDuration(context.Background(), 1500*time.Millisecond, false)

		found := collect(t, reader, SyncMetricsMeterName)
		hist, ok := found["catalog_sync_run_duration_seconds"].(metricdata.Histogram[float64])
		require.True(t, ok)
		require.NotEmpty(t, hist.DataPoints)
		assert.InDelta(t, 1.5, hist.DataPoints[0].Sum, 0.001)
	})

	t.Run("records entity counts and ignores zero", func(t *testing.T) {
		t.Parallel()

		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()

		metrics, err := NewSyncMetrics(mp)
		require.NoError(t, err)

		metrics.RecordEntities(context.Background(), "module", "processed", 4)
		metrics.RecordEntities(context.Background(), "module", "skipped", 0)

		found := collect(t, reader, SyncMetricsMeterName)
		sum, ok := found["catalog_sync_entities_total"].(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, sum.DataPoints, 1)
		assert.Equal(t, int64(4), sum.DataPoints[0].Value)
	})
}
