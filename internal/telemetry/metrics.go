package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// FetchMetricsMeterName is the name used for the remote fetch metrics meter
	FetchMetricsMeterName = "github.com/labcatalog/catalog-sync/fetch"

	// SyncMetricsMeterName is the name used for the sync metrics meter
	SyncMetricsMeterName = "github.com/labcatalog/catalog-sync/sync"
)

// FetchMetrics holds the OpenTelemetry instruments for remote catalog requests
type FetchMetrics struct {
	fetchesTotal  metric.Int64Counter
	fetchDuration metric.Float64Histogram
}

// NewFetchMetrics creates a new FetchMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewFetchMetrics(provider metric.MeterProvider) (*FetchMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(FetchMetricsMeterName)

	fetchesTotal, err := meter.Int64Counter(
		"catalog_sync_fetches_total",
		metric.WithDescription("Total number of governed remote fetches by service and outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	fetchDuration, err := meter.Float64Histogram(
		"catalog_sync_fetch_duration_seconds",
		metric.WithDescription("Duration of remote fetches in seconds, excluding pacing waits"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	return &FetchMetrics{
		fetchesTotal:  fetchesTotal,
		fetchDuration: fetchDuration,
	}, nil
}

// RecordFetch records one remote fetch attempt
func (m *FetchMetrics) RecordFetch(ctx context.Context, service, outcome string, duration time.Duration) {
	if m == nil || m.fetchesTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("outcome", outcome),
	)

	m.fetchesTotal.Add(ctx, 1, attrs)
	m.fetchDuration.Record(ctx, duration.Seconds(), attrs)
}

// SyncMetrics holds the OpenTelemetry instruments for sweep metrics
type SyncMetrics struct {
	runDuration   metric.Float64Histogram
	entitiesTotal metric.Int64Counter
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	runDuration, err := meter.Float64Histogram(
		"catalog_sync_run_duration_seconds",
		metric.WithDescription("Duration of sync sweeps in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 10, 30, 60, 300, 600, 1800, 3600, 7200),
	)
	if err != nil {
		return nil, err
	}

	entitiesTotal, err := meter.Int64Counter(
		"catalog_sync_entities_total",
		metric.WithDescription("Entities handled by sync sweeps, by kind and result"),
		metric.WithUnit("{entity}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		runDuration:   runDuration,
		entitiesTotal: entitiesTotal,
	}, nil
}

// RecordRunDuration records the duration of a sweep
func (m *SyncMetrics) RecordRunDuration(ctx context.Context, duration time.Duration, cancelled bool) {
	if m == nil || m.runDuration == nil {
		return
	}

	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.Bool("cancelled", cancelled),
	))
}

// RecordEntities adds count to the entity counter for the given kind and result
func (m *SyncMetrics) RecordEntities(ctx context.Context, kind, result string, count int64) {
	if m == nil || m.entitiesTotal == nil || count == 0 {
		return
	}

	m.entitiesTotal.Add(ctx, count, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("result", result),
	))
}
