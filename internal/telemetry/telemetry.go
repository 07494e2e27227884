package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry owns the tracer and meter providers of the process
type Telemetry struct {
	config         *Config
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	metricsHandler http.Handler
}

// Option is a function that configures the telemetry setup
type Option func(*Telemetry)

// WithTelemetryConfig sets the telemetry configuration
func WithTelemetryConfig(cfg *Config) Option {
	return func(t *Telemetry) {
		t.config = cfg
	}
}

// New creates the providers described by the configuration.
// Disabled or missing configuration yields no-op providers.
// The caller is responsible for calling Shutdown when the application exits.
func New(ctx context.Context, opts ...Option) (*Telemetry, error) {
	t := &Telemetry{}
	for _, opt := range opts {
		opt(t)
	}

	if err := t.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry configuration: %w", err)
	}

	if t.config != nil && t.config.Enabled {
		slog.Info("Initializing telemetry",
			"service_name", t.config.GetServiceName(),
			"service_version", t.config.GetServiceVersion(),
		)
	}

	tp, err := NewTracerProvider(ctx, t.config)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}

	mp, metricsHandler, err := NewMeterProvider(ctx, t.config)
	if err != nil {
		if sdkTP, ok := tp.(*sdktrace.TracerProvider); ok {
			_ = sdkTP.Shutdown(ctx)
		}
		return nil, fmt.Errorf("failed to create meter provider: %w", err)
	}

	t.tracerProvider = tp
	t.meterProvider = mp
	t.metricsHandler = metricsHandler
	return t, nil
}

// TracerProvider returns the configured tracer provider
func (t *Telemetry) TracerProvider() trace.TracerProvider {
	return t.tracerProvider
}

// MeterProvider returns the configured meter provider
func (t *Telemetry) MeterProvider() metric.MeterProvider {
	return t.meterProvider
}

// Tracer returns a named tracer, or nil when tracing is disabled
func (t *Telemetry) Tracer(name string) trace.Tracer {
	if !t.config.TracingEnabled() {
		return nil
	}
	return t.tracerProvider.Tracer(name)
}

// FetchMetrics returns the remote fetch instruments, or nil when metrics are disabled
func (t *Telemetry) FetchMetrics() (*FetchMetrics, error) {
	if !t.config.MetricsEnabled() {
		return nil, nil
	}
	return NewFetchMetrics(t.meterProvider)
}

// SyncMetrics returns the sweep instruments, or nil when metrics are disabled
func (t *Telemetry) SyncMetrics() (*SyncMetrics, error) {
	if !t.config.MetricsEnabled() {
		return nil, nil
	}
	return NewSyncMetrics(t.meterProvider)
}

// HTTPMetrics returns the status API instruments, or nil when metrics are disabled
func (t *Telemetry) HTTPMetrics() (*HTTPMetrics, error) {
	if !t.config.MetricsEnabled() {
		return nil, nil
	}
	return NewHTTPMetrics(t.meterProvider)
}

// MetricsHandler returns the Prometheus scrape handler, or nil unless metrics.prometheus is set
func (t *Telemetry) MetricsHandler() http.Handler {
	return t.metricsHandler
}

// HTTPTracerProvider returns the provider for HTTP server spans, or nil when tracing is disabled
func (t *Telemetry) HTTPTracerProvider() trace.TracerProvider {
	if !t.config.TracingEnabled() {
		return nil
	}
	return t.tracerProvider
}

// Shutdown flushes and stops the SDK providers. It is safe to call more than once.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if tp, ok := t.tracerProvider.(*sdktrace.TracerProvider); ok {
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
	}
	if mp, ok := t.meterProvider.(*sdkmetric.MeterProvider); ok {
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	slog.Debug("Telemetry shutdown complete")
	return nil
}
