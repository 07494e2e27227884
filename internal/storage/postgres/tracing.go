package postgres

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/labcatalog/catalog-sync/internal/otel"
)

// TracerName is the name of the storage tracer
const TracerName = "github.com/labcatalog/catalog-sync/storage/postgres"

// Option configures a Gateway
type Option func(*Gateway)

// WithTracer enables spans around every gateway call
func WithTracer(tracer trace.Tracer) Option {
	return func(g *Gateway) {
		g.tracer = tracer
	}
}

// startSpan starts a client span tagged with db.system
func (g *Gateway) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{semconv.DBSystemPostgreSQL}, attrs...)
	return otel.StartSpan(ctx, g.tracer, name, trace.WithAttributes(attrs...), trace.WithSpanKind(trace.SpanKindClient))
}
