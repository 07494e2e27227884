// Package otel holds the span helpers and attribute keys shared by the sweep
// manager and the storage layer.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for catalog entities and sweeps
const (
	AttrEntityID   = attribute.Key("catalog.entity.id")
	AttrLinkKind   = attribute.Key("catalog.link.kind")
	AttrLabelKind  = attribute.Key("catalog.label.kind")
	AttrChildCount = attribute.Key("catalog.child.count")

	AttrRunID           = attribute.Key("run.id")
	AttrStartModuleID   = attribute.Key("sync.start_module_id")
	AttrConcurrentLanes = attribute.Key("sync.concurrent_lanes")
)

// StartSpan starts a span when tracer is set, otherwise it returns the span already in ctx
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on span and marks it failed.
// The status description stays generic so SQL and connection strings never land in it;
// the error itself is kept on the exception event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
