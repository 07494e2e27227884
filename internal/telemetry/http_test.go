package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func newTestTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

func statusRouter(mw func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/v1/runs/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return r
}

func TestHTTPMetrics_Middleware(t *testing.T) {
	t.Parallel()

	t.Run("nil metrics pass through", func(t *testing.T) {
		t.Parallel()

		var m *HTTPMetrics
		rr := httptest.NewRecorder()
		statusRouter(m.Middleware).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/runs/abc", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("records route pattern and status", func(t *testing.T) {
		t.Parallel()

		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

		m, err := NewHTTPMetrics(mp)
		require.NoError(t, err)
		router := statusRouter(m.Middleware)

		for _, path := range []string{"/v1/runs/a", "/v1/runs/b"} {
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		}

		found := collect(t, reader, HTTPMetricsMeterName)
		require.Contains(t, found, "catalog_sync_http_requests_total")
		require.Contains(t, found, "catalog_sync_http_request_duration_seconds")

		sum, ok := found["catalog_sync_http_requests_total"].(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, sum.DataPoints, 1, "path parameters must not create new series")

		dp := sum.DataPoints[0]
		assert.Equal(t, int64(2), dp.Value)
		route, _ := dp.Attributes.Value("route")
		assert.Equal(t, "/v1/runs/{id}", route.AsString())
		status, _ := dp.Attributes.Value("status_code")
		assert.Equal(t, "200", status.AsString())
	})
}

func TestNewHTTPMetrics_NilProvider(t *testing.T) {
	t.Parallel()

	m, err := NewHTTPMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestTracingMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("nil provider passes through", func(t *testing.T) {
		t.Parallel()

		rr := httptest.NewRecorder()
		statusRouter(TracingMiddleware(nil)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/runs/x", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("names span after route pattern", func(t *testing.T) {
		t.Parallel()

		exporter, tp := newTestTracerProvider(t)
		statusRouter(TracingMiddleware(tp)).ServeHTTP(httptest.NewRecorder(),
			httptest.NewRequest(http.MethodGet, "/v1/runs/123", nil))

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "GET /v1/runs/{id}", spans[0].Name)
		assert.Equal(t, codes.Unset, spans[0].Status.Code)

		var route string
		for _, attr := range spans[0].Attributes {
			if attr.Key == semconv.HTTPRouteKey {
				route = attr.Value.AsString()
			}
		}
		assert.Equal(t, "/v1/runs/{id}", route)
	})

	t.Run("server errors mark span as error", func(t *testing.T) {
		t.Parallel()

		exporter, tp := newTestTracerProvider(t)
		statusRouter(TracingMiddleware(tp)).ServeHTTP(httptest.NewRecorder(),
			httptest.NewRequest(http.MethodGet, "/boom", nil))

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status.Code)
	})

	t.Run("unrouted request uses constant name", func(t *testing.T) {
		t.Parallel()

		exporter, tp := newTestTracerProvider(t)
		handler := TracingMiddleware(tp)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/anything", nil))

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "GET "+unknownRoute, spans[0].Name)
	})
}

func TestTracingMiddleware_ContinuesIncomingTrace(t *testing.T) {
	// Not parallel: relies on the global propagator
	exporter, tp := newTestTracerProvider(t)

	previous := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(previous) })

	req := httptest.NewRequest(http.MethodGet, "/v1/runs/1", nil)
	req.Header.Set("traceparent", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")
	statusRouter(TracingMiddleware(tp)).ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", spans[0].SpanContext.TraceID().String())
	assert.Equal(t, "b7ad6b7169203331", spans[0].Parent.SpanID().String())
}
