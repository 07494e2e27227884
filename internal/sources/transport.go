package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/labcatalog/catalog-sync/internal/catalog"
	"github.com/labcatalog/catalog-sync/internal/httpclient"
	"github.com/labcatalog/catalog-sync/internal/telemetry"
)

// TransportOption configures a Transport
type TransportOption func(*Transport)

// WithFetchMetrics records every fetch attempt on the given metrics
func WithFetchMetrics(m *telemetry.FetchMetrics) TransportOption {
	return func(t *Transport) {
		t.metrics = m
	}
}

// WithThrottler paces fetches that carry no throttler in their context
func WithThrottler(th Throttler) TransportOption {
	return func(t *Transport) {
		t.throttler = th
	}
}

type throttlerKey struct{}

// ContextWithThrottler returns a context whose fetches are paced by th. It takes
// precedence over the transport's own throttler, so that a sweep can bring a
// governor that lives exactly as long as the sweep.
func ContextWithThrottler(ctx context.Context, th Throttler) context.Context {
	return context.WithValue(ctx, throttlerKey{}, th)
}

func throttlerFrom(ctx context.Context) Throttler {
	th, _ := ctx.Value(throttlerKey{}).(Throttler)
	return th
}

// Transport sends governed requests to the remote services
type Transport struct {
	client    httpclient.Client
	throttler Throttler
	baseURLs  map[catalog.Service]string
	creds     Credentials
	metrics   *telemetry.FetchMetrics
}

// NewTransport creates a transport for the given service base URLs. Requests are
// only paced when a throttler is set on the transport or carried by the context.
func NewTransport(
	client httpclient.Client,
	baseURLs map[catalog.Service]string,
	creds Credentials,
	opts ...TransportOption,
) *Transport {
	t := &Transport{
		client:   client,
		baseURLs: make(map[catalog.Service]string, len(baseURLs)),
		creds:    creds,
	}
	for svc, base := range baseURLs {
		t.baseURLs[svc] = strings.TrimSuffix(base, "/")
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// FetchEntity waits for the service's pacing slot, then fetches path and classifies the response.
// A cancelled context yields OutcomeTransient with Err set to ctx.Err() and no request is sent.
func (t *Transport) FetchEntity(ctx context.Context, svc catalog.Service, path string) Result {
	base, ok := t.baseURLs[svc]
	if !ok {
		return Result{Outcome: OutcomeTransient, Err: fmt.Errorf("unknown service %q", svc)}
	}

	throttler := throttlerFrom(ctx)
	if throttler == nil {
		throttler = t.throttler
	}
	if throttler != nil {
		if err := throttler.Throttle(ctx, svc); err != nil {
			return Result{Outcome: OutcomeTransient, Err: err}
		}
	}

	url := base + path
	start := time.Now()
	body, err := t.client.Get(ctx, url, t.headers(svc))
	duration := time.Since(start)

	result := classify(body, err)
	t.metrics.RecordFetch(ctx, string(svc), string(result.Outcome), duration)
	logFetch(ctx, svc, path, result, duration)

	return result
}

func (t *Transport) headers(svc catalog.Service) http.Header {
	header := http.Header{}
	switch svc {
	case catalog.ServiceAcademy:
		if t.creds.AcademySession != "" {
			header.Set("Cookie", t.creds.AcademySession)
		}
	case catalog.ServiceLabs:
		if t.creds.LabsToken != "" {
			header.Set("Authorization", "Bearer "+t.creds.LabsToken)
		}
	}
	return header
}

func classify(body []byte, err error) Result {
	if err == nil {
		if !gjson.ValidBytes(body) {
			return Result{
				Outcome:    OutcomeMalformed,
				Payload:    body,
				StatusCode: http.StatusOK,
				Err:        errors.New("response body is not valid JSON"),
			}
		}
		return Result{Outcome: OutcomeOK, Payload: body, StatusCode: http.StatusOK}
	}

	status := httpclient.StatusCode(err)
	switch status {
	case http.StatusNotFound, http.StatusGone:
		return Result{Outcome: OutcomeNotFound, StatusCode: status, Err: err}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Outcome: OutcomeForbidden, StatusCode: status, Err: err}
	}
	return Result{Outcome: OutcomeTransient, StatusCode: status, Err: err}
}

func logFetch(ctx context.Context, svc catalog.Service, path string, r Result, d time.Duration) {
	level := slog.LevelDebug
	if r.Outcome != OutcomeOK && r.Outcome != OutcomeNotFound {
		level = slog.LevelWarn
	}

	attrs := []any{
		"service", svc,
		"path", path,
		"outcome", r.Outcome,
		"status", r.StatusCode,
		"duration", d,
	}
	if r.Err != nil && level == slog.LevelWarn {
		attrs = append(attrs, "error", r.Err)
	}
	slog.Log(ctx, level, "Remote fetch", attrs...)
}
