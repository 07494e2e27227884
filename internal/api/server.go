// Package api provides the status REST API of a running catalog-sync service:
// liveness and readiness probes, sweep history and manual sweep triggers.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/labcatalog/catalog-sync/internal/api/common"
	"github.com/labcatalog/catalog-sync/internal/status"
	"github.com/labcatalog/catalog-sync/internal/versions"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 200
	readinessTimeout = 2 * time.Second
)

// SweepController is the part of the sweep coordinator the API drives
type SweepController interface {
	Trigger() bool
	Running() bool
	Latest() *status.Snapshot
}

// ReadinessCheck reports whether a dependency of the service is usable
type ReadinessCheck func(ctx context.Context) error

// ServerOption configures the status API server
type ServerOption func(*serverConfig)

type serverConfig struct {
	middlewares []func(http.Handler) http.Handler
	checks      []ReadinessCheck
	metrics     http.Handler
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithReadinessCheck adds a check run by /readiness
func WithReadinessCheck(check ReadinessCheck) ServerOption {
	return func(cfg *serverConfig) {
		cfg.checks = append(cfg.checks, check)
	}
}

// WithMetricsHandler serves handler on GET /metrics
func WithMetricsHandler(handler http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metrics = handler
	}
}

type routes struct {
	sweeps SweepController
	runs   status.RunPersistence
	checks []ReadinessCheck
}

// NewServer creates the HTTP router serving the status API
func NewServer(sweeps SweepController, runs status.RunPersistence, opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	rt := &routes{sweeps: sweeps, runs: runs, checks: cfg.checks}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	r.Get("/health", healthHandler)
	r.Get("/readiness", rt.readiness)
	r.Get("/version", versionHandler)
	if cfg.metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/runs", rt.listRuns)
		r.Get("/runs/latest", rt.latestRun)
		r.Post("/sync", rt.triggerSync)
	})

	return r
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.DebugContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// healthHandler handles liveness probes
//
// @Summary		Health check
// @Tags			system
// @Produce		json
// @Success		200	{object}	HealthResponse
// @Router			/health [get]
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, HealthResponse{Status: "healthy"}, http.StatusOK)
}

// versionHandler returns build information
//
// @Summary		Version information
// @Tags			system
// @Produce		json
// @Success		200	{object}	versions.VersionInfo
// @Router			/version [get]
func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
}

// readiness runs every readiness check
//
// @Summary		Readiness check
// @Tags			system
// @Produce		json
// @Success		200	{object}	ReadinessResponse
// @Failure		503	{object}	ReadinessResponse
// @Router			/readiness [get]
func (rt *routes) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	for _, check := range rt.checks {
		if err := check(ctx); err != nil {
			slog.WarnContext(ctx, "Readiness check failed", "error", err)
			common.WriteJSONResponse(w, ReadinessResponse{Status: "not ready", Error: err.Error()},
				http.StatusServiceUnavailable)
			return
		}
	}
	common.WriteJSONResponse(w, ReadinessResponse{Status: "ready"}, http.StatusOK)
}

// latestRun returns the most recent sweep, falling back to the run store
// before the first sweep of this process finished
//
// @Summary		Latest sweep
// @Tags			runs
// @Produce		json
// @Success		200	{object}	LatestRunResponse
// @Failure		404	{object}	common.ErrorResponse
// @Router			/v1/runs/latest [get]
func (rt *routes) latestRun(w http.ResponseWriter, r *http.Request) {
	latest := rt.sweeps.Latest()
	if latest == nil && rt.runs != nil {
		var err error
		latest, err = rt.runs.LoadLatest(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to load latest run", "error", err)
			common.WriteErrorResponse(w, "failed to load latest run", http.StatusInternalServerError)
			return
		}
	}

	resp := LatestRunResponse{Running: rt.sweeps.Running(), Run: latest}
	if latest == nil {
		if resp.Running {
			common.WriteJSONResponse(w, resp, http.StatusOK)
			return
		}
		common.WriteErrorResponse(w, "no sweep has run yet", http.StatusNotFound)
		return
	}
	resp.Totals = latest.Totals()
	common.WriteJSONResponse(w, resp, http.StatusOK)
}

// listRuns returns persisted sweeps, most recent first
//
// @Summary		Sweep history
// @Tags			runs
// @Produce		json
// @Param			limit	query		int	false	"Maximum number of runs"	default(20)
// @Success		200		{object}	RunsResponse
// @Failure		400		{object}	common.ErrorResponse
// @Router			/v1/runs [get]
func (rt *routes) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			common.WriteErrorResponse(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxRunsLimit)
	}

	runs := []*status.Snapshot{}
	if rt.runs != nil {
		stored, err := rt.runs.ListRuns(r.Context(), limit)
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to list runs", "error", err)
			common.WriteErrorResponse(w, "failed to list runs", http.StatusInternalServerError)
			return
		}
		if stored != nil {
			runs = stored
		}
	}

	common.WriteJSONResponse(w, RunsResponse{Runs: runs, Count: len(runs)}, http.StatusOK)
}

// triggerSync requests a sweep
//
// @Summary		Trigger a sweep
// @Tags			runs
// @Produce		json
// @Success		202	{object}	TriggerResponse
// @Failure		409	{object}	common.ErrorResponse
// @Router			/v1/sync [post]
func (rt *routes) triggerSync(w http.ResponseWriter, r *http.Request) {
	if !rt.sweeps.Trigger() {
		common.WriteErrorResponse(w, "a sweep is already running or pending", http.StatusConflict)
		return
	}
	slog.InfoContext(r.Context(), "Manual sweep requested")
	common.WriteJSONResponse(w, TriggerResponse{Status: "accepted"}, http.StatusAccepted)
}
