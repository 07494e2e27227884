package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/labcatalog/catalog-sync/internal/catalog"
	"github.com/labcatalog/catalog-sync/internal/config"
	"github.com/labcatalog/catalog-sync/internal/governor"
	"github.com/labcatalog/catalog-sync/internal/otel"
	"github.com/labcatalog/catalog-sync/internal/sources"
	"github.com/labcatalog/catalog-sync/internal/status"
	"github.com/labcatalog/catalog-sync/internal/storage"
	"github.com/labcatalog/catalog-sync/internal/telemetry"
)

// TracerName is the name of the sweep tracer
const TracerName = "github.com/labcatalog/catalog-sync/sync"

// Manager runs catalog sweeps
//
//go:generate mockgen -destination=mocks/mock_manager.go -package=mocks github.com/labcatalog/catalog-sync/internal/sync Manager
type Manager interface {
	// PerformSync runs one sweep. On cancellation it returns the partial snapshot,
	// marked cancelled, together with ctx.Err().
	PerformSync(ctx context.Context, opts Options) (*status.Snapshot, error)
}

// Options tune a single sweep
type Options struct {
	// Resume starts the module phase after the checkpoint of the latest run
	// when that run was cancelled
	Resume bool
}

// Settings are the sweep parameters taken from configuration
type Settings struct {
	// ModuleCeiling is the highest module id probed
	ModuleCeiling int
	// BackfillVulnerabilities enables the back-fill phase
	BackfillVulnerabilities bool
	// FetchMachineTags enables fetching tags, vulnerabilities and labels of resolved machines
	FetchMachineTags bool
	// ConcurrentLanes resolves machines on a separate goroutine during the module phase
	ConcurrentLanes bool
	// AcademyWebURL is the public academy site root used to build module URLs
	AcademyWebURL string
	// LabsWebURL is the public labs site root used to build machine URLs
	LabsWebURL string
	// RequestDelays is the minimum spacing between requests per service. Every sweep
	// paces its fetches with a fresh governor built from it. Nil leaves fetches unpaced.
	RequestDelays map[catalog.Service]time.Duration
}

// SettingsFromConfig extracts the sweep settings from the application configuration
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		ModuleCeiling:           cfg.Sync.GetModuleCeiling(),
		BackfillVulnerabilities: cfg.Sync.BackfillVulnerabilities,
		FetchMachineTags:        cfg.Sync.GetFetchMachineTags(),
		ConcurrentLanes:         cfg.Sync.ConcurrentLanes,
		AcademyWebURL:           cfg.Academy.GetWebURL(),
		LabsWebURL:              cfg.Labs.GetWebURL(),
		RequestDelays: map[catalog.Service]time.Duration{
			catalog.ServiceAcademy: cfg.Academy.GetRequestDelay(),
			catalog.ServiceLabs:    cfg.Labs.GetRequestDelay(),
		},
	}
}

// Option configures the manager
type Option func(*defaultSyncManager)

// WithRunPersistence lets sweeps read the checkpoint of the latest run
func WithRunPersistence(p status.RunPersistence) Option {
	return func(m *defaultSyncManager) {
		m.runs = p
	}
}

// WithSyncMetrics records run and entity metrics
func WithSyncMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(m *defaultSyncManager) {
		m.metrics = metrics
	}
}

// WithTracer enables spans for sweeps and their phases
func WithTracer(tracer trace.Tracer) Option {
	return func(m *defaultSyncManager) {
		m.tracer = tracer
	}
}

// WithClock sets the clock used to timestamp runs
func WithClock(c clock.PassiveClock) Option {
	return func(m *defaultSyncManager) {
		m.clock = c
	}
}

// WithGovernorOptions sets the options of the governor built for every sweep
func WithGovernorOptions(opts ...governor.Option) Option {
	return func(m *defaultSyncManager) {
		m.governorOpts = opts
	}
}

// defaultSyncManager is the default implementation of Manager
type defaultSyncManager struct {
	catalog  sources.Catalog
	gateway  storage.Gateway
	settings Settings

	runs         status.RunPersistence
	metrics      *telemetry.SyncMetrics
	tracer       trace.Tracer
	clock        clock.PassiveClock
	governorOpts []governor.Option
}

// NewDefaultSyncManager creates a manager fetching from cat and writing to gw
func NewDefaultSyncManager(cat sources.Catalog, gw storage.Gateway, settings Settings, opts ...Option) Manager {
	m := &defaultSyncManager{
		catalog:  cat,
		gateway:  gw,
		settings: settings,
		clock:    clock.RealClock{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PerformSync runs one sweep
func (m *defaultSyncManager) PerformSync(ctx context.Context, opts Options) (*status.Snapshot, error) {
	start := m.startModuleID(ctx, opts)

	r := newRun(m, uuid.New(), m.clock.Now())
	ctx, span := m.startSpan(ctx, "sync.PerformSync",
		otel.AttrRunID.String(r.stats.Snapshot().RunID.String()),
		otel.AttrStartModuleID.Int(start),
		otel.AttrConcurrentLanes.Bool(m.settings.ConcurrentLanes),
	)
	defer span.End()

	// the governor is dropped with ctx when the sweep returns
	if m.settings.RequestDelays != nil {
		gov := governor.New(m.settings.RequestDelays, m.governorOpts...)
		ctx = sources.ContextWithThrottler(ctx, gov)
		slog.DebugContext(ctx, "Pacing sweep",
			"academy_delay", gov.Interval(catalog.ServiceAcademy),
			"labs_delay", gov.Interval(catalog.ServiceLabs))
	}

	slog.InfoContext(ctx, "Starting sweep",
		"run_id", r.stats.Snapshot().RunID,
		"start_module_id", start,
		"module_ceiling", m.settings.ModuleCeiling,
		"concurrent_lanes", m.settings.ConcurrentLanes)

	if m.settings.ConcurrentLanes {
		m.sweepConcurrently(ctx, r, start)
	} else {
		m.sweepSequentially(ctx, r, start)
	}

	if ctx.Err() == nil {
		m.phase(ctx, r, status.PhaseMachines, "sync.LinkMachines", r.linkModuleMachines)
	}
	if ctx.Err() == nil && m.settings.BackfillVulnerabilities {
		m.phase(ctx, r, status.PhaseBackfill, "sync.Backfill", r.backfill)
	}

	err := ctx.Err()
	snap := r.stats.Finish(m.clock.Now(), err != nil)
	m.record(ctx, snap)

	if err != nil {
		span.SetStatus(codes.Error, "sweep cancelled")
		slog.WarnContext(ctx, "Sweep cancelled",
			"run_id", snap.RunID,
			"phase", snap.Phase,
			"last_module_id", snap.LastModuleID,
			"duration", snap.Duration())
		return snap, err
	}

	totals := snap.Totals()
	slog.InfoContext(ctx, "Sweep completed",
		"run_id", snap.RunID,
		"duration", snap.Duration(),
		"processed", totals.Processed,
		"skipped", totals.Skipped,
		"rejected", totals.Rejected,
		"errored", totals.Errored)
	return snap, nil
}

// sweepSequentially runs the module, exam and machine phases one after the other
func (m *defaultSyncManager) sweepSequentially(ctx context.Context, r *run, start int) {
	m.phase(ctx, r, status.PhaseModules, "sync.Modules", func(ctx context.Context) {
		r.sweepModules(ctx, start)
	})
	r.machines.close()
	if ctx.Err() != nil {
		return
	}
	m.phase(ctx, r, status.PhaseExams, "sync.Exams", r.sweepExams)
	if ctx.Err() != nil {
		return
	}
	m.phase(ctx, r, status.PhaseMachines, "sync.Machines", r.resolveMachines)
}

// sweepConcurrently runs the academy lane (modules then exams) and the labs lane
// (machine resolution) side by side. The labs lane drains the machine queue
// that the module phase fills.
func (m *defaultSyncManager) sweepConcurrently(ctx context.Context, r *run, start int) {
	var g errgroup.Group

	g.Go(func() error {
		m.phase(ctx, r, status.PhaseModules, "sync.Modules", func(ctx context.Context) {
			r.sweepModules(ctx, start)
		})
		r.machines.close()
		if ctx.Err() != nil {
			return nil
		}
		m.phase(ctx, r, status.PhaseExams, "sync.Exams", r.sweepExams)
		return nil
	})
	g.Go(func() error {
		ctx, span := m.startSpan(ctx, "sync.Machines")
		defer span.End()
		r.resolveMachines(ctx)
		return nil
	})

	_ = g.Wait()
	if ctx.Err() == nil {
		r.stats.SetPhase(status.PhaseMachines)
	}
}

// phase records p as reached and runs fn inside a span
func (m *defaultSyncManager) phase(ctx context.Context, r *run, p status.Phase, spanName string, fn func(context.Context)) {
	r.stats.SetPhase(p)
	ctx, span := m.startSpan(ctx, spanName)
	defer span.End()

	slog.DebugContext(ctx, "Entering phase", "phase", p)
	fn(ctx)
}

// startModuleID returns where the module phase begins. It resumes after the
// checkpoint of the latest run only when that run was cancelled.
func (m *defaultSyncManager) startModuleID(ctx context.Context, opts Options) int {
	if !opts.Resume || m.runs == nil {
		return 1
	}

	latest, err := m.runs.LoadLatest(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load latest run, starting from the first module", "error", err)
		return 1
	}
	if latest == nil || !latest.Cancelled || latest.LastModuleID <= 0 {
		return 1
	}

	slog.InfoContext(ctx, "Resuming from checkpoint",
		"previous_run_id", latest.RunID,
		"last_module_id", latest.LastModuleID)
	return latest.LastModuleID + 1
}

// record publishes the final counters of a run as metrics
func (m *defaultSyncManager) record(ctx context.Context, snap *status.Snapshot) {
	if m.metrics == nil {
		return
	}
	m.metrics.RecordRunDuration(ctx, snap.Duration(), snap.Cancelled)
	for _, kind := range catalog.EntityKinds {
		c := snap.Counters[kind]
		for _, result := range status.Results {
			m.metrics.RecordEntities(ctx, string(kind), string(result), int64(c.Get(result)))
		}
	}
}

// startSpan starts a span tagged with attrs
func (m *defaultSyncManager) startSpan(
	ctx context.Context, name string, attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	return otel.StartSpan(ctx, m.tracer, name, trace.WithAttributes(attrs...))
}
