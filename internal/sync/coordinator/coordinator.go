package coordinator

import (
	"context"
	"errors"
	"log/slog"
	gosync "sync"
	"sync/atomic"
	"time"

	"k8s.io/utils/clock"

	"github.com/labcatalog/catalog-sync/internal/config"
	"github.com/labcatalog/catalog-sync/internal/status"
	pkgsync "github.com/labcatalog/catalog-sync/internal/sync"
)

// persistTimeout bounds saving a snapshot after its sweep ended
const persistTimeout = 30 * time.Second

// ErrAlreadyStarted is returned by Start on a coordinator that was started before
var ErrAlreadyStarted = errors.New("coordinator already started")

//go:generate mockgen -destination=mocks/mock_coordinator.go -package=mocks -source=coordinator.go Coordinator

// Coordinator manages background sweep scheduling and execution
type Coordinator interface {
	// Start runs an initial sweep, then one sweep per interval.
	// Blocks until the context is cancelled or Stop is called.
	// A coordinator starts at most once; later calls return ErrAlreadyStarted.
	Start(ctx context.Context) error

	// Stop gracefully stops the coordinator, cancelling a sweep in progress
	Stop() error

	// Trigger requests a sweep as soon as possible. It returns false when a
	// sweep is already running or already requested.
	Trigger() bool

	// Running reports whether a sweep is in progress
	Running() bool

	// Latest returns the snapshot of the most recent sweep, or nil before the first one
	Latest() *status.Snapshot
}

// defaultCoordinator is the default implementation of Coordinator
type defaultCoordinator struct {
	manager  pkgsync.Manager
	runs     status.RunPersistence
	interval time.Duration
	resume   bool
	clock    clock.WithTicker

	trigger chan struct{}
	running atomic.Bool
	started atomic.Bool

	mu         gosync.RWMutex
	latest     *status.Snapshot
	cancelFunc context.CancelFunc
	done       chan struct{}
}

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// WithClock sets the clock driving the schedule
func WithClock(c clock.WithTicker) Option {
	return func(d *defaultCoordinator) {
		d.clock = c
	}
}

// New creates a new coordinator with injected dependencies
func New(manager pkgsync.Manager, runs status.RunPersistence, cfg *config.Config, opts ...Option) Coordinator {
	c := &defaultCoordinator{
		manager:  manager,
		runs:     runs,
		interval: cfg.Sync.GetInterval(),
		resume:   cfg.Sync.ResumeFromCheckpoint,
		clock:    clock.RealClock{},
		trigger:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins background sweep coordination
func (c *defaultCoordinator) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	slog.Info("Starting sweep coordinator", "interval", c.interval, "resume_from_checkpoint", c.resume)

	coordCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelFunc = cancel
	c.mu.Unlock()
	defer func() {
		cancel()
		close(c.done)
		slog.Info("Sweep coordinator shutting down")
	}()

	c.loadLatest(coordCtx)

	c.runSweep(coordCtx, "initial")

	timer := c.clock.NewTimer(withJitter(c.interval))
	defer timer.Stop()

	for {
		select {
		case <-timer.C():
			c.runSweep(coordCtx, "scheduled")
		case <-c.trigger:
			c.runSweep(coordCtx, "manual")
		case <-coordCtx.Done():
			slog.Info("Sweep coordinator stopping")
			return nil
		}

		// Restart the schedule from the end of the sweep, dropping a tick that fell due meanwhile
		if !timer.Stop() {
			select {
			case <-timer.C():
			default:
			}
		}
		next := withJitter(c.interval)
		timer.Reset(next)
		slog.Debug("Next sweep scheduled", "in", next)
	}
}

// Stop gracefully stops the coordinator
func (c *defaultCoordinator) Stop() error {
	c.mu.RLock()
	cancel := c.cancelFunc
	c.mu.RUnlock()

	if cancel != nil {
		slog.Info("Stopping sweep coordinator")
		cancel()
		<-c.done
	}
	return nil
}

// Trigger requests a manual sweep
func (c *defaultCoordinator) Trigger() bool {
	if c.running.Load() {
		return false
	}
	select {
	case c.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Running reports whether a sweep is in progress
func (c *defaultCoordinator) Running() bool {
	return c.running.Load()
}

// Latest returns the most recent snapshot
func (c *defaultCoordinator) Latest() *status.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

// loadLatest seeds Latest with the newest persisted run
func (c *defaultCoordinator) loadLatest(ctx context.Context) {
	if c.runs == nil {
		return
	}
	latest, err := c.runs.LoadLatest(ctx)
	if err != nil {
		slog.Warn("Failed to load latest run", "error", err)
		return
	}
	if latest != nil {
		c.setLatest(latest)
	}
}

// runSweep performs one sweep and persists its snapshot, whatever the outcome
func (c *defaultCoordinator) runSweep(ctx context.Context, trigger string) {
	c.running.Store(true)
	defer c.running.Store(false)

	slog.Info("Starting sweep", "trigger", trigger)
	snap, err := c.manager.PerformSync(ctx, pkgsync.Options{Resume: c.resume})
	if snap == nil {
		if err != nil {
			slog.Error("Sweep failed", "trigger", trigger, "error", err)
		}
		return
	}

	c.setLatest(snap)
	c.persist(ctx, snap)

	if err != nil {
		slog.Warn("Sweep ended early", "run_id", snap.RunID, "phase", snap.Phase, "error", err)
		return
	}
	slog.Info("Sweep finished", "run_id", snap.RunID, "trigger", trigger, "duration", snap.Duration())
}

// persist saves snap even when ctx is already cancelled
func (c *defaultCoordinator) persist(ctx context.Context, snap *status.Snapshot) {
	if c.runs == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := c.runs.SaveRun(saveCtx, snap); err != nil {
		slog.Error("Failed to persist run snapshot", "run_id", snap.RunID, "error", err)
	}
}

func (c *defaultCoordinator) setLatest(snap *status.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest = snap
}
