package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/labcatalog/catalog-sync/internal/config"
	"github.com/labcatalog/catalog-sync/internal/status"
	statusmocks "github.com/labcatalog/catalog-sync/internal/status/mocks"
	pkgsync "github.com/labcatalog/catalog-sync/internal/sync"
	syncmocks "github.com/labcatalog/catalog-sync/internal/sync/mocks"
)

const waitFor = 5 * time.Second

func testConfig(interval string, resume bool) *config.Config {
	return &config.Config{Sync: config.SyncConfig{Interval: interval, ResumeFromCheckpoint: resume}}
}

func snapshot() *status.Snapshot {
	return &status.Snapshot{RunID: uuid.New(), StartedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Phase: status.PhaseComplete}
}

func startCoordinator(t *testing.T, c Coordinator) <-chan error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(context.Background()) }()
	t.Cleanup(func() { _ = c.Stop() })
	return errCh
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitFor):
		require.FailNow(t, "timed out waiting")
	}
	var zero T
	return zero
}

func TestWithJitter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		interval time.Duration
		maxShift time.Duration
	}{
		{name: "ten percent of short interval", interval: time.Hour, maxShift: 6 * time.Minute},
		{name: "capped for long interval", interval: 30 * 24 * time.Hour, maxShift: maxJitter},
		{name: "zero interval", interval: 0, maxShift: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.maxShift, jitterFor(tt.interval))
			for range 100 {
				got := withJitter(tt.interval)
				assert.GreaterOrEqual(t, got, tt.interval-tt.maxShift)
				assert.LessOrEqual(t, got, tt.interval+tt.maxShift)
			}
		})
	}
}

func TestCoordinator_InitialSweepIsPersisted(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	manager := syncmocks.NewMockManager(ctrl)
	runs := statusmocks.NewMockRunPersistence(ctrl)
	previous := snapshot()
	current := snapshot()
	saved := make(chan *status.Snapshot, 1)

	runs.EXPECT().LoadLatest(gomock.Any()).Return(previous, nil)
	manager.EXPECT().PerformSync(gomock.Any(), pkgsync.Options{Resume: true}).Return(current, nil)
	runs.EXPECT().SaveRun(gomock.Any(), current).DoAndReturn(func(_ context.Context, snap *status.Snapshot) error {
		saved <- snap
		return nil
	})

	coord := New(manager, runs, testConfig("1h", true), WithClock(testingclock.NewFakeClock(time.Now())))
	assert.Nil(t, coord.Latest())

	errCh := startCoordinator(t, coord)
	assert.Equal(t, current, receive(t, saved))
	assert.Eventually(t, func() bool { return coord.Latest() == current }, waitFor, 10*time.Millisecond)

	require.NoError(t, coord.Stop())
	require.NoError(t, receive(t, errCh))
	assert.False(t, coord.Running())
}

func TestCoordinator_StartTwice(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	manager := syncmocks.NewMockManager(ctrl)
	swept := make(chan struct{}, 1)
	manager.EXPECT().PerformSync(gomock.Any(), pkgsync.Options{}).DoAndReturn(
		func(context.Context, pkgsync.Options) (*status.Snapshot, error) {
			swept <- struct{}{}
			return snapshot(), nil
		})

	coord := New(manager, nil, testConfig("24h", false), WithClock(testingclock.NewFakeClock(time.Now())))
	errCh := startCoordinator(t, coord)
	receive(t, swept)

	assert.ErrorIs(t, coord.Start(context.Background()), ErrAlreadyStarted)

	require.NoError(t, coord.Stop())
	require.NoError(t, receive(t, errCh))
	assert.ErrorIs(t, coord.Start(context.Background()), ErrAlreadyStarted, "a stopped coordinator does not restart")
}

func TestCoordinator_ScheduledSweep(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	manager := syncmocks.NewMockManager(ctrl)
	runs := statusmocks.NewMockRunPersistence(ctrl)
	fakeClock := testingclock.NewFakeClock(time.Now())
	sweeps := make(chan string, 2)

	runs.EXPECT().LoadLatest(gomock.Any()).Return(nil, nil)
	runs.EXPECT().SaveRun(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	gomock.InOrder(
		manager.EXPECT().PerformSync(gomock.Any(), pkgsync.Options{}).DoAndReturn(
			func(context.Context, pkgsync.Options) (*status.Snapshot, error) {
				sweeps <- "first"
				return snapshot(), nil
			}),
		manager.EXPECT().PerformSync(gomock.Any(), pkgsync.Options{}).DoAndReturn(
			func(context.Context, pkgsync.Options) (*status.Snapshot, error) {
				sweeps <- "second"
				return snapshot(), nil
			}),
	)

	coord := New(manager, runs, testConfig("1h", false), WithClock(fakeClock))
	startCoordinator(t, coord)

	assert.Equal(t, "first", receive(t, sweeps))
	require.Eventually(t, fakeClock.HasWaiters, waitFor, 10*time.Millisecond)

	fakeClock.Step(30 * time.Minute)
	select {
	case <-sweeps:
		t.Fatal("sweep ran before the interval elapsed")
	case <-time.After(50 * time.Millisecond):
	}

	fakeClock.Step(40 * time.Minute)
	assert.Equal(t, "second", receive(t, sweeps))
}

func TestCoordinator_Trigger(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	manager := syncmocks.NewMockManager(ctrl)
	fakeClock := testingclock.NewFakeClock(time.Now())
	release := make(chan struct{})
	started := make(chan struct{}, 2)

	manager.EXPECT().PerformSync(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, pkgsync.Options) (*status.Snapshot, error) {
			started <- struct{}{}
			<-release
			return snapshot(), nil
		}).Times(2)

	coord := New(manager, nil, testConfig("24h", false), WithClock(fakeClock))
	startCoordinator(t, coord)

	receive(t, started)
	assert.True(t, coord.Running())
	assert.False(t, coord.Trigger(), "trigger must be rejected while a sweep runs")

	release <- struct{}{}
	require.Eventually(t, fakeClock.HasWaiters, waitFor, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return !coord.Running() }, waitFor, 10*time.Millisecond)

	assert.True(t, coord.Trigger())
	receive(t, started)
	release <- struct{}{}
}

func TestCoordinator_TriggerCoalesces(t *testing.T) {
	t.Parallel()

	coord := New(nil, nil, testConfig("1h", false))
	assert.True(t, coord.Trigger())
	assert.False(t, coord.Trigger(), "a pending trigger absorbs further requests")
}

func TestCoordinator_StopPersistsCancelledSweep(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	manager := syncmocks.NewMockManager(ctrl)
	runs := statusmocks.NewMockRunPersistence(ctrl)
	started := make(chan struct{})
	saved := make(chan error, 1)

	runs.EXPECT().LoadLatest(gomock.Any()).Return(nil, errors.New("store unavailable"))
	manager.EXPECT().PerformSync(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ pkgsync.Options) (*status.Snapshot, error) {
			close(started)
			<-ctx.Done()
			snap := snapshot()
			snap.Cancelled = true
			snap.Phase = status.PhaseModules
			snap.LastModuleID = 17
			return snap, ctx.Err()
		})
	runs.EXPECT().SaveRun(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, snap *status.Snapshot) error {
			assert.True(t, snap.Cancelled)
			assert.Equal(t, 17, snap.LastModuleID)
			saved <- ctx.Err()
			return nil
		})

	coord := New(manager, runs, testConfig("1h", false), WithClock(testingclock.NewFakeClock(time.Now())))
	errCh := startCoordinator(t, coord)

	receive(t, started)
	require.NoError(t, coord.Stop())

	assert.NoError(t, receive(t, saved), "snapshot must be saved with a live context")
	require.NoError(t, receive(t, errCh))
	require.NotNil(t, coord.Latest())
	assert.True(t, coord.Latest().Cancelled)
}

func TestCoordinator_ManagerFailureWithoutSnapshot(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	manager := syncmocks.NewMockManager(ctrl)
	runs := statusmocks.NewMockRunPersistence(ctrl)
	done := make(chan struct{})

	runs.EXPECT().LoadLatest(gomock.Any()).Return(nil, nil)
	manager.EXPECT().PerformSync(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, pkgsync.Options) (*status.Snapshot, error) {
			defer close(done)
			return nil, errors.New("boom")
		})

	coord := New(manager, runs, testConfig("1h", false), WithClock(testingclock.NewFakeClock(time.Now())))
	startCoordinator(t, coord)

	receive(t, done)
	require.NoError(t, coord.Stop())
	assert.Nil(t, coord.Latest())
}
