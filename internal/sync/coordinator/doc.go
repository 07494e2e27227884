// Package coordinator schedules catalog sweeps for long-running deployments.
//
// It sits on top of sync.Manager and handles:
//
//   - An initial sweep on startup
//   - Periodic sweeps every configured interval, with jitter
//   - Manual triggers, rejected while a sweep is in progress
//   - Persisting every snapshot, including the partial snapshot of a cancelled sweep
//   - Graceful shutdown
//
// Sweeps run one at a time on the coordinator goroutine. A tick that falls
// due while a sweep is running is dropped and the schedule restarts from the
// end of that sweep.
//
// # Usage
//
//	manager := sync.NewDefaultSyncManager(catalog, gateway, settings)
//	coord := coordinator.New(manager, runs, cfg)
//
//	go func() { _ = coord.Start(ctx) }()
//	// ...
//	_ = coord.Stop()
package coordinator
