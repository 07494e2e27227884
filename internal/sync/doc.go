// Package sync runs catalog sweeps.
//
// A sweep walks the academy module id range, the exam list and every machine
// discovered through module payloads, and writes what it finds through a
// storage.Gateway. It proceeds in four phases:
//
//   - Modules: ids start..ceiling; each module with its units, tag
//     vulnerabilities and module↔vulnerability links
//   - Exams: the exam list and each exam's module links
//   - Machines: every related machine queued during the module phase, its
//     tags and labels, then the module↔machine link sets
//   - Backfill: optional propagation of vulnerability tags between modules and
//     the machines they relate to
//
// No per-entity failure stops a sweep. Each entity ends up processed, skipped,
// rejected or errored in the run statistics. Only cancellation of the context
// ends a sweep early, in which case the partial snapshot is returned together
// with the context error.
//
// With concurrent lanes enabled, machine resolution runs on its own goroutine
// fed by the module phase, so the academy and labs services are paced in
// parallel. The coordinator subpackage schedules sweeps for long-running
// deployments.
package sync
