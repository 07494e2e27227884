package sync

import (
	"context"
	"log/slog"
	"slices"
	gosync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/labcatalog/catalog-sync/internal/catalog"
	"github.com/labcatalog/catalog-sync/internal/normalize"
	"github.com/labcatalog/catalog-sync/internal/sources"
	"github.com/labcatalog/catalog-sync/internal/status"
	"github.com/labcatalog/catalog-sync/internal/storage"
)

// run holds the state of one sweep
type run struct {
	catalog  sources.Catalog
	gateway  storage.Gateway
	settings Settings
	stats    *status.Stats
	machines *refQueue

	// mu guards the maps below while both lanes are running
	mu gosync.Mutex
	// moduleMachines holds the related machine references of every module persisted this run
	moduleMachines map[int][]catalog.MachineRef
	// resolved maps a machine reference key to the id of the machine persisted for it
	resolved map[string]int
	// failed holds the reference keys whose machine could not be fetched or stored this run
	failed map[string]struct{}
	// moduleTags and machineTags hold the vulnerability ids of each payload's own tags.
	// They are only filled when back-fill is on, which writes their link sets.
	moduleTags  map[int][]int
	machineTags map[int][]int
}

func newRun(m *defaultSyncManager, runID uuid.UUID, startedAt time.Time) *run {
	return &run{
		catalog:        m.catalog,
		gateway:        m.gateway,
		settings:       m.settings,
		stats:          status.NewStats(runID, startedAt),
		machines:       newRefQueue(),
		moduleMachines: map[int][]catalog.MachineRef{},
		resolved:       map[string]int{},
		failed:         map[string]struct{}{},
		moduleTags:     map[int][]int{},
		machineTags:    map[int][]int{},
	}
}

// sweepModules probes module ids start..ceiling. The checkpoint only advances past
// modules that were handled to the end.
func (r *run) sweepModules(ctx context.Context, start int) {
	r.stats.SetLastModuleID(start - 1)
	for id := start; id <= r.settings.ModuleCeiling; id++ {
		if ctx.Err() != nil {
			return
		}
		r.syncModule(ctx, id)
		if ctx.Err() != nil {
			return
		}
		r.stats.SetLastModuleID(id)
	}
}

func (r *run) syncModule(ctx context.Context, id int) {
	res := r.catalog.FetchModule(ctx, id)
	if !res.OK() {
		r.fetchFailed(ctx, catalog.EntityModule, id, res)
		return
	}

	rec, err := normalize.Module(res.Payload, r.settings.AcademyWebURL)
	if err == nil {
		err = normalize.CheckID(catalog.EntityModule, id, rec.Module.ID)
	}
	if err != nil {
		r.rejected(ctx, catalog.EntityModule, id, err)
		return
	}

	moduleID := rec.Module.ID
	if err := r.gateway.UpsertModule(ctx, rec.Module); err != nil {
		r.storageFailed(ctx, catalog.EntityModule, moduleID, 1, err)
		return
	}
	r.stats.Record(catalog.EntityModule, status.ResultProcessed)

	if err := r.gateway.ReplaceUnits(ctx, moduleID, rec.Units); err != nil {
		r.storageFailed(ctx, catalog.EntityUnit, moduleID, max(len(rec.Units), 1), err)
	} else {
		r.stats.Add(catalog.EntityUnit, status.ResultProcessed, len(rec.Units))
	}

	vulnIDs := r.upsertVulnerabilities(ctx, rec.Vulnerabilities)
	r.linkVulnerabilities(ctx, catalog.LinkModuleVulnerability, moduleID, vulnIDs, r.moduleTags)

	r.mu.Lock()
	r.moduleMachines[moduleID] = rec.RelatedMachines
	r.mu.Unlock()
	for _, ref := range rec.RelatedMachines {
		r.machines.push(ref)
	}

	slog.DebugContext(ctx, "Module synced",
		"module_id", moduleID,
		"units", len(rec.Units),
		"vulnerabilities", len(vulnIDs),
		"related_machines", len(rec.RelatedMachines))
}

// sweepExams fetches the exam list once and syncs every exam with its module links
func (r *run) sweepExams(ctx context.Context) {
	res := r.catalog.FetchExams(ctx)
	if !res.OK() {
		r.fetchFailed(ctx, catalog.EntityExam, 0, res)
		return
	}

	exams, rejections, err := normalize.Exams(res.Payload)
	if err != nil {
		r.rejected(ctx, catalog.EntityExam, 0, err)
		return
	}
	for _, rejection := range rejections {
		r.rejected(ctx, catalog.EntityExam, 0, rejection)
	}

	for _, exam := range exams {
		if ctx.Err() != nil {
			return
		}
		r.syncExam(ctx, exam)
	}
}

func (r *run) syncExam(ctx context.Context, exam catalog.Exam) {
	if err := r.gateway.UpsertExam(ctx, exam); err != nil {
		r.storageFailed(ctx, catalog.EntityExam, exam.ID, 1, err)
		return
	}
	r.stats.Record(catalog.EntityExam, status.ResultProcessed)

	res := r.catalog.FetchExamModules(ctx, exam.ID)
	if !res.OK() {
		r.fetchFailed(ctx, catalog.EntityLink, exam.ID, res)
		return
	}
	moduleIDs, err := normalize.ExamModules(res.Payload)
	if err != nil {
		r.rejected(ctx, catalog.EntityLink, exam.ID, err)
		return
	}
	r.replaceLinks(ctx, catalog.LinkExamModule, exam.ID, moduleIDs)
}

// resolveMachines drains the machine queue until it is closed or ctx is done
func (r *run) resolveMachines(ctx context.Context) {
	for ctx.Err() == nil {
		ref, ok := r.machines.pop(ctx)
		if !ok {
			return
		}
		r.resolveMachine(ctx, ref)
	}
}

func (r *run) resolveMachine(ctx context.Context, ref catalog.MachineRef) {
	res := r.catalog.FetchMachine(ctx, ref)
	if !res.OK() {
		if res.Outcome == sources.OutcomeForbidden || res.Outcome == sources.OutcomeTransient {
			r.markFailed(ref)
		}
		r.fetchFailed(ctx, catalog.EntityMachine, ref.ID, res)
		return
	}

	machine, err := normalize.Machine(res.Payload, r.settings.LabsWebURL)
	if err != nil {
		r.rejected(ctx, catalog.EntityMachine, ref.ID, err)
		return
	}
	if err := r.gateway.UpsertMachine(ctx, *machine); err != nil {
		r.markFailed(ref)
		r.storageFailed(ctx, catalog.EntityMachine, machine.ID, 1, err)
		return
	}
	r.stats.Record(catalog.EntityMachine, status.ResultProcessed)

	r.mu.Lock()
	r.resolved[ref.Key()] = machine.ID
	r.mu.Unlock()

	if r.settings.FetchMachineTags {
		r.syncMachineTags(ctx, machine.ID)
	}
}

// syncMachineTags stores a machine's vulnerabilities and replaces its vulnerability links and label sets
func (r *run) syncMachineTags(ctx context.Context, machineID int) {
	res := r.catalog.FetchMachineTags(ctx, machineID)
	if !res.OK() {
		r.fetchFailed(ctx, catalog.EntityLink, machineID, res)
		return
	}
	tags, err := normalize.MachineTags(res.Payload)
	if err != nil {
		r.rejected(ctx, catalog.EntityLink, machineID, err)
		return
	}

	vulnIDs := r.upsertVulnerabilities(ctx, tags.Vulnerabilities)
	r.linkVulnerabilities(ctx, catalog.LinkMachineVulnerability, machineID, vulnIDs, r.machineTags)
	r.replaceLabels(ctx, machineID, catalog.LabelLanguage, tags.Languages)
	r.replaceLabels(ctx, machineID, catalog.LabelAreaOfInterest, tags.Areas)
}

// linkModuleMachines replaces the machine link set of every module persisted this run.
// It runs after both lanes joined.
func (r *run) linkModuleMachines(ctx context.Context) {
	for _, moduleID := range sortedKeys(r.moduleMachines) {
		if ctx.Err() != nil {
			return
		}
		r.replaceLinks(ctx, catalog.LinkModuleMachine, moduleID, r.machineIDs(r.moduleMachines[moduleID]))
	}
}

// machineIDs maps references onto machine ids: the persisted id when the machine was
// resolved, or the referenced id when fetching or storing it failed this run so that a
// row kept from an earlier run stays linked. Not found and rejected machines are dropped.
func (r *run) machineIDs(refs []catalog.MachineRef) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int, 0, len(refs))
	for _, ref := range refs {
		if id, ok := r.resolved[ref.Key()]; ok {
			ids = append(ids, id)
			continue
		}
		if _, ok := r.failed[ref.Key()]; ok && ref.ID > 0 {
			ids = append(ids, ref.ID)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

func (r *run) markFailed(ref catalog.MachineRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[ref.Key()] = struct{}{}
}

// upsertVulnerabilities stores vulns and returns the ids of those that were stored
func (r *run) upsertVulnerabilities(ctx context.Context, vulns []catalog.Vulnerability) []int {
	ids := make([]int, 0, len(vulns))
	for _, v := range vulns {
		if err := r.gateway.UpsertVulnerability(ctx, v); err != nil {
			r.storageFailed(ctx, catalog.EntityVulnerability, v.ID, 1, err)
			continue
		}
		r.stats.Record(catalog.EntityVulnerability, status.ResultProcessed)
		ids = append(ids, v.ID)
	}
	return ids
}

// linkVulnerabilities writes the vulnerability link set of a parent from its own tags.
// With back-fill on the set is only recorded in own, so that it is written once
// together with the tags of related parents.
func (r *run) linkVulnerabilities(ctx context.Context, kind catalog.LinkKind, parentID int, ids []int, own map[int][]int) {
	if !r.settings.BackfillVulnerabilities {
		r.replaceLinks(ctx, kind, parentID, ids)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	own[parentID] = ids
}

// replaceLinks replaces one link set and counts it. It reports whether the set was written.
func (r *run) replaceLinks(ctx context.Context, kind catalog.LinkKind, parentID int, childIDs []int) bool {
	kept, err := r.gateway.ReplaceLinks(ctx, kind, parentID, childIDs)
	if err != nil {
		r.storageFailed(ctx, catalog.EntityLink, parentID, 1, err)
		return false
	}
	r.stats.Record(catalog.EntityLink, status.ResultProcessed)
	slog.DebugContext(ctx, "Replaced link set", "kind", kind, "parent_id", parentID, "links", kept)
	return true
}

func (r *run) replaceLabels(ctx context.Context, machineID int, kind catalog.LabelKind, labels []string) {
	if err := r.gateway.ReplaceLabels(ctx, machineID, kind, labels); err != nil {
		r.storageFailed(ctx, catalog.EntityLink, machineID, 1, err)
		return
	}
	r.stats.Record(catalog.EntityLink, status.ResultProcessed)
}

// fetchFailed counts a fetch that did not return a usable payload. Fetches abandoned
// because the sweep was cancelled are not counted.
func (r *run) fetchFailed(ctx context.Context, kind catalog.EntityKind, id int, res sources.Result) {
	if ctx.Err() != nil {
		return
	}

	result := failureResult(res.Outcome)
	r.stats.Record(kind, result)

	attrs := []any{"kind", kind, "id", id, "outcome", res.Outcome, "status_code", res.StatusCode}
	if result == status.ResultSkipped {
		slog.DebugContext(ctx, "Entity not found, skipping", attrs...)
		return
	}
	attrs = append(attrs, "error", res.Err)
	slog.WarnContext(ctx, "Fetch failed, abandoning entity for this run", attrs...)
}

func (r *run) rejected(ctx context.Context, kind catalog.EntityKind, id int, err error) {
	r.stats.Record(kind, status.ResultRejected)
	slog.WarnContext(ctx, "Rejected payload", "kind", kind, "id", id, "error", err)
}

func (r *run) storageFailed(ctx context.Context, kind catalog.EntityKind, id, n int, err error) {
	if ctx.Err() != nil {
		return
	}
	r.stats.Add(kind, status.ResultErrored, n)
	slog.ErrorContext(ctx, "Failed to persist entity", "kind", kind, "id", id, "error", err)
}

// failureResult maps a failed fetch onto the result it is counted as
func failureResult(o sources.Outcome) status.Result {
	switch o {
	case sources.OutcomeNotFound:
		return status.ResultSkipped
	case sources.OutcomeMalformed:
		return status.ResultRejected
	default:
		return status.ResultErrored
	}
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
