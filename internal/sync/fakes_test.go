package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"

	"github.com/labcatalog/catalog-sync/internal/catalog"
	"github.com/labcatalog/catalog-sync/internal/sources"
)

// fakeCatalog serves canned results. Anything not configured is not found.
type fakeCatalog struct {
	mu          gosync.Mutex
	modules     map[int]sources.Result
	exams       sources.Result
	examModules map[int]sources.Result
	machines    map[string]sources.Result
	tags        map[int]sources.Result
	calls       []string
	// onFetch runs before every fetch with the call name
	onFetch func(call string)
}

var _ sources.Catalog = (*fakeCatalog)(nil)

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		modules:     map[int]sources.Result{},
		exams:       ok(`[]`),
		examModules: map[int]sources.Result{},
		machines:    map[string]sources.Result{},
		tags:        map[int]sources.Result{},
	}
}

func ok(payload string) sources.Result {
	return sources.Result{Outcome: sources.OutcomeOK, Payload: []byte(payload), StatusCode: 200}
}

func notFound() sources.Result {
	return sources.Result{Outcome: sources.OutcomeNotFound, StatusCode: 404, Err: errors.New("not found")}
}

func failed(outcome sources.Outcome, code int) sources.Result {
	return sources.Result{Outcome: outcome, StatusCode: code, Err: fmt.Errorf("status %d", code)}
}

func (f *fakeCatalog) fetch(ctx context.Context, call string, lookup func() (sources.Result, bool)) sources.Result {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	hook := f.onFetch
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if err := ctx.Err(); err != nil {
		return sources.Result{Outcome: sources.OutcomeTransient, Err: err}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if r, found := lookup(); found {
		return r
	}
	return notFound()
}

func (f *fakeCatalog) FetchModule(ctx context.Context, id int) sources.Result {
	return f.fetch(ctx, fmt.Sprintf("module/%d", id), func() (sources.Result, bool) {
		r, found := f.modules[id]
		return r, found
	})
}

func (f *fakeCatalog) FetchExams(ctx context.Context) sources.Result {
	return f.fetch(ctx, "exams", func() (sources.Result, bool) {
		return f.exams, true
	})
}

func (f *fakeCatalog) FetchExamModules(ctx context.Context, examID int) sources.Result {
	return f.fetch(ctx, fmt.Sprintf("exam/%d/modules", examID), func() (sources.Result, bool) {
		r, found := f.examModules[examID]
		return r, found
	})
}

func (f *fakeCatalog) FetchMachine(ctx context.Context, ref catalog.MachineRef) sources.Result {
	return f.fetch(ctx, "machine/"+ref.Key(), func() (sources.Result, bool) {
		r, found := f.machines[ref.Key()]
		return r, found
	})
}

func (f *fakeCatalog) FetchMachineTags(ctx context.Context, machineID int) sources.Result {
	return f.fetch(ctx, fmt.Sprintf("tags/%d", machineID), func() (sources.Result, bool) {
		r, found := f.tags[machineID]
		return r, found
	})
}

func (f *fakeCatalog) set(fn func(f *fakeCatalog)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeCatalog) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

func modulePayload(id int, difficulty string, extra string) string {
	if extra != "" {
		extra = ", " + extra
	}
	return fmt.Sprintf(`{"data": {"id": %d, "name": "Module %d", "difficulty": %q%s}}`, id, id, difficulty, extra)
}

func machinePayload(id int, name, os string) string {
	return fmt.Sprintf(`{"info": {"id": %d, "name": %q, "os": %q, "difficultyText": "Easy"}}`, id, name, os)
}
