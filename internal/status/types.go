package status

import (
	"time"

	"github.com/google/uuid"

	"github.com/labcatalog/catalog-sync/internal/catalog"
)

// Phase is the furthest sweep phase a run reached
type Phase string

const (
	// PhaseModules is the module sweep
	PhaseModules Phase = "Modules"

	// PhaseExams is the exam sweep
	PhaseExams Phase = "Exams"

	// PhaseMachines is machine resolution
	PhaseMachines Phase = "Machines"

	// PhaseBackfill is the vulnerability back-fill
	PhaseBackfill Phase = "Backfill"

	// PhaseComplete means every phase ran to the end
	PhaseComplete Phase = "Complete"
)

// Result is how the handling of one entity ended
type Result string

const (
	// ResultProcessed means the entity was persisted
	ResultProcessed Result = "processed"

	// ResultSkipped means the remote entity does not exist
	ResultSkipped Result = "skipped"

	// ResultRejected means the payload could not be normalized
	ResultRejected Result = "rejected"

	// ResultErrored means a fetch or storage failure abandoned the entity for this run
	ResultErrored Result = "errored"
)

// Results lists every result in reporting order
var Results = []Result{ResultProcessed, ResultSkipped, ResultRejected, ResultErrored}

// Counters tally the results for one entity kind
type Counters struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Rejected  int `json:"rejected"`
	Errored   int `json:"errored"`
}

// Get returns the counter for a result
func (c Counters) Get(r Result) int {
	switch r {
	case ResultProcessed:
		return c.Processed
	case ResultSkipped:
		return c.Skipped
	case ResultRejected:
		return c.Rejected
	case ResultErrored:
		return c.Errored
	}
	return 0
}

func (c *Counters) add(r Result, n int) {
	switch r {
	case ResultProcessed:
		c.Processed += n
	case ResultSkipped:
		c.Skipped += n
	case ResultRejected:
		c.Rejected += n
	case ResultErrored:
		c.Errored += n
	}
}

// Snapshot is the immutable report of one run, complete or partial
type Snapshot struct {
	// RunID identifies the run
	RunID uuid.UUID `json:"runId"`

	// StartedAt is when the run began
	StartedAt time.Time `json:"startedAt"`

	// FinishedAt is when the run ended, nil while it is still in progress
	FinishedAt *time.Time `json:"finishedAt,omitempty"`

	// Cancelled is set when the run stopped early on cancellation
	Cancelled bool `json:"cancelled"`

	// Phase is the furthest phase reached
	Phase Phase `json:"phase"`

	// LastModuleID is the highest module id the module sweep finished with.
	// A cancelled run resumes after it when checkpoint resume is enabled.
	LastModuleID int `json:"lastModuleId"`

	// Counters holds per-entity-kind tallies
	Counters map[catalog.EntityKind]Counters `json:"counters"`
}

// Totals sums the counters across every entity kind
func (s *Snapshot) Totals() Counters {
	var total Counters
	for _, c := range s.Counters {
		total.Processed += c.Processed
		total.Skipped += c.Skipped
		total.Rejected += c.Rejected
		total.Errored += c.Errored
	}
	return total
}

// Duration returns how long the run took, or 0 while it is still in progress
func (s *Snapshot) Duration() time.Duration {
	if s.FinishedAt == nil {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

func (s Snapshot) clone() *Snapshot {
	out := s
	out.Counters = make(map[catalog.EntityKind]Counters, len(s.Counters))
	for k, v := range s.Counters {
		out.Counters[k] = v
	}
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		out.FinishedAt = &t
	}
	return &out
}
