package status

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/labcatalog/catalog-sync/internal/catalog"
)

// Stats accumulates the statistics of a run in progress. It is safe for concurrent use.
type Stats struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewStats starts the statistics of a new run
func NewStats(runID uuid.UUID, startedAt time.Time) *Stats {
	counters := make(map[catalog.EntityKind]Counters, len(catalog.EntityKinds))
	for _, kind := range catalog.EntityKinds {
		counters[kind] = Counters{}
	}
	return &Stats{
		snap: Snapshot{
			RunID:     runID,
			StartedAt: startedAt,
			Phase:     PhaseModules,
			Counters:  counters,
		},
	}
}

// Record counts one entity of the given kind with the given result
func (s *Stats) Record(kind catalog.EntityKind, result Result) {
	s.Add(kind, result, 1)
}

// Add counts n entities of the given kind with the given result
func (s *Stats) Add(kind catalog.EntityKind, result Result, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.snap.Counters[kind]
	c.add(result, n)
	s.snap.Counters[kind] = c
}

// SetPhase records the phase the run has entered
func (s *Stats) SetPhase(p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Phase = p
}

// SetLastModuleID records the last module id the module sweep handled
func (s *Stats) SetLastModuleID(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.LastModuleID = id
}

// Finish marks the run as ended and returns its final snapshot
func (s *Stats) Finish(at time.Time, cancelled bool) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.FinishedAt = &at
	s.snap.Cancelled = cancelled
	if !cancelled {
		s.snap.Phase = PhaseComplete
	}
	return s.snap.clone()
}

// Snapshot returns a copy of the current statistics
func (s *Stats) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.clone()
}
