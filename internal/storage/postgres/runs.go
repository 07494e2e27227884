package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labcatalog/catalog-sync/internal/catalog"
	"github.com/labcatalog/catalog-sync/internal/status"
)

// RunStore persists run snapshots in the sync_runs table
type RunStore struct {
	pool *pgxpool.Pool
}

var _ status.RunPersistence = (*RunStore)(nil)

// NewRunStore creates a run store on pool
func NewRunStore(pool *pgxpool.Pool) *RunStore {
	return &RunStore{pool: pool}
}

const saveRun = `
INSERT INTO sync_runs (id, started_at, finished_at, cancelled, phase, last_module_id, counters)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    finished_at = EXCLUDED.finished_at,
    cancelled = EXCLUDED.cancelled,
    phase = EXCLUDED.phase,
    last_module_id = EXCLUDED.last_module_id,
    counters = EXCLUDED.counters`

const selectRuns = `
SELECT id, started_at, finished_at, cancelled, phase, last_module_id, counters
FROM sync_runs
ORDER BY started_at DESC
LIMIT $1`

// SaveRun stores a snapshot, replacing an earlier snapshot of the same run
func (s *RunStore) SaveRun(ctx context.Context, snap *status.Snapshot) error {
	counters, err := json.Marshal(snap.Counters)
	if err != nil {
		return fmt.Errorf("failed to encode counters: %w", err)
	}
	_, err = s.pool.Exec(ctx, saveRun,
		snap.RunID, snap.StartedAt, snap.FinishedAt, snap.Cancelled,
		string(snap.Phase), snap.LastModuleID, counters)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", snap.RunID, err)
	}
	return nil
}

// LoadLatest returns the most recently started run, or nil when none is stored
func (s *RunStore) LoadLatest(ctx context.Context) (*status.Snapshot, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// ListRuns returns up to limit runs, newest first. A non-positive limit returns every run.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]*status.Snapshot, error) {
	var arg any
	if limit > 0 {
		arg = limit
	}
	rows, err := s.pool.Query(ctx, selectRuns, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	runs, err := pgx.CollectRows(rows, scanRun)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.CollectableRow) (*status.Snapshot, error) {
	var (
		id         uuid.UUID
		startedAt  time.Time
		finishedAt *time.Time
		cancelled  bool
		phase      string
		lastModule int
		counters   []byte
	)
	if err := row.Scan(&id, &startedAt, &finishedAt, &cancelled, &phase, &lastModule, &counters); err != nil {
		return nil, err
	}
	snap := &status.Snapshot{
		RunID:        id,
		StartedAt:    startedAt,
		FinishedAt:   finishedAt,
		Cancelled:    cancelled,
		Phase:        status.Phase(phase),
		LastModuleID: lastModule,
		Counters:     map[catalog.EntityKind]status.Counters{},
	}
	if err := json.Unmarshal(counters, &snap.Counters); err != nil {
		return nil, fmt.Errorf("failed to decode counters of run %s: %w", id, err)
	}
	return snap, nil
}
