// Package status provides run statistics and their persistence.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:generate mockgen -destination=mocks/mock_run_persistence.go -package=mocks -source=persistence.go RunPersistence

const (
	// RunsDirName is the directory under the base path holding one file per run
	RunsDirName = "runs"

	runFileTimeFormat = "20060102T150405.000000000Z"
)

// RunPersistence stores run snapshots
type RunPersistence interface {
	// SaveRun creates or replaces the snapshot of a run
	SaveRun(ctx context.Context, snap *Snapshot) error

	// LoadLatest returns the snapshot of the most recently started run,
	// or nil when no run was ever recorded
	LoadLatest(ctx context.Context) (*Snapshot, error)

	// ListRuns returns up to limit snapshots, most recent first. A limit <= 0 returns all runs.
	ListRuns(ctx context.Context, limit int) ([]*Snapshot, error)
}

// fileRunPersistence implements RunPersistence using local filesystem
type fileRunPersistence struct {
	basePath string
}

// NewFileRunPersistence creates a new file-based run persistence
// basePath is the directory under which run snapshot files are stored
func NewFileRunPersistence(basePath string) RunPersistence {
	return &fileRunPersistence{
		basePath: basePath,
	}
}

func (f *fileRunPersistence) runsDir() string {
	return filepath.Join(f.basePath, RunsDirName)
}

// fileName sorts lexically in start order
func fileName(snap *Snapshot) string {
	return snap.StartedAt.UTC().Format(runFileTimeFormat) + "_" + snap.RunID.String() + ".json"
}

// SaveRun writes the snapshot to a JSON file named after its start time and run id
func (f *fileRunPersistence) SaveRun(_ context.Context, snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	dir := f.runsDir()
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create runs directory: %w", err)
	}

	filePath := filepath.Join(dir, fileName(snap))

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot of run %s: %w", snap.RunID, err)
	}

	// Write to temporary file first for atomic operation
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary snapshot file for run %s: %w", snap.RunID, err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename snapshot file for run %s: %w", snap.RunID, err)
	}

	return nil
}

// LoadLatest loads the snapshot with the most recent start time
func (f *fileRunPersistence) LoadLatest(ctx context.Context) (*Snapshot, error) {
	runs, err := f.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// ListRuns loads run snapshots, most recent first. Unreadable files are skipped.
func (f *fileRunPersistence) ListRuns(_ context.Context, limit int) ([]*Snapshot, error) {
	entries, err := os.ReadDir(f.runsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []*Snapshot{}, nil
		}
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	runs := make([]*Snapshot, 0, len(names))
	for _, name := range names {
		if limit > 0 && len(runs) >= limit {
			break
		}
		snap, err := f.load(filepath.Join(f.runsDir(), name))
		if err != nil {
			slog.Warn("Skipping unreadable run snapshot", "file", name, "error", err)
			continue
		}
		runs = append(runs, snap)
	}
	return runs, nil
}

func (*fileRunPersistence) load(path string) (*Snapshot, error) {
	// #nosec G304 -- path is built from the runs directory and a listed entry name
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
