package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/labcatalog/catalog-sync/internal/config"
	"github.com/labcatalog/catalog-sync/internal/status"
	"github.com/labcatalog/catalog-sync/internal/storage"
	"github.com/labcatalog/catalog-sync/internal/storage/memory"
)

// MemoryFactory keeps the catalog in process and writes run snapshots to the status directory.
// It serves dry runs where no database is configured.
type MemoryFactory struct {
	gateway     *memory.Gateway
	persistence status.RunPersistence
}

var _ Factory = (*MemoryFactory)(nil)

// NewMemoryFactory creates an in-memory storage factory, ensuring the status directory exists
func NewMemoryFactory(cfg *config.Config) (*MemoryFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	statusDir := cfg.GetStatusDir()
	if err := os.MkdirAll(statusDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create status directory %s: %w", statusDir, err)
	}

	slog.Info("Creating in-memory storage factory", "status_dir", statusDir)

	return &MemoryFactory{
		gateway:     memory.NewGateway(),
		persistence: status.NewFileRunPersistence(statusDir),
	}, nil
}

// CreateGateway returns the shared in-memory gateway
func (m *MemoryFactory) CreateGateway(_ context.Context) (storage.Gateway, error) {
	return m.gateway, nil
}

// CreateRunPersistence returns the file-based run store
func (m *MemoryFactory) CreateRunPersistence(_ context.Context) (status.RunPersistence, error) {
	return m.persistence, nil
}

// Cleanup is a no-op
func (*MemoryFactory) Cleanup() {}
