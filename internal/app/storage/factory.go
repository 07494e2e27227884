// Package storage builds the storage-dependent components of the sync engine as a family:
// the catalog gateway and the run persistence always share one backend.
package storage

import (
	"context"
	"fmt"

	"github.com/labcatalog/catalog-sync/internal/config"
	"github.com/labcatalog/catalog-sync/internal/status"
	"github.com/labcatalog/catalog-sync/internal/storage"
)

//go:generate mockgen -destination=mocks/mock_factory.go -package=mocks -source=factory.go Factory

// Factory creates storage-dependent components.
//
// The factory encapsulates the creation of:
// - Gateway: writes the synced catalog
// - RunPersistence: stores run snapshots
//
// It also manages the lifecycle of storage resources such as database connections.
type Factory interface {
	// CreateGateway creates the catalog gateway
	CreateGateway(ctx context.Context) (storage.Gateway, error)

	// CreateRunPersistence creates the run snapshot store
	CreateRunPersistence(ctx context.Context) (status.RunPersistence, error)

	// Cleanup releases any resources held by this factory.
	// Should be called when the application shuts down.
	Cleanup()
}

// NewStorageFactory creates a storage factory based on the configured storage type
func NewStorageFactory(ctx context.Context, cfg *config.Config, opts ...DatabaseFactoryOption) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.GetStorageType() {
	case config.StorageTypeDatabase:
		return NewDatabaseFactory(ctx, cfg, opts...)
	case config.StorageTypeMemory:
		return NewMemoryFactory(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.GetStorageType())
	}
}
