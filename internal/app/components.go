package app

import (
	"github.com/labcatalog/catalog-sync/internal/status"
	pkgsync "github.com/labcatalog/catalog-sync/internal/sync"
	"github.com/labcatalog/catalog-sync/internal/sync/coordinator"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Manager performs single sweeps
	Manager pkgsync.Manager

	// Coordinator schedules sweeps in serve mode
	Coordinator coordinator.Coordinator

	// Runs stores sweep snapshots
	Runs status.RunPersistence
}
