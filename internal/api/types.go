package api

import (
	"github.com/labcatalog/catalog-sync/internal/status"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string `json:"status" example:"ready"`
	Error  string `json:"error,omitempty"`
}

// LatestRunResponse describes the most recent sweep and whether one is in progress
type LatestRunResponse struct {
	Running bool             `json:"running"`
	Run     *status.Snapshot `json:"run"`
	Totals  status.Counters  `json:"totals"`
}

// RunsResponse lists persisted sweeps, most recent first
type RunsResponse struct {
	Runs []*status.Snapshot `json:"runs"`
	// Count is the number of runs returned
	Count int `json:"count"`
}

// TriggerResponse is returned when a manual sweep was accepted
type TriggerResponse struct {
	Status string `json:"status" example:"accepted"`
}
