// Package storage defines the persistence gateway the sync engine writes the
// catalog through, and the factory that builds it together with run persistence.
package storage

import (
	"context"
	"errors"

	"github.com/labcatalog/catalog-sync/internal/catalog"
)

// ErrParentNotFound is returned when a link or child set is replaced for a parent that is not stored
var ErrParentNotFound = errors.New("parent entity not found")

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks -source=gateway.go Gateway

// Gateway persists catalog records. Every write is an upsert keyed on the remote id,
// and writing identical data is a no-op. Implementations are safe for concurrent
// calls on different ids.
type Gateway interface {
	// UpsertModule creates or refreshes a module
	UpsertModule(ctx context.Context, module catalog.Module) error

	// UpsertMachine creates or refreshes a machine
	UpsertMachine(ctx context.Context, machine catalog.Machine) error

	// UpsertExam creates or refreshes an exam
	UpsertExam(ctx context.Context, exam catalog.Exam) error

	// UpsertVulnerability creates or refreshes a vulnerability
	UpsertVulnerability(ctx context.Context, vuln catalog.Vulnerability) error

	// ReplaceUnits atomically makes units the complete unit set of the module
	ReplaceUnits(ctx context.Context, moduleID int, units []catalog.Unit) error

	// ReplaceLinks atomically makes childIDs the complete link set of the parent.
	// Children that are not stored are skipped. It returns the number of links kept.
	ReplaceLinks(ctx context.Context, kind catalog.LinkKind, parentID int, childIDs []int) (int, error)

	// ReplaceLabels atomically makes labels the complete label set of the given kind for a machine
	ReplaceLabels(ctx context.Context, machineID int, kind catalog.LabelKind, labels []string) error
}
