// Package normalize maps raw remote payloads onto catalog records.
//
// Every function is total: it returns exactly one record or exactly one
// *RejectionError, never a partially filled record.
package normalize

import (
	"errors"
	"fmt"

	"github.com/labcatalog/catalog-sync/internal/catalog"
)

var (
	// ErrUnknownDifficulty is returned when a difficulty label matches no known value
	ErrUnknownDifficulty = errors.New("unknown difficulty")

	// ErrMalformed is returned when a payload does not have the expected shape
	ErrMalformed = errors.New("malformed payload")
)

// RejectionError describes why a payload was not turned into a record
type RejectionError struct {
	Kind catalog.EntityKind
	// ID is the remote id when it could be read, 0 otherwise
	ID  int
	Err error
}

// Error returns the error message
func (e *RejectionError) Error() string {
	if e.ID > 0 {
		return fmt.Sprintf("%s %d rejected: %v", e.Kind, e.ID, e.Err)
	}
	return fmt.Sprintf("%s rejected: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying cause
func (e *RejectionError) Unwrap() error {
	return e.Err
}

func reject(kind catalog.EntityKind, id int, err error) *RejectionError {
	return &RejectionError{Kind: kind, ID: id, Err: err}
}

func malformed(kind catalog.EntityKind, id int, format string, args ...any) *RejectionError {
	return reject(kind, id, fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...)))
}

// CheckID rejects a record whose id differs from the id it was fetched under
func CheckID(kind catalog.EntityKind, requested, got int) error {
	if requested == got {
		return nil
	}
	return malformed(kind, requested, "fetched as id %d but payload carries id %d", requested, got)
}
