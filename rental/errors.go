package rental

import (
	"errors"
	"fmt"

	"github.com/warp/rent-ledger/ledger"
)

var (
	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write would break a uniqueness or
	// occupancy rule (e.g. leasing an occupied unit).
	ErrConflict = errors.New("conflict")
)

// NotFoundError names the missing record.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError. Store implementations use it so callers
// can match with errors.Is(err, ErrNotFound).
func NotFound(entity EntityType, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ledger.ErrInvalidInput) ||
		errors.Is(err, ErrConflict)
}
