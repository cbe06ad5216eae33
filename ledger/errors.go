package ledger

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when a tenant or payment cannot be reconciled
// because its data is malformed. Match with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError names the offending field and value.
type InvalidInputError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field string, value any, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Value: value, Reason: reason}
}
