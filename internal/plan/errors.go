package plan

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when a request violates a precondition.
// Nothing is computed when it is returned.
var ErrInvalidInput = errors.New("invalid input")

// InputError describes which field of a request was rejected.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// Is reports true for ErrInvalidInput so callers can match on the kind.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, format string, args ...any) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
