package types

import (
	"errors"
	"fmt"
)

// ErrValidation marks invariant violations: empty required strings, negative
// ids, malformed status values, references to things that must exist.
var ErrValidation = errors.New("validation error")

// ErrConflict marks operations that collide with existing state, such as a
// second attempt to assign a persistent id or a rename to a taken user name.
var ErrConflict = errors.New("conflict")

// Validationf builds an error that matches errors.Is(err, ErrValidation).
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Conflictf builds an error that matches errors.Is(err, ErrConflict).
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
