package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound marks the specific case of "row does not exist". Frontends
// typically map it to a 404; the service layer maps it to a soft false.
var ErrNotFound = errors.New("not found")

// ErrBackend marks faults of the underlying store: I/O errors, constraint
// violations, malformed statements. These are never retried at the core and
// never silently swallowed.
var ErrBackend = errors.New("backend failure")

// NotFoundf builds an error that matches errors.Is(err, ErrNotFound).
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// WrapBackend annotates a driver error with the failed operation and tags it
// as a backend failure. Returns nil when err is nil.
func WrapBackend(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrBackend, op, err)
}
