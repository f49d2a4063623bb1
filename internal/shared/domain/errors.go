package domain

import (
	"errors"
	"fmt"
)

// Error kinds recognised at the API boundary. Concrete errors wrap one of
// these sentinels via %w so callers can classify them with errors.Is.
var (
	// ErrValidation indicates bad input shape or range.
	ErrValidation = errors.New("validation error")
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrState indicates an operation was attempted against an entity in the
	// wrong lifecycle state, such as a transition out of a terminal status.
	ErrState = errors.New("invalid state")
	// ErrStorage indicates the persistence layer failed.
	ErrStorage = errors.New("storage error")
)

// Validationf returns a formatted error classified as ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// NotFoundf returns a formatted error classified as ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

// Statef returns a formatted error classified as ErrState.
func Statef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrState}, args...)...)
}

// Storagef wraps a persistence failure in ErrStorage, keeping the cause
// available for errors.Is / errors.As.
func Storagef(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}
