package queue

import "errors"

var (
	// ErrValidation marks input rejected before any state change.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned by direct lookups of a missing entry.
	ErrNotFound = errors.New("queue item not found")
)

// ValidationError carries a user-visible message and matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }

func (e ValidationError) Is(target error) bool { return target == ErrValidation }
