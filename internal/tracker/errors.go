package tracker

import "errors"

// Failure kinds. Every operation error wraps exactly one of these so
// callers can classify failures with errors.Is without parsing
// messages.
var (
	// ErrValidation marks invalid input: priority out of range, bad
	// enum value, missing required identifier. Raised before any lock
	// is taken where possible.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an unknown issue ID on a strict path, or a
	// missing dependency edge on removal. Raised after the fresh index
	// is loaded, before anything is persisted.
	ErrNotFound = errors.New("not found")

	// ErrCycle marks a dependency insertion that would create a cycle.
	// The stored graph is left untouched.
	ErrCycle = errors.New("dependency would create a cycle")
)
