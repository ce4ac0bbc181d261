package apperror

import "errors"

// Sentinel errors for the three failure classes the core distinguishes.
// Callers wrap them with fmt.Errorf("...: %w", ...) and match with errors.Is.
var (
	// ErrNotFound means a referenced user, test, or attempt does not exist.
	ErrNotFound = errors.New("not found")

	// ErrIntegrity means a lineage invariant is violated in stored data,
	// e.g. more than one attempt flagged latest for a (user, test) pair.
	// It is surfaced, never silently repaired; RebuildLineage is the
	// deliberate repair path.
	ErrIntegrity = errors.New("data integrity violation")

	// ErrInvalidArgument means malformed input, e.g. a supposedly completed
	// attempt with no completion timestamp handed to the aggregator.
	ErrInvalidArgument = errors.New("invalid argument")
)
