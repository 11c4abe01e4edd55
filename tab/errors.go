package tab

import "errors"

// Sentinel error kinds. Call sites wrap these with fmt.Errorf("...: %w", ...)
// so callers can branch with errors.Is while still getting a specific message.
var (
	// ErrShape reports a data/axis length mismatch: flat data whose length
	// is not the product of the axis lengths, or a shaped stream whose
	// dimensions disagree with the declared order.
	ErrShape = errors.New("shape mismatch")

	// ErrInvariant reports a violated structural invariant: non-ascending
	// or duplicate samples, an order that is not a permutation of the axis
	// keys, an empty axis, or an inconsistent concatenation.
	ErrInvariant = errors.New("invariant violation")

	// ErrIndex reports out-of-range flat or nested element access.
	ErrIndex = errors.New("index out of range")

	// ErrLookup reports an unknown field or axis name.
	ErrLookup = errors.New("unknown name")

	// ErrFormat reports a malformed or inconsistent on-disk table.
	ErrFormat = errors.New("malformed table file")

	// ErrOutOfBounds reports an interpolation query outside the sampled
	// envelope under the Fatal boundary policy.
	ErrOutOfBounds = errors.New("query outside sampled envelope")

	// ErrReadOnly reports a write attempted on a non-writable collection.
	ErrReadOnly = errors.New("collection is read-only")

	// ErrNoPath reports a write attempted without a resolved path.
	ErrNoPath = errors.New("collection has no path")
)
