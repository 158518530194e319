package aigbv

import "errors"

// All construction-time contract violations surface as one of the
// sentinel errors below, wrapped with context. None of them is a
// recoverable runtime condition: the offending composition must be
// fixed by the caller.
var (
	// ErrNameCollision signals a relabeling or disjoint union that would
	// duplicate a word or bit name.
	ErrNameCollision = errors.New("aigbv: name collision")
	// ErrInterfaceConflict signals a sequential or parallel composition
	// violating the latch/output disjointness precondition.
	ErrInterfaceConflict = errors.New("aigbv: interface conflict")
	// ErrWidthMismatch signals operands or ports of unequal bit width.
	ErrWidthMismatch = errors.New("aigbv: width mismatch")
	// ErrMalformedIndexing signals raw indexed bit names that do not form
	// a contiguous, duplicate-free 0..n-1 range.
	ErrMalformedIndexing = errors.New("aigbv: malformed indexing")
	// ErrUnknownSignal signals a lookup of a word name absent from the
	// relevant bundle map.
	ErrUnknownSignal = errors.New("aigbv: unknown signal")
	// ErrUnsupportedIndex signals an out-of-bounds or otherwise
	// unsupported slice request.
	ErrUnsupportedIndex = errors.New("aigbv: unsupported index")
)
