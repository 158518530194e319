// Package aigbv provides a word-level (bit-vector) layer on top of the
// and-inverter graph circuits of package aig.
//
// A word circuit groups the bit wires of an underlying aig.Circuit into
// named bundles, so that callers compose and evaluate circuits in terms
// of word signals. Arithmetic, comparison, shift and bitwise operations
// are synthesized down to primitive and/inverter gates; the expression
// algebra (UnsignedExpr, SignedExpr) builds such circuits with the look
// of ordinary arithmetic.
//
// All values are immutable: every operator returns a new circuit and
// never mutates its operands.
package aigbv

import (
	"github.com/blang/semver/v4"
)

// Version of the library and of its serialization format.
var Version = semver.MustParse("0.1.0")
