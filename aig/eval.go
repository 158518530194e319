package aig

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Eval computes the output and next-latch valuations of the circuit for
// one step. Every input must be given a value; latch entries missing
// from latches (or the whole map, when nil) default to the latch's
// initial value.
func (c Circuit) Eval(inputs map[string]bool, latches map[string]bool) (outs, next map[string]bool, err error) {
	f := c.Flatten()
	vals := bitset.New(uint(f.MaxVar()) + 1)

	v := uint(1)
	for _, name := range f.Inputs {
		b, ok := inputs[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: missing input %q", ErrUnknownName, name)
		}
		vals.SetTo(v, b)
		v++
	}
	for _, l := range f.Latches {
		b, ok := latches[l.Name]
		if !ok {
			b = l.Init
		}
		vals.SetTo(v, b)
		v++
	}
	for _, g := range f.Ands {
		vals.SetTo(v, litVal(vals, g.Lhs) && litVal(vals, g.Rhs))
		v++
	}

	outs = make(map[string]bool, len(f.Outputs))
	for _, p := range f.Outputs {
		outs[p.Name] = litVal(vals, p.Lit)
	}
	next = make(map[string]bool, len(f.Latches))
	for _, l := range f.Latches {
		next[l.Name] = litVal(vals, l.Next)
	}
	return outs, next, nil
}

// litVal decodes a literal against the computed variable values.
// Variable 0 is the constant false.
func litVal(vals *bitset.BitSet, lit uint) bool {
	b := vals.Test(lit / 2)
	if lit/2 == 0 {
		b = false
	}
	if lit&1 == 1 {
		return !b
	}
	return b
}
