package aigbv

import (
	"fmt"

	"github.com/consensys/aigbv/aig"
	"github.com/consensys/aigbv/debug"
	"github.com/consensys/aigbv/logger"
)

// Gate synthesizer: primitive word circuits built by applying bit-level
// gates per bit position. Bundle maps of synthesized circuits are
// always contiguous and index ordered.
//
// Width and shift arguments are programmer-supplied constants; handing
// an impossible one to a constructor panics with the matching sentinel
// error. Index and slice bounds depend on data flow and return
// ErrUnsupportedIndex instead.

func must(c Circuit, err error) Circuit {
	if err != nil {
		if debug.Debug {
			l := logger.Logger()
			l.Error().Err(err).Msg(debug.Stack())
		}
		panic(err)
	}
	return c
}

// gateBuilder accumulates the fresh input nodes of one synthesized
// word circuit.
type gateBuilder struct {
	nodes  map[string]*aig.Node
	widths map[string]int
}

func newGateBuilder() *gateBuilder {
	return &gateBuilder{nodes: map[string]*aig.Node{}, widths: map[string]int{}}
}

// word registers an input bundle and returns its bit signals.
func (g *gateBuilder) word(name string, width int) []aig.Ref {
	if width < 1 {
		panic(fmt.Errorf("%w: wordlen must be positive, got %d", ErrWidthMismatch, width))
	}
	if _, dup := g.widths[name]; dup {
		panic(fmt.Errorf("%w: input %q used twice in one gate", ErrNameCollision, name))
	}
	g.widths[name] = width
	b := Bundle{Root: name, Width: width}
	refs := make([]aig.Ref, width)
	for i := range refs {
		n := aig.NewInput()
		g.nodes[b.Name(i)] = n
		refs[i] = n.Ref()
	}
	return refs
}

// build assembles the circuit with the given output bundles.
func (g *gateBuilder) build(outputs map[string][]aig.Ref) Circuit {
	outRefs := map[string]aig.Ref{}
	outWidths := map[string]int{}
	for name, refs := range outputs {
		b := Bundle{Root: name, Width: len(refs)}
		outWidths[name] = len(refs)
		for i, r := range refs {
			outRefs[b.Name(i)] = r
		}
	}
	a, err := aig.New(g.nodes, outRefs, nil)
	if err != nil {
		panic(err)
	}
	return Circuit{Aig: a, Imap: NewBundleMap(g.widths), Omap: NewBundleMap(outWidths)}
}

// IdentityGate passes a word input through unchanged.
func IdentityGate(wordlen int, input, output string) Circuit {
	g := newGateBuilder()
	x := g.word(input, wordlen)
	return g.build(map[string][]aig.Ref{output: x})
}

// SourceGate is a constant word source holding the two's-complement
// encoding of value.
func SourceGate(wordlen int, value int64, output string) Circuit {
	bits, err := EncodeInt(wordlen, value)
	if err != nil {
		panic(err)
	}
	refs := make([]aig.Ref, wordlen)
	for i, b := range bits {
		refs[i] = aig.Const(b)
	}
	g := newGateBuilder()
	return g.build(map[string][]aig.Ref{output: refs})
}

// SinkGate consumes the named word inputs and drives nothing.
func SinkGate(wordlen int, inputs []string) Circuit {
	g := newGateBuilder()
	for _, name := range inputs {
		g.word(name, wordlen)
	}
	return g.build(nil)
}

// TeeGate fans one word input out into several identical outputs.
func TeeGate(wordlen int, input string, outputs []string) Circuit {
	g := newGateBuilder()
	x := g.word(input, wordlen)
	outs := make(map[string][]aig.Ref, len(outputs))
	for _, name := range outputs {
		outs[name] = x
	}
	return g.build(outs)
}

// RepeatGate broadcasts a 1-bit input into a times-bit output.
// Multi-bit operands are not supported.
func RepeatGate(times int, input, output string) Circuit {
	if times < 1 {
		panic(fmt.Errorf("%w: repeat count must be positive, got %d", ErrWidthMismatch, times))
	}
	g := newGateBuilder()
	x := g.word(input, 1)
	refs := make([]aig.Ref, times)
	for i := range refs {
		refs[i] = x[0]
	}
	return g.build(map[string][]aig.Ref{output: refs})
}

// SliceGate extracts bit positions [start, stop) of a word input into a
// narrower output. Stepped ranges are unsupported by construction.
func SliceGate(wordlen, start, stop int, input, output string) (Circuit, error) {
	if start < 0 || start >= stop || stop > wordlen {
		return Circuit{}, fmt.Errorf("%w: slice [%d:%d] of a %d-bit word", ErrUnsupportedIndex, start, stop, wordlen)
	}
	g := newGateBuilder()
	x := g.word(input, wordlen)
	return g.build(map[string][]aig.Ref{output: x[start:stop]}), nil
}

// IndexGate extracts the single bit at idx into a 1-bit output.
func IndexGate(wordlen, idx int, input, output string) (Circuit, error) {
	return SliceGate(wordlen, idx, idx+1, input, output)
}

// CombineGate concatenates two words into one wider output. The left
// operand occupies the low-order bits, the right operand the high-order
// bits.
func CombineGate(leftLen int, left string, rightLen int, right, output string) Circuit {
	g := newGateBuilder()
	l := g.word(left, leftLen)
	r := g.word(right, rightLen)
	return g.build(map[string][]aig.Ref{output: append(append([]aig.Ref{}, l...), r...)})
}

// bitwiseBinary applies op at each bit position independently.
func bitwiseBinary(wordlen int, left, right, output string, op func(aig.Ref, aig.Ref) aig.Ref) Circuit {
	g := newGateBuilder()
	l := g.word(left, wordlen)
	r := g.word(right, wordlen)
	refs := make([]aig.Ref, wordlen)
	for i := range refs {
		refs[i] = op(l[i], r[i])
	}
	return g.build(map[string][]aig.Ref{output: refs})
}

// BitwiseAndGate is the per-bit conjunction of two equal-width words.
func BitwiseAndGate(wordlen int, left, right, output string) Circuit {
	return bitwiseBinary(wordlen, left, right, output, aig.Ref.And)
}

// BitwiseOrGate is the per-bit disjunction of two equal-width words.
func BitwiseOrGate(wordlen int, left, right, output string) Circuit {
	return bitwiseBinary(wordlen, left, right, output, aig.Ref.Or)
}

// BitwiseXorGate is the per-bit exclusive or of two equal-width words.
func BitwiseXorGate(wordlen int, left, right, output string) Circuit {
	return bitwiseBinary(wordlen, left, right, output, aig.Ref.Xor)
}

// BitwiseNotGate inverts every bit of a word input.
func BitwiseNotGate(wordlen int, input, output string) Circuit {
	g := newGateBuilder()
	x := g.word(input, wordlen)
	refs := make([]aig.Ref, wordlen)
	for i := range refs {
		refs[i] = x[i].Not()
	}
	return g.build(map[string][]aig.Ref{output: refs})
}

// orTree folds refs through a balanced or tree.
func orTree(refs []aig.Ref) aig.Ref {
	switch len(refs) {
	case 0:
		return aig.False()
	case 1:
		return refs[0]
	}
	mid := len(refs) / 2
	return orTree(refs[:mid]).Or(orTree(refs[mid:]))
}

// xorTree folds refs through a balanced xor tree.
func xorTree(refs []aig.Ref) aig.Ref {
	switch len(refs) {
	case 0:
		return aig.False()
	case 1:
		return refs[0]
	}
	mid := len(refs) / 2
	return xorTree(refs[:mid]).Xor(xorTree(refs[mid:]))
}

// ReduceXorGate reduces a word to its 1-bit parity, popcount mod 2.
func ReduceXorGate(wordlen int, input, output string) Circuit {
	g := newGateBuilder()
	x := g.word(input, wordlen)
	return g.build(map[string][]aig.Ref{output: {xorTree(x)}})
}

// DotMod2Gate is the 1-bit dot product of two words modulo 2.
func DotMod2Gate(wordlen int, left, right, output string) Circuit {
	g := newGateBuilder()
	l := g.word(left, wordlen)
	r := g.word(right, wordlen)
	ands := make([]aig.Ref, wordlen)
	for i := range ands {
		ands[i] = l[i].And(r[i])
	}
	return g.build(map[string][]aig.Ref{output: {xorTree(ands)}})
}

// NeGate is the 1-bit "words differ" predicate: per-bit xor reduced
// through an or tree.
func NeGate(wordlen int, left, right, output string) Circuit {
	g := newGateBuilder()
	l := g.word(left, wordlen)
	r := g.word(right, wordlen)
	xors := make([]aig.Ref, wordlen)
	for i := range xors {
		xors[i] = l[i].Xor(r[i])
	}
	return g.build(map[string][]aig.Ref{output: {orTree(xors)}})
}

// EqGate is the negation of NeGate.
func EqGate(wordlen int, left, right, output string) Circuit {
	g := newGateBuilder()
	l := g.word(left, wordlen)
	r := g.word(right, wordlen)
	xors := make([]aig.Ref, wordlen)
	for i := range xors {
		xors[i] = l[i].Xor(r[i])
	}
	return g.build(map[string][]aig.Ref{output: {orTree(xors).Not()}})
}

// IsNonzeroGate reduces a word to the 1-bit "any bit set" predicate.
func IsNonzeroGate(wordlen int, input, output string) Circuit {
	g := newGateBuilder()
	x := g.word(input, wordlen)
	return g.build(map[string][]aig.Ref{output: {orTree(x)}})
}

// ReduceAndGate reduces a word to the 1-bit "every bit set" predicate.
func ReduceAndGate(wordlen int, input, output string) Circuit {
	g := newGateBuilder()
	x := g.word(input, wordlen)
	nots := make([]aig.Ref, wordlen)
	for i := range nots {
		nots[i] = x[i].Not()
	}
	return g.build(map[string][]aig.Ref{output: {orTree(nots).Not()}})
}

// IsZeroGate is the negation of IsNonzeroGate.
func IsZeroGate(wordlen int, input, output string) Circuit {
	g := newGateBuilder()
	x := g.word(input, wordlen)
	return g.build(map[string][]aig.Ref{output: {orTree(x).Not()}})
}

// rippleAdder chains single-bit full adders, carry propagated from the
// least significant position up. The full-adder primitive is
// materialized from its interchange-format description.
func rippleAdder(wordlen int, left, right, output, carryOut string, carryIn bool) (Circuit, error) {
	if wordlen < 1 {
		panic(fmt.Errorf("%w: wordlen must be positive, got %d", ErrWidthMismatch, wordlen))
	}
	lb := Bundle{Root: left, Width: wordlen}
	rb := Bundle{Root: right, Width: wordlen}
	ob := Bundle{Root: output, Width: wordlen}

	carries := make([]string, wordlen+1)
	for i := range carries {
		carries[i] = FreshName()
	}
	chain := aig.Source(map[string]bool{carries[0]: carryIn})
	for i := 0; i < wordlen; i++ {
		fa, err := aig.FullAdder(lb.Name(i), rb.Name(i), carries[i], ob.Name(i), carries[i+1])
		if err != nil {
			return Circuit{}, err
		}
		if chain, err = chain.Compose(fa); err != nil {
			return Circuit{}, err
		}
	}

	outWidths := map[string]int{output: wordlen}
	var err error
	if carryOut == "" {
		chain, err = chain.Compose(aig.Sink([]string{carries[wordlen]}))
	} else {
		outWidths[carryOut] = 1
		chain, err = chain.Relabel(aig.KindOutput, map[string]string{
			carries[wordlen]: Bundle{Root: carryOut, Width: 1}.Name(0),
		})
	}
	if err != nil {
		return Circuit{}, err
	}
	return Circuit{
		Aig:  chain,
		Imap: NewBundleMap(map[string]int{left: wordlen, right: wordlen}),
		Omap: NewBundleMap(outWidths),
	}, nil
}

// AddGate is a ripple-carry adder; the trailing carry is discarded.
func AddGate(wordlen int, left, right, output string) Circuit {
	return must(rippleAdder(wordlen, left, right, output, "", false))
}

// AddGateWithCarry is AddGate with the trailing carry kept as an extra
// 1-bit output.
func AddGateWithCarry(wordlen int, left, right, output, carryOut string) Circuit {
	return must(rippleAdder(wordlen, left, right, output, carryOut, false))
}

// SubtractGate computes left - right through the two's-complement
// identity a - b = a + ^b + 1; the +1 rides in on the adder's carry-in.
func SubtractGate(wordlen int, left, right, output string) Circuit {
	tmp := FreshName()
	not := BitwiseNotGate(wordlen, right, tmp)
	add := must(rippleAdder(wordlen, left, tmp, output, "", true))
	return must(not.Compose(add))
}

// NegateGate computes the two's-complement negation ^x + 1.
func NegateGate(wordlen int, input, output string) Circuit {
	tmp, zero := FreshName(), FreshName()
	not := BitwiseNotGate(wordlen, input, tmp)
	src := SourceGate(wordlen, 0, zero)
	add := must(rippleAdder(wordlen, tmp, zero, output, "", true))
	return must(must(not.Par(src)).Compose(add))
}

// AbsGate maps a word to its two's-complement absolute value. The
// minimum value maps to itself, as usual.
func AbsGate(wordlen int, input, output string) Circuit {
	g := newGateBuilder()
	x := g.word(input, wordlen)
	carry := aig.True()
	neg := make([]aig.Ref, wordlen)
	for i := range neg {
		nb := x[i].Not()
		neg[i] = nb.Xor(carry)
		carry = nb.And(carry)
	}
	sign := x[wordlen-1]
	refs := make([]aig.Ref, wordlen)
	for i := range refs {
		refs[i] = muxRef(sign, neg[i], x[i])
	}
	return g.build(map[string][]aig.Ref{output: refs})
}

// muxRef selects cons when test holds, alt otherwise, through the
// classic masking identity (^t | cons) & (t | alt).
func muxRef(test, cons, alt aig.Ref) aig.Ref {
	return test.Not().Or(cons).And(test.Or(alt))
}

// ITEGate is a word multiplexer: a 1-bit test selecting between two
// equal-width branches. The test bit is broadcast to full width and the
// branches are masked per bit.
func ITEGate(wordlen int, test, consequent, alternative, output string) Circuit {
	g := newGateBuilder()
	t := g.word(test, 1)[0]
	cons := g.word(consequent, wordlen)
	alt := g.word(alternative, wordlen)
	refs := make([]aig.Ref, wordlen)
	for i := range refs {
		refs[i] = muxRef(t, cons[i], alt[i])
	}
	return g.build(map[string][]aig.Ref{output: refs})
}

func checkShift(shift int) {
	if shift < 0 {
		panic(fmt.Errorf("%w: negative shift %d", ErrUnsupportedIndex, shift))
	}
}

// LeftShiftGate shifts toward the most significant bit, filling with
// constant zeros. Only rewiring and constant sources, no gates.
func LeftShiftGate(wordlen, shift int, input, output string) Circuit {
	checkShift(shift)
	g := newGateBuilder()
	x := g.word(input, wordlen)
	refs := make([]aig.Ref, wordlen)
	for i := range refs {
		if i < shift {
			refs[i] = aig.False()
		} else {
			refs[i] = x[i-shift]
		}
	}
	return g.build(map[string][]aig.Ref{output: refs})
}

// LogicalRightShiftGate shifts toward the least significant bit,
// filling with constant zeros.
func LogicalRightShiftGate(wordlen, shift int, input, output string) Circuit {
	checkShift(shift)
	g := newGateBuilder()
	x := g.word(input, wordlen)
	refs := make([]aig.Ref, wordlen)
	for i := range refs {
		if i+shift < wordlen {
			refs[i] = x[i+shift]
		} else {
			refs[i] = aig.False()
		}
	}
	return g.build(map[string][]aig.Ref{output: refs})
}

// ArithmeticRightShiftGate shifts toward the least significant bit,
// filling with the sign bit.
func ArithmeticRightShiftGate(wordlen, shift int, input, output string) Circuit {
	checkShift(shift)
	g := newGateBuilder()
	x := g.word(input, wordlen)
	refs := make([]aig.Ref, wordlen)
	for i := range refs {
		if i+shift < wordlen {
			refs[i] = x[i+shift]
		} else {
			refs[i] = x[wordlen-1]
		}
	}
	return g.build(map[string][]aig.Ref{output: refs})
}

// majRef is the majority of three bits, the carry function of a full
// adder.
func majRef(a, b, c aig.Ref) aig.Ref {
	return a.And(b).Or(c.And(a.Or(b)))
}

// geRefs is the carry out of l + ^r + 1: one exactly when l >= r as
// unsigned words.
func geRefs(l, r []aig.Ref) aig.Ref {
	carry := aig.True()
	for i := range l {
		carry = majRef(l[i], r[i].Not(), carry)
	}
	return carry
}

// UnsignedGeGate is the 1-bit unsigned "left >= right" predicate,
// derived from the borrow of a subtraction.
func UnsignedGeGate(wordlen int, left, right, output string) Circuit {
	g := newGateBuilder()
	l := g.word(left, wordlen)
	r := g.word(right, wordlen)
	return g.build(map[string][]aig.Ref{output: {geRefs(l, r)}})
}

// UnsignedLeGate is the 1-bit unsigned "left <= right" predicate.
func UnsignedLeGate(wordlen int, left, right, output string) Circuit {
	g := newGateBuilder()
	l := g.word(left, wordlen)
	r := g.word(right, wordlen)
	return g.build(map[string][]aig.Ref{output: {geRefs(r, l)}})
}

// flipSign inverts the most significant bit, mapping two's-complement
// order onto unsigned order.
func flipSign(x []aig.Ref) []aig.Ref {
	flipped := append([]aig.Ref{}, x...)
	flipped[len(flipped)-1] = flipped[len(flipped)-1].Not()
	return flipped
}

// SignedGeGate is the 1-bit signed "left >= right" predicate: the sign
// bits carry negative weight, so both operands have them flipped before
// the unsigned comparison.
func SignedGeGate(wordlen int, left, right, output string) Circuit {
	g := newGateBuilder()
	l := g.word(left, wordlen)
	r := g.word(right, wordlen)
	return g.build(map[string][]aig.Ref{output: {geRefs(flipSign(l), flipSign(r))}})
}

// SignedLeGate is the 1-bit signed "left <= right" predicate.
func SignedLeGate(wordlen int, left, right, output string) Circuit {
	g := newGateBuilder()
	l := g.word(left, wordlen)
	r := g.word(right, wordlen)
	return g.build(map[string][]aig.Ref{output: {geRefs(flipSign(r), flipSign(l))}})
}
