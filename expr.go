package aigbv

import (
	"fmt"
)

// Expression layer: a thin word-level algebra on top of the gate
// synthesizer. An expression is a circuit with a single designated
// output; operators fuse operand circuits with Par and wire them into
// a gate with Compose.
//
// Signedness lives in the type, not the data: UnsignedExpr and
// SignedExpr share bit-for-bit representations and differ only in
// comparison, right shift and the interpretation helpers.
//
// Expression methods panic on width mismatches and malformed indexing.
// These are construction-time programmer errors, unlike the
// data-dependent failures the Circuit API reports as error values.

type exprNode struct {
	circ   Circuit
	output string
}

func (x exprNode) size() int {
	w, _ := x.circ.Omap.Width(x.output)
	return w
}

func (x exprNode) withOutput(name string) exprNode {
	c, err := x.circ.Relabel(Output, map[string]string{x.output: name})
	if err != nil {
		panic(err)
	}
	return exprNode{circ: c, output: name}
}

func (x exprNode) eval(inputs map[string][]bool) ([]bool, error) {
	outs, _, err := x.circ.Eval(inputs, nil)
	if err != nil {
		return nil, err
	}
	return outs[x.output], nil
}

// sameCirc reports whether two operands are literally the same wire of
// the same circuit, which admits algebraic shortcuts.
func sameCirc(a, b exprNode) bool {
	return a.circ.Aig.Same(b.circ.Aig) && a.output == b.output
}

// constWire replaces e's computation with a constant word while keeping
// e's inputs alive, so the resulting expression evaluates over the same
// input interface.
func constWire(e exprNode, wordlen int, value int64) exprNode {
	out := FreshName()
	sunk := must(e.circ.Compose(SinkGate(e.size(), []string{e.output})))
	return exprNode{
		circ:   must(sunk.Par(SourceGate(wordlen, value, out))),
		output: out,
	}
}

// binOp fuses two operand circuits and feeds their outputs into gate.
func binOp(gate func(wordlen int, left, right, output string) Circuit, a, b exprNode) exprNode {
	if a.size() != b.size() {
		panic(fmt.Errorf("%w: operands are %d and %d bits wide", ErrWidthMismatch, a.size(), b.size()))
	}
	if a.output == b.output {
		b = b.withOutput(FreshName())
	}
	fused := must(a.circ.Par(b.circ))
	out := FreshName()
	g := gate(a.size(), a.output, b.output, out)
	return exprNode{circ: must(fused.Compose(g)), output: out}
}

// unOp feeds e's output into gate.
func unOp(gate func(wordlen int, input, output string) Circuit, e exprNode) exprNode {
	out := FreshName()
	return exprNode{circ: must(e.circ.Compose(gate(e.size(), e.output, out))), output: out}
}

// UnsignedExpr is a word expression under unsigned interpretation.
type UnsignedExpr struct {
	node exprNode
}

// SignedExpr is a word expression under two's-complement
// interpretation.
type SignedExpr struct {
	node exprNode
}

func atom(wordlen int, name string) exprNode {
	if name == "" {
		name = FreshName()
	}
	out := FreshName()
	return exprNode{circ: IdentityGate(wordlen, name, out), output: out}
}

// UAtom is a named unsigned input word. An empty name draws a fresh
// one.
func UAtom(wordlen int, name string) UnsignedExpr {
	return UnsignedExpr{node: atom(wordlen, name)}
}

// SAtom is a named signed input word.
func SAtom(wordlen int, name string) SignedExpr {
	return SignedExpr{node: atom(wordlen, name)}
}

func constant(wordlen int, value int64) exprNode {
	out := FreshName()
	return exprNode{circ: SourceGate(wordlen, value, out), output: out}
}

// UConst is an unsigned constant word, truncated to wordlen bits.
func UConst(wordlen int, value uint64) UnsignedExpr {
	return UnsignedExpr{node: constant(wordlen, int64(value))}
}

// SConst is a signed constant word, truncated to wordlen bits.
func SConst(wordlen int, value int64) SignedExpr {
	return SignedExpr{node: constant(wordlen, value)}
}

// Circuit returns the underlying word circuit.
func (e UnsignedExpr) Circuit() Circuit { return e.node.circ }

// Output returns the name of the expression's output word.
func (e UnsignedExpr) Output() string { return e.node.output }

// Size returns the expression's width in bits.
func (e UnsignedExpr) Size() int { return e.node.size() }

// Inputs returns the sorted input words the expression depends on.
func (e UnsignedExpr) Inputs() []string { return e.node.circ.Inputs() }

// WithOutput renames the expression's output word.
func (e UnsignedExpr) WithOutput(name string) UnsignedExpr {
	return UnsignedExpr{node: e.node.withOutput(name)}
}

// Signed reinterprets the same bits as a signed expression.
func (e UnsignedExpr) Signed() SignedExpr { return SignedExpr{node: e.node} }

// Eval evaluates the expression on word-valued inputs.
func (e UnsignedExpr) Eval(inputs map[string][]bool) ([]bool, error) {
	return e.node.eval(inputs)
}

// EvalUint evaluates the expression and decodes the result.
func (e UnsignedExpr) EvalUint(inputs map[string][]bool) (uint64, error) {
	bits, err := e.node.eval(inputs)
	if err != nil {
		return 0, err
	}
	return DecodeUint(bits)
}

// Add is modular addition.
func (e UnsignedExpr) Add(other UnsignedExpr) UnsignedExpr {
	return UnsignedExpr{node: binOp(AddGate, e.node, other.node)}
}

// Sub is modular subtraction.
func (e UnsignedExpr) Sub(other UnsignedExpr) UnsignedExpr {
	if sameCirc(e.node, other.node) {
		return UnsignedExpr{node: constWire(e.node, e.Size(), 0)}
	}
	return UnsignedExpr{node: binOp(SubtractGate, e.node, other.node)}
}

// And is per-bit conjunction.
func (e UnsignedExpr) And(other UnsignedExpr) UnsignedExpr {
	if sameCirc(e.node, other.node) {
		return e
	}
	return UnsignedExpr{node: binOp(BitwiseAndGate, e.node, other.node)}
}

// Or is per-bit disjunction.
func (e UnsignedExpr) Or(other UnsignedExpr) UnsignedExpr {
	if sameCirc(e.node, other.node) {
		return e
	}
	return UnsignedExpr{node: binOp(BitwiseOrGate, e.node, other.node)}
}

// Xor is per-bit exclusive or.
func (e UnsignedExpr) Xor(other UnsignedExpr) UnsignedExpr {
	if sameCirc(e.node, other.node) {
		return UnsignedExpr{node: constWire(e.node, e.Size(), 0)}
	}
	return UnsignedExpr{node: binOp(BitwiseXorGate, e.node, other.node)}
}

// Not is per-bit inversion.
func (e UnsignedExpr) Not() UnsignedExpr {
	return UnsignedExpr{node: unOp(BitwiseNotGate, e.node)}
}

// DotMod2 is the 1-bit dot product of two words modulo 2. Applied to
// itself it reduces to the word's parity.
func (e UnsignedExpr) DotMod2(other UnsignedExpr) UnsignedExpr {
	if sameCirc(e.node, other.node) {
		return UnsignedExpr{node: unOp(ReduceXorGate, e.node)}
	}
	return UnsignedExpr{node: binOp(DotMod2Gate, e.node, other.node)}
}

// Equals is the 1-bit equality predicate.
func (e UnsignedExpr) Equals(other UnsignedExpr) UnsignedExpr {
	if sameCirc(e.node, other.node) {
		return UnsignedExpr{node: constWire(e.node, 1, 1)}
	}
	return UnsignedExpr{node: binOp(EqGate, e.node, other.node)}
}

// NotEquals is the 1-bit inequality predicate.
func (e UnsignedExpr) NotEquals(other UnsignedExpr) UnsignedExpr {
	if sameCirc(e.node, other.node) {
		return UnsignedExpr{node: constWire(e.node, 1, 0)}
	}
	return UnsignedExpr{node: binOp(NeGate, e.node, other.node)}
}

// Ge is the 1-bit unsigned "e >= other" predicate.
func (e UnsignedExpr) Ge(other UnsignedExpr) UnsignedExpr {
	if sameCirc(e.node, other.node) {
		return UnsignedExpr{node: constWire(e.node, 1, 1)}
	}
	return UnsignedExpr{node: binOp(UnsignedGeGate, e.node, other.node)}
}

// Le is the 1-bit unsigned "e <= other" predicate.
func (e UnsignedExpr) Le(other UnsignedExpr) UnsignedExpr {
	if sameCirc(e.node, other.node) {
		return UnsignedExpr{node: constWire(e.node, 1, 1)}
	}
	return UnsignedExpr{node: binOp(UnsignedLeGate, e.node, other.node)}
}

// Lt is the 1-bit unsigned "e < other" predicate.
func (e UnsignedExpr) Lt(other UnsignedExpr) UnsignedExpr {
	return e.Ge(other).Not()
}

// Gt is the 1-bit unsigned "e > other" predicate.
func (e UnsignedExpr) Gt(other UnsignedExpr) UnsignedExpr {
	return e.Le(other).Not()
}

// IsNonzero is the 1-bit "any bit set" predicate.
func (e UnsignedExpr) IsNonzero() UnsignedExpr {
	return UnsignedExpr{node: unOp(IsNonzeroGate, e.node)}
}

// IsZero is the 1-bit "no bit set" predicate.
func (e UnsignedExpr) IsZero() UnsignedExpr {
	return UnsignedExpr{node: unOp(IsZeroGate, e.node)}
}

// ShiftLeft shifts toward the most significant bit, zero filled.
func (e UnsignedExpr) ShiftLeft(shift int) UnsignedExpr {
	gate := func(wordlen int, input, output string) Circuit {
		return LeftShiftGate(wordlen, shift, input, output)
	}
	return UnsignedExpr{node: unOp(gate, e.node)}
}

// ShiftRight shifts toward the least significant bit, zero filled.
func (e UnsignedExpr) ShiftRight(shift int) UnsignedExpr {
	gate := func(wordlen int, input, output string) Circuit {
		return LogicalRightShiftGate(wordlen, shift, input, output)
	}
	return UnsignedExpr{node: unOp(gate, e.node)}
}

// Concat appends other's bits above e's: e occupies the low-order
// bits of the result.
func (e UnsignedExpr) Concat(other UnsignedExpr) UnsignedExpr {
	return UnsignedExpr{node: concat(e.node, other.node)}
}

func concat(a, b exprNode) exprNode {
	if a.output == b.output {
		b = b.withOutput(FreshName())
	}
	fused := must(a.circ.Par(b.circ))
	out := FreshName()
	g := CombineGate(a.size(), a.output, b.size(), b.output, out)
	return exprNode{circ: must(fused.Compose(g)), output: out}
}

// Index extracts the single bit at idx.
func (e UnsignedExpr) Index(idx int) UnsignedExpr {
	return UnsignedExpr{node: index(e.node, idx)}
}

// Slice extracts bit positions [start, stop).
func (e UnsignedExpr) Slice(start, stop int) UnsignedExpr {
	return UnsignedExpr{node: slice(e.node, start, stop)}
}

// Repeat broadcasts a 1-bit expression into a times-bit word.
func (e UnsignedExpr) Repeat(times int) UnsignedExpr {
	return UnsignedExpr{node: repeat(e.node, times)}
}

func index(e exprNode, idx int) exprNode {
	return slice(e, idx, idx+1)
}

func slice(e exprNode, start, stop int) exprNode {
	out := FreshName()
	g, err := SliceGate(e.size(), start, stop, e.output, out)
	if err != nil {
		panic(err)
	}
	return exprNode{circ: must(e.circ.Compose(g)), output: out}
}

func repeat(e exprNode, times int) exprNode {
	if e.size() != 1 {
		panic(fmt.Errorf("%w: repeat needs a 1-bit operand, got %d bits", ErrWidthMismatch, e.size()))
	}
	out := FreshName()
	return exprNode{circ: must(e.circ.Compose(RepeatGate(times, e.output, out))), output: out}
}

// Circuit returns the underlying word circuit.
func (e SignedExpr) Circuit() Circuit { return e.node.circ }

// Output returns the name of the expression's output word.
func (e SignedExpr) Output() string { return e.node.output }

// Size returns the expression's width in bits.
func (e SignedExpr) Size() int { return e.node.size() }

// Inputs returns the sorted input words the expression depends on.
func (e SignedExpr) Inputs() []string { return e.node.circ.Inputs() }

// WithOutput renames the expression's output word.
func (e SignedExpr) WithOutput(name string) SignedExpr {
	return SignedExpr{node: e.node.withOutput(name)}
}

// Unsigned reinterprets the same bits as an unsigned expression.
func (e SignedExpr) Unsigned() UnsignedExpr { return UnsignedExpr{node: e.node} }

// Eval evaluates the expression on word-valued inputs.
func (e SignedExpr) Eval(inputs map[string][]bool) ([]bool, error) {
	return e.node.eval(inputs)
}

// EvalInt evaluates the expression and decodes the result with sign
// extension.
func (e SignedExpr) EvalInt(inputs map[string][]bool) (int64, error) {
	bits, err := e.node.eval(inputs)
	if err != nil {
		return 0, err
	}
	return DecodeInt(bits)
}

// Add is modular addition.
func (e SignedExpr) Add(other SignedExpr) SignedExpr {
	return SignedExpr{node: binOp(AddGate, e.node, other.node)}
}

// Sub is modular subtraction.
func (e SignedExpr) Sub(other SignedExpr) SignedExpr {
	if sameCirc(e.node, other.node) {
		return SignedExpr{node: constWire(e.node, e.Size(), 0)}
	}
	return SignedExpr{node: binOp(SubtractGate, e.node, other.node)}
}

// And is per-bit conjunction.
func (e SignedExpr) And(other SignedExpr) SignedExpr {
	if sameCirc(e.node, other.node) {
		return e
	}
	return SignedExpr{node: binOp(BitwiseAndGate, e.node, other.node)}
}

// Or is per-bit disjunction.
func (e SignedExpr) Or(other SignedExpr) SignedExpr {
	if sameCirc(e.node, other.node) {
		return e
	}
	return SignedExpr{node: binOp(BitwiseOrGate, e.node, other.node)}
}

// Xor is per-bit exclusive or.
func (e SignedExpr) Xor(other SignedExpr) SignedExpr {
	if sameCirc(e.node, other.node) {
		return SignedExpr{node: constWire(e.node, e.Size(), 0)}
	}
	return SignedExpr{node: binOp(BitwiseXorGate, e.node, other.node)}
}

// Not is per-bit inversion.
func (e SignedExpr) Not() SignedExpr {
	return SignedExpr{node: unOp(BitwiseNotGate, e.node)}
}

// DotMod2 is the 1-bit dot product of two words modulo 2.
func (e SignedExpr) DotMod2(other SignedExpr) UnsignedExpr {
	return e.Unsigned().DotMod2(other.Unsigned())
}

// Neg is two's-complement negation.
func (e SignedExpr) Neg() SignedExpr {
	return SignedExpr{node: unOp(NegateGate, e.node)}
}

// Abs is the two's-complement absolute value. The minimum value maps to
// itself.
func (e SignedExpr) Abs() SignedExpr {
	return SignedExpr{node: unOp(AbsGate, e.node)}
}

// Equals is the 1-bit equality predicate. Equality is sign agnostic.
func (e SignedExpr) Equals(other SignedExpr) UnsignedExpr {
	return e.Unsigned().Equals(other.Unsigned())
}

// NotEquals is the 1-bit inequality predicate.
func (e SignedExpr) NotEquals(other SignedExpr) UnsignedExpr {
	return e.Unsigned().NotEquals(other.Unsigned())
}

// Ge is the 1-bit signed "e >= other" predicate.
func (e SignedExpr) Ge(other SignedExpr) UnsignedExpr {
	if sameCirc(e.node, other.node) {
		return UnsignedExpr{node: constWire(e.node, 1, 1)}
	}
	return UnsignedExpr{node: binOp(SignedGeGate, e.node, other.node)}
}

// Le is the 1-bit signed "e <= other" predicate.
func (e SignedExpr) Le(other SignedExpr) UnsignedExpr {
	if sameCirc(e.node, other.node) {
		return UnsignedExpr{node: constWire(e.node, 1, 1)}
	}
	return UnsignedExpr{node: binOp(SignedLeGate, e.node, other.node)}
}

// Lt is the 1-bit signed "e < other" predicate.
func (e SignedExpr) Lt(other SignedExpr) UnsignedExpr {
	return e.Ge(other).Not()
}

// Gt is the 1-bit signed "e > other" predicate.
func (e SignedExpr) Gt(other SignedExpr) UnsignedExpr {
	return e.Le(other).Not()
}

// ShiftLeft shifts toward the most significant bit, zero filled.
func (e SignedExpr) ShiftLeft(shift int) SignedExpr {
	gate := func(wordlen int, input, output string) Circuit {
		return LeftShiftGate(wordlen, shift, input, output)
	}
	return SignedExpr{node: unOp(gate, e.node)}
}

// ShiftRight shifts toward the least significant bit, sign filled.
func (e SignedExpr) ShiftRight(shift int) SignedExpr {
	gate := func(wordlen int, input, output string) Circuit {
		return ArithmeticRightShiftGate(wordlen, shift, input, output)
	}
	return SignedExpr{node: unOp(gate, e.node)}
}

// Concat appends other's bits above e's. The result takes its sign
// from the new most significant bit.
func (e SignedExpr) Concat(other SignedExpr) SignedExpr {
	return SignedExpr{node: concat(e.node, other.node)}
}

// Index extracts the single bit at idx. Bit extraction discards
// signedness.
func (e SignedExpr) Index(idx int) UnsignedExpr {
	return UnsignedExpr{node: index(e.node, idx)}
}

// Slice extracts bit positions [start, stop).
func (e SignedExpr) Slice(start, stop int) UnsignedExpr {
	return UnsignedExpr{node: slice(e.node, start, stop)}
}

// ITE is the word multiplexer "if test then cons else alt" over
// unsigned branches. The test must be 1-bit and the branches equal
// width.
func ITE(test, cons, alt UnsignedExpr) UnsignedExpr {
	return UnsignedExpr{node: ite(test.node, cons.node, alt.node)}
}

// SignedITE is ITE over signed branches.
func SignedITE(test UnsignedExpr, cons, alt SignedExpr) SignedExpr {
	return SignedExpr{node: ite(test.node, cons.node, alt.node)}
}

func ite(t, c, a exprNode) exprNode {
	if t.size() != 1 {
		panic(fmt.Errorf("%w: ite test must be 1 bit, got %d", ErrWidthMismatch, t.size()))
	}
	if c.size() != a.size() {
		panic(fmt.Errorf("%w: ite branches are %d and %d bits wide", ErrWidthMismatch, c.size(), a.size()))
	}
	if c.output == t.output {
		c = c.withOutput(FreshName())
	}
	if a.output == t.output || a.output == c.output {
		a = a.withOutput(FreshName())
	}
	fused := must(must(t.circ.Par(c.circ)).Par(a.circ))
	out := FreshName()
	g := ITEGate(c.size(), t.output, c.output, a.output, out)
	return exprNode{circ: must(fused.Compose(g)), output: out}
}
