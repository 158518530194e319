package aigbv

import (
	"fmt"

	"github.com/consensys/aigbv/aig"
)

// Kind selects a port map of a word circuit.
type Kind = aig.Kind

const (
	Input  Kind = aig.KindInput
	Output Kind = aig.KindOutput
	Latch  Kind = aig.KindLatch
)

// Circuit is a word-level circuit: a bit-level and-inverter graph
// together with the bundle maps grouping its input, output and latch
// wires into word signals. Circuits are immutable values.
type Circuit struct {
	Aig  aig.Circuit
	Imap BundleMap
	Omap BundleMap
	Lmap BundleMap
}

// New wraps a bit-level circuit with its bundle maps, checking that
// every bundle bit actually is a port of the right kind.
func New(a aig.Circuit, imap, omap, lmap BundleMap) (Circuit, error) {
	for _, name := range imap.BitNames() {
		if !a.HasInput(name) {
			return Circuit{}, fmt.Errorf("%w: bit %q is not an input of the circuit", ErrUnknownSignal, name)
		}
	}
	for _, name := range omap.BitNames() {
		if !a.HasOutput(name) {
			return Circuit{}, fmt.Errorf("%w: bit %q is not an output of the circuit", ErrUnknownSignal, name)
		}
	}
	for _, name := range lmap.BitNames() {
		if !a.HasLatch(name) {
			return Circuit{}, fmt.Errorf("%w: bit %q is not a latch of the circuit", ErrUnknownSignal, name)
		}
	}
	return Circuit{Aig: a, Imap: imap, Omap: omap, Lmap: lmap}, nil
}

// Inputs returns the sorted word-level input names.
func (c Circuit) Inputs() []string { return c.Imap.Keys() }

// Outputs returns the sorted word-level output names.
func (c Circuit) Outputs() []string { return c.Omap.Keys() }

// Latches returns the sorted word-level latch names.
func (c Circuit) Latches() []string { return c.Lmap.Keys() }

// LatchInits returns the word-level initial value of every latch.
func (c Circuit) LatchInits() (map[string][]bool, error) {
	return c.Lmap.Unblast(c.Aig.LatchInits())
}

// Write serializes the underlying bit-level circuit to path in AIGER
// ASCII format.
func (c Circuit) Write(path string) error { return c.Aig.Write(path) }

// Eval computes one evaluation step: word-level inputs (and optionally
// current latch values; nil means the initial values) to word-level
// outputs and next latch values.
func (c Circuit) Eval(inputs map[string][]bool, latches map[string][]bool) (outs, next map[string][]bool, err error) {
	for _, name := range c.Inputs() {
		if _, ok := inputs[name]; !ok {
			return nil, nil, fmt.Errorf("%w: missing input %q", ErrUnknownSignal, name)
		}
	}
	bitInputs, err := c.Imap.Blast(inputs)
	if err != nil {
		return nil, nil, err
	}
	var bitLatches map[string]bool
	if latches != nil {
		if bitLatches, err = c.Lmap.Blast(latches); err != nil {
			return nil, nil, err
		}
	}
	bitOuts, bitNext, err := c.Aig.Eval(bitInputs, bitLatches)
	if err != nil {
		return nil, nil, err
	}
	if outs, err = c.Omap.Unblast(bitOuts); err != nil {
		return nil, nil, err
	}
	if next, err = c.Lmap.Unblast(bitNext); err != nil {
		return nil, nil, err
	}
	return outs, next, nil
}

// Simulate runs the circuit from its initial latch state over a
// sequence of word input valuations and returns the word outputs of
// every step.
func (c Circuit) Simulate(steps []map[string][]bool) ([]map[string][]bool, error) {
	trace := make([]map[string][]bool, len(steps))
	var state map[string][]bool
	for i, inputs := range steps {
		outs, next, err := c.Eval(inputs, state)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		trace[i] = outs
		state = next
	}
	return trace, nil
}

// Compose sequentially composes c with other ("c >> other"): outputs of
// c wire into the matching-named inputs of other. Latches must be
// disjoint and no leftover output of c may clash with an output of
// other.
func (c Circuit) Compose(other Circuit) (Circuit, error) {
	var iface []string
	for _, name := range c.Outputs() {
		w, ok := other.Imap.Width(name)
		if !ok {
			continue
		}
		cw, _ := c.Omap.Width(name)
		if cw != w {
			return Circuit{}, fmt.Errorf("%w: interface %q is %d bits on one side and %d on the other", ErrWidthMismatch, name, cw, w)
		}
		iface = append(iface, name)
	}
	for _, name := range c.Latches() {
		if other.Lmap.Has(name) {
			return Circuit{}, fmt.Errorf("%w: latch %q on both sides of a sequential composition", ErrInterfaceConflict, name)
		}
	}
	leftover := c.Omap.Omit(iface)
	for _, name := range leftover.Keys() {
		if other.Omap.Has(name) {
			return Circuit{}, fmt.Errorf("%w: output %q shadowed by a sequential composition", ErrInterfaceConflict, name)
		}
	}

	imap, err := c.Imap.Join(other.Imap.Omit(iface))
	if err != nil {
		return Circuit{}, err
	}
	omap, err := other.Omap.Join(leftover)
	if err != nil {
		return Circuit{}, err
	}
	lmap, err := c.Lmap.Join(other.Lmap)
	if err != nil {
		return Circuit{}, err
	}
	a, err := c.Aig.Compose(other.Aig)
	if err != nil {
		return Circuit{}, fmt.Errorf("%w: %v", ErrInterfaceConflict, err)
	}
	return Circuit{Aig: a, Imap: imap, Omap: omap, Lmap: lmap}, nil
}

// Par places c and other side by side ("c | other"). Outputs and
// latches must be disjoint. Inputs sharing a name are not merged
// silently: each side is moved to a private fresh name and a tee gate
// restoring the shared external name is composed in front.
func (c Circuit) Par(other Circuit) (Circuit, error) {
	for _, name := range c.Outputs() {
		if other.Omap.Has(name) {
			return Circuit{}, fmt.Errorf("%w: output %q on both sides of a parallel composition", ErrInterfaceConflict, name)
		}
	}
	for _, name := range c.Latches() {
		if other.Lmap.Has(name) {
			return Circuit{}, fmt.Errorf("%w: latch %q on both sides of a parallel composition", ErrInterfaceConflict, name)
		}
	}

	var shared []string
	for _, name := range c.Inputs() {
		if !other.Imap.Has(name) {
			continue
		}
		cw, _ := c.Imap.Width(name)
		ow, _ := other.Imap.Width(name)
		if cw != ow {
			return Circuit{}, fmt.Errorf("%w: shared input %q is %d bits wide on one side and %d on the other", ErrWidthMismatch, name, cw, ow)
		}
		shared = append(shared, name)
	}

	left, right := c, other
	relabels1 := map[string]string{}
	relabels2 := map[string]string{}
	if len(shared) > 0 {
		for _, name := range shared {
			relabels1[name] = FreshName()
			relabels2[name] = FreshName()
		}
		var err error
		if left, err = left.Relabel(Input, relabels1); err != nil {
			return Circuit{}, err
		}
		if right, err = right.Relabel(Input, relabels2); err != nil {
			return Circuit{}, err
		}
	}

	imap, err := left.Imap.Join(right.Imap)
	if err != nil {
		return Circuit{}, err
	}
	omap, err := left.Omap.Join(right.Omap)
	if err != nil {
		return Circuit{}, err
	}
	lmap, err := left.Lmap.Join(right.Lmap)
	if err != nil {
		return Circuit{}, err
	}
	a, err := left.Aig.Par(right.Aig)
	if err != nil {
		return Circuit{}, fmt.Errorf("%w: %v", ErrInterfaceConflict, err)
	}
	combined := Circuit{Aig: a, Imap: imap, Omap: omap, Lmap: lmap}

	// tee each original shared input back into both private copies
	for _, name := range shared {
		w, _ := c.Imap.Width(name)
		tee := TeeGate(w, name, []string{relabels1[name], relabels2[name]})
		if combined, err = tee.Compose(combined); err != nil {
			return Circuit{}, err
		}
	}
	return combined, nil
}

// Relabel renames word signals of the given kind, patching the
// underlying bit-level circuit through the bundle rename table.
func (c Circuit) Relabel(kind Kind, renames map[string]string) (Circuit, error) {
	var bmap BundleMap
	switch kind {
	case Input:
		bmap = c.Imap
	case Output:
		bmap = c.Omap
	case Latch:
		bmap = c.Lmap
	default:
		return Circuit{}, fmt.Errorf("aigbv: relabel: unknown kind %v", kind)
	}
	bmap2, bitRenames, err := bmap.Relabel(renames)
	if err != nil {
		return Circuit{}, err
	}
	a, err := c.Aig.Relabel(kind, bitRenames)
	if err != nil {
		return Circuit{}, fmt.Errorf("%w: %v", ErrNameCollision, err)
	}
	out := Circuit{Aig: a, Imap: c.Imap, Omap: c.Omap, Lmap: c.Lmap}
	switch kind {
	case Input:
		out.Imap = bmap2
	case Output:
		out.Omap = bmap2
	case Latch:
		out.Lmap = bmap2
	}
	return out, nil
}
