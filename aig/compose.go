package aig

import (
	"fmt"

	"golang.org/x/exp/maps"
)

// Kind selects which port map an operation applies to.
type Kind uint8

const (
	KindInput Kind = iota
	KindOutput
	KindLatch
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindOutput:
		return "output"
	case KindLatch:
		return "latch"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// rebuild returns r with every node appearing in sub replaced by its
// substitute, rebuilding the and gates above a substitution point. memo
// is shared across calls so common subgraphs are rebuilt once.
func rebuild(r Ref, sub map[*Node]Ref, memo map[*Node]Ref) Ref {
	if rep, ok := sub[r.n]; ok {
		return rep.xor(r.neg)
	}
	if r.n.kind != kindAnd {
		return r
	}
	if m, ok := memo[r.n]; ok {
		return m.xor(r.neg)
	}
	l := rebuild(r.n.l, sub, memo)
	rr := rebuild(r.n.r, sub, memo)
	out := Ref{n: r.n}
	if l != r.n.l || rr != r.n.r {
		out = l.And(rr)
	}
	memo[r.n] = out
	return out.xor(r.neg)
}

// Compose sequentially composes c with other: every output of c whose
// name is an input of other is wired to that input and consumed. Latch
// names must be disjoint, and no output of c left over after wiring may
// clash with an output of other.
func (c Circuit) Compose(other Circuit) (Circuit, error) {
	sub := map[*Node]Ref{}
	iface := map[string]struct{}{}
	for name, n := range other.inputs {
		if ref, ok := c.outputs[name]; ok {
			sub[n] = ref
			iface[name] = struct{}{}
		}
	}

	inputs := maps.Clone(c.inputs)
	for name, n := range other.inputs {
		if _, ok := iface[name]; ok {
			continue
		}
		if cn, ok := c.inputs[name]; ok {
			// same external name on both sides: one wire
			if cn != n {
				sub[n] = cn.Ref()
			}
			continue
		}
		inputs[name] = n
	}

	latches := maps.Clone(c.latches)
	memo := map[*Node]Ref{}
	for name, l := range other.latches {
		if _, ok := latches[name]; ok {
			return Circuit{}, fmt.Errorf("%w: latch %q on both sides of a sequential composition", ErrNameClash, name)
		}
		l.Next = rebuild(l.Next, sub, memo)
		latches[name] = l
	}

	outputs := make(map[string]Ref, len(c.outputs)+len(other.outputs))
	for name, ref := range c.outputs {
		if _, ok := iface[name]; ok {
			continue
		}
		outputs[name] = ref
	}
	for name, ref := range other.outputs {
		if _, ok := outputs[name]; ok {
			return Circuit{}, fmt.Errorf("%w: output %q shadowed by a sequential composition", ErrNameClash, name)
		}
		outputs[name] = rebuild(ref, sub, memo)
	}

	return Circuit{inputs: inputs, outputs: outputs, latches: latches}, nil
}

// Par places c and other side by side. Output and latch names must be
// disjoint; inputs with the same name on both sides become one wire.
func (c Circuit) Par(other Circuit) (Circuit, error) {
	for name := range other.outputs {
		if _, ok := c.outputs[name]; ok {
			return Circuit{}, fmt.Errorf("%w: output %q on both sides of a parallel composition", ErrNameClash, name)
		}
	}
	for name := range other.latches {
		if _, ok := c.latches[name]; ok {
			return Circuit{}, fmt.Errorf("%w: latch %q on both sides of a parallel composition", ErrNameClash, name)
		}
	}

	sub := map[*Node]Ref{}
	inputs := maps.Clone(c.inputs)
	for name, n := range other.inputs {
		if cn, ok := c.inputs[name]; ok {
			if cn != n {
				sub[n] = cn.Ref()
			}
			continue
		}
		inputs[name] = n
	}

	memo := map[*Node]Ref{}
	outputs := maps.Clone(c.outputs)
	for name, ref := range other.outputs {
		outputs[name] = rebuild(ref, sub, memo)
	}
	latches := maps.Clone(c.latches)
	for name, l := range other.latches {
		l.Next = rebuild(l.Next, sub, memo)
		latches[name] = l
	}

	return Circuit{inputs: inputs, outputs: outputs, latches: latches}, nil
}

// Relabel renames ports of the given kind. Renames whose source name is
// absent are ignored; a target name already present after the renamed
// ports are removed is an error.
func (c Circuit) Relabel(kind Kind, renames map[string]string) (Circuit, error) {
	switch kind {
	case KindInput:
		m, err := relabelMap(c.inputs, renames)
		if err != nil {
			return Circuit{}, err
		}
		return Circuit{inputs: m, outputs: c.outputs, latches: c.latches}, nil
	case KindOutput:
		m, err := relabelMap(c.outputs, renames)
		if err != nil {
			return Circuit{}, err
		}
		return Circuit{inputs: c.inputs, outputs: m, latches: c.latches}, nil
	case KindLatch:
		m, err := relabelMap(c.latches, renames)
		if err != nil {
			return Circuit{}, err
		}
		return Circuit{inputs: c.inputs, outputs: c.outputs, latches: m}, nil
	}
	return Circuit{}, fmt.Errorf("aig: relabel: unknown kind %v", kind)
}

func relabelMap[V any](m map[string]V, renames map[string]string) (map[string]V, error) {
	out := make(map[string]V, len(m))
	for name, v := range m {
		if _, ok := renames[name]; ok {
			continue
		}
		out[name] = v
	}
	for old, next := range renames {
		v, ok := m[old]
		if !ok {
			continue
		}
		if _, ok := out[next]; ok {
			return nil, fmt.Errorf("%w: relabel target %q already in use", ErrNameClash, next)
		}
		out[next] = v
	}
	return out, nil
}

// Feedback closes the loop between paired outputs and inputs through new
// latches: on every step, latches[k] holds the previous value of
// outputs[k] and drives inputs[k]. inits gives the per-latch initial
// values (nil means all zero). When keepOutputs is set, the fed-back
// outputs remain visible.
func (c Circuit) Feedback(inputs, outputs, latchNames []string, inits []bool, keepOutputs bool) (Circuit, error) {
	if len(inputs) != len(outputs) || len(inputs) != len(latchNames) {
		return Circuit{}, fmt.Errorf("aig: feedback: %d inputs, %d outputs, %d latches", len(inputs), len(outputs), len(latchNames))
	}
	if inits != nil && len(inits) != len(inputs) {
		return Circuit{}, fmt.Errorf("aig: feedback: %d inits for %d latches", len(inits), len(inputs))
	}

	sub := map[*Node]Ref{}
	reads := make([]*Node, len(inputs))
	for k, name := range inputs {
		n, ok := c.inputs[name]
		if !ok {
			return Circuit{}, fmt.Errorf("%w: feedback input %q", ErrUnknownName, name)
		}
		reads[k] = NewLatchNode()
		sub[n] = reads[k].Ref()
	}

	newInputs := maps.Clone(c.inputs)
	for _, name := range inputs {
		delete(newInputs, name)
	}

	memo := map[*Node]Ref{}
	newOutputs := make(map[string]Ref, len(c.outputs))
	fed := map[string]struct{}{}
	for _, name := range outputs {
		if _, ok := c.outputs[name]; !ok {
			return Circuit{}, fmt.Errorf("%w: feedback output %q", ErrUnknownName, name)
		}
		fed[name] = struct{}{}
	}
	for name, ref := range c.outputs {
		if _, ok := fed[name]; ok && !keepOutputs {
			continue
		}
		newOutputs[name] = rebuild(ref, sub, memo)
	}

	newLatches := make(map[string]Latch, len(c.latches)+len(latchNames))
	for name, l := range c.latches {
		l.Next = rebuild(l.Next, sub, memo)
		newLatches[name] = l
	}
	for k, name := range latchNames {
		if _, ok := newLatches[name]; ok {
			return Circuit{}, fmt.Errorf("%w: feedback latch %q", ErrNameClash, name)
		}
		var init bool
		if inits != nil {
			init = inits[k]
		}
		newLatches[name] = Latch{
			Node: reads[k],
			Next: rebuild(c.outputs[outputs[k]], sub, memo),
			Init: init,
		}
	}

	return Circuit{inputs: newInputs, outputs: newOutputs, latches: newLatches}, nil
}
