package aig

// Primitive named circuits. These are the leaves every higher-level
// construction bottoms out in; each call allocates fresh nodes so that
// independently constructed gates never alias.

// Source is a circuit with no inputs whose outputs are constants.
func Source(values map[string]bool) Circuit {
	outputs := make(map[string]Ref, len(values))
	for name, b := range values {
		outputs[name] = Const(b)
	}
	return Circuit{inputs: map[string]*Node{}, outputs: outputs, latches: map[string]Latch{}}
}

// Sink is a circuit that consumes the named inputs and drives nothing.
func Sink(names []string) Circuit {
	inputs := make(map[string]*Node, len(names))
	for _, name := range names {
		inputs[name] = NewInput()
	}
	return Circuit{inputs: inputs, outputs: map[string]Ref{}, latches: map[string]Latch{}}
}

// Identity passes each named input through to an output of the same name.
func Identity(names []string) Circuit {
	inputs := make(map[string]*Node, len(names))
	outputs := make(map[string]Ref, len(names))
	for _, name := range names {
		n := NewInput()
		inputs[name] = n
		outputs[name] = n.Ref()
	}
	return Circuit{inputs: inputs, outputs: outputs, latches: map[string]Latch{}}
}

// Tee fans each named input out into several identical outputs.
func Tee(fanout map[string][]string) Circuit {
	inputs := make(map[string]*Node, len(fanout))
	outputs := map[string]Ref{}
	for name, copies := range fanout {
		n := NewInput()
		inputs[name] = n
		for _, out := range copies {
			outputs[out] = n.Ref()
		}
	}
	return Circuit{inputs: inputs, outputs: outputs, latches: map[string]Latch{}}
}

// NotGate inverts a single input.
func NotGate(input, output string) Circuit {
	n := NewInput()
	return Circuit{
		inputs:  map[string]*Node{input: n},
		outputs: map[string]Ref{output: n.Ref().Not()},
		latches: map[string]Latch{},
	}
}

// AndGate conjoins two inputs.
func AndGate(left, right, output string) Circuit {
	return binaryGate(left, right, output, Ref.And)
}

// OrGate disjoins two inputs.
func OrGate(left, right, output string) Circuit {
	return binaryGate(left, right, output, Ref.Or)
}

// XorGate is the exclusive or of two inputs.
func XorGate(left, right, output string) Circuit {
	return binaryGate(left, right, output, Ref.Xor)
}

func binaryGate(left, right, output string, op func(Ref, Ref) Ref) Circuit {
	l, r := NewInput(), NewInput()
	return Circuit{
		inputs:  map[string]*Node{left: l, right: r},
		outputs: map[string]Ref{output: op(l.Ref(), r.Ref())},
		latches: map[string]Latch{},
	}
}

// ConjGate conjoins any number of inputs through a balanced gate tree.
func ConjGate(inputs []string, output string) Circuit {
	return naryGate(inputs, output, True(), Ref.And)
}

// DisjGate disjoins any number of inputs through a balanced gate tree.
func DisjGate(inputs []string, output string) Circuit {
	return naryGate(inputs, output, False(), Ref.Or)
}

func naryGate(names []string, output string, empty Ref, op func(Ref, Ref) Ref) Circuit {
	inputs := make(map[string]*Node, len(names))
	refs := make([]Ref, len(names))
	for i, name := range names {
		n := NewInput()
		inputs[name] = n
		refs[i] = n.Ref()
	}
	return Circuit{
		inputs:  inputs,
		outputs: map[string]Ref{output: reduceTree(refs, empty, op)},
		latches: map[string]Latch{},
	}
}

// reduceTree folds refs with op in a balanced tree.
func reduceTree(refs []Ref, empty Ref, op func(Ref, Ref) Ref) Ref {
	switch len(refs) {
	case 0:
		return empty
	case 1:
		return refs[0]
	}
	mid := len(refs) / 2
	return op(reduceTree(refs[:mid], empty, op), reduceTree(refs[mid:], empty, op))
}

// fullAdderAAG is the single-bit full adder in AIGER ASCII form.
const fullAdderAAG = `aag 10 3 0 2 7
2
4
6
18
21
8 4 2
10 5 3
12 11 9
14 12 6
16 13 7
18 17 15
20 15 9
i0 a
i1 b
i2 cin
o0 sum
o1 cout
`

// FullAdder materializes the single-bit full adder primitive with the
// given port names. The primitive itself is parsed from its interchange
// format description; a fresh instance is built on every call.
func FullAdder(a, b, cin, sum, cout string) (Circuit, error) {
	c, err := ParseAAG(fullAdderAAG)
	if err != nil {
		return Circuit{}, err
	}
	c, err = c.Relabel(KindInput, map[string]string{"a": a, "b": b, "cin": cin})
	if err != nil {
		return Circuit{}, err
	}
	return c.Relabel(KindOutput, map[string]string{"sum": sum, "cout": cout})
}
