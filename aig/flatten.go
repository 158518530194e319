package aig

// Flat is a topologically ordered, literal-encoded view of a circuit in
// the spirit of the AIGER format. Variables are numbered from 1: first
// the inputs in name order, then the latches in name order, then the and
// gates in dependency order. Literal 2*v is variable v, 2*v+1 its
// negation; literals 0 and 1 are the constants.
type Flat struct {
	Inputs  []string
	Latches []FlatLatch
	Outputs []FlatPort
	Ands    []FlatAnd
}

// FlatLatch is a latch row: its next-state literal and initial value.
// Latch i owns variable len(Inputs)+1+i.
type FlatLatch struct {
	Name string
	Next uint
	Init bool
}

// FlatPort names a driven literal.
type FlatPort struct {
	Name string
	Lit  uint
}

// FlatAnd is an and-gate row; gate i owns variable
// len(Inputs)+len(Latches)+1+i.
type FlatAnd struct {
	Lhs uint
	Rhs uint
}

// MaxVar returns the largest variable index in use.
func (f Flat) MaxVar() uint {
	return uint(len(f.Inputs) + len(f.Latches) + len(f.Ands))
}

// Flatten linearizes the circuit.
func (c Circuit) Flatten() Flat {
	f := Flat{Inputs: c.Inputs()}

	vars := map[*Node]uint{}
	next := uint(1)
	for _, name := range f.Inputs {
		vars[c.inputs[name]] = next
		next++
	}
	latchNames := c.Latches()
	for _, name := range latchNames {
		vars[c.latches[name].Node] = next
		next++
	}

	var lit func(r Ref) uint
	lit = func(r Ref) uint {
		var v uint
		if r.n.kind == kindFalse {
			v = 0
		} else if known, ok := vars[r.n]; ok {
			v = known
		} else {
			// kindAnd: children first, then claim the next variable
			l := lit(r.n.l)
			rr := lit(r.n.r)
			if l < rr {
				l, rr = rr, l
			}
			f.Ands = append(f.Ands, FlatAnd{Lhs: l, Rhs: rr})
			v = next
			next++
			vars[r.n] = v
		}
		out := 2 * v
		if r.neg {
			out++
		}
		return out
	}

	for _, name := range latchNames {
		l := c.latches[name]
		f.Latches = append(f.Latches, FlatLatch{Name: name, Next: lit(l.Next), Init: l.Init})
	}
	for _, name := range c.Outputs() {
		f.Outputs = append(f.Outputs, FlatPort{Name: name, Lit: lit(c.outputs[name])})
	}
	return f
}
