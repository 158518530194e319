// Package aig implements an and-inverter graph circuit representation
// with named inputs, outputs and latches.
//
// A circuit is an immutable value; composition operators return new
// circuits and share graph nodes structurally. Node identity is pointer
// identity, names live only in the circuit's port maps, so the same node
// may appear under different names in different circuits.
package aig

import (
	"errors"
	"fmt"
	"slices"

	"github.com/consensys/aigbv/profile"
	"golang.org/x/exp/maps"
)

var (
	// ErrNameClash signals that an operation would register two ports under the same name.
	ErrNameClash = errors.New("aig: name clash")
	// ErrUnknownName signals a reference to a port the circuit does not declare.
	ErrUnknownName = errors.New("aig: unknown name")
	// ErrDangling signals an output or latch next driven by an unregistered input or latch.
	ErrDangling = errors.New("aig: dangling wire")
	// ErrBadFormat signals a malformed AAG description.
	ErrBadFormat = errors.New("aig: malformed aag")
)

type nodeKind uint8

const (
	kindFalse nodeKind = iota
	kindInput
	kindLatch
	kindAnd
)

// Node is a vertex of the and-inverter graph. Nodes are immutable and
// shared freely between circuits.
type Node struct {
	kind nodeKind
	l, r Ref
}

// Ref is a signal: a node together with an inversion flag.
type Ref struct {
	n   *Node
	neg bool
}

var constFalse = &Node{kind: kindFalse}

// False returns the constant-zero signal.
func False() Ref { return Ref{n: constFalse} }

// True returns the constant-one signal.
func True() Ref { return Ref{n: constFalse, neg: true} }

// Const returns the constant signal with the given value.
func Const(b bool) Ref { return Ref{n: constFalse, neg: b} }

// NewInput allocates a fresh input node.
func NewInput() *Node { return &Node{kind: kindInput} }

// NewLatchNode allocates a fresh latch read node. The latch's next-state
// signal and initial value are bound when the node is registered in a
// circuit.
func NewLatchNode() *Node { return &Node{kind: kindLatch} }

// Ref returns the positive signal of n.
func (n *Node) Ref() Ref { return Ref{n: n} }

// Not returns the inverted signal.
func (a Ref) Not() Ref { return Ref{n: a.n, neg: !a.neg} }

func (a Ref) xor(neg bool) Ref {
	if neg {
		return a.Not()
	}
	return a
}

// And returns the conjunction of a and b, folding the trivial cases so
// that constant sources do not grow the graph.
func (a Ref) And(b Ref) Ref {
	switch {
	case a == False() || b == False():
		return False()
	case a == True():
		return b
	case b == True():
		return a
	case a == b:
		return a
	case a == b.Not():
		return False()
	}
	profile.RecordGate()
	return Ref{n: &Node{kind: kindAnd, l: a, r: b}}
}

// Or returns the disjunction of a and b.
func (a Ref) Or(b Ref) Ref {
	return a.Not().And(b.Not()).Not()
}

// Xor returns the exclusive or of a and b.
func (a Ref) Xor(b Ref) Ref {
	return a.And(b).Not().And(a.Not().And(b.Not()).Not())
}

// Implies returns the signal !a | b.
func (a Ref) Implies(b Ref) Ref {
	return a.And(b.Not()).Not()
}

// Latch is a single-bit state element: a read node visible to the
// combinational logic, the next-state signal and the initial value.
type Latch struct {
	Node *Node
	Next Ref
	Init bool
}

// Circuit is an immutable named and-inverter graph circuit.
type Circuit struct {
	inputs  map[string]*Node
	outputs map[string]Ref
	latches map[string]Latch
}

// New assembles a circuit from explicit port maps. Every input or latch
// node reachable from an output or a latch next-state signal must be
// registered, and no node may be registered twice.
func New(inputs map[string]*Node, outputs map[string]Ref, latches map[string]Latch) (Circuit, error) {
	c := Circuit{
		inputs:  maps.Clone(inputs),
		outputs: maps.Clone(outputs),
		latches: maps.Clone(latches),
	}
	if c.inputs == nil {
		c.inputs = map[string]*Node{}
	}
	if c.outputs == nil {
		c.outputs = map[string]Ref{}
	}
	if c.latches == nil {
		c.latches = map[string]Latch{}
	}

	registered := make(map[*Node]string, len(c.inputs)+len(c.latches))
	for name, n := range c.inputs {
		if n == nil || n.kind != kindInput {
			return Circuit{}, fmt.Errorf("aig: input %q is not an input node", name)
		}
		if prev, ok := registered[n]; ok {
			return Circuit{}, fmt.Errorf("%w: node registered as both %q and %q", ErrNameClash, prev, name)
		}
		registered[n] = name
	}
	for name, l := range c.latches {
		if _, ok := c.inputs[name]; ok {
			return Circuit{}, fmt.Errorf("%w: %q is both an input and a latch", ErrNameClash, name)
		}
		if l.Node == nil || l.Node.kind != kindLatch {
			return Circuit{}, fmt.Errorf("aig: latch %q is not a latch node", name)
		}
		if prev, ok := registered[l.Node]; ok {
			return Circuit{}, fmt.Errorf("%w: node registered as both %q and %q", ErrNameClash, prev, name)
		}
		registered[l.Node] = name
	}

	seen := map[*Node]struct{}{}
	var check func(r Ref) error
	check = func(r Ref) error {
		if _, ok := seen[r.n]; ok {
			return nil
		}
		seen[r.n] = struct{}{}
		switch r.n.kind {
		case kindAnd:
			if err := check(r.n.l); err != nil {
				return err
			}
			return check(r.n.r)
		case kindInput, kindLatch:
			if _, ok := registered[r.n]; !ok {
				return ErrDangling
			}
		}
		return nil
	}
	for name, r := range c.outputs {
		if err := check(r); err != nil {
			return Circuit{}, fmt.Errorf("%w (output %q)", err, name)
		}
	}
	for name, l := range c.latches {
		if err := check(l.Next); err != nil {
			return Circuit{}, fmt.Errorf("%w (latch %q)", err, name)
		}
	}
	return c, nil
}

// Empty returns the circuit with no ports.
func Empty() Circuit {
	return Circuit{
		inputs:  map[string]*Node{},
		outputs: map[string]Ref{},
		latches: map[string]Latch{},
	}
}

// Inputs returns the sorted input names.
func (c Circuit) Inputs() []string { return sortedNames(c.inputs) }

// Outputs returns the sorted output names.
func (c Circuit) Outputs() []string { return sortedNames(c.outputs) }

// Latches returns the sorted latch names.
func (c Circuit) Latches() []string { return sortedNames(c.latches) }

// HasInput reports whether name is an input of the circuit.
func (c Circuit) HasInput(name string) bool {
	_, ok := c.inputs[name]
	return ok
}

// HasOutput reports whether name is an output of the circuit.
func (c Circuit) HasOutput(name string) bool {
	_, ok := c.outputs[name]
	return ok
}

// HasLatch reports whether name is a latch of the circuit.
func (c Circuit) HasLatch(name string) bool {
	_, ok := c.latches[name]
	return ok
}

// LatchInits returns the initial value of every latch.
func (c Circuit) LatchInits() map[string]bool {
	inits := make(map[string]bool, len(c.latches))
	for name, l := range c.latches {
		inits[name] = l.Init
	}
	return inits
}

// Same reports whether two circuits are the same circuit: identical
// port maps over identical graph nodes. Structurally equal but
// separately built circuits are not the same.
func (c Circuit) Same(other Circuit) bool {
	if len(c.inputs) != len(other.inputs) ||
		len(c.outputs) != len(other.outputs) ||
		len(c.latches) != len(other.latches) {
		return false
	}
	for name, n := range c.inputs {
		if other.inputs[name] != n {
			return false
		}
	}
	for name, r := range c.outputs {
		if other.outputs[name] != r {
			return false
		}
	}
	for name, l := range c.latches {
		if other.latches[name] != l {
			return false
		}
	}
	return true
}

// OutputRef returns the signal driving the named output.
func (c Circuit) OutputRef(name string) (Ref, bool) {
	r, ok := c.outputs[name]
	return r, ok
}

func sortedNames[V any](m map[string]V) []string {
	names := maps.Keys(m)
	slices.Sort(names)
	return names
}
