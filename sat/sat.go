// Package sat bridges word circuits to the gini SAT solver. A circuit
// output becomes a satisfiability query; sequential circuits are
// checked by unrolling over a bounded horizon.
package sat

import (
	"fmt"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/consensys/aigbv"
	"github.com/consensys/aigbv/aig"
	"github.com/consensys/aigbv/logger"
)

// Model is a word-level assignment to circuit inputs.
type Model map[string][]bool

// translation is a circuit lowered into a gini logic carrier, with the
// flat variable numbering mapped onto carrier literals.
type translation struct {
	circ aigbv.Circuit
	flat aigbvFlat
	cc   *logic.C
	lits []z.Lit
}

type aigbvFlat struct {
	inputs  []string
	latches []aig.FlatLatch
	outputs map[string]uint
}

func translate(c aigbv.Circuit) (*translation, error) {
	f := c.Aig.Flatten()
	cc := logic.NewC()

	lits := make([]z.Lit, f.MaxVar()+1)
	lits[0] = cc.F
	v := uint(1)
	for range f.Inputs {
		lits[v] = cc.Lit()
		v++
	}
	// latch reads are free variables: the query quantifies over states
	// as well as inputs
	for range f.Latches {
		lits[v] = cc.Lit()
		v++
	}
	litOf := func(l uint) z.Lit {
		m := lits[l>>1]
		if l&1 == 1 {
			m = m.Not()
		}
		return m
	}
	for _, a := range f.Ands {
		lits[v] = cc.And(litOf(a.Lhs), litOf(a.Rhs))
		v++
	}

	outputs := make(map[string]uint, len(f.Outputs))
	for _, port := range f.Outputs {
		outputs[port.Name] = port.Lit
	}
	return &translation{
		circ: c,
		flat: aigbvFlat{inputs: f.Inputs, latches: f.Latches, outputs: outputs},
		cc:   cc,
		lits: lits,
	}, nil
}

func (t *translation) outputLit(bitName string) (z.Lit, error) {
	l, ok := t.flat.outputs[bitName]
	if !ok {
		return 0, fmt.Errorf("%w: output bit %q", aigbv.ErrUnknownSignal, bitName)
	}
	m := t.lits[l>>1]
	if l&1 == 1 {
		m = m.Not()
	}
	return m, nil
}

// model reads the word-level input assignment out of a satisfied
// solver.
func (t *translation) model(g *gini.Gini) (Model, error) {
	bits := make(map[string]bool, len(t.flat.inputs))
	for i, name := range t.flat.inputs {
		bits[name] = g.Value(t.lits[1+i])
	}
	words, err := t.circ.Imap.Unblast(bits)
	if err != nil {
		return nil, err
	}
	return words, nil
}

// Solve searches for an input assignment driving the named 1-bit
// output true. Latches, if any, are left free, so the query asks
// whether any state and input combination works. The second return is
// false when the output is unsatisfiable.
func Solve(c aigbv.Circuit, output string) (Model, bool, error) {
	b, ok := c.Omap.Bundle(output)
	if !ok {
		return nil, false, fmt.Errorf("%w: output %q", aigbv.ErrUnknownSignal, output)
	}
	if b.Width != 1 {
		return nil, false, fmt.Errorf("%w: output %q is %d bits wide, want 1", aigbv.ErrWidthMismatch, output, b.Width)
	}

	t, err := translate(c)
	if err != nil {
		return nil, false, err
	}
	lit, err := t.outputLit(b.Name(0))
	if err != nil {
		return nil, false, err
	}

	g := gini.New()
	t.cc.ToCnf(g)
	g.Assume(lit)

	start := time.Now()
	res := g.Solve()
	l := logger.Logger()
	l.Debug().
		Str("output", output).
		Int("result", res).
		Dur("took", time.Since(start)).
		Msg("sat solve")
	if res != 1 {
		return nil, false, nil
	}
	m, err := t.model(g)
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

// Witness is a counterexample found by bounded model checking: the
// step at which the property output fired and the time-stamped input
// words driving it there.
type Witness struct {
	Step   int
	Inputs Model
}

// BoundedModelCheck unrolls a sequential circuit over horizon steps and
// searches for the earliest step at which the named 1-bit output can be
// driven true from the initial state. A nil witness means the output
// stays false over the whole horizon.
func BoundedModelCheck(c aigbv.Circuit, output string, horizon int) (*Witness, error) {
	b, ok := c.Omap.Bundle(output)
	if !ok {
		return nil, fmt.Errorf("%w: output %q", aigbv.ErrUnknownSignal, output)
	}
	if b.Width != 1 {
		return nil, fmt.Errorf("%w: output %q is %d bits wide, want 1", aigbv.ErrWidthMismatch, output, b.Width)
	}

	unrolled, err := c.Unroll(horizon)
	if err != nil {
		return nil, err
	}
	t, err := translate(unrolled)
	if err != nil {
		return nil, err
	}

	g := gini.New()
	t.cc.ToCnf(g)

	for step := 1; step <= horizon; step++ {
		stamped := aigbv.Bundle{Root: fmt.Sprintf("%s##time_%d", output, step), Width: 1}
		lit, err := t.outputLit(stamped.Name(0))
		if err != nil {
			return nil, err
		}
		g.Assume(lit)
		start := time.Now()
		res := g.Solve()
		l := logger.Logger()
		l.Debug().
			Str("output", output).
			Int("step", step).
			Int("result", res).
			Dur("took", time.Since(start)).
			Msg("bounded model check step")
		if res != 1 {
			continue
		}
		m, err := t.model(g)
		if err != nil {
			return nil, err
		}
		return &Witness{Step: step, Inputs: m}, nil
	}
	return nil, nil
}
