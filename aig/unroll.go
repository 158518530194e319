package aig

import (
	"fmt"

	"github.com/consensys/aigbv/logger"
)

// UnrollOpts controls Unroll. The zero value binds step-0 latches to
// their initial values, drops the final-step latch outputs and keeps one
// copy of every output per step.
type UnrollOpts struct {
	// Free leaves the step-0 latches as inputs named "name##time_0"
	// instead of binding them to their initial values.
	Free bool
	// KeepLatches exposes the final-step latch values as outputs named
	// "name##time_<horizon>".
	KeepLatches bool
	// OnlyLastOutputs keeps only the outputs of the final step.
	OnlyLastOutputs bool
}

// Unroll flattens the circuit over a bounded time axis: the result is a
// combinational circuit with one copy of every input per step, named
// "name##time_t" for t in [0, horizon), and one copy of every output per
// step, named "name##time_t" for t in [1, horizon].
func (c Circuit) Unroll(horizon int, opts UnrollOpts) (Circuit, error) {
	if horizon < 1 {
		return Circuit{}, fmt.Errorf("aig: unroll horizon must be at least 1, got %d", horizon)
	}

	log := logger.Logger()
	log.Debug().Int("horizon", horizon).Int("latches", len(c.latches)).Msg("unrolling circuit")

	inputs := map[string]*Node{}
	outputs := map[string]Ref{}

	latchNames := c.Latches()
	state := make(map[string]Ref, len(c.latches))
	for _, name := range latchNames {
		if opts.Free {
			n := NewInput()
			inputs[stamp(name, 0)] = n
			state[name] = n.Ref()
		} else {
			state[name] = Const(c.latches[name].Init)
		}
	}

	for t := 0; t < horizon; t++ {
		sub := map[*Node]Ref{}
		for name, n := range c.inputs {
			step := NewInput()
			inputs[stamp(name, t)] = step
			sub[n] = step.Ref()
		}
		for name, l := range c.latches {
			sub[l.Node] = state[name]
		}

		memo := map[*Node]Ref{}
		if !opts.OnlyLastOutputs || t == horizon-1 {
			for name, ref := range c.outputs {
				outputs[stamp(name, t+1)] = rebuild(ref, sub, memo)
			}
		}
		next := make(map[string]Ref, len(c.latches))
		for name, l := range c.latches {
			next[name] = rebuild(l.Next, sub, memo)
		}
		state = next
	}

	if opts.KeepLatches {
		for _, name := range latchNames {
			stamped := stamp(name, horizon)
			if _, ok := outputs[stamped]; ok {
				return Circuit{}, fmt.Errorf("%w: unrolled latch %q collides with an output", ErrNameClash, stamped)
			}
			outputs[stamped] = state[name]
		}
	}

	return Circuit{inputs: inputs, outputs: outputs, latches: map[string]Latch{}}, nil
}

func stamp(name string, t int) string {
	return fmt.Sprintf("%s##time_%d", name, t)
}
