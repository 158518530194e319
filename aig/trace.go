package aig

import (
	"fmt"
	"io"

	"github.com/icza/bitio"
)

// Simulate runs the circuit from its initial latch state over a sequence
// of input valuations and returns the output valuation of every step.
func (c Circuit) Simulate(steps []map[string]bool) ([]map[string]bool, error) {
	trace := make([]map[string]bool, len(steps))
	state := c.LatchInits()
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

// WriteTrace packs a simulation trace into a bit stream, one bit per
// output per step, outputs in the order given.
func WriteTrace(w io.Writer, outputs []string, trace []map[string]bool) error {
	bw := bitio.NewWriter(w)
	for i, step := range trace {
		for _, name := range outputs {
			b, ok := step[name]
			if !ok {
				return fmt.Errorf("%w: trace step %d has no output %q", ErrUnknownName, i, name)
			}
			if err := bw.WriteBool(b); err != nil {
				return err
			}
		}
	}
	return bw.Close()
}

// ReadTrace unpacks a trace of the given length written by WriteTrace.
func ReadTrace(r io.Reader, outputs []string, steps int) ([]map[string]bool, error) {
	br := bitio.NewReader(r)
	trace := make([]map[string]bool, steps)
	for i := range trace {
		step := make(map[string]bool, len(outputs))
		for _, name := range outputs {
			b, err := br.ReadBool()
			if err != nil {
				return nil, err
			}
			step[name] = b
		}
		trace[i] = step
	}
	return trace, nil
}
