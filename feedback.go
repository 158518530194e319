package aigbv

import (
	"fmt"

	"github.com/consensys/aigbv/aig"
)

type feedbackConfig struct {
	latches     []string
	inits       [][]bool
	keepOutputs bool
}

// FeedbackOption configures Circuit.Feedback.
type FeedbackOption func(*feedbackConfig)

// WithLatchNames names the latches created by Feedback; by default they
// take the names of the fed-back inputs.
func WithLatchNames(names []string) FeedbackOption {
	return func(cfg *feedbackConfig) { cfg.latches = names }
}

// WithInitials sets the per-latch initial word values. A nil entry
// leaves the corresponding latch at the default all-zero initial value.
func WithInitials(inits [][]bool) FeedbackOption {
	return func(cfg *feedbackConfig) { cfg.inits = inits }
}

// KeepOutputs keeps the fed-back outputs externally visible.
func KeepOutputs() FeedbackOption {
	return func(cfg *feedbackConfig) { cfg.keepOutputs = true }
}

// Feedback creates sequential state: outputs[k] is connected back,
// through a new latch, to inputs[k] on the next evaluation step.
// Paired inputs and outputs must have matching widths.
func (c Circuit) Feedback(inputs, outputs []string, opts ...FeedbackOption) (Circuit, error) {
	cfg := feedbackConfig{latches: inputs}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(inputs) != len(outputs) {
		return Circuit{}, fmt.Errorf("%w: feedback pairs %d inputs with %d outputs", ErrWidthMismatch, len(inputs), len(outputs))
	}
	if len(cfg.latches) != len(inputs) {
		return Circuit{}, fmt.Errorf("%w: feedback names %d latches for %d inputs", ErrWidthMismatch, len(cfg.latches), len(inputs))
	}
	if cfg.inits != nil && len(cfg.inits) != len(inputs) {
		return Circuit{}, fmt.Errorf("%w: feedback has %d initial values for %d latches", ErrWidthMismatch, len(cfg.inits), len(inputs))
	}

	var bitInputs, bitOutputs, bitLatches []string
	var bitInits []bool
	latchWidths := map[string]int{}
	for k, in := range inputs {
		ib, ok := c.Imap.Bundle(in)
		if !ok {
			return Circuit{}, fmt.Errorf("%w: feedback input %q", ErrUnknownSignal, in)
		}
		ob, ok := c.Omap.Bundle(outputs[k])
		if !ok {
			return Circuit{}, fmt.Errorf("%w: feedback output %q", ErrUnknownSignal, outputs[k])
		}
		if ib.Width != ob.Width {
			return Circuit{}, fmt.Errorf("%w: feedback pairs %q (%d bits) with %q (%d bits)", ErrWidthMismatch, in, ib.Width, outputs[k], ob.Width)
		}
		lb := Bundle{Root: cfg.latches[k], Width: ib.Width}
		if _, ok := latchWidths[lb.Root]; ok || c.Lmap.Has(lb.Root) {
			return Circuit{}, fmt.Errorf("%w: feedback latch %q", ErrNameCollision, lb.Root)
		}
		latchWidths[lb.Root] = lb.Width

		bitInputs = append(bitInputs, ib.Names()...)
		bitOutputs = append(bitOutputs, ob.Names()...)
		bitLatches = append(bitLatches, lb.Names()...)

		init := make([]bool, ib.Width)
		if cfg.inits != nil && cfg.inits[k] != nil {
			if len(cfg.inits[k]) != ib.Width {
				return Circuit{}, fmt.Errorf("%w: initial value for latch %q has %d bits, want %d", ErrWidthMismatch, lb.Root, len(cfg.inits[k]), ib.Width)
			}
			copy(init, cfg.inits[k])
		}
		bitInits = append(bitInits, init...)
	}

	a, err := c.Aig.Feedback(bitInputs, bitOutputs, bitLatches, bitInits, cfg.keepOutputs)
	if err != nil {
		return Circuit{}, fmt.Errorf("%w: %v", ErrNameCollision, err)
	}

	imap := c.Imap.Omit(inputs)
	omap := c.Omap
	if !cfg.keepOutputs {
		omap = omap.Omit(outputs)
	}
	lmap, err := c.Lmap.Join(NewBundleMap(latchWidths))
	if err != nil {
		return Circuit{}, err
	}
	return Circuit{Aig: a, Imap: imap, Omap: omap, Lmap: lmap}, nil
}

type unrollConfig struct {
	opts aig.UnrollOpts
}

// UnrollOption configures Circuit.Unroll.
type UnrollOption func(*unrollConfig)

// WithoutInit leaves the step-0 latches as free inputs instead of
// binding them to their initial values.
func WithoutInit() UnrollOption {
	return func(cfg *unrollConfig) { cfg.opts.Free = true }
}

// KeepLatches keeps the final-step latch values as outputs.
func KeepLatches() UnrollOption {
	return func(cfg *unrollConfig) { cfg.opts.KeepLatches = true }
}

// OnlyLastOutputs keeps only the outputs of the final time step.
func OnlyLastOutputs() UnrollOption {
	return func(cfg *unrollConfig) { cfg.opts.OnlyLastOutputs = true }
}

// Unroll expands the circuit over a bounded time horizon into one
// combinational word circuit. Inputs are re-bundled per step under
// "name##time_t" for t in [0, horizon), outputs for t in [1, horizon].
// Sequential behavior becomes purely combinational over time-indexed
// signals, which is the encoding bounded model checking consumes.
func (c Circuit) Unroll(horizon int, opts ...UnrollOption) (Circuit, error) {
	var cfg unrollConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	a, err := c.Aig.Unroll(horizon, cfg.opts)
	if err != nil {
		return Circuit{}, err
	}
	for _, kind := range []aig.Kind{aig.KindInput, aig.KindOutput, aig.KindLatch} {
		var names []string
		switch kind {
		case aig.KindInput:
			names = a.Inputs()
		case aig.KindOutput:
			names = a.Outputs()
		case aig.KindLatch:
			names = a.Latches()
		}
		renames := make(map[string]string, len(names))
		for _, name := range names {
			shuffled, err := shuffleIDTime(name)
			if err != nil {
				return Circuit{}, err
			}
			renames[name] = shuffled
		}
		if a, err = a.Relabel(kind, renames); err != nil {
			return Circuit{}, fmt.Errorf("%w: %v", ErrNameCollision, err)
		}
	}
	return Rebundle(a)
}
