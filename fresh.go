package aigbv

import (
	"fmt"
	"sync/atomic"
)

var freshCounter uint64

// FreshName returns a word-signal name that is unique for the lifetime
// of the process. Synthesized gates name their internal outputs with it
// so that independently constructed circuits never collide when
// composed.
func FreshName() string {
	return fmt.Sprintf("aigbv#%d", atomic.AddUint64(&freshCounter, 1))
}
