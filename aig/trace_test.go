package aig

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTraceRoundTrip(t *testing.T) {
	assert := require.New(t)

	// ripple a value through two outputs over a few steps
	a, b := NewInput(), NewInput()
	c, err := New(
		map[string]*Node{"a": a, "b": b},
		map[string]Ref{"x": a.Ref().Xor(b.Ref()), "y": a.Ref().And(b.Ref())},
		nil,
	)
	assert.NoError(err)

	steps := []map[string]bool{
		{"a": false, "b": false},
		{"a": true, "b": false},
		{"a": false, "b": true},
		{"a": true, "b": true},
		{"a": true, "b": false},
	}
	trace, err := c.Simulate(steps)
	assert.NoError(err)

	outputs := c.Outputs()
	var buf bytes.Buffer
	assert.NoError(WriteTrace(&buf, outputs, trace))

	// 2 outputs x 5 steps packs into 2 bytes
	assert.Equal(2, buf.Len())

	back, err := ReadTrace(&buf, outputs, len(steps))
	assert.NoError(err)
	assert.Equal(trace, back)
}

func TestWriteTraceUnknownOutput(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTrace(&buf, []string{"nope"}, []map[string]bool{{"x": true}})
	require.ErrorIs(t, err, ErrUnknownName)
}
