package aig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAAGRoundTripCombinational(t *testing.T) {
	assert := require.New(t)

	fa, err := FullAdder("a", "b", "cin", "sum", "cout")
	assert.NoError(err)

	var sb strings.Builder
	assert.NoError(fa.WriteAAG(&sb))
	back, err := ParseAAG(sb.String())
	assert.NoError(err)

	assert.Equal(fa.Inputs(), back.Inputs())
	assert.Equal(fa.Outputs(), back.Outputs())

	for i := 0; i < 8; i++ {
		inputs := map[string]bool{"a": i&1 == 1, "b": i&2 == 2, "cin": i&4 == 4}
		want, _, err := fa.Eval(inputs, nil)
		assert.NoError(err)
		got, _, err := back.Eval(inputs, nil)
		assert.NoError(err)
		assert.Equal(want, got)
	}
}

func TestAAGRoundTripSequential(t *testing.T) {
	assert := require.New(t)

	c := toggler(t, true)
	var sb strings.Builder
	assert.NoError(c.WriteAAG(&sb))
	back, err := ParseAAG(sb.String())
	assert.NoError(err)

	assert.Equal(c.Latches(), back.Latches())
	assert.Equal(c.LatchInits(), back.LatchInits())

	steps := []map[string]bool{{}, {}, {}, {}}
	want, err := c.Simulate(steps)
	assert.NoError(err)
	got, err := back.Simulate(steps)
	assert.NoError(err)
	assert.Equal(want, got)
}

func TestWriteCreatesFile(t *testing.T) {
	assert := require.New(t)

	path := filepath.Join(t.TempDir(), "circuit.aag")
	assert.NoError(toggler(t, false).Write(path))

	raw, err := os.ReadFile(path)
	assert.NoError(err)
	assert.True(strings.HasPrefix(string(raw), "aag "))

	_, err = ParseAAG(string(raw))
	assert.NoError(err)
}

func TestParseAAGDefaultNames(t *testing.T) {
	assert := require.New(t)

	// no symbol table: ports take positional names
	c, err := ParseAAG("aag 1 1 0 1 0\n2\n3\n")
	assert.NoError(err)
	assert.Equal([]string{"i0"}, c.Inputs())
	assert.Equal([]string{"o0"}, c.Outputs())

	outs, _, err := c.Eval(map[string]bool{"i0": false}, nil)
	assert.NoError(err)
	assert.True(outs["o0"])
}

func TestParseAAGErrors(t *testing.T) {
	for name, src := range map[string]string{
		"empty":          "",
		"bad magic":      "mig 0 0 0 0 0\n",
		"bad counts":     "aag 0 1 0 0 0\n2\n",
		"odd input":      "aag 1 1 0 0 0\n3\n",
		"truncated":      "aag 2 2 0 0 0\n2\n",
		"undefined var":  "aag 2 1 0 1 0\n2\n4\n",
		"cycle":          "aag 2 1 0 1 1\n2\n4\n4 4 2\n",
		"double def":     "aag 2 1 0 0 1\n2\n2 2 2\n",
		"bad latch init": "aag 1 0 1 0 0\n2 2 7\n",
		"bad symbol":     "aag 1 1 0 0 0\n2\nx0 name\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAAG(src)
			require.ErrorIs(t, err, ErrBadFormat)
		})
	}
}
