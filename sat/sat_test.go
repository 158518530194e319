package sat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/consensys/aigbv"
	"github.com/consensys/aigbv/sat"
)

func TestSolveFindsModel(t *testing.T) {
	assert := require.New(t)

	// a + b == 77, a == 33
	a := aigbv.UAtom(8, "a")
	b := aigbv.UAtom(8, "b")
	query := a.Add(b).Equals(aigbv.UConst(8, 77)).And(a.Equals(aigbv.UConst(8, 33)))

	model, ok, err := sat.Solve(query.Circuit(), query.Output())
	assert.NoError(err)
	assert.True(ok)

	va, err := aigbv.DecodeUint(model["a"])
	assert.NoError(err)
	vb, err := aigbv.DecodeUint(model["b"])
	assert.NoError(err)
	assert.EqualValues(33, va)
	assert.EqualValues(44, vb)
}

func TestSolveUnsat(t *testing.T) {
	assert := require.New(t)

	// x < x never holds
	x := aigbv.UAtom(8, "x")
	query := x.Lt(x)

	model, ok, err := sat.Solve(query.Circuit(), query.Output())
	assert.NoError(err)
	assert.False(ok)
	assert.Nil(model)
}

func TestSolveValidatesOutput(t *testing.T) {
	assert := require.New(t)

	wide := aigbv.IdentityGate(8, "a", "o")
	_, _, err := sat.Solve(wide, "o")
	assert.ErrorIs(err, aigbv.ErrWidthMismatch)

	_, _, err = sat.Solve(wide, "nope")
	assert.ErrorIs(err, aigbv.ErrUnknownSignal)
}

// badCounter builds a closed 2-bit counter incrementing every step,
// with a 1-bit output "bad" firing when the count reaches 3.
func badCounter(t *testing.T) aigbv.Circuit {
	t.Helper()

	tee := aigbv.TeeGate(2, "out", []string{"count", "cmp"})
	one := aigbv.SourceGate(2, 1, "one")
	add := aigbv.AddGate(2, "count", "one", "next")
	three := aigbv.SourceGate(2, 3, "three")
	eq := aigbv.EqGate(2, "cmp", "three", "bad")

	c, err := tee.Par(one)
	require.NoError(t, err)
	c, err = c.Compose(add)
	require.NoError(t, err)
	c, err = c.Par(three)
	require.NoError(t, err)
	c, err = c.Compose(eq)
	require.NoError(t, err)

	c, err = c.Feedback([]string{"out"}, []string{"next"}, aigbv.WithLatchNames([]string{"state"}))
	require.NoError(t, err)
	return c
}

func TestBoundedModelCheckFindsStep(t *testing.T) {
	assert := require.New(t)

	c := badCounter(t)
	assert.Empty(c.Inputs())
	assert.Equal([]string{"bad"}, c.Outputs())

	// count goes 0,1,2,3: "bad" first observable at step 4
	w, err := sat.BoundedModelCheck(c, "bad", 6)
	assert.NoError(err)
	assert.NotNil(w)
	assert.Equal(4, w.Step)
	assert.Empty(w.Inputs)
}

func TestBoundedModelCheckExhaustsHorizon(t *testing.T) {
	assert := require.New(t)

	c := badCounter(t)
	w, err := sat.BoundedModelCheck(c, "bad", 3)
	assert.NoError(err)
	assert.Nil(w)
}

func TestBoundedModelCheckWithFreeInputs(t *testing.T) {
	assert := require.New(t)

	// x == 9 reachable immediately with the right input
	x := aigbv.UAtom(4, "x")
	query := x.Equals(aigbv.UConst(4, 9))

	w, err := sat.BoundedModelCheck(query.Circuit(), query.Output(), 2)
	assert.NoError(err)
	assert.NotNil(w)
	assert.Equal(1, w.Step)

	vx, err := aigbv.DecodeUint(w.Inputs["x##time_0"])
	assert.NoError(err)
	assert.EqualValues(9, vx)
}
