package aigbv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesBundleBits(t *testing.T) {
	assert := require.New(t)

	id := IdentityGate(4, "a", "o")
	// the bundle maps must describe actual ports
	_, err := New(id.Aig, NewBundleMap(map[string]int{"a": 4}), NewBundleMap(map[string]int{"o": 5}), BundleMap{})
	assert.ErrorIs(err, ErrUnknownSignal)

	c, err := New(id.Aig, id.Imap, id.Omap, BundleMap{})
	assert.NoError(err)
	assert.Equal([]string{"a"}, c.Inputs())
	assert.Equal([]string{"o"}, c.Outputs())
	assert.Empty(c.Latches())
}

func TestComposeWiresWords(t *testing.T) {
	assert := require.New(t)

	// (a + b) >> negate
	add := AddGate(testWidth, "a", "b", "x")
	neg := NegateGate(testWidth, "x", "o")
	c, err := add.Compose(neg)
	assert.NoError(err)
	assert.Equal([]string{"a", "b"}, c.Inputs())
	assert.Equal([]string{"o"}, c.Outputs())

	outs := evalGate(t, c, map[string][]bool{
		"a": encU(t, testWidth, 3),
		"b": encU(t, testWidth, 4),
	})
	got, err := DecodeUint(outs["o"])
	assert.NoError(err)
	assert.EqualValues(256-7, got)
}

func TestComposeLeftoverOutputsSurvive(t *testing.T) {
	assert := require.New(t)

	add := AddGateWithCarry(testWidth, "a", "b", "x", "carry")
	neg := NegateGate(testWidth, "x", "o")
	c, err := add.Compose(neg)
	assert.NoError(err)
	assert.Equal([]string{"carry", "o"}, c.Outputs())
}

func TestComposeWidthMismatch(t *testing.T) {
	assert := require.New(t)

	narrow := IdentityGate(4, "a", "x")
	wide := IdentityGate(8, "x", "o")
	_, err := narrow.Compose(wide)
	assert.ErrorIs(err, ErrWidthMismatch)
}

func TestComposeConflicts(t *testing.T) {
	assert := require.New(t)

	// shadowed output
	_, err := IdentityGate(4, "a", "o").Compose(SourceGate(4, 1, "o"))
	assert.ErrorIs(err, ErrInterfaceConflict)
}

func TestParDisjointWords(t *testing.T) {
	assert := require.New(t)

	c, err := IdentityGate(4, "a", "x").Par(IdentityGate(4, "b", "y"))
	assert.NoError(err)
	assert.Equal([]string{"a", "b"}, c.Inputs())
	assert.Equal([]string{"x", "y"}, c.Outputs())

	_, err = IdentityGate(4, "a", "x").Par(IdentityGate(4, "b", "x"))
	assert.ErrorIs(err, ErrInterfaceConflict)
}

func TestParSharedInputIsTeed(t *testing.T) {
	assert := require.New(t)

	// both sides read word "a"; the parallel composition must expose a
	// single "a" feeding both
	double := AddGate(testWidth, "a", "b", "x")
	not := BitwiseNotGate(testWidth, "a", "y")
	c, err := double.Par(not)
	assert.NoError(err)
	assert.Equal([]string{"a", "b"}, c.Inputs())
	assert.Equal([]string{"x", "y"}, c.Outputs())

	outs := evalGate(t, c, map[string][]bool{
		"a": encU(t, testWidth, 5),
		"b": encU(t, testWidth, 1),
	})
	x, err := DecodeUint(outs["x"])
	assert.NoError(err)
	y, err := DecodeUint(outs["y"])
	assert.NoError(err)
	assert.EqualValues(6, x)
	assert.EqualValues(250, y)
}

func TestParSharedInputWidthMismatch(t *testing.T) {
	_, err := IdentityGate(4, "a", "x").Par(IdentityGate(8, "a", "y"))
	require.ErrorIs(t, err, ErrWidthMismatch)
}

func TestRelabelWords(t *testing.T) {
	assert := require.New(t)

	c, err := IdentityGate(4, "a", "o").Relabel(Input, map[string]string{"a": "b"})
	assert.NoError(err)
	assert.Equal([]string{"b"}, c.Inputs())

	outs := evalGate(t, c, map[string][]bool{"b": encU(t, 4, 9)})
	got, err := DecodeUint(outs["o"])
	assert.NoError(err)
	assert.EqualValues(9, got)

	_, err = AddGateWithCarry(4, "a", "b", "o", "c").Relabel(Output, map[string]string{"o": "c"})
	assert.ErrorIs(err, ErrNameCollision)
}

func TestComposeIdentityIsNeutral(t *testing.T) {
	assert := require.New(t)

	add := AddGate(testWidth, "a", "b", "o")
	wrapped, err := add.Compose(IdentityGate(testWidth, "o", "o"))
	assert.NoError(err)
	assert.Equal(add.Inputs(), wrapped.Inputs())
	assert.Equal(add.Outputs(), wrapped.Outputs())

	inputs := map[string][]bool{
		"a": encU(t, testWidth, 113),
		"b": encU(t, testWidth, 29),
	}
	if diff := cmp.Diff(evalGate(t, add, inputs), evalGate(t, wrapped, inputs)); diff != "" {
		t.Fatalf("identity wrapper changed behaviour (-bare +wrapped):\n%s", diff)
	}
}

func TestParCommutesOnDisjointWords(t *testing.T) {
	assert := require.New(t)

	left := AddGate(testWidth, "a", "b", "x")
	right := BitwiseNotGate(testWidth, "c", "y")
	ab, err := left.Par(right)
	assert.NoError(err)
	ba, err := right.Par(left)
	assert.NoError(err)
	assert.Equal(ab.Inputs(), ba.Inputs())
	assert.Equal(ab.Outputs(), ba.Outputs())

	inputs := map[string][]bool{
		"a": encU(t, testWidth, 200),
		"b": encU(t, testWidth, 56),
		"c": encU(t, testWidth, 85),
	}
	if diff := cmp.Diff(evalGate(t, ab, inputs), evalGate(t, ba, inputs)); diff != "" {
		t.Fatalf("parallel composition is not commutative (-ab +ba):\n%s", diff)
	}
}

func TestEvalRequiresEveryInput(t *testing.T) {
	assert := require.New(t)

	add := AddGate(4, "a", "b", "o")
	_, _, err := add.Eval(map[string][]bool{"a": encU(t, 4, 1)}, nil)
	assert.ErrorIs(err, ErrUnknownSignal)
}

func TestEvalMapsAreComparable(t *testing.T) {
	assert := require.New(t)

	add := AddGate(4, "a", "b", "o")
	inputs := map[string][]bool{"a": encU(t, 4, 2), "b": encU(t, 4, 3)}

	outs1, _, err := add.Eval(inputs, nil)
	assert.NoError(err)
	outs2, _, err := add.Eval(inputs, nil)
	assert.NoError(err)

	if diff := cmp.Diff(outs1, outs2); diff != "" {
		t.Fatalf("evaluation is not deterministic (-first +second):\n%s", diff)
	}
}
