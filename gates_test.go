package aigbv

import (
	"fmt"
	"math/bits"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

const testWidth = 8

func encU(t *testing.T, width int, v uint64) []bool {
	t.Helper()
	bits, err := EncodeInt(width, int64(v))
	require.NoError(t, err)
	return bits
}

func evalGate(t *testing.T, c Circuit, inputs map[string][]bool) map[string][]bool {
	t.Helper()
	outs, _, err := c.Eval(inputs, nil)
	require.NoError(t, err)
	return outs
}

// evalU evaluates a combinational word circuit on uint8 inputs and
// decodes the named output. Failures surface as an impossible value.
func evalU(c Circuit, inputs map[string]uint8, output string) (uint64, bool) {
	words := make(map[string][]bool, len(inputs))
	for name, v := range inputs {
		bits, err := EncodeInt(testWidth, int64(v))
		if err != nil {
			return 0, false
		}
		words[name] = bits
	}
	outs, _, err := c.Eval(words, nil)
	if err != nil {
		return 0, false
	}
	v, err := DecodeUint(outs[output])
	if err != nil {
		return 0, false
	}
	return v, true
}

func testParams() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	return parameters
}

func TestArithmeticGates(t *testing.T) {
	properties := gopter.NewProperties(testParams())

	add := AddGate(testWidth, "a", "b", "o")
	sub := SubtractGate(testWidth, "a", "b", "o")
	neg := NegateGate(testWidth, "a", "o")
	abs := AbsGate(testWidth, "a", "o")

	properties.Property("add is modular addition", prop.ForAll(
		func(a, b uint8) bool {
			got, ok := evalU(add, map[string]uint8{"a": a, "b": b}, "o")
			return ok && got == uint64(a+b)
		}, gen.UInt8(), gen.UInt8()))

	properties.Property("subtract is modular subtraction", prop.ForAll(
		func(a, b uint8) bool {
			got, ok := evalU(sub, map[string]uint8{"a": a, "b": b}, "o")
			return ok && got == uint64(a-b)
		}, gen.UInt8(), gen.UInt8()))

	properties.Property("negate is two's-complement negation", prop.ForAll(
		func(a uint8) bool {
			got, ok := evalU(neg, map[string]uint8{"a": a}, "o")
			return ok && got == uint64(-a)
		}, gen.UInt8()))

	properties.Property("abs flips negative words", prop.ForAll(
		func(a uint8) bool {
			got, ok := evalU(abs, map[string]uint8{"a": a}, "o")
			want := int8(a)
			if want < 0 {
				want = -want
			}
			return ok && got == uint64(uint8(want))
		}, gen.UInt8()))

	properties.TestingRun(t)
}

func TestAddGateWithCarry(t *testing.T) {
	assert := require.New(t)

	add := AddGateWithCarry(testWidth, "a", "b", "o", "c")
	outs := evalGate(t, add, map[string][]bool{
		"a": encU(t, testWidth, 255),
		"b": encU(t, testWidth, 1),
	})
	sum, err := DecodeUint(outs["o"])
	assert.NoError(err)
	assert.EqualValues(0, sum)
	assert.Equal([]bool{true}, outs["c"])

	outs = evalGate(t, add, map[string][]bool{
		"a": encU(t, testWidth, 1),
		"b": encU(t, testWidth, 2),
	})
	sum, err = DecodeUint(outs["o"])
	assert.NoError(err)
	assert.EqualValues(3, sum)
	assert.Equal([]bool{false}, outs["c"])
}

func TestComparisonGates(t *testing.T) {
	properties := gopter.NewProperties(testParams())

	uge := UnsignedGeGate(testWidth, "a", "b", "o")
	ule := UnsignedLeGate(testWidth, "a", "b", "o")
	sge := SignedGeGate(testWidth, "a", "b", "o")
	sle := SignedLeGate(testWidth, "a", "b", "o")
	eq := EqGate(testWidth, "a", "b", "o")
	ne := NeGate(testWidth, "a", "b", "o")

	bit := func(c Circuit, a, b uint8, want bool) bool {
		got, ok := evalU(c, map[string]uint8{"a": a, "b": b}, "o")
		if !ok {
			return false
		}
		return (got == 1) == want
	}

	properties.Property("unsigned ge", prop.ForAll(
		func(a, b uint8) bool { return bit(uge, a, b, a >= b) }, gen.UInt8(), gen.UInt8()))
	properties.Property("unsigned le", prop.ForAll(
		func(a, b uint8) bool { return bit(ule, a, b, a <= b) }, gen.UInt8(), gen.UInt8()))
	properties.Property("signed ge", prop.ForAll(
		func(a, b uint8) bool { return bit(sge, a, b, int8(a) >= int8(b)) }, gen.UInt8(), gen.UInt8()))
	properties.Property("signed le", prop.ForAll(
		func(a, b uint8) bool { return bit(sle, a, b, int8(a) <= int8(b)) }, gen.UInt8(), gen.UInt8()))
	properties.Property("eq", prop.ForAll(
		func(a, b uint8) bool { return bit(eq, a, b, a == b) }, gen.UInt8(), gen.UInt8()))
	properties.Property("ne", prop.ForAll(
		func(a, b uint8) bool { return bit(ne, a, b, a != b) }, gen.UInt8(), gen.UInt8()))

	properties.TestingRun(t)
}

func TestShiftGates(t *testing.T) {
	properties := gopter.NewProperties(testParams())

	for shift := 0; shift <= testWidth; shift++ {
		left := LeftShiftGate(testWidth, shift, "a", "o")
		lright := LogicalRightShiftGate(testWidth, shift, "a", "o")
		aright := ArithmeticRightShiftGate(testWidth, shift, "a", "o")
		s := shift

		properties.Property(fmt.Sprintf("shift by %d", shift), prop.ForAll(
			func(a uint8) bool {
				l, ok1 := evalU(left, map[string]uint8{"a": a}, "o")
				lr, ok2 := evalU(lright, map[string]uint8{"a": a}, "o")
				ar, ok3 := evalU(aright, map[string]uint8{"a": a}, "o")
				return ok1 && ok2 && ok3 &&
					l == uint64(a<<s) &&
					lr == uint64(a>>s) &&
					ar == uint64(uint8(int8(a)>>s))
			}, gen.UInt8()))
	}

	properties.TestingRun(t)
}

func TestShiftGateRejectsNegativeShift(t *testing.T) {
	require.Panics(t, func() { LeftShiftGate(testWidth, -1, "a", "o") })
}

func TestBitwiseGates(t *testing.T) {
	properties := gopter.NewProperties(testParams())

	and := BitwiseAndGate(testWidth, "a", "b", "o")
	or := BitwiseOrGate(testWidth, "a", "b", "o")
	xor := BitwiseXorGate(testWidth, "a", "b", "o")
	not := BitwiseNotGate(testWidth, "a", "o")

	properties.Property("bitwise ops", prop.ForAll(
		func(a, b uint8) bool {
			ga, ok1 := evalU(and, map[string]uint8{"a": a, "b": b}, "o")
			gr, ok2 := evalU(or, map[string]uint8{"a": a, "b": b}, "o")
			gx, ok3 := evalU(xor, map[string]uint8{"a": a, "b": b}, "o")
			gn, ok4 := evalU(not, map[string]uint8{"a": a}, "o")
			return ok1 && ok2 && ok3 && ok4 &&
				ga == uint64(a&b) && gr == uint64(a|b) && gx == uint64(a^b) && gn == uint64(^a)
		}, gen.UInt8(), gen.UInt8()))

	properties.TestingRun(t)
}

func TestCombineGatePutsLeftLow(t *testing.T) {
	properties := gopter.NewProperties(testParams())

	combine := CombineGate(testWidth, "a", testWidth, "b", "o")
	properties.Property("left operand is the low half", prop.ForAll(
		func(a, b uint8) bool {
			bitsA, err := EncodeInt(testWidth, int64(a))
			if err != nil {
				return false
			}
			bitsB, err := EncodeInt(testWidth, int64(b))
			if err != nil {
				return false
			}
			outs, _, err := combine.Eval(map[string][]bool{"a": bitsA, "b": bitsB}, nil)
			if err != nil {
				return false
			}
			got, err := DecodeUint(outs["o"])
			return err == nil && got == uint64(a)|uint64(b)<<testWidth
		}, gen.UInt8(), gen.UInt8()))

	properties.TestingRun(t)
}

func TestSliceAndIndexGates(t *testing.T) {
	assert := require.New(t)

	sl, err := SliceGate(testWidth, 2, 5, "a", "o")
	assert.NoError(err)
	w, _ := sl.Omap.Width("o")
	assert.Equal(3, w)
	outs := evalGate(t, sl, map[string][]bool{"a": encU(t, testWidth, 0b10110100)})
	got, err := DecodeUint(outs["o"])
	assert.NoError(err)
	assert.EqualValues(0b101, got)

	ix, err := IndexGate(testWidth, 7, "a", "o")
	assert.NoError(err)
	outs = evalGate(t, ix, map[string][]bool{"a": encU(t, testWidth, 0b10000000)})
	assert.Equal([]bool{true}, outs["o"])

	_, err = SliceGate(testWidth, 5, 5, "a", "o")
	assert.ErrorIs(err, ErrUnsupportedIndex)
	_, err = SliceGate(testWidth, -1, 2, "a", "o")
	assert.ErrorIs(err, ErrUnsupportedIndex)
	_, err = SliceGate(testWidth, 4, 9, "a", "o")
	assert.ErrorIs(err, ErrUnsupportedIndex)
	_, err = IndexGate(testWidth, 8, "a", "o")
	assert.ErrorIs(err, ErrUnsupportedIndex)
}

func TestRepeatGate(t *testing.T) {
	assert := require.New(t)

	r := RepeatGate(4, "a", "o")
	outs := evalGate(t, r, map[string][]bool{"a": {true}})
	assert.Equal([]bool{true, true, true, true}, outs["o"])

	assert.Panics(func() { RepeatGate(0, "a", "o") })
}

func TestSourceSinkTeeIdentityGates(t *testing.T) {
	assert := require.New(t)

	src := SourceGate(testWidth, -1, "o")
	outs := evalGate(t, src, nil)
	got, err := DecodeUint(outs["o"])
	assert.NoError(err)
	assert.EqualValues(255, got)

	id := IdentityGate(testWidth, "a", "o")
	outs = evalGate(t, id, map[string][]bool{"a": encU(t, testWidth, 42)})
	got, err = DecodeUint(outs["o"])
	assert.NoError(err)
	assert.EqualValues(42, got)

	tee := TeeGate(testWidth, "a", []string{"x", "y"})
	outs = evalGate(t, tee, map[string][]bool{"a": encU(t, testWidth, 7)})
	assert.Equal(outs["x"], outs["y"])
	got, err = DecodeUint(outs["x"])
	assert.NoError(err)
	assert.EqualValues(7, got)

	sink := SinkGate(testWidth, []string{"a"})
	assert.Empty(sink.Outputs())
	assert.Equal([]string{"a"}, sink.Inputs())
}

func TestIsZeroIsNonzeroGates(t *testing.T) {
	assert := require.New(t)

	z := IsZeroGate(testWidth, "a", "o")
	nz := IsNonzeroGate(testWidth, "a", "o")

	outs := evalGate(t, z, map[string][]bool{"a": encU(t, testWidth, 0)})
	assert.Equal([]bool{true}, outs["o"])
	outs = evalGate(t, nz, map[string][]bool{"a": encU(t, testWidth, 0)})
	assert.Equal([]bool{false}, outs["o"])

	outs = evalGate(t, z, map[string][]bool{"a": encU(t, testWidth, 9)})
	assert.Equal([]bool{false}, outs["o"])
	outs = evalGate(t, nz, map[string][]bool{"a": encU(t, testWidth, 9)})
	assert.Equal([]bool{true}, outs["o"])
}

func TestReduceAndGate(t *testing.T) {
	assert := require.New(t)

	all := ReduceAndGate(testWidth, "a", "o")
	for _, tc := range []struct {
		in   uint64
		want bool
	}{
		{0, false},
		{0xfe, false},
		{0xff, true},
	} {
		outs := evalGate(t, all, map[string][]bool{"a": encU(t, testWidth, tc.in)})
		assert.Equal([]bool{tc.want}, outs["o"], "input %#x", tc.in)
	}
}

func TestParityGates(t *testing.T) {
	properties := gopter.NewProperties(testParams())

	parity := ReduceXorGate(testWidth, "a", "o")
	dot := DotMod2Gate(testWidth, "a", "b", "o")

	properties.Property("reduce-xor is popcount mod 2", prop.ForAll(
		func(a uint8) bool {
			got, ok := evalU(parity, map[string]uint8{"a": a}, "o")
			return ok && got == uint64(bits.OnesCount8(a)%2)
		}, gen.UInt8()))

	properties.Property("dot product mod 2 is the parity of the bitwise and", prop.ForAll(
		func(a, b uint8) bool {
			got, ok := evalU(dot, map[string]uint8{"a": a, "b": b}, "o")
			return ok && got == uint64(bits.OnesCount8(a&b)%2)
		}, gen.UInt8(), gen.UInt8()))

	properties.TestingRun(t)
}

func TestITEGate(t *testing.T) {
	assert := require.New(t)

	ite := ITEGate(testWidth, "t", "c", "a", "o")
	cons := encU(t, testWidth, 11)
	alt := encU(t, testWidth, 22)

	outs := evalGate(t, ite, map[string][]bool{"t": {true}, "c": cons, "a": alt})
	got, err := DecodeUint(outs["o"])
	assert.NoError(err)
	assert.EqualValues(11, got)

	outs = evalGate(t, ite, map[string][]bool{"t": {false}, "c": cons, "a": alt})
	got, err = DecodeUint(outs["o"])
	assert.NoError(err)
	assert.EqualValues(22, got)
}

func TestGateRejectsNonPositiveWidth(t *testing.T) {
	require.Panics(t, func() { IdentityGate(0, "a", "o") })
	require.Panics(t, func() { AddGate(0, "a", "b", "o") })
}
