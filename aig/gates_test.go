package aig

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFullAdderTruthTable(t *testing.T) {
	assert := require.New(t)

	fa, err := FullAdder("a", "b", "cin", "sum", "cout")
	assert.NoError(err)

	for i := 0; i < 8; i++ {
		a, b, cin := i&1 == 1, i&2 == 2, i&4 == 4
		outs, _, err := fa.Eval(map[string]bool{"a": a, "b": b, "cin": cin}, nil)
		assert.NoError(err)

		n := 0
		for _, v := range []bool{a, b, cin} {
			if v {
				n++
			}
		}
		assert.Equal(n%2 == 1, outs["sum"], "sum(%v,%v,%v)", a, b, cin)
		assert.Equal(n >= 2, outs["cout"], "cout(%v,%v,%v)", a, b, cin)
	}
}

func TestFullAdderInstancesAreIndependent(t *testing.T) {
	assert := require.New(t)

	// two instances with overlapping port names must not share nodes
	fa1, err := FullAdder("a", "b", "c0", "s0", "c1")
	assert.NoError(err)
	fa2, err := FullAdder("a2", "b2", "c1", "s1", "c2")
	assert.NoError(err)

	chained, err := fa1.Compose(fa2)
	assert.NoError(err)

	// 1+1 in the low bit: carry ripples into the second adder
	outs, _, err := chained.Eval(map[string]bool{
		"a": true, "b": true, "c0": false,
		"a2": false, "b2": false,
	}, nil)
	assert.NoError(err)
	assert.False(outs["s0"])
	assert.True(outs["s1"])
	assert.False(outs["c2"])
}

func TestConjDisjGate(t *testing.T) {
	names := []string{"x0", "x1", "x2"}
	conj := ConjGate(names, "o")
	disj := DisjGate(names, "o")

	for i := 0; i < 8; i++ {
		inputs := map[string]bool{}
		all, any := true, false
		for k, name := range names {
			v := i&(1<<k) != 0
			inputs[name] = v
			all = all && v
			any = any || v
		}
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			assert := require.New(t)
			outs, _, err := conj.Eval(inputs, nil)
			assert.NoError(err)
			assert.Equal(all, outs["o"])
			outs, _, err = disj.Eval(inputs, nil)
			assert.NoError(err)
			assert.Equal(any, outs["o"])
		})
	}
}

func TestEmptyConjDisj(t *testing.T) {
	assert := require.New(t)

	outs, _, err := ConjGate(nil, "o").Eval(nil, nil)
	assert.NoError(err)
	assert.True(outs["o"])

	outs, _, err = DisjGate(nil, "o").Eval(nil, nil)
	assert.NoError(err)
	assert.False(outs["o"])
}

func TestSourceSinkIdentityTee(t *testing.T) {
	assert := require.New(t)

	c, err := Source(map[string]bool{"a": true}).Compose(NotGate("a", "o"))
	assert.NoError(err)
	outs, _, err := c.Eval(nil, nil)
	assert.NoError(err)
	assert.False(outs["o"])

	c, err = Identity([]string{"x"}).Compose(Sink([]string{"x"}))
	assert.NoError(err)
	assert.Empty(c.Outputs())
	assert.Equal([]string{"x"}, c.Inputs())

	tee := Tee(map[string][]string{"x": {"y", "z"}})
	outs, _, err = tee.Eval(map[string]bool{"x": true}, nil)
	assert.NoError(err)
	assert.True(outs["y"])
	assert.True(outs["z"])
}
