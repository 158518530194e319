package aigbv

import (
	"bytes"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
)

func TestMarshalRoundTrip(t *testing.T) {
	assert := require.New(t)

	c := counter(t, testWidth)

	var buf bytes.Buffer
	n, err := c.WriteTo(&buf)
	assert.NoError(err)
	assert.EqualValues(buf.Len(), n)

	var back Circuit
	m, err := back.ReadFrom(&buf)
	assert.NoError(err)
	assert.Equal(n, m)

	assert.Equal(c.Inputs(), back.Inputs())
	assert.Equal(c.Outputs(), back.Outputs())
	assert.Equal(c.Latches(), back.Latches())

	// behavior survives the round trip
	step := map[string][]bool{"step": encU(t, testWidth, 5)}
	wantOuts, wantNext, err := c.Eval(step, nil)
	assert.NoError(err)
	gotOuts, gotNext, err := back.Eval(step, nil)
	assert.NoError(err)
	assert.Equal(wantOuts, gotOuts)
	assert.Equal(wantNext, gotNext)
}

func TestReadFromRejectsForeignMajorVersion(t *testing.T) {
	assert := require.New(t)

	c := AddGate(4, "a", "b", "o")
	var buf bytes.Buffer
	_, err := c.WriteTo(&buf)
	assert.NoError(err)

	var blob wireCircuit
	assert.NoError(cbor.Unmarshal(buf.Bytes(), &blob))
	blob.Version = "99.0.0"
	raw, err := cbor.Marshal(blob)
	assert.NoError(err)

	var back Circuit
	_, err = back.ReadFrom(bytes.NewReader(raw))
	assert.Error(err)
	assert.Contains(err.Error(), "incompatible serialization version")
}

func TestReadFromRejectsGarbage(t *testing.T) {
	var back Circuit
	_, err := back.ReadFrom(bytes.NewReader([]byte("not cbor at all")))
	require.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	assert := require.New(t)

	c := AddGate(4, "a", "b", "o")
	f1, err := c.Fingerprint()
	assert.NoError(err)
	f2, err := c.Fingerprint()
	assert.NoError(err)
	assert.Equal(f1, f2)

	other := AddGate(4, "a", "b", "different")
	f3, err := other.Fingerprint()
	assert.NoError(err)
	assert.NotEqual(f1, f3)
}
