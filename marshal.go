package aigbv

import (
	"fmt"
	"io"
	"strings"

	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/consensys/aigbv/aig"
)

// Serialized word circuits carry the bit-level graph in AIGER ASCII
// form plus the bundle widths, wrapped in a CBOR envelope stamped with
// the library version. A reader refuses payloads written by a different
// major version.

type wireCircuit struct {
	Version string         `cbor:"1,keyasint"`
	Inputs  map[string]int `cbor:"2,keyasint"`
	Outputs map[string]int `cbor:"3,keyasint"`
	Latches map[string]int `cbor:"4,keyasint"`
	AAG     string         `cbor:"5,keyasint"`
}

func encMode() (cbor.EncMode, error) {
	return cbor.CoreDetEncOptions().EncMode()
}

func decMode() (cbor.DecMode, error) {
	return cbor.DecOptions{
		MaxArrayElements: 134217728,
		MaxMapPairs:      134217728,
	}.DecMode()
}

type countWriter struct {
	w io.Writer
	n int64
}

func (cw *countWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// WriteTo serializes the circuit. It implements io.WriterTo.
func (c Circuit) WriteTo(w io.Writer) (int64, error) {
	blob := wireCircuit{Version: Version.String()}

	var g errgroup.Group
	g.Go(func() error {
		var sb strings.Builder
		if err := c.Aig.WriteAAG(&sb); err != nil {
			return err
		}
		blob.AAG = sb.String()
		return nil
	})
	g.Go(func() error {
		blob.Inputs = bundleWidths(c.Imap)
		blob.Outputs = bundleWidths(c.Omap)
		blob.Latches = bundleWidths(c.Lmap)
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	em, err := encMode()
	if err != nil {
		return 0, err
	}
	cw := &countWriter{w: w}
	if err := em.NewEncoder(cw).Encode(blob); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

func bundleWidths(m BundleMap) map[string]int {
	widths := make(map[string]int, m.Len())
	for _, name := range m.Keys() {
		w, _ := m.Width(name)
		widths[name] = w
	}
	return widths
}

// ReadFrom deserializes a circuit written by WriteTo, replacing c. It
// implements io.ReaderFrom.
func (c *Circuit) ReadFrom(r io.Reader) (int64, error) {
	dm, err := decMode()
	if err != nil {
		return 0, err
	}
	// cbor's decoder does not report consumed bytes, so buffer first.
	raw, err := io.ReadAll(r)
	if err != nil {
		return int64(len(raw)), err
	}
	var blob wireCircuit
	if err := dm.Unmarshal(raw, &blob); err != nil {
		return int64(len(raw)), err
	}

	version, err := semver.Parse(blob.Version)
	if err != nil {
		return int64(len(raw)), fmt.Errorf("aigbv: unparsable serialization version %q: %w", blob.Version, err)
	}
	if version.Major != Version.Major {
		return int64(len(raw)), fmt.Errorf("aigbv: incompatible serialization version %s, this library is %s", version, Version)
	}

	a, err := aig.ParseAAG(blob.AAG)
	if err != nil {
		return int64(len(raw)), err
	}
	out, err := New(a, NewBundleMap(blob.Inputs), NewBundleMap(blob.Outputs), NewBundleMap(blob.Latches))
	if err != nil {
		return int64(len(raw)), err
	}
	*c = out
	return int64(len(raw)), nil
}

// Fingerprint returns a stable content hash of the circuit, computed
// over its deterministic serialization.
func (c Circuit) Fingerprint() ([blake2b.Size256]byte, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return [blake2b.Size256]byte{}, err
	}
	if _, err := c.WriteTo(h); err != nil {
		return [blake2b.Size256]byte{}, err
	}
	var sum [blake2b.Size256]byte
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
