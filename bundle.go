package aigbv

import (
	"fmt"
	"slices"

	"golang.org/x/exp/maps"
)

// Bundle is an ordered group of bit wires standing for one word signal:
// root of width n owns the bit names root[0] .. root[n-1], index 0
// being the least significant bit.
type Bundle struct {
	Root  string
	Width int
}

// Name returns the bit name at index i.
func (b Bundle) Name(i int) string {
	return fmt.Sprintf("%s[%d]", b.Root, i)
}

// Names returns the bit names of the bundle, in index order.
func (b Bundle) Names() []string {
	names := make([]string, b.Width)
	for i := range names {
		names[i] = b.Name(i)
	}
	return names
}

// BundleMap maps word names to bundles. The zero value is the empty
// map; all operations are non-mutating and return new maps.
type BundleMap struct {
	widths map[string]int
}

// NewBundleMap builds a bundle map from word widths. Widths must be
// positive; this is a programmer error and panics.
func NewBundleMap(widths map[string]int) BundleMap {
	for name, w := range widths {
		if w < 1 {
			panic(fmt.Errorf("%w: bundle %q has width %d", ErrWidthMismatch, name, w))
		}
	}
	return BundleMap{widths: maps.Clone(widths)}
}

// Len returns the number of word signals.
func (m BundleMap) Len() int { return len(m.widths) }

// Has reports whether the word name is present.
func (m BundleMap) Has(name string) bool {
	_, ok := m.widths[name]
	return ok
}

// Width returns the bit width of the named word signal.
func (m BundleMap) Width(name string) (int, bool) {
	w, ok := m.widths[name]
	return w, ok
}

// Bundle returns the bundle of the named word signal.
func (m BundleMap) Bundle(name string) (Bundle, bool) {
	w, ok := m.widths[name]
	return Bundle{Root: name, Width: w}, ok
}

// Keys returns the sorted word names.
func (m BundleMap) Keys() []string {
	keys := maps.Keys(m.widths)
	slices.Sort(keys)
	return keys
}

// BitNames returns every bit name of every bundle.
func (m BundleMap) BitNames() []string {
	var names []string
	for _, key := range m.Keys() {
		names = append(names, Bundle{Root: key, Width: m.widths[key]}.Names()...)
	}
	return names
}

// Blast expands a word-value mapping into a bit-value mapping, one
// entry per bundle bit. Every requested word name must be present in
// the map and carry a value of the bundle's exact width.
func (m BundleMap) Blast(values map[string][]bool) (map[string]bool, error) {
	bits := make(map[string]bool, len(values))
	for name, val := range values {
		w, ok := m.widths[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSignal, name)
		}
		if len(val) != w {
			return nil, fmt.Errorf("%w: %q is %d bits wide, got %d", ErrWidthMismatch, name, w, len(val))
		}
		b := Bundle{Root: name, Width: w}
		for i, v := range val {
			bits[b.Name(i)] = v
		}
	}
	return bits, nil
}

// Unblast reassembles a bit-value mapping into a word-value mapping
// over every bundle of the map. Every bundle bit must be present.
func (m BundleMap) Unblast(bits map[string]bool) (map[string][]bool, error) {
	values := make(map[string][]bool, len(m.widths))
	for name, w := range m.widths {
		b := Bundle{Root: name, Width: w}
		val := make([]bool, w)
		for i := range val {
			v, ok := bits[b.Name(i)]
			if !ok {
				return nil, fmt.Errorf("%w: bit %q", ErrUnknownSignal, b.Name(i))
			}
			val[i] = v
		}
		values[name] = val
	}
	return values, nil
}

// Relabel renames word signals, carrying their bundles along. It
// returns the new map together with the bit-level rename table needed
// to patch the underlying circuit. Renames whose source is absent are
// ignored; a rename may not target an existing name.
func (m BundleMap) Relabel(renames map[string]string) (BundleMap, map[string]string, error) {
	widths := make(map[string]int, len(m.widths))
	for name, w := range m.widths {
		if _, ok := renames[name]; ok {
			continue
		}
		widths[name] = w
	}
	bitRenames := map[string]string{}
	for old, next := range renames {
		w, ok := m.widths[old]
		if !ok {
			continue
		}
		if _, ok := widths[next]; ok {
			return BundleMap{}, nil, fmt.Errorf("%w: relabel target %q already in use", ErrNameCollision, next)
		}
		widths[next] = w
		oldB := Bundle{Root: old, Width: w}
		newB := Bundle{Root: next, Width: w}
		for i := 0; i < w; i++ {
			bitRenames[oldB.Name(i)] = newB.Name(i)
		}
	}
	return BundleMap{widths: widths}, bitRenames, nil
}

// Omit returns the map without the named entries.
func (m BundleMap) Omit(names []string) BundleMap {
	widths := maps.Clone(m.widths)
	if widths == nil {
		widths = map[string]int{}
	}
	for _, name := range names {
		delete(widths, name)
	}
	return BundleMap{widths: widths}
}

// Join returns the disjoint union of two bundle maps. Sharing a word
// name is an error.
func (m BundleMap) Join(other BundleMap) (BundleMap, error) {
	widths := make(map[string]int, len(m.widths)+len(other.widths))
	maps.Copy(widths, m.widths)
	for name, w := range other.widths {
		if _, ok := widths[name]; ok {
			return BundleMap{}, fmt.Errorf("%w: %q in both bundle maps", ErrNameCollision, name)
		}
		widths[name] = w
	}
	return BundleMap{widths: widths}, nil
}
