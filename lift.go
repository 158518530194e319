package aigbv

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/consensys/aigbv/aig"
)

var (
	bvName     = regexp.MustCompile(`^(.*)\[(\d+)\]$`)
	bvNameTime = regexp.MustCompile(`^(.*)\[(\d+)\]##time_(\d+)$`)
)

// unpackName splits an indexed bit name "root[i]" into its parts.
func unpackName(name string) (string, int, error) {
	groups := bvName.FindStringSubmatch(name)
	if groups == nil {
		return "", 0, fmt.Errorf("%w: %q is not an indexed name", ErrMalformedIndexing, name)
	}
	idx, err := strconv.Atoi(groups[2])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedIndexing, name)
	}
	return groups[1], idx, nil
}

// toSize checks that idxs is a permutation of 0..n-1 and returns n.
func toSize(root string, idxs []int) (int, error) {
	seen := make(map[int]struct{}, len(idxs))
	for _, idx := range idxs {
		if _, dup := seen[idx]; dup {
			return 0, fmt.Errorf("%w: %q indexes bit %d twice", ErrMalformedIndexing, root, idx)
		}
		if idx < 0 || idx >= len(idxs) {
			return 0, fmt.Errorf("%w: %q indexes bit %d outside the contiguous range 0..%d", ErrMalformedIndexing, root, idx, len(idxs)-1)
		}
		seen[idx] = struct{}{}
	}
	return len(idxs), nil
}

// rebundleNames groups raw indexed bit names into a bundle map.
func rebundleNames(names []string) (BundleMap, error) {
	grouped := map[string][]int{}
	for _, name := range names {
		root, idx, err := unpackName(name)
		if err != nil {
			return BundleMap{}, err
		}
		grouped[root] = append(grouped[root], idx)
	}
	widths := make(map[string]int, len(grouped))
	for root, idxs := range grouped {
		w, err := toSize(root, idxs)
		if err != nil {
			return BundleMap{}, err
		}
		widths[root] = w
	}
	return NewBundleMap(widths), nil
}

// Rebundle lifts a bit-level circuit whose port names are all indexed
// ("root[i]") into a word circuit by grouping them per root.
func Rebundle(a aig.Circuit) (Circuit, error) {
	imap, err := rebundleNames(a.Inputs())
	if err != nil {
		return Circuit{}, err
	}
	omap, err := rebundleNames(a.Outputs())
	if err != nil {
		return Circuit{}, err
	}
	lmap, err := rebundleNames(a.Latches())
	if err != nil {
		return Circuit{}, err
	}
	return Circuit{Aig: a, Imap: imap, Omap: omap, Lmap: lmap}, nil
}

// Lift wraps a bare bit-level circuit into a word circuit of 1-bit
// bundles, indexing every port name with "[0]".
func Lift(a aig.Circuit) (Circuit, error) {
	for _, kind := range []aig.Kind{aig.KindInput, aig.KindOutput, aig.KindLatch} {
		var names []string
		switch kind {
		case aig.KindInput:
			names = a.Inputs()
		case aig.KindOutput:
			names = a.Outputs()
		case aig.KindLatch:
			names = a.Latches()
		}
		renames := make(map[string]string, len(names))
		for _, name := range names {
			renames[name] = fmt.Sprintf("%s[0]", name)
		}
		var err error
		if a, err = a.Relabel(kind, renames); err != nil {
			return Circuit{}, fmt.Errorf("%w: %v", ErrNameCollision, err)
		}
	}
	return Rebundle(a)
}

// shuffleIDTime rewrites an unrolled bit name "root[i]##time_t" into
// "root##time_t[i]" so that per-step bundles regroup.
func shuffleIDTime(name string) (string, error) {
	groups := bvNameTime.FindStringSubmatch(name)
	if groups == nil {
		return "", fmt.Errorf("%w: %q is not a time-stamped indexed name", ErrMalformedIndexing, name)
	}
	return fmt.Sprintf("%s##time_%s[%s]", groups[1], groups[3], groups[2]), nil
}
