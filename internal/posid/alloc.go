package posid

import "math"

const (
	maxDigit = int64(math.MaxUint32)

	// stepLimit caps how far above the lower bound a fresh digit lands.
	// Small steps keep append-heavy editing shallow; bisection only
	// happens when an insertion is squeezed between close neighbors.
	stepLimit = int64(64)
)

// Alloc returns n identifiers strictly between left and right, strictly
// increasing among themselves. An empty left or right is the open start or
// end of the sequence. site and ver salt every emitted segment; callers
// must never reuse a (site, ver) pair across Alloc batches.
//
// Alloc always succeeds for correctly ordered bounds: between any two
// distinct identifiers there is unbounded room for future insertions.
func Alloc(left, right ID, n int, site uint32, ver uint64) []ID {
	if n <= 0 {
		return nil
	}
	out := make([]ID, n)
	lower := parse(left)
	upper := parse(right)
	for i := range out {
		lower = between(lower, upper, site, ver)
		out[i] = encode(lower)
	}
	return out
}

// between builds a path strictly between lower and upper. It walks the
// bounds level by level: as soon as a level has room for a fresh digit the
// path terminates there with a segment owned by (site, ver); otherwise it
// copies the lower bound's segment and descends. Once the partial path is
// strictly inside a bound, that bound stops constraining deeper levels.
//
// Digit 0 is only ever emitted as an interior segment. That guarantees an
// upper bound is never a prefix of the allocated path, so allocation below
// an identifier's first segment always terminates.
func between(lower, upper []segment, site uint32, ver uint64) []segment {
	path := make([]segment, 0, len(lower)+1)
	// An empty upper bound is the open end of the sequence and never
	// constrains; only a non-empty bound can be run off the end of.
	lowerBounds, upperBounds := true, len(upper) > 0

	for depth := 0; ; depth++ {
		lo := int64(-1)
		if lowerBounds {
			if depth < len(lower) {
				lo = int64(lower[depth].digit)
			} else {
				lowerBounds = false
			}
		}

		hi := maxDigit + 1
		var upperSeg segment
		if upperBounds {
			if depth < len(upper) {
				upperSeg = upper[depth]
				hi = int64(upperSeg.digit)
			} else {
				// The path so far equals the entire upper bound, so any
				// extension would sort after it. Unreachable for bounds
				// produced by this allocator (interior-zero rule).
				panic("posid: upper bound is a prefix of the allocation path")
			}
		}

		floor := lo
		if floor < 0 {
			floor = 0
		}
		if hi-floor >= 2 {
			step := (hi - floor) / 2
			if step > stepLimit {
				step = stepLimit
			}
			return append(path, segment{digit: uint32(floor + step), site: site, ver: ver})
		}

		if lowerBounds {
			// Squeezed at this level: stay level with the lower bound and
			// look for room underneath it.
			seg := lower[depth]
			path = append(path, seg)
			if !upperBounds || seg != upperSeg {
				upperBounds = false
			}
			continue
		}

		if hi == 1 {
			// No lower constraint but the upper digit is 1: descend through
			// an interior zero, below which the upper bound no longer
			// constrains.
			path = append(path, segment{digit: 0, site: site, ver: ver})
			upperBounds = false
			continue
		}

		// hi == 0: descend through the upper bound's own interior zero.
		path = append(path, upperSeg)
	}
}
