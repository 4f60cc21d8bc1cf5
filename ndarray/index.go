package ndarray

import (
	"math"

	"github.com/apytypes/apygo/apyerr"
)

// None is the "unspecified" sentinel for Slice bounds, standing in for
// Python's omitted slice fields.
const None = math.MinInt

// Key is one element of a subscript tuple: an Int, a Slice, or Ellipsis.
type Key interface{ isKey() }

// Int selects a single index along an axis (negative counts from the end)
// and drops the axis.
type Int int

func (Int) isKey() {}

// Slice selects a Python-style start:stop:step range along an axis and
// keeps the axis. Use None for omitted fields.
type Slice struct {
	Start, Stop, Step int
}

func (Slice) isKey() {}

// All is the full slice, ":".
var All = Slice{Start: None, Stop: None, Step: None}

// S is shorthand for the two-field slice start:stop.
func S(start, stop int) Slice { return Slice{Start: start, Stop: stop, Step: None} }

type ellipsisKey struct{}

func (ellipsisKey) isKey() {}

// Ellipsis expands to enough full slices to fill the remaining dimensions.
// At most one may appear in a key tuple.
var Ellipsis Key = ellipsisKey{}

// resolveSlice applies Python slice semantics to an axis of length n and
// returns the selected indices.
func resolveSlice(s Slice, n int) []int {
	step := s.Step
	if step == None {
		step = 1
	}
	if step == 0 {
		panic(apyerr.New(apyerr.ValueInvalid, "ndarray.GetItem", "slice step cannot be zero"))
	}
	var start, stop int
	if step > 0 {
		start, stop = 0, n
		if s.Start != None {
			start = clampIndex(s.Start, n, 0, n)
		}
		if s.Stop != None {
			stop = clampIndex(s.Stop, n, 0, n)
		}
	} else {
		start, stop = n-1, -1
		if s.Start != None {
			start = clampIndex(s.Start, n, -1, n-1)
		}
		if s.Stop != None {
			stop = clampIndex(s.Stop, n, -1, n-1)
		}
	}
	var idx []int
	if step > 0 {
		for i := start; i < stop; i += step {
			idx = append(idx, i)
		}
	} else {
		for i := start; i > stop; i += step {
			idx = append(idx, i)
		}
	}
	return idx
}

func clampIndex(i, n, lo, hi int) int {
	if i < 0 {
		i += n
	}
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

// getItemBase implements the subscript semantics: the key tuple is
// expanded (ellipsis to full slices, missing trailing keys to full
// slices), integer keys drop their axis, slice keys keep theirs, and the
// selected elements are gathered into a fresh C-order array ("view-by-copy").
func getItemBase[E any](b *base[E], keys []Key) base[E] {
	const op = "ndarray.GetItem"

	expanded := make([]Key, 0, b.ndim())
	ellipses := 0
	plain := 0
	for _, k := range keys {
		if _, ok := k.(ellipsisKey); ok {
			ellipses++
		} else {
			plain++
		}
	}
	if ellipses > 1 {
		panic(apyerr.New(apyerr.KeyInvalid, op, "at most one ellipsis per key"))
	}
	if plain > b.ndim() {
		panic(apyerr.New(apyerr.KeyInvalid, op, "key of length %d for %d dimensions", plain, b.ndim()))
	}
	for _, k := range keys {
		if _, ok := k.(ellipsisKey); ok {
			for i := 0; i < b.ndim()-plain; i++ {
				expanded = append(expanded, All)
			}
			continue
		}
		expanded = append(expanded, k)
	}
	for len(expanded) < b.ndim() {
		expanded = append(expanded, All)
	}

	// Per-axis selected indices; kept marks whether the axis survives.
	idx := make([][]int, b.ndim())
	kept := make([]bool, b.ndim())
	for ax, k := range expanded {
		n := b.shape[ax]
		switch key := k.(type) {
		case Int:
			i := int(key)
			if i < 0 {
				i += n
			}
			if i < 0 || i >= n {
				panic(apyerr.New(apyerr.IndexOutOfRange, op, "index %d out of range for axis %d with size %d", int(key), ax, n))
			}
			idx[ax] = []int{i}
		case Slice:
			idx[ax] = resolveSlice(key, n)
			kept[ax] = true
		default:
			panic(apyerr.New(apyerr.KeyInvalid, op, "unsupported key type %T", k))
		}
	}

	var outShape []int
	for ax := range idx {
		if kept[ax] {
			outShape = append(outShape, len(idx[ax]))
		}
	}
	out := newBase[E](outShape)

	srcSt := b.strides()
	coords := make([]int, b.ndim())
	n := out.size()
	for flat := 0; flat < n; flat++ {
		off := 0
		for ax := range idx {
			off += idx[ax][coords[ax]] * srcSt[ax]
		}
		out.set(flat, b.at(off))
		for ax := b.ndim() - 1; ax >= 0; ax-- {
			coords[ax]++
			if coords[ax] < len(idx[ax]) {
				break
			}
			coords[ax] = 0
		}
	}
	return out
}
