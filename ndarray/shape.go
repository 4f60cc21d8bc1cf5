package ndarray

import "github.com/apytypes/apygo/apyerr"

// BroadcastShapes computes the broadcast result of two shapes: aligned at
// the trailing dimension, every pair must be equal or contain a 1, and the result takes the elementwise maximum, with the
// shorter shape padded by implicit leading 1s.
func BroadcastShapes(a, b []int) ([]int, error) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		da, db := 1, 1
		if i < len(a) {
			da = a[len(a)-1-i]
		}
		if i < len(b) {
			db = b[len(b)-1-i]
		}
		switch {
		case da == db, db == 1:
			out[n-1-i] = da
		case da == 1:
			out[n-1-i] = db
		default:
			return nil, apyerr.New(apyerr.ShapeMismatch, "ndarray.BroadcastShapes",
				"shapes %v and %v are not broadcastable", a, b)
		}
	}
	return out, nil
}

// broadcastTo replicates src into the (already validated) broadcast shape
// dst, filling in C-order and replicating along every axis where the
// source dimension is 1.
func broadcastTo[E any](src *base[E], dst []int) base[E] {
	if shapeEqual(src.shape, dst) {
		return src.clone()
	}
	out := newBase[E](dst)
	pad := len(dst) - len(src.shape)
	srcSt := src.strides()

	coords := make([]int, len(dst))
	n := out.size()
	for flat := 0; flat < n; flat++ {
		off := 0
		for i := pad; i < len(dst); i++ {
			if src.shape[i-pad] != 1 {
				off += coords[i] * srcSt[i-pad]
			}
		}
		out.set(flat, src.at(off))
		for i := len(dst) - 1; i >= 0; i-- {
			coords[i]++
			if coords[i] < dst[i] {
				break
			}
			coords[i] = 0
		}
	}
	return out
}

// reshapeBase validates and applies the reshape rules: the product of the
// new shape (with at most one -1 resolved from the residual)
// must equal the element count; data is copied unchanged since C-order
// flattening is shape-invariant.
func reshapeBase[E any](b *base[E], shape []int) (base[E], error) {
	out := append([]int(nil), shape...)
	infer := -1
	known := 1
	for i, d := range out {
		switch {
		case d >= 0:
			known *= d
		case d == -1:
			if infer >= 0 {
				return base[E]{}, apyerr.New(apyerr.ValueInvalid, "ndarray.Reshape", "more than one -1 in shape %v", shape)
			}
			infer = i
		default:
			return base[E]{}, apyerr.New(apyerr.ValueInvalid, "ndarray.Reshape", "negative dimension %d in shape %v", d, shape)
		}
	}
	n := b.size()
	if infer >= 0 {
		if known == 0 || n%known != 0 {
			return base[E]{}, apyerr.New(apyerr.ValueInvalid, "ndarray.Reshape", "cannot infer -1 in %v for %d elements", shape, n)
		}
		out[infer] = n / known
		known *= out[infer]
	}
	if known != n {
		return base[E]{}, apyerr.New(apyerr.ValueInvalid, "ndarray.Reshape", "cannot reshape %d elements into %v", n, shape)
	}
	return base[E]{shape: out, data: b.data.Clone()}, nil
}

// transposeBase permutes axes: ndim <= 1 copies, ndim == 2 does a direct
// transposed copy, higher ranks apply perm (default:
// reversal) coordinate-wise.
func transposeBase[E any](b *base[E], perm []int) base[E] {
	if b.ndim() <= 1 {
		return b.clone()
	}
	if perm == nil {
		perm = make([]int, b.ndim())
		for i := range perm {
			perm[i] = b.ndim() - 1 - i
		}
	}
	if len(perm) != b.ndim() {
		panic(apyerr.New(apyerr.ValueInvalid, "ndarray.Transpose", "permutation %v does not match %d axes", perm, b.ndim()))
	}
	seen := make([]bool, b.ndim())
	for _, p := range perm {
		if p < 0 || p >= b.ndim() || seen[p] {
			panic(apyerr.New(apyerr.ValueInvalid, "ndarray.Transpose", "invalid permutation %v", perm))
		}
		seen[p] = true
	}

	if b.ndim() == 2 {
		rows, cols := b.shape[0], b.shape[1]
		if perm[0] == 0 {
			return b.clone()
		}
		out := newBase[E]([]int{cols, rows})
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				out.set(c*rows+r, b.at(r*cols+c))
			}
		}
		return out
	}

	dstShape := make([]int, b.ndim())
	for i, p := range perm {
		dstShape[i] = b.shape[p]
	}
	out := newBase[E](dstShape)
	dstSt := out.strides()
	coords := make([]int, b.ndim())
	n := b.size()
	for flat := 0; flat < n; flat++ {
		off := 0
		for i, p := range perm {
			off += coords[p] * dstSt[i]
		}
		out.set(off, b.at(flat))
		for i := b.ndim() - 1; i >= 0; i-- {
			coords[i]++
			if coords[i] < b.shape[i] {
				break
			}
			coords[i] = 0
		}
	}
	return out
}

// squeezeBase drops size-1 axes. With no axes given every size-1 axis is
// dropped; otherwise only the named ones, erroring on any
// axis whose size is not 1.
func squeezeBase[E any](b *base[E], axes []int) (base[E], error) {
	drop := make([]bool, b.ndim())
	if len(axes) == 0 {
		for i, d := range b.shape {
			drop[i] = d == 1
		}
	} else {
		for _, ax := range axes {
			a := ax
			if a < 0 {
				a += b.ndim()
			}
			if a < 0 || a >= b.ndim() {
				return base[E]{}, apyerr.New(apyerr.IndexOutOfRange, "ndarray.Squeeze", "axis %d out of range for %d dimensions", ax, b.ndim())
			}
			if b.shape[a] != 1 {
				return base[E]{}, apyerr.New(apyerr.ValueInvalid, "ndarray.Squeeze", "cannot squeeze axis %d with size %d", ax, b.shape[a])
			}
			drop[a] = true
		}
	}
	var shape []int
	for i, d := range b.shape {
		if !drop[i] {
			shape = append(shape, d)
		}
	}
	return base[E]{shape: shape, data: b.data.Clone()}, nil
}
