// Package ndarray implements the n-dimensional array layer over every
// scalar element type in the library: strided C-contiguous storage, integer/slice/ellipsis indexing, broadcasting,
// reshape/transpose/squeeze, elementwise arithmetic, reductions, matrix
// multiplication and 1-D convolution.
//
// All shape machinery lives in one generic base container, base[E], plus
// four thin concrete array types (Fixed, Float, CFixed, CFloat) that bind
// the element kernels and result-spec formulas. Shape and index misuse
// panics with an *apyerr.Error, the way gonum's mat treats programmer
// error; fallible construction and conversion return errors.
package ndarray

import (
	"github.com/apytypes/apygo/apyerr"
	"github.com/apytypes/apygo/internal/scratch"
	"github.com/apytypes/apygo/internal/workerpool"
)

// base is the shared shape/strides/storage container. The element storage
// unit is one whole scalar value, so the itemsize is identically one
// element and data length equals the shape product.
type base[E any] struct {
	shape []int
	data  scratch.Vector[E]
}

func newBase[E any](shape []int) base[E] {
	n := 1
	for _, d := range shape {
		if d < 0 {
			panic(apyerr.New(apyerr.ValueInvalid, "ndarray", "negative dimension %d in shape %v", d, shape))
		}
		n *= d
	}
	return base[E]{shape: append([]int(nil), shape...), data: scratch.New[E](n)}
}

func (b *base[E]) ndim() int { return len(b.shape) }

func (b *base[E]) size() int {
	n := 1
	for _, d := range b.shape {
		n *= d
	}
	return n
}

// strides returns the C-order strides in element units, computed on demand
// as the suffix products of the shape.
func (b *base[E]) strides() []int {
	st := make([]int, len(b.shape))
	acc := 1
	for i := len(b.shape) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= b.shape[i]
	}
	return st
}

func (b *base[E]) at(i int) E     { return b.data.At(i) }
func (b *base[E]) set(i int, x E) { b.data.Set(i, x) }

func (b *base[E]) clone() base[E] {
	return base[E]{shape: append([]int(nil), b.shape...), data: b.data.Clone()}
}

// offsetOf converts a full coordinate tuple to a flat C-order index,
// resolving negative coordinates and bounds-checking each axis.
func (b *base[E]) offsetOf(op string, coords []int) int {
	if len(coords) != len(b.shape) {
		panic(apyerr.New(apyerr.KeyInvalid, op, "got %d indices for %d dimensions", len(coords), len(b.shape)))
	}
	off := 0
	st := b.strides()
	for i, c := range coords {
		if c < 0 {
			c += b.shape[i]
		}
		if c < 0 || c >= b.shape[i] {
			panic(apyerr.New(apyerr.IndexOutOfRange, op, "index %d out of range for axis %d with size %d", coords[i], i, b.shape[i]))
		}
		off += c * st[i]
	}
	return off
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// pool is the shared bounded worker pool, created once at first use and
// reused by every elementwise kernel.
func pool() *workerpool.Pool { return workerpool.Default() }
