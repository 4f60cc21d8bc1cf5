package ndarray

import (
	"math/bits"

	"github.com/apytypes/apygo/apyerr"
	"github.com/apytypes/apygo/fixed"
	"github.com/apytypes/apygo/internal/limb"
	"github.com/apytypes/apygo/internal/round"
)

// Fixed is an n-dimensional array of fixed-point values sharing one spec.
type Fixed struct {
	b    base[fixed.FixedPoint]
	spec fixed.Spec
}

// FixedAccumulator is the fixed-point accumulator override: when supplied, inner-product partial sums are cast to Spec with the given
// policies after each addition instead of running at the natural widened
// width.
type FixedAccumulator struct {
	Spec fixed.Spec
	Qntz round.QuantizationMode
	Ovf  round.OverflowMode
}

// NewFixed returns a zero-filled array.
func NewFixed(shape []int, spec fixed.Spec) *Fixed {
	a := &Fixed{b: newBase[fixed.FixedPoint](shape), spec: spec}
	z := fixed.Zero(spec)
	for i := 0; i < a.b.size(); i++ {
		a.b.set(i, z)
	}
	return a
}

// FixedFromValues wraps a flat C-order element slice. All elements must
// share one spec and the length must match the shape product.
func FixedFromValues(vals []fixed.FixedPoint, shape []int) (*Fixed, error) {
	if len(vals) == 0 {
		return nil, apyerr.New(apyerr.ValueInvalid, "ndarray.FixedFromValues", "no elements")
	}
	spec := vals[0].Spec
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(vals) {
		return nil, apyerr.New(apyerr.ValueInvalid, "ndarray.FixedFromValues", "%d elements for shape %v", len(vals), shape)
	}
	a := &Fixed{b: newBase[fixed.FixedPoint](shape), spec: spec}
	for i, v := range vals {
		if !v.Spec.Equal(spec) {
			return nil, apyerr.New(apyerr.SpecInvalid, "ndarray.FixedFromValues", "element %d spec %+v differs from %+v", i, v.Spec, spec)
		}
		a.b.set(i, v)
	}
	return a, nil
}

// FixedFromFloat64s quantizes a flat C-order float64 slice into an array of
// the given spec, rounding with RND_INF like the scalar constructor.
func FixedFromFloat64s(vals []float64, shape []int, spec fixed.Spec) (*Fixed, error) {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(vals) {
		return nil, apyerr.New(apyerr.ValueInvalid, "ndarray.FixedFromFloat64s", "%d elements for shape %v", len(vals), shape)
	}
	a := &Fixed{b: newBase[fixed.FixedPoint](shape), spec: spec}
	for i, v := range vals {
		x, err := fixed.FromFloat64(v, spec)
		if err != nil {
			return nil, err
		}
		a.b.set(i, x)
	}
	return a, nil
}

// FixedFromNested builds an array from arbitrarily nested Go slices of
// numeric values, inferring the shape.
func FixedFromNested(v any, spec fixed.Spec) (*Fixed, error) {
	shape, flat, err := inferNested(v)
	if err != nil {
		return nil, err
	}
	return FixedFromFloat64s(flat, shape, spec)
}

// Spec returns the shared element spec.
func (a *Fixed) Spec() fixed.Spec { return a.spec }

// Shape returns a copy of the dimensions.
func (a *Fixed) Shape() []int { return append([]int(nil), a.b.shape...) }

// NDim returns the number of dimensions.
func (a *Fixed) NDim() int { return a.b.ndim() }

// Size returns the total element count.
func (a *Fixed) Size() int { return a.b.size() }

// Strides returns the C-order strides in element units.
func (a *Fixed) Strides() []int { return a.b.strides() }

// At returns the element at the given coordinates (negatives count from
// the end of their axis).
func (a *Fixed) At(coords ...int) fixed.FixedPoint {
	return a.b.at(a.b.offsetOf("ndarray.At", coords))
}

// Set stores v at the given coordinates; v must carry the array's spec.
func (a *Fixed) Set(v fixed.FixedPoint, coords ...int) {
	if !v.Spec.Equal(a.spec) {
		panic(apyerr.New(apyerr.SpecInvalid, "ndarray.Set", "element spec %+v differs from array spec %+v", v.Spec, a.spec))
	}
	a.b.set(a.b.offsetOf("ndarray.Set", coords), v)
}

// Item returns the sole element of a size-1 array.
func (a *Fixed) Item() fixed.FixedPoint {
	if a.b.size() != 1 {
		panic(apyerr.New(apyerr.ValueInvalid, "ndarray.Item", "array of size %d has no single item", a.b.size()))
	}
	return a.b.at(0)
}

// Values returns the elements as a flat C-order slice.
func (a *Fixed) Values() []fixed.FixedPoint { return a.b.data.Slice() }

func (a *Fixed) wrap(b base[fixed.FixedPoint], spec fixed.Spec) *Fixed {
	return &Fixed{b: b, spec: spec}
}

// GetItem applies an integer/slice/ellipsis key tuple, returning the
// selected elements as a fresh array; selecting with ndim
// integer keys yields a 0-d array whose Item is the scalar.
func (a *Fixed) GetItem(keys ...Key) *Fixed {
	return a.wrap(getItemBase(&a.b, keys), a.spec)
}

// Reshape returns the same elements under a new shape; one dimension may be
// -1 to infer from the residual.
func (a *Fixed) Reshape(shape ...int) (*Fixed, error) {
	b, err := reshapeBase(&a.b, shape)
	if err != nil {
		return nil, err
	}
	return a.wrap(b, a.spec), nil
}

// Transpose permutes the axes (default: reversal).
func (a *Fixed) Transpose(perm ...int) *Fixed {
	if len(perm) == 0 {
		return a.wrap(transposeBase(&a.b, nil), a.spec)
	}
	return a.wrap(transposeBase(&a.b, perm), a.spec)
}

// Squeeze drops size-1 axes: all of them with no arguments, otherwise only
// the named ones.
func (a *Fixed) Squeeze(axes ...int) (*Fixed, error) {
	b, err := squeezeBase(&a.b, axes)
	if err != nil {
		return nil, err
	}
	return a.wrap(b, a.spec), nil
}

// BroadcastTo replicates the array into the given shape.
func (a *Fixed) BroadcastTo(shape ...int) *Fixed {
	merged, err := BroadcastShapes(a.b.shape, shape)
	if err != nil || !shapeEqual(merged, shape) {
		panic(apyerr.New(apyerr.ShapeMismatch, "ndarray.BroadcastTo", "cannot broadcast %v to %v", a.b.shape, shape))
	}
	return a.wrap(broadcastTo(&a.b, shape), a.spec)
}

// Cast casts every element to dst with the given policies.
func (a *Fixed) Cast(dst fixed.Spec, qntz round.QuantizationMode, ovf round.OverflowMode) *Fixed {
	return a.wrap(unaryBase(&a.b, func(x fixed.FixedPoint) fixed.FixedPoint {
		y, _ := x.Cast(dst, qntz, ovf)
		return y
	}), dst)
}

// Add returns the broadcast elementwise sum at the lossless widened spec.
func (a *Fixed) Add(o *Fixed) *Fixed {
	if out, ok := a.batchAddSub(o, false); ok {
		return out
	}
	return a.wrap(binaryBase("ndarray.Add", &a.b, &o.b, func(x, y fixed.FixedPoint) fixed.FixedPoint {
		return x.Add(y)
	}), fixed.AddSpec(a.spec, o.spec))
}

// Sub returns the broadcast elementwise difference.
func (a *Fixed) Sub(o *Fixed) *Fixed {
	if out, ok := a.batchAddSub(o, true); ok {
		return out
	}
	return a.wrap(binaryBase("ndarray.Sub", &a.b, &o.b, func(x, y fixed.FixedPoint) fixed.FixedPoint {
		return x.Sub(y)
	}), fixed.AddSpec(a.spec, o.spec))
}

// batchAddSub is the accelerated elementwise add/sub for same-shape,
// same-spec operand pairs: every element then shares one limb count at the
// widened result spec, the shape limb.BatchAddN/BatchSubN are built for.
// The operands are sign-extended once into contiguous per-element limb
// rows, the batched kernel runs over all rows, and the rows are rewrapped
// as elements. Results are bit-identical to the generic per-element path
// (the sum is exact at the widened width either way); see
// fixedarr_test.go.
func (a *Fixed) batchAddSub(o *Fixed, sub bool) (*Fixed, bool) {
	if !shapeEqual(a.b.shape, o.b.shape) || !a.spec.Equal(o.spec) {
		return nil, false
	}
	dst := fixed.AddSpec(a.spec, o.spec)
	nl := dst.NumLimbs()
	n := a.b.size()

	rows := make([]limb.Word, 3*n*nl)
	xs := make([][]limb.Word, n)
	ys := make([][]limb.Word, n)
	zs := make([][]limb.Word, n)
	for i := 0; i < n; i++ {
		xs[i] = rows[(3*i+0)*nl : (3*i+1)*nl]
		ys[i] = rows[(3*i+1)*nl : (3*i+2)*nl]
		zs[i] = rows[(3*i+2)*nl : (3*i+3)*nl]
		copy(xs[i], a.b.at(i).Limbs())
		limb.SignExtend(xs[i], a.spec.Bits)
		copy(ys[i], o.b.at(i).Limbs())
		limb.SignExtend(ys[i], o.spec.Bits)
	}
	if sub {
		limb.BatchSubN(zs, xs, ys, n)
	} else {
		limb.BatchAddN(zs, xs, ys, n)
	}

	out := newBase[fixed.FixedPoint](a.b.shape)
	for i := 0; i < n; i++ {
		out.set(i, fixed.FromWords(zs[i], dst))
	}
	return a.wrap(out, dst), true
}

// Mul returns the broadcast elementwise product.
func (a *Fixed) Mul(o *Fixed) *Fixed {
	return a.wrap(binaryBase("ndarray.Mul", &a.b, &o.b, func(x, y fixed.FixedPoint) fixed.FixedPoint {
		return x.Mul(y)
	}), fixed.MulSpec(a.spec, o.spec))
}

// Div returns the broadcast elementwise quotient. A zero divisor leaves the
// affected element zero rather than raising.
func (a *Fixed) Div(o *Fixed) *Fixed {
	return a.wrap(binaryBase("ndarray.Div", &a.b, &o.b, func(x, y fixed.FixedPoint) fixed.FixedPoint {
		q, _ := x.Div(y)
		return q
	}), fixed.DivSpec(a.spec, o.spec))
}

// Neg negates every element, widening by one bit.
func (a *Fixed) Neg() *Fixed {
	return a.wrap(unaryBase(&a.b, fixed.FixedPoint.Neg),
		fixed.Spec{Bits: a.spec.Bits + 1, IntBits: a.spec.IntBits + 1})
}

// ceilLog2 returns ceil(log2(n)) for n >= 1.
func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// sumSpec widens the element spec so a sum of n values is exact on the integer side).
func sumSpec(elem fixed.Spec, n int) fixed.Spec {
	g := ceilLog2(n)
	return fixed.Spec{Bits: elem.Bits + g, IntBits: elem.IntBits + g}
}

// prodSpec widens the element spec so a product of n values is exact: each
// multiplication adds both operands' widths.
func prodSpec(elem fixed.Spec, n int) fixed.Spec {
	if n <= 1 {
		return elem
	}
	return fixed.Spec{Bits: n * elem.Bits, IntBits: n * elem.IntBits}
}

func reducedCount(shape []int, axes []int, ndim int) int {
	if len(axes) == 0 {
		n := 1
		for _, d := range shape {
			n *= d
		}
		return n
	}
	mark := normalizeAxes("ndarray.Sum", axes, ndim)
	n := 1
	for i, d := range shape {
		if mark[i] {
			n *= d
		}
	}
	return n
}

// Sum reduces over the given axes (all of them when none are given) at the
// exactly-widened spec, combining in C-order.
func (a *Fixed) Sum(axes ...int) *Fixed {
	wide := sumSpec(a.spec, reducedCount(a.b.shape, axes, a.b.ndim()))
	return a.wrap(reduceBase("ndarray.Sum", &a.b, axes, fixed.Zero(wide),
		func(acc, x fixed.FixedPoint) fixed.FixedPoint {
			s, _ := acc.Add(x).Cast(wide, round.TRN, round.WRAP)
			return s
		}), wide)
}

// Prod reduces by multiplication at the exactly-widened spec.
func (a *Fixed) Prod(axes ...int) *Fixed {
	wide := prodSpec(a.spec, reducedCount(a.b.shape, axes, a.b.ndim()))
	one, _ := fixed.FromFloat64Rounded(1, wide, round.TRN, round.SAT)
	return a.wrap(reduceBase("ndarray.Prod", &a.b, axes, one,
		func(acc, x fixed.FixedPoint) fixed.FixedPoint {
			p, _ := acc.Mul(x).Cast(wide, round.TRN, round.WRAP)
			return p
		}), wide)
}

// CumSum emits the running sum along axis at the widened spec.
func (a *Fixed) CumSum(axis int) *Fixed {
	ax := axis
	if ax < 0 {
		ax += a.b.ndim()
	}
	count := 1
	if ax >= 0 && ax < a.b.ndim() {
		count = a.b.shape[ax]
	}
	wide := sumSpec(a.spec, count)
	return a.wrap(cumulativeBase("ndarray.CumSum", &a.b, axis,
		func(acc, x fixed.FixedPoint) fixed.FixedPoint {
			s, _ := acc.Add(x).Cast(wide, round.TRN, round.WRAP)
			return s
		},
		func(x fixed.FixedPoint) fixed.FixedPoint {
			s, _ := x.Cast(wide, round.TRN, round.WRAP)
			return s
		}), wide)
}

// CumProd emits the running product along axis at the widened spec.
func (a *Fixed) CumProd(axis int) *Fixed {
	ax := axis
	if ax < 0 {
		ax += a.b.ndim()
	}
	count := 1
	if ax >= 0 && ax < a.b.ndim() {
		count = a.b.shape[ax]
	}
	wide := prodSpec(a.spec, count)
	return a.wrap(cumulativeBase("ndarray.CumProd", &a.b, axis,
		func(acc, x fixed.FixedPoint) fixed.FixedPoint {
			p, _ := acc.Mul(x).Cast(wide, round.TRN, round.WRAP)
			return p
		},
		func(x fixed.FixedPoint) fixed.FixedPoint {
			s, _ := x.Cast(wide, round.TRN, round.WRAP)
			return s
		}), wide)
}

// NanSum is Sum: fixed-point has no NaN representation, so the NaN-ignoring
// variant coincides with the plain reduction. Present for API parity with
// the float arrays.
func (a *Fixed) NanSum(axes ...int) *Fixed { return a.Sum(axes...) }

// NanProd is Prod (see NanSum).
func (a *Fixed) NanProd(axes ...int) *Fixed { return a.Prod(axes...) }

// NanCumSum is CumSum (see NanSum).
func (a *Fixed) NanCumSum(axis int) *Fixed { return a.CumSum(axis) }

// NanCumProd is CumProd (see NanSum).
func (a *Fixed) NanCumProd(axis int) *Fixed { return a.CumProd(axis) }

// fixedInner builds the inner-product closure for matmul/convolve: partial
// products at the lossless multiplication width, partial sums either at the
// naturally widened sum width or, with acc set, re-cast to the accumulator
// spec after each addition.
func fixedInner(aSpec, bSpec fixed.Spec, n int, acc *FixedAccumulator) (func(x, y []fixed.FixedPoint) fixed.FixedPoint, fixed.Spec) {
	if acc != nil {
		accSpec := acc.Spec
		zero := fixed.Zero(accSpec)
		return func(x, y []fixed.FixedPoint) fixed.FixedPoint {
			sum := zero
			for i := range x {
				s, _ := sum.Add(x[i].Mul(y[i])).Cast(accSpec, acc.Qntz, acc.Ovf)
				sum = s
			}
			return sum
		}, accSpec
	}
	wide := sumSpec(fixed.MulSpec(aSpec, bSpec), n)
	zero := fixed.Zero(wide)
	return func(x, y []fixed.FixedPoint) fixed.FixedPoint {
		sum := zero
		for i := range x {
			s, _ := sum.Add(x[i].Mul(y[i])).Cast(wide, round.TRN, round.WRAP)
			sum = s
		}
		return sum
	}, wide
}

// MatMul multiplies (M,N)x(N,K) matrices (or two length-N vectors into a
// 0-d array) with exact, naturally widened inner products.
func (a *Fixed) MatMul(o *Fixed) *Fixed { return a.MatMulWith(o, nil) }

// MatMulWith is MatMul with an optional fixed accumulator override.
func (a *Fixed) MatMulWith(o *Fixed, acc *FixedAccumulator) *Fixed {
	n := innerDim("ndarray.MatMul", &a.b)
	inner, spec := fixedInner(a.spec, o.spec, n, acc)
	return a.wrap(matmulBase("ndarray.MatMul", &a.b, &o.b, inner), spec)
}

// innerDim returns the contraction length for matmul operands.
func innerDim[E any](op string, a *base[E]) int {
	switch a.ndim() {
	case 1:
		return a.shape[0]
	case 2:
		return a.shape[1]
	default:
		panic(apyerr.New(apyerr.ShapeMismatch, op, "operand of %d dimensions", a.ndim()))
	}
}

// Convolve computes the 1-D convolution of two vectors in the given mode.
func (a *Fixed) Convolve(o *Fixed, mode ConvolveMode) *Fixed {
	return a.ConvolveWith(o, mode, nil)
}

// ConvolveWith is Convolve with an optional fixed accumulator override.
func (a *Fixed) ConvolveWith(o *Fixed, mode ConvolveMode, acc *FixedAccumulator) *Fixed {
	if a.b.ndim() != 1 || o.b.ndim() != 1 {
		panic(apyerr.New(apyerr.ShapeMismatch, "ndarray.Convolve", "convolve requires 1-D operands, got %v and %v", a.b.shape, o.b.shape))
	}
	n := a.b.size()
	if o.b.size() < n {
		n = o.b.size()
	}
	inner, spec := fixedInner(a.spec, o.spec, n, acc)
	return a.wrap(convolveBase("ndarray.Convolve", &a.b, &o.b, mode, inner), spec)
}

// ToFloat64s converts the elements to a flat C-order float64 slice.
func (a *Fixed) ToFloat64s() []float64 {
	out := make([]float64, a.b.size())
	for i := range out {
		out[i] = a.b.at(i).ToFloat64()
	}
	return out
}
