package ndarray

import (
	apygo "github.com/apytypes/apygo"
	"github.com/apytypes/apygo/apfloat"
	"github.com/apytypes/apygo/apyerr"
	"github.com/apytypes/apygo/internal/round"
)

// Float is an n-dimensional array of custom floating-point values sharing
// one spec. Operations snapshot the process-wide quantization mode (and,
// for inner products, the accumulator override) once at entry and thread
// the snapshot through the kernels.
type Float struct {
	b    base[apfloat.FloatData]
	spec apfloat.Spec
}

// NewFloat returns a +0-filled array.
func NewFloat(shape []int, spec apfloat.Spec) *Float {
	return &Float{b: newBase[apfloat.FloatData](shape), spec: spec}
}

// FloatFromValues wraps a flat C-order element slice under spec.
func FloatFromValues(vals []apfloat.FloatData, shape []int, spec apfloat.Spec) (*Float, error) {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(vals) {
		return nil, apyerr.New(apyerr.ValueInvalid, "ndarray.FloatFromValues", "%d elements for shape %v", len(vals), shape)
	}
	a := &Float{b: newBase[apfloat.FloatData](shape), spec: spec}
	for i, v := range vals {
		a.b.set(i, v)
	}
	return a, nil
}

// FloatFromFloat64s quantizes a flat C-order float64 slice into an array of
// the given spec using the process-wide quantization mode.
func FloatFromFloat64s(vals []float64, shape []int, spec apfloat.Spec) (*Float, error) {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(vals) {
		return nil, apyerr.New(apyerr.ValueInvalid, "ndarray.FloatFromFloat64s", "%d elements for shape %v", len(vals), shape)
	}
	qntz := apygo.GetFloatQuantizationMode()
	a := &Float{b: newBase[apfloat.FloatData](shape), spec: spec}
	for i, v := range vals {
		a.b.set(i, apfloat.FromFloat64(v, spec, qntz))
	}
	return a, nil
}

// FloatFromNested builds an array from arbitrarily nested Go slices of
// numeric values, inferring the shape.
func FloatFromNested(v any, spec apfloat.Spec) (*Float, error) {
	shape, flat, err := inferNested(v)
	if err != nil {
		return nil, err
	}
	return FloatFromFloat64s(flat, shape, spec)
}

// Spec returns the shared element spec.
func (a *Float) Spec() apfloat.Spec { return a.spec }

// Shape returns a copy of the dimensions.
func (a *Float) Shape() []int { return append([]int(nil), a.b.shape...) }

// NDim returns the number of dimensions.
func (a *Float) NDim() int { return a.b.ndim() }

// Size returns the total element count.
func (a *Float) Size() int { return a.b.size() }

// Strides returns the C-order strides in element units.
func (a *Float) Strides() []int { return a.b.strides() }

// At returns the element at the given coordinates.
func (a *Float) At(coords ...int) apfloat.FloatData {
	return a.b.at(a.b.offsetOf("ndarray.At", coords))
}

// Set stores v at the given coordinates.
func (a *Float) Set(v apfloat.FloatData, coords ...int) {
	a.b.set(a.b.offsetOf("ndarray.Set", coords), v)
}

// Item returns the sole element of a size-1 array.
func (a *Float) Item() apfloat.FloatData {
	if a.b.size() != 1 {
		panic(apyerr.New(apyerr.ValueInvalid, "ndarray.Item", "array of size %d has no single item", a.b.size()))
	}
	return a.b.at(0)
}

// Values returns the elements as a flat C-order slice.
func (a *Float) Values() []apfloat.FloatData { return a.b.data.Slice() }

func (a *Float) wrap(b base[apfloat.FloatData], spec apfloat.Spec) *Float {
	return &Float{b: b, spec: spec}
}

func (a *Float) sameSpec(op string, o *Float) {
	if !a.spec.Equal(o.spec) {
		panic(apyerr.New(apyerr.SpecInvalid, op, "operand specs %+v and %+v differ", a.spec, o.spec))
	}
}

// GetItem applies an integer/slice/ellipsis key tuple.
func (a *Float) GetItem(keys ...Key) *Float {
	return a.wrap(getItemBase(&a.b, keys), a.spec)
}

// Reshape returns the same elements under a new shape.
func (a *Float) Reshape(shape ...int) (*Float, error) {
	b, err := reshapeBase(&a.b, shape)
	if err != nil {
		return nil, err
	}
	return a.wrap(b, a.spec), nil
}

// Transpose permutes the axes (default: reversal).
func (a *Float) Transpose(perm ...int) *Float {
	if len(perm) == 0 {
		return a.wrap(transposeBase(&a.b, nil), a.spec)
	}
	return a.wrap(transposeBase(&a.b, perm), a.spec)
}

// Squeeze drops size-1 axes.
func (a *Float) Squeeze(axes ...int) (*Float, error) {
	b, err := squeezeBase(&a.b, axes)
	if err != nil {
		return nil, err
	}
	return a.wrap(b, a.spec), nil
}

// BroadcastTo replicates the array into the given shape.
func (a *Float) BroadcastTo(shape ...int) *Float {
	merged, err := BroadcastShapes(a.b.shape, shape)
	if err != nil || !shapeEqual(merged, shape) {
		panic(apyerr.New(apyerr.ShapeMismatch, "ndarray.BroadcastTo", "cannot broadcast %v to %v", a.b.shape, shape))
	}
	return a.wrap(broadcastTo(&a.b, shape), a.spec)
}

// Cast casts every element to dst with qntz.
func (a *Float) Cast(dst apfloat.Spec, qntz round.QuantizationMode) *Float {
	src := a.spec
	return a.wrap(unaryBase(&a.b, func(x apfloat.FloatData) apfloat.FloatData {
		return apfloat.Cast(x, src, dst, qntz)
	}), dst)
}

// Add returns the broadcast elementwise sum.
func (a *Float) Add(o *Float) *Float {
	a.sameSpec("ndarray.Add", o)
	spec, qntz := a.spec, apygo.GetFloatQuantizationMode()
	return a.wrap(binaryBase("ndarray.Add", &a.b, &o.b, func(x, y apfloat.FloatData) apfloat.FloatData {
		return apfloat.Add(x, y, spec, qntz)
	}), spec)
}

// Sub returns the broadcast elementwise difference.
func (a *Float) Sub(o *Float) *Float {
	a.sameSpec("ndarray.Sub", o)
	spec, qntz := a.spec, apygo.GetFloatQuantizationMode()
	return a.wrap(binaryBase("ndarray.Sub", &a.b, &o.b, func(x, y apfloat.FloatData) apfloat.FloatData {
		return apfloat.Sub(x, y, spec, qntz)
	}), spec)
}

// Mul returns the broadcast elementwise product.
func (a *Float) Mul(o *Float) *Float {
	a.sameSpec("ndarray.Mul", o)
	spec, qntz := a.spec, apygo.GetFloatQuantizationMode()
	return a.wrap(binaryBase("ndarray.Mul", &a.b, &o.b, func(x, y apfloat.FloatData) apfloat.FloatData {
		return apfloat.Mul(x, y, spec, qntz)
	}), spec)
}

// Div returns the broadcast elementwise quotient, with the scalar
// special-value rules applied per element.
func (a *Float) Div(o *Float) *Float {
	a.sameSpec("ndarray.Div", o)
	spec, qntz := a.spec, apygo.GetFloatQuantizationMode()
	return a.wrap(binaryBase("ndarray.Div", &a.b, &o.b, func(x, y apfloat.FloatData) apfloat.FloatData {
		return apfloat.Div(x, y, spec, qntz)
	}), spec)
}

// Neg flips every element's sign bit.
func (a *Float) Neg() *Float {
	return a.wrap(unaryBase(&a.b, func(x apfloat.FloatData) apfloat.FloatData {
		x.Sign = !x.Sign
		return x
	}), a.spec)
}

// Scalbn multiplies every element by 2^k.
func (a *Float) Scalbn(k int) *Float {
	spec, qntz := a.spec, apygo.GetFloatQuantizationMode()
	return a.wrap(unaryBase(&a.b, func(x apfloat.FloatData) apfloat.FloatData {
		return apfloat.Scalbn(x, spec, k, qntz)
	}), spec)
}

// reduceFloat runs the reduction rule: a running accumulator at the
// element format, or at the accumulator override when one is set.
func (a *Float) reduceFloat(op string, axes []int, mul bool, skipNaN bool) *Float {
	spec, qntz := a.spec, apygo.GetFloatQuantizationMode()
	acc := apygo.GetFloatAccumulator()

	run := spec
	if acc != nil {
		run = acc.Spec
	}
	identity := apfloat.FromFloat64(0, run, qntz)
	if mul {
		identity = apfloat.FromFloat64(1, run, qntz)
	}
	fold := func(s, x apfloat.FloatData) apfloat.FloatData {
		if skipNaN && x.IsNaN(spec) {
			return s
		}
		if mul {
			if acc != nil {
				return apfloat.MulTo(s, acc.Spec, x, spec, acc.Spec, acc.Qntz)
			}
			return apfloat.Mul(s, x, spec, qntz)
		}
		if acc != nil {
			return apfloat.AddTo(s, acc.Spec, x, spec, acc.Spec, acc.Qntz)
		}
		return apfloat.Add(s, x, spec, qntz)
	}
	out := reduceBase(op, &a.b, axes, identity, fold)
	if acc != nil {
		out = unaryBase(&out, func(s apfloat.FloatData) apfloat.FloatData {
			return apfloat.Cast(s, acc.Spec, spec, acc.Qntz)
		})
	}
	return a.wrap(out, spec)
}

// Sum reduces over the given axes (all of them when none are given) with a
// running accumulator in C-order.
func (a *Float) Sum(axes ...int) *Float { return a.reduceFloat("ndarray.Sum", axes, false, false) }

// Prod reduces by multiplication.
func (a *Float) Prod(axes ...int) *Float { return a.reduceFloat("ndarray.Prod", axes, true, false) }

// NanSum is Sum treating NaN elements as 0.
func (a *Float) NanSum(axes ...int) *Float { return a.reduceFloat("ndarray.NanSum", axes, false, true) }

// NanProd is Prod treating NaN elements as 1.
func (a *Float) NanProd(axes ...int) *Float { return a.reduceFloat("ndarray.NanProd", axes, true, true) }

func (a *Float) cumFloat(op string, axis int, mul bool, skipNaN bool) *Float {
	spec, qntz := a.spec, apygo.GetFloatQuantizationMode()
	identity := apfloat.FromFloat64(0, spec, qntz)
	if mul {
		identity = apfloat.FromFloat64(1, spec, qntz)
	}
	fold := func(s, x apfloat.FloatData) apfloat.FloatData {
		if skipNaN && x.IsNaN(spec) {
			return s
		}
		if mul {
			return apfloat.Mul(s, x, spec, qntz)
		}
		return apfloat.Add(s, x, spec, qntz)
	}
	lift := func(x apfloat.FloatData) apfloat.FloatData {
		if skipNaN && x.IsNaN(spec) {
			return identity
		}
		return x
	}
	return a.wrap(cumulativeBase(op, &a.b, axis, fold, lift), spec)
}

// CumSum emits the running sum along axis.
func (a *Float) CumSum(axis int) *Float { return a.cumFloat("ndarray.CumSum", axis, false, false) }

// CumProd emits the running product along axis.
func (a *Float) CumProd(axis int) *Float { return a.cumFloat("ndarray.CumProd", axis, true, false) }

// NanCumSum is CumSum treating NaN elements as 0.
func (a *Float) NanCumSum(axis int) *Float { return a.cumFloat("ndarray.NanCumSum", axis, false, true) }

// NanCumProd is CumProd treating NaN elements as 1.
func (a *Float) NanCumProd(axis int) *Float { return a.cumFloat("ndarray.NanCumProd", axis, true, true) }

// MatMul multiplies (M,N)x(N,K) matrices (or two length-N vectors into a
// 0-d array), accumulating each inner product left to right with the
// process-wide accumulator override when one is set.
func (a *Float) MatMul(o *Float) *Float {
	return a.MatMulWith(o, apygo.GetFloatAccumulator())
}

// MatMulWith is MatMul with an explicit accumulator override (nil for the
// natural element-format accumulation).
func (a *Float) MatMulWith(o *Float, acc *apfloat.Accumulator) *Float {
	a.sameSpec("ndarray.MatMul", o)
	spec, qntz := a.spec, apygo.GetFloatQuantizationMode()
	inner := func(x, y []apfloat.FloatData) apfloat.FloatData {
		return apfloat.Inner(x, y, spec, qntz, acc)
	}
	return a.wrap(matmulBase("ndarray.MatMul", &a.b, &o.b, inner), spec)
}

// Convolve computes the 1-D convolution of two vectors in the given mode.
func (a *Float) Convolve(o *Float, mode ConvolveMode) *Float {
	return a.ConvolveWith(o, mode, apygo.GetFloatAccumulator())
}

// ConvolveWith is Convolve with an explicit accumulator override.
func (a *Float) ConvolveWith(o *Float, mode ConvolveMode, acc *apfloat.Accumulator) *Float {
	a.sameSpec("ndarray.Convolve", o)
	spec, qntz := a.spec, apygo.GetFloatQuantizationMode()
	inner := func(x, y []apfloat.FloatData) apfloat.FloatData {
		return apfloat.Inner(x, y, spec, qntz, acc)
	}
	return a.wrap(convolveBase("ndarray.Convolve", &a.b, &o.b, mode, inner), spec)
}

// ToFloat64s converts the elements to a flat C-order float64 slice via
// the double-precision cast.
func (a *Float) ToFloat64s() []float64 {
	out := make([]float64, a.b.size())
	for i := range out {
		out[i] = a.b.at(i).ToFloat64(a.spec)
	}
	return out
}
