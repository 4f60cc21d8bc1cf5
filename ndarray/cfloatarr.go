package ndarray

import (
	apygo "github.com/apytypes/apygo"
	"github.com/apytypes/apygo/apfloat"
	"github.com/apytypes/apygo/apyerr"
	"github.com/apytypes/apygo/cfloat"
	"github.com/apytypes/apygo/internal/round"
)

// CFloat is an n-dimensional array of complex floating-point values
// sharing one component spec.
type CFloat struct {
	b    base[cfloat.ComplexFloat]
	spec apfloat.Spec
}

// NewCFloat returns a +0-filled array.
func NewCFloat(shape []int, spec apfloat.Spec) *CFloat {
	return &CFloat{b: newBase[cfloat.ComplexFloat](shape), spec: spec}
}

// CFloatFromComplex128s quantizes a flat C-order complex128 slice.
func CFloatFromComplex128s(vals []complex128, shape []int, spec apfloat.Spec) (*CFloat, error) {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(vals) {
		return nil, apyerr.New(apyerr.ValueInvalid, "ndarray.CFloatFromComplex128s", "%d elements for shape %v", len(vals), shape)
	}
	qntz := apygo.GetFloatQuantizationMode()
	a := &CFloat{b: newBase[cfloat.ComplexFloat](shape), spec: spec}
	for i, v := range vals {
		a.b.set(i, cfloat.FromComplex128(v, spec, qntz))
	}
	return a, nil
}

// CFloatFromNested builds an array from nested Go slices of numeric or
// complex values, inferring the shape.
func CFloatFromNested(v any, spec apfloat.Spec) (*CFloat, error) {
	shape, flat, err := inferNestedComplex(v)
	if err != nil {
		return nil, err
	}
	return CFloatFromComplex128s(flat, shape, spec)
}

// Spec returns the shared component spec.
func (a *CFloat) Spec() apfloat.Spec { return a.spec }

// Shape returns a copy of the dimensions.
func (a *CFloat) Shape() []int { return append([]int(nil), a.b.shape...) }

// NDim returns the number of dimensions.
func (a *CFloat) NDim() int { return a.b.ndim() }

// Size returns the total element count.
func (a *CFloat) Size() int { return a.b.size() }

// At returns the element at the given coordinates.
func (a *CFloat) At(coords ...int) cfloat.ComplexFloat {
	return a.b.at(a.b.offsetOf("ndarray.At", coords))
}

// Set stores v at the given coordinates.
func (a *CFloat) Set(v cfloat.ComplexFloat, coords ...int) {
	a.b.set(a.b.offsetOf("ndarray.Set", coords), v)
}

// Item returns the sole element of a size-1 array.
func (a *CFloat) Item() cfloat.ComplexFloat {
	if a.b.size() != 1 {
		panic(apyerr.New(apyerr.ValueInvalid, "ndarray.Item", "array of size %d has no single item", a.b.size()))
	}
	return a.b.at(0)
}

// Values returns the elements as a flat C-order slice.
func (a *CFloat) Values() []cfloat.ComplexFloat { return a.b.data.Slice() }

func (a *CFloat) wrap(b base[cfloat.ComplexFloat], spec apfloat.Spec) *CFloat {
	return &CFloat{b: b, spec: spec}
}

func (a *CFloat) sameSpec(op string, o *CFloat) {
	if !a.spec.Equal(o.spec) {
		panic(apyerr.New(apyerr.SpecInvalid, op, "operand specs %+v and %+v differ", a.spec, o.spec))
	}
}

// GetItem applies an integer/slice/ellipsis key tuple.
func (a *CFloat) GetItem(keys ...Key) *CFloat {
	return a.wrap(getItemBase(&a.b, keys), a.spec)
}

// Reshape returns the same elements under a new shape.
func (a *CFloat) Reshape(shape ...int) (*CFloat, error) {
	b, err := reshapeBase(&a.b, shape)
	if err != nil {
		return nil, err
	}
	return a.wrap(b, a.spec), nil
}

// Transpose permutes the axes (default: reversal).
func (a *CFloat) Transpose(perm ...int) *CFloat {
	if len(perm) == 0 {
		return a.wrap(transposeBase(&a.b, nil), a.spec)
	}
	return a.wrap(transposeBase(&a.b, perm), a.spec)
}

// Squeeze drops size-1 axes.
func (a *CFloat) Squeeze(axes ...int) (*CFloat, error) {
	b, err := squeezeBase(&a.b, axes)
	if err != nil {
		return nil, err
	}
	return a.wrap(b, a.spec), nil
}

// Cast casts both components of every element to dst.
func (a *CFloat) Cast(dst apfloat.Spec, qntz round.QuantizationMode) *CFloat {
	src := a.spec
	return a.wrap(unaryBase(&a.b, func(x cfloat.ComplexFloat) cfloat.ComplexFloat {
		return x.Cast(src, dst, qntz)
	}), dst)
}

// Add returns the broadcast elementwise sum.
func (a *CFloat) Add(o *CFloat) *CFloat {
	a.sameSpec("ndarray.Add", o)
	spec, qntz := a.spec, apygo.GetFloatQuantizationMode()
	return a.wrap(binaryBase("ndarray.Add", &a.b, &o.b, func(x, y cfloat.ComplexFloat) cfloat.ComplexFloat {
		return x.Add(y, spec, qntz)
	}), spec)
}

// Sub returns the broadcast elementwise difference.
func (a *CFloat) Sub(o *CFloat) *CFloat {
	a.sameSpec("ndarray.Sub", o)
	spec, qntz := a.spec, apygo.GetFloatQuantizationMode()
	return a.wrap(binaryBase("ndarray.Sub", &a.b, &o.b, func(x, y cfloat.ComplexFloat) cfloat.ComplexFloat {
		return x.Sub(y, spec, qntz)
	}), spec)
}

// Mul returns the broadcast elementwise complex product.
func (a *CFloat) Mul(o *CFloat) *CFloat {
	a.sameSpec("ndarray.Mul", o)
	spec, qntz := a.spec, apygo.GetFloatQuantizationMode()
	return a.wrap(binaryBase("ndarray.Mul", &a.b, &o.b, func(x, y cfloat.ComplexFloat) cfloat.ComplexFloat {
		return x.Mul(y, spec, qntz)
	}), spec)
}

// Div returns the broadcast elementwise complex quotient with the Annex G
// edge recovery applied per element.
func (a *CFloat) Div(o *CFloat) *CFloat {
	a.sameSpec("ndarray.Div", o)
	spec, qntz := a.spec, apygo.GetFloatQuantizationMode()
	return a.wrap(binaryBase("ndarray.Div", &a.b, &o.b, func(x, y cfloat.ComplexFloat) cfloat.ComplexFloat {
		return x.Div(y, spec, qntz)
	}), spec)
}

// Neg flips both components' sign bits.
func (a *CFloat) Neg() *CFloat {
	return a.wrap(unaryBase(&a.b, func(x cfloat.ComplexFloat) cfloat.ComplexFloat {
		x.Re.Sign = !x.Re.Sign
		x.Im.Sign = !x.Im.Sign
		return x
	}), a.spec)
}

func (a *CFloat) reduceCFloat(op string, axes []int, skipNaN bool) *CFloat {
	spec, qntz := a.spec, apygo.GetFloatQuantizationMode()
	fold := func(s, x cfloat.ComplexFloat) cfloat.ComplexFloat {
		if skipNaN && x.IsNaN(spec) {
			return s
		}
		return s.Add(x, spec, qntz)
	}
	return a.wrap(reduceBase(op, &a.b, axes, cfloat.ComplexFloat{}, fold), spec)
}

// Sum reduces over the given axes with a running accumulator in C-order.
func (a *CFloat) Sum(axes ...int) *CFloat { return a.reduceCFloat("ndarray.Sum", axes, false) }

// NanSum is Sum treating elements with a NaN component as 0.
func (a *CFloat) NanSum(axes ...int) *CFloat { return a.reduceCFloat("ndarray.NanSum", axes, true) }

// CumSum emits the running sum along axis.
func (a *CFloat) CumSum(axis int) *CFloat {
	spec, qntz := a.spec, apygo.GetFloatQuantizationMode()
	return a.wrap(cumulativeBase("ndarray.CumSum", &a.b, axis,
		func(s, x cfloat.ComplexFloat) cfloat.ComplexFloat { return s.Add(x, spec, qntz) },
		func(x cfloat.ComplexFloat) cfloat.ComplexFloat { return x }), spec)
}

// MatMul multiplies matrices (or two vectors into a 0-d array) with
// left-to-right complex inner products.
func (a *CFloat) MatMul(o *CFloat) *CFloat {
	a.sameSpec("ndarray.MatMul", o)
	spec, qntz := a.spec, apygo.GetFloatQuantizationMode()
	inner := func(x, y []cfloat.ComplexFloat) cfloat.ComplexFloat {
		var sum cfloat.ComplexFloat
		for i := range x {
			sum = sum.Add(x[i].Mul(y[i], spec, qntz), spec, qntz)
		}
		return sum
	}
	return a.wrap(matmulBase("ndarray.MatMul", &a.b, &o.b, inner), spec)
}

// Convolve computes the 1-D complex convolution in the given mode.
func (a *CFloat) Convolve(o *CFloat, mode ConvolveMode) *CFloat {
	a.sameSpec("ndarray.Convolve", o)
	spec, qntz := a.spec, apygo.GetFloatQuantizationMode()
	inner := func(x, y []cfloat.ComplexFloat) cfloat.ComplexFloat {
		var sum cfloat.ComplexFloat
		for i := range x {
			sum = sum.Add(x[i].Mul(y[i], spec, qntz), spec, qntz)
		}
		return sum
	}
	return a.wrap(convolveBase("ndarray.Convolve", &a.b, &o.b, mode, inner), spec)
}

// ToComplex128s converts the elements to a flat C-order complex128 slice.
func (a *CFloat) ToComplex128s() []complex128 {
	out := make([]complex128, a.b.size())
	for i := range out {
		out[i] = a.b.at(i).ToComplex128(a.spec)
	}
	return out
}
