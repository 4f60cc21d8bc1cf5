package ndarray

import (
	"github.com/apytypes/apygo/apyerr"
	"github.com/apytypes/apygo/cfixed"
	"github.com/apytypes/apygo/fixed"
	"github.com/apytypes/apygo/internal/round"
)

// CFixed is an n-dimensional array of complex fixed-point values sharing
// one component spec. It plugs the complex scalar into the same generic
// shape machinery as the real arrays.
type CFixed struct {
	b    base[cfixed.ComplexFixedPoint]
	spec fixed.Spec
}

// NewCFixed returns a zero-filled array.
func NewCFixed(shape []int, spec fixed.Spec) *CFixed {
	a := &CFixed{b: newBase[cfixed.ComplexFixedPoint](shape), spec: spec}
	z := cfixed.Zero(spec)
	for i := 0; i < a.b.size(); i++ {
		a.b.set(i, z)
	}
	return a
}

// CFixedFromComplex128s quantizes a flat C-order complex128 slice.
func CFixedFromComplex128s(vals []complex128, shape []int, spec fixed.Spec) (*CFixed, error) {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(vals) {
		return nil, apyerr.New(apyerr.ValueInvalid, "ndarray.CFixedFromComplex128s", "%d elements for shape %v", len(vals), shape)
	}
	a := &CFixed{b: newBase[cfixed.ComplexFixedPoint](shape), spec: spec}
	for i, v := range vals {
		x, err := cfixed.FromComplex128(v, spec)
		if err != nil {
			return nil, err
		}
		a.b.set(i, x)
	}
	return a, nil
}

// CFixedFromNested builds an array from nested Go slices of numeric or
// complex values, inferring the shape.
func CFixedFromNested(v any, spec fixed.Spec) (*CFixed, error) {
	shape, flat, err := inferNestedComplex(v)
	if err != nil {
		return nil, err
	}
	return CFixedFromComplex128s(flat, shape, spec)
}

// Spec returns the shared component spec.
func (a *CFixed) Spec() fixed.Spec { return a.spec }

// Shape returns a copy of the dimensions.
func (a *CFixed) Shape() []int { return append([]int(nil), a.b.shape...) }

// NDim returns the number of dimensions.
func (a *CFixed) NDim() int { return a.b.ndim() }

// Size returns the total element count.
func (a *CFixed) Size() int { return a.b.size() }

// At returns the element at the given coordinates.
func (a *CFixed) At(coords ...int) cfixed.ComplexFixedPoint {
	return a.b.at(a.b.offsetOf("ndarray.At", coords))
}

// Set stores v at the given coordinates; v must carry the array's spec.
func (a *CFixed) Set(v cfixed.ComplexFixedPoint, coords ...int) {
	if !v.Spec().Equal(a.spec) {
		panic(apyerr.New(apyerr.SpecInvalid, "ndarray.Set", "element spec %+v differs from array spec %+v", v.Spec(), a.spec))
	}
	a.b.set(a.b.offsetOf("ndarray.Set", coords), v)
}

// Item returns the sole element of a size-1 array.
func (a *CFixed) Item() cfixed.ComplexFixedPoint {
	if a.b.size() != 1 {
		panic(apyerr.New(apyerr.ValueInvalid, "ndarray.Item", "array of size %d has no single item", a.b.size()))
	}
	return a.b.at(0)
}

// Values returns the elements as a flat C-order slice.
func (a *CFixed) Values() []cfixed.ComplexFixedPoint { return a.b.data.Slice() }

func (a *CFixed) wrap(b base[cfixed.ComplexFixedPoint], spec fixed.Spec) *CFixed {
	return &CFixed{b: b, spec: spec}
}

// GetItem applies an integer/slice/ellipsis key tuple.
func (a *CFixed) GetItem(keys ...Key) *CFixed {
	return a.wrap(getItemBase(&a.b, keys), a.spec)
}

// Reshape returns the same elements under a new shape.
func (a *CFixed) Reshape(shape ...int) (*CFixed, error) {
	b, err := reshapeBase(&a.b, shape)
	if err != nil {
		return nil, err
	}
	return a.wrap(b, a.spec), nil
}

// Transpose permutes the axes (default: reversal).
func (a *CFixed) Transpose(perm ...int) *CFixed {
	if len(perm) == 0 {
		return a.wrap(transposeBase(&a.b, nil), a.spec)
	}
	return a.wrap(transposeBase(&a.b, perm), a.spec)
}

// Squeeze drops size-1 axes.
func (a *CFixed) Squeeze(axes ...int) (*CFixed, error) {
	b, err := squeezeBase(&a.b, axes)
	if err != nil {
		return nil, err
	}
	return a.wrap(b, a.spec), nil
}

// Cast casts both components of every element.
func (a *CFixed) Cast(dst fixed.Spec, qntz round.QuantizationMode, ovf round.OverflowMode) *CFixed {
	return a.wrap(unaryBase(&a.b, func(x cfixed.ComplexFixedPoint) cfixed.ComplexFixedPoint {
		y, _ := x.Cast(dst, qntz, ovf)
		return y
	}), dst)
}

// Add returns the broadcast elementwise sum at the widened spec.
func (a *CFixed) Add(o *CFixed) *CFixed {
	return a.wrap(binaryBase("ndarray.Add", &a.b, &o.b, cfixed.ComplexFixedPoint.Add),
		fixed.AddSpec(a.spec, o.spec))
}

// Sub returns the broadcast elementwise difference.
func (a *CFixed) Sub(o *CFixed) *CFixed {
	return a.wrap(binaryBase("ndarray.Sub", &a.b, &o.b, cfixed.ComplexFixedPoint.Sub),
		fixed.AddSpec(a.spec, o.spec))
}

// cmulSpec is the exact complex product spec: the partial products at
// MulSpec, then one combining addition.
func cmulSpec(a, b fixed.Spec) fixed.Spec {
	m := fixed.MulSpec(a, b)
	return fixed.AddSpec(m, m)
}

// Mul returns the broadcast elementwise complex product.
func (a *CFixed) Mul(o *CFixed) *CFixed {
	return a.wrap(binaryBase("ndarray.Mul", &a.b, &o.b, cfixed.ComplexFixedPoint.Mul),
		cmulSpec(a.spec, o.spec))
}

// Div returns the broadcast elementwise complex quotient; a zero divisor
// leaves the affected element zero.
func (a *CFixed) Div(o *CFixed) *CFixed {
	numSpec := cmulSpec(a.spec, o.spec)
	denSpec := cmulSpec(o.spec, o.spec)
	return a.wrap(binaryBase("ndarray.Div", &a.b, &o.b, func(x, y cfixed.ComplexFixedPoint) cfixed.ComplexFixedPoint {
		q, _ := x.Div(y)
		return q
	}), fixed.DivSpec(numSpec, denSpec))
}

// Neg negates both components, widening by one bit.
func (a *CFixed) Neg() *CFixed {
	return a.wrap(unaryBase(&a.b, cfixed.ComplexFixedPoint.Neg),
		fixed.Spec{Bits: a.spec.Bits + 1, IntBits: a.spec.IntBits + 1})
}

// Sum reduces over the given axes at the exactly-widened spec.
func (a *CFixed) Sum(axes ...int) *CFixed {
	wide := sumSpec(a.spec, reducedCount(a.b.shape, axes, a.b.ndim()))
	return a.wrap(reduceBase("ndarray.Sum", &a.b, axes, cfixed.Zero(wide),
		func(acc, x cfixed.ComplexFixedPoint) cfixed.ComplexFixedPoint {
			s, _ := acc.Add(x).Cast(wide, round.TRN, round.WRAP)
			return s
		}), wide)
}

// CumSum emits the running sum along axis at the widened spec.
func (a *CFixed) CumSum(axis int) *CFixed {
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
		func(acc, x cfixed.ComplexFixedPoint) cfixed.ComplexFixedPoint {
			s, _ := acc.Add(x).Cast(wide, round.TRN, round.WRAP)
			return s
		},
		func(x cfixed.ComplexFixedPoint) cfixed.ComplexFixedPoint {
			s, _ := x.Cast(wide, round.TRN, round.WRAP)
			return s
		}), wide)
}

// MatMul multiplies matrices (or two vectors into a 0-d array) with exact
// complex inner products at the naturally widened spec.
func (a *CFixed) MatMul(o *CFixed) *CFixed {
	n := innerDim("ndarray.MatMul", &a.b)
	wide := sumSpec(cmulSpec(a.spec, o.spec), n)
	inner := func(x, y []cfixed.ComplexFixedPoint) cfixed.ComplexFixedPoint {
		sum := cfixed.Zero(wide)
		for i := range x {
			s, _ := sum.Add(x[i].Mul(y[i])).Cast(wide, round.TRN, round.WRAP)
			sum = s
		}
		return sum
	}
	return a.wrap(matmulBase("ndarray.MatMul", &a.b, &o.b, inner), wide)
}

// Convolve computes the 1-D complex convolution in the given mode.
func (a *CFixed) Convolve(o *CFixed, mode ConvolveMode) *CFixed {
	if a.b.ndim() != 1 || o.b.ndim() != 1 {
		panic(apyerr.New(apyerr.ShapeMismatch, "ndarray.Convolve", "convolve requires 1-D operands, got %v and %v", a.b.shape, o.b.shape))
	}
	n := a.b.size()
	if o.b.size() < n {
		n = o.b.size()
	}
	wide := sumSpec(cmulSpec(a.spec, o.spec), n)
	inner := func(x, y []cfixed.ComplexFixedPoint) cfixed.ComplexFixedPoint {
		sum := cfixed.Zero(wide)
		for i := range x {
			s, _ := sum.Add(x[i].Mul(y[i])).Cast(wide, round.TRN, round.WRAP)
			sum = s
		}
		return sum
	}
	return a.wrap(convolveBase("ndarray.Convolve", &a.b, &o.b, mode, inner), wide)
}

// ToComplex128s converts the elements to a flat C-order complex128 slice.
func (a *CFixed) ToComplex128s() []complex128 {
	out := make([]complex128, a.b.size())
	for i := range out {
		out[i] = a.b.at(i).ToComplex128()
	}
	return out
}
