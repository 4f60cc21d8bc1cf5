package ndarray

import (
	apygo "github.com/apytypes/apygo"
	"github.com/apytypes/apygo/apfloat"
	"github.com/apytypes/apygo/apyerr"
	"github.com/apytypes/apygo/cfixed"
	"github.com/apytypes/apygo/cfloat"
	"github.com/apytypes/apygo/fixed"
)

// Array factories. Zeros/Full/Eye exist for every element type;
// Ones/Identity/Arange/Meshgrid exist for the real ones only.

func fillBase[E any](shape []int, v E) base[E] {
	b := newBase[E](shape)
	for i := 0; i < b.size(); i++ {
		b.set(i, v)
	}
	return b
}

func eyeBase[E any](n, m int, zero, one E) base[E] {
	b := fillBase([]int{n, m}, zero)
	for i := 0; i < n && i < m; i++ {
		b.set(i*m+i, one)
	}
	return b
}

// FixedZeros returns a zero-filled array.
func FixedZeros(shape []int, spec fixed.Spec) *Fixed { return NewFixed(shape, spec) }

// FixedOnes returns an array of ones (saturating if 1 is unrepresentable).
func FixedOnes(shape []int, spec fixed.Spec) *Fixed {
	one, _ := fixed.FromFloat64(1, spec)
	return FixedFull(shape, one)
}

// FixedFull returns an array filled with v.
func FixedFull(shape []int, v fixed.FixedPoint) *Fixed {
	return &Fixed{b: fillBase(shape, v), spec: v.Spec}
}

// FixedEye returns an n x m matrix with ones on the main diagonal.
func FixedEye(n, m int, spec fixed.Spec) *Fixed {
	one, _ := fixed.FromFloat64(1, spec)
	return &Fixed{b: eyeBase(n, m, fixed.Zero(spec), one), spec: spec}
}

// FixedIdentity returns the n x n identity matrix.
func FixedIdentity(n int, spec fixed.Spec) *Fixed { return FixedEye(n, n, spec) }

// FixedArange returns the 1-D array [start, start+step, ...) up to but
// excluding stop.
func FixedArange(start, stop, step float64, spec fixed.Spec) (*Fixed, error) {
	vals, err := arangeValues(start, stop, step)
	if err != nil {
		return nil, err
	}
	return FixedFromFloat64s(vals, []int{len(vals)}, spec)
}

func arangeValues(start, stop, step float64) ([]float64, error) {
	if step == 0 {
		return nil, apyerr.New(apyerr.ValueInvalid, "ndarray.Arange", "step cannot be zero")
	}
	vals := []float64{}
	if step > 0 {
		for v := start; v < stop; v += step {
			vals = append(vals, v)
		}
	} else {
		for v := start; v > stop; v += step {
			vals = append(vals, v)
		}
	}
	return vals, nil
}

// MeshIndexing selects meshgrid axis ordering.
type MeshIndexing int

const (
	// IndexXY is the Cartesian ordering: the first two axes swap.
	IndexXY MeshIndexing = iota
	// IndexIJ is the matrix ordering.
	IndexIJ
)

// meshAxis maps vector i to its varying axis under the chosen indexing.
func meshAxis(i, k int, indexing MeshIndexing) int {
	if indexing == IndexXY && k >= 2 {
		if i == 0 {
			return 1
		}
		if i == 1 {
			return 0
		}
	}
	return i
}

func meshgridBase[E any](op string, vs []*base[E], indexing MeshIndexing) []base[E] {
	k := len(vs)
	shape := make([]int, k)
	for i, v := range vs {
		if v.ndim() != 1 {
			panic(apyerr.New(apyerr.ShapeMismatch, op, "meshgrid requires 1-D vectors, got %v", v.shape))
		}
		shape[meshAxis(i, k, indexing)] = v.shape[0]
	}
	out := make([]base[E], k)
	for i, v := range vs {
		ax := meshAxis(i, k, indexing)
		b := newBase[E](shape)
		coords := make([]int, k)
		for flat := 0; flat < b.size(); flat++ {
			b.set(flat, v.at(coords[ax]))
			for d := k - 1; d >= 0; d-- {
				coords[d]++
				if coords[d] < shape[d] {
					break
				}
				coords[d] = 0
			}
		}
		out[i] = b
	}
	return out
}

// FixedMeshgrid expands 1-D coordinate vectors into coordinate matrices.
func FixedMeshgrid(indexing MeshIndexing, vs ...*Fixed) []*Fixed {
	bases := make([]*base[fixed.FixedPoint], len(vs))
	for i, v := range vs {
		bases[i] = &v.b
	}
	grids := meshgridBase("ndarray.Meshgrid", bases, indexing)
	out := make([]*Fixed, len(vs))
	for i := range grids {
		out[i] = &Fixed{b: grids[i], spec: vs[i].spec}
	}
	return out
}

// FloatZeros returns a +0-filled array.
func FloatZeros(shape []int, spec apfloat.Spec) *Float { return NewFloat(shape, spec) }

// FloatOnes returns an array of ones.
func FloatOnes(shape []int, spec apfloat.Spec) *Float {
	return FloatFull(shape, apfloat.FromFloat64(1, spec, apygo.GetFloatQuantizationMode()), spec)
}

// FloatFull returns an array filled with v.
func FloatFull(shape []int, v apfloat.FloatData, spec apfloat.Spec) *Float {
	return &Float{b: fillBase(shape, v), spec: spec}
}

// FloatEye returns an n x m matrix with ones on the main diagonal.
func FloatEye(n, m int, spec apfloat.Spec) *Float {
	one := apfloat.FromFloat64(1, spec, apygo.GetFloatQuantizationMode())
	return &Float{b: eyeBase(n, m, apfloat.FloatData{}, one), spec: spec}
}

// FloatIdentity returns the n x n identity matrix.
func FloatIdentity(n int, spec apfloat.Spec) *Float { return FloatEye(n, n, spec) }

// FloatArange returns the 1-D array [start, start+step, ...) up to but
// excluding stop.
func FloatArange(start, stop, step float64, spec apfloat.Spec) (*Float, error) {
	vals, err := arangeValues(start, stop, step)
	if err != nil {
		return nil, err
	}
	return FloatFromFloat64s(vals, []int{len(vals)}, spec)
}

// FloatMeshgrid expands 1-D coordinate vectors into coordinate matrices.
func FloatMeshgrid(indexing MeshIndexing, vs ...*Float) []*Float {
	bases := make([]*base[apfloat.FloatData], len(vs))
	for i, v := range vs {
		bases[i] = &v.b
	}
	grids := meshgridBase("ndarray.Meshgrid", bases, indexing)
	out := make([]*Float, len(vs))
	for i := range grids {
		out[i] = &Float{b: grids[i], spec: vs[i].spec}
	}
	return out
}

// CFixedZeros returns a zero-filled complex array.
func CFixedZeros(shape []int, spec fixed.Spec) *CFixed { return NewCFixed(shape, spec) }

// CFixedFull returns a complex array filled with v.
func CFixedFull(shape []int, v cfixed.ComplexFixedPoint) *CFixed {
	return &CFixed{b: fillBase(shape, v), spec: v.Spec()}
}

// CFixedEye returns an n x m complex matrix with 1+0i on the main diagonal.
func CFixedEye(n, m int, spec fixed.Spec) *CFixed {
	one, _ := cfixed.FromComplex128(1, spec)
	return &CFixed{b: eyeBase(n, m, cfixed.Zero(spec), one), spec: spec}
}

// CFloatZeros returns a +0-filled complex array.
func CFloatZeros(shape []int, spec apfloat.Spec) *CFloat { return NewCFloat(shape, spec) }

// CFloatFull returns a complex array filled with v.
func CFloatFull(shape []int, v cfloat.ComplexFloat, spec apfloat.Spec) *CFloat {
	return &CFloat{b: fillBase(shape, v), spec: spec}
}

// CFloatEye returns an n x m complex matrix with 1+0i on the main diagonal.
func CFloatEye(n, m int, spec apfloat.Spec) *CFloat {
	one := cfloat.FromComplex128(1, spec, apygo.GetFloatQuantizationMode())
	return &CFloat{b: eyeBase(n, m, cfloat.ComplexFloat{}, one), spec: spec}
}
