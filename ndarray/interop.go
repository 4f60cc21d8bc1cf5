package ndarray

import (
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"

	"github.com/apytypes/apygo/apfloat"
	"github.com/apytypes/apygo/apyerr"
	"github.com/apytypes/apygo/fixed"
)

// The host-interop export path: 2-D real arrays convert to gonum's matrix
// types (the library's "NumPy adapter" analog), and any real
// array flattens to platform doubles via ToFloat64s.

func dims2(op string, shape []int) (r, c int, err error) {
	if len(shape) != 2 {
		return 0, 0, apyerr.New(apyerr.TypeInvalid, op, "need a 2-D array, got shape %v", shape)
	}
	return shape[0], shape[1], nil
}

// ToDense converts a 2-D array to a gonum *mat.Dense of doubles.
func (a *Fixed) ToDense() (*mat.Dense, error) {
	r, c, err := dims2("ndarray.ToDense", a.b.shape)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(r, c, a.ToFloat64s()), nil
}

// ToGeneral converts a 2-D array to a row-major blas64.General of doubles.
func (a *Fixed) ToGeneral() (blas64.General, error) {
	r, c, err := dims2("ndarray.ToGeneral", a.b.shape)
	if err != nil {
		return blas64.General{}, err
	}
	return blas64.General{Rows: r, Cols: c, Stride: c, Data: a.ToFloat64s()}, nil
}

// FixedFromDense quantizes a gonum matrix into a 2-D array of spec.
func FixedFromDense(d mat.Matrix, spec fixed.Spec) (*Fixed, error) {
	r, c := d.Dims()
	vals := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			vals = append(vals, d.At(i, j))
		}
	}
	return FixedFromFloat64s(vals, []int{r, c}, spec)
}

// ToDense converts a 2-D array to a gonum *mat.Dense of doubles.
func (a *Float) ToDense() (*mat.Dense, error) {
	r, c, err := dims2("ndarray.ToDense", a.b.shape)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(r, c, a.ToFloat64s()), nil
}

// ToGeneral converts a 2-D array to a row-major blas64.General of doubles.
func (a *Float) ToGeneral() (blas64.General, error) {
	r, c, err := dims2("ndarray.ToGeneral", a.b.shape)
	if err != nil {
		return blas64.General{}, err
	}
	return blas64.General{Rows: r, Cols: c, Stride: c, Data: a.ToFloat64s()}, nil
}

// FloatFromDense quantizes a gonum matrix into a 2-D array of spec.
func FloatFromDense(d mat.Matrix, spec apfloat.Spec) (*Float, error) {
	r, c := d.Dims()
	vals := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			vals = append(vals, d.At(i, j))
		}
	}
	return FloatFromFloat64s(vals, []int{r, c}, spec)
}

// ToCDense converts a 2-D complex array to a gonum *mat.CDense.
func (a *CFixed) ToCDense() (*mat.CDense, error) {
	r, c, err := dims2("ndarray.ToCDense", a.b.shape)
	if err != nil {
		return nil, err
	}
	return mat.NewCDense(r, c, a.ToComplex128s()), nil
}

// ToCDense converts a 2-D complex array to a gonum *mat.CDense.
func (a *CFloat) ToCDense() (*mat.CDense, error) {
	r, c, err := dims2("ndarray.ToCDense", a.b.shape)
	if err != nil {
		return nil, err
	}
	return mat.NewCDense(r, c, a.ToComplex128s()), nil
}
