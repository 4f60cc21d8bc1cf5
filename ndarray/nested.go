package ndarray

import (
	"reflect"

	"github.com/apytypes/apygo/apyerr"
)

// inferNested walks arbitrarily nested Go slices/arrays of real numeric
// values, returning the inferred shape and the flattened C-order values.
// Ragged nesting is
// value-invalid; non-numeric leaves are type-invalid.
func inferNested(v any) ([]int, []float64, error) {
	shape, flat, _, err := walkNested(reflect.ValueOf(v), true)
	return shape, flat, err
}

// inferNestedComplex is inferNested with complex128 leaves (real leaves are
// accepted as a zero imaginary part).
func inferNestedComplex(v any) ([]int, []complex128, error) {
	shape, _, flat, err := walkNested(reflect.ValueOf(v), false)
	return shape, flat, err
}

func walkNested(v reflect.Value, realOnly bool) ([]int, []float64, []complex128, error) {
	const op = "ndarray.FromNested"
	for v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		n := v.Len()
		var shape []int
		var reals []float64
		var cplx []complex128
		for i := 0; i < n; i++ {
			s, r, c, err := walkNested(v.Index(i), realOnly)
			if err != nil {
				return nil, nil, nil, err
			}
			if i == 0 {
				shape = s
			} else if !shapeEqual(shape, s) {
				return nil, nil, nil, apyerr.New(apyerr.ValueInvalid, op, "ragged nesting: %v vs %v", shape, s)
			}
			reals = append(reals, r...)
			cplx = append(cplx, c...)
		}
		return append([]int{n}, shape...), reals, cplx, nil
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		return nil, []float64{f}, []complex128{complex(f, 0)}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f := float64(v.Int())
		return nil, []float64{f}, []complex128{complex(f, 0)}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f := float64(v.Uint())
		return nil, []float64{f}, []complex128{complex(f, 0)}, nil
	case reflect.Complex64, reflect.Complex128:
		if realOnly {
			return nil, nil, nil, apyerr.New(apyerr.TypeInvalid, op, "complex leaf in a real array")
		}
		return nil, nil, []complex128{v.Complex()}, nil
	default:
		return nil, nil, nil, apyerr.New(apyerr.TypeInvalid, op, "unsupported leaf type %s", v.Kind())
	}
}
