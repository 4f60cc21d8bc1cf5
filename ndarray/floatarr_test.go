package ndarray

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	apygo "github.com/apytypes/apygo"
	"github.com/apytypes/apygo/apfloat"
	"github.com/apytypes/apygo/internal/round"
)

var halfSpec = apfloat.Spec{ExpBits: 5, ManBits: 10, Bias: 15}

func flArr(t *testing.T, vals []float64, shape []int) *Float {
	t.Helper()
	a, err := FloatFromFloat64s(vals, shape, halfSpec)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestFloatElementwise(t *testing.T) {
	a := flArr(t, []float64{1, 2, 3, 4}, []int{2, 2})
	b := flArr(t, []float64{0.5, 0.5, 0.5, 0.5}, []int{2, 2})
	if diff := cmp.Diff([]float64{1.5, 2.5, 3.5, 4.5}, a.Add(b).ToFloat64s()); diff != "" {
		t.Fatalf("add:\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0.5, 1, 1.5, 2}, a.Mul(b).ToFloat64s()); diff != "" {
		t.Fatalf("mul:\n%s", diff)
	}
	if diff := cmp.Diff([]float64{2, 4, 6, 8}, a.Div(b).ToFloat64s()); diff != "" {
		t.Fatalf("div:\n%s", diff)
	}
}

func TestFloatDivSpecialsElementwise(t *testing.T) {
	a := flArr(t, []float64{1, 0}, []int{2})
	z := flArr(t, []float64{0, 0}, []int{2})
	got := a.Div(z)
	if !math.IsInf(got.ToFloat64s()[0], 1) {
		t.Fatalf("1/0 = %v", got.ToFloat64s()[0])
	}
	if !math.IsNaN(got.ToFloat64s()[1]) {
		t.Fatalf("0/0 = %v", got.ToFloat64s()[1])
	}
}

func TestFloatNanReductions(t *testing.T) {
	vals := []apfloat.FloatData{
		apfloat.FromFloat64(1, halfSpec, round.RND_CONV),
		apfloat.FromFloat64(math.NaN(), halfSpec, round.RND_CONV),
		apfloat.FromFloat64(2, halfSpec, round.RND_CONV),
	}
	a, err := FloatFromValues(vals, []int{3}, halfSpec)
	if err != nil {
		t.Fatal(err)
	}
	if got := a.Sum().Item(); !got.IsNaN(halfSpec) {
		t.Fatalf("sum with NaN = %v", got.ToFloat64(halfSpec))
	}
	if got := a.NanSum().Item().ToFloat64(halfSpec); got != 3 {
		t.Fatalf("nansum = %v", got)
	}
	if got := a.NanProd().Item().ToFloat64(halfSpec); got != 2 {
		t.Fatalf("nanprod = %v", got)
	}
	if diff := cmp.Diff([]float64{1, 1, 3}, a.NanCumSum(0).ToFloat64s()); diff != "" {
		t.Fatalf("nancumsum:\n%s", diff)
	}
}

func TestFloatMatMulWithAccumulator(t *testing.T) {
	a := flArr(t, []float64{1, 2, 3, 4}, []int{2, 2})
	b := flArr(t, []float64{5, 6, 7, 8}, []int{2, 2})
	got := a.MatMul(b)
	if diff := cmp.Diff([]float64{19, 22, 43, 50}, got.ToFloat64s()); diff != "" {
		t.Fatalf("matmul:\n%s", diff)
	}

	// A double-precision accumulator must give the same exact small-integer
	// results, exercised through the process-wide register.
	restore := apygo.PushFloatAccumulator(&apygo.FloatAccumulator{Spec: apfloat.DoubleSpec, Qntz: round.RND_CONV})
	defer restore()
	got = a.MatMul(b)
	if diff := cmp.Diff([]float64{19, 22, 43, 50}, got.ToFloat64s()); diff != "" {
		t.Fatalf("matmul with accumulator:\n%s", diff)
	}
}

func TestFloatConvolve(t *testing.T) {
	a := flArr(t, []float64{1, 2, 3}, []int{3})
	b := flArr(t, []float64{4, 5}, []int{2})
	got := a.Convolve(b, ConvFull)
	if diff := cmp.Diff([]float64{4, 13, 22, 15}, got.ToFloat64s()); diff != "" {
		t.Fatalf("convolve:\n%s", diff)
	}
}

func TestFloatCodecRoundTrip(t *testing.T) {
	a := flArr(t, []float64{1.5, -2.25, 0, 65504}, []int{4})
	p, err := a.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalFloat(p)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a.ToFloat64s(), got.ToFloat64s()); diff != "" {
		t.Fatalf("codec:\n%s", diff)
	}
}

func TestCFixedMul(t *testing.T) {
	spec := mustFixedSpec(t, 8, 4)
	a, err := CFixedFromComplex128s([]complex128{1 + 2i}, []int{1}, spec)
	if err != nil {
		t.Fatal(err)
	}
	b, err := CFixedFromComplex128s([]complex128{3 + 4i}, []int{1}, spec)
	if err != nil {
		t.Fatal(err)
	}
	p := a.Mul(b)
	if got := p.ToComplex128s()[0]; got != -5+10i {
		t.Fatalf("complex mul = %v", got)
	}
	if p.Spec().IntBits != 9 || p.Spec().FracBits() != 8 {
		t.Fatalf("complex mul spec = %+v", p.Spec())
	}
}

func TestCFixedSumAndCodec(t *testing.T) {
	spec := mustFixedSpec(t, 8, 4)
	a, err := CFixedFromComplex128s([]complex128{1 + 1i, 2 - 1i, 3 + 0.5i}, []int{3}, spec)
	if err != nil {
		t.Fatal(err)
	}
	if got := a.Sum().Item().ToComplex128(); got != 6+0.5i {
		t.Fatalf("complex sum = %v", got)
	}
	p, err := a.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalCFixed(p)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a.ToComplex128s(), got.ToComplex128s()); diff != "" {
		t.Fatalf("codec:\n%s", diff)
	}
}

func TestCFloatMatMul(t *testing.T) {
	a, err := CFloatFromComplex128s([]complex128{1 + 1i, 2}, []int{2}, halfSpec)
	if err != nil {
		t.Fatal(err)
	}
	b, err := CFloatFromComplex128s([]complex128{1 - 1i, 0.5i}, []int{2}, halfSpec)
	if err != nil {
		t.Fatal(err)
	}
	dot := a.MatMul(b)
	// (1+i)(1-i) + 2(0.5i) = 2 + i.
	if got := dot.Item().ToComplex128(halfSpec); got != 2+1i {
		t.Fatalf("complex dot = %v", got)
	}
}
