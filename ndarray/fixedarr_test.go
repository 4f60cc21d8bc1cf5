package ndarray

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/apytypes/apygo/fixed"
	"github.com/apytypes/apygo/internal/round"
)

func TestAddWidensSpec(t *testing.T) {
	spec := mustFixedSpec(t, 6, 3)
	a, _ := FixedFromFloat64s([]float64{2.5}, []int{1}, spec)
	b, _ := FixedFromFloat64s([]float64{1.5}, []int{1}, spec)
	sum := a.Add(b)
	if sum.Spec().IntBits != 4 || sum.Spec().FracBits() != 3 {
		t.Fatalf("sum spec = %+v", sum.Spec())
	}
	if sum.At(0).ToFloat64() != 4.0 {
		t.Fatalf("sum = %v", sum.At(0).ToFloat64())
	}
}

func TestMatMulScenario(t *testing.T) {
	// Array-matmul scenario: exact integer matrices at
	// (int=6, frac=0).
	spec := mustFixedSpec(t, 6, 6)
	A, _ := FixedFromFloat64s([]float64{1, 2, 3, 4}, []int{2, 2}, spec)
	B, _ := FixedFromFloat64s([]float64{5, 6, 7, 8}, []int{2, 2}, spec)
	C := A.MatMul(B)
	if diff := cmp.Diff([]float64{19, 22, 43, 50}, C.ToFloat64s()); diff != "" {
		t.Fatalf("matmul values:\n%s", diff)
	}
	// Inner-product width: product spec (12,12) widened by ceil(log2 2) = 1.
	if C.Spec().Bits != 13 || C.Spec().IntBits != 13 {
		t.Fatalf("matmul spec = %+v", C.Spec())
	}
}

func TestMatMulVectorDot(t *testing.T) {
	spec := mustFixedSpec(t, 8, 8)
	a, _ := FixedFromFloat64s([]float64{1, 2, 3}, []int{3}, spec)
	b, _ := FixedFromFloat64s([]float64{4, 5, 6}, []int{3}, spec)
	dot := a.MatMul(b)
	if dot.NDim() != 0 || dot.Item().ToFloat64() != 32 {
		t.Fatalf("dot = ndim %d value %v", dot.NDim(), dot.Item().ToFloat64())
	}
}

func TestMatMulShapeMismatchPanics(t *testing.T) {
	spec := mustFixedSpec(t, 8, 8)
	a, _ := FixedFromFloat64s([]float64{1, 2, 3, 4, 5, 6}, []int{2, 3}, spec)
	b, _ := FixedFromFloat64s([]float64{1, 2, 3, 4}, []int{2, 2}, spec)
	defer func() {
		if recover() == nil {
			t.Fatal("expected shape-mismatch panic")
		}
	}()
	a.MatMul(b)
}

func TestConvolveFullScenario(t *testing.T) {
	// Array convolve-full scenario.
	spec := mustFixedSpec(t, 8, 8)
	a, _ := FixedFromFloat64s([]float64{1, 2, 3}, []int{3}, spec)
	b, _ := FixedFromFloat64s([]float64{4, 5}, []int{2}, spec)
	got := a.Convolve(b, ConvFull)
	if diff := cmp.Diff([]float64{4, 13, 22, 15}, got.ToFloat64s()); diff != "" {
		t.Fatalf("convolve full:\n%s", diff)
	}
	same := a.Convolve(b, ConvSame)
	if same.Size() != 3 {
		t.Fatalf("same length = %d", same.Size())
	}
	valid := a.Convolve(b, ConvValid)
	if diff := cmp.Diff([]float64{13, 22}, valid.ToFloat64s()); diff != "" {
		t.Fatalf("convolve valid:\n%s", diff)
	}
}

func TestSumExactWidening(t *testing.T) {
	spec := mustFixedSpec(t, 4, 4)
	// Five values of 7 (near the positive extreme) must sum exactly.
	a, _ := FixedFromFloat64s([]float64{7, 7, 7, 7, 7}, []int{5}, spec)
	s := a.Sum()
	if s.Item().ToFloat64() != 35 {
		t.Fatalf("sum = %v", s.Item().ToFloat64())
	}
	if s.Spec().Bits != 4+3 {
		t.Fatalf("sum spec = %+v", s.Spec())
	}
}

func TestSumAxis(t *testing.T) {
	spec := mustFixedSpec(t, 8, 8)
	a, _ := FixedFromFloat64s([]float64{1, 2, 3, 4, 5, 6}, []int{2, 3}, spec)
	rows := a.Sum(1)
	if diff := cmp.Diff([]float64{6, 15}, rows.ToFloat64s()); diff != "" {
		t.Fatalf("sum axis 1:\n%s", diff)
	}
	cols := a.Sum(0)
	if diff := cmp.Diff([]float64{5, 7, 9}, cols.ToFloat64s()); diff != "" {
		t.Fatalf("sum axis 0:\n%s", diff)
	}
}

func TestProdAndCum(t *testing.T) {
	spec := mustFixedSpec(t, 8, 8)
	a, _ := FixedFromFloat64s([]float64{1, 2, 3, 4}, []int{4}, spec)
	if got := a.Prod().Item().ToFloat64(); got != 24 {
		t.Fatalf("prod = %v", got)
	}
	if diff := cmp.Diff([]float64{1, 3, 6, 10}, a.CumSum(0).ToFloat64s()); diff != "" {
		t.Fatalf("cumsum:\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 2, 6, 24}, a.CumProd(0).ToFloat64s()); diff != "" {
		t.Fatalf("cumprod:\n%s", diff)
	}
}

func TestDivByZeroElementIsZero(t *testing.T) {
	spec := mustFixedSpec(t, 8, 4)
	a, _ := FixedFromFloat64s([]float64{1, 2}, []int{2}, spec)
	b, _ := FixedFromFloat64s([]float64{2, 0}, []int{2}, spec)
	q := a.Div(b)
	got := q.ToFloat64s()
	if got[0] != 0.5 || got[1] != 0 {
		t.Fatalf("div = %v", got)
	}
}

func TestBatchAddSubMatchesScalarPath(t *testing.T) {
	// Same-shape, same-spec operands take the batched limb path; it must
	// agree bit for bit with the per-element scalar path, including
	// negative values (sign extension) and multi-limb specs.
	for _, spec := range []struct{ bits, intBits int }{{8, 4}, {100, 40}} {
		s := mustFixedSpec(t, spec.bits, spec.intBits)
		av := []float64{1.5, -2.25, 0, -8, 7.75, 0.0625}
		bv := []float64{-1.5, 2.25, -0.5, 8, -7.75, 0.0625}
		a, _ := FixedFromFloat64s(av, []int{2, 3}, s)
		b, _ := FixedFromFloat64s(bv, []int{2, 3}, s)

		sum := a.Add(b)
		diff := a.Sub(b)
		for i := 0; i < a.Size(); i++ {
			wantSum := a.b.at(i).Add(b.b.at(i))
			if !sum.b.at(i).Equal(wantSum) {
				t.Fatalf("spec %+v: batched add element %d = %v, want %v",
					s, i, sum.b.at(i).ToFloat64(), wantSum.ToFloat64())
			}
			wantDiff := a.b.at(i).Sub(b.b.at(i))
			if !diff.b.at(i).Equal(wantDiff) {
				t.Fatalf("spec %+v: batched sub element %d = %v, want %v",
					s, i, diff.b.at(i).ToFloat64(), wantDiff.ToFloat64())
			}
		}
		if !sum.Spec().Equal(fixed.AddSpec(s, s)) {
			t.Fatalf("batched add spec = %+v", sum.Spec())
		}
	}
}

func TestBroadcastBinary(t *testing.T) {
	spec := mustFixedSpec(t, 8, 4)
	a, _ := FixedFromFloat64s([]float64{1, 2, 3, 4, 5, 6}, []int{2, 3}, spec)
	row, _ := FixedFromFloat64s([]float64{1, 1, 1}, []int{3}, spec)
	got := a.Add(row)
	if diff := cmp.Diff([]float64{2, 3, 4, 5, 6, 7}, got.ToFloat64s()); diff != "" {
		t.Fatalf("broadcast add:\n%s", diff)
	}
}

func TestMatMulAccumulator(t *testing.T) {
	spec := mustFixedSpec(t, 8, 8)
	a, _ := FixedFromFloat64s([]float64{100, 100}, []int{2}, spec)
	b, _ := FixedFromFloat64s([]float64{1, 1}, []int{2}, spec)
	acc := &FixedAccumulator{Spec: mustFixedSpec(t, 8, 8), Qntz: round.TRN, Ovf: round.SAT}
	got := a.MatMulWith(b, acc)
	// 100+100 saturates an 8-bit accumulator at 127.
	if got.Item().ToFloat64() != 127 {
		t.Fatalf("saturated dot = %v", got.Item().ToFloat64())
	}
	if !got.Spec().Equal(acc.Spec) {
		t.Fatalf("result spec = %+v", got.Spec())
	}
}

func TestFactories(t *testing.T) {
	spec := mustFixedSpec(t, 8, 4)
	if got := FixedOnes([]int{2, 2}, spec).ToFloat64s(); !cmp.Equal(got, []float64{1, 1, 1, 1}) {
		t.Fatalf("ones = %v", got)
	}
	eye := FixedEye(2, 3, spec)
	if diff := cmp.Diff([]float64{1, 0, 0, 0, 1, 0}, eye.ToFloat64s()); diff != "" {
		t.Fatalf("eye:\n%s", diff)
	}
	ar, err := FixedArange(0, 2, 0.5, spec)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{0, 0.5, 1, 1.5}, ar.ToFloat64s()); diff != "" {
		t.Fatalf("arange:\n%s", diff)
	}
	xs, _ := FixedFromFloat64s([]float64{1, 2}, []int{2}, spec)
	ys, _ := FixedFromFloat64s([]float64{3, 4, 5}, []int{3}, spec)
	grids := FixedMeshgrid(IndexIJ, xs, ys)
	if !cmp.Equal(grids[0].Shape(), []int{2, 3}) {
		t.Fatalf("meshgrid ij shape = %v", grids[0].Shape())
	}
	if diff := cmp.Diff([]float64{1, 1, 1, 2, 2, 2}, grids[0].ToFloat64s()); diff != "" {
		t.Fatalf("meshgrid x:\n%s", diff)
	}
	gxy := FixedMeshgrid(IndexXY, xs, ys)
	if !cmp.Equal(gxy[0].Shape(), []int{3, 2}) {
		t.Fatalf("meshgrid xy shape = %v", gxy[0].Shape())
	}
}

func TestNestedConstructor(t *testing.T) {
	spec := mustFixedSpec(t, 8, 4)
	a, err := FixedFromNested([][]float64{{1, 2}, {3, 4}}, spec)
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(a.Shape(), []int{2, 2}) {
		t.Fatalf("shape = %v", a.Shape())
	}
	if _, err := FixedFromNested([]any{[]float64{1, 2}, []float64{3}}, spec); err == nil {
		t.Fatal("expected ragged-nesting error")
	}
}

func TestCodecRoundTrip(t *testing.T) {
	spec := mustFixedSpec(t, 12, 5)
	a, _ := FixedFromFloat64s([]float64{1.5, -2.25, 3, -0.125}, []int{2, 2}, spec)
	p, err := a.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalFixed(p)
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(a.Shape(), got.Shape()) || !got.Spec().Equal(spec) {
		t.Fatalf("header mismatch: %v %+v", got.Shape(), got.Spec())
	}
	for i := 0; i < a.Size(); i++ {
		if !a.b.at(i).Equal(got.b.at(i)) {
			t.Fatalf("element %d differs", i)
		}
	}
}

func TestToDense(t *testing.T) {
	spec := mustFixedSpec(t, 8, 4)
	a, _ := FixedFromFloat64s([]float64{1, 2, 3, 4}, []int{2, 2}, spec)
	d, err := a.ToDense()
	if err != nil {
		t.Fatal(err)
	}
	if d.At(1, 0) != 3 {
		t.Fatalf("dense[1,0] = %v", d.At(1, 0))
	}
	back, err := FixedFromDense(d, spec)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a.ToFloat64s(), back.ToFloat64s()); diff != "" {
		t.Fatalf("dense round trip:\n%s", diff)
	}
	g, err := a.ToGeneral()
	if err != nil {
		t.Fatal(err)
	}
	if g.Rows != 2 || g.Stride != 2 || g.Data[3] != 4 {
		t.Fatalf("general = %+v", g)
	}
}
