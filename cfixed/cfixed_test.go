package cfixed

import (
	"testing"

	"github.com/apytypes/apygo/fixed"
)

func mustSpec(t *testing.T, bits, intBits int) fixed.Spec {
	t.Helper()
	s, err := fixed.NewSpec(bits, intBits)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func cfx(t *testing.T, v complex128, spec fixed.Spec) ComplexFixedPoint {
	t.Helper()
	c, err := FromComplex128(v, spec)
	if err != nil {
		t.Fatalf("FromComplex128(%v): %v", v, err)
	}
	return c
}

func TestMulScenario(t *testing.T) {
	// CFX-mul scenario: (1+2i)(3+4i) at (int=4, frac=4) gives
	// -5+10i at (int=9, frac=8).
	spec := mustSpec(t, 8, 4)
	a := cfx(t, 1+2i, spec)
	b := cfx(t, 3+4i, spec)
	p := a.Mul(b)
	if p.Spec().IntBits != 9 || p.Spec().FracBits() != 8 {
		t.Fatalf("product spec = (int=%d,frac=%d), want (9,8)", p.Spec().IntBits, p.Spec().FracBits())
	}
	if got := p.ToComplex128(); got != -5+10i {
		t.Fatalf("product = %v, want -5+10i", got)
	}
}

func TestAddSub(t *testing.T) {
	spec := mustSpec(t, 10, 5)
	a := cfx(t, 2.5+0.5i, spec)
	b := cfx(t, -1+1.25i, spec)
	if got := a.Add(b).ToComplex128(); got != 1.5+1.75i {
		t.Errorf("add = %v", got)
	}
	if got := a.Sub(b).ToComplex128(); got != 3.5-0.75i {
		t.Errorf("sub = %v", got)
	}
}

func TestDiv(t *testing.T) {
	spec := mustSpec(t, 12, 6)
	a := cfx(t, -5+10i, spec)
	b := cfx(t, 3+4i, spec)
	q, err := a.Div(b)
	if err != nil {
		t.Fatal(err)
	}
	if got := q.ToComplex128(); got != 1+2i {
		t.Fatalf("(-5+10i)/(3+4i) = %v, want 1+2i", got)
	}
}

func TestDivByZero(t *testing.T) {
	spec := mustSpec(t, 8, 4)
	a := cfx(t, 1+1i, spec)
	q, err := a.Div(Zero(spec))
	if err != nil {
		t.Fatal(err)
	}
	if !q.IsZero() {
		t.Fatalf("x/0 = %v, want zero sentinel", q.ToComplex128())
	}
}

func TestSpecMismatch(t *testing.T) {
	re, _ := fixed.FromFloat64(1, mustSpec(t, 8, 4))
	im, _ := fixed.FromFloat64(1, mustSpec(t, 10, 4))
	if _, err := New(re, im); err == nil {
		t.Fatal("expected spec-invalid error")
	}
}
