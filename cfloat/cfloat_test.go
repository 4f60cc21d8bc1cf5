package cfloat

import (
	"math"
	"testing"

	"github.com/apytypes/apygo/apfloat"
	"github.com/apytypes/apygo/internal/round"
)

var half = apfloat.Spec{ExpBits: 5, ManBits: 10, Bias: 15}

func cf(v complex128) ComplexFloat {
	return FromComplex128(v, half, round.RND_CONV)
}

func TestMul(t *testing.T) {
	got := cf(1 + 2i).Mul(cf(3+4i), half, round.RND_CONV)
	if got.ToComplex128(half) != -5+10i {
		t.Fatalf("(1+2i)(3+4i) = %v, want -5+10i", got.ToComplex128(half))
	}
}

func TestAddSub(t *testing.T) {
	a, b := cf(2.5+0.5i), cf(-1+1.25i)
	if got := a.Add(b, half, round.RND_CONV).ToComplex128(half); got != 1.5+1.75i {
		t.Errorf("add = %v", got)
	}
	if got := a.Sub(b, half, round.RND_CONV).ToComplex128(half); got != 3.5-0.75i {
		t.Errorf("sub = %v", got)
	}
}

func TestDiv(t *testing.T) {
	got := cf(-5 + 10i).Div(cf(3+4i), half, round.RND_CONV)
	if got.ToComplex128(half) != 1+2i {
		t.Fatalf("(-5+10i)/(3+4i) = %v, want 1+2i", got.ToComplex128(half))
	}
}

func TestDivScalingPreservesRange(t *testing.T) {
	// Without the Smith 2^-k pre-scale, |c|^2 overflows half precision.
	big := cf(complex(256, 256))
	got := big.Div(big, half, round.RND_CONV).ToComplex128(half)
	if got != 1+0i {
		t.Fatalf("x/x = %v, want 1", got)
	}
}

func TestDivByZeroGivesInf(t *testing.T) {
	got := cf(1 + 1i).Div(cf(0), half, round.RND_CONV)
	if !got.Re.IsInf(half) || !got.Im.IsInf(half) {
		t.Fatalf("x/0 = %v, want infinite components", got.ToComplex128(half))
	}
}

func TestInfNumeratorOverFiniteDivisor(t *testing.T) {
	inf := ComplexFloat{Re: apfloat.FromFloat64(math.Inf(1), half, round.RND_CONV)}
	got := inf.Div(cf(1+1i), half, round.RND_CONV)
	if !got.Re.IsInf(half) {
		t.Fatalf("inf/(1+1i) real = %v, want inf", got.Re.ToFloat64(half))
	}
}

func TestFiniteOverInfDivisorIsZero(t *testing.T) {
	inf := ComplexFloat{Re: apfloat.FromFloat64(math.Inf(1), half, round.RND_CONV)}
	got := cf(1 + 1i).Div(inf, half, round.RND_CONV)
	if !got.Re.IsZero(half) || !got.Im.IsZero(half) {
		t.Fatalf("(1+1i)/inf = %v, want zero components", got.ToComplex128(half))
	}
}
