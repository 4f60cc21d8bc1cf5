// Package cfloat implements the complex custom floating-point scalar: a
// pair of apfloat.FloatData components sharing one spec, a
// four-partial-product multiplication, and a Smith-style scaled division
// with the C99 Annex G special-value recovery.
package cfloat

import (
	"math"
	"strconv"

	"github.com/apytypes/apygo/apfloat"
	"github.com/apytypes/apygo/internal/round"
)

// ComplexFloat is a complex value whose components share one apfloat.Spec
// (carried by the caller, as for the scalar float type).
type ComplexFloat struct {
	Re, Im apfloat.FloatData
}

// FromComplex128 constructs the nearest representable complex value,
// rounding each component with qntz.
func FromComplex128(v complex128, spec apfloat.Spec, qntz round.QuantizationMode) ComplexFloat {
	return ComplexFloat{
		Re: apfloat.FromFloat64(real(v), spec, qntz),
		Im: apfloat.FromFloat64(imag(v), spec, qntz),
	}
}

// ToComplex128 converts both components to double precision.
func (c ComplexFloat) ToComplex128(spec apfloat.Spec) complex128 {
	return complex(c.Re.ToFloat64(spec), c.Im.ToFloat64(spec))
}

// IsNaN reports whether either component is NaN.
func (c ComplexFloat) IsNaN(spec apfloat.Spec) bool {
	return c.Re.IsNaN(spec) || c.Im.IsNaN(spec)
}

// IsZero reports whether both components are (signed) zero.
func (c ComplexFloat) IsZero(spec apfloat.Spec) bool {
	return c.Re.IsZero(spec) && c.Im.IsZero(spec)
}

func isFiniteNonNaN(d apfloat.FloatData, spec apfloat.Spec) bool {
	return !d.IsNaN(spec) && !d.IsInf(spec)
}

// ToString renders the value as "(re+imj)" in decimal.
func (c ComplexFloat) ToString(spec apfloat.Spec) string {
	re := strconv.FormatFloat(c.Re.ToFloat64(spec), 'g', -1, 64)
	im := strconv.FormatFloat(c.Im.ToFloat64(spec), 'g', -1, 64)
	if im[0] != '-' {
		im = "+" + im
	}
	return "(" + re + im + "j)"
}

// Cast casts both components to dst.
func (c ComplexFloat) Cast(src, dst apfloat.Spec, qntz round.QuantizationMode) ComplexFloat {
	return ComplexFloat{
		Re: apfloat.Cast(c.Re, src, dst, qntz),
		Im: apfloat.Cast(c.Im, src, dst, qntz),
	}
}

// Add is component-wise addition.
func (c ComplexFloat) Add(o ComplexFloat, spec apfloat.Spec, qntz round.QuantizationMode) ComplexFloat {
	return ComplexFloat{
		Re: apfloat.Add(c.Re, o.Re, spec, qntz),
		Im: apfloat.Add(c.Im, o.Im, spec, qntz),
	}
}

// Sub is component-wise subtraction.
func (c ComplexFloat) Sub(o ComplexFloat, spec apfloat.Spec, qntz round.QuantizationMode) ComplexFloat {
	return ComplexFloat{
		Re: apfloat.Sub(c.Re, o.Re, spec, qntz),
		Im: apfloat.Sub(c.Im, o.Im, spec, qntz),
	}
}

// Mul computes (a+bi)(c+di) via the four partial products ac, ad, bc, bd
// with the scalar float multiplier, then two scalar additions. The scalar multiplier's specialization tiers apply per partial
// product.
func (c ComplexFloat) Mul(o ComplexFloat, spec apfloat.Spec, qntz round.QuantizationMode) ComplexFloat {
	ac := apfloat.Mul(c.Re, o.Re, spec, qntz)
	bd := apfloat.Mul(c.Im, o.Im, spec, qntz)
	ad := apfloat.Mul(c.Re, o.Im, spec, qntz)
	bc := apfloat.Mul(c.Im, o.Re, spec, qntz)
	return ComplexFloat{
		Re: apfloat.Sub(ac, bd, spec, qntz),
		Im: apfloat.Add(ad, bc, spec, qntz),
	}
}

// Div computes (a+bi)/(c+di) in the Smith-style scaled form: the divisor
// is pre-scaled by 2^-k (k the exponent of its larger
// component) so denom = cs²+ds² stays in range, the two quotients are
// rescaled by 2^-k afterwards, and the C99 Annex G edge cases are recovered
// when the straightforward computation degenerates to NaN.
func (c ComplexFloat) Div(o ComplexFloat, spec apfloat.Spec, qntz round.QuantizationMode) ComplexFloat {
	a, b := c.Re, c.Im
	d, e := o.Re, o.Im // divisor components c+di in the spec's naming

	k := scaleExponent(d, e, spec)
	ds := apfloat.Scalbn(d, spec, -k, qntz)
	es := apfloat.Scalbn(e, spec, -k, qntz)

	denom := apfloat.Add(
		apfloat.Mul(ds, ds, spec, qntz),
		apfloat.Mul(es, es, spec, qntz),
		spec, qntz)
	reNum := apfloat.Add(apfloat.Mul(a, ds, spec, qntz), apfloat.Mul(b, es, spec, qntz), spec, qntz)
	imNum := apfloat.Sub(apfloat.Mul(b, ds, spec, qntz), apfloat.Mul(a, es, spec, qntz), spec, qntz)

	re := apfloat.Scalbn(apfloat.Div(reNum, denom, spec, qntz), spec, -k, qntz)
	im := apfloat.Scalbn(apfloat.Div(imNum, denom, spec, qntz), spec, -k, qntz)

	if re.IsNaN(spec) && im.IsNaN(spec) {
		return recoverEdge(a, b, d, e, denom, spec)
	}
	return ComplexFloat{Re: re, Im: im}
}

// scaleExponent returns k = floor(log2(max(|c|,|d|))) for finite nonzero
// divisor components, 0 otherwise.
func scaleExponent(d, e apfloat.FloatData, spec apfloat.Spec) int {
	kd, okd := ilogb(d, spec)
	ke, oke := ilogb(e, spec)
	switch {
	case okd && oke:
		if ke > kd {
			return ke
		}
		return kd
	case okd:
		return kd
	case oke:
		return ke
	default:
		return 0
	}
}

func ilogb(d apfloat.FloatData, spec apfloat.Spec) (int, bool) {
	if d.IsZero(spec) || d.IsInf(spec) || d.IsNaN(spec) {
		return 0, false
	}
	return int(math.Ilogb(d.ToFloat64(spec))), true
}

// recoverEdge implements the C99 Annex G quotient recovery: a zero
// denominator with a non-NaN numerator produces
// appropriately-signed infinities; an infinite numerator over a finite
// divisor produces infinities; an infinite divisor under a finite numerator
// produces signed zeros. The directed signs are computed in double
// precision, which is exact for the 0/±1/±inf algebra involved.
func recoverEdge(a, b, d, e apfloat.FloatData, denom apfloat.FloatData, spec apfloat.Spec) ComplexFloat {
	af, bf := a.ToFloat64(spec), b.ToFloat64(spec)
	df, ef := d.ToFloat64(spec), e.ToFloat64(spec)

	switch {
	case denom.IsZero(spec) && (!a.IsNaN(spec) || !b.IsNaN(spec)):
		inf := math.Copysign(math.Inf(1), df)
		return fromDoubles(inf*af, inf*bf, spec)
	case (a.IsInf(spec) || b.IsInf(spec)) && isFiniteNonNaN(d, spec) && isFiniteNonNaN(e, spec):
		af = boxInf(af)
		bf = boxInf(bf)
		return fromDoubles(math.Inf(1)*(af*df+bf*ef), math.Inf(1)*(bf*df-af*ef), spec)
	case (d.IsInf(spec) || e.IsInf(spec)) && isFiniteNonNaN(a, spec) && isFiniteNonNaN(b, spec):
		df = boxInf(df)
		ef = boxInf(ef)
		return fromDoubles(0*(af*df+bf*ef), 0*(bf*df-af*ef), spec)
	}
	return ComplexFloat{
		Re: apfloat.FromFloat64(math.NaN(), spec, round.RND_CONV),
		Im: apfloat.FromFloat64(math.NaN(), spec, round.RND_CONV),
	}
}

// boxInf collapses an infinity to a signed unit and anything else to a
// signed zero, the substitution Annex G prescribes before re-deriving the
// directed result.
func boxInf(v float64) float64 {
	if math.IsInf(v, 0) {
		return math.Copysign(1, v)
	}
	return math.Copysign(0, v)
}

func fromDoubles(re, im float64, spec apfloat.Spec) ComplexFloat {
	return ComplexFloat{
		Re: apfloat.FromFloat64(re, spec, round.RND_CONV),
		Im: apfloat.FromFloat64(im, spec, round.RND_CONV),
	}
}
