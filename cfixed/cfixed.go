// Package cfixed implements the complex fixed-point scalar: a pair of
// equal-spec fixed.FixedPoint components with specialized complex product
// and quotient routines whose intermediate
// widths are chosen so every partial product is lossless before the final
// combination.
package cfixed

import (
	"github.com/apytypes/apygo/apyerr"
	"github.com/apytypes/apygo/fixed"
	"github.com/apytypes/apygo/internal/round"
)

// ComplexFixedPoint is a complex value whose real and imaginary components
// share one fixed.Spec.
type ComplexFixedPoint struct {
	Re, Im fixed.FixedPoint
}

// New pairs two components into a complex value. The components must share
// a spec.
func New(re, im fixed.FixedPoint) (ComplexFixedPoint, error) {
	if !re.Spec.Equal(im.Spec) {
		return ComplexFixedPoint{}, apyerr.New(apyerr.SpecInvalid, "cfixed.New",
			"component specs differ: %+v vs %+v", re.Spec, im.Spec)
	}
	return ComplexFixedPoint{Re: re, Im: im}, nil
}

// Zero returns 0+0i at spec.
func Zero(spec fixed.Spec) ComplexFixedPoint {
	return ComplexFixedPoint{Re: fixed.Zero(spec), Im: fixed.Zero(spec)}
}

// FromComplex128 constructs the nearest representable complex value,
// rounding each component with RND_INF like the scalar constructor.
func FromComplex128(v complex128, spec fixed.Spec) (ComplexFixedPoint, error) {
	re, err := fixed.FromFloat64(real(v), spec)
	if err != nil {
		return ComplexFixedPoint{}, err
	}
	im, err := fixed.FromFloat64(imag(v), spec)
	if err != nil {
		return ComplexFixedPoint{}, err
	}
	return ComplexFixedPoint{Re: re, Im: im}, nil
}

// Spec returns the shared component spec.
func (c ComplexFixedPoint) Spec() fixed.Spec { return c.Re.Spec }

// ToComplex128 converts both components to double precision.
func (c ComplexFixedPoint) ToComplex128() complex128 {
	return complex(c.Re.ToFloat64(), c.Im.ToFloat64())
}

// Equal reports whether both components match in spec and bit pattern.
func (c ComplexFixedPoint) Equal(o ComplexFixedPoint) bool {
	return c.Re.Equal(o.Re) && c.Im.Equal(o.Im)
}

// IsZero reports whether both components are zero.
func (c ComplexFixedPoint) IsZero() bool { return c.Re.IsZero() && c.Im.IsZero() }

// Cast casts both components to dst with the given policies.
func (c ComplexFixedPoint) Cast(dst fixed.Spec, qntz round.QuantizationMode, ovf round.OverflowMode) (ComplexFixedPoint, error) {
	re, err := c.Re.Cast(dst, qntz, ovf)
	if err != nil {
		return ComplexFixedPoint{}, err
	}
	im, err := c.Im.Cast(dst, qntz, ovf)
	if err != nil {
		return ComplexFixedPoint{}, err
	}
	return ComplexFixedPoint{Re: re, Im: im}, nil
}

// ToString renders the value as "(re+imj)" with both components formatted
// in the chosen base.
func (c ComplexFixedPoint) ToString(base int) (string, error) {
	re, err := c.Re.ToString(base)
	if err != nil {
		return "", err
	}
	im, err := c.Im.ToString(base)
	if err != nil {
		return "", err
	}
	if im[0] != '-' {
		im = "+" + im
	}
	return "(" + re + im + "j)", nil
}

// Add is component-wise addition at the lossless widened spec.
func (c ComplexFixedPoint) Add(o ComplexFixedPoint) ComplexFixedPoint {
	return ComplexFixedPoint{Re: c.Re.Add(o.Re), Im: c.Im.Add(o.Im)}
}

// Sub is component-wise subtraction at the lossless widened spec.
func (c ComplexFixedPoint) Sub(o ComplexFixedPoint) ComplexFixedPoint {
	return ComplexFixedPoint{Re: c.Re.Sub(o.Re), Im: c.Im.Sub(o.Im)}
}

// Neg negates both components, widening by one bit.
func (c ComplexFixedPoint) Neg() ComplexFixedPoint {
	return ComplexFixedPoint{Re: c.Re.Neg(), Im: c.Im.Neg()}
}

// Mul computes (a+bi)(c+di) = (ac-bd) + (ad+bc)i with all four partial
// products held at their lossless multiplication width before the two
// combining additions, so the result spec is
// (int_bits1+int_bits2+1, frac_bits1+frac_bits2) and exact.
func (c ComplexFixedPoint) Mul(o ComplexFixedPoint) ComplexFixedPoint {
	ac := c.Re.Mul(o.Re)
	bd := c.Im.Mul(o.Im)
	ad := c.Re.Mul(o.Im)
	bc := c.Im.Mul(o.Re)
	return ComplexFixedPoint{Re: ac.Sub(bd), Im: ad.Add(bc)}
}

// Div computes (a+bi)/(c+di) through the Smith form:
// denom = c²+d², re = (ac+bd)/denom, im = (bc-ad)/denom. For fixed-point
// the 2^-k pre-scaling of the float variant degenerates to an exact
// binary-point relabeling, so the unscaled form is used directly; every
// intermediate is lossless and the two component quotients carry the
// lossless division spec. A zero denominator yields zero components, the
// non-propagating sentinel the array layer requires.
func (c ComplexFixedPoint) Div(o ComplexFixedPoint) (ComplexFixedPoint, error) {
	denom := o.Re.Mul(o.Re).Add(o.Im.Mul(o.Im))
	reNum := c.Re.Mul(o.Re).Add(c.Im.Mul(o.Im))
	imNum := c.Im.Mul(o.Re).Sub(c.Re.Mul(o.Im))
	re, err := reNum.Div(denom)
	if err != nil {
		return ComplexFixedPoint{}, err
	}
	im, err := imNum.Div(denom)
	if err != nil {
		return ComplexFixedPoint{}, err
	}
	return ComplexFixedPoint{Re: re, Im: im}, nil
}
