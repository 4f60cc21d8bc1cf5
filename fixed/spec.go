// Package fixed implements the (bits, int_bits)-parameterized fixed-point
// scalar: arbitrary word length, explicit binary
// point placement, and a cast engine that aligns fractional bases, quantizes
// with any of the fifteen modes in internal/round, and applies one of the
// three overflow modes.
package fixed

import (
	"github.com/apytypes/apygo/apyerr"
	"github.com/apytypes/apygo/internal/limb"
)

// Spec is the (bits, int_bits) pair that fully determines a FixedPoint's
// representable set; frac_bits is derived and may be negative (the format
// then scales its integer interpretation by 2^frac_bits).
type Spec struct {
	Bits    int
	IntBits int
}

// FracBits returns bits - int_bits, which may be negative.
func (s Spec) FracBits() int { return s.Bits - s.IntBits }

// NumLimbs returns ceil(bits/WordBits), the limb count backing a value of
// this spec.
func (s Spec) NumLimbs() int { return limb.NumLimbs(s.Bits) }

// Equal reports whether two Specs describe the same representable set.
func (s Spec) Equal(o Spec) bool { return s.Bits == o.Bits && s.IntBits == o.IntBits }

// NewSpec validates and constructs a Spec directly from (bits, int_bits).
func NewSpec(bits, intBits int) (Spec, error) {
	if bits < 1 {
		return Spec{}, apyerr.New(apyerr.SpecInvalid, "fixed.NewSpec", "bits must be >= 1, got %d", bits)
	}
	return Spec{Bits: bits, IntBits: intBits}, nil
}

// ResolveSpec implements the "exactly two of three redundant specifiers"
// rule: each of bits, intBits, fracBits may be nil (unsupplied); exactly two of the three must be supplied, and the third is
// derived.
func ResolveSpec(bits, intBits, fracBits *int) (Spec, error) {
	given := 0
	for _, p := range [3]*int{bits, intBits, fracBits} {
		if p != nil {
			given++
		}
	}
	if given != 2 {
		return Spec{}, apyerr.New(apyerr.SpecInvalid, "fixed.ResolveSpec",
			"exactly two of bits, int_bits, frac_bits must be given, got %d", given)
	}
	var s Spec
	switch {
	case bits != nil && intBits != nil:
		s = Spec{Bits: *bits, IntBits: *intBits}
	case bits != nil && fracBits != nil:
		s = Spec{Bits: *bits, IntBits: *bits - *fracBits}
	default: // intBits != nil && fracBits != nil
		s = Spec{Bits: *intBits + *fracBits, IntBits: *intBits}
	}
	if s.Bits < 1 {
		return Spec{}, apyerr.New(apyerr.SpecInvalid, "fixed.ResolveSpec", "resolved bits must be >= 1, got %d", s.Bits)
	}
	return s, nil
}
