// Package apfloat implements the (exp_bits, man_bits, bias)-parameterized
// custom floating-point scalar: arbitrary exponent
// and mantissa width, IEEE-like special values (zero, subnormal, infinity,
// NaN), and a cast/arithmetic engine sharing the quantization vocabulary of
// internal/round with the fixed-point side.
package apfloat

import "github.com/apytypes/apygo/apyerr"

// Spec is the (exp_bits, man_bits, bias) triple that fully determines a
// FloatData's representable set.
type Spec struct {
	ExpBits int
	ManBits int
	Bias    uint64
}

// MaxExp is the reserved all-ones exponent value marking infinities and
// NaNs.
func (s Spec) MaxExp() uint64 {
	return uint64(1)<<uint(s.ExpBits) - 1
}

// Equal reports whether two Specs describe the same representable set.
func (s Spec) Equal(o Spec) bool {
	return s.ExpBits == o.ExpBits && s.ManBits == o.ManBits && s.Bias == o.Bias
}

// NewSpec validates and constructs a Spec. exp_bits must fit in 0..31 and
// man_bits in 0..61, the range apygo's FloatData
// relies on to keep every mantissa representable in a single uint64 word.
func NewSpec(expBits, manBits int, bias uint64) (Spec, error) {
	if expBits < 0 || expBits > 31 {
		return Spec{}, apyerr.New(apyerr.SpecInvalid, "apfloat.NewSpec", "exp_bits must be 0..31, got %d", expBits)
	}
	if manBits < 0 || manBits > 61 {
		return Spec{}, apyerr.New(apyerr.SpecInvalid, "apfloat.NewSpec", "man_bits must be 0..61, got %d", manBits)
	}
	return Spec{ExpBits: expBits, ManBits: manBits, Bias: bias}, nil
}

// DefaultBias returns the IEEE-754-style bias 2^(exp_bits-1)-1 conventional
// for a given exponent width, for callers that don't need a custom bias.
func DefaultBias(expBits int) uint64 {
	if expBits <= 0 {
		return 0
	}
	return uint64(1)<<uint(expBits-1) - 1
}

// DoubleSpec is the IEEE-754 binary64 format, the ToFloat64/ToComplex128
// conversion target.
var DoubleSpec = Spec{ExpBits: 11, ManBits: 52, Bias: 1023}
