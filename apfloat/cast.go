package apfloat

import (
	"golang.org/x/exp/rand"

	"github.com/apytypes/apygo/internal/round"
)

// Cast implements the floating-point cast engine: special
// values pass through (inf preserved, NaN canonicalized), zero maps to
// signed zero, subnormals are normalized, the exponent is rebiased, the
// mantissa is requantized with qntz, and overflow saturates to infinity or
// max-normal per the mode's rounding direction.
func Cast(src FloatData, srcSpec, dstSpec Spec, qntz round.QuantizationMode) FloatData {
	return CastRNG(src, srcSpec, dstSpec, qntz, rngSource)
}

// CastRNG is Cast with an explicit PRNG source for STOCH_WEIGHTED/STOCH_EQUAL.
func CastRNG(src FloatData, srcSpec, dstSpec Spec, qntz round.QuantizationMode, rng *rand.Rand) FloatData {
	if src.Exp == srcSpec.MaxExp() {
		if src.Man == 0 {
			return infValue(src.Sign, dstSpec)
		}
		return FloatData{Sign: src.Sign, Exp: dstSpec.MaxExp(), Man: 1}
	}
	if src.Exp == 0 && src.Man == 0 {
		return FloatData{Sign: src.Sign}
	}

	// Fast branch: a widening mantissa with an in-range
	// rebased exponent maps fields directly, skipping quantization.
	if dstSpec.ManBits >= srcSpec.ManBits && src.Exp > 0 {
		e := int64(src.Exp) - int64(srcSpec.Bias) + int64(dstSpec.Bias)
		if e > 0 && e < int64(dstSpec.MaxExp()) {
			return FloatData{Sign: src.Sign, Exp: uint64(e), Man: src.Man << uint(dstSpec.ManBits-srcSpec.ManBits)}
		}
	}

	mant, trueExp, _ := trueMantissa(src, srcSpec)
	return finalize(src.Sign, trueExp-int64(srcSpec.ManBits), toWide(mant), dstSpec, qntz, false, rng)
}
