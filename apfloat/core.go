package apfloat

import (
	"golang.org/x/exp/rand"

	"github.com/apytypes/apygo/internal/limb"
	"github.com/apytypes/apygo/internal/round"
)

// wideLen sizes the scratch limb buffers every arithmetic/cast routine below
// widens into. man_bits is capped at 61, so three 64-bit limbs
// (192 bits) give ample headroom for a full mantissa quotient plus guard
// bits of headroom for a full mantissa quotient plus guard bits.
const wideLen = 3

// extraGuardBits is the number of sub-ULP guard positions Add/Sub and Div
// carry through alignment so that the rounding decision sees a genuine
// guard/round/sticky triple rather than a single collapsed flag. Two sticky positions remain even after a carry-out
// normalization shift.
const extraGuardBits = 4

// rngSource is the default stochastic-rounding source used when callers
// don't supply their own (mirrors fixed.rngSource).
var rngSource = rand.New(rand.NewSource(1))

func toWide(v uint64) []limb.Word {
	w := make([]limb.Word, wideLen)
	w[0] = v
	return w
}

func manMask(spec Spec) uint64 {
	if spec.ManBits <= 0 {
		return 0
	}
	return uint64(1)<<uint(spec.ManBits) - 1
}

// trueMantissa returns the hidden-bit-included mantissa (always exactly
// man_bits+1 wide) and the unbiased true exponent of d, normalizing
// subnormals by shifting the mantissa left until the hidden bit appears.
// isZero reports whether d is +/-0; in that case mant
// and exp are meaningless.
func trueMantissa(d FloatData, spec Spec) (mant uint64, exp int64, isZero bool) {
	if d.Exp == 0 {
		if d.Man == 0 {
			return 0, 0, true
		}
		mant = d.Man
		exp = 1 - int64(spec.Bias)
		hidden := uint64(1) << uint(spec.ManBits)
		for mant&hidden == 0 {
			mant <<= 1
			exp--
		}
		return mant, exp, false
	}
	return d.Man | uint64(1)<<uint(spec.ManBits), int64(d.Exp) - int64(spec.Bias), false
}

// roundsToInf reports whether overflow under mode, for a value of the given
// sign, rounds to infinity rather than the largest finite magnitude.
func roundsToInf(mode round.QuantizationMode, sign bool) bool {
	switch mode {
	case round.RND, round.RND_INF, round.RND_CONV, round.RND_CONV_ODD:
		return true
	case round.TRN_INF:
		return !sign
	case round.TRN:
		return sign
	default:
		return false
	}
}

func applyAdjust(mant []limb.Word, adj round.Adjustment) {
	switch adj {
	case round.AddULP:
		limb.AddPow2(mant, 0)
	case round.SubULP:
		limb.SubPow2(mant, 0)
	case round.ForceLSB:
		limb.SetBit(mant, 0, true)
	}
}

// quantizeShift reduces mant (a wide unsigned magnitude) by `shift` bits,
// applying qntz to the guard/round/sticky triple the shift discards.
// shift <= 0 is an exact left-widening; extSticky ORs in a caller-supplied
// sticky contribution (e.g. a division remainder) below the bits mant
// itself carries.
func quantizeShift(mant []limb.Word, shift int, qntz round.QuantizationMode, sign bool, extSticky bool, rng *rand.Rand) []limb.Word {
	out := make([]limb.Word, len(mant))
	if shift <= 0 {
		limb.Lsl(out, mant, uint(-shift))
		if extSticky {
			adj := round.DecideMagnitude(qntz, round.Bits{Sign: sign, Sticky: true, RetainedLSB: limb.TestBit(out, 0)}, rng)
			applyAdjust(out, adj)
		}
		return out
	}
	g := limb.TestBit(mant, shift-1)
	r := false
	t := extSticky
	if shift >= 2 {
		r = limb.TestBit(mant, shift-2)
		t = t || limb.OrReduceLowNBits(mant, shift-2)
	}
	var discardedFrac float64
	if qntz == round.STOCH_WEIGHTED {
		discardedFrac = discardedFraction(mant, shift, extSticky)
	}
	limb.Lsr(out, mant, uint(shift))
	retainedLSB := limb.TestBit(out, 0)
	adj := round.DecideMagnitude(qntz, round.Bits{Sign: sign, Guard: g, Round: r, Sticky: t, RetainedLSB: retainedLSB, Discarded: discardedFrac}, rng)
	applyAdjust(out, adj)
	return out
}

// discardedFraction returns the low `shift` bits of mant as a fraction of
// one retained ULP, for STOCH_WEIGHTED's uniform-draw comparison.
func discardedFraction(mant []limb.Word, shift int, extSticky bool) float64 {
	n := shift
	if n > 62 {
		n = 62
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v <<= 1
		if limb.TestBit(mant, shift-n+i) {
			v |= 1
		}
	}
	f := float64(v) / float64(uint64(1)<<uint(n))
	if f == 0 && extSticky {
		f = 1.0 / float64(uint64(1)<<62)
	}
	return f
}

// finalize packs an exact (or sticky-annotated) value (-1)^sign * mant * 2^exp2
// into a FloatData of spec: it locates the final rounding position (the
// normal mantissa LSB, or the fixed subnormal LSB when the exponent
// underflows), quantizes exactly once there, absorbs a rounding carry into
// the exponent, and saturates to infinity or max-normal on overflow.
func finalize(sign bool, exp2 int64, mant []limb.Word, spec Spec, qntz round.QuantizationMode, extSticky bool, rng *rand.Rand) FloatData {
	if limb.IsZero(mant) {
		return FloatData{Sign: sign}
	}
	w := int64(limb.BitWidth(mant))
	e := exp2 + w - 1 + int64(spec.Bias)

	var shift int64
	if e <= 0 {
		// Underflowed into the subnormal range: the mantissa field scales by
		// 2^(1-bias-man_bits) regardless of where the leading bit sits.
		shift = (1 - int64(spec.Bias) - int64(spec.ManBits)) - exp2
	} else {
		shift = w - int64(spec.ManBits+1)
	}
	// Shifts beyond the buffer discard everything into sticky; clamping
	// keeps the int conversion safe for extreme bias/exponent combinations.
	if maxShift := int64(wideLen*limb.WordBits + 2); shift > maxShift {
		shift = maxShift
	}
	m := quantizeShift(mant, int(shift), qntz, sign, extSticky, rng)

	if e <= 0 {
		if limb.BitWidth(m) > spec.ManBits {
			// Rounding carried into the hidden-bit position: smallest normal.
			return FloatData{Sign: sign, Exp: 1, Man: m[0] & manMask(spec)}
		}
		return FloatData{Sign: sign, Man: m[0]}
	}

	if int64(limb.BitWidth(m)) > int64(spec.ManBits)+1 {
		// Rounding carry overflowed the hidden-bit position; the vacated
		// bit is zero, so this shift is exact.
		shifted := make([]limb.Word, len(m))
		limb.Lsr(shifted, m, 1)
		m = shifted
		e++
	}
	if e >= int64(spec.MaxExp()) {
		if roundsToInf(qntz, sign) {
			return infValue(sign, spec)
		}
		return FloatData{Sign: sign, Exp: spec.MaxExp() - 1, Man: manMask(spec)}
	}
	return FloatData{Sign: sign, Exp: uint64(e), Man: m[0] & manMask(spec)}
}
