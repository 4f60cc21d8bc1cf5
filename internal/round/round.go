// Package round is the shared quantization/overflow decision engine behind
// both the fixed-point and floating-point cast engines:
// the fifteen QuantizationMode rounding rules and the three OverflowMode
// range-reduction rules, each applied to a guard/round/sticky (G/R/T) triple
// computed by the caller from the bits being discarded.
//
// Decide is a single function picked
// once per cast call (not fifteen duplicated hot loops); callers that need
// to monomorphize the hottest modes (RND_CONV, TRN) may do so by special
// casing before calling Decide.
package round

import (
	"golang.org/x/exp/rand"

	"github.com/apytypes/apygo/internal/limb"
)

// QuantizationMode selects how a discarded fraction rounds into the
// retained value.
type QuantizationMode int

const (
	TRN QuantizationMode = iota
	TRN_INF
	TRN_ZERO
	TRN_AWAY
	TRN_MAG
	RND
	RND_ZERO
	RND_INF
	RND_MIN_INF
	RND_CONV
	RND_CONV_ODD
	JAM
	JAM_UNBIASED
	STOCH_WEIGHTED
	STOCH_EQUAL
)

func (m QuantizationMode) String() string {
	switch m {
	case TRN:
		return "TRN"
	case TRN_INF:
		return "TRN_INF"
	case TRN_ZERO:
		return "TRN_ZERO"
	case TRN_AWAY:
		return "TRN_AWAY"
	case TRN_MAG:
		return "TRN_MAG"
	case RND:
		return "RND"
	case RND_ZERO:
		return "RND_ZERO"
	case RND_INF:
		return "RND_INF"
	case RND_MIN_INF:
		return "RND_MIN_INF"
	case RND_CONV:
		return "RND_CONV"
	case RND_CONV_ODD:
		return "RND_CONV_ODD"
	case JAM:
		return "JAM"
	case JAM_UNBIASED:
		return "JAM_UNBIASED"
	case STOCH_WEIGHTED:
		return "STOCH_WEIGHTED"
	case STOCH_EQUAL:
		return "STOCH_EQUAL"
	default:
		return "QuantizationMode(?)"
	}
}

// OverflowMode selects how a value outside the destination's representable
// range is reduced back into range.
type OverflowMode int

const (
	WRAP OverflowMode = iota
	SAT
	NUMERIC_STD
)

func (m OverflowMode) String() string {
	switch m {
	case WRAP:
		return "WRAP"
	case SAT:
		return "SAT"
	case NUMERIC_STD:
		return "NUMERIC_STD"
	default:
		return "OverflowMode(?)"
	}
}

// Bits is the guard/round/sticky/retained-LSB/sign quintuple that every
// quantization rule operates on. Guard is the bit
// immediately below the new LSB, Round the bit below Guard, and Sticky the
// OR of everything below Round. Discarded is the full discarded magnitude
// as a fraction in [0,1) of one ULP; only STOCH_WEIGHTED reads it.
type Bits struct {
	Sign        bool
	Guard       bool
	Round       bool
	Sticky      bool
	RetainedLSB bool
	Discarded   float64 // discarded_value / 2^discarded_bits, in [0,1)
}

// Adjustment is the ULP-level correction Decide recommends: the retained
// value is left unchanged, incremented by one ULP, or has its LSB forced to
// 1. Callers also handle SubULP (decrement by one ULP), but neither Decide
// nor DecideMagnitude returns it.
type Adjustment int

const (
	NoAdjust Adjustment = iota
	AddULP
	SubULP
	ForceLSB // retained LSB forced to 1 (the two JAM modes)
)

// Decide applies a QuantizationMode to a G/R/T triple taken from a
// two's-complement representation whose retained part was truncated toward
// minus infinity (arithmetic right shift), and returns the adjustment the
// caller must apply to the retained value. The discarded field of a
// two's-complement value is a non-negative fraction f of one ULP, so the
// exact value is retained + f and every directed mode reduces to "add one
// ULP or don't". rng is consulted only by STOCH_WEIGHTED/STOCH_EQUAL and
// may be nil for every other mode.
func Decide(mode QuantizationMode, b Bits, rng *rand.Rand) Adjustment {
	anyDiscarded := b.Guard || b.Round || b.Sticky
	switch mode {
	case TRN:
		return NoAdjust
	case TRN_INF:
		// Ceiling, both signs.
		if anyDiscarded {
			return AddULP
		}
		return NoAdjust
	case TRN_ZERO, TRN_MAG:
		// Floor is already toward zero for non-negative values; negative
		// values need the ceiling.
		if b.Sign && anyDiscarded {
			return AddULP
		}
		return NoAdjust
	case TRN_AWAY:
		if !b.Sign && anyDiscarded {
			return AddULP
		}
		return NoAdjust
	case RND:
		// Nearest, ties toward +inf: the tie (f == 1/2) rounds up for both
		// signs, so the guard bit alone decides.
		if b.Guard {
			return AddULP
		}
		return NoAdjust
	case RND_ZERO:
		// Nearest, ties toward zero: a negative tie sits between retained
		// and retained+1 with retained+1 the closer-to-zero candidate.
		if b.Guard && (b.Round || b.Sticky || b.Sign) {
			return AddULP
		}
		return NoAdjust
	case RND_INF:
		// Nearest, ties away from zero.
		if b.Guard && (b.Round || b.Sticky || !b.Sign) {
			return AddULP
		}
		return NoAdjust
	case RND_MIN_INF:
		// Nearest, ties toward -inf: only a strict majority rounds up.
		if b.Guard && (b.Round || b.Sticky) {
			return AddULP
		}
		return NoAdjust
	case RND_CONV:
		if b.Guard && (b.RetainedLSB || b.Round || b.Sticky) {
			return AddULP
		}
		return NoAdjust
	case RND_CONV_ODD:
		if b.Guard && (!b.RetainedLSB || b.Round || b.Sticky) {
			return AddULP
		}
		return NoAdjust
	case JAM:
		return ForceLSB
	case JAM_UNBIASED:
		if anyDiscarded {
			return ForceLSB
		}
		return NoAdjust
	case STOCH_WEIGHTED:
		if rng.Float64() < b.Discarded {
			return AddULP
		}
		return NoAdjust
	case STOCH_EQUAL:
		if !anyDiscarded {
			return NoAdjust
		}
		if rng.Float64() < 0.5 {
			return AddULP
		}
		return NoAdjust
	default:
		return NoAdjust
	}
}

// DecideMagnitude is Decide's sign-magnitude counterpart, used by the
// floating-point engine: the G/R/T triple comes from an unsigned magnitude
// whose retained part was truncated toward zero (logical right shift), so
// AddULP means "grow the magnitude" and the negative-value branches mirror
// Decide's accordingly. The two functions agree on every non-negative
// input.
func DecideMagnitude(mode QuantizationMode, b Bits, rng *rand.Rand) Adjustment {
	anyDiscarded := b.Guard || b.Round || b.Sticky
	switch mode {
	case TRN:
		// Toward -inf: grows the magnitude of negative values.
		if b.Sign && anyDiscarded {
			return AddULP
		}
		return NoAdjust
	case TRN_INF:
		if !b.Sign && anyDiscarded {
			return AddULP
		}
		return NoAdjust
	case TRN_ZERO, TRN_MAG:
		// Magnitude truncation is already toward zero.
		return NoAdjust
	case TRN_AWAY:
		if anyDiscarded {
			return AddULP
		}
		return NoAdjust
	case RND:
		// A negative tie must fall toward +inf, i.e. keep the smaller
		// magnitude.
		if b.Guard && (b.Round || b.Sticky || !b.Sign) {
			return AddULP
		}
		return NoAdjust
	case RND_ZERO:
		if b.Guard && (b.Round || b.Sticky) {
			return AddULP
		}
		return NoAdjust
	case RND_INF:
		if b.Guard {
			return AddULP
		}
		return NoAdjust
	case RND_MIN_INF:
		if b.Guard && (b.Round || b.Sticky || b.Sign) {
			return AddULP
		}
		return NoAdjust
	case RND_CONV:
		if b.Guard && (b.RetainedLSB || b.Round || b.Sticky) {
			return AddULP
		}
		return NoAdjust
	case RND_CONV_ODD:
		if b.Guard && (!b.RetainedLSB || b.Round || b.Sticky) {
			return AddULP
		}
		return NoAdjust
	case JAM:
		return ForceLSB
	case JAM_UNBIASED:
		if anyDiscarded {
			return ForceLSB
		}
		return NoAdjust
	case STOCH_WEIGHTED:
		if rng.Float64() < b.Discarded {
			return AddULP
		}
		return NoAdjust
	case STOCH_EQUAL:
		if !anyDiscarded {
			return NoAdjust
		}
		if rng.Float64() < 0.5 {
			return AddULP
		}
		return NoAdjust
	default:
		return NoAdjust
	}
}

// ApplyOverflow reduces data (a two's-complement value already sign-extended
// to len(data)*limb.WordBits) back into `width` bits using mode, modifying
// data in place and re-sign-extending it across the full slice width so
// that it remains comparable as a whole-slice two's-complement value.
// It reports whether the value was out of range for `width` before the
// reduction.
func ApplyOverflow(data []limb.Word, width int, mode OverflowMode) (overflowed bool) {
	overflowed = !fitsInWidth(data, width)
	switch mode {
	case WRAP, NUMERIC_STD:
		limb.MaskTo(data, width)
		limb.SignExtend(data, width)
	case SAT:
		if overflowed {
			saturate(data, width)
		}
	}
	return overflowed
}

// fitsInWidth reports whether the signed value in data is representable in
// `width` bits, i.e. equals its own sign extension from that width.
func fitsInWidth(data []limb.Word, width int) bool {
	tmp := make([]limb.Word, len(data))
	copy(tmp, data)
	limb.MaskTo(tmp, width)
	limb.SignExtend(tmp, width)
	for i := range tmp {
		if tmp[i] != data[i] {
			return false
		}
	}
	return true
}

// saturate clamps data to the extreme representable value of `width` bits,
// preserving the sign of the (out of range) original value.
func saturate(data []limb.Word, width int) {
	neg := limb.IsNegative(data)
	for i := range data {
		data[i] = 0
	}
	if neg {
		// Minimum representable value: 1 followed by width-1 zeros, then
		// sign-extended.
		limb.SetBit(data, width-1, true)
		limb.SignExtend(data, width)
	} else {
		// Maximum representable value: width-1 ones.
		for i := 0; i < width-1; i++ {
			limb.SetBit(data, i, true)
		}
	}
}
