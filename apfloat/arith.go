package apfloat

import (
	"math/bits"

	"golang.org/x/exp/rand"

	"github.com/apytypes/apygo/internal/limb"
	"github.com/apytypes/apygo/internal/round"
)

// Add returns a+b, both of spec. The implementation is tiered: a
// single-word fast path handles every operand pair whose widest man_bits+5
// fits one limb (mode != STOCH_WEIGHTED), for equal or mixed specs (AddTo),
// and a limb-buffer general path handles everything else. The tiers share
// finalize, so they agree bit for bit (see apfloat_test.go).
func Add(a, b FloatData, spec Spec, qntz round.QuantizationMode) FloatData {
	return AddRNG(a, b, spec, qntz, rngSource)
}

// AddRNG is Add with an explicit PRNG source.
func AddRNG(a, b FloatData, spec Spec, qntz round.QuantizationMode, rng *rand.Rand) FloatData {
	return addCross(a, spec, b, spec, spec, qntz, rng)
}

// Sub returns a-b.
func Sub(a, b FloatData, spec Spec, qntz round.QuantizationMode) FloatData {
	return addCross(a, spec, FloatData{Sign: !b.Sign, Exp: b.Exp, Man: b.Man}, spec, spec, qntz, rngSource)
}

// AddTo adds operands of (possibly) different specs into dst: the wider
// word length governs the intermediate, and the result is rounded once at
// dst's precision.
func AddTo(a FloatData, aSpec Spec, b FloatData, bSpec Spec, dst Spec, qntz round.QuantizationMode) FloatData {
	return addCross(a, aSpec, b, bSpec, dst, qntz, rngSource)
}

func addCross(a FloatData, aSpec Spec, b FloatData, bSpec Spec, dst Spec, qntz round.QuantizationMode, rng *rand.Rand) FloatData {
	if a.IsNaN(aSpec) || b.IsNaN(bSpec) {
		return nanValue(dst)
	}
	aInf, bInf := a.IsInf(aSpec), b.IsInf(bSpec)
	if aInf && bInf {
		if a.Sign != b.Sign {
			return nanValue(dst)
		}
		return infValue(a.Sign, dst)
	}
	if aInf {
		return infValue(a.Sign, dst)
	}
	if bInf {
		return infValue(b.Sign, dst)
	}

	am, aExp, aZero := trueMantissa(a, aSpec)
	bm, bExp, bZero := trueMantissa(b, bSpec)
	if aZero && bZero {
		return FloatData{Sign: a.Sign && b.Sign}
	}
	if aZero {
		return CastRNG(b, bSpec, dst, qntz, rng)
	}
	if bZero {
		return CastRNG(a, aSpec, dst, qntz, rng)
	}

	// Bring both true mantissas to a common width so exponents compare at
	// the same scale.
	man := aSpec.ManBits
	if bSpec.ManBits > man {
		man = bSpec.ManBits
	}
	am <<= uint(man - aSpec.ManBits)
	bm <<= uint(man - bSpec.ManBits)

	aSign, bSign := a.Sign, b.Sign
	if aExp < bExp || (aExp == bExp && am < bm) {
		am, bm = bm, am
		aExp, bExp = bExp, aExp
		aSign, bSign = bSign, aSign
	}
	sameSign := aSign == bSign
	if !sameSign && aExp == bExp && am == bm {
		// Exact cancellation of nonzero operands gives +0.
		return FloatData{}
	}
	expDiff := aExp - bExp
	if expDiff > wideLen*limb.WordBits {
		expDiff = wideLen * limb.WordBits
	}

	if qntz != round.STOCH_WEIGHTED && man+1+extraGuardBits <= limb.WordBits {
		return addFast(aSign, sameSign, am, bm, aExp, int(expDiff), man, dst, qntz, rng)
	}
	return addGeneral(aSign, sameSign, am, bm, aExp, int(expDiff), man, dst, qntz, rng)
}

// addFast is the single-word tier: the whole aligned sum, guard window
// included, fits one machine word.
func addFast(sign, sameSign bool, am, bm uint64, aExp int64, expDiff, man int, dst Spec, qntz round.QuantizationMode, rng *rand.Rand) FloatData {
	a4 := am << extraGuardBits
	b4 := bm << extraGuardBits
	var aligned uint64
	sticky := false
	if expDiff >= limb.WordBits {
		sticky = b4 != 0
	} else {
		aligned = b4 >> uint(expDiff)
		sticky = b4&(uint64(1)<<uint(expDiff)-1) != 0
	}
	if sticky {
		// Jam the lost bits into the lowest guard position; with two sticky
		// positions below round this preserves every rounding decision.
		aligned |= 1
	}
	var lo, hi uint64
	if sameSign {
		lo, hi = bits.Add64(a4, aligned, 0)
	} else {
		lo = a4 - aligned
	}
	combined := []limb.Word{lo, hi, 0}
	return finalize(sign, aExp-int64(man)-extraGuardBits, combined, dst, qntz, false, rng)
}

// addGeneral is the general tier, operating on wide limb buffers.
func addGeneral(sign, sameSign bool, am, bm uint64, aExp int64, expDiff, man int, dst Spec, qntz round.QuantizationMode, rng *rand.Rand) FloatData {
	amExt := make([]limb.Word, wideLen)
	limb.Lsl(amExt, toWide(am), extraGuardBits)
	bmExt := make([]limb.Word, wideLen)
	limb.Lsl(bmExt, toWide(bm), extraGuardBits)

	sticky := limb.OrReduceLowNBits(bmExt, expDiff)
	bmAligned := make([]limb.Word, wideLen)
	limb.Lsr(bmAligned, bmExt, uint(expDiff))
	if sticky {
		limb.SetBit(bmAligned, 0, true)
	}

	combined := make([]limb.Word, wideLen)
	if sameSign {
		limb.AddN(combined, amExt, bmAligned)
	} else {
		limb.SubN(combined, amExt, bmAligned)
	}
	return finalize(sign, aExp-int64(man)-extraGuardBits, combined, dst, qntz, false, rng)
}

// Mul returns a*b, both of spec, with special-value rules: inf*0 = NaN,
// finite*inf = +/-inf, inf*inf = +/-inf.
func Mul(a, b FloatData, spec Spec, qntz round.QuantizationMode) FloatData {
	return MulTo(a, spec, b, spec, spec, qntz)
}

// MulRNG is Mul with an explicit PRNG source.
func MulRNG(a, b FloatData, spec Spec, qntz round.QuantizationMode, rng *rand.Rand) FloatData {
	return mulCross(a, spec, b, spec, spec, qntz, rng)
}

// MulTo multiplies operands of (possibly) different specs into dst.
func MulTo(a FloatData, aSpec Spec, b FloatData, bSpec Spec, dst Spec, qntz round.QuantizationMode) FloatData {
	return mulCross(a, aSpec, b, bSpec, dst, qntz, rngSource)
}

func mulCross(a FloatData, aSpec Spec, b FloatData, bSpec Spec, dst Spec, qntz round.QuantizationMode, rng *rand.Rand) FloatData {
	if a.IsNaN(aSpec) || b.IsNaN(bSpec) {
		return nanValue(dst)
	}
	sign := a.Sign != b.Sign
	aInf, bInf := a.IsInf(aSpec), b.IsInf(bSpec)
	aZero, bZero := a.IsZero(aSpec), b.IsZero(bSpec)
	if (aInf && bZero) || (bInf && aZero) {
		return nanValue(dst)
	}
	if aInf || bInf {
		return infValue(sign, dst)
	}
	if aZero || bZero {
		return FloatData{Sign: sign}
	}

	am, aExp, _ := trueMantissa(a, aSpec)
	bm, bExp, _ := trueMantissa(b, bSpec)

	// Short tier: the full product fits one limb; otherwise the general
	// 128-bit product.
	var prod []limb.Word
	if aSpec.ManBits+bSpec.ManBits+2 <= limb.WordBits {
		prod = toWide(am * bm)
	} else {
		hi, lo := bits.Mul64(am, bm)
		prod = []limb.Word{lo, hi, 0}
	}
	exp2 := aExp + bExp - int64(aSpec.ManBits) - int64(bSpec.ManBits)
	return finalize(sign, exp2, prod, dst, qntz, false, rng)
}

// Div returns a/b, both of spec, with special-value rules: 0/0 and inf/inf
// are NaN, x/0 (x!=0) is +/-inf, 0/x (x finite nonzero) is +/-0, x/inf is
// +/-0.
func Div(a, b FloatData, spec Spec, qntz round.QuantizationMode) FloatData {
	return DivTo(a, spec, b, spec, spec, qntz)
}

// DivRNG is Div with an explicit PRNG source.
func DivRNG(a, b FloatData, spec Spec, qntz round.QuantizationMode, rng *rand.Rand) FloatData {
	return divCross(a, spec, b, spec, spec, qntz, rng)
}

// DivTo divides operands of (possibly) different specs into dst. The
// mantissa quotient is computed in an extended intermediate wide enough for
// dst's precision plus guard bits.
func DivTo(a FloatData, aSpec Spec, b FloatData, bSpec Spec, dst Spec, qntz round.QuantizationMode) FloatData {
	return divCross(a, aSpec, b, bSpec, dst, qntz, rngSource)
}

func divCross(a FloatData, aSpec Spec, b FloatData, bSpec Spec, dst Spec, qntz round.QuantizationMode, rng *rand.Rand) FloatData {
	if a.IsNaN(aSpec) || b.IsNaN(bSpec) {
		return nanValue(dst)
	}
	sign := a.Sign != b.Sign
	aInf, bInf := a.IsInf(aSpec), b.IsInf(bSpec)
	aZero, bZero := a.IsZero(aSpec), b.IsZero(bSpec)
	if (aZero && bZero) || (aInf && bInf) {
		return nanValue(dst)
	}
	if bZero {
		return infValue(sign, dst)
	}
	if aZero || bInf {
		return FloatData{Sign: sign}
	}
	if aInf {
		return infValue(sign, dst)
	}

	am, aExp, _ := trueMantissa(a, aSpec)
	bm, bExp, _ := trueMantissa(b, bSpec)

	shift := dst.ManBits + 1 + extraGuardBits
	num := make([]limb.Word, wideLen)
	limb.Lsl(num, toWide(am), uint(shift))
	q := make([]limb.Word, wideLen)
	r := make([]limb.Word, wideLen)
	limb.DivQR(q, r, num, toWide(bm))
	sticky := !limb.IsZero(r)

	exp2 := aExp - bExp - int64(aSpec.ManBits) + int64(bSpec.ManBits) - int64(shift)
	return finalize(sign, exp2, q, dst, qntz, sticky, rng)
}

// Scalbn multiplies d by 2^k exactly where representable, renormalizing a
// subnormal into the normal range when k is large enough, or shifting a
// normal into the subnormal range with correct rounding when k is negative
// enough.
func Scalbn(d FloatData, spec Spec, k int, qntz round.QuantizationMode) FloatData {
	if d.IsNaN(spec) || d.IsInf(spec) || d.IsZero(spec) {
		return d
	}
	mant, exp, _ := trueMantissa(d, spec)
	return finalize(d.Sign, exp+int64(k)-int64(spec.ManBits), toWide(mant), spec, qntz, false, rngSource)
}

// Accumulator is the floating-point accumulator override: when
// configured, inner-product partial sums are carried (and rounded) at
// this spec instead of the element format.
type Accumulator struct {
	Spec Spec
	Qntz round.QuantizationMode
}

// Inner computes the fused inner product sum(x[i]*y[i]), accumulating
// left to right. With acc == nil, every product and partial sum
// uses the element spec; otherwise each product is rounded into acc.Spec and
// each partial sum re-rounded there after the addition, modeling a
// fixed-width hardware accumulator. The result is returned at spec.
func Inner(x, y []FloatData, spec Spec, qntz round.QuantizationMode, acc *Accumulator) FloatData {
	return InnerRNG(x, y, spec, qntz, acc, rngSource)
}

// InnerRNG is Inner with an explicit PRNG source.
func InnerRNG(x, y []FloatData, spec Spec, qntz round.QuantizationMode, acc *Accumulator, rng *rand.Rand) FloatData {
	if acc == nil {
		var sum FloatData
		for i := range x {
			p := mulCross(x[i], spec, y[i], spec, spec, qntz, rng)
			sum = addCross(sum, spec, p, spec, spec, qntz, rng)
		}
		return sum
	}
	var sum FloatData
	for i := range x {
		p := mulCross(x[i], spec, y[i], spec, acc.Spec, acc.Qntz, rng)
		sum = addCross(sum, acc.Spec, p, acc.Spec, acc.Spec, acc.Qntz, rng)
	}
	return CastRNG(sum, acc.Spec, spec, acc.Qntz, rng)
}
