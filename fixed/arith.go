package fixed

import (
	"github.com/apytypes/apygo/internal/limb"
	"github.com/apytypes/apygo/internal/round"
)

// AddSpec is the lossless result spec for fixed-point addition and
// subtraction: int_bits widens by one guard bit to hold a
// possible carry, frac_bits takes the wider of the two operands.
func AddSpec(a, b Spec) Spec {
	fracBits := maxInt(a.FracBits(), b.FracBits())
	intBits := maxInt(a.IntBits, b.IntBits) + 1
	return Spec{Bits: intBits + fracBits, IntBits: intBits}
}

// MulSpec is the lossless result spec for fixed-point multiplication.
func MulSpec(a, b Spec) Spec {
	intBits := a.IntBits + b.IntBits
	fracBits := a.FracBits() + b.FracBits()
	return Spec{Bits: intBits + fracBits, IntBits: intBits}
}

// DivSpec is the lossless result spec for fixed-point division.
func DivSpec(a, b Spec) Spec {
	intBits := a.IntBits + b.FracBits() + 1
	fracBits := a.FracBits() + b.IntBits
	return Spec{Bits: intBits + fracBits, IntBits: intBits}
}

// singleLimbAddOperands reports whether a, b and the widened result all fit
// one limb with matching fractional bits, the hottest specialization: no
// alignment shift and plain word arithmetic.
func singleLimbAddOperands(a, b FixedPoint, dst Spec) bool {
	return a.Spec.FracBits() == b.Spec.FracBits() &&
		dst.Bits <= limb.WordBits && len(a.data) == 1 && len(b.data) == 1
}

// Add returns a+b at the lossless widened spec; no rounding or overflow is
// possible at this width.
func (a FixedPoint) Add(b FixedPoint) FixedPoint {
	dst := AddSpec(a.Spec, b.Spec)
	if singleLimbAddOperands(a, b, dst) {
		out := []limb.Word{a.data[0] + b.data[0]}
		limb.MaskTo(out, dst.Bits)
		limb.SignExtend(out, dst.Bits)
		return FixedPoint{Spec: dst, data: out}
	}
	aw, _ := a.Cast(dst, round.TRN, round.WRAP)
	bw, _ := b.Cast(dst, round.TRN, round.WRAP)
	out := make([]limb.Word, dst.NumLimbs())
	limb.AddN(out, aw.data, bw.data)
	limb.SignExtend(out, dst.Bits)
	return FixedPoint{Spec: dst, data: out}
}

// Sub returns a-b at the lossless widened spec.
func (a FixedPoint) Sub(b FixedPoint) FixedPoint {
	dst := AddSpec(a.Spec, b.Spec)
	if singleLimbAddOperands(a, b, dst) {
		out := []limb.Word{a.data[0] - b.data[0]}
		limb.MaskTo(out, dst.Bits)
		limb.SignExtend(out, dst.Bits)
		return FixedPoint{Spec: dst, data: out}
	}
	aw, _ := a.Cast(dst, round.TRN, round.WRAP)
	bw, _ := b.Cast(dst, round.TRN, round.WRAP)
	out := make([]limb.Word, dst.NumLimbs())
	limb.SubN(out, aw.data, bw.data)
	limb.SignExtend(out, dst.Bits)
	return FixedPoint{Spec: dst, data: out}
}

// Mul returns a*b at the lossless widened spec. MulN is an
// unsigned schoolbook kernel, so operands are converted to sign-magnitude
// first and the sign restored from the XOR of the two signs.
func (a FixedPoint) Mul(b FixedPoint) FixedPoint {
	dst := MulSpec(a.Spec, b.Spec)
	if dst.Bits <= limb.WordBits && len(a.data) == 1 && len(b.data) == 1 {
		// Single-limb specialization: two's-complement multiply modulo 2^64
		// is exact because the lossless product width fits one word.
		out := []limb.Word{a.data[0] * b.data[0]}
		limb.MaskTo(out, dst.Bits)
		limb.SignExtend(out, dst.Bits)
		return FixedPoint{Spec: dst, data: out}
	}

	am := make([]limb.Word, len(a.data))
	bm := make([]limb.Word, len(b.data))
	negA := limb.Abs(am, a.data)
	negB := limb.Abs(bm, b.data)
	prod := make([]limb.Word, len(am)+len(bm))
	limb.MulN(prod, am, bm)

	res := make([]limb.Word, dst.NumLimbs())
	copy(res, prod)
	if negA != negB {
		limb.Neg(res, res)
	}
	limb.SignExtend(res, dst.Bits)
	return FixedPoint{Spec: dst, data: res}
}

// Div returns a/b at the lossless widened spec, computed by
// pre-shifting the dividend left by the divisor's bit width and performing
// unsigned multi-limb division, restoring sign from the XOR of operand
// signs. Division by zero returns a zero-valued result rather than
// erroring, matching the non-propagating policy the array layer needs for
// broadcast-style division.
func (a FixedPoint) Div(b FixedPoint) (FixedPoint, error) {
	dst := DivSpec(a.Spec, b.Spec)
	if limb.IsZero(b.data) {
		return FixedPoint{Spec: dst, data: make([]limb.Word, dst.NumLimbs())}, nil
	}

	am := make([]limb.Word, len(a.data))
	bm := make([]limb.Word, len(b.data))
	negA := limb.Abs(am, a.data)
	negB := limb.Abs(bm, b.data)

	// Pre-shift the dividend left by the divisor's bit width to keep
	// precision, then run unsigned division.
	shift := uint(b.Spec.Bits)
	shifted := make([]limb.Word, len(am)+len(bm)+1)
	limb.Lsl(shifted, am, shift)

	q := make([]limb.Word, dst.NumLimbs()+1)
	r := make([]limb.Word, len(bm))
	limb.DivQR(q, r, shifted, bm)

	out := make([]limb.Word, dst.NumLimbs())
	copy(out, q)
	if negA != negB {
		limb.Neg(out, out)
	}
	limb.SignExtend(out, dst.Bits)
	return FixedPoint{Spec: dst, data: out}, nil
}

// Neg returns -a, widening bits by one to represent -INT_MIN without
// overflow.
func (a FixedPoint) Neg() FixedPoint {
	dst := Spec{Bits: a.Spec.Bits + 1, IntBits: a.Spec.IntBits + 1}
	data := make([]limb.Word, dst.NumLimbs())
	copy(data, a.data)
	limb.SignExtend(data, a.Spec.Bits)
	limb.Neg(data, data)
	limb.SignExtend(data, dst.Bits)
	return FixedPoint{Spec: dst, data: data}
}

// Shl performs a binary-point-only left shift: the data buffer is
// unchanged, only int_bits (hence frac_bits) is relabeled.
func (a FixedPoint) Shl(n int) FixedPoint {
	return FixedPoint{Spec: Spec{Bits: a.Spec.Bits, IntBits: a.Spec.IntBits + n}, data: a.Limbs()}
}

// Shr is Shl(-n).
func (a FixedPoint) Shr(n int) FixedPoint {
	return a.Shl(-n)
}
