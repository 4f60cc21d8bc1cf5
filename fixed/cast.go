package fixed

import (
	"golang.org/x/exp/rand"

	"github.com/apytypes/apygo/internal/limb"
	"github.com/apytypes/apygo/internal/round"
)

// Cast implements the value-preserving fixed-point cast engine: align to
// a common fractional base, quantize the discarded bits with qntz, then
// reduce the result to dst.Bits with ovf. It never fails on a
// legal dst spec; WRAP/NUMERIC_STD may silently overflow.
func (f FixedPoint) Cast(dst Spec, qntz round.QuantizationMode, ovf round.OverflowMode) (FixedPoint, error) {
	return f.CastRNG(dst, qntz, ovf, rngSource)
}

// CastRNG is Cast with an explicit PRNG source for the two stochastic
// modes, so callers needing reproducible casts never depend on the
// package-level default source.
func (f FixedPoint) CastRNG(dst Spec, qntz round.QuantizationMode, ovf round.OverflowMode, rng *rand.Rand) (FixedPoint, error) {
	srcFrac := f.Spec.FracBits()
	dstFrac := dst.FracBits()

	// Align to a common fractional base, widened enough that no
	// information is lost before quantization.
	alignWidth := maxInt(f.Spec.Bits, dst.Bits) + absInt(dstFrac-srcFrac) + 2
	alignLimbs := limb.NumLimbs(alignWidth)

	var retained []limb.Word
	var discardedBits int
	var discardedMag []limb.Word

	if dstFrac >= srcFrac {
		// Left-shift source into a widened buffer; nothing is discarded.
		shift := uint(dstFrac - srcFrac)
		retained = make([]limb.Word, alignLimbs)
		limb.Lsl(retained, f.data, shift)
		if limb.IsNegative(f.data) {
			limb.SignExtend(retained, f.Spec.Bits+int(shift))
		}
		discardedBits = 0
	} else {
		// Split source at bit position (srcFrac - dstFrac): low bits are
		// discarded, the rest is retained.
		discardedBits = srcFrac - dstFrac
		retained = make([]limb.Word, alignLimbs)
		limb.Asr(retained, f.data, uint(discardedBits))
		discardedMag = make([]limb.Word, limb.NumLimbs(discardedBits+1))
		limb.MaskTo(discardedMag, discardedBits)
		copy(discardedMag, f.data)
		limb.MaskTo(discardedMag, discardedBits)
	}

	sign := limb.IsNegative(retained)
	var g, r, t bool
	var discardedFrac float64
	if discardedBits > 0 {
		g = limb.TestBit(discardedMag, discardedBits-1)
		if discardedBits > 1 {
			r = limb.TestBit(discardedMag, discardedBits-2)
			t = limb.OrReduceLowNBits(discardedMag, discardedBits-2)
		}
		if qntz == round.STOCH_WEIGHTED {
			discardedFrac = fracValue(discardedMag, discardedBits)
		}
	}
	retainedLSB := limb.TestBit(retained, 0)

	// Quantization is skipped entirely when nothing is discarded; this is
	// also what makes same-spec casts idempotent for every mode, JAM
	// included.
	if discardedBits > 0 {
		bits := round.Bits{
			Sign:        sign,
			Guard:       g,
			Round:       r,
			Sticky:      t,
			RetainedLSB: retainedLSB,
			Discarded:   discardedFrac,
		}
		switch round.Decide(qntz, bits, rng) {
		case round.AddULP:
			limb.AddPow2(retained, 0)
		case round.SubULP:
			limb.SubPow2(retained, 0)
		case round.ForceLSB:
			limb.SetBit(retained, 0, true)
		}
	}

	round.ApplyOverflow(retained, dst.Bits, ovf)
	out := make([]limb.Word, dst.NumLimbs())
	copy(out, retained)
	limb.MaskTo(out, dst.Bits)
	limb.SignExtend(out, dst.Bits)
	return FixedPoint{Spec: dst, data: out}, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// fracValue returns the discarded magnitude as a fraction of one ULP
// in [0,1), for STOCH_WEIGHTED's uniform-draw comparison. Only the top
// bits nearest the rounding boundary fit a float64 mantissa, so the value
// is read from position bits-1 downward; a nonzero tail below the
// resolution floor still forces a nonzero comparison value (mirrors
// apfloat's discardedFraction).
func fracValue(mag []limb.Word, bits int) float64 {
	if bits <= 0 {
		return 0
	}
	n := bits
	if n > 62 {
		n = 62
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v <<= 1
		if limb.TestBit(mag, bits-n+i) {
			v |= 1
		}
	}
	f := float64(v) / float64(uint64(1)<<uint(n))
	if f == 0 && limb.OrReduceLowNBits(mag, bits-n) {
		f = 1.0 / float64(uint64(1)<<62)
	}
	return f
}
