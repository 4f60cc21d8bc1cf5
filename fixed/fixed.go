package fixed

import (
	"math"
	"strings"

	"github.com/apytypes/apygo/apyerr"
	"github.com/apytypes/apygo/internal/bcd"
	"github.com/apytypes/apygo/internal/limb"
	"github.com/apytypes/apygo/internal/round"
	"golang.org/x/exp/rand"
)

// FixedPoint is an immutable (after construction) arbitrary-precision
// fixed-point scalar: a Spec plus ceil(bits/WordBits) limbs, two's
// complement, sign-extended above Spec.Bits-1 across the whole limb slice
// so that every limb-kernel operation can treat the data as an ordinary
// signed multi-limb integer.
type FixedPoint struct {
	Spec Spec
	data []limb.Word
}

// FromBits constructs a FixedPoint directly from its two's-complement bit
// pattern (the low Spec.Bits bits of v are significant; v is masked and
// sign-extended).
func FromBits(v uint64, spec Spec) FixedPoint {
	data := make([]limb.Word, spec.NumLimbs())
	data[0] = limb.Word(v)
	limb.MaskTo(data, spec.Bits)
	limb.SignExtend(data, spec.Bits)
	return FixedPoint{Spec: spec, data: data}
}

// FromInt64 constructs a FixedPoint from a host integer value, placed at
// frac_bits = 0 relative to the spec's scaling (i.e. the integer is
// multiplied by 2^frac_bits worth of binary-point shift is NOT applied
// here: v is the pre-scaled integer value, callers wanting a specific real
// value should use FromFloat64).
func FromInt64(v int64, spec Spec) FixedPoint {
	data := make([]limb.Word, spec.NumLimbs())
	if v < 0 {
		data[0] = uint64(v)
		for i := 1; i < len(data); i++ {
			data[i] = ^limb.Word(0)
		}
	} else {
		data[0] = uint64(v)
	}
	limb.MaskTo(data, spec.Bits)
	limb.SignExtend(data, spec.Bits)
	return FixedPoint{Spec: spec, data: data}
}

// FromFloat64 constructs a FixedPoint representing the closest value to v,
// rounding with RND_INF and saturating on overflow.
func FromFloat64(v float64, spec Spec) (FixedPoint, error) {
	return FromFloat64Rounded(v, spec, round.RND_INF, round.SAT)
}

// FromFloat64Rounded is FromFloat64 with an explicit quantization/overflow
// policy.
func FromFloat64Rounded(v float64, spec Spec, qntz round.QuantizationMode, ovf round.OverflowMode) (FixedPoint, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return FixedPoint{}, apyerr.New(apyerr.ValueInvalid, "fixed.FromFloat64", "value must be finite, got %v", v)
	}
	neg := math.Signbit(v)
	mag := math.Abs(v)
	// Represent mag exactly as mantissa*2^exp using frexp, then build an
	// arbitrarily-wide intermediate at a fractional base wide enough to
	// hold the full double-precision mantissa, and cast down through the
	// normal cast engine so rounding/overflow policy is applied uniformly.
	const mantissaBits = 53
	frac, exp := math.Frexp(mag) // mag = frac * 2^exp, frac in [0.5,1)
	mantissa := uint64(frac * (1 << mantissaBits))
	srcFrac := mantissaBits - exp
	srcSpec := Spec{Bits: mantissaBits + 2, IntBits: (mantissaBits + 2) - srcFrac}
	data := make([]limb.Word, srcSpec.NumLimbs())
	data[0] = mantissa
	limb.MaskTo(data, srcSpec.Bits)
	if neg {
		limb.Neg(data, data)
	}
	limb.SignExtend(data, srcSpec.Bits)
	src := FixedPoint{Spec: srcSpec, data: data}
	return src.Cast(spec, qntz, ovf)
}

// FromString parses a decimal (or, for base != 10, integer-only) literal
// matching the grammar `/-?(\d+\.?\d*|\.\d+)/` (whitespace
// trimmed) into a FixedPoint of the given spec and base.
func FromString(str string, spec Spec, base int) (FixedPoint, error) {
	s := strings.TrimSpace(str)
	if s == "" {
		return FixedPoint{}, apyerr.New(apyerr.ValueInvalid, "fixed.FromString", "empty literal")
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	} else if s[0] == '+' {
		s = s[1:]
	}
	if s == "" {
		return FixedPoint{}, apyerr.New(apyerr.ValueInvalid, "fixed.FromString", "malformed literal %q", str)
	}

	if base != 10 {
		mag, err := parseIntegerBase(s, base)
		if err != nil {
			return FixedPoint{}, err
		}
		v, err := FromFloat64Rounded(signedFloat(mag, neg), spec, round.RND_INF, round.SAT)
		return v, err
	}

	intPart, fracPart, err := splitDecimal(s)
	if err != nil {
		return FixedPoint{}, err
	}
	// Build the exact value as intPart + fracPart*10^-len(fracPart) by
	// parsing both halves through the BCD engine and combining at a wide
	// enough fixed-point base, then casting down.
	scale := 1
	for range fracPart {
		scale *= 10
	}
	intDigits := asciiDigits(intPart)
	fracDigits := asciiDigits(fracPart)
	combinedDigits := append(intDigits, fracDigits...)
	numLimbs := limb.NumLimbs(len(combinedDigits)*4 + 8)
	mag := bcd.FromBCD(combinedDigits, numLimbs)

	// mag currently equals (intPart*10^k + fracPart), k=len(fracPart)). We
	// want intPart + fracPart/scale = mag/scale.
	wideSpec := Spec{Bits: numLimbs*limb.WordBits + 8, IntBits: numLimbs * limb.WordBits}
	if neg {
		limb.Neg(mag, mag)
	}
	limb.SignExtend(mag, wideSpec.Bits)
	wide := FixedPoint{Spec: wideSpec, data: resize(mag, wideSpec.NumLimbs())}
	if scale == 1 {
		return wide.Cast(spec, round.RND_INF, round.SAT)
	}
	divisor := FromInt64(int64(scale), Spec{Bits: wideSpec.Bits, IntBits: wideSpec.IntBits})
	q, _ := wide.Div(divisor)
	return q.Cast(spec, round.RND_INF, round.SAT)
}

func resize(x []limb.Word, n int) []limb.Word {
	if len(x) == n {
		return x
	}
	out := make([]limb.Word, n)
	copy(out, x)
	if n > len(x) && limb.IsNegative(x) {
		for i := len(x); i < n; i++ {
			out[i] = ^limb.Word(0)
		}
	}
	return out
}

func signedFloat(mag uint64, neg bool) float64 {
	v := float64(mag)
	if neg {
		v = -v
	}
	return v
}

func asciiDigits(s string) []byte {
	out := make([]byte, len(s))
	for i, c := range s {
		out[i] = byte(c) - '0'
	}
	return out
}

func splitDecimal(s string) (intPart, fracPart string, err error) {
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		intPart = s
	} else {
		intPart = s[:dot]
		fracPart = s[dot+1:]
	}
	if intPart == "" && fracPart == "" {
		return "", "", apyerr.New(apyerr.ValueInvalid, "fixed.FromString", "malformed literal %q", s)
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, c := range intPart + fracPart {
		if c < '0' || c > '9' {
			return "", "", apyerr.New(apyerr.ValueInvalid, "fixed.FromString", "non-digit %q in literal", c)
		}
	}
	return intPart, fracPart, nil
}

func parseIntegerBase(s string, base int) (uint64, error) {
	var v uint64
	for _, c := range s {
		var d uint64
		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = uint64(c-'A') + 10
		default:
			return 0, apyerr.New(apyerr.ValueInvalid, "fixed.FromString", "invalid digit %q for base %d", c, base)
		}
		if int(d) >= base {
			return 0, apyerr.New(apyerr.ValueInvalid, "fixed.FromString", "digit %q out of range for base %d", c, base)
		}
		v = v*uint64(base) + d
	}
	return v, nil
}

// ToBits returns the two's-complement bit pattern of f as the low Spec.Bits
// bits of a uint64 (valid only while Spec.Bits <= 64; wider values should
// read Limbs directly).
func (f FixedPoint) ToBits() uint64 {
	v := uint64(f.data[0])
	if f.Spec.Bits < limb.WordBits {
		v &= uint64(1)<<uint(f.Spec.Bits) - 1
	}
	return v
}

// Limbs returns the raw backing limbs (a copy); least-significant limb
// first, sign-extended across the full slice.
func (f FixedPoint) Limbs() []limb.Word {
	out := make([]limb.Word, len(f.data))
	copy(out, f.data)
	return out
}

// IsNegative reports the sign of f.
func (f FixedPoint) IsNegative() bool { return limb.IsNegative(f.data) }

// IsZero reports whether f represents exactly zero.
func (f FixedPoint) IsZero() bool { return limb.IsZero(f.data) }

// Equal reports whether f and o share both spec and bit pattern.
func (f FixedPoint) Equal(o FixedPoint) bool {
	if !f.Spec.Equal(o.Spec) || len(f.data) != len(o.data) {
		return false
	}
	for i := range f.data {
		if f.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// FromWords constructs a FixedPoint from raw little-endian limb words (the
// inverse of Limbs); the value is masked and sign-extended to spec.Bits.
func FromWords(words []uint64, spec Spec) FixedPoint {
	data := make([]limb.Word, spec.NumLimbs())
	copy(data, words)
	limb.MaskTo(data, spec.Bits)
	limb.SignExtend(data, spec.Bits)
	return FixedPoint{Spec: spec, data: data}
}

// Zero returns the zero value of the given spec.
func Zero(spec Spec) FixedPoint {
	return FixedPoint{Spec: spec, data: make([]limb.Word, spec.NumLimbs())}
}

// ToFloat64 converts f to the nearest double-precision float.
func (f FixedPoint) ToFloat64() float64 {
	mag := make([]limb.Word, len(f.data))
	neg := limb.Abs(mag, f.data)
	var acc float64
	for i := len(mag) - 1; i >= 0; i-- {
		acc = acc*18446744073709551616.0 + float64(mag[i]) // *2^64
	}
	acc = math.Ldexp(acc, -f.Spec.FracBits())
	if neg {
		acc = -acc
	}
	return acc
}

// String renders f in decimal, implementing fmt.Stringer.
func (f FixedPoint) String() string {
	s, _ := f.ToString(10)
	return s
}

// ToString renders f in the given base (2, 8, 10, 16). Base 10 uses the
// double-dabble BCD pipeline for exact decimal output;
// non-decimal bases format the raw two's-complement bit pattern.
func (f FixedPoint) ToString(base int) (string, error) {
	switch base {
	case 10:
		return f.toDecimalString(), nil
	case 2, 8, 16:
		return f.toRadixString(base), nil
	default:
		return "", apyerr.New(apyerr.NotImplemented, "fixed.ToString", "unsupported base %d", base)
	}
}

func (f FixedPoint) toDecimalString() string {
	mag := make([]limb.Word, len(f.data))
	neg := limb.Abs(mag, f.data)
	fracBits := f.Spec.FracBits()
	if fracBits <= 0 {
		// Pure (or negative-fraction, i.e. scaled) integer: shift left by
		// -fracBits before formatting.
		if fracBits < 0 {
			shifted := make([]limb.Word, len(mag)+1)
			limb.Lsl(shifted, mag, uint(-fracBits))
			mag = shifted
		}
		digits := bcd.ToBCD(mag)
		s := string(digitsToASCII(digits))
		if neg {
			return "-" + s
		}
		return s
	}

	intMag := make([]limb.Word, len(mag))
	limb.Lsr(intMag, mag, uint(fracBits))
	intDigits := bcd.ToBCD(intMag)

	// Fractional part: value = (mag & (2^fracBits-1)) / 2^fracBits.
	// Render exactly via repeated multiply-by-10, extracting one decimal
	// digit per step (this is exact because fracBits is finite).
	fracMask := make([]limb.Word, len(mag))
	copy(fracMask, mag)
	limb.MaskTo(fracMask, fracBits)
	var fracDigits []byte
	// A fraction k/2^fracBits has at most fracBits decimal digits.
	maxDigits := fracBits
	for i := 0; i < maxDigits && !limb.IsZero(fracMask); i++ {
		wide := make([]limb.Word, len(fracMask)+1)
		t2 := make([]limb.Word, len(fracMask)+1)
		t8 := make([]limb.Word, len(fracMask)+1)
		padded := make([]limb.Word, len(fracMask)+1)
		copy(padded, fracMask)
		limb.Lsl(t2, padded, 1)
		limb.Lsl(t8, padded, 3)
		limb.AddN(wide, t2, t8)
		// The next decimal digit is the integer part of (fracMask*10
		// scaled by 2^fracBits) >> fracBits; the remainder stays in the
		// fractional-base representation for the next iteration.
		shifted := make([]limb.Word, len(wide))
		limb.Lsr(shifted, wide, uint(fracBits))
		digit := byte(shifted[0] & 0xF)
		fracDigits = append(fracDigits, digit)
		remainder := make([]limb.Word, len(wide))
		shiftedBack := make([]limb.Word, len(wide))
		limb.Lsl(shiftedBack, shifted, uint(fracBits))
		limb.SubN(remainder, wide, shiftedBack)
		fracMask = resize(remainder, len(fracMask))
	}

	s := string(digitsToASCII(intDigits))
	if len(fracDigits) > 0 {
		s += "." + string(digitsToASCII(fracDigits))
	}
	if neg {
		s = "-" + s
	}
	return s
}

func digitsToASCII(d []byte) []byte {
	out := make([]byte, len(d))
	for i, b := range d {
		out[i] = b + '0'
	}
	return out
}

func (f FixedPoint) toRadixString(base int) string {
	mag := make([]limb.Word, len(f.data))
	neg := limb.Abs(mag, f.data)
	if limb.IsZero(mag) {
		return "0"
	}
	const digits = "0123456789abcdef"
	var out []byte
	bitsPerDigit := map[int]int{2: 1, 8: 3, 16: 4}[base]
	total := limb.BitWidth(mag)
	total += (bitsPerDigit - total%bitsPerDigit) % bitsPerDigit
	for pos := total - bitsPerDigit; pos >= 0; pos -= bitsPerDigit {
		v := 0
		for b := 0; b < bitsPerDigit; b++ {
			if limb.TestBit(mag, pos+b) {
				v |= 1 << b
			}
		}
		out = append(out, digits[v])
	}
	// Trim leading zero digits.
	i := 0
	for i < len(out)-1 && out[i] == '0' {
		i++
	}
	s := string(out[i:])
	if neg {
		s = "-" + s
	}
	return s
}

// rngSource is the default stochastic-rounding source used when callers
// don't supply their own (CastRNG takes an explicit source instead).
var rngSource = rand.New(rand.NewSource(1))
