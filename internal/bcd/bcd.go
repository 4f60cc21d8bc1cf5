// Package bcd implements the binary/decimal conversion pipeline behind
// exact base-10 formatting and parsing of
// arbitrary-precision magnitudes: double dabble for binary→BCD, and a
// digit-accumulation pass for the inverse direction.
//
// Both directions work on unsigned magnitudes; sign handling belongs to the
// caller (fixed.FixedPoint, apfloat.FloatData).
package bcd

import (
	"math/bits"

	"github.com/apytypes/apygo/internal/limb"
)

// ToBCD converts the unsigned magnitude x into decimal digits 0-9,
// most-significant digit first, with no leading zero digit (except the
// single digit "0" for a zero magnitude). It is the textbook double-dabble
// (shift-and-add-3) algorithm: for each bit of x from MSB to LSB, any BCD
// nibble that has reached 5 or more is corrected by adding 3 before the
// whole digit chain shifts left by one bit to absorb the next input bit.
func ToBCD(x []limb.Word) []byte {
	nbits := limb.BitWidth(x)
	if nbits == 0 {
		return []byte{0}
	}
	// log10(2) =~ 0.30103; +2 digits of headroom for the correction carry.
	numDigits := int(float64(nbits)*0.30103) + 2
	digits := make([]byte, numDigits) // index 0 = least significant digit

	for i := nbits - 1; i >= 0; i-- {
		for d := range digits {
			if digits[d] >= 5 {
				digits[d] += 3
			}
		}
		carry := limb.TestBit(x, i)
		for d := range digits {
			newCarry := digits[d] >= 8
			digits[d] = (digits[d] << 1) & 0xF
			if carry {
				digits[d] |= 1
			}
			carry = newCarry
		}
	}

	msd := len(digits) - 1
	for msd > 0 && digits[msd] == 0 {
		msd--
	}
	out := make([]byte, msd+1)
	for i := 0; i <= msd; i++ {
		out[i] = digits[msd-i]
	}
	return out
}

// FromBCD reconstructs the unsigned magnitude represented by decimal digits
// (most-significant first, each 0-9) into nlimbs limbs. It accumulates via
// Horner's rule (acc = acc*10 + digit) built from the same limb shift/add
// primitives double dabble itself relies on; this is the exact numeric
// dual of ToBCD for the BCD→binary direction (see package doc).
func FromBCD(digits []byte, nlimbs int) []limb.Word {
	acc := make([]limb.Word, nlimbs)
	t8 := make([]limb.Word, nlimbs)
	t2 := make([]limb.Word, nlimbs)
	for _, d := range digits {
		limb.Lsl(t8, acc, 3)
		limb.Lsl(t2, acc, 1)
		limb.AddN(acc, t8, t2)
		addDigit(acc, limb.Word(d))
	}
	return acc
}

// addDigit adds a single-limb value v into acc in place.
func addDigit(acc []limb.Word, v limb.Word) {
	var carry uint64
	sum, c := bits.Add64(acc[0], uint64(v), 0)
	acc[0] = sum
	carry = c
	for i := 1; i < len(acc) && carry != 0; i++ {
		sum, c := bits.Add64(acc[i], 0, carry)
		acc[i] = sum
		carry = c
	}
}
