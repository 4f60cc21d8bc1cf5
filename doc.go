// Package apygo is a library of arbitrary-precision, user-configurable
// numeric types for deterministic numeric simulation (hardware modeling,
// DSP): fixed-point and custom floating-point scalars, their complex
// variants, and n-dimensional arrays of all four, each with explicit,
// reproducible word lengths, quantization policies, and overflow policies.
//
// The concrete types live in the subpackages:
//
//   - fixed: the (bits, int_bits)-parameterized fixed-point scalar and its
//     cast engine.
//   - apfloat: the (exp_bits, man_bits, bias)-parameterized floating-point
//     scalar with IEEE-like special values.
//   - cfixed, cfloat: the complex variants.
//   - ndarray: n-dimensional arrays over all four element types, with
//     slicing, broadcasting, reductions, matrix multiplication and
//     convolution.
//
// This top-level package carries the process-wide option registers
// (fixed-point cast defaults, the floating-point quantization mode, and the
// optional inner-product accumulator) with scoped push/pop semantics, and
// re-exports the shared mode and error vocabulary so most callers only
// import apygo plus the concrete type packages they use.
package apygo

import (
	"github.com/apytypes/apygo/apyerr"
	"github.com/apytypes/apygo/internal/round"
)

// QuantizationMode selects how a discarded fraction rounds into the
// retained value.
type QuantizationMode = round.QuantizationMode

// The fifteen quantization modes.
const (
	TRN            = round.TRN
	TRN_INF        = round.TRN_INF
	TRN_ZERO       = round.TRN_ZERO
	TRN_AWAY       = round.TRN_AWAY
	TRN_MAG        = round.TRN_MAG
	RND            = round.RND
	RND_ZERO       = round.RND_ZERO
	RND_INF        = round.RND_INF
	RND_MIN_INF    = round.RND_MIN_INF
	RND_CONV       = round.RND_CONV
	RND_CONV_ODD   = round.RND_CONV_ODD
	JAM            = round.JAM
	JAM_UNBIASED   = round.JAM_UNBIASED
	STOCH_WEIGHTED = round.STOCH_WEIGHTED
	STOCH_EQUAL    = round.STOCH_EQUAL
)

// OverflowMode selects how a value outside the destination's representable
// range is reduced back into range.
type OverflowMode = round.OverflowMode

// The three overflow modes.
const (
	WRAP        = round.WRAP
	SAT         = round.SAT
	NUMERIC_STD = round.NUMERIC_STD
)

// Error is the typed error every apygo package raises; Kind distinguishes
// the user-visible categories.
type (
	Error = apyerr.Error
	Kind  = apyerr.Kind
)

// The error kinds.
const (
	SpecInvalid     = apyerr.SpecInvalid
	ShapeMismatch   = apyerr.ShapeMismatch
	IndexOutOfRange = apyerr.IndexOutOfRange
	KeyInvalid      = apyerr.KeyInvalid
	ValueInvalid    = apyerr.ValueInvalid
	TypeInvalid     = apyerr.TypeInvalid
	NotImplemented  = apyerr.NotImplemented
)
