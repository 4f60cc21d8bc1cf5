package apygo

import (
	"sync"

	"github.com/apytypes/apygo/apfloat"
	"github.com/apytypes/apygo/fixed"
	"github.com/apytypes/apygo/internal/round"
)

// FixedCastOption is the process-wide default (quantization, overflow) pair
// consumed by fixed-point casts when the caller omits explicit policies.
type FixedCastOption struct {
	Quantization QuantizationMode
	Overflow     OverflowMode
}

// FloatAccumulator re-exports apfloat's accumulator override for
// matmul/convolve/inner-product accumulation.
type FloatAccumulator = apfloat.Accumulator

// The three process-wide option registers. They are plain mutex-guarded
// values: kernels never read them directly — array operations snapshot the
// relevant register once at entry and thread the snapshot through.
var (
	optMu        sync.Mutex
	fixedCastOpt = FixedCastOption{Quantization: round.TRN, Overflow: round.WRAP}
	floatQntzOpt = round.RND_CONV
	floatAccOpt  *FloatAccumulator
)

// GetFixedCastOption returns the current fixed-point cast defaults.
func GetFixedCastOption() FixedCastOption {
	optMu.Lock()
	defer optMu.Unlock()
	return fixedCastOpt
}

// SetFixedCastOption replaces the fixed-point cast defaults.
func SetFixedCastOption(o FixedCastOption) {
	optMu.Lock()
	defer optMu.Unlock()
	fixedCastOpt = o
}

// PushFixedCastOption installs o and returns a restore function; callers
// defer the restore so the prior value comes back on every exit path.
func PushFixedCastOption(o FixedCastOption) (restore func()) {
	optMu.Lock()
	defer optMu.Unlock()
	prev := fixedCastOpt
	fixedCastOpt = o
	return func() { SetFixedCastOption(prev) }
}

// CastFixed casts x to dst using the process-wide fixed-point defaults,
// for callers that omit explicit policies.
func CastFixed(x fixed.FixedPoint, dst fixed.Spec) (fixed.FixedPoint, error) {
	o := GetFixedCastOption()
	return x.Cast(dst, o.Quantization, o.Overflow)
}

// GetFloatQuantizationMode returns the default floating-point quantization
// mode.
func GetFloatQuantizationMode() QuantizationMode {
	optMu.Lock()
	defer optMu.Unlock()
	return floatQntzOpt
}

// SetFloatQuantizationMode replaces the default floating-point quantization
// mode.
func SetFloatQuantizationMode(m QuantizationMode) {
	optMu.Lock()
	defer optMu.Unlock()
	floatQntzOpt = m
}

// PushFloatQuantizationMode installs m and returns a restore function.
func PushFloatQuantizationMode(m QuantizationMode) (restore func()) {
	optMu.Lock()
	defer optMu.Unlock()
	prev := floatQntzOpt
	floatQntzOpt = m
	return func() { SetFloatQuantizationMode(prev) }
}

// GetFloatAccumulator returns the accumulator override for inner-product
// reductions, or nil when the natural widths apply.
func GetFloatAccumulator() *FloatAccumulator {
	optMu.Lock()
	defer optMu.Unlock()
	return floatAccOpt
}

// SetFloatAccumulator replaces the accumulator override; nil clears it.
func SetFloatAccumulator(a *FloatAccumulator) {
	optMu.Lock()
	defer optMu.Unlock()
	floatAccOpt = a
}

// PushFloatAccumulator installs a and returns a restore function.
func PushFloatAccumulator(a *FloatAccumulator) (restore func()) {
	optMu.Lock()
	defer optMu.Unlock()
	prev := floatAccOpt
	floatAccOpt = a
	return func() { SetFloatAccumulator(prev) }
}
