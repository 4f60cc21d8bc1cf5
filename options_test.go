package apygo

import (
	"testing"

	"github.com/apytypes/apygo/fixed"
)

func TestFixedCastOptionScopedPush(t *testing.T) {
	orig := GetFixedCastOption()
	func() {
		defer PushFixedCastOption(FixedCastOption{Quantization: RND_CONV, Overflow: SAT})()
		got := GetFixedCastOption()
		if got.Quantization != RND_CONV || got.Overflow != SAT {
			t.Fatalf("pushed option not visible: %+v", got)
		}
	}()
	if GetFixedCastOption() != orig {
		t.Fatalf("option not restored: %+v", GetFixedCastOption())
	}
}

func TestCastFixedUsesRegister(t *testing.T) {
	spec, err := fixed.NewSpec(8, 4)
	if err != nil {
		t.Fatal(err)
	}
	x, err := fixed.FromFloat64(3.9375, spec)
	if err != nil {
		t.Fatal(err)
	}
	dst, _ := fixed.NewSpec(5, 4)
	defer PushFixedCastOption(FixedCastOption{Quantization: TRN, Overflow: WRAP})()
	trunc, err := CastFixed(x, dst)
	if err != nil {
		t.Fatal(err)
	}
	if trunc.ToFloat64() != 3.5 {
		t.Fatalf("TRN cast = %v, want 3.5", trunc.ToFloat64())
	}
	SetFixedCastOption(FixedCastOption{Quantization: RND, Overflow: SAT})
	rounded, err := CastFixed(x, dst)
	if err != nil {
		t.Fatal(err)
	}
	if rounded.ToFloat64() != 4.0 {
		t.Fatalf("RND cast = %v, want 4.0", rounded.ToFloat64())
	}
}

func TestFloatQuantizationModeRegister(t *testing.T) {
	orig := GetFloatQuantizationMode()
	defer SetFloatQuantizationMode(orig)
	SetFloatQuantizationMode(TRN)
	if GetFloatQuantizationMode() != TRN {
		t.Fatal("set not visible")
	}
}

func TestFloatAccumulatorRegister(t *testing.T) {
	if GetFloatAccumulator() != nil {
		t.Fatal("default accumulator should be nil")
	}
	acc := &FloatAccumulator{Qntz: RND_CONV}
	restore := PushFloatAccumulator(acc)
	if GetFloatAccumulator() != acc {
		t.Fatal("push not visible")
	}
	restore()
	if GetFloatAccumulator() != nil {
		t.Fatal("restore did not clear")
	}
}
