package fixed

import (
	"testing"

	"golang.org/x/exp/rand"

	"github.com/apytypes/apygo/internal/round"
)

func mustSpec(t *testing.T, bits, intBits int) Spec {
	t.Helper()
	s, err := NewSpec(bits, intBits)
	if err != nil {
		t.Fatalf("NewSpec(%d,%d): %v", bits, intBits, err)
	}
	return s
}

func TestFromFloat64RoundTrip(t *testing.T) {
	spec := mustSpec(t, 16, 8)
	cases := []float64{0, 1, -1, 2.5, -2.5, 127.9921875, -128}
	for _, v := range cases {
		x, err := FromFloat64(v, spec)
		if err != nil {
			t.Fatalf("FromFloat64(%v): %v", v, err)
		}
		got := x.ToFloat64()
		if got != v {
			t.Errorf("FromFloat64(%v).ToFloat64() = %v", v, got)
		}
	}
}

func TestAddWiden(t *testing.T) {
	// FX-add-widen scenario.
	spec := mustSpec(t, 6, 3)
	a, _ := FromFloat64(2.5, spec)
	b, _ := FromFloat64(1.5, spec)
	sum := a.Add(b)
	if sum.Spec.IntBits != 4 || sum.Spec.FracBits() != 3 {
		t.Fatalf("result spec = (int=%d,frac=%d), want (4,3)", sum.Spec.IntBits, sum.Spec.FracBits())
	}
	if got := sum.ToFloat64(); got != 4.0 {
		t.Fatalf("sum = %v, want 4.0", got)
	}
	if sum.ToBits() != 0b0100000 {
		t.Fatalf("bits = %b, want 0100000", sum.ToBits())
	}
}

func TestCastRndConv(t *testing.T) {
	// FX-cast-rnd-conv scenario: 0.625 rounds to 0.5 (ties to even).
	spec := mustSpec(t, 4, 1)
	a := FromBits(0b0101, spec)
	if got := a.ToFloat64(); got != 0.625 {
		t.Fatalf("source value = %v, want 0.625", got)
	}
	dst := mustSpec(t, 2, 1)
	b, err := a.Cast(dst, round.RND_CONV, round.WRAP)
	if err != nil {
		t.Fatal(err)
	}
	if got := b.ToFloat64(); got != 0.5 {
		t.Fatalf("cast result = %v, want 0.5", got)
	}
}

func TestCastIdempotence(t *testing.T) {

	spec := mustSpec(t, 12, 5)
	for _, v := range []float64{3.25, -7.5, 0, 15.9375} {
		x, _ := FromFloat64(v, spec)
		for _, m := range []round.QuantizationMode{round.TRN, round.RND, round.RND_CONV, round.JAM} {
			y, err := x.Cast(spec, m, round.WRAP)
			if err != nil {
				t.Fatal(err)
			}
			if y.ToBits() != x.ToBits() {
				t.Errorf("cast(same spec, %v) changed bits: %b -> %b", m, x.ToBits(), y.ToBits())
			}
		}
	}
}

func TestWideningPreservesValue(t *testing.T) {

	src := mustSpec(t, 8, 4)
	dst := mustSpec(t, 16, 8)
	for _, v := range []float64{1.5, -3.25, 7.9375, -8} {
		x, _ := FromFloat64(v, src)
		y, err := x.Cast(dst, round.TRN, round.WRAP)
		if err != nil {
			t.Fatal(err)
		}
		if y.ToFloat64() != v {
			t.Errorf("widen(%v) = %v", v, y.ToFloat64())
		}
	}
}

func TestToStringBase10(t *testing.T) {
	spec := mustSpec(t, 16, 8)
	x, _ := FromFloat64(-12.5, spec)
	s, err := x.ToString(10)
	if err != nil {
		t.Fatal(err)
	}
	if s != "-12.5" {
		t.Fatalf("ToString(10) = %q, want -12.5", s)
	}
}

func TestFromStringRoundTrip(t *testing.T) {

	spec := mustSpec(t, 25, 13)
	for _, s := range []string{"12.5", "-0.25", "4095.9375", "0"} {
		x, err := FromString(s, spec, 10)
		if err != nil {
			t.Fatalf("FromString(%q): %v", s, err)
		}
		got, err := x.ToString(10)
		if err != nil {
			t.Fatal(err)
		}
		if got != s {
			t.Errorf("FromString(%q) round-trips to %q", s, got)
		}
	}
}

func TestQuantizationSignSymmetry(t *testing.T) {
	// cast(-x) == -cast(x) must hold for the direction-symmetric modes.
	src := mustSpec(t, 10, 4)
	// One extra integer bit in the destination keeps the rounded extremes
	// representable, so overflow handling never enters the comparison.
	dst := mustSpec(t, 7, 5)
	modes := []round.QuantizationMode{round.RND_CONV, round.RND_INF, round.RND_ZERO, round.TRN_AWAY, round.TRN_ZERO}
	for pattern := uint64(0); pattern < 1<<10; pattern++ {
		x := FromBits(pattern, src)
		nx := x.Neg()
		for _, m := range modes {
			pos, _ := x.Cast(dst, m, round.SAT)
			neg, _ := nx.Cast(dst, m, round.SAT)
			if got, want := neg.ToFloat64(), -pos.ToFloat64(); got != want {
				t.Fatalf("mode %v: cast(-%v) = %v, want %v", m, x.ToFloat64(), got, want)
			}
		}
	}
}

func TestTruncationMonotoneInDiscardedBits(t *testing.T) {
	// Under TRN, casting away more bits never increases the value.
	src := mustSpec(t, 12, 4)
	for pattern := uint64(0); pattern < 1<<12; pattern += 7 {
		x := FromBits(pattern, src)
		prev := x.ToFloat64()
		for frac := 7; frac >= 0; frac-- {
			dst := Spec{Bits: 4 + frac, IntBits: 4}
			y, _ := x.Cast(dst, round.TRN, round.WRAP)
			if y.ToFloat64() > prev {
				t.Fatalf("TRN not monotone: %v -> %v at frac=%d", prev, y.ToFloat64(), frac)
			}
			prev = y.ToFloat64()
		}
	}
}

func TestStochWeightedUsesTopDiscardedBits(t *testing.T) {
	// A cast discarding 130 bits whose only set bit is the guard (the top
	// discarded position) has a discarded fraction of exactly 1/2, so the
	// weighted draw must round up about half the time. Reading the draw
	// value from the low bits instead would see zero and never round up.
	src := Spec{Bits: 200, IntBits: 50}  // frac_bits = 150
	dst := Spec{Bits: 70, IntBits: 50}   // frac_bits = 20, discards 130 bits
	x := FromWords([]uint64{0, 0, 2, 0}, src) // bit 129 = guard
	rng := rand.New(rand.NewSource(42))

	const trials = 400
	ups := 0
	for i := 0; i < trials; i++ {
		y, err := x.CastRNG(dst, round.STOCH_WEIGHTED, round.WRAP, rng)
		if err != nil {
			t.Fatal(err)
		}
		if !y.IsZero() {
			ups++
		}
	}
	if ups < trials/4 || ups > trials*3/4 {
		t.Fatalf("rounded up %d/%d times, want about half", ups, trials)
	}

	// The same cast with every discarded bit clear never rounds up.
	z := Zero(src)
	for i := 0; i < 50; i++ {
		y, err := z.CastRNG(dst, round.STOCH_WEIGHTED, round.WRAP, rng)
		if err != nil {
			t.Fatal(err)
		}
		if !y.IsZero() {
			t.Fatal("zero discarded magnitude rounded up")
		}
	}
}

func TestCodecRoundTrip(t *testing.T) {
	spec := mustSpec(t, 80, 16)
	x, err := FromString("32767.1875", spec, 10)
	if err != nil {
		t.Fatal(err)
	}
	p, err := x.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var y FixedPoint
	if err := y.UnmarshalBinary(p); err != nil {
		t.Fatal(err)
	}
	if !y.Equal(x) {
		t.Fatalf("codec round trip: %v vs %v", y.ToFloat64(), x.ToFloat64())
	}
}

func TestResolveSpecRedundantSpecifiers(t *testing.T) {
	bits, intBits, fracBits := 16, 8, 8
	if _, err := ResolveSpec(&bits, &intBits, &fracBits); err == nil {
		t.Error("expected spec-invalid error when all three specifiers given")
	}
	if _, err := ResolveSpec(&bits, nil, nil); err == nil {
		t.Error("expected spec-invalid error when only one specifier given")
	}
	s, err := ResolveSpec(nil, &intBits, &fracBits)
	if err != nil {
		t.Fatal(err)
	}
	if s.Bits != 16 || s.IntBits != 8 {
		t.Fatalf("ResolveSpec(nil,8,8) = %+v", s)
	}
}
