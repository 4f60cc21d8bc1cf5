package limb

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func fromBig(b *big.Int, n int) []Word {
	out := make([]Word, n)
	bs := new(big.Int).Set(b)
	neg := bs.Sign() < 0
	if neg {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(n*WordBits))
		bs.Add(bs, mod)
	}
	words := bs.Bits()
	for i := 0; i < n; i++ {
		if i < len(words) {
			out[i] = Word(words[i])
		}
	}
	return out
}

func toBig(x []Word, signed bool) *big.Int {
	out := new(big.Int)
	for i := len(x) - 1; i >= 0; i-- {
		out.Lsh(out, WordBits)
		out.Or(out, new(big.Int).SetUint64(uint64(x[i])))
	}
	if signed && IsNegative(x) {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(x)*WordBits))
		out.Sub(out, mod)
	}
	return out
}

func TestAddSubRoundTrip(t *testing.T) {
	cases := []struct{ a, b int64 }{
		{1, 2}, {-1, 1}, {-5, -7}, {0, 0}, {1<<40 + 3, -(1 << 50)},
	}
	for _, c := range cases {
		a := fromBig(big.NewInt(c.a), 2)
		b := fromBig(big.NewInt(c.b), 2)
		sum := make([]Word, 2)
		AddN(sum, a, b)
		want := new(big.Int).Add(big.NewInt(c.a), big.NewInt(c.b))
		mask := new(big.Int).Lsh(big.NewInt(1), 128)
		want.Mod(want, mask)
		got := toBig(sum, false)
		if got.Cmp(want) != 0 {
			t.Errorf("AddN(%d,%d) = %v, want %v", c.a, c.b, got, want)
		}

		diff := make([]Word, 2)
		SubN(diff, a, b)
		back := make([]Word, 2)
		AddN(back, diff, b)
		if !cmp.Equal(back, a) {
			t.Errorf("SubN/AddN round trip failed for %v", c)
		}
	}
}

func TestMulN(t *testing.T) {
	cases := []struct{ a, b uint64 }{
		{0, 0}, {1, 1}, {^uint64(0), 1}, {^uint64(0), ^uint64(0)}, {1 << 32, 1 << 32},
	}
	for _, c := range cases {
		x := []Word{c.a}
		y := []Word{c.b}
		dst := make([]Word, 2)
		MulN(dst, x, y)
		want := new(big.Int).Mul(new(big.Int).SetUint64(c.a), new(big.Int).SetUint64(c.b))
		got := toBig(dst, false)
		if got.Cmp(want) != 0 {
			t.Errorf("MulN(%d,%d) = %v, want %v", c.a, c.b, got, want)
		}
	}
}

func TestDivQR(t *testing.T) {
	cases := []struct{ x, y int64 }{
		{100, 7}, {1, 1}, {0, 5}, {1 << 62, 3}, {123456789, 97},
	}
	for _, c := range cases {
		x := fromBig(big.NewInt(c.x), 2)
		y := fromBig(big.NewInt(c.y), 2)
		q := make([]Word, 2)
		r := make([]Word, 2)
		DivQR(q, r, x, y)
		wantQ := new(big.Int).Div(big.NewInt(c.x), big.NewInt(c.y))
		wantR := new(big.Int).Mod(big.NewInt(c.x), big.NewInt(c.y))
		if got := toBig(q, false); got.Cmp(wantQ) != 0 {
			t.Errorf("DivQR(%d,%d) quotient = %v, want %v", c.x, c.y, got, wantQ)
		}
		if got := toBig(r, false); got.Cmp(wantR) != 0 {
			t.Errorf("DivQR(%d,%d) remainder = %v, want %v", c.x, c.y, got, wantR)
		}
	}
}

func TestDivQRMultiLimb(t *testing.T) {
	x := new(big.Int)
	x.SetString("123456789012345678901234567890123456789", 10)
	y := new(big.Int)
	y.SetString("987654321098765432109", 10)
	xs := fromBig(x, 4)
	ys := fromBig(y, 4)
	q := make([]Word, 4)
	r := make([]Word, 4)
	DivQR(q, r, xs, ys)
	wantQ := new(big.Int).Div(x, y)
	wantR := new(big.Int).Mod(x, y)
	if got := toBig(q, false); got.Cmp(wantQ) != 0 {
		t.Errorf("quotient = %v, want %v", got, wantQ)
	}
	if got := toBig(r, false); got.Cmp(wantR) != 0 {
		t.Errorf("remainder = %v, want %v", got, wantR)
	}
}

func TestShifts(t *testing.T) {
	x := []Word{0b1011, 0}
	dst := make([]Word, 2)
	Lsl(dst, x, 3)
	if dst[0] != 0b1011000 || dst[1] != 0 {
		t.Errorf("Lsl = %v", dst)
	}
	Lsr(dst, dst, 3)
	if dst[0] != 0b1011 {
		t.Errorf("Lsr round trip = %v", dst)
	}

	neg := []Word{0, ^Word(0)} // very negative value, top limb all 1s
	out := make([]Word, 2)
	Asr(out, neg, 64)
	if out[0] != ^Word(0) || out[1] != ^Word(0) {
		t.Errorf("Asr sign extension failed: %v", out)
	}
}

func TestBitOps(t *testing.T) {
	x := []Word{0, 0}
	SetBit(x, 70, true)
	if !TestBit(x, 70) {
		t.Fatal("SetBit/TestBit failed")
	}
	if BitWidth(x) != 71 {
		t.Errorf("BitWidth = %d, want 71", BitWidth(x))
	}
	if TrailingZeros(x) != 70 {
		t.Errorf("TrailingZeros = %d, want 70", TrailingZeros(x))
	}
	if !GtePow2(x, 70) || GtePow2(x, 71) {
		t.Errorf("GtePow2 mismatch")
	}
}

func TestOrReduceLowNBits(t *testing.T) {
	x := []Word{0b100, 0}
	if OrReduceLowNBits(x, 2) {
		t.Error("expected no set bits in low 2 bits")
	}
	if !OrReduceLowNBits(x, 3) {
		t.Error("expected bit 2 set within low 3 bits")
	}
}

func TestSignExtendAndMask(t *testing.T) {
	x := []Word{0b0111, 0}
	SignExtend(x, 3)
	if !IsNegative(x) {
		t.Errorf("expected sign-extended negative, got %v", x)
	}
	MaskTo(x, 3)
	if x[0] != 0b111 || x[1] != 0 {
		t.Errorf("MaskTo = %v", x)
	}
}

func TestBatchMatchesScalar(t *testing.T) {
	n := 9
	xs := make([][]Word, n)
	ys := make([][]Word, n)
	dstA := make([][]Word, n)
	dstB := make([][]Word, n)
	for i := 0; i < n; i++ {
		xs[i] = []Word{Word(i * 7), Word(i)}
		ys[i] = []Word{Word(i * 3), Word(i * 2)}
		dstA[i] = make([]Word, 2)
		dstB[i] = make([]Word, 2)
	}
	batchAddNScalar(dstA, xs, ys, n)
	batchAddNUnrolled(dstB, xs, ys, n)
	for i := 0; i < n; i++ {
		if !cmp.Equal(dstA[i], dstB[i]) {
			t.Errorf("batch add mismatch at %d: %v vs %v", i, dstA[i], dstB[i])
		}
	}
}
