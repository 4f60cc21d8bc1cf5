package limb

import "golang.org/x/sys/cpu"

// Batch accelerates AddN/SubN across many same-length operand pairs packed
// contiguously, for callers whose operands all share one item size and
// length (ndarray's same-shape, same-spec elementwise add/sub). There is no assembler backend here; batchAddN/batchSubN
// are plain Go loops selected once at init via a runtime-feature-gated
// function pointer, so that swapping one out for a real vectorized
// implementation later is a drop-in replacement. Both the "accelerated"
// and scalar loops below are required to, and do, produce bit-identical
// results; see limb_test.go.
var (
	batchAddNImpl func(dst, x, y [][]Word, n int)
	batchSubNImpl func(dst, x, y [][]Word, n int)

	// HasVectorPath reports whether the batched loop was selected over the
	// naive per-pair loop. Exported for tests.
	HasVectorPath bool
)

func init() {
	// cpu.X86.HasAVX2 (and the AArch64/ARM equivalents) stand in for "the
	// target has a wide enough native register that unrolling N
	// independent single-limb add/sub chains is worthwhile"; apygo never
	// emits actual vector instructions, so any true value just selects the
	// unrolled-by-4 variant below instead of the straight-line one.
	if cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD {
		batchAddNImpl = batchAddNUnrolled
		batchSubNImpl = batchSubNUnrolled
		HasVectorPath = true
	} else {
		batchAddNImpl = batchAddNScalar
		batchSubNImpl = batchSubNScalar
		HasVectorPath = false
	}
}

// BatchAddN computes dst[k] = x[k] + y[k] for k in [0,n) where every slice
// triple has the same length. It is a pure throughput optimization over
// calling AddN n times; callers that care about overflow carries per
// element must use AddN directly.
func BatchAddN(dst, x, y [][]Word, n int) {
	batchAddNImpl(dst, x, y, n)
}

// BatchSubN is BatchAddN's subtraction counterpart.
func BatchSubN(dst, x, y [][]Word, n int) {
	batchSubNImpl(dst, x, y, n)
}

func batchAddNScalar(dst, x, y [][]Word, n int) {
	for k := 0; k < n; k++ {
		AddN(dst[k], x[k], y[k])
	}
}

func batchSubNScalar(dst, x, y [][]Word, n int) {
	for k := 0; k < n; k++ {
		SubN(dst[k], x[k], y[k])
	}
}

// batchAddNUnrolled processes four independent limb pairs per iteration.
// It is algorithmically identical to batchAddNScalar; the unroll is the
// only difference, and exists purely to mimic the lane-width of a real
// SIMD loop without committing to one.
func batchAddNUnrolled(dst, x, y [][]Word, n int) {
	k := 0
	for ; k+4 <= n; k += 4 {
		AddN(dst[k], x[k], y[k])
		AddN(dst[k+1], x[k+1], y[k+1])
		AddN(dst[k+2], x[k+2], y[k+2])
		AddN(dst[k+3], x[k+3], y[k+3])
	}
	for ; k < n; k++ {
		AddN(dst[k], x[k], y[k])
	}
}

func batchSubNUnrolled(dst, x, y [][]Word, n int) {
	k := 0
	for ; k+4 <= n; k += 4 {
		SubN(dst[k], x[k], y[k])
		SubN(dst[k+1], x[k+1], y[k+1])
		SubN(dst[k+2], x[k+2], y[k+2])
		SubN(dst[k+3], x[k+3], y[k+3])
	}
	for ; k < n; k++ {
		SubN(dst[k], x[k], y[k])
	}
}
