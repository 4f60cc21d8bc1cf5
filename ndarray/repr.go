package ndarray

import (
	"fmt"
	"strings"
)

// Compact textual forms for debugging and logging. Values render through
// the double-precision conversion; the spec is appended so two arrays with
// equal values but different formats remain distinguishable.

func formatReals(shape []int, vals []float64) string {
	var sb strings.Builder
	writeNested(&sb, shape, 0, func(i int) string {
		return fmt.Sprintf("%g", vals[i])
	}, 0, len(vals))
	return sb.String()
}

func formatComplexes(shape []int, vals []complex128) string {
	var sb strings.Builder
	writeNested(&sb, shape, 0, func(i int) string {
		return fmt.Sprintf("%g", vals[i])
	}, 0, len(vals))
	return sb.String()
}

// writeNested renders the flat C-order values as nested brackets.
func writeNested(sb *strings.Builder, shape []int, dim int, elem func(int) string, lo, hi int) {
	if dim == len(shape) {
		sb.WriteString(elem(lo))
		return
	}
	sb.WriteByte('[')
	n := shape[dim]
	if n > 0 {
		step := (hi - lo) / n
		for i := 0; i < n; i++ {
			if i > 0 {
				sb.WriteByte(' ')
			}
			writeNested(sb, shape, dim+1, elem, lo+i*step, lo+(i+1)*step)
		}
	}
	sb.WriteByte(']')
}

func (a *Fixed) String() string {
	return fmt.Sprintf("Fixed%s bits=%d int_bits=%d", formatReals(a.b.shape, a.ToFloat64s()), a.spec.Bits, a.spec.IntBits)
}

func (a *Float) String() string {
	return fmt.Sprintf("Float%s exp_bits=%d man_bits=%d bias=%d", formatReals(a.b.shape, a.ToFloat64s()), a.spec.ExpBits, a.spec.ManBits, a.spec.Bias)
}

func (a *CFixed) String() string {
	return fmt.Sprintf("CFixed%s bits=%d int_bits=%d", formatComplexes(a.b.shape, a.ToComplex128s()), a.spec.Bits, a.spec.IntBits)
}

func (a *CFloat) String() string {
	return fmt.Sprintf("CFloat%s exp_bits=%d man_bits=%d bias=%d", formatComplexes(a.b.shape, a.ToComplex128s()), a.spec.ExpBits, a.spec.ManBits, a.spec.Bias)
}
