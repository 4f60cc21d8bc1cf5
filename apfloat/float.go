package apfloat

import (
	"math"
	"strconv"
	"strings"

	"github.com/apytypes/apygo/apyerr"
	"github.com/apytypes/apygo/internal/round"
)

// FloatData is a (sign, exp, man) triple, each field masked
// to its Spec's width. The zero value is +0.
type FloatData struct {
	Sign bool
	Exp  uint64
	Man  uint64
}

// FromParts masks exp and man to spec's field widths and constructs a
// FloatData.
func FromParts(sign bool, exp, man uint64, spec Spec) FloatData {
	exp &= uint64(1)<<uint(spec.ExpBits) - 1
	if spec.ManBits < 64 {
		man &= uint64(1)<<uint(spec.ManBits) - 1
	}
	return FloatData{Sign: sign, Exp: exp, Man: man}
}

// IsZero reports whether d is +0 or -0.
func (d FloatData) IsZero(spec Spec) bool { return d.Exp == 0 && d.Man == 0 }

// IsSubnormal reports whether d has a zero exponent field and nonzero
// mantissa.
func (d FloatData) IsSubnormal(spec Spec) bool { return d.Exp == 0 && d.Man != 0 }

// IsNormal reports whether d is a finite, non-subnormal, non-zero value.
func (d FloatData) IsNormal(spec Spec) bool { return d.Exp > 0 && d.Exp < spec.MaxExp() }

// IsInf reports whether d is +inf or -inf.
func (d FloatData) IsInf(spec Spec) bool { return d.Exp == spec.MaxExp() && d.Man == 0 }

// IsNaN reports whether d is a NaN.
func (d FloatData) IsNaN(spec Spec) bool { return d.Exp == spec.MaxExp() && d.Man != 0 }

// ToFloat64 converts d to the nearest double-precision float.
func (d FloatData) ToFloat64(spec Spec) float64 {
	switch {
	case d.IsNaN(spec):
		return math.NaN()
	case d.IsInf(spec):
		if d.Sign {
			return math.Inf(-1)
		}
		return math.Inf(1)
	case d.IsZero(spec):
		if d.Sign {
			return math.Copysign(0, -1)
		}
		return 0
	}
	var val float64
	if d.IsSubnormal(spec) {
		val = float64(d.Man) * math.Exp2(1-float64(spec.Bias)-float64(spec.ManBits))
	} else {
		val = (1 + float64(d.Man)/math.Exp2(float64(spec.ManBits))) * math.Exp2(float64(d.Exp)-float64(spec.Bias))
	}
	if d.Sign {
		val = -val
	}
	return val
}

// FromFloat64 constructs the FloatData of spec closest to v, rounding with
// qntz through the cast engine.
func FromFloat64(v float64, spec Spec, qntz round.QuantizationMode) FloatData {
	b := math.Float64bits(v)
	src := FloatData{
		Sign: b>>63 != 0,
		Exp:  b >> 52 & 0x7FF,
		Man:  b & (uint64(1)<<52 - 1),
	}
	return Cast(src, DoubleSpec, spec, qntz)
}

// FromString parses a decimal literal into the nearest FloatData of spec.
func FromString(s string, spec Spec, qntz round.QuantizationMode) (FloatData, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return FloatData{}, apyerr.New(apyerr.ValueInvalid, "apfloat.FromString", "malformed literal %q", s)
	}
	return FromFloat64(v, spec, qntz), nil
}

// nanValue is the canonical NaN for spec: all-ones exponent, mantissa 1.
func nanValue(spec Spec) FloatData {
	return FloatData{Exp: spec.MaxExp(), Man: 1}
}

// infValue is +/-infinity for spec.
func infValue(sign bool, spec Spec) FloatData {
	return FloatData{Sign: sign, Exp: spec.MaxExp()}
}
