package apfloat

import (
	"encoding/binary"

	"github.com/apytypes/apygo/apyerr"
)

// Binary envelope for FloatData scalars: magic,
// version, endianness marker, the spec triple, then the packed
// (sign, exp, man) fields. Fields are always little-endian.
const (
	codecMagic   = "APYL"
	codecVersion = 1
	codecLittle  = 0x01
)

// Marshal serializes d together with its spec.
func Marshal(d FloatData, spec Spec) []byte {
	out := make([]byte, 6+8*6)
	copy(out, codecMagic)
	out[4] = codecVersion
	out[5] = codecLittle
	binary.LittleEndian.PutUint64(out[6:], uint64(int64(spec.ExpBits)))
	binary.LittleEndian.PutUint64(out[14:], uint64(int64(spec.ManBits)))
	binary.LittleEndian.PutUint64(out[22:], spec.Bias)
	var sign uint64
	if d.Sign {
		sign = 1
	}
	binary.LittleEndian.PutUint64(out[30:], sign)
	binary.LittleEndian.PutUint64(out[38:], d.Exp)
	binary.LittleEndian.PutUint64(out[46:], d.Man)
	return out
}

// Unmarshal reconstructs the exact (FloatData, Spec) pair written by
// Marshal.
func Unmarshal(p []byte) (FloatData, Spec, error) {
	if len(p) != 6+8*6 || string(p[:4]) != codecMagic {
		return FloatData{}, Spec{}, apyerr.New(apyerr.ValueInvalid, "apfloat.Unmarshal", "not a float envelope")
	}
	if p[4] != codecVersion {
		return FloatData{}, Spec{}, apyerr.New(apyerr.ValueInvalid, "apfloat.Unmarshal", "unsupported version %d", p[4])
	}
	if p[5] != codecLittle {
		return FloatData{}, Spec{}, apyerr.New(apyerr.ValueInvalid, "apfloat.Unmarshal", "unsupported endianness marker %#x", p[5])
	}
	spec, err := NewSpec(
		int(int64(binary.LittleEndian.Uint64(p[6:]))),
		int(int64(binary.LittleEndian.Uint64(p[14:]))),
		binary.LittleEndian.Uint64(p[22:]),
	)
	if err != nil {
		return FloatData{}, Spec{}, err
	}
	d := FromParts(
		binary.LittleEndian.Uint64(p[30:]) != 0,
		binary.LittleEndian.Uint64(p[38:]),
		binary.LittleEndian.Uint64(p[46:]),
		spec,
	)
	return d, spec, nil
}
