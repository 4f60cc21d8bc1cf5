package fixed

import (
	"bytes"
	"encoding/binary"

	"github.com/apytypes/apygo/apyerr"
	"github.com/apytypes/apygo/internal/limb"
)

// Binary envelope for FixedPoint scalars: a short
// magic, a format version, an endianness marker, the spec, and the raw limb
// words. Limbs are always serialized little-endian regardless of host order;
// the marker exists so a future big-endian producer stays detectable.
const (
	codecMagic   = "APYX"
	codecVersion = 1
	codecLittle  = 0x01
)

// MarshalBinary implements encoding.BinaryMarshaler.
func (f FixedPoint) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(codecMagic)
	buf.WriteByte(codecVersion)
	buf.WriteByte(codecLittle)
	var hdr [20]byte
	binary.LittleEndian.PutUint64(hdr[0:], uint64(int64(f.Spec.Bits)))
	binary.LittleEndian.PutUint64(hdr[8:], uint64(int64(f.Spec.IntBits)))
	binary.LittleEndian.PutUint32(hdr[16:], uint32(len(f.data)))
	buf.Write(hdr[:])
	var w [8]byte
	for _, x := range f.data {
		binary.LittleEndian.PutUint64(w[:], uint64(x))
		buf.Write(w[:])
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler, reconstructing the
// exact bit pattern written by MarshalBinary.
func (f *FixedPoint) UnmarshalBinary(p []byte) error {
	if len(p) < len(codecMagic)+2+20 || string(p[:4]) != codecMagic {
		return apyerr.New(apyerr.ValueInvalid, "fixed.UnmarshalBinary", "not a fixed-point envelope")
	}
	if p[4] != codecVersion {
		return apyerr.New(apyerr.ValueInvalid, "fixed.UnmarshalBinary", "unsupported version %d", p[4])
	}
	if p[5] != codecLittle {
		return apyerr.New(apyerr.ValueInvalid, "fixed.UnmarshalBinary", "unsupported endianness marker %#x", p[5])
	}
	bits := int(int64(binary.LittleEndian.Uint64(p[6:])))
	intBits := int(int64(binary.LittleEndian.Uint64(p[14:])))
	n := int(binary.LittleEndian.Uint32(p[22:]))
	spec, err := NewSpec(bits, intBits)
	if err != nil {
		return err
	}
	if n != spec.NumLimbs() || len(p) != 26+8*n {
		return apyerr.New(apyerr.ValueInvalid, "fixed.UnmarshalBinary", "limb count %d inconsistent with spec %+v", n, spec)
	}
	data := make([]limb.Word, n)
	for i := range data {
		data[i] = limb.Word(binary.LittleEndian.Uint64(p[26+8*i:]))
	}
	limb.SignExtend(data, spec.Bits)
	f.Spec = spec
	f.data = data
	return nil
}
