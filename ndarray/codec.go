package ndarray

import (
	"bytes"
	"encoding/binary"

	"github.com/apytypes/apygo/apfloat"
	"github.com/apytypes/apygo/apyerr"
	"github.com/apytypes/apygo/cfixed"
	"github.com/apytypes/apygo/cfloat"
	"github.com/apytypes/apygo/fixed"
)

// Binary envelope for arrays: magic, version, endianness marker, a dtype tag, the shape, the spec, then the raw element
// payload. Everything is little-endian; the marker keeps a future
// big-endian producer detectable.
const (
	arrMagic   = "APYA"
	arrVersion = 1
	arrLittle  = 0x01
)

const (
	dtypeFixed = iota
	dtypeFloat
	dtypeCFixed
	dtypeCFloat
)

type arrEncoder struct{ buf bytes.Buffer }

func newArrEncoder(dtype byte, shape []int) *arrEncoder {
	e := &arrEncoder{}
	e.buf.WriteString(arrMagic)
	e.buf.WriteByte(arrVersion)
	e.buf.WriteByte(arrLittle)
	e.buf.WriteByte(dtype)
	e.u64(uint64(len(shape)))
	for _, d := range shape {
		e.u64(uint64(d))
	}
	return e
}

func (e *arrEncoder) u64(v uint64) {
	var w [8]byte
	binary.LittleEndian.PutUint64(w[:], v)
	e.buf.Write(w[:])
}

type arrDecoder struct {
	p   []byte
	off int
	err error
}

func newArrDecoder(op string, p []byte, dtype byte) (*arrDecoder, []int, error) {
	if len(p) < 7 || string(p[:4]) != arrMagic {
		return nil, nil, apyerr.New(apyerr.ValueInvalid, op, "not an array envelope")
	}
	if p[4] != arrVersion || p[5] != arrLittle {
		return nil, nil, apyerr.New(apyerr.ValueInvalid, op, "unsupported version/endianness %d/%#x", p[4], p[5])
	}
	if p[6] != dtype {
		return nil, nil, apyerr.New(apyerr.TypeInvalid, op, "dtype tag %d does not match target", p[6])
	}
	d := &arrDecoder{p: p, off: 7}
	ndim := int(d.u64())
	if d.err != nil || ndim < 0 || ndim > 64 {
		return nil, nil, apyerr.New(apyerr.ValueInvalid, op, "corrupt shape header")
	}
	shape := make([]int, ndim)
	for i := range shape {
		shape[i] = int(d.u64())
	}
	if d.err != nil {
		return nil, nil, apyerr.New(apyerr.ValueInvalid, op, "truncated shape")
	}
	return d, shape, nil
}

func (d *arrDecoder) u64() uint64 {
	if d.err != nil || d.off+8 > len(d.p) {
		d.err = apyerr.New(apyerr.ValueInvalid, "ndarray.Unmarshal", "truncated payload")
		return 0
	}
	v := binary.LittleEndian.Uint64(d.p[d.off:])
	d.off += 8
	return v
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (a *Fixed) MarshalBinary() ([]byte, error) {
	e := newArrEncoder(dtypeFixed, a.b.shape)
	e.u64(uint64(int64(a.spec.Bits)))
	e.u64(uint64(int64(a.spec.IntBits)))
	for i := 0; i < a.b.size(); i++ {
		for _, w := range a.b.at(i).Limbs() {
			e.u64(w)
		}
	}
	return e.buf.Bytes(), nil
}

// UnmarshalFixed reconstructs the exact array written by Fixed.MarshalBinary.
func UnmarshalFixed(p []byte) (*Fixed, error) {
	const op = "ndarray.UnmarshalFixed"
	d, shape, err := newArrDecoder(op, p, dtypeFixed)
	if err != nil {
		return nil, err
	}
	spec, err := fixed.NewSpec(int(int64(d.u64())), int(int64(d.u64())))
	if err != nil {
		return nil, err
	}
	a := NewFixed(shape, spec)
	nl := spec.NumLimbs()
	words := make([]uint64, nl)
	for i := 0; i < a.b.size(); i++ {
		for j := range words {
			words[j] = d.u64()
		}
		a.b.set(i, fixed.FromWords(words, spec))
	}
	if d.err != nil {
		return nil, d.err
	}
	return a, nil
}

func encodeFloatData(e *arrEncoder, v apfloat.FloatData) {
	var sign uint64
	if v.Sign {
		sign = 1
	}
	e.u64(sign)
	e.u64(v.Exp)
	e.u64(v.Man)
}

func (d *arrDecoder) floatData(spec apfloat.Spec) apfloat.FloatData {
	sign := d.u64() != 0
	exp := d.u64()
	man := d.u64()
	return apfloat.FromParts(sign, exp, man, spec)
}

func encodeFloatSpec(e *arrEncoder, spec apfloat.Spec) {
	e.u64(uint64(int64(spec.ExpBits)))
	e.u64(uint64(int64(spec.ManBits)))
	e.u64(spec.Bias)
}

func (d *arrDecoder) floatSpec() (apfloat.Spec, error) {
	return apfloat.NewSpec(int(int64(d.u64())), int(int64(d.u64())), d.u64())
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (a *Float) MarshalBinary() ([]byte, error) {
	e := newArrEncoder(dtypeFloat, a.b.shape)
	encodeFloatSpec(e, a.spec)
	for i := 0; i < a.b.size(); i++ {
		encodeFloatData(e, a.b.at(i))
	}
	return e.buf.Bytes(), nil
}

// UnmarshalFloat reconstructs the exact array written by Float.MarshalBinary.
func UnmarshalFloat(p []byte) (*Float, error) {
	const op = "ndarray.UnmarshalFloat"
	d, shape, err := newArrDecoder(op, p, dtypeFloat)
	if err != nil {
		return nil, err
	}
	spec, err := d.floatSpec()
	if err != nil {
		return nil, err
	}
	a := NewFloat(shape, spec)
	for i := 0; i < a.b.size(); i++ {
		a.b.set(i, d.floatData(spec))
	}
	if d.err != nil {
		return nil, d.err
	}
	return a, nil
}

// MarshalBinary implements encoding.BinaryMarshaler. Elements are laid out
// as [real limbs | imag limbs].
func (a *CFixed) MarshalBinary() ([]byte, error) {
	e := newArrEncoder(dtypeCFixed, a.b.shape)
	e.u64(uint64(int64(a.spec.Bits)))
	e.u64(uint64(int64(a.spec.IntBits)))
	for i := 0; i < a.b.size(); i++ {
		v := a.b.at(i)
		for _, w := range v.Re.Limbs() {
			e.u64(w)
		}
		for _, w := range v.Im.Limbs() {
			e.u64(w)
		}
	}
	return e.buf.Bytes(), nil
}

// UnmarshalCFixed reconstructs the exact array written by CFixed.MarshalBinary.
func UnmarshalCFixed(p []byte) (*CFixed, error) {
	const op = "ndarray.UnmarshalCFixed"
	d, shape, err := newArrDecoder(op, p, dtypeCFixed)
	if err != nil {
		return nil, err
	}
	spec, err := fixed.NewSpec(int(int64(d.u64())), int(int64(d.u64())))
	if err != nil {
		return nil, err
	}
	a := NewCFixed(shape, spec)
	nl := spec.NumLimbs()
	words := make([]uint64, nl)
	for i := 0; i < a.b.size(); i++ {
		for j := range words {
			words[j] = d.u64()
		}
		re := fixed.FromWords(words, spec)
		for j := range words {
			words[j] = d.u64()
		}
		im := fixed.FromWords(words, spec)
		v, err := cfixed.New(re, im)
		if err != nil {
			return nil, err
		}
		a.b.set(i, v)
	}
	if d.err != nil {
		return nil, d.err
	}
	return a, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (a *CFloat) MarshalBinary() ([]byte, error) {
	e := newArrEncoder(dtypeCFloat, a.b.shape)
	encodeFloatSpec(e, a.spec)
	for i := 0; i < a.b.size(); i++ {
		v := a.b.at(i)
		encodeFloatData(e, v.Re)
		encodeFloatData(e, v.Im)
	}
	return e.buf.Bytes(), nil
}

// UnmarshalCFloat reconstructs the exact array written by CFloat.MarshalBinary.
func UnmarshalCFloat(p []byte) (*CFloat, error) {
	const op = "ndarray.UnmarshalCFloat"
	d, shape, err := newArrDecoder(op, p, dtypeCFloat)
	if err != nil {
		return nil, err
	}
	spec, err := d.floatSpec()
	if err != nil {
		return nil, err
	}
	a := NewCFloat(shape, spec)
	for i := 0; i < a.b.size(); i++ {
		a.b.set(i, cfloat.ComplexFloat{Re: d.floatData(spec), Im: d.floatData(spec)})
	}
	if d.err != nil {
		return nil, d.err
	}
	return a, nil
}
