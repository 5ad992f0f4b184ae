// Package marshal provides little-endian encoders and decoders for the
// packed fixed-width records of the on-disk format (inode records and
// directory entries, whose fields are not a uniform word grid).
package marshal

import (
	"github.com/tchajed/goose/machine"
)

type Enc struct {
	b   []byte
	off uint64
}

// NewEnc encodes into b, which the caller sizes to the record width.
func NewEnc(b []byte) *Enc {
	return &Enc{b: b, off: 0}
}

func (enc *Enc) PutByte(x byte) {
	enc.b[enc.off] = x
	enc.off = enc.off + 1
}

func (enc *Enc) PutInt16(x uint16) {
	off := enc.off
	enc.b[off] = byte(x)
	enc.b[off+1] = byte(x >> 8)
	enc.off = enc.off + 2
}

func (enc *Enc) PutInt32(x uint32) {
	off := enc.off
	machine.UInt32Put(enc.b[off:off+4], x)
	enc.off = enc.off + 4
}

func (enc *Enc) PutBytes(b []byte) {
	off := enc.off
	copy(enc.b[off:off+uint64(len(b))], b)
	enc.off = enc.off + uint64(len(b))
}

// Skip leaves n padding bytes untouched (the buffer starts zeroed).
func (enc *Enc) Skip(n uint64) {
	enc.off = enc.off + n
}

func (enc *Enc) Finish() []byte {
	return enc.b
}

type Dec struct {
	b   []byte
	off uint64
}

func NewDec(b []byte) *Dec {
	return &Dec{b: b, off: 0}
}

func (dec *Dec) GetByte() byte {
	x := dec.b[dec.off]
	dec.off = dec.off + 1
	return x
}

func (dec *Dec) GetInt16() uint16 {
	off := dec.off
	x := uint16(dec.b[off]) | uint16(dec.b[off+1])<<8
	dec.off = dec.off + 2
	return x
}

func (dec *Dec) GetInt32() uint32 {
	off := dec.off
	x := machine.UInt32Get(dec.b[off : off+4])
	dec.off = dec.off + 4
	return x
}

func (dec *Dec) GetBytes(n uint64) []byte {
	off := dec.off
	x := dec.b[off : off+n]
	dec.off = dec.off + n
	return x
}

func (dec *Dec) Skip(n uint64) {
	dec.off = dec.off + n
}
