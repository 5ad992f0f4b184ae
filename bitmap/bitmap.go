// Package bitmap implements the packed bit arrays that track allocated
// inode slots and data blocks. Allocation always hands out the
// lowest-numbered free index so layouts are deterministic.
package bitmap

import (
	"github.com/mit-pdos/go-slowfs/device"
)

type Bitmap struct {
	data  []byte
	nbits uint64
}

// MkBitmap returns an all-free bitmap tracking nbits indices, backed by
// a full block so it can be written to the device as-is.
func MkBitmap(nbits uint64) *Bitmap {
	if nbits > device.BlockSize*8 {
		panic("bitmap: does not fit in one block")
	}
	return &Bitmap{data: make([]byte, device.BlockSize), nbits: nbits}
}

// FromBlock decodes a bitmap previously written with Block().
func FromBlock(blk device.Block, nbits uint64) *Bitmap {
	bm := MkBitmap(nbits)
	copy(bm.data, blk)
	return bm
}

// Block returns the on-disk representation. The caller must not hold on
// to it across further Alloc/Free calls.
func (bm *Bitmap) Block() device.Block {
	return bm.data
}

// NextFree returns the lowest clear index, or false when the map is
// fully used.
func (bm *Bitmap) NextFree() (uint64, bool) {
	for i := uint64(0); i < bm.nbits; i++ {
		if bm.data[i/8]&(1<<(i%8)) == 0 {
			return i, true
		}
	}
	return 0, false
}

func (bm *Bitmap) IsSet(i uint64) bool {
	if i >= bm.nbits {
		return false
	}
	return bm.data[i/8]&(1<<(i%8)) != 0
}

func (bm *Bitmap) Alloc(i uint64) {
	if i >= bm.nbits {
		panic("bitmap: index out of range")
	}
	if bm.IsSet(i) {
		panic("bitmap: bit already allocated")
	}
	bm.data[i/8] |= 1 << (i % 8)
}

func (bm *Bitmap) Free(i uint64) {
	if i >= bm.nbits {
		panic("bitmap: index out of range")
	}
	bm.data[i/8] &= ^byte(1 << (i % 8))
}

// Count reports how many indices are allocated.
func (bm *Bitmap) Count() uint64 {
	var n uint64
	for i := uint64(0); i < bm.nbits; i++ {
		if bm.data[i/8]&(1<<(i%8)) != 0 {
			n++
		}
	}
	return n
}
