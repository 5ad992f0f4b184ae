// Package device simulates a block device: a random-access array of
// fixed-size blocks. The file-backed implementation keeps the blocks in
// a host file of exact length NumBlocks*BlockSize.
package device

import (
	"github.com/mit-pdos/go-slowfs/common"
)

// Block is a BlockSize-byte buffer.
type Block = []byte

const BlockSize uint64 = 4096

// Disk provides access to a logical block-based disk. There is no
// caching and no partial-block I/O; writes are acknowledged only after
// the host write returns.
type Disk interface {
	// Read reads block n. Fails with common.ErrIO when n is out of
	// bounds or the host read fails.
	Read(n uint64) (Block, error)

	// Write updates block n. Requires len(v) == BlockSize; fails with
	// common.ErrIO on bounds or host errors.
	Write(n uint64, v Block) error

	// Size reports how big the disk is, in blocks.
	Size() uint64

	// Barrier ensures all acknowledged writes are durably on the host.
	Barrier() error

	// Close releases the backing resources and makes the disk unusable.
	Close() error
}

func NewBlock() Block {
	return make([]byte, BlockSize)
}

func validWrite(d Disk, n uint64, v Block) error {
	if uint64(len(v)) != BlockSize {
		return common.ErrIO
	}
	if n >= d.Size() {
		return common.ErrIO
	}
	return nil
}
