package device

import (
	"github.com/goose-lang/std"

	"github.com/mit-pdos/go-slowfs/common"
)

// MemDisk keeps all blocks in memory; it backs tests and the trivial
// rootfs that only exists to carry mount points.
type MemDisk struct {
	blocks []Block
}

var _ Disk = (*MemDisk)(nil)

func NewMemDisk(numBlocks uint64) *MemDisk {
	blocks := make([]Block, numBlocks)
	for i := range blocks {
		blocks[i] = make([]byte, BlockSize)
	}
	return &MemDisk{blocks: blocks}
}

func (d *MemDisk) Read(n uint64) (Block, error) {
	if n >= uint64(len(d.blocks)) {
		return nil, common.ErrIO
	}
	return std.BytesClone(d.blocks[n]), nil
}

func (d *MemDisk) Write(n uint64, v Block) error {
	if err := validWrite(d, n, v); err != nil {
		return err
	}
	copy(d.blocks[n], v)
	return nil
}

func (d *MemDisk) Size() uint64 {
	return uint64(len(d.blocks))
}

func (d *MemDisk) Barrier() error { return nil }

func (d *MemDisk) Close() error { return nil }
