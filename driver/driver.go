// Package driver mediates all block I/O. Every layer above it reads
// and writes the device exclusively through Bread/Bwrite, so a
// scheduler or a write-back cache can later slot in here without
// touching the filesystem.
package driver

import (
	"github.com/mit-pdos/go-slowfs/common"
	"github.com/mit-pdos/go-slowfs/device"
	"github.com/mit-pdos/go-slowfs/util"
)

type Driver struct {
	d device.Disk
}

func MkDriver(d device.Disk) *Driver {
	return &Driver{d: d}
}

func (drv *Driver) Bread(n common.Bnum) (device.Block, error) {
	util.DPrintf(10, "Bread %d\n", n)
	return drv.d.Read(uint64(n))
}

func (drv *Driver) Bwrite(n common.Bnum, blk device.Block) error {
	util.DPrintf(10, "Bwrite %d\n", n)
	return drv.d.Write(uint64(n), blk)
}

func (drv *Driver) NumBlocks() uint64 {
	return drv.d.Size()
}

func (drv *Driver) Barrier() error {
	return drv.d.Barrier()
}

func (drv *Driver) Close() error {
	return drv.d.Close()
}
