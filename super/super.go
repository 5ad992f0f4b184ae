// Package super owns the on-disk layout: the superblock, the two
// allocation bitmaps, and raw access to packed inode-table slots.
package super

import (
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-slowfs/bitmap"
	"github.com/mit-pdos/go-slowfs/common"
	"github.com/mit-pdos/go-slowfs/device"
	"github.com/mit-pdos/go-slowfs/driver"
	"github.com/mit-pdos/go-slowfs/util"
)

const (
	NInodeBitmapBlks uint64 = 1
	NDataBitmapBlks  uint64 = 1
	NInodeTableBlks  uint64 = 5

	InodesPerBlock uint64 = device.BlockSize / common.INODESZ
)

// FsSuper mirrors the on-disk superblock plus the decoded bitmaps. All
// block numbers are absolute device addresses.
type FsSuper struct {
	D *driver.Driver

	NBlocks          uint64
	BitmapInodeStart common.Bnum
	BitmapDataStart  common.Bnum
	InodeTableStart  common.Bnum
	DataStart        common.Bnum
	NInodes          uint64

	nData uint64
	imap  *bitmap.Bitmap
	dmap  *bitmap.Bitmap
}

func mkLayout(d *driver.Driver) *FsSuper {
	nblocks := d.NumBlocks()
	sb := &FsSuper{
		D:                d,
		NBlocks:          nblocks,
		BitmapInodeStart: 1,
		BitmapDataStart:  common.Bnum(1 + NInodeBitmapBlks),
		InodeTableStart:  common.Bnum(1 + NInodeBitmapBlks + NDataBitmapBlks),
		DataStart:        common.Bnum(1 + NInodeBitmapBlks + NDataBitmapBlks + NInodeTableBlks),
		NInodes:          NInodeTableBlks * InodesPerBlock,
	}
	sb.nData = nblocks - uint64(sb.DataStart)
	return sb
}

// Format writes a fresh superblock, zeroed bitmaps, and a zeroed inode
// table. Inode slot 0 is marked allocated up front so a zero inum
// always means "free". The root directory itself is created by the fs
// layer on top of this.
func Format(d *driver.Driver) (*FsSuper, error) {
	nblocks := d.NumBlocks()
	// superblock, two bitmaps, inode table, and at least one data block
	if nblocks < 1+NInodeBitmapBlks+NDataBitmapBlks+NInodeTableBlks+1 {
		return nil, common.ErrNoSpace
	}
	sb := mkLayout(d)
	// one bitmap block tracks the whole data region
	if sb.nData > device.BlockSize*8 {
		return nil, common.ErrInval
	}
	util.DPrintf(1, "Format: %d blocks, data at %d, %d inodes\n",
		nblocks, sb.DataStart, sb.NInodes)

	if err := sb.writeSuper(); err != nil {
		return nil, err
	}
	for bn := sb.InodeTableStart; bn < sb.DataStart; bn++ {
		if err := sb.D.Bwrite(bn, device.NewBlock()); err != nil {
			return nil, err
		}
	}

	sb.imap = bitmap.MkBitmap(sb.NInodes)
	sb.imap.Alloc(uint64(common.NULLINUM))
	if err := sb.writeImap(); err != nil {
		return nil, err
	}
	sb.dmap = bitmap.MkBitmap(sb.nData)
	if err := sb.writeDmap(); err != nil {
		return nil, err
	}
	return sb, nil
}

// ReadFsSuper loads the superblock and bitmaps of a formatted volume.
func ReadFsSuper(d *driver.Driver) (*FsSuper, error) {
	blk, err := d.Bread(0)
	if err != nil {
		return nil, err
	}
	dec := marshal.NewDec(blk)
	if dec.GetInt32() != common.Magic {
		return nil, common.ErrInval
	}
	if uint64(dec.GetInt32()) != device.BlockSize {
		return nil, common.ErrInval
	}
	sb := mkLayout(d)
	if uint64(dec.GetInt32()) != sb.NBlocks {
		return nil, common.ErrInval
	}
	if common.Bnum(dec.GetInt32()) != sb.BitmapInodeStart ||
		common.Bnum(dec.GetInt32()) != sb.BitmapDataStart ||
		common.Bnum(dec.GetInt32()) != sb.InodeTableStart ||
		common.Bnum(dec.GetInt32()) != sb.DataStart ||
		uint64(dec.GetInt32()) != sb.NInodes {
		return nil, common.ErrInval
	}

	iblk, err := d.Bread(sb.BitmapInodeStart)
	if err != nil {
		return nil, err
	}
	sb.imap = bitmap.FromBlock(iblk, sb.NInodes)
	dblk, err := d.Bread(sb.BitmapDataStart)
	if err != nil {
		return nil, err
	}
	sb.dmap = bitmap.FromBlock(dblk, sb.nData)
	return sb, nil
}

func (sb *FsSuper) writeSuper() error {
	enc := marshal.NewEnc(device.BlockSize)
	enc.PutInt32(common.Magic)
	enc.PutInt32(uint32(device.BlockSize))
	enc.PutInt32(uint32(sb.NBlocks))
	enc.PutInt32(uint32(sb.BitmapInodeStart))
	enc.PutInt32(uint32(sb.BitmapDataStart))
	enc.PutInt32(uint32(sb.InodeTableStart))
	enc.PutInt32(uint32(sb.DataStart))
	enc.PutInt32(uint32(sb.NInodes))
	return sb.D.Bwrite(0, enc.Finish())
}

func (sb *FsSuper) writeImap() error {
	return sb.D.Bwrite(sb.BitmapInodeStart, sb.imap.Block())
}

func (sb *FsSuper) writeDmap() error {
	return sb.D.Bwrite(sb.BitmapDataStart, sb.dmap.Block())
}

// AllocInum claims the lowest free inode slot and persists the bitmap.
func (sb *FsSuper) AllocInum() (common.Inum, error) {
	i, ok := sb.imap.NextFree()
	if !ok {
		return common.NULLINUM, common.ErrNoSpace
	}
	sb.imap.Alloc(i)
	if err := sb.writeImap(); err != nil {
		return common.NULLINUM, err
	}
	util.DPrintf(1, "AllocInum -> %d\n", i)
	return common.Inum(i), nil
}

// AllocBlock claims the lowest free data block, persists the bitmap,
// and zeroes the block before anything can reference it.
func (sb *FsSuper) AllocBlock() (common.Bnum, error) {
	i, ok := sb.dmap.NextFree()
	if !ok {
		return common.NULLBNUM, common.ErrNoSpace
	}
	sb.dmap.Alloc(i)
	if err := sb.writeDmap(); err != nil {
		return common.NULLBNUM, err
	}
	bn := sb.DataStart + common.Bnum(i)
	if err := sb.D.Bwrite(bn, device.NewBlock()); err != nil {
		return common.NULLBNUM, err
	}
	util.DPrintf(1, "AllocBlock -> %d\n", bn)
	return bn, nil
}

func (sb *FsSuper) InumAllocated(inum common.Inum) bool {
	return sb.imap.IsSet(uint64(inum))
}

func (sb *FsSuper) BnumAllocated(bn common.Bnum) bool {
	if bn < sb.DataStart {
		return false
	}
	return sb.dmap.IsSet(uint64(bn - sb.DataStart))
}

func (sb *FsSuper) NumFreeInodes() uint64 {
	return sb.NInodes - sb.imap.Count()
}

func (sb *FsSuper) NumFreeBlocks() uint64 {
	return sb.nData - sb.dmap.Count()
}

func (sb *FsSuper) inum2Blk(inum common.Inum) (common.Bnum, uint64) {
	blkno := sb.InodeTableStart + common.Bnum(uint64(inum)/InodesPerBlock)
	off := (uint64(inum) % InodesPerBlock) * common.INODESZ
	return blkno, off
}

// ReadInum returns a copy of the packed record in slot inum.
func (sb *FsSuper) ReadInum(inum common.Inum) ([]byte, error) {
	if uint64(inum) >= sb.NInodes {
		panic("ReadInum: inum out of range")
	}
	blkno, off := sb.inum2Blk(inum)
	blk, err := sb.D.Bread(blkno)
	if err != nil {
		return nil, err
	}
	rec := make([]byte, common.INODESZ)
	copy(rec, blk[off:off+common.INODESZ])
	return rec, nil
}

// WriteInum patches slot inum with a read-modify-write of its block.
func (sb *FsSuper) WriteInum(inum common.Inum, rec []byte) error {
	if uint64(inum) >= sb.NInodes {
		panic("WriteInum: inum out of range")
	}
	if uint64(len(rec)) != common.INODESZ {
		panic("WriteInum: bad record size")
	}
	blkno, off := sb.inum2Blk(inum)
	blk, err := sb.D.Bread(blkno)
	if err != nil {
		return err
	}
	copy(blk[off:off+common.INODESZ], rec)
	return sb.D.Bwrite(blkno, blk)
}

// Sync flushes acknowledged writes down to the host medium.
func (sb *FsSuper) Sync() error {
	return sb.D.Barrier()
}

func (sb *FsSuper) Close() error {
	return sb.D.Close()
}
