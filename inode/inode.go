// Package inode implements the in-memory inode object and its
// operations: byte-ranged reads and writes for regular files, and the
// directory-entry operations used by path resolution.
//
// Block boundaries are a private concern of this package; callers only
// see whole-byte ranges. Every metadata change is written through to
// the medium before the call returns.
package inode

import (
	"fmt"

	"github.com/goose-lang/std"

	"github.com/mit-pdos/go-slowfs/common"
	"github.com/mit-pdos/go-slowfs/device"
	"github.com/mit-pdos/go-slowfs/marshal"
	"github.com/mit-pdos/go-slowfs/super"
	"github.com/mit-pdos/go-slowfs/util"
)

type Inode struct {
	Super *super.FsSuper
	Inum  common.Inum

	// the on-disk record:
	Kind   common.Ftype
	Nlink  uint32
	Size   uint64
	Direct []common.Bnum // len common.NDIRECT; NULLBNUM = no block
}

func MkInode(sb *super.FsSuper, inum common.Inum, kind common.Ftype) *Inode {
	util.DPrintf(1, "MkInode: inode # %d (%v)\n", inum, kind)
	return &Inode{
		Super:  sb,
		Inum:   inum,
		Kind:   kind,
		Nlink:  1,
		Size:   0,
		Direct: make([]common.Bnum, common.NDIRECT),
	}
}

func (ip *Inode) String() string {
	return fmt.Sprintf("# %d k %v n %d sz %d", ip.Inum, ip.Kind, ip.Nlink, ip.Size)
}

// MaxFileSize is the largest file the direct array can address.
func MaxFileSize() uint64 {
	return common.NDIRECT * device.BlockSize
}

// Encode packs the record: kind u8, 3 pad, size u32, link u16, 2 pad,
// 60 direct u32.
func (ip *Inode) Encode() []byte {
	enc := marshal.NewEnc(make([]byte, common.INODESZ))
	enc.PutByte(byte(ip.Kind))
	enc.Skip(3)
	enc.PutInt32(uint32(ip.Size))
	enc.PutInt16(uint16(ip.Nlink))
	enc.Skip(2)
	for _, bn := range ip.Direct {
		enc.PutInt32(uint32(bn))
	}
	return enc.Finish()
}

func Decode(sb *super.FsSuper, inum common.Inum, rec []byte) *Inode {
	dec := marshal.NewDec(rec)
	ip := &Inode{
		Super:  sb,
		Inum:   inum,
		Direct: make([]common.Bnum, common.NDIRECT),
	}
	ip.Kind = common.Ftype(dec.GetByte())
	dec.Skip(3)
	ip.Size = uint64(dec.GetInt32())
	ip.Nlink = uint32(dec.GetInt16())
	dec.Skip(2)
	for i := range ip.Direct {
		ip.Direct[i] = common.Bnum(dec.GetInt32())
	}
	return ip
}

// WriteInode persists the record to its inode-table slot.
func (ip *Inode) WriteInode() error {
	util.DPrintf(1, "WriteInode %v\n", ip)
	return ip.Super.WriteInum(ip.Inum, ip.Encode())
}

// Read returns up to count bytes starting at offset, stopping at the
// end of the file. Bytes covered by an unallocated block read as zero.
func (ip *Inode) Read(offset uint64, count uint64) ([]byte, error) {
	if offset >= ip.Size {
		return nil, nil
	}
	count = util.Min(count, ip.Size-offset)
	util.DPrintf(5, "Read %v: off %d cnt %d\n", ip, offset, count)

	data := make([]byte, 0, count)
	var n uint64
	off := offset
	for boff := off / device.BlockSize; n < count; boff++ {
		byteoff := off % device.BlockSize
		nbytes := util.Min(device.BlockSize-byteoff, count-n)
		blkno := ip.Direct[boff]
		if blkno == common.NULLBNUM {
			// a hole; reads as zeros
			data = append(data, make([]byte, nbytes)...)
		} else {
			blk, err := ip.Super.D.Bread(blkno)
			if err != nil {
				return data, err
			}
			data = append(data, blk[byteoff:byteoff+nbytes]...)
		}
		n += nbytes
		off += nbytes
	}
	return data, nil
}

// Write stores data starting at offset, allocating blocks on first
// touch. Gaps between the old size and offset stay unallocated and
// read back as zeros. The returned count reports partial progress,
// which is already persisted (size included) when an error stopped the
// write: ErrFileTooBig past the direct array, ErrNoSpace when the data
// bitmap is exhausted.
func (ip *Inode) Write(offset uint64, data []byte) (uint64, error) {
	var cnt uint64
	var alloc bool
	var werr error

	n := uint64(len(data))
	if !std.SumNoOverflow(offset, n) {
		return 0, common.ErrFileTooBig
	}
	util.DPrintf(5, "Write %v: off %d cnt %d\n", ip, offset, n)
	off := offset
	for n > 0 {
		boff := off / device.BlockSize
		if boff >= common.NDIRECT {
			werr = common.ErrFileTooBig
			break
		}
		blkno := ip.Direct[boff]
		if blkno == common.NULLBNUM {
			b, err := ip.Super.AllocBlock()
			if err != nil {
				werr = err
				break
			}
			ip.Direct[boff] = b
			blkno = b
			alloc = true
		}
		byteoff := off % device.BlockSize
		nbytes := util.Min(device.BlockSize-byteoff, n)
		if byteoff == 0 && nbytes == device.BlockSize { // block overwrite?
			if err := ip.Super.D.Bwrite(blkno, data[cnt:cnt+nbytes]); err != nil {
				werr = err
				break
			}
		} else {
			blk, err := ip.Super.D.Bread(blkno)
			if err != nil {
				werr = err
				break
			}
			copy(blk[byteoff:byteoff+nbytes], data[cnt:cnt+nbytes])
			if err := ip.Super.D.Bwrite(blkno, blk); err != nil {
				werr = err
				break
			}
		}
		n -= nbytes
		off += nbytes
		cnt += nbytes
	}
	if alloc || cnt > 0 {
		if offset+cnt > ip.Size {
			ip.Size = offset + cnt
		}
		if err := ip.WriteInode(); err != nil && werr == nil {
			werr = err
		}
	}
	util.DPrintf(1, "Write %v: off %d -> %d bytes, %v\n", ip, offset, cnt, werr)
	return cnt, werr
}

// Truncate resets the file to length zero, dropping the direct array.
// The data blocks are not reclaimed.
func (ip *Inode) Truncate() error {
	ip.Size = 0
	for i := range ip.Direct {
		ip.Direct[i] = common.NULLBNUM
	}
	return ip.WriteInode()
}
