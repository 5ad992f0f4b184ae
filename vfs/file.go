package vfs

import (
	"github.com/mit-pdos/go-slowfs/common"
	"github.com/mit-pdos/go-slowfs/fs"
	"github.com/mit-pdos/go-slowfs/inode"
)

// Open flags. The access mode lives in the low two bits.
const (
	O_RDONLY  uint32 = 0x0
	O_WRONLY  uint32 = 0x1
	O_RDWR    uint32 = 0x2
	O_ACCMODE uint32 = 0x3

	O_CREAT  uint32 = 0x40
	O_EXCL   uint32 = 0x80
	O_TRUNC  uint32 = 0x200
	O_APPEND uint32 = 0x400
)

// Seek whence values.
const (
	SEEK_SET uint32 = 0
	SEEK_CUR uint32 = 1
	SEEK_END uint32 = 2
)

// File is an open-file description: the inode, the file offset, and
// the access mode the open granted. Every open creates a fresh one;
// refCnt exists for a future dup.
type File struct {
	Fsys *fs.FileSys
	Ip   *inode.Inode
	Off  uint64

	Readable bool
	Writable bool

	refCnt uint32
}

func (f *File) live() bool {
	return f != nil && f.refCnt > 0
}

// Read returns up to count bytes at the current offset and advances it.
func (f *File) Read(count uint64) ([]byte, error) {
	if !f.live() || !f.Readable {
		return nil, common.ErrBadFd
	}
	if f.Ip.Kind == common.DIR {
		return nil, common.ErrIsDir
	}
	data, err := f.Ip.Read(f.Off, count)
	f.Off += uint64(len(data))
	return data, err
}

// Write stores data at the current offset and advances it by the
// number of bytes actually written.
func (f *File) Write(data []byte) (uint64, error) {
	if !f.live() || !f.Writable {
		return 0, common.ErrBadFd
	}
	if f.Ip.Kind == common.DIR {
		return 0, common.ErrIsDir
	}
	n, err := f.Ip.Write(f.Off, data)
	f.Off += n
	return n, err
}

// Seek repositions the offset. Seeking past the end is allowed; a
// later write there creates a sparse region.
func (f *File) Seek(offset int64, whence uint32) (uint64, error) {
	if !f.live() {
		return 0, common.ErrBadFd
	}
	if f.Ip.Kind == common.DIR {
		return 0, common.ErrIsDir
	}
	var base uint64
	switch whence {
	case SEEK_SET:
		base = 0
	case SEEK_CUR:
		base = f.Off
	case SEEK_END:
		base = f.Ip.Size
	default:
		return 0, common.ErrInval
	}
	pos := int64(base) + offset
	if pos < 0 {
		return 0, common.ErrInval
	}
	f.Off = uint64(pos)
	return f.Off, nil
}
