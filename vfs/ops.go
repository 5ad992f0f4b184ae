package vfs

import (
	"github.com/mit-pdos/go-slowfs/common"
	"github.com/mit-pdos/go-slowfs/inode"
	"github.com/mit-pdos/go-slowfs/util"
)

// Attr is what stat reports about a path.
type Attr struct {
	Kind  common.Ftype
	Size  uint64
	Nlink uint32
	Inum  common.Inum
}

// Open resolves path and returns a fresh open-file description. With
// O_CREAT a missing final component is created as a regular file in
// its parent directory. mode is accepted for interface fidelity;
// permission bits are not interpreted.
func (v *Vfs) Open(path string, flags uint32, mode uint32) (*File, error) {
	accmode := flags & O_ACCMODE
	readable := accmode == O_RDONLY || accmode == O_RDWR
	writable := accmode == O_WRONLY || accmode == O_RDWR

	fsys, ip, err := v.resolve(path)
	if err == common.ErrNotFound && flags&O_CREAT != 0 {
		pfsys, dip, name, perr := v.resolveParent(path)
		if perr != nil {
			return nil, perr
		}
		fsys = pfsys
		ip, err = fsys.Create(dip, name, common.FILE)
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else if flags&O_CREAT != 0 && flags&O_EXCL != 0 {
		return nil, common.ErrExists
	}

	if ip.Kind == common.DIR && writable {
		return nil, common.ErrIsDir
	}
	if flags&O_TRUNC != 0 && writable && ip.Size > 0 {
		// drops the direct array; the data blocks are not reclaimed
		if err := ip.Truncate(); err != nil {
			return nil, err
		}
	}

	var off uint64
	if flags&O_APPEND != 0 {
		off = ip.Size
	}
	f := &File{
		Fsys:     fsys,
		Ip:       ip,
		Off:      off,
		Readable: readable,
		Writable: writable,
		refCnt:   1,
	}
	v.oft = append(v.oft, f)
	util.DPrintf(1, "Open %s flags 0x%x -> # %d off %d\n", path, flags, ip.Inum, off)
	return f, nil
}

// Close drops the caller's reference; closing an already-closed
// description fails with ErrBadFd.
func (v *Vfs) Close(f *File) error {
	if !f.live() {
		return common.ErrBadFd
	}
	f.refCnt--
	if f.refCnt == 0 {
		for i, of := range v.oft {
			if of == f {
				v.oft = append(v.oft[:i], v.oft[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (v *Vfs) Read(f *File, count uint64) ([]byte, error) {
	return f.Read(count)
}

func (v *Vfs) Write(f *File, data []byte) (uint64, error) {
	return f.Write(data)
}

func (v *Vfs) Seek(f *File, offset int64, whence uint32) (uint64, error) {
	return f.Seek(offset, whence)
}

// Mkdir creates a directory, complete with its "." and ".." entries.
func (v *Vfs) Mkdir(path string, mode uint32) error {
	fsys, dip, name, err := v.resolveParent(path)
	if err != nil {
		return err
	}
	_, err = fsys.Create(dip, name, common.DIR)
	return err
}

// GetAttr resolves path and reports the inode's metadata.
func (v *Vfs) GetAttr(path string) (Attr, error) {
	_, ip, err := v.resolve(path)
	if err != nil {
		return Attr{}, err
	}
	return Attr{
		Kind:  ip.Kind,
		Size:  ip.Size,
		Nlink: ip.Nlink,
		Inum:  ip.Inum,
	}, nil
}

// ReadDir returns the live entries of the directory at path in
// on-medium order, "." and ".." included.
func (v *Vfs) ReadDir(path string) ([]inode.DirEnt, error) {
	_, ip, err := v.resolve(path)
	if err != nil {
		return nil, err
	}
	if ip.Kind != common.DIR {
		return nil, common.ErrNotDir
	}
	return ip.ListNames()
}
