// Package fs ties the layout and inode layers into a mountable
// filesystem instance: the root inode, the pinned inode cache, and the
// composed create operation.
package fs

import (
	"github.com/mit-pdos/go-slowfs/common"
	"github.com/mit-pdos/go-slowfs/device"
	"github.com/mit-pdos/go-slowfs/driver"
	"github.com/mit-pdos/go-slowfs/inode"
	"github.com/mit-pdos/go-slowfs/super"
	"github.com/mit-pdos/go-slowfs/util"
)

// FileSys is one mounted filesystem. Inodes loaded into the cache stay
// pinned until the instance is closed; the cache is the single owner of
// inode objects, so "." and ".." cycles are just numbers.
type FileSys struct {
	Super  *super.FsSuper
	icache map[common.Inum]*inode.Inode
}

func mkFileSys(sb *super.FsSuper) *FileSys {
	return &FileSys{
		Super:  sb,
		icache: make(map[common.Inum]*inode.Inode),
	}
}

// Mkfs formats d and returns the mounted result. The root directory is
// inode 1 and holds "." and ".." pointing at itself.
func Mkfs(d device.Disk) (*FileSys, error) {
	sb, err := super.Format(driver.MkDriver(d))
	if err != nil {
		return nil, err
	}
	fsys := mkFileSys(sb)
	root, err := fsys.AllocInode(common.DIR)
	if err != nil {
		return nil, err
	}
	if root.Inum != common.ROOTINUM {
		panic("Mkfs: root must land in slot 1")
	}
	if err := root.InitDir(common.ROOTINUM); err != nil {
		return nil, err
	}
	util.DPrintf(1, "Mkfs: root %v\n", root)
	return fsys, nil
}

// MountFs attaches a previously formatted disk.
func MountFs(d device.Disk) (*FileSys, error) {
	sb, err := super.ReadFsSuper(driver.MkDriver(d))
	if err != nil {
		return nil, err
	}
	fsys := mkFileSys(sb)
	if _, err := fsys.GetInode(common.ROOTINUM); err != nil {
		return nil, err
	}
	return fsys, nil
}

// RootInode returns inode 1, which Mkfs/MountFs pinned.
func (fsys *FileSys) RootInode() *inode.Inode {
	ip, ok := fsys.icache[common.ROOTINUM]
	if !ok {
		panic("RootInode: root not cached")
	}
	return ip
}

// GetInode returns the cached inode object, reading the record from
// the inode table on first access.
func (fsys *FileSys) GetInode(inum common.Inum) (*inode.Inode, error) {
	if inum == common.NULLINUM || uint64(inum) >= fsys.Super.NInodes {
		return nil, common.ErrIO
	}
	if ip, ok := fsys.icache[inum]; ok {
		return ip, nil
	}
	rec, err := fsys.Super.ReadInum(inum)
	if err != nil {
		return nil, err
	}
	ip := inode.Decode(fsys.Super, inum, rec)
	if ip.Kind == common.FREE {
		// a directory entry pointed at an unallocated slot
		return nil, common.ErrIO
	}
	util.DPrintf(1, "GetInode # %d: read from disk\n", inum)
	fsys.icache[inum] = ip
	return ip, nil
}

// AllocInode claims the lowest free slot, initializes and persists the
// record, and pins the object.
func (fsys *FileSys) AllocInode(kind common.Ftype) (*inode.Inode, error) {
	inum, err := fsys.Super.AllocInum()
	if err != nil {
		return nil, err
	}
	ip := inode.MkInode(fsys.Super, inum, kind)
	if err := ip.WriteInode(); err != nil {
		return nil, err
	}
	fsys.icache[inum] = ip
	return ip, nil
}

// Create allocates a new inode of the given kind and links it into dip
// under name. A failure after allocation leaves the child allocated
// with no directory entry; nothing reclaims it.
func (fsys *FileSys) Create(dip *inode.Inode, name string, kind common.Ftype) (*inode.Inode, error) {
	if dip.Kind != common.DIR {
		return nil, common.ErrNotDir
	}
	if !inode.IsValidName(name) {
		return nil, common.ErrNameInvalid
	}
	if _, err := dip.LookupName(name); err == nil {
		return nil, common.ErrExists
	} else if err != common.ErrNotFound {
		return nil, err
	}
	ip, err := fsys.AllocInode(kind)
	if err != nil {
		return nil, err
	}
	if kind == common.DIR {
		if err := ip.InitDir(dip.Inum); err != nil {
			return nil, err
		}
	}
	if err := dip.AddName(name, ip.Inum); err != nil {
		return nil, err
	}
	util.DPrintf(1, "Create # %d: %s -> %v\n", dip.Inum, name, ip)
	return ip, nil
}

// Sync flushes the image down to the host medium.
func (fsys *FileSys) Sync() error {
	return fsys.Super.Sync()
}

// Close detaches the instance, releasing the backing device.
func (fsys *FileSys) Close() error {
	if err := fsys.Sync(); err != nil {
		fsys.Super.Close()
		return err
	}
	return fsys.Super.Close()
}
