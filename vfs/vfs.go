// Package vfs is the dispatcher between path-based calls and mounted
// filesystems: it owns the mount table and the open-file table, walks
// paths from mount roots, and hands processes a syscall table at boot.
package vfs

import (
	"strings"

	"github.com/mit-pdos/go-slowfs/common"
	"github.com/mit-pdos/go-slowfs/device"
	"github.com/mit-pdos/go-slowfs/fs"
	"github.com/mit-pdos/go-slowfs/inode"
	"github.com/mit-pdos/go-slowfs/util"
	"github.com/mit-pdos/go-slowfs/util/stats"
)

// rootfsBlocks sizes the trivial in-memory rootfs; it only ever holds
// directories that serve as mount points.
const rootfsBlocks uint64 = 16

type Vfs struct {
	mounts map[string]*fs.FileSys
	oft    []*File
	ops    []stats.Op
}

// MkVfs boots a VFS with the in-memory rootfs mounted at "/".
func MkVfs() *Vfs {
	rootfs, err := fs.Mkfs(device.NewMemDisk(rootfsBlocks))
	if err != nil {
		panic("MkVfs: rootfs: " + err.Error())
	}
	return &Vfs{
		mounts: map[string]*fs.FileSys{"/": rootfs},
		ops:    make([]stats.Op, nOps),
	}
}

// splitPath rejects non-absolute paths and drops empty components, so
// trailing and doubled slashes are fine.
func splitPath(path string) ([]string, error) {
	if len(path) == 0 || path[0] != '/' {
		return nil, common.ErrInvalidPath
	}
	var comps []string
	for _, c := range strings.Split(path, "/") {
		if c != "" {
			comps = append(comps, c)
		}
	}
	return comps, nil
}

func isPrefix(comps []string, prefix []string) bool {
	if len(prefix) > len(comps) {
		return false
	}
	for i, c := range prefix {
		if comps[i] != c {
			return false
		}
	}
	return true
}

// findMount picks the most specific mounted prefix of comps and
// reports how many components it consumed.
func (v *Vfs) findMount(comps []string) (*fs.FileSys, int) {
	best := v.mounts["/"]
	bestN := 0
	for mpath, mfs := range v.mounts {
		mcomps, _ := splitPath(mpath)
		if len(mcomps) > bestN && isPrefix(comps, mcomps) {
			best = mfs
			bestN = len(mcomps)
		}
	}
	return best, bestN
}

// walk follows comps from ip, one lookup per component. There is no
// directory-entry cache: every call re-reads the entries it visits.
func walk(fsys *fs.FileSys, ip *inode.Inode, comps []string) (*inode.Inode, error) {
	for _, c := range comps {
		if ip.Kind != common.DIR {
			return nil, common.ErrNotDir
		}
		inum, err := ip.LookupName(c)
		if err != nil {
			return nil, err
		}
		ip, err = fsys.GetInode(inum)
		if err != nil {
			return nil, err
		}
	}
	return ip, nil
}

// resolve maps an absolute path to its filesystem and inode.
func (v *Vfs) resolve(path string) (*fs.FileSys, *inode.Inode, error) {
	comps, err := splitPath(path)
	if err != nil {
		return nil, nil, err
	}
	fsys, n := v.findMount(comps)
	ip, err := walk(fsys, fsys.RootInode(), comps[n:])
	if err != nil {
		return nil, nil, err
	}
	util.DPrintf(5, "resolve %s -> # %d\n", path, ip.Inum)
	return fsys, ip, nil
}

// resolveParent resolves everything but the final component and
// returns that component's name. Paths that name a mount root have no
// parent to create in; they already exist.
func (v *Vfs) resolveParent(path string) (*fs.FileSys, *inode.Inode, string, error) {
	comps, err := splitPath(path)
	if err != nil {
		return nil, nil, "", err
	}
	fsys, n := v.findMount(comps)
	rest := comps[n:]
	if len(rest) == 0 {
		return nil, nil, "", common.ErrExists
	}
	dip, err := walk(fsys, fsys.RootInode(), rest[:len(rest)-1])
	if err != nil {
		return nil, nil, "", err
	}
	return fsys, dip, rest[len(rest)-1], nil
}

// Mount routes resolutions under path into fsys. The mount point must
// already exist as a directory in the containing filesystem.
func (v *Vfs) Mount(path string, fsys *fs.FileSys) error {
	comps, err := splitPath(path)
	if err != nil {
		return err
	}
	canonical := "/" + strings.Join(comps, "/")
	if _, ok := v.mounts[canonical]; ok {
		return common.ErrExists
	}
	_, ip, err := v.resolve(path)
	if err != nil {
		return err
	}
	if ip.Kind != common.DIR {
		return common.ErrNotDir
	}
	util.DPrintf(1, "Mount %s\n", canonical)
	v.mounts[canonical] = fsys
	return nil
}
