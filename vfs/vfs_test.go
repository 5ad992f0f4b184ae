package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-slowfs/common"
	"github.com/mit-pdos/go-slowfs/device"
	"github.com/mit-pdos/go-slowfs/fs"
	"github.com/mit-pdos/go-slowfs/inode"
)

// mkVfs boots a VFS with a 64-block MemDisk filesystem at /mnt.
func mkVfs(t *testing.T) (*Vfs, *fs.FileSys) {
	v := MkVfs()
	fsys, err := fs.Mkfs(device.NewMemDisk(64))
	require.NoError(t, err)
	require.NoError(t, v.Mkdir("/mnt", 0o755))
	require.NoError(t, v.Mount("/mnt", fsys))
	return v, fsys
}

func names(ents []inode.DirEnt) []string {
	ns := make([]string, len(ents))
	for i, de := range ents {
		ns[i] = de.Name
	}
	return ns
}

func TestResolveErrors(t *testing.T) {
	v, _ := mkVfs(t)

	_, err := v.GetAttr("mnt")
	assert.Equal(t, common.ErrInvalidPath, err)
	_, err = v.GetAttr("")
	assert.Equal(t, common.ErrInvalidPath, err)
	_, err = v.GetAttr("/mnt/nope")
	assert.Equal(t, common.ErrNotFound, err)

	// walking through a regular file
	_, err = v.Open("/mnt/f", O_CREAT|O_WRONLY, 0o644)
	require.NoError(t, err)

	_, err = v.GetAttr("/mnt/f/x")
	assert.Equal(t, common.ErrNotDir, err)
}

func TestResolveSlashes(t *testing.T) {
	v, _ := mkVfs(t)
	require.NoError(t, v.Mkdir("/mnt/d", 0o755))

	for _, p := range []string{"/mnt/d", "/mnt/d/", "//mnt//d", "/mnt/./d"} {
		attr, err := v.GetAttr(p)
		require.NoError(t, err, p)
		assert.Equal(t, common.DIR, attr.Kind, p)
	}
}

func TestOpenCreate(t *testing.T) {
	v, fsys := mkVfs(t)

	_, err := v.Open("/mnt/f", O_RDWR, 0o644)
	assert.Equal(t, common.ErrNotFound, err)

	f, err := v.Open("/mnt/f", O_CREAT|O_RDWR, 0o644)
	require.NoError(t, err)
	assert.Equal(t, common.FILE, f.Ip.Kind)
	assert.Equal(t, uint64(0), f.Off)

	// creating again opens the same inode
	f2, err := v.Open("/mnt/f", O_CREAT|O_RDWR, 0o644)
	require.NoError(t, err)
	assert.Equal(t, f.Ip.Inum, f2.Ip.Inum)

	_, err = v.Open("/mnt/f", O_CREAT|O_EXCL|O_RDWR, 0o644)
	assert.Equal(t, common.ErrExists, err)

	require.NoError(t, fsys.Check())
}

func TestOpenDir(t *testing.T) {
	v, _ := mkVfs(t)

	// read-opening a directory is allowed
	_, err := v.Open("/mnt", O_RDONLY, 0)
	require.NoError(t, err)

	_, err = v.Open("/mnt", O_WRONLY, 0)
	assert.Equal(t, common.ErrIsDir, err)
	_, err = v.Open("/mnt", O_RDWR, 0)
	assert.Equal(t, common.ErrIsDir, err)

	// and reading or seeking through it is not
	f, err := v.Open("/mnt", O_RDONLY, 0)
	require.NoError(t, err)
	_, err = v.Read(f, 10)
	assert.Equal(t, common.ErrIsDir, err)
	_, err = v.Seek(f, 0, SEEK_SET)
	assert.Equal(t, common.ErrIsDir, err)
}

func TestOpenTrunc(t *testing.T) {
	v, fsys := mkVfs(t)

	f, err := v.Open("/mnt/f", O_CREAT|O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = v.Write(f, []byte("some data"))
	require.NoError(t, err)
	require.NoError(t, v.Close(f))

	freeBefore := fsys.Super.NumFreeBlocks()
	f, err = v.Open("/mnt/f", O_WRONLY|O_TRUNC, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), f.Ip.Size)
	for _, bn := range f.Ip.Direct {
		assert.Equal(t, common.NULLBNUM, bn)
	}
	// truncation does not reclaim the data block
	assert.Equal(t, freeBefore, fsys.Super.NumFreeBlocks())

	// O_TRUNC without write access leaves the file alone
	f, err = v.Open("/mnt/g", O_CREAT|O_RDWR, 0o644)
	require.NoError(t, err)
	_, err = v.Write(f, []byte("keep"))
	require.NoError(t, err)
	f, err = v.Open("/mnt/g", O_RDONLY|O_TRUNC, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), f.Ip.Size)
}

func TestOpenAppend(t *testing.T) {
	v, _ := mkVfs(t)

	f, err := v.Open("/mnt/f", O_CREAT|O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = v.Write(f, []byte("Hello"))
	require.NoError(t, err)
	require.NoError(t, v.Close(f))

	f, err = v.Open("/mnt/f", O_WRONLY|O_APPEND, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), f.Off)
	_, err = v.Write(f, []byte(" world"))
	require.NoError(t, err)

	f, err = v.Open("/mnt/f", O_RDONLY, 0)
	require.NoError(t, err)
	data, err := v.Read(f, 100)
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello world"), data)
}

func TestAccessModes(t *testing.T) {
	v, _ := mkVfs(t)

	f, err := v.Open("/mnt/f", O_CREAT|O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = v.Read(f, 1)
	assert.Equal(t, common.ErrBadFd, err)

	f, err = v.Open("/mnt/f", O_RDONLY, 0)
	require.NoError(t, err)
	_, err = v.Write(f, []byte("x"))
	assert.Equal(t, common.ErrBadFd, err)
}

func TestSeek(t *testing.T) {
	v, _ := mkVfs(t)
	f, err := v.Open("/mnt/f", O_CREAT|O_RDWR, 0o644)
	require.NoError(t, err)
	_, err = v.Write(f, []byte("0123456789"))
	require.NoError(t, err)

	off, err := v.Seek(f, 2, SEEK_SET)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), off)
	off, err = v.Seek(f, 3, SEEK_CUR)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), off)
	off, err = v.Seek(f, -4, SEEK_END)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), off)
	data, err := v.Read(f, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("6789"), data)

	_, err = v.Seek(f, -1, SEEK_SET)
	assert.Equal(t, common.ErrInval, err)
	_, err = v.Seek(f, 0, 99)
	assert.Equal(t, common.ErrInval, err)

	// seeking past the end is allowed; writing there leaves a hole
	off, err = v.Seek(f, 100, SEEK_END)
	require.NoError(t, err)
	assert.Equal(t, uint64(110), off)
	_, err = v.Write(f, []byte("!"))
	require.NoError(t, err)
	attr, err := v.GetAttr("/mnt/f")
	require.NoError(t, err)
	assert.Equal(t, uint64(111), attr.Size)
}

func TestCloseTwice(t *testing.T) {
	v, _ := mkVfs(t)
	f, err := v.Open("/mnt/f", O_CREAT|O_RDWR, 0o644)
	require.NoError(t, err)
	require.NoError(t, v.Close(f))
	assert.Equal(t, common.ErrBadFd, v.Close(f))
	_, err = v.Read(f, 1)
	assert.Equal(t, common.ErrBadFd, err)
}

func TestMkdirReadDir(t *testing.T) {
	v, fsys := mkVfs(t)

	require.NoError(t, v.Mkdir("/mnt/d", 0o755))
	assert.Equal(t, common.ErrExists, v.Mkdir("/mnt/d", 0o755))
	assert.Equal(t, common.ErrNotFound, v.Mkdir("/mnt/missing/d", 0o755))

	ents, err := v.ReadDir("/mnt")
	require.NoError(t, err)
	assert.Equal(t, []string{".", "..", "d"}, names(ents))

	ents, err = v.ReadDir("/mnt/d")
	require.NoError(t, err)
	assert.Equal(t, []string{".", ".."}, names(ents))

	_, err = v.Open("/mnt/d/f", O_CREAT|O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = v.ReadDir("/mnt/d/f")
	assert.Equal(t, common.ErrNotDir, err)

	require.NoError(t, fsys.Check())
}

func TestGetAttr(t *testing.T) {
	v, _ := mkVfs(t)
	attr, err := v.GetAttr("/mnt")
	require.NoError(t, err)
	assert.Equal(t, common.DIR, attr.Kind)
	assert.Equal(t, common.ROOTINUM, attr.Inum)
	assert.Equal(t, 2*common.DIRENTSZ, attr.Size)

	f, err := v.Open("/mnt/f", O_CREAT|O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = v.Write(f, []byte("Hello"))
	require.NoError(t, err)
	attr, err = v.GetAttr("/mnt/f")
	require.NoError(t, err)
	assert.Equal(t, common.FILE, attr.Kind)
	assert.Equal(t, uint64(5), attr.Size)
	assert.Equal(t, uint32(1), attr.Nlink)
}

func TestMountRouting(t *testing.T) {
	v, fsys := mkVfs(t)

	// mounting needs an existing directory
	fsys2, err := fs.Mkfs(device.NewMemDisk(64))
	require.NoError(t, err)
	assert.Equal(t, common.ErrNotFound, v.Mount("/mnt2", fsys2))
	assert.Equal(t, common.ErrExists, v.Mount("/mnt", fsys2))

	// a nested mount shadows its mount point
	require.NoError(t, v.Mkdir("/mnt/sub", 0o755))
	require.NoError(t, v.Mount("/mnt/sub", fsys2))
	f, err := v.Open("/mnt/sub/x", O_CREAT|O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = v.Write(f, []byte("inner"))
	require.NoError(t, err)

	// the file landed in fsys2, not in /mnt's filesystem
	_, err = fsys2.RootInode().LookupName("x")
	require.NoError(t, err)
	subInum, err := fsys.RootInode().LookupName("sub")
	require.NoError(t, err)
	subIp, err := fsys.GetInode(subInum)
	require.NoError(t, err)
	_, err = subIp.LookupName("x")
	assert.Equal(t, common.ErrNotFound, err)
}
