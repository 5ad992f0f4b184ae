package fs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-slowfs/common"
	"github.com/mit-pdos/go-slowfs/device"
	"github.com/mit-pdos/go-slowfs/inode"
)

func dirNames(ents []inode.DirEnt) []string {
	names := make([]string, len(ents))
	for i, de := range ents {
		names[i] = de.Name
	}
	return names
}

func mkfsMem(t *testing.T) *FileSys {
	fsys, err := Mkfs(device.NewMemDisk(64))
	require.NoError(t, err)
	return fsys
}

func TestMkfsRoot(t *testing.T) {
	fsys := mkfsMem(t)
	root := fsys.RootInode()
	assert.Equal(t, common.ROOTINUM, root.Inum)
	assert.Equal(t, common.DIR, root.Kind)
	assert.Equal(t, 2*common.DIRENTSZ, root.Size)
	assert.GreaterOrEqual(t, root.Nlink, uint32(1))

	// "." and ".." both point back at the root
	inum, err := root.LookupName(".")
	require.NoError(t, err)
	assert.Equal(t, common.ROOTINUM, inum)
	inum, err = root.LookupName("..")
	require.NoError(t, err)
	assert.Equal(t, common.ROOTINUM, inum)

	require.NoError(t, fsys.Check())
}

func TestCreateFile(t *testing.T) {
	fsys := mkfsMem(t)
	root := fsys.RootInode()

	ip, err := fsys.Create(root, "f", common.FILE)
	require.NoError(t, err)
	assert.Equal(t, common.Inum(2), ip.Inum)
	assert.Equal(t, common.FILE, ip.Kind)
	assert.Equal(t, uint64(0), ip.Size)

	// the cache pins one object per inum
	got, err := fsys.GetInode(ip.Inum)
	require.NoError(t, err)
	assert.Same(t, ip, got)

	_, err = fsys.Create(root, "f", common.FILE)
	assert.Equal(t, common.ErrExists, err)

	_, err = fsys.Create(ip, "g", common.FILE)
	assert.Equal(t, common.ErrNotDir, err)

	require.NoError(t, fsys.Check())
}

func TestCreateDir(t *testing.T) {
	fsys := mkfsMem(t)
	root := fsys.RootInode()

	dip, err := fsys.Create(root, "d", common.DIR)
	require.NoError(t, err)
	assert.Equal(t, common.DIR, dip.Kind)

	ents, err := dip.ListNames()
	require.NoError(t, err)
	require.Len(t, ents, 2)
	assert.Equal(t, []string{".", ".."}, dirNames(ents))
	assert.Equal(t, dip.Inum, ents[0].Inum)
	assert.Equal(t, root.Inum, ents[1].Inum)

	require.NoError(t, fsys.Check())
}

func TestGetInodeBadInum(t *testing.T) {
	fsys := mkfsMem(t)
	_, err := fsys.GetInode(common.NULLINUM)
	assert.Equal(t, common.ErrIO, err)
	_, err = fsys.GetInode(common.Inum(fsys.Super.NInodes))
	assert.Equal(t, common.ErrIO, err)
	// slot 5 was never allocated
	_, err = fsys.GetInode(5)
	assert.Equal(t, common.ErrIO, err)
}

func TestInodeExhaustion(t *testing.T) {
	fsys := mkfsMem(t)
	root := fsys.RootInode()
	for i := uint64(2); i < fsys.Super.NInodes; i++ {
		_, err := fsys.Create(root, mkName(i), common.FILE)
		require.NoError(t, err)
	}
	_, err := fsys.Create(root, "straw", common.FILE)
	assert.Equal(t, common.ErrNoSpace, err)
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fs.img")
	d, err := device.NewFileDisk(path, 64)
	require.NoError(t, err)
	fsys, err := Mkfs(d)
	require.NoError(t, err)

	dip, err := fsys.Create(fsys.RootInode(), "d", common.DIR)
	require.NoError(t, err)
	ip, err := fsys.Create(dip, "f", common.FILE)
	require.NoError(t, err)
	_, err = ip.Write(0, []byte("Hello world"))
	require.NoError(t, err)
	require.NoError(t, fsys.Close())

	// detach and remount
	d, err = device.NewFileDisk(path, 64)
	require.NoError(t, err)
	fsys, err = MountFs(d)
	require.NoError(t, err)
	require.NoError(t, fsys.Check())

	dinum, err := fsys.RootInode().LookupName("d")
	require.NoError(t, err)
	dip, err = fsys.GetInode(dinum)
	require.NoError(t, err)
	finum, err := dip.LookupName("f")
	require.NoError(t, err)
	ip, err = fsys.GetInode(finum)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), ip.Size)
	data, err := ip.Read(0, 11)
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello world"), data)
	require.NoError(t, fsys.Close())
}

func mkName(i uint64) string {
	return "f" + string(rune('a'+i%26)) + string(rune('a'+(i/26)%26)) + string(rune('a'+(i/676)%26))
}
