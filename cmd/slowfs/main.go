// Command slowfs formats (or remounts) an image, mounts it into a
// fresh VFS, and walks through the filesystem end to end: directories,
// file creation, writes, rereads, and a listing.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mit-pdos/go-slowfs/common"
	"github.com/mit-pdos/go-slowfs/device"
	"github.com/mit-pdos/go-slowfs/fs"
	"github.com/mit-pdos/go-slowfs/proc"
	"github.com/mit-pdos/go-slowfs/util"
	"github.com/mit-pdos/go-slowfs/vfs"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	var diskfile string
	flag.StringVar(&diskfile, "disk", "", "disk image (empty for MemDisk)")

	var size uint64
	flag.Uint64Var(&size, "size", 64, "size of the image (in 4KB blocks)")

	var format bool
	flag.BoolVar(&format, "format", false, "format the image instead of mounting it")

	var dumpStats bool
	flag.BoolVar(&dumpStats, "stats", false, "dump syscall stats at end")

	flag.Uint64Var(&util.Debug, "debug", 0, "debug level (higher is more verbose)")
	flag.Parse()

	var d device.Disk
	if diskfile == "" {
		d = device.NewMemDisk(size)
		format = true
	} else {
		fd, err := device.NewFileDisk(diskfile, size)
		check(err)
		d = fd
	}

	var fsys *fs.FileSys
	var err error
	if format {
		fsys, err = fs.Mkfs(d)
	} else {
		fsys, err = fs.MountFs(d)
	}
	check(err)

	v := vfs.MkVfs()
	sudo := proc.MkProcess(v.SyscallTable())
	check(sudo.Mkdir("/mnt", 0o755))
	check(sudo.Mount("/mnt", fsys))

	p := proc.MkProcess(v.SyscallTable())
	fd, err := p.Open("/mnt/file", vfs.O_CREAT|vfs.O_RDWR, 0o644)
	check(err)
	_, err = p.Write(fd, []byte("Hello world"))
	check(err)
	_, err = p.Seek(fd, 0, vfs.SEEK_SET)
	check(err)
	data, err := p.Read(fd, 11)
	check(err)
	fmt.Printf("/mnt/file: %q\n", data)
	check(p.Close(fd))

	check(p.Mkdir("/mnt/mydir", 0o755))
	fd, err = p.Open("/mnt/mydir/file", vfs.O_CREAT|vfs.O_RDWR, 0o644)
	check(err)
	_, err = p.Write(fd, []byte("Im in a subdir"))
	check(err)
	check(p.Close(fd))

	if _, err := p.Open("/mnt/not_a_subdir/file", vfs.O_CREAT|vfs.O_RDWR, 0o644); err != common.ErrNotFound {
		panic("expected missing directory to fail open")
	}

	ents, err := p.ListDir("/mnt")
	check(err)
	for _, de := range ents {
		attr, err := p.Stat("/mnt/" + de.Name)
		check(err)
		fmt.Printf("%-8s # %-3d %-5v %d bytes\n", de.Name, de.Inum, attr.Kind, attr.Size)
	}

	check(fsys.Check())
	check(fsys.Sync())

	if dumpStats {
		fmt.Fprint(os.Stderr, v.StatsTable())
	}
}
