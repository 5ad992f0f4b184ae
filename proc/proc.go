// Package proc models the per-process state the kernel would keep: a
// file-descriptor table mapping small integers to open-file
// descriptions, and the user-facing system-call wrappers.
package proc

import (
	"github.com/mit-pdos/go-slowfs/common"
	"github.com/mit-pdos/go-slowfs/fs"
	"github.com/mit-pdos/go-slowfs/inode"
	"github.com/mit-pdos/go-slowfs/util"
	"github.com/mit-pdos/go-slowfs/vfs"
)

// NOFILE bounds how many files one process can hold open.
const NOFILE = 1024

// Process issues calls through the syscall table it was booted with.
// The working directory is fixed at "/"; all paths are absolute.
type Process struct {
	sys vfs.Syscalls
	fds [NOFILE]*vfs.File
	Cwd string
}

func MkProcess(sys vfs.Syscalls) *Process {
	return &Process{sys: sys, Cwd: "/"}
}

func (p *Process) lookupFd(fd int) (*vfs.File, error) {
	if fd < 0 || fd >= NOFILE || p.fds[fd] == nil {
		return nil, common.ErrBadFd
	}
	return p.fds[fd], nil
}

// Open opens path and returns the lowest free file descriptor.
func (p *Process) Open(path string, flags uint32, mode uint32) (int, error) {
	fd := -1
	for i := range p.fds {
		if p.fds[i] == nil {
			fd = i
			break
		}
	}
	if fd == -1 {
		return -1, common.ErrMaxOpen
	}
	f, err := p.sys.Open(path, flags, mode)
	if err != nil {
		return -1, err
	}
	p.fds[fd] = f
	util.DPrintf(1, "proc: open %s -> fd %d\n", path, fd)
	return fd, nil
}

// Close releases fd; the integer may be handed out again by a later
// Open. Closing twice fails with ErrBadFd.
func (p *Process) Close(fd int) error {
	f, err := p.lookupFd(fd)
	if err != nil {
		return err
	}
	p.fds[fd] = nil
	return p.sys.Close(f)
}

func (p *Process) Read(fd int, count uint64) ([]byte, error) {
	f, err := p.lookupFd(fd)
	if err != nil {
		return nil, err
	}
	return p.sys.Read(f, count)
}

func (p *Process) Write(fd int, data []byte) (uint64, error) {
	f, err := p.lookupFd(fd)
	if err != nil {
		return 0, err
	}
	return p.sys.Write(f, data)
}

func (p *Process) Seek(fd int, offset int64, whence uint32) (uint64, error) {
	f, err := p.lookupFd(fd)
	if err != nil {
		return 0, err
	}
	return p.sys.Seek(f, offset, whence)
}

func (p *Process) Mkdir(path string, mode uint32) error {
	return p.sys.Mkdir(path, mode)
}

func (p *Process) Stat(path string) (vfs.Attr, error) {
	return p.sys.GetAttr(path)
}

func (p *Process) ListDir(path string) ([]inode.DirEnt, error) {
	return p.sys.ReadDir(path)
}

func (p *Process) Mount(path string, fsys *fs.FileSys) error {
	return p.sys.Mount(path, fsys)
}
