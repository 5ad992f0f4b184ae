package vfs

import (
	"time"

	"github.com/mit-pdos/go-slowfs/fs"
	"github.com/mit-pdos/go-slowfs/inode"
	"github.com/mit-pdos/go-slowfs/util/stats"
)

const (
	opOpen = iota
	opClose
	opRead
	opWrite
	opSeek
	opMkdir
	opGetAttr
	opReadDir
	opMount
	nOps
)

var opNames = []string{
	"open", "close", "read", "write", "seek",
	"mkdir", "getattr", "readdir", "mount",
}

// Syscalls is the dispatch table handed to a process at construction.
// Processes depend only on this value, never on the Vfs itself, so a
// restricted process could be given a partial table.
type Syscalls struct {
	Open    func(path string, flags uint32, mode uint32) (*File, error)
	Close   func(f *File) error
	Read    func(f *File, count uint64) ([]byte, error)
	Write   func(f *File, data []byte) (uint64, error)
	Seek    func(f *File, offset int64, whence uint32) (uint64, error)
	Mkdir   func(path string, mode uint32) error
	GetAttr func(path string) (Attr, error)
	ReadDir func(path string) ([]inode.DirEnt, error)
	Mount   func(path string, fsys *fs.FileSys) error
}

func (v *Vfs) record(op int, start time.Time) {
	v.ops[op].Record(start)
}

// SyscallTable builds the dispatch table, timing every call for the
// stats dump.
func (v *Vfs) SyscallTable() Syscalls {
	return Syscalls{
		Open: func(path string, flags uint32, mode uint32) (*File, error) {
			defer v.record(opOpen, time.Now())
			return v.Open(path, flags, mode)
		},
		Close: func(f *File) error {
			defer v.record(opClose, time.Now())
			return v.Close(f)
		},
		Read: func(f *File, count uint64) ([]byte, error) {
			defer v.record(opRead, time.Now())
			return v.Read(f, count)
		},
		Write: func(f *File, data []byte) (uint64, error) {
			defer v.record(opWrite, time.Now())
			return v.Write(f, data)
		},
		Seek: func(f *File, offset int64, whence uint32) (uint64, error) {
			defer v.record(opSeek, time.Now())
			return v.Seek(f, offset, whence)
		},
		Mkdir: func(path string, mode uint32) error {
			defer v.record(opMkdir, time.Now())
			return v.Mkdir(path, mode)
		},
		GetAttr: func(path string) (Attr, error) {
			defer v.record(opGetAttr, time.Now())
			return v.GetAttr(path)
		},
		ReadDir: func(path string) ([]inode.DirEnt, error) {
			defer v.record(opReadDir, time.Now())
			return v.ReadDir(path)
		},
		Mount: func(path string, fsys *fs.FileSys) error {
			defer v.record(opMount, time.Now())
			return v.Mount(path, fsys)
		},
	}
}

// StatsTable renders per-syscall latency counters.
func (v *Vfs) StatsTable() string {
	return stats.FormatTable(opNames, v.ops)
}
