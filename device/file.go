package device

import (
	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-slowfs/common"
	"github.com/mit-pdos/go-slowfs/util"
)

// FileDisk stores blocks in a host file, accessed with positioned
// reads and writes so no seek state is shared.
type FileDisk struct {
	fd        int
	numBlocks uint64
}

var _ Disk = (*FileDisk)(nil)

// NewFileDisk opens (creating if necessary) the image at path and
// truncates it to exactly numBlocks*BlockSize bytes.
func NewFileDisk(path string, numBlocks uint64) (*FileDisk, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0666)
	if err != nil {
		return nil, err
	}
	var stat unix.Stat_t
	err = unix.Fstat(fd, &stat)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	if uint64(stat.Size) != numBlocks*BlockSize {
		err = unix.Ftruncate(fd, int64(numBlocks*BlockSize))
		if err != nil {
			unix.Close(fd)
			return nil, err
		}
	}
	return &FileDisk{fd: fd, numBlocks: numBlocks}, nil
}

func (d *FileDisk) Read(n uint64) (Block, error) {
	if n >= d.numBlocks {
		return nil, common.ErrIO
	}
	buf := make([]byte, BlockSize)
	cnt, err := unix.Pread(d.fd, buf, int64(n*BlockSize))
	if err != nil || uint64(cnt) != BlockSize {
		util.DPrintf(1, "FileDisk.Read %d: %v\n", n, err)
		return nil, common.ErrIO
	}
	return buf, nil
}

func (d *FileDisk) Write(n uint64, v Block) error {
	if err := validWrite(d, n, v); err != nil {
		return err
	}
	cnt, err := unix.Pwrite(d.fd, v, int64(n*BlockSize))
	if err != nil || uint64(cnt) != BlockSize {
		util.DPrintf(1, "FileDisk.Write %d: %v\n", n, err)
		return common.ErrIO
	}
	return nil
}

func (d *FileDisk) Size() uint64 {
	return d.numBlocks
}

func (d *FileDisk) Barrier() error {
	if err := unix.Fsync(d.fd); err != nil {
		return common.ErrIO
	}
	return nil
}

func (d *FileDisk) Close() error {
	if err := unix.Close(d.fd); err != nil {
		return common.ErrIO
	}
	return nil
}
