package inode

import (
	"github.com/mit-pdos/go-slowfs/common"
	"github.com/mit-pdos/go-slowfs/marshal"
	"github.com/mit-pdos/go-slowfs/util"
)

// DirEnt is a decoded live directory entry.
type DirEnt struct {
	Name string
	Inum common.Inum
}

// IsValidName reports whether name fits a directory entry: 1..27
// bytes, 7-bit printable ASCII, no '/'.
func IsValidName(name string) bool {
	if len(name) < 1 || uint64(len(name)) > common.MAXNAMELEN {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x20 || c > 0x7e || c == '/' {
			return false
		}
	}
	return true
}

// Caller must ensure de.Name fits.
func encodeDirEnt(de *DirEnt) []byte {
	enc := marshal.NewEnc(make([]byte, common.DIRENTSZ))
	enc.PutInt32(uint32(de.Inum))
	enc.PutByte(byte(len(de.Name)))
	enc.PutBytes([]byte(de.Name))
	return enc.Finish()
}

func decodeDirEnt(d []byte) *DirEnt {
	dec := marshal.NewDec(d)
	inum := common.Inum(dec.GetInt32())
	l := uint64(dec.GetByte())
	name := string(dec.GetBytes(common.MAXNAMELEN)[:l])
	return &DirEnt{Name: name, Inum: inum}
}

// LookupName scans the entry array in order and returns the inum of
// the first live entry matching name.
func (dip *Inode) LookupName(name string) (common.Inum, error) {
	if dip.Kind != common.DIR {
		return common.NULLINUM, common.ErrNotDir
	}
	for off := uint64(0); off < dip.Size; off += common.DIRENTSZ {
		data, err := dip.Read(off, common.DIRENTSZ)
		if err != nil {
			return common.NULLINUM, err
		}
		if uint64(len(data)) != common.DIRENTSZ {
			break
		}
		de := decodeDirEnt(data)
		if de.Inum == common.NULLINUM {
			continue
		}
		if de.Name == name {
			return de.Inum, nil
		}
	}
	return common.NULLINUM, common.ErrNotFound
}

// AddName inserts an entry at the lowest free slot, extending the
// directory by one entry when no tombstone is available.
func (dip *Inode) AddName(name string, inum common.Inum) error {
	if dip.Kind != common.DIR {
		return common.ErrNotDir
	}
	if !IsValidName(name) {
		return common.ErrNameInvalid
	}
	_, err := dip.LookupName(name)
	if err == nil {
		return common.ErrExists
	}
	if err != common.ErrNotFound {
		return err
	}

	off := dip.Size
	for o := uint64(0); o < dip.Size; o += common.DIRENTSZ {
		data, err := dip.Read(o, common.DIRENTSZ)
		if err != nil {
			return err
		}
		if decodeDirEnt(data).Inum == common.NULLINUM {
			off = o
			break
		}
	}
	ent := encodeDirEnt(&DirEnt{Name: name, Inum: inum})
	util.DPrintf(5, "AddName # %d: %s -> %d off %d\n", dip.Inum, name, inum, off)
	n, err := dip.Write(off, ent)
	if err != nil {
		return err
	}
	if n != common.DIRENTSZ {
		return common.ErrIO
	}
	return nil
}

// ListNames returns the live entries in on-medium order.
func (dip *Inode) ListNames() ([]DirEnt, error) {
	if dip.Kind != common.DIR {
		return nil, common.ErrNotDir
	}
	var ents []DirEnt
	for off := uint64(0); off < dip.Size; off += common.DIRENTSZ {
		data, err := dip.Read(off, common.DIRENTSZ)
		if err != nil {
			return nil, err
		}
		de := decodeDirEnt(data)
		if de.Inum == common.NULLINUM {
			continue
		}
		ents = append(ents, *de)
	}
	return ents, nil
}

// InitDir writes the "." and ".." entries every directory starts with.
// The root's ".." points back at the root itself.
func (dip *Inode) InitDir(parent common.Inum) error {
	if err := dip.AddName(".", dip.Inum); err != nil {
		return err
	}
	return dip.AddName("..", parent)
}
