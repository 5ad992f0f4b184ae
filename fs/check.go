package fs

import (
	"fmt"

	"github.com/mit-pdos/go-slowfs/common"
	"github.com/mit-pdos/go-slowfs/inode"
)

// Check walks the whole volume and verifies its structural invariants:
// bitmap/inode agreement, direct pointers landing on allocated data
// blocks with no double references, and well-formed directories. It
// reports the first violation found.
func (fsys *FileSys) Check() error {
	sb := fsys.Super
	seen := make(map[common.Bnum]common.Inum)
	for i := common.Inum(1); uint64(i) < sb.NInodes; i++ {
		rec, err := sb.ReadInum(i)
		if err != nil {
			return err
		}
		ip := inode.Decode(sb, i, rec)
		alloc := sb.InumAllocated(i)
		if alloc != (ip.Kind != common.FREE) {
			return fmt.Errorf("inode %d: bitmap %v but kind %v", i, alloc, ip.Kind)
		}
		if !alloc {
			continue
		}
		if ip.Nlink < 1 {
			return fmt.Errorf("inode %d: allocated with link count 0", i)
		}
		for j, bn := range ip.Direct {
			if bn == common.NULLBNUM {
				continue
			}
			if !sb.BnumAllocated(bn) {
				return fmt.Errorf("inode %d: direct[%d] = %d outside allocated data", i, j, bn)
			}
			if other, ok := seen[bn]; ok {
				return fmt.Errorf("block %d referenced by inodes %d and %d", bn, other, i)
			}
			seen[bn] = i
		}
		if ip.Kind == common.DIR {
			if err := fsys.checkDir(i); err != nil {
				return err
			}
		}
	}
	return nil
}

func (fsys *FileSys) checkDir(inum common.Inum) error {
	dip, err := fsys.GetInode(inum)
	if err != nil {
		return err
	}
	if dip.Size%common.DIRENTSZ != 0 {
		return fmt.Errorf("dir %d: size %d not a multiple of %d", inum, dip.Size, common.DIRENTSZ)
	}
	ents, err := dip.ListNames()
	if err != nil {
		return err
	}
	if len(ents) < 2 || ents[0].Name != "." || ents[1].Name != ".." {
		return fmt.Errorf("dir %d: missing . and .. entries", inum)
	}
	if ents[0].Inum != inum {
		return fmt.Errorf("dir %d: . points at %d", inum, ents[0].Inum)
	}
	names := make(map[string]bool)
	for _, de := range ents {
		if names[de.Name] {
			return fmt.Errorf("dir %d: duplicate entry %q", inum, de.Name)
		}
		names[de.Name] = true
	}
	return nil
}
