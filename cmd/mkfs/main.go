package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mit-pdos/go-slowfs/device"
	"github.com/mit-pdos/go-slowfs/fs"
	"github.com/mit-pdos/go-slowfs/util"
)

func main() {
	var diskfile string
	flag.StringVar(&diskfile, "disk", "", "disk image to format")

	var size uint64
	flag.Uint64Var(&size, "size", 64, "size of the image (in 4KB blocks)")

	flag.Uint64Var(&util.Debug, "debug", 0, "debug level (higher is more verbose)")
	flag.Parse()

	if diskfile == "" {
		fmt.Fprintln(os.Stderr, "mkfs: -disk is required")
		os.Exit(1)
	}

	d, err := device.NewFileDisk(diskfile, size)
	if err != nil {
		panic(fmt.Errorf("mkfs: open %s: %w", diskfile, err))
	}
	fsys, err := fs.Mkfs(d)
	if err != nil {
		panic(fmt.Errorf("mkfs: format: %w", err))
	}

	sb := fsys.Super
	fmt.Printf("%s: %d blocks, %d inodes, data at block %d (%d blocks free)\n",
		diskfile, sb.NBlocks, sb.NInodes, sb.DataStart, sb.NumFreeBlocks())

	if err := fsys.Close(); err != nil {
		panic(err)
	}
}
