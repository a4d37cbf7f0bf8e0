package main

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/NotYetOS/fefs"
	"github.com/NotYetOS/fefs/internal/gpt"
	"github.com/NotYetOS/fefs/internal/loopdev"
	"github.com/NotYetOS/fefs/internal/mbr"
)

// partitionOffset reads the MBR partition table of --disk (the GPT one when
// --gpt is set) and returns the byte offset of the requested partition. The
// scheme is not detected from the image. flagPartition < 0
// means "no partition table, the FEFS volume owns the whole image".
func partitionOffset(diskPath string) (int64, error) {
	if flagPartition < 0 {
		return 0, nil
	}

	f, err := os.Open(diskPath)
	if err != nil {
		return 0, fmt.Errorf("fefsctl: open %s: %w", diskPath, err)
	}
	defer f.Close()

	if flagGPT {
		headerSector := make([]byte, 512)
		if _, err := f.ReadAt(headerSector, 512); err != nil {
			return 0, fmt.Errorf("fefsctl: read gpt header: %w", err)
		}
		h, err := gpt.ToHeader(headerSector)
		if err != nil || h.Signature() != gpt.GPTSignature {
			return 0, fmt.Errorf("fefsctl: %s does not have a GPT partition table", diskPath)
		}
		entriesLBA := h.PartitionEntryLBA()
		entryCount := int(h.NumberOfPartitionEntries())
		entrySize := int(h.SizeOfPartitionEntry())
		entries := make([]byte, entryCount*entrySize)
		if _, err := f.ReadAt(entries, entriesLBA*512); err != nil {
			return 0, fmt.Errorf("fefsctl: read gpt partition entries: %w", err)
		}
		first, _, ok := gpt.LocatePartition(headerSector, entries, flagPartition)
		if !ok {
			return 0, fmt.Errorf("fefsctl: no GPT partition at index %d", flagPartition)
		}
		return first * 512, nil
	}

	sector := make([]byte, 512)
	if _, err := f.ReadAt(sector, 0); err != nil {
		return 0, fmt.Errorf("fefsctl: read boot sector: %w", err)
	}
	startLBA, _, ok := mbr.LocatePartition(sector, flagPartition)
	if !ok {
		return 0, fmt.Errorf("fefsctl: no MBR partition at index %d", flagPartition)
	}
	return int64(startLBA) * 512, nil
}

// openVolume mounts an existing FEFS volume found on --disk.
func openVolume() (*fefs.FileSystem, error) {
	if flagDisk == "" {
		return nil, fmt.Errorf("fefsctl: --disk is required")
	}
	base, err := partitionOffset(flagDisk)
	if err != nil {
		return nil, err
	}
	dev, err := loopdev.Open(flagDisk, fefs.BlockSize, 0, base)
	if err != nil {
		return nil, err
	}
	fs := fefs.Open(dev, log)
	return fs, nil
}

// resolveDir walks dirPath ("/a/b/c") from fs's root and returns the
// directory it names. An empty or "/" path returns the root itself.
func resolveDir(fs *fefs.FileSystem, dirPath string) (*fefs.DirEntry, error) {
	dir := fs.Root()
	dirPath = strings.Trim(path.Clean("/"+dirPath), "/")
	if dirPath == "" {
		return dir, nil
	}
	for _, part := range strings.Split(dirPath, "/") {
		next, err := dir.Cd(part)
		if err != nil {
			return nil, fmt.Errorf("fefsctl: %s: %w", part, err)
		}
		dir = next
	}
	return dir, nil
}

// splitPath resolves the directory component of p and returns it alongside
// p's final path element.
func splitPath(fs *fefs.FileSystem, p string) (*fefs.DirEntry, string, error) {
	dirPath, name := path.Split(path.Clean("/" + p))
	if name == "" || name == "/" {
		return nil, "", fmt.Errorf("fefsctl: %q does not name an entry", p)
	}
	dir, err := resolveDir(fs, dirPath)
	if err != nil {
		return nil, "", err
	}
	return dir, name, nil
}
