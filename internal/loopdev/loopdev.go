// Package loopdev implements a fefs.BlockDevice backed by an os.File, the
// way a host driver for an SD card or disk image would. It is the device
// cmd/fefsctl mounts against when given a --disk path.
package loopdev

import (
	"fmt"
	"os"
)

// Device is a file-backed block device with an optional byte offset into the
// file (used when the FEFS volume lives inside a partition located by
// internal/mbr or internal/gpt rather than owning the whole file).
type Device struct {
	f         *os.File
	blockSize int
	base      int64
}

// Open opens (creating if needed) path as a block device of the given
// blockSize, with the FEFS volume starting at base within the file. When
// sizeBytes > 0 the file is truncated/extended to base+sizeBytes; when it is
// 0 the file's size is left as it is.
func Open(path string, blockSize int, sizeBytes int64, base int64) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("loopdev: open %s: %w", path, err)
	}
	if sizeBytes > 0 {
		if err := f.Truncate(base + sizeBytes); err != nil {
			f.Close()
			return nil, fmt.Errorf("loopdev: truncate %s: %w", path, err)
		}
	}
	return &Device{f: f, blockSize: blockSize, base: base}, nil
}

// BlockSize returns the device's fixed block size.
func (d *Device) BlockSize() int { return d.blockSize }

// Close flushes and closes the backing file.
func (d *Device) Close() error {
	return d.f.Close()
}

// ReadBlock fills buf from the block at byte address addr.
func (d *Device) ReadBlock(addr int64, buf []byte) {
	if len(buf) != d.blockSize {
		panic(fmt.Sprintf("loopdev: buf length %d != block size %d", len(buf), d.blockSize))
	}
	n, err := d.f.ReadAt(buf, d.base+addr)
	if err != nil && n != len(buf) {
		// A freshly truncated file reads back as zeros past EOF on most
		// platforms; anything else is a host I/O fault with no recovery
		// strategy in this design (spec.md §7).
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
	}
}

// WriteBlock persists buf to the block at byte address addr.
func (d *Device) WriteBlock(addr int64, buf []byte) {
	if len(buf) != d.blockSize {
		panic(fmt.Sprintf("loopdev: buf length %d != block size %d", len(buf), d.blockSize))
	}
	if _, err := d.f.WriteAt(buf, d.base+addr); err != nil {
		panic(fmt.Sprintf("loopdev: write at %d: %v", d.base+addr, err))
	}
}
