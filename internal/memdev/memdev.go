// Package memdev implements an in-memory fefs.BlockDevice, adapted from the
// BlockMap fixture used by the teacher's own fuse/FAT test suites: a plain
// map keyed by block index instead of a backing file. It is used by fefs's
// tests.
package memdev

import "fmt"

// Device is an in-memory block device. Construct it with New; the zero value
// has no block size and no block map, so its methods panic.
type Device struct {
	blockSize int
	blocks    map[int64][]byte
}

// New returns a Device with the given block size.
func New(blockSize int) *Device {
	return &Device{
		blockSize: blockSize,
		blocks:    make(map[int64][]byte),
	}
}

// BlockSize returns the device's fixed block size.
func (d *Device) BlockSize() int { return d.blockSize }

// ReadBlock fills buf from the block at byte address addr, which must be a
// multiple of the device's block size.
func (d *Device) ReadBlock(addr int64, buf []byte) {
	if len(buf) != d.blockSize {
		panic(fmt.Sprintf("memdev: buf length %d != block size %d", len(buf), d.blockSize))
	}
	idx := addr / int64(d.blockSize)
	if block, ok := d.blocks[idx]; ok {
		copy(buf, block)
		return
	}
	for i := range buf {
		buf[i] = 0
	}
}

// WriteBlock persists buf to the block at byte address addr.
func (d *Device) WriteBlock(addr int64, buf []byte) {
	if len(buf) != d.blockSize {
		panic(fmt.Sprintf("memdev: buf length %d != block size %d", len(buf), d.blockSize))
	}
	idx := addr / int64(d.blockSize)
	block := make([]byte, d.blockSize)
	copy(block, buf)
	d.blocks[idx] = block
}
