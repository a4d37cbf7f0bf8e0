package fefs

import (
	"github.com/sirupsen/logrus"
)

// FileSystem is the mounted volume handle: it owns a device and a cached
// superblock, and yields the root DirEntry (spec.md §4.7). One FileSystem
// should be constructed per open volume; the FATManager and
// BlockCacheManager it owns are safe for concurrent use by operations
// derived from it.
type FileSystem struct {
	device BlockDevice
	cache  *BlockCacheManager
	fat    *FATManager
	sblock SuperBlock
	log    *logrus.Logger
}

// SetLogger attaches a logger used for trace/debug/warn/error lines emitted
// by filesystem operations. A nil logger (the default) disables logging.
func (fs *FileSystem) SetLogger(log *logrus.Logger) {
	fs.log = log
	fs.cache.log = fs
	fs.fat.log = fs
	lastMountLog = log
}

// Create formats a brand-new volume on device: it writes a superblock with
// sector_per_fat = sector_per_cluster*2 and root_cluster = 2, seeds the FAT
// (spec.md §4.7, §6), and returns a handle mounting it. An optional logger
// (at most one is used) receives trace/debug/warn/error lines for the new
// handle, the same as a later call to SetLogger.
func Create(device BlockDevice, bytePerSector, sectorPerCluster uint32, log ...*logrus.Logger) *FileSystem {
	sblock := SuperBlock{
		Magic:            fefsMagic,
		BytePerSector:    bytePerSector,
		SectorPerCluster: sectorPerCluster,
		SectorPerFAT:     sectorPerCluster * 2,
		RootCluster:      2,
	}
	cache := NewBlockCacheManager(device)

	seedFAT(cache, &sblock)

	h := cache.Get(0)
	h.Modify(0, superBlockSize, func(b []byte) { sblock.Marshal(b) })
	h.Release()
	cache.SyncAll()

	fs := &FileSystem{
		device: device,
		cache:  cache,
		sblock: sblock,
	}
	fs.fat = NewFATManager(fs.cache, &fs.sblock)
	if len(log) > 0 {
		fs.SetLogger(log[0])
	}
	return fs
}

// Open loads and validates the superblock of an existing volume and mounts
// it (spec.md §4.7). It panics if the magic does not match — a corrupt
// superblock is a structural failure with no recovery strategy (spec.md §7).
// An optional logger (at most one is used) is attached before validation, so
// a rejected superblock is logged at error level before the panic.
func Open(device BlockDevice, log ...*logrus.Logger) *FileSystem {
	cache := NewBlockCacheManager(device)
	var sblock SuperBlock
	h := cache.Get(0)
	h.Read(0, superBlockSize, func(b []byte) { sblock.Unmarshal(b) })
	h.Release()

	fs := &FileSystem{
		device: device,
		cache:  cache,
		sblock: sblock,
	}
	fs.fat = NewFATManager(fs.cache, &fs.sblock)
	if len(log) > 0 {
		fs.SetLogger(log[0])
	}

	if !sblock.Valid() {
		fs.logerror("fefs: not a FEFS volume: bad magic", logrus.Fields{"magic": sblock.Magic})
		panic("fefs: not a FEFS volume: bad magic")
	}
	if sblock.BytePerSector != BlockSize {
		fs.logerror("fefs: byte_per_sector mismatch", logrus.Fields{"byte_per_sector": sblock.BytePerSector})
		panic("fefs: byte_per_sector mismatch")
	}
	if sblock.SectorPerFAT < 1 {
		fs.logerror("fefs: invalid sector_per_fat", logrus.Fields{"sector_per_fat": sblock.SectorPerFAT})
		panic("fefs: invalid sector_per_fat")
	}
	if sblock.RootCluster < 2 {
		fs.logerror("fefs: invalid root_cluster", logrus.Fields{"root_cluster": sblock.RootCluster})
		panic("fefs: invalid root_cluster")
	}

	return fs
}

// Root returns a DirEntry over the root directory's cluster chain.
func (fs *FileSystem) Root() *DirEntry {
	fs.trace("fs:root", logrus.Fields{"root_cluster": fs.sblock.RootCluster})
	return &DirEntry{
		fs:       fs,
		clusters: fs.fat.ReadChain(fs.sblock.RootCluster),
	}
}

// Sync flushes every dirty cached block to the device immediately.
func (fs *FileSystem) Sync() {
	fs.cache.SyncAll()
}

// SuperBlock returns a copy of the mounted volume's superblock, mainly for
// diagnostics and tests.
func (fs *FileSystem) SuperBlock() SuperBlock {
	return fs.sblock
}
