package fefs

import (
	"encoding/binary"
	"sync"

	"github.com/sirupsen/logrus"
)

// FAT entry sentinel values (spec.md §3, §6).
const (
	fatFree uint32 = 0x00000000
	fatEOC  uint32 = 0x0FFFFFFF
)

// FATManager is the cluster allocator: one instance per mounted filesystem.
// It scans the on-disk FAT region for free slots, maintains a LIFO of
// recently-deallocated clusters, and serves alloc/read/increase/dealloc to
// the directory and file layers. All public methods are safe for concurrent
// use; the lock order is FATManager → BlockCacheManager → block mutex
// (spec.md §5), so FATManager never calls into the cache manager while
// holding a block's mutex.
type FATManager struct {
	mu       sync.Mutex
	cache    *BlockCacheManager
	sblock   *SuperBlock
	fatAddr  int64
	cursor   uint32 // next FAT slot to probe for a free entry
	end      uint32 // exclusive upper bound on cluster numbers
	recycled []uint32
	log      *FileSystem // optional, for tracing; nil is fine
}

// NewFATManager constructs a manager over an already-initialized FAT region.
func NewFATManager(cache *BlockCacheManager, sblock *SuperBlock) *FATManager {
	fatAddr := sblock.Fat()
	end := (sblock.RootCluster*sblock.SectorPerCluster*sblock.BytePerSector - uint32(fatAddr)) / 4
	return &FATManager{
		cache:   cache,
		sblock:  sblock,
		fatAddr: fatAddr,
		cursor:  sblock.RootCluster, // clusters 0 and 1 are never scanned; root_cluster's pre-seeded slot reads non-free and is skipped
		end:     end,
	}
}

// fatBlockOffset returns the (block address, offset within block) holding
// the FAT entry for cluster, given the byte address where the FAT begins.
func fatBlockOffset(fatAddr int64, cluster uint32) (int64, int) {
	loc := int64(cluster) * 4
	blockLoc := loc / BlockSize * BlockSize
	return fatAddr + blockLoc, int(loc % BlockSize)
}

func (f *FATManager) readEntryLocked(cluster uint32) uint32 {
	addr, off := fatBlockOffset(f.fatAddr, cluster)
	h := f.cache.Get(addr)
	defer h.Release()
	var v uint32
	h.Read(off, 4, func(b []byte) {
		v = binary.LittleEndian.Uint32(b)
	})
	return v
}

func (f *FATManager) writeEntryLocked(cluster, value uint32) {
	addr, off := fatBlockOffset(f.fatAddr, cluster)
	h := f.cache.Get(addr)
	defer h.Release()
	h.Modify(off, 4, func(b []byte) {
		binary.LittleEndian.PutUint32(b, value)
	})
}

// nextFreeLocked advances the cursor until it finds a free (0x00000000) FAT
// slot, or returns false if the FAT region is exhausted.
func (f *FATManager) nextFreeLocked() (uint32, bool) {
	for f.cursor < f.end {
		c := f.cursor
		f.cursor++
		if f.readEntryLocked(c) == fatFree {
			return c, true
		}
	}
	return 0, false
}

func numClustersFor(sizeBytes int, spc, bps uint32) uint32 {
	if sizeBytes <= 0 {
		return 1 // a chain must always be non-empty
	}
	clusterBytes := int(spc) * int(bps)
	n := sizeBytes / clusterBytes
	if sizeBytes%clusterBytes != 0 {
		n++
	}
	if n == 0 {
		n = 1
	}
	return uint32(n)
}

func (f *FATManager) acquireClusterLocked() uint32 {
	if n := len(f.recycled); n > 0 {
		c := f.recycled[n-1]
		f.recycled = f.recycled[:n-1]
		return c
	}
	c, ok := f.nextFreeLocked()
	if !ok {
		if f.log != nil {
			f.log.logerror("fefs: no cluster available", logrus.Fields{"end": f.end})
		}
		panic("fefs: no cluster available")
	}
	return c
}

// Alloc allocates and links a chain of ceil(sizeBytes/clusterBytes) clusters
// (at least one), terminated by fatEOC, and returns the chain in order.
func (f *FATManager) Alloc(sizeBytes int) []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := numClustersFor(sizeBytes, f.sblock.SectorPerCluster, f.sblock.BytePerSector)
	chain := make([]uint32, n)
	for i := range chain {
		chain[i] = f.acquireClusterLocked()
	}
	for i, c := range chain {
		if i != len(chain)-1 {
			f.writeEntryLocked(c, chain[i+1])
		} else {
			f.writeEntryLocked(c, fatEOC)
		}
	}
	return chain
}

// ReadChain walks the FAT starting at cluster until fatEOC, returning every
// cluster number visited, head first.
func (f *FATManager) ReadChain(cluster uint32) []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	chain := []uint32{cluster}
	for {
		next := f.readEntryLocked(cluster)
		if next == fatEOC {
			break
		}
		chain = append(chain, next)
		cluster = next
	}
	return chain
}

// Increase allocates a new chain sized for sizeBytes and splices it onto
// endCluster (expected to currently hold fatEOC), returning the new chain so
// the caller can append it to its in-memory view.
func (f *FATManager) Increase(endCluster uint32, sizeBytes int) []uint32 {
	f.mu.Lock()
	n := numClustersFor(sizeBytes, f.sblock.SectorPerCluster, f.sblock.BytePerSector)
	chain := make([]uint32, n)
	for i := range chain {
		chain[i] = f.acquireClusterLocked()
	}
	for i, c := range chain {
		if i != len(chain)-1 {
			f.writeEntryLocked(c, chain[i+1])
		} else {
			f.writeEntryLocked(c, fatEOC)
		}
	}
	f.writeEntryLocked(endCluster, chain[0])
	f.mu.Unlock()
	return chain
}

// Dealloc walks the chain from head, frees every slot, and pushes each
// cluster onto the recycled stack. Calling it on an already-freed chain is
// undefined behavior (caller contract, spec.md §4.3).
func (f *FATManager) Dealloc(head uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cluster := head
	n := 0
	for {
		next := f.readEntryLocked(cluster)
		f.writeEntryLocked(cluster, fatFree)
		f.recycled = append(f.recycled, cluster)
		n++
		if next == fatEOC {
			break
		}
		cluster = next
	}
	if f.log != nil {
		f.log.debugf("fefs: deallocated cluster chain", logrus.Fields{"head": head, "clusters": n})
	}
}

// seedFAT writes the initial poison/terminator pattern into a freshly
// created FAT region: clusters 0 and 1 are poisoned (never allocated) and
// root_cluster's slot is terminated (spec.md §3, §6).
func seedFAT(cache *BlockCacheManager, sblock *SuperBlock) {
	fatAddr := sblock.Fat()
	h := cache.Get(fatAddr)
	h.Modify(0, 8, func(b []byte) {
		binary.LittleEndian.PutUint32(b[0:4], 0xFFFFFFFF)
		binary.LittleEndian.PutUint32(b[4:8], 0xFFFFFFFF)
	})
	h.Release()

	rootAddr, rootOff := fatBlockOffset(fatAddr, sblock.RootCluster)
	h2 := cache.Get(rootAddr)
	h2.Modify(rootOff, 4, func(b []byte) {
		binary.LittleEndian.PutUint32(b, fatEOC)
	})
	h2.Release()
}
