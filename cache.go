package fefs

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// CacheSize is the bounded resident-set size of the block cache
// (BLOCK_CACHE_SIZE in spec.md §4.1).
const CacheSize = 16

// cacheEntry is one resident (address, block) pair. It is shareable: any
// number of Handles may reference it concurrently, serialized by mu.
type cacheEntry struct {
	mu      sync.Mutex
	addr    int64
	buf     [BlockSize]byte
	dirty   bool
	device  BlockDevice
	extRefs int32 // outstanding external Handles; 0 means "owned only by the cache"
	// unclaimed is true from the moment a fresh entry is inserted (still
	// under extRefs==0's protective +1, see Get) until the first caller
	// sharing that insertion's singleflight call converts the protective
	// ref into its own. It keeps the entry eviction-ineligible without
	// double-counting refs across every waiter on the same load.
	unclaimed bool
}

func (e *cacheEntry) syncLocked() {
	if e.dirty {
		e.device.WriteBlock(e.addr, e.buf[:])
		e.dirty = false
	}
}

// Handle is a shared, ref-counted view onto a cached block. Callers must
// call Release when done; Release syncs the block back to the device once
// the last outstanding Handle is released, mirroring the teacher's Drop-runs-
// sync semantics (spec.md §4.1, §9 "cyclic ownership").
type Handle struct {
	entry *cacheEntry
	mgr   *BlockCacheManager
}

// Read acquires the block's mutex, presents the byte window
// [offset:offset+length) to f, and returns once f returns. offset+length
// must not exceed BlockSize; violating this is a structural bug and panics.
func (h *Handle) Read(offset, length int, f func(block []byte)) {
	if offset < 0 || length < 0 || offset+length > BlockSize {
		panic(fmt.Sprintf("fefs: block read out of bounds: offset=%d length=%d", offset, length))
	}
	e := h.entry
	e.mu.Lock()
	defer e.mu.Unlock()
	f(e.buf[offset : offset+length])
}

// Modify is like Read but marks the block dirty before invoking f with a
// mutable view, so the eventual write-back picks up the change.
func (h *Handle) Modify(offset, length int, f func(block []byte)) {
	if offset < 0 || length < 0 || offset+length > BlockSize {
		panic(fmt.Sprintf("fefs: block modify out of bounds: offset=%d length=%d", offset, length))
	}
	e := h.entry
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dirty = true
	f(e.buf[offset : offset+length])
}

// Sync writes the block back to the device immediately if it is dirty.
func (h *Handle) Sync() {
	e := h.entry
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncLocked()
}

// Release gives up this Handle's claim on the block. Once the last
// outstanding Handle for an address is released the block becomes eligible
// for FIFO eviction, and is synced immediately so the data-on-device
// invariant holds even between eviction passes.
func (h *Handle) Release() {
	h.mgr.release(h.entry)
}

// BlockCacheManager mediates every access to the underlying device. At most
// one cacheEntry is resident per address (spec.md §4.1 invariant); eviction
// is FIFO among entries with no outstanding external Handle. Exhausting the
// cache while every entry is externally held is a fatal configuration error.
type BlockCacheManager struct {
	mu     sync.Mutex
	queue  []*cacheEntry // insertion order, FIFO
	byAddr map[int64]*cacheEntry
	device BlockDevice
	group  singleflight.Group // coalesces concurrent loads of the same addr
	log    *FileSystem        // optional, for tracing; nil is fine
}

// NewBlockCacheManager constructs a manager bound to device.
func NewBlockCacheManager(device BlockDevice) *BlockCacheManager {
	return &BlockCacheManager{
		byAddr: make(map[int64]*cacheEntry, CacheSize),
		device: device,
	}
}

// Get returns a Handle to the block at addr, loading it from the device on a
// miss. Concurrent misses on the same addr share a single device read via
// singleflight, so two goroutines racing to fault in the same block always
// end up sharing the one resident cacheEntry instead of each reading their
// own transient copy — a direct requirement for the cache-correctness
// invariant in spec.md §8 ("two interleaved get(addr) handles observe each
// other's modify writes immediately").
func (m *BlockCacheManager) Get(addr int64) *Handle {
	m.mu.Lock()
	if e, ok := m.byAddr[addr]; ok {
		e.extRefs++
		m.mu.Unlock()
		return &Handle{entry: e, mgr: m}
	}
	m.mu.Unlock()

	v, _, _ := m.group.Do(fmt.Sprintf("%d", addr), func() (interface{}, error) {
		m.mu.Lock()
		if e, ok := m.byAddr[addr]; ok {
			// Another racer inserted it between our miss and this call; the
			// uniform post-Do increment below claims a ref for every
			// goroutine sharing this result, so nothing is claimed here.
			m.mu.Unlock()
			return e, nil
		}
		m.mu.Unlock()

		e := &cacheEntry{addr: addr, device: m.device}
		m.device.ReadBlock(addr, e.buf[:])

		m.mu.Lock()
		defer m.mu.Unlock()
		if existing, ok := m.byAddr[addr]; ok {
			return existing, nil
		}
		m.evictIfFullLocked()
		// Pin the entry with a protective ref before it becomes visible in
		// byAddr/queue, so a concurrent Get on another address can never
		// evict it out from under the callers still waiting on this
		// singleflight load (group.Do shares this one insertion across
		// every goroutine racing on addr). unclaimed marks that ref as not
		// yet owned by any specific caller; the first caller to reach the
		// code below after Do returns takes it over instead of adding a
		// second ref, so N waiters end up with exactly N refs, not N+1.
		e.extRefs = 1
		e.unclaimed = true
		m.byAddr[addr] = e
		m.queue = append(m.queue, e)
		return e, nil
	})

	e := v.(*cacheEntry)
	m.mu.Lock()
	if e.unclaimed {
		e.unclaimed = false
	} else {
		e.extRefs++
	}
	m.mu.Unlock()
	return &Handle{entry: e, mgr: m}
}

// evictIfFullLocked must be called with m.mu held.
func (m *BlockCacheManager) evictIfFullLocked() {
	if len(m.queue) < CacheSize {
		return
	}
	for i, e := range m.queue {
		if e.extRefs == 0 {
			e.mu.Lock()
			e.syncLocked()
			e.mu.Unlock()
			delete(m.byAddr, e.addr)
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			if m.log != nil {
				m.log.debugf("fefs: evicted cache entry", logrus.Fields{"addr": e.addr})
			}
			return
		}
	}
	if m.log != nil {
		m.log.logerror("fefs: block cache exhausted", logrus.Fields{"cache_size": CacheSize})
	}
	panic("fefs: block cache exhausted: no cluster available for eviction")
}

func (m *BlockCacheManager) release(e *cacheEntry) {
	m.mu.Lock()
	e.extRefs--
	refs := e.extRefs
	m.mu.Unlock()
	if refs == 0 {
		e.mu.Lock()
		e.syncLocked()
		e.mu.Unlock()
	}
}

// SyncAll flushes every resident dirty block to the device. Used by
// FileSystem teardown helpers and tests; not part of the core algorithm.
func (m *BlockCacheManager) SyncAll() {
	m.mu.Lock()
	entries := make([]*cacheEntry, len(m.queue))
	copy(entries, m.queue)
	m.mu.Unlock()
	for _, e := range entries {
		e.mu.Lock()
		e.syncLocked()
		e.mu.Unlock()
	}
}
