package fefs_test

import (
	"sync"
	"testing"

	"github.com/NotYetOS/fefs"
	"github.com/NotYetOS/fefs/internal/memdev"
	"github.com/stretchr/testify/require"
)

func TestCacheReadWriteRoundTrip(t *testing.T) {
	dev := memdev.New(fefs.BlockSize)
	mgr := fefs.NewBlockCacheManager(dev)

	h := mgr.Get(0)
	h.Modify(0, 5, func(b []byte) { copy(b, "hello") })
	h.Release()

	h2 := mgr.Get(0)
	var got string
	h2.Read(0, 5, func(b []byte) { got = string(b) })
	h2.Release()

	require.Equal(t, "hello", got)
}

func TestCacheSurvivesEviction(t *testing.T) {
	dev := memdev.New(fefs.BlockSize)
	mgr := fefs.NewBlockCacheManager(dev)

	// Touch more addresses than CacheSize to force eviction, then confirm
	// every write is still observable once re-fetched from the device.
	for i := int64(0); i < fefs.CacheSize*2; i++ {
		addr := i * fefs.BlockSize
		h := mgr.Get(addr)
		h.Modify(0, 8, func(b []byte) { b[0] = byte(i) })
		h.Release()
	}

	for i := int64(0); i < fefs.CacheSize*2; i++ {
		addr := i * fefs.BlockSize
		h := mgr.Get(addr)
		var got byte
		h.Read(0, 1, func(b []byte) { got = b[0] })
		h.Release()
		require.Equal(t, byte(i), got, "address %d", addr)
	}
}

func TestCacheConcurrentGetCoalesces(t *testing.T) {
	dev := memdev.New(fefs.BlockSize)
	mgr := fefs.NewBlockCacheManager(dev)

	const addr = 4096
	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			h := mgr.Get(addr)
			h.Modify(0, 1, func(b []byte) { b[0]++ })
			h.Release()
		}(i)
	}
	wg.Wait()

	h := mgr.Get(addr)
	var got byte
	h.Read(0, 1, func(b []byte) { got = b[0] })
	h.Release()
	require.Equal(t, byte(n), got, "every concurrent Get must observe the shared entry")
}

func TestCacheSyncAllFlushesDirtyBlocks(t *testing.T) {
	dev := memdev.New(fefs.BlockSize)
	mgr := fefs.NewBlockCacheManager(dev)

	h := mgr.Get(0)
	h.Modify(0, 4, func(b []byte) { copy(b, "sync") })
	mgr.SyncAll()
	// Release after SyncAll: the block was already written back, so a
	// fresh device read (bypassing the cache) must already see it.
	h.Release()

	buf := make([]byte, fefs.BlockSize)
	dev.ReadBlock(0, buf)
	require.Equal(t, "sync", string(buf[:4]))
}
