package fefs_test

import (
	"testing"

	"github.com/NotYetOS/fefs"
	"github.com/NotYetOS/fefs/internal/memdev"
	"github.com/stretchr/testify/require"
)

func newTestVolume(t *testing.T) *fefs.FileSystem {
	t.Helper()
	dev := memdev.New(fefs.BlockSize)
	return fefs.Create(dev, fefs.BlockSize, 4)
}

func TestFATAllocSizesChainCorrectly(t *testing.T) {
	fs := newTestVolume(t)
	root := fs.Root()

	f, err := root.CreateFile("a")
	require.NoError(t, err)

	// One cluster holds sectorPerCluster*BlockSize == 4*512 == 2048 bytes.
	require.NoError(t, f.Write(make([]byte, 5000), fefs.OverWritten))
	require.EqualValues(t, 5000, f.Size())
}

func TestFATDeallocRecyclesClusters(t *testing.T) {
	fs := newTestVolume(t)
	root := fs.Root()

	f1, err := root.CreateFile("f1")
	require.NoError(t, err)
	require.NoError(t, f1.Write(make([]byte, 2048), fefs.OverWritten))

	require.NoError(t, root.Delete("f1"))

	f2, err := root.CreateFile("f2")
	require.NoError(t, err)
	require.NoError(t, f2.Write(make([]byte, 2048), fefs.OverWritten))
	require.EqualValues(t, 2048, f2.Size())
}

func TestFATIncreaseExtendsChain(t *testing.T) {
	fs := newTestVolume(t)
	root := fs.Root()

	f, err := root.CreateFile("grow")
	require.NoError(t, err)
	require.NoError(t, f.Write(make([]byte, 100), fefs.OverWritten))
	require.NoError(t, f.Write(make([]byte, 5000), fefs.Append))
	require.EqualValues(t, 5100, f.Size())

	reopened, err := root.OpenFile("grow")
	require.NoError(t, err)
	require.EqualValues(t, 5100, reopened.Size())
}
