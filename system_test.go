package fefs_test

import (
	"testing"

	"github.com/NotYetOS/fefs"
	"github.com/NotYetOS/fefs/internal/memdev"
	"github.com/stretchr/testify/require"
)

func TestCreateThenOpenRoundTrip(t *testing.T) {
	dev := memdev.New(fefs.BlockSize)
	fs := fefs.Create(dev, fefs.BlockSize, 4)

	root := fs.Root()
	_, err := root.CreateFile("persisted.txt")
	require.NoError(t, err)
	fs.Sync()

	reopened := fefs.Open(dev)
	sb := reopened.SuperBlock()
	require.True(t, sb.Valid())
	require.EqualValues(t, 4, sb.SectorPerCluster)

	_, err = reopened.Root().OpenFile("persisted.txt")
	require.NoError(t, err)
}

func TestOpenPanicsOnBadMagic(t *testing.T) {
	dev := memdev.New(fefs.BlockSize)
	// Never formatted: the superblock sector is all zeros, so Magic won't
	// match and Open must refuse to mount it.
	require.Panics(t, func() { fefs.Open(dev) })
}
