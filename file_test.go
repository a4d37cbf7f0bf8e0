package fefs_test

import (
	"testing"

	"github.com/NotYetOS/fefs"
	"github.com/stretchr/testify/require"
)

func TestFileWriteOverwriteThenRead(t *testing.T) {
	fs := newTestVolume(t)
	root := fs.Root()

	f, err := root.CreateFile("greeting.txt")
	require.NoError(t, err)
	require.NoError(t, f.Write([]byte("hello, fefs"), fefs.OverWritten))

	reopened, err := root.OpenFile("greeting.txt")
	require.NoError(t, err)
	buf := make([]byte, reopened.Size())
	n, err := reopened.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "hello, fefs", string(buf[:n]))
}

func TestFileOverwriteReplacesPriorContents(t *testing.T) {
	fs := newTestVolume(t)
	root := fs.Root()

	f, err := root.CreateFile("f")
	require.NoError(t, err)
	require.NoError(t, f.Write([]byte("first contents, quite long indeed"), fefs.OverWritten))
	require.NoError(t, f.Write([]byte("second"), fefs.OverWritten))

	require.EqualValues(t, len("second"), f.Size())
	var buf []byte
	_, err = f.ReadToVec(&buf)
	require.NoError(t, err)
	require.Equal(t, "second", string(buf))
}

func TestFileAppendAcrossClusterBoundary(t *testing.T) {
	fs := newTestVolume(t)
	root := fs.Root()

	f, err := root.CreateFile("grown")
	require.NoError(t, err)

	// sectorPerCluster=4, BlockSize=512 -> one cluster is 2048 bytes.
	first := make([]byte, 1500)
	for i := range first {
		first[i] = 'a'
	}
	require.NoError(t, f.Write(first, fefs.OverWritten))

	second := make([]byte, 3000) // forces the partial-sector + new-cluster path
	for i := range second {
		second[i] = 'b'
	}
	require.NoError(t, f.Write(second, fefs.Append))

	require.EqualValues(t, len(first)+len(second), f.Size())

	require.NoError(t, f.Seek(0))
	var got []byte
	_, err = f.ReadToVec(&got)
	require.NoError(t, err)
	require.Len(t, got, len(first)+len(second))
	require.Equal(t, first, got[:len(first)])
	require.Equal(t, second, got[len(first):])
}

func TestFileSeekRejectsPastEnd(t *testing.T) {
	fs := newTestVolume(t)
	root := fs.Root()

	f, err := root.CreateFile("short")
	require.NoError(t, err)
	require.NoError(t, f.Write([]byte("abc"), fefs.OverWritten))

	require.ErrorIs(t, f.Seek(100), fefs.SeekValueOverFlow)
}

func TestFileReadRespectsSeekAndSize(t *testing.T) {
	fs := newTestVolume(t)
	root := fs.Root()

	f, err := root.CreateFile("partial")
	require.NoError(t, err)
	require.NoError(t, f.Write([]byte("0123456789"), fefs.OverWritten))
	require.NoError(t, f.Seek(5))

	buf := make([]byte, 10)
	n, err := f.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "56789", string(buf[:n]))
}
