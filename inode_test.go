package fefs_test

import (
	"testing"

	"github.com/NotYetOS/fefs"
	"github.com/stretchr/testify/require"
)

func TestInodeMarshalRoundTrip(t *testing.T) {
	var in fefs.Inode
	in.Type = fefs.TypeFile
	copy(in.Name[:], "report.txt")
	in.NameLen = uint8(len("report.txt"))
	in.SizeLo = 1234
	in.Cluster = 7
	in.PreCluster = 2

	buf := make([]byte, 64)
	in.Marshal(buf)

	var out fefs.Inode
	out.Unmarshal(buf)

	require.Equal(t, in.Type, out.Type)
	require.Equal(t, "report.txt", out.Name())
	require.EqualValues(t, 1234, out.SizeLo)
	require.EqualValues(t, 7, out.ClusterNum())
	require.EqualValues(t, 2, out.PreCluster)
}

func TestInodeNonePredicate(t *testing.T) {
	var in fefs.Inode
	require.True(t, in.IsNone())
	require.False(t, in.IsValid())

	in.Type = fefs.TypeDir
	require.True(t, in.IsDir())
	require.True(t, in.IsValid())
}

func TestInodeNamePanicsOnCorruptUTF8(t *testing.T) {
	var in fefs.Inode
	in.Type = fefs.TypeFile
	in.Name[0] = 0xff // invalid utf-8 lead byte
	in.NameLen = 1

	require.Panics(t, func() { in.Name() })
}
