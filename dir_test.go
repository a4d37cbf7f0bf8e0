package fefs_test

import (
	"testing"

	"github.com/NotYetOS/fefs"
	"github.com/stretchr/testify/require"
)

func TestMkdirAndCd(t *testing.T) {
	fs := newTestVolume(t)
	root := fs.Root()

	sub, err := root.Mkdir("docs")
	require.NoError(t, err)
	require.NotNil(t, sub)

	got, err := root.Cd("docs")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestMkdirRejectsDuplicateAndIllegalNames(t *testing.T) {
	fs := newTestVolume(t)
	root := fs.Root()

	_, err := root.Mkdir("dup")
	require.NoError(t, err)
	_, err = root.Mkdir("dup")
	require.ErrorIs(t, err, fefs.DirExist)

	_, err = root.Mkdir("bad/name")
	require.ErrorIs(t, err, fefs.IllegalChar)
}

func TestCreateFileRejectsDuplicateName(t *testing.T) {
	fs := newTestVolume(t)
	root := fs.Root()

	_, err := root.CreateFile("a.txt")
	require.NoError(t, err)
	_, err = root.CreateFile("a.txt")
	require.ErrorIs(t, err, fefs.FileExist)
}

func TestLsListsCreatedEntries(t *testing.T) {
	fs := newTestVolume(t)
	root := fs.Root()

	_, err := root.Mkdir("dirA")
	require.NoError(t, err)
	_, err = root.CreateFile("fileA")
	require.NoError(t, err)

	names := map[string]bool{}
	for _, e := range root.Ls() {
		names[e.Name()] = true
	}
	require.True(t, names["dirA"])
	require.True(t, names["fileA"])
}

func TestDeleteFileFreesName(t *testing.T) {
	fs := newTestVolume(t)
	root := fs.Root()

	_, err := root.CreateFile("temp")
	require.NoError(t, err)
	require.NoError(t, root.Delete("temp"))

	_, err = root.OpenFile("temp")
	require.ErrorIs(t, err, fefs.NotFoundFile)

	// The slot should be reusable: re-creating it must not collide.
	_, err = root.CreateFile("temp")
	require.NoError(t, err)
}

func TestDeleteDirectoryRecursesIntoContents(t *testing.T) {
	fs := newTestVolume(t)
	root := fs.Root()

	sub, err := root.Mkdir("parent")
	require.NoError(t, err)
	_, err = sub.CreateFile("child.txt")
	require.NoError(t, err)
	childSub, err := sub.Mkdir("childdir")
	require.NoError(t, err)
	_, err = childSub.CreateFile("grandchild.txt")
	require.NoError(t, err)

	require.NoError(t, root.Delete("parent"))
	_, err = root.Cd("parent")
	require.ErrorIs(t, err, fefs.NotFoundDir)
}

func TestDeleteUnknownNameReturnsNotFound(t *testing.T) {
	fs := newTestVolume(t)
	root := fs.Root()
	require.ErrorIs(t, root.Delete("ghost"), fefs.NotFound)
}
