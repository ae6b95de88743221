package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSaveDocumentNaming(t *testing.T) {
	store := newStore(t)

	path, err := store.SaveDocument("photo", "My Face.JPG", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)

	name := filepath.Base(path)
	require.True(t, strings.HasPrefix(name, "photo-"))
	require.True(t, strings.HasSuffix(name, ".jpg"), "extension should be lowercased: %s", name)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes", string(data))
}

func TestSaveDocumentCollisionFree(t *testing.T) {
	store := newStore(t)

	first, err := store.SaveDocument("photo", "face.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := store.SaveDocument("photo", "face.jpg", strings.NewReader("b"))
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestSaveArtifactOverwrites(t *testing.T) {
	store := newStore(t)

	first, err := store.SaveArtifact(AdmitCardDir, "admitcard-1.pdf", []byte("v1"))
	require.NoError(t, err)
	second, err := store.SaveArtifact(AdmitCardDir, "admitcard-1.pdf", []byte("v2"))
	require.NoError(t, err)
	require.Equal(t, first, second)

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, "v2", string(data))
}

func TestRemoveRefusesPathsOutsideRoot(t *testing.T) {
	store := newStore(t)

	outside, err := os.CreateTemp(t.TempDir(), "outside-*")
	require.NoError(t, err)
	require.NoError(t, outside.Close())

	require.Error(t, store.Remove(outside.Name()))
	require.Error(t, store.Remove(filepath.Join(store.Root(), "..", "escape")))

	path, err := store.SaveDocument("photo", "face.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	require.NoError(t, store.Remove(path))
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestRemoveMissingFileIsNoError(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Remove(filepath.Join(store.Root(), "never-existed.pdf")))
}
