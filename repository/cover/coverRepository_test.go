package coverrepo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	path, err := s.Save("cover.PNG", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(path, PublicPrefix))
	require.True(t, strings.HasSuffix(path, ".png"), "extension lowered: %s", path)

	on, err := os.ReadFile(filepath.Join(dir, filepath.Base(path)))
	require.NoError(t, err)
	require.Equal(t, "image-bytes", string(on))

	require.NoError(t, s.Remove(path))
	_, err = os.Stat(filepath.Join(dir, filepath.Base(path)))
	require.True(t, os.IsNotExist(err))
}

func TestRemove_IgnoresExternalAndMissing(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Remove("https://example.com/cover.png"))
	require.NoError(t, s.Remove(PublicPrefix+"never-existed.png"))
}

func TestOwned(t *testing.T) {
	require.True(t, Owned(PublicPrefix+"a.png"))
	require.False(t, Owned("https://example.com/a.png"))
	require.False(t, Owned(""))
}

func TestSave_UniqueNames(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	a, err := s.Save("x.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := s.Save("x.jpg", strings.NewReader("b"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
