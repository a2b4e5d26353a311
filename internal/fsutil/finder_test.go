package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/braceval/internal/fsutil"
)

func TestFindFilesByExtension(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))

	for _, name := range []string{
		filepath.Join(dir, "b.tmpl"),
		filepath.Join(dir, "a.tmpl"),
		filepath.Join(dir, "skip.txt"),
		filepath.Join(sub, "c.tmpl"),
	} {
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
	}

	files, err := fsutil.FindFilesByExtension(dir, ".tmpl")
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.tmpl"),
		filepath.Join(dir, "b.tmpl"),
		filepath.Join(sub, "c.tmpl"),
	}, files)
}

func TestFindFilesByExtension_EmptyExtension(t *testing.T) {
	_, err := fsutil.FindFilesByExtension(t.TempDir(), "")
	require.Error(t, err)
}

func TestFindFilesByExtension_MissingRoot(t *testing.T) {
	_, err := fsutil.FindFilesByExtension(filepath.Join(t.TempDir(), "absent"), ".tmpl")
	require.Error(t, err)
}
