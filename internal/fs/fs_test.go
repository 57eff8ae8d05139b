package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: {}\n"), 0o600))

	f, err := GetFile(path)
	require.NoError(t, err)
	f.Close()

	_, err = GetFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestGetFilesWithExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yml", "b.yaml", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	files, err := GetFilesWithExtension(dir, ".yml", ".yaml")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestEnsureParentDir(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "data", "nested", "scriptshield.db")

	require.NoError(t, EnsureParentDir(target))
	assert.True(t, DirExists(filepath.Dir(target)))
	assert.False(t, FileExists(target))
}
