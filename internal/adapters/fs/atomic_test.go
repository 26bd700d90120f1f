package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/coman/internal/adapters/fs"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "file.txt")

	require.NoError(t, fs.WriteFileAtomic(path, []byte("one"), 0o644))
	require.NoError(t, fs.WriteFileAtomic(path, []byte("two"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	assert.True(t, fs.Exists(path))
	assert.False(t, fs.Exists(filepath.Join(dir, "missing")))
}

func TestWriteFileAtomic_UnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	err := fs.WriteFileAtomic(filepath.Join(blocker, "file"), []byte("x"), 0o644)
	assert.Error(t, err)
}
