package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_WriteFileReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "task.yml")
	fs := NewFileStore()

	require.NoError(t, fs.WriteFile(path, []byte("first\n")))
	require.NoError(t, fs.WriteFile(path, []byte("second\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))

	// No temp files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_WriteFileMissingDir(t *testing.T) {
	fs := NewFileStore()

	err := fs.WriteFile(filepath.Join(t.TempDir(), "missing", "task.yml"), []byte("x"))
	assert.Error(t, err)
}

func TestFileStore_Remove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	fs := NewFileStore()

	require.NoError(t, fs.Remove(path))
	assert.NoFileExists(t, path)

	// Removing again is not an error.
	assert.NoError(t, fs.Remove(path))
}

func TestFileStore_Exists(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore()

	exists, err := fs.Exists(dir)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = fs.Exists(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIsDirAndIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "task.log")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	link := filepath.Join(dir, "linked")
	require.NoError(t, os.Symlink(dir, link))

	assert.True(t, IsDir(dir))
	assert.True(t, IsDir(link))
	assert.False(t, IsDir(file))
	assert.False(t, IsDir(filepath.Join(dir, "nope")))

	assert.True(t, IsFile(file))
	assert.False(t, IsFile(dir))
}
