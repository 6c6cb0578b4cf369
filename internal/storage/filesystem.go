package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/xid"
)

// FileStore handles file system operations for task case files
type FileStore struct {
	perm fs.FileMode
}

// NewFileStore creates a new file store
func NewFileStore() *FileStore {
	return &FileStore{perm: 0644}
}

// WriteFile replaces path with content. The data goes to a sibling temp file
// first and is renamed over the target, so readers see either the old or the
// new file, never a partial one.
func (s *FileStore) WriteFile(path string, content []byte) error {
	dir, base := filepath.Split(path)
	tmp := filepath.Join(dir, "."+base+"."+xid.New().String()+".tmp")

	if err := os.WriteFile(tmp, content, s.perm); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

// Remove deletes path. A missing file is not an error.
func (s *FileStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists reports whether path exists
func (s *FileStore) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsDir reports whether path exists and is a directory (symlinks followed).
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsFile reports whether path exists and is a regular file (symlinks followed).
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
