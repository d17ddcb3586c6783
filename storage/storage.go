// Package storage persists uploaded images on the local file system and
// maps them to the public /images URL space.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrEmptyFile signals an upload with no content.
var ErrEmptyFile = errors.New("storage: empty file")

// FileStore saves uploaded files under a base directory, one subdirectory
// per entity type.
type FileStore struct {
	baseDir string
}

// NewFileStore resolves the base directory and creates it if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create base dir: %w", err)
	}
	return &FileStore{baseDir: abs}, nil
}

// BaseDir returns the absolute directory files are stored under.
func (s *FileStore) BaseDir() string {
	return s.baseDir
}

// Store writes the file into the entity-type subdirectory under a unique
// name and returns the public URL path, e.g. /images/provider/provider_3_<uuid>.jpg.
// Only the extension of the original filename is kept.
func (s *FileStore) Store(r io.Reader, entityType string, entityID int64, originalName string) (string, error) {
	dir := filepath.Join(s.baseDir, entityType)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: create entity dir: %w", err)
	}

	name := fmt.Sprintf("%s_%d_%s%s", entityType, entityID, uuid.NewString(), filepath.Ext(originalName))
	target := filepath.Join(dir, name)

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(target)
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	if n == 0 {
		os.Remove(target)
		return "", ErrEmptyFile
	}

	return path.Join("/images", entityType, name), nil
}
