package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"docextract-api/internal/shared/storage/object"
)

// Store implements ObjectStore using the local filesystem.
type Store struct {
	baseDir    string
	publicBase string
}

// New creates a local object store rooted at baseDir. URLs are publicBase/key.
func New(baseDir, publicBase string) *Store {
	return &Store{baseDir: baseDir, publicBase: publicBase}
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string {
	return s.baseDir
}

// Put writes data to baseDir/key, replacing any existing file.
func (s *Store) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := object.CleanKey(key)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return object.JoinURL(s.publicBase, clean), nil
}

var _ object.ObjectStore = (*Store)(nil)
