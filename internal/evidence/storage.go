// Package evidence stores uploaded Hard-KO document blobs (business
// licences, trademark certificates and the like) behind a pluggable
// blob-storage client.
package evidence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// StorageClient abstracts blob storage for Hard-KO documents.
type StorageClient interface {
	PutDocument(ctx context.Context, shopID, docID string, contentType string, data []byte) error
	GetDocument(ctx context.Context, shopID, docID string) ([]byte, error)
}

// LocalStorage implements StorageClient using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(shopID, docID string) string {
	return filepath.Join(s.BaseDir, shopID, "documents", docID)
}

// PutDocument stores a document blob.
func (s *LocalStorage) PutDocument(ctx context.Context, shopID, docID string, _ string, data []byte) error {
	path := s.path(shopID, docID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// GetDocument retrieves a document blob.
func (s *LocalStorage) GetDocument(ctx context.Context, shopID, docID string) ([]byte, error) {
	return os.ReadFile(s.path(shopID, docID))
}
