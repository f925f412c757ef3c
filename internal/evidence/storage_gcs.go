package evidence

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSStorage implements StorageClient using Google Cloud Storage.
type GCSStorage struct {
	client *gcs.Client
	bucket string
}

// NewGCSStorage creates a GCS-backed StorageClient.
// It uses Application Default Credentials (works with Workload Identity, SA keys, gcloud auth).
func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

func (s *GCSStorage) key(shopID, docID string) string {
	return shopID + "/documents/" + docID
}

// PutDocument stores a document blob.
func (s *GCSStorage) PutDocument(ctx context.Context, shopID, docID, contentType string, data []byte) error {
	w := s.client.Bucket(s.bucket).Object(s.key(shopID, docID)).NewWriter(ctx)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("gcs write %s: %w", docID, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close %s: %w", docID, err)
	}
	return nil
}

// GetDocument retrieves a document blob.
func (s *GCSStorage) GetDocument(ctx context.Context, shopID, docID string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.key(shopID, docID)).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs read %s: %w", docID, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}
