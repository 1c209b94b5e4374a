// Package gcs implements the blob store on Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

// BlobStore uploads artifacts to a GCS bucket. Authentication follows
// Application Default Credentials.
type BlobStore struct {
	client *storage.Client
	bucket string
}

// New initializes a GCS client and verifies bucket access, failing fast on
// misconfiguration.
func New(ctx context.Context, bucket string) (*BlobStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("gcs bucket %q attributes: %w", bucket, err)
	}
	return &BlobStore{client: client, bucket: bucket}, nil
}

// PutObject uploads data and returns a gs:// URI.
func (s *BlobStore) PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error) {
	w := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write gcs object %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize gcs object %s: %w", path, err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, path), nil
}

// Close releases the underlying client.
func (s *BlobStore) Close() error {
	return s.client.Close()
}
