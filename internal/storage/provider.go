// Package storage defines the blob storage abstraction used by the
// snapshot archive. Implementations exist for the local filesystem, memory
// (tests), and Google Cloud Storage.
package storage

import "context"

// Provider writes raw artifacts and returns a URI for the stored object.
type Provider interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// NoOpProvider discards writes; useful for dry runs.
type NoOpProvider struct{}

// PutObject does nothing and returns an empty URI.
func (NoOpProvider) PutObject(_ context.Context, _ string, _ string, _ []byte) (string, error) {
	return "", nil
}
