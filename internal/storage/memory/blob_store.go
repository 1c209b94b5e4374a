// Package memory stores blob content in-memory for tests and development.
package memory

import (
	"context"
	"fmt"
	"sync"
)

// BlobStore keeps artifacts in a map and returns pseudo URIs.
type BlobStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewBlobStore creates an empty in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{data: make(map[string][]byte)}
}

// PutObject persists the content and returns a memory:// URI.
func (s *BlobStore) PutObject(_ context.Context, path string, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[path] = append([]byte(nil), data...)
	return fmt.Sprintf("memory://%s", path), nil
}

// Object returns the stored content for path, or nil when absent.
func (s *BlobStore) Object(path string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.data[path]
	if !ok {
		return nil
	}
	return append([]byte(nil), content...)
}
