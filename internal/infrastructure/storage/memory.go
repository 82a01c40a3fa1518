package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBlobStorage keeps blobs in a map. Used in development mode and by
// the service tests.
type MemoryBlobStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBlobStorage() *MemoryBlobStorage {
	return &MemoryBlobStorage{blobs: make(map[string][]byte)}
}

func (s *MemoryBlobStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte{}, data...)
	return nil
}

func (s *MemoryBlobStorage) Download(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return append([]byte{}, data...), nil
}

func (s *MemoryBlobStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
