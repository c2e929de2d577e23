package memory

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

type blob struct {
	data        []byte
	contentType string
	metadata    map[string]string
}

// BlobStore is an in-memory implementation of driven.BlobStore.
type BlobStore struct {
	mu      sync.RWMutex
	blobs   map[string]blob
	baseURL string
}

// NewBlobStore creates a new in-memory blob store. baseURL is the root
// PublicURL builds addresses under.
func NewBlobStore(baseURL string) *BlobStore {
	return &BlobStore{
		blobs:   make(map[string]blob),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Exists reports whether key is stored.
func (s *BlobStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[key]
	return ok, nil
}

// Head returns the attributes of key.
func (s *BlobStore) Head(_ context.Context, key string) (*domain.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return info(key, b), nil
}

// Get returns the payload and attributes of key.
func (s *BlobStore) Get(_ context.Context, key string) ([]byte, *domain.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[key]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	return append([]byte(nil), b.data...), info(key, b), nil
}

// Put stores data under key, replacing any previous value.
func (s *BlobStore) Put(_ context.Context, key string, data []byte, opts domain.PutOptions) error {
	if key == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = blob{
		data:        append([]byte(nil), data...),
		contentType: opts.ContentType,
		metadata:    maps.Clone(opts.Metadata),
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *BlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// PublicURL returns the address key is served under.
func (s *BlobStore) PublicURL(key string) string {
	return s.baseURL + "/" + key
}

// Len returns the number of stored blobs.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

func info(key string, b blob) *domain.ObjectInfo {
	return &domain.ObjectInfo{
		Key:         key,
		Size:        int64(len(b.data)),
		ContentType: b.contentType,
		Metadata:    maps.Clone(b.metadata),
	}
}
