package driven

import (
	"context"

	"github.com/custodia-labs/figsync/internal/core/domain"
)

// BlobStore is a key/value object store with per-object metadata.
// Writes to the same key are last-writer-wins.
type BlobStore interface {
	// Exists reports whether an object is stored at key.
	Exists(ctx context.Context, key string) (bool, error)

	// Head returns the object's attributes and metadata.
	// Returns domain.ErrNotFound if nothing is stored at key.
	Head(ctx context.Context, key string) (*domain.ObjectInfo, error)

	// Get returns the object's payload and attributes.
	// Returns domain.ErrNotFound if nothing is stored at key.
	Get(ctx context.Context, key string) ([]byte, *domain.ObjectInfo, error)

	// Put stores data at key, replacing any previous object and metadata.
	Put(ctx context.Context, key string, data []byte, opts domain.PutOptions) error

	// Delete removes the object at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// PublicURL returns the address external consumers read key from.
	PublicURL(key string) string
}
