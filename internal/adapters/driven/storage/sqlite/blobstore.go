package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
)

// blobStore implements driven.BlobStore.
type blobStore struct {
	store *Store
}

var _ driven.BlobStore = (*blobStore)(nil)

// Exists reports whether key is stored.
func (s *blobStore) Exists(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.store.db.QueryRowContext(ctx, "SELECT 1 FROM blobs WHERE key = ?", key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking blob: %w", err)
	}
	return true, nil
}

// Head returns the attributes of key without reading its payload.
func (s *blobStore) Head(ctx context.Context, key string) (*domain.ObjectInfo, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT size, content_type, metadata FROM blobs WHERE key = ?
	`, key)

	info := &domain.ObjectInfo{Key: key}
	var metadata string
	if err := row.Scan(&info.Size, &info.ContentType, &metadata); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading blob metadata: %w", err)
	}
	if err := decodeMetadata(metadata, info); err != nil {
		return nil, err
	}
	return info, nil
}

// Get returns the payload and attributes of key.
func (s *blobStore) Get(ctx context.Context, key string) ([]byte, *domain.ObjectInfo, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT data, size, content_type, metadata FROM blobs WHERE key = ?
	`, key)

	info := &domain.ObjectInfo{Key: key}
	var data []byte
	var metadata string
	if err := row.Scan(&data, &info.Size, &info.ContentType, &metadata); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("reading blob: %w", err)
	}
	if err := decodeMetadata(metadata, info); err != nil {
		return nil, nil, err
	}
	return data, info, nil
}

// Put stores data under key, replacing any previous value and metadata.
func (s *blobStore) Put(ctx context.Context, key string, data []byte, opts domain.PutOptions) error {
	if key == "" {
		return domain.ErrInvalidInput
	}

	metadata := "{}"
	if len(opts.Metadata) > 0 {
		encoded, err := json.Marshal(opts.Metadata)
		if err != nil {
			return fmt.Errorf("encoding blob metadata: %w", err)
		}
		metadata = string(encoded)
	}
	if data == nil {
		data = []byte{}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO blobs (key, data, size, content_type, metadata, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			size = excluded.size,
			content_type = excluded.content_type,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`, key, data, len(data), opts.ContentType, metadata)
	if err != nil {
		return fmt.Errorf("saving blob: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *blobStore) Delete(ctx context.Context, key string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM blobs WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

// PublicURL returns the address key is served under.
func (s *blobStore) PublicURL(key string) string {
	return s.store.baseURL + "/" + key
}

func decodeMetadata(raw string, info *domain.ObjectInfo) error {
	if raw == "" || raw == "{}" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &info.Metadata); err != nil {
		return fmt.Errorf("decoding blob metadata: %w", err)
	}
	return nil
}
