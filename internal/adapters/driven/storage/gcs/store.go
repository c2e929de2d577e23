//go:build gcp

package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
)

// Config holds configuration for Store.
type Config struct {
	Bucket        string
	Prefix        string // Optional key prefix, normalised to end in '/'
	PublicBaseURL string // Optional, defaults to storage.googleapis.com
}

// Store implements driven.BlobStore on Google Cloud Storage.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
	public string
}

var _ driven.BlobStore = (*Store)(nil)

// New creates a store using application default credentials.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("gcs bucket is required"))
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return newStore(client, cfg), nil
}

func newStore(client *storage.Client, cfg Config) *Store {
	public := "https://storage.googleapis.com/" + cfg.Bucket
	if cfg.PublicBaseURL != "" {
		public = strings.TrimSuffix(cfg.PublicBaseURL, "/")
	}
	return &Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: domain.NormalizeKeyPrefix(cfg.Prefix),
		public: public,
	}
}

func (s *Store) objectName(key string) string {
	return s.prefix + key
}

func (s *Store) object(key string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(s.objectName(key))
}

// Exists reports whether key is stored.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Head(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Head returns the attributes of key.
func (s *Store) Head(ctx context.Context, key string) (*domain.ObjectInfo, error) {
	attrs, err := s.object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("gcs attrs failed for %s: %w", key, err)
	}
	return &domain.ObjectInfo{
		Key:         key,
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		Metadata:    attrs.Metadata,
	}, nil
}

// Get returns the payload and attributes of key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, *domain.ObjectInfo, error) {
	info, err := s.Head(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("gcs get failed for %s: %w", key, err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("gcs read failed for %s: %w", key, err)
	}
	return data, info, nil
}

// Put stores data under key, replacing the object and its metadata.
func (s *Store) Put(ctx context.Context, key string, data []byte, opts domain.PutOptions) error {
	w := s.object(key).NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.Metadata = opts.Metadata

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs write failed for %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close failed for %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete failed for %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the address key is served under.
func (s *Store) PublicURL(key string) string {
	return s.public + "/" + s.objectName(key)
}

// Close closes the GCS client.
func (s *Store) Close() error {
	return s.client.Close()
}
