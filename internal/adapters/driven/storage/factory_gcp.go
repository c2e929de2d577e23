//go:build gcp

package storage

import (
	"context"
	"io"

	"github.com/custodia-labs/figsync/internal/adapters/driven/storage/gcs"
	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
)

func newGCSStore(ctx context.Context, sc domain.StorageConfig) (driven.BlobStore, io.Closer, error) {
	store, err := gcs.New(ctx, gcs.Config{
		Bucket:        sc.Bucket,
		Prefix:        sc.Prefix,
		PublicBaseURL: sc.PublicBaseURL,
	})
	if err != nil {
		return nil, nil, err
	}
	return store, store, nil
}
