//go:build !gcp

package storage

import (
	"context"
	"errors"
	"io"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
)

func newGCSStore(_ context.Context, _ domain.StorageConfig) (driven.BlobStore, io.Closer, error) {
	return nil, nil, errors.Join(domain.ErrInvalidInput,
		errors.New("GCS storage is not enabled in this build (use -tags gcp)"))
}
