// Package storage selects the blob store and scheduler store backends
// from configuration.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/custodia-labs/figsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/figsync/internal/adapters/driven/storage/s3"
	"github.com/custodia-labs/figsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
)

// CachePath is the route local backends serve cached blobs under.
const CachePath = "/cache"

// Stores bundles the persistence a running instance needs.
type Stores struct {
	Blobs     driven.BlobStore
	Scheduler driven.SchedulerStore

	closers []io.Closer
}

// Close releases every backend that holds a connection or file handle.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open builds the stores selected by cfg.
//
// Scheduler state lives in SQLite whenever a local data directory is
// usable, so remote blob backends still keep watch history across
// restarts. The memory backend keeps everything in process.
func Open(ctx context.Context, cfg domain.Config) (*Stores, error) {
	sc := cfg.Storage
	local := LocalBaseURL(sc.PublicBaseURL, cfg.Server.Addr)

	switch sc.Backend {
	case domain.StorageMemory:
		return &Stores{
			Blobs:     memory.NewBlobStore(local),
			Scheduler: memory.NewSchedulerStore(),
		}, nil

	case domain.StorageSQLite, "":
		db, err := sqlite.NewStore(sc.Path, local)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Blobs:     db.BlobStore(),
			Scheduler: db.SchedulerStore(),
			closers:   []io.Closer{db},
		}, nil

	case domain.StorageS3:
		blobs, err := s3.New(ctx, s3.Config{
			Bucket:        sc.Bucket,
			Region:        sc.Region,
			Endpoint:      sc.Endpoint,
			Prefix:        sc.Prefix,
			PublicBaseURL: sc.PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return withLocalScheduler(sc.Path, local, blobs, nil)

	case domain.StorageGCS:
		blobs, closer, err := newGCSStore(ctx, sc)
		if err != nil {
			return nil, err
		}
		return withLocalScheduler(sc.Path, local, blobs, closer)

	default:
		return nil, fmt.Errorf("%w: unsupported storage backend: %s", domain.ErrInvalidInput, sc.Backend)
	}
}

func withLocalScheduler(path, local string, blobs driven.BlobStore, closer io.Closer) (*Stores, error) {
	stores := &Stores{Blobs: blobs}
	if closer != nil {
		stores.closers = append(stores.closers, closer)
	}

	db, err := sqlite.NewStore(path, local)
	if err != nil {
		_ = stores.Close()
		return nil, fmt.Errorf("failed to open scheduler store: %w", err)
	}
	stores.Scheduler = db.SchedulerStore()
	stores.closers = append(stores.closers, db)
	return stores, nil
}

// LocalBaseURL returns the address local backends publish blobs under.
// An explicit public base wins; otherwise the HTTP server's own cache
// route is used.
func LocalBaseURL(publicBase, serverAddr string) string {
	if publicBase != "" {
		return strings.TrimSuffix(publicBase, "/")
	}

	host, port, err := net.SplitHostPort(serverAddr)
	if err != nil {
		return "http://localhost:8080" + CachePath
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + CachePath
}
