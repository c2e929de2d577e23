package driving

import (
	"context"

	"github.com/custodia-labs/figsync/internal/core/domain"
)

// SyncService triggers asset synchronisation and reports job progress.
type SyncService interface {
	// Sync decides which assets under the given pages are stale and, if any
	// are, dispatches a worker and returns its job id. It returns promptly:
	// it never waits for images to download.
	Sync(ctx context.Context, fileID string, pageNodeIDs []string) (*domain.SyncResult, error)

	// JobStatus returns the job marker, or a synthesised pending status when
	// no marker exists yet. Store failures wrap domain.ErrJobStatusRead.
	JobStatus(ctx context.Context, jobID string) (*domain.SyncJob, error)
}
