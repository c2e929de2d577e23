package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
)

// pendingMessage accompanies a synthesised pending status.
const pendingMessage = "Job is still being processed"

// JobTracker reads and writes job markers in the blob store.
// Each marker is one JSON object at domain.JobKey(jobID), overwritten
// on every transition.
type JobTracker struct {
	blobs driven.BlobStore
	now   func() time.Time
}

// NewJobTracker creates a tracker backed by blobs.
func NewJobTracker(blobs driven.BlobStore) *JobTracker {
	return &JobTracker{blobs: blobs, now: time.Now}
}

// Start writes the started marker of a new job.
func (t *JobTracker) Start(ctx context.Context, jobID, fileID string, assetsCount int) (*domain.SyncJob, error) {
	at := t.now().UTC()
	job := &domain.SyncJob{
		JobID:       jobID,
		Status:      domain.JobStarted,
		FileID:      fileID,
		AssetsCount: assetsCount,
		StartedAt:   &at,
	}
	if err := t.write(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Complete overwrites the marker with the completed state.
func (t *JobTracker) Complete(ctx context.Context, jobID, fileID string, assetsCount int) error {
	at := t.now().UTC()
	return t.write(ctx, &domain.SyncJob{
		JobID:       jobID,
		Status:      domain.JobCompleted,
		FileID:      fileID,
		AssetsCount: assetsCount,
		CompletedAt: &at,
	})
}

// Fail overwrites the marker with the failed state and cause.
func (t *JobTracker) Fail(ctx context.Context, jobID, fileID string, cause error) error {
	at := t.now().UTC()
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return t.write(ctx, &domain.SyncJob{
		JobID:       jobID,
		Status:      domain.JobFailed,
		FileID:      fileID,
		Error:       msg,
		CompletedAt: &at,
	})
}

// Status returns the current marker. A job with no marker yet is reported
// as pending. Invalid ids fail with domain.ErrInvalidInput; storage and
// decode failures wrap domain.ErrJobStatusRead.
func (t *JobTracker) Status(ctx context.Context, jobID string) (*domain.SyncJob, error) {
	if err := domain.ValidateJobID(jobID); err != nil {
		return nil, err
	}

	data, _, err := t.blobs.Get(ctx, domain.JobKey(jobID))
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.SyncJob{
			JobID:   jobID,
			Status:  domain.JobPending,
			Message: pendingMessage,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrJobStatusRead, err)
	}

	var job domain.SyncJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("%w: decode marker: %w", domain.ErrJobStatusRead, err)
	}
	if job.JobID == "" {
		job.JobID = jobID
	}
	return &job, nil
}

func (t *JobTracker) write(ctx context.Context, job *domain.SyncJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job marker: %w", err)
	}
	err = t.blobs.Put(ctx, domain.JobKey(job.JobID), data, domain.PutOptions{
		ContentType: domain.ContentTypeJSON,
	})
	if err != nil {
		return fmt.Errorf("write job marker %s: %w", job.JobID, err)
	}
	return nil
}
