package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
	"github.com/custodia-labs/figsync/internal/logger"
	"github.com/custodia-labs/figsync/internal/observability"
)

// WorkerReport summarises one worker run.
type WorkerReport struct {
	Requested int
	Stored    int
	Skipped   int
	Batches   int
}

// BatchWorker renders, downloads and stores the assets of a worker request.
type BatchWorker struct {
	source    driven.DocumentSource
	images    driven.ImageDownloader
	blobs     driven.BlobStore
	jobs      *JobTracker
	batchSize int
}

var _ driven.JobRunner = (*BatchWorker)(nil)

// NewBatchWorker creates a worker. Batch sizes outside 1..domain.MaxImageBatch
// fall back to domain.MaxImageBatch.
func NewBatchWorker(
	source driven.DocumentSource,
	images driven.ImageDownloader,
	blobs driven.BlobStore,
	jobs *JobTracker,
	batchSize int,
) *BatchWorker {
	if batchSize <= 0 || batchSize > domain.MaxImageBatch {
		batchSize = domain.MaxImageBatch
	}
	return &BatchWorker{
		source:    source,
		images:    images,
		blobs:     blobs,
		jobs:      jobs,
		batchSize: batchSize,
	}
}

// Run processes req and moves its job marker to completed or failed.
// Assets without a rendered URL are skipped and do not fail the job.
// The first unrecoverable error, or a panic, fails the job and is returned.
func (w *BatchWorker) Run(ctx context.Context, req domain.WorkerRequest) (err error) {
	ctx, span := observability.StartSpan(ctx, "figsync.worker.run",
		attribute.String("figsync.job_id", req.JobID),
		attribute.String("figsync.file_id", req.FileID),
		attribute.Int("figsync.assets", len(req.Assets)),
	)
	defer func() { observability.EndSpan(span, err) }()

	// Terminal markers are written even when the job's context has expired.
	markerCtx := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker panic: %v", r)
			logger.Error("Job %s panicked: %v", req.JobID, r)
			if ferr := w.jobs.Fail(markerCtx, req.JobID, req.FileID, err); ferr != nil {
				logger.Error("Failed to record failure of job %s: %v", req.JobID, ferr)
			}
		}
	}()

	logger.Info("Job %s: syncing %d assets of file %s", req.JobID, len(req.Assets), req.FileID)

	report, err := w.process(ctx, req)
	if err != nil {
		logger.Error("Job %s failed: %v", req.JobID, err)
		if ferr := w.jobs.Fail(markerCtx, req.JobID, req.FileID, err); ferr != nil {
			logger.Error("Failed to record failure of job %s: %v", req.JobID, ferr)
		}
		return fmt.Errorf("job %s: %w", req.JobID, err)
	}

	if err := w.jobs.Complete(markerCtx, req.JobID, req.FileID, len(req.Assets)); err != nil {
		return fmt.Errorf("job %s: %w", req.JobID, err)
	}

	logger.Info("Job %s completed: %d stored, %d skipped in %d batches",
		req.JobID, report.Stored, report.Skipped, report.Batches)
	return nil
}

func (w *BatchWorker) process(ctx context.Context, req domain.WorkerRequest) (WorkerReport, error) {
	report := WorkerReport{Requested: len(req.Assets)}
	for start := 0; start < len(req.Assets); start += w.batchSize {
		end := min(start+w.batchSize, len(req.Assets))
		stored, skipped, err := w.processBatch(ctx, req.FileID, req.Assets[start:end])
		report.Stored += stored
		report.Skipped += skipped
		report.Batches++
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func (w *BatchWorker) processBatch(
	ctx context.Context,
	fileID string,
	batch []domain.AssetToSync,
) (stored, skipped int, err error) {
	ctx, span := observability.StartSpan(ctx, "figsync.worker.batch",
		attribute.Int("figsync.batch_size", len(batch)),
	)
	defer func() { observability.EndSpan(span, err) }()

	ids := make([]string, 0, len(batch))
	for _, a := range batch {
		ids = append(ids, a.AssetID)
	}

	urls, err := w.source.FetchRenderedImages(ctx, fileID, ids)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch rendered images: %w", err)
	}

	for _, a := range batch {
		url, ok := urls[a.AssetID]
		if !ok || url == "" {
			logger.Warn("No image URL found for asset %s (%s), skipping", a.AssetID, a.AssetName)
			skipped++
			continue
		}

		data, err := w.images.Download(ctx, url)
		if err != nil {
			return stored, skipped, fmt.Errorf("download asset %s: %w", a.AssetID, err)
		}

		err = w.blobs.Put(ctx, a.Key(), data, domain.PutOptions{
			ContentType: domain.ContentTypePNG,
			Metadata:    map[string]string{domain.HashMetadataKey: a.Hash},
		})
		if err != nil {
			return stored, skipped, fmt.Errorf("store asset %s: %w", a.AssetID, err)
		}
		logger.Debug("Stored %s", a.Key())
		stored++
	}
	return stored, skipped, nil
}
