package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
	"github.com/custodia-labs/figsync/internal/core/ports/driving"
	"github.com/custodia-labs/figsync/internal/logger"
	"github.com/custodia-labs/figsync/internal/observability"
)

// SyncOrchestrator decides which assets are stale and hands them to a
// worker. It does no rendering or downloading itself, so a sync trigger
// returns after one document fetch and a round of metadata reads.
type SyncOrchestrator struct {
	source     driven.DocumentSource
	detector   *StalenessDetector
	jobs       *JobTracker
	dispatcher driven.JobDispatcher
	newJobID   func() string
}

var _ driving.SyncService = (*SyncOrchestrator)(nil)

// NewSyncOrchestrator creates an orchestrator.
func NewSyncOrchestrator(
	source driven.DocumentSource,
	detector *StalenessDetector,
	jobs *JobTracker,
	dispatcher driven.JobDispatcher,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		source:     source,
		detector:   detector,
		jobs:       jobs,
		dispatcher: dispatcher,
		newJobID:   uuid.NewString,
	}
}

// Sync fingerprints every frame of the given pages and dispatches a worker
// for the stale ones. When nothing is stale it writes nothing and returns
// a result with no job id.
//
// A dispatch failure is logged and not returned: the job stays started and
// the caller still receives its id.
func (o *SyncOrchestrator) Sync(
	ctx context.Context,
	fileID string,
	pageNodeIDs []string,
) (result *domain.SyncResult, err error) {
	if fileID == "" {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("fileId is required"))
	}
	ids := uniqueStrings(pageNodeIDs)
	if len(ids) == 0 {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("at least one page node id is required"))
	}

	ctx, span := observability.StartSpan(ctx, "figsync.sync",
		attribute.String("figsync.file_id", fileID),
		attribute.StringSlice("figsync.page_ids", ids),
	)
	defer func() { observability.EndSpan(span, err) }()

	pages, err := o.source.FetchSubtree(ctx, fileID, ids, domain.FullDepth)
	if err != nil {
		return nil, fmt.Errorf("fetch pages: %w", err)
	}

	var discovered []domain.DiscoveredAsset
	for _, id := range ids {
		page, ok := pages[id]
		if !ok {
			logger.Warn("Page %s not found in file %s", id, fileID)
			continue
		}
		assets, err := o.detector.Fingerprint(page.Name, page)
		if err != nil {
			return nil, err
		}
		discovered = append(discovered, assets...)
	}

	stale, err := o.detector.FindStale(ctx, discovered)
	if err != nil {
		return nil, err
	}
	logger.Debug("File %s: %d assets discovered, %d stale", fileID, len(discovered), len(stale))

	if len(stale) == 0 {
		return &domain.SyncResult{AssetsToUpdate: []domain.DiscoveredAsset{}}, nil
	}

	jobID := o.newJobID()
	if _, err := o.jobs.Start(ctx, jobID, fileID, len(stale)); err != nil {
		return nil, err
	}

	req := domain.WorkerRequest{
		FileID: fileID,
		JobID:  jobID,
		Assets: make([]domain.AssetToSync, 0, len(stale)),
	}
	for _, a := range stale {
		req.Assets = append(req.Assets, a.ToSync())
	}

	if err := o.dispatcher.Dispatch(ctx, req); err != nil {
		logger.Error("Failed to dispatch job %s: %v", jobID, err)
	} else {
		logger.Info("Dispatched job %s for %d assets of file %s", jobID, len(stale), fileID)
	}

	return &domain.SyncResult{JobID: jobID, AssetsToUpdate: stale}, nil
}

// JobStatus reports the state of a dispatched job.
func (o *SyncOrchestrator) JobStatus(ctx context.Context, jobID string) (*domain.SyncJob, error) {
	return o.jobs.Status(ctx, jobID)
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
