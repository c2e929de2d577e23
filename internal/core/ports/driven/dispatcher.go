package driven

import (
	"context"

	"github.com/custodia-labs/figsync/internal/core/domain"
)

// JobDispatcher enqueues a worker request for out-of-band execution.
// Dispatch returns once the request is handed off; it never waits for
// the worker. The job id in the request is the only correlation handle.
type JobDispatcher interface {
	Dispatch(ctx context.Context, req domain.WorkerRequest) error
}

// JobRunner executes a worker request to completion. It is what a
// dispatcher eventually calls, in whatever execution context it owns.
type JobRunner interface {
	Run(ctx context.Context, req domain.WorkerRequest) error
}
