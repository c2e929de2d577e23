package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
	"github.com/custodia-labs/figsync/internal/logger"
)

// InProcess runs jobs on goroutines owned by the dispatcher, detached
// from the caller's context.
type InProcess struct {
	runner  driven.JobRunner
	sem     chan struct{}
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

var _ driven.JobDispatcher = (*InProcess)(nil)

// NewInProcess creates a dispatcher running at most maxConcurrent jobs at
// once. A zero timeout lets jobs run until they finish.
func NewInProcess(runner driven.JobRunner, maxConcurrent int, timeout time.Duration) *InProcess {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &InProcess{
		runner:  runner,
		sem:     make(chan struct{}, maxConcurrent),
		timeout: timeout,
	}
}

// Dispatch starts req in the background and returns immediately.
// Jobs beyond the concurrency limit wait for a free slot.
func (d *InProcess) Dispatch(ctx context.Context, req domain.WorkerRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return domain.ErrDispatcherClosed
	}

	// The job outlives the request that triggered it.
	jobCtx := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		d.sem <- struct{}{}
		defer func() { <-d.sem }()

		runCtx := jobCtx
		if d.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(jobCtx, d.timeout)
			defer cancel()
		}

		if err := d.runner.Run(runCtx, req); err != nil {
			logger.Warn("Job %s failed: %v", req.JobID, err)
		}
	}()
	return nil
}

// Close stops accepting jobs and waits for running ones until ctx is done.
func (d *InProcess) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
