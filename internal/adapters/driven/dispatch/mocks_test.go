package dispatch

import (
	"context"
	"sync"

	"github.com/custodia-labs/figsync/internal/core/domain"
)

// mockRunner records the jobs it runs. When block is set each run waits
// for a value on release.
type mockRunner struct {
	mu      sync.Mutex
	ran     []domain.WorkerRequest
	running int
	peak    int
	block   bool
	release chan struct{}
	err     error
	ctxErrs []error
	started chan string
}

func newMockRunner() *mockRunner {
	return &mockRunner{
		release: make(chan struct{}),
		started: make(chan string, 64),
	}
}

func (m *mockRunner) Run(ctx context.Context, req domain.WorkerRequest) error {
	m.mu.Lock()
	m.running++
	m.peak = max(m.peak, m.running)
	block := m.block
	m.mu.Unlock()

	m.started <- req.JobID

	if block {
		select {
		case <-m.release:
		case <-ctx.Done():
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.running--
	m.ran = append(m.ran, req)
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	return m.err
}

func (m *mockRunner) ranIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.ran))
	for _, r := range m.ran {
		ids = append(ids, r.JobID)
	}
	return ids
}

func (m *mockRunner) peakConcurrency() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}
