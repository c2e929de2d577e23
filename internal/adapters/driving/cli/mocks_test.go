package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/figsync/internal/core/domain"
)

// mockSyncService implements driving.SyncService. statuses are returned
// in order by JobStatus, the last one repeating.
type mockSyncService struct {
	mu        sync.Mutex
	result    *domain.SyncResult
	statuses  []*domain.SyncJob
	err       error
	gotFileID string
	gotNodes  []string
	polls     int
}

func (m *mockSyncService) Sync(_ context.Context, fileID string, nodeIDs []string) (*domain.SyncResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gotFileID, m.gotNodes = fileID, nodeIDs
	return m.result, m.err
}

func (m *mockSyncService) JobStatus(_ context.Context, _ string) (*domain.SyncJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	i := min(m.polls, len(m.statuses)-1)
	m.polls++
	return m.statuses[i], nil
}

// mockAssetService implements driving.AssetService.
type mockAssetService struct {
	pages     []domain.PageRef
	version   string
	assets    map[string][]domain.DiscoveredAsset
	templates []domain.Template
	err       error
}

func (m *mockAssetService) Pages(context.Context, string) ([]domain.PageRef, error) {
	return m.pages, m.err
}

func (m *mockAssetService) FileVersion(context.Context, string) (string, error) {
	return m.version, m.err
}

func (m *mockAssetService) Assets(context.Context, string, []string) (map[string][]domain.DiscoveredAsset, error) {
	return m.assets, m.err
}

func (m *mockAssetService) Templates(context.Context, string, []string) ([]domain.Template, error) {
	return m.templates, m.err
}

func (m *mockAssetService) AssetURL(fileID, pageName, assetID string, version int) string {
	return domain.AssetURL("https://cdn.example.com", fileID, pageName, assetID, version)
}

// mockScheduler implements driving.Scheduler.
type mockScheduler struct {
	mu      sync.Mutex
	started bool
	stopped bool
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

// setupServices installs svc for the duration of a test.
func setupServices(t *testing.T, svc *Services) {
	t.Helper()
	old := services
	services = svc
	t.Cleanup(func() { services = old })
}

// execute runs the root command and resets every flag afterwards.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
