package mcp

import (
	"context"

	"github.com/custodia-labs/figsync/internal/core/domain"
)

// mockSyncService is a mock implementation of driving.SyncService.
type mockSyncService struct {
	result *domain.SyncResult
	job    *domain.SyncJob
	err    error

	gotFileID string
	gotNodes  []string
	gotJobID  string
}

func (m *mockSyncService) Sync(_ context.Context, fileID string, nodeIDs []string) (*domain.SyncResult, error) {
	m.gotFileID, m.gotNodes = fileID, nodeIDs
	return m.result, m.err
}

func (m *mockSyncService) JobStatus(_ context.Context, jobID string) (*domain.SyncJob, error) {
	m.gotJobID = jobID
	return m.job, m.err
}

// mockAssetService is a mock implementation of driving.AssetService.
type mockAssetService struct {
	pages  []domain.PageRef
	assets map[string][]domain.DiscoveredAsset
	err    error

	gotFileID string
}

func (m *mockAssetService) Pages(_ context.Context, fileID string) ([]domain.PageRef, error) {
	m.gotFileID = fileID
	return m.pages, m.err
}

func (m *mockAssetService) FileVersion(_ context.Context, _ string) (string, error) {
	return "", m.err
}

func (m *mockAssetService) Assets(_ context.Context, fileID string, _ []string) (map[string][]domain.DiscoveredAsset, error) {
	m.gotFileID = fileID
	return m.assets, m.err
}

func (m *mockAssetService) Templates(_ context.Context, _ string, _ []string) ([]domain.Template, error) {
	return nil, m.err
}

func (m *mockAssetService) AssetURL(fileID, pageName, assetID string, version int) string {
	return domain.AssetURL("https://cdn.example.com", fileID, pageName, assetID, version)
}

func newTestServer(t interface{ Fatalf(string, ...any) }, sync *mockSyncService, assets *mockAssetService) *Server {
	s, err := NewServer(&Ports{Sync: sync, Assets: assets}, "test")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}
