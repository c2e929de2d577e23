package mcp

import (
	"context"
	"maps"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/figsync/internal/core/domain"
)

// SyncAssetsInput is the input schema for the sync_assets tool.
type SyncAssetsInput struct {
	FileID  string   `json:"file_id" jsonschema:"the design file key"`
	NodeIDs []string `json:"node_ids" jsonschema:"ids of the page nodes whose frames should be cached"`
}

// SyncAssetsOutput is the output schema for the sync_assets tool.
type SyncAssetsOutput struct {
	JobID          string        `json:"job_id,omitempty"`
	AssetsToUpdate []AssetOutput `json:"assets_to_update"`
	Count          int           `json:"count"`
}

// AssetOutput represents a single discovered asset.
type AssetOutput struct {
	PageName  string `json:"page_name"`
	AssetID   string `json:"asset_id"`
	AssetName string `json:"asset_name"`
}

// JobStatusInput is the input schema for the job_status tool.
type JobStatusInput struct {
	JobID string `json:"job_id" jsonschema:"the job id returned by sync_assets"`
}

// JobStatusOutput is the output schema for the job_status tool.
type JobStatusOutput struct {
	JobID       string `json:"job_id,omitempty"`
	Status      string `json:"status"`
	AssetsCount int    `json:"assets_count,omitempty"`
	Error       string `json:"error,omitempty"`
	Message     string `json:"message,omitempty"`
}

// ListAssetsInput is the input schema for the list_assets tool.
type ListAssetsInput struct {
	FileID string   `json:"file_id" jsonschema:"the design file key"`
	Pages  []string `json:"pages" jsonschema:"names of the pages to list frames of; every page when empty"`
}

// ListAssetsOutput is the output schema for the list_assets tool.
type ListAssetsOutput struct {
	Assets []AssetOutput `json:"assets"`
	Count  int           `json:"count"`
}

// AssetURLInput is the input schema for the asset_url tool.
type AssetURLInput struct {
	FileID   string `json:"file_id,omitempty" jsonschema:"the design file key"`
	PageName string `json:"page_name" jsonschema:"name of the page the asset belongs to"`
	AssetID  string `json:"asset_id" jsonschema:"node id of the asset frame"`
	Version  int    `json:"version,omitempty" jsonschema:"optional cache-busting version"`
}

// AssetURLOutput is the output schema for the asset_url tool.
type AssetURLOutput struct {
	URL string `json:"url"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_assets",
		Description: "Cache the frames under the given page nodes, returning a job id when anything is stale",
	}, s.handleSyncAssets)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "job_status",
		Description: "Report the status of a sync job",
	}, s.handleJobStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_assets",
		Description: "List the frames of named pages without checking the cache",
	}, s.handleListAssets)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "asset_url",
		Description: "Build the public URL of a cached asset",
	}, s.handleAssetURL)
}

func (s *Server) handleSyncAssets(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SyncAssetsInput,
) (*mcp.CallToolResult, SyncAssetsOutput, error) {
	result, err := s.ports.Sync.Sync(ctx, input.FileID, input.NodeIDs)
	if err != nil {
		return nil, SyncAssetsOutput{}, err
	}

	output := SyncAssetsOutput{
		JobID:          result.JobID,
		AssetsToUpdate: toAssetOutputs(result.AssetsToUpdate),
		Count:          len(result.AssetsToUpdate),
	}
	return nil, output, nil
}

func (s *Server) handleJobStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input JobStatusInput,
) (*mcp.CallToolResult, JobStatusOutput, error) {
	job, err := s.ports.Sync.JobStatus(ctx, input.JobID)
	if err != nil {
		return nil, JobStatusOutput{}, err
	}

	return nil, JobStatusOutput{
		JobID:       job.JobID,
		Status:      string(job.Status),
		AssetsCount: job.AssetsCount,
		Error:       job.Error,
		Message:     job.Message,
	}, nil
}

func (s *Server) handleListAssets(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListAssetsInput,
) (*mcp.CallToolResult, ListAssetsOutput, error) {
	byPage, err := s.ports.Assets.Assets(ctx, input.FileID, input.Pages)
	if err != nil {
		return nil, ListAssetsOutput{}, err
	}

	// Keep the caller's page order, or sort by page name when listing all
	order := input.Pages
	if len(order) == 0 {
		order = slices.Sorted(maps.Keys(byPage))
	}
	all := []domain.DiscoveredAsset{}
	for _, name := range order {
		all = append(all, byPage[name]...)
	}

	return nil, ListAssetsOutput{
		Assets: toAssetOutputs(all),
		Count:  len(all),
	}, nil
}

func (s *Server) handleAssetURL(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input AssetURLInput,
) (*mcp.CallToolResult, AssetURLOutput, error) {
	return nil, AssetURLOutput{
		URL: s.ports.Assets.AssetURL(input.FileID, input.PageName, input.AssetID, input.Version),
	}, nil
}

func toAssetOutputs(assets []domain.DiscoveredAsset) []AssetOutput {
	out := make([]AssetOutput, len(assets))
	for i, a := range assets {
		out[i] = AssetOutput{
			PageName:  a.PageName,
			AssetID:   a.AssetID,
			AssetName: a.AssetName,
		}
	}
	return out
}
