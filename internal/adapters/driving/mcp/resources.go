package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme prefixes every figsync resource URI.
const uriScheme = "figsync://"

// registerResources exposes file pages and job markers as resource templates.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "files/{fileId}/pages",
		Name:        "file-pages",
		Description: "Pages of a design file",
		MIMEType:    "application/json",
	}, s.handlePagesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "jobs/{jobId}",
		Name:        "job-status",
		Description: "Status marker of a sync job",
		MIMEType:    "application/json",
	}, s.handleJobResource)
}

// handlePagesResource returns the pages of a file.
func (s *Server) handlePagesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	fileID := extractFileID(req.Params.URI)
	if fileID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	pages, err := s.ports.Assets.Pages(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}

	return jsonResource(req.Params.URI, pages)
}

// handleJobResource returns the marker of a job.
func (s *Server) handleJobResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	jobID := extractJobID(req.Params.URI)
	if jobID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	job, err := s.ports.Sync.JobStatus(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("getting job status: %w", err)
	}

	return jsonResource(req.Params.URI, job)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractFileID returns {fileId} of figsync://files/{fileId}/pages.
func extractFileID(uri string) string {
	rest, ok := strings.CutPrefix(uri, uriScheme+"files/")
	if !ok {
		return ""
	}
	fileID, ok := strings.CutSuffix(rest, "/pages")
	if !ok || strings.Contains(fileID, "/") {
		return ""
	}
	return fileID
}

// extractJobID returns {jobId} of figsync://jobs/{jobId}.
func extractJobID(uri string) string {
	jobID, ok := strings.CutPrefix(uri, uriScheme+"jobs/")
	if !ok {
		return ""
	}
	return jobID
}
