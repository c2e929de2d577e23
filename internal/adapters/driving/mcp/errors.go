// Package mcp provides an MCP (Model Context Protocol) server adapter for figsync.
// It lets AI assistants trigger syncs, poll jobs and look up cached assets.
package mcp

import "errors"

var (
	// ErrMissingSyncService is returned when the sync service is not provided.
	ErrMissingSyncService = errors.New("mcp: sync service is required")

	// ErrMissingAssetService is returned when the asset service is not provided.
	ErrMissingAssetService = errors.New("mcp: asset service is required")
)
