package mcp

import (
	"github.com/custodia-labs/figsync/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Sync triggers syncs and reports job progress.
	Sync driving.SyncService

	// Assets provides read-only views of design files.
	Assets driving.AssetService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Sync == nil {
		return ErrMissingSyncService
	}
	if p.Assets == nil {
		return ErrMissingAssetService
	}
	return nil
}
