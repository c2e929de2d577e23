package driving

import (
	"context"

	"github.com/custodia-labs/figsync/internal/core/domain"
)

// AssetService exposes read-only views of the design file.
type AssetService interface {
	// Pages lists the pages of a file.
	Pages(ctx context.Context, fileID string) ([]domain.PageRef, error)

	// FileVersion returns the upstream version identifier of a file.
	FileVersion(ctx context.Context, fileID string) (string, error)

	// Assets lists the frames of the named pages, keyed by page name.
	// It performs no staleness check.
	Assets(ctx context.Context, fileID string, pageNames []string) (map[string][]domain.DiscoveredAsset, error)

	// Templates groups assets from template-style pages.
	// Returns domain.ErrNoTemplatesFound when nothing qualifies.
	Templates(ctx context.Context, fileID string, templateNames []string) ([]domain.Template, error)

	// AssetURL returns the public URL of a cached asset. It is pure string
	// construction and never touches the store.
	AssetURL(fileID, pageName, assetID string, version int) string
}
