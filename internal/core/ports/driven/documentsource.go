package driven

import (
	"context"

	"github.com/custodia-labs/figsync/internal/core/domain"
)

// DocumentSource is a read-only view of the upstream design API.
// Any non-success response fails the call with *domain.UpstreamAPIError.
// Implementations do not retry.
type DocumentSource interface {
	// FetchDocument returns the file at the given depth. Depth 1 yields the page list.
	FetchDocument(ctx context.Context, fileID string, depth int) (*domain.FileInfo, error)

	// FetchSubtree returns the requested nodes keyed by node id. Ids the
	// upstream does not know are absent from the map. domain.FullDepth
	// requests the whole subtree.
	FetchSubtree(ctx context.Context, fileID string, nodeIDs []string, depth int) (map[string]domain.Node, error)

	// FetchRenderedImages returns temporary image URLs keyed by node id.
	// Nodes the upstream could not render are absent from the map.
	FetchRenderedImages(ctx context.Context, fileID string, nodeIDs []string) (map[string]string, error)
}

// ImageDownloader fetches the bytes behind a temporary image URL.
type ImageDownloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}
