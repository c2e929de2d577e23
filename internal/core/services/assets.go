package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
	"github.com/custodia-labs/figsync/internal/core/ports/driving"
)

// AssetCatalogue serves read-only views of a design file and the public
// URLs of cached assets.
type AssetCatalogue struct {
	indexer *AssetIndexer
	source  driven.DocumentSource
	baseURL string
}

var _ driving.AssetService = (*AssetCatalogue)(nil)

// NewAssetCatalogue creates a catalogue. baseURL is the public root the
// blob store serves cached assets under.
func NewAssetCatalogue(indexer *AssetIndexer, source driven.DocumentSource, baseURL string) *AssetCatalogue {
	return &AssetCatalogue{indexer: indexer, source: source, baseURL: baseURL}
}

// Pages lists the pages of a file.
func (c *AssetCatalogue) Pages(ctx context.Context, fileID string) ([]domain.PageRef, error) {
	if fileID == "" {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("fileId is required"))
	}
	return c.indexer.Pages(ctx, fileID)
}

// FileVersion returns the upstream version identifier of a file.
func (c *AssetCatalogue) FileVersion(ctx context.Context, fileID string) (string, error) {
	if fileID == "" {
		return "", errors.Join(domain.ErrInvalidInput, errors.New("fileId is required"))
	}
	info, err := c.source.FetchDocument(ctx, fileID, pageListDepth)
	if err != nil {
		return "", fmt.Errorf("fetch document: %w", err)
	}
	return info.Version, nil
}

// Assets lists frames grouped by page. No page names means every page.
func (c *AssetCatalogue) Assets(
	ctx context.Context,
	fileID string,
	pageNames []string,
) (map[string][]domain.DiscoveredAsset, error) {
	if fileID == "" {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("fileId is required"))
	}
	sel := domain.AllPages()
	if len(pageNames) > 0 {
		sel = domain.PagesNamed(pageNames...)
	}
	return c.indexer.DiscoverAssetsByPage(ctx, fileID, sel)
}

// Templates lists templates, optionally restricted by name.
func (c *AssetCatalogue) Templates(ctx context.Context, fileID string, names []string) ([]domain.Template, error) {
	if fileID == "" {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("fileId is required"))
	}
	return c.indexer.DiscoverTemplates(ctx, fileID, names)
}

// AssetURL builds the public URL of a cached asset.
func (c *AssetCatalogue) AssetURL(fileID, pageName, assetID string, version int) string {
	return domain.AssetURL(c.baseURL, fileID, pageName, assetID, version)
}
