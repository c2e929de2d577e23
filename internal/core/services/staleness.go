package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
)

// metadataReadConcurrency bounds parallel metadata lookups during a sync.
const metadataReadConcurrency = 8

// StalenessDetector decides which assets differ from their cached copies.
type StalenessDetector struct {
	blobs driven.BlobStore
}

// NewStalenessDetector creates a detector comparing against blobs.
func NewStalenessDetector(blobs driven.BlobStore) *StalenessDetector {
	return &StalenessDetector{blobs: blobs}
}

// Fingerprint indexes the frames of a fully fetched page and attaches a
// content fingerprint to each.
func (d *StalenessDetector) Fingerprint(pageName string, page domain.Node) ([]domain.DiscoveredAsset, error) {
	frames := Frames(page)
	assets := make([]domain.DiscoveredAsset, 0, len(frames))
	for _, f := range frames {
		fp, err := ComputeFingerprint(f)
		if err != nil {
			return nil, err
		}
		assets = append(assets, domain.DiscoveredAsset{
			PageName:           pageName,
			AssetID:            f.ID,
			AssetName:          f.Name,
			ContentFingerprint: fp,
		})
	}
	return assets, nil
}

// FindStale returns, in input order, the assets that are not cached or
// whose cached fingerprint differs. Comparison is exact string equality.
// A missing object or missing hash metadata counts as stale; any other
// storage failure is returned.
func (d *StalenessDetector) FindStale(
	ctx context.Context,
	assets []domain.DiscoveredAsset,
) ([]domain.DiscoveredAsset, error) {
	stale := make([]bool, len(assets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(metadataReadConcurrency)
	for i := range assets {
		g.Go(func() error {
			isStale, err := d.isStale(gctx, assets[i])
			if err != nil {
				return err
			}
			stale[i] = isStale
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := []domain.DiscoveredAsset{}
	for i, a := range assets {
		if stale[i] {
			result = append(result, a)
		}
	}
	return result, nil
}

func (d *StalenessDetector) isStale(ctx context.Context, asset domain.DiscoveredAsset) (bool, error) {
	info, err := d.blobs.Head(ctx, asset.Key())
	if errors.Is(err, domain.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read metadata of %s: %w", asset.Key(), err)
	}
	cached := info.Hash()
	return cached == "" || cached != asset.ContentFingerprint, nil
}
