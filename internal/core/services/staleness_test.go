package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/figsync/internal/core/domain"
)

func TestStalenessDetector_Fingerprint(t *testing.T) {
	d := NewStalenessDetector(newMockBlobStore())

	assets, err := d.Fingerprint("Icons", page("1:0", "Icons", frame("1:1", "Home"), domain.Node{ID: "1:2"}))

	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "Icons", assets[0].PageName)
	assert.NotEmpty(t, assets[0].ContentFingerprint)
}

func TestStalenessDetector_FindStale(t *testing.T) {
	ctx := context.Background()
	asset := func(id, hash string) domain.DiscoveredAsset {
		return domain.DiscoveredAsset{PageName: "Icons", AssetID: id, AssetName: id, ContentFingerprint: hash}
	}

	t.Run("uncached asset is stale", func(t *testing.T) {
		d := NewStalenessDetector(newMockBlobStore())

		stale, err := d.FindStale(ctx, []domain.DiscoveredAsset{asset("1:1", "abc")})

		require.NoError(t, err)
		assert.Len(t, stale, 1)
	})

	t.Run("matching hash is fresh", func(t *testing.T) {
		blobs := newMockBlobStore()
		blobs.seed(domain.AssetKey("Icons", "1:1"), "abc")

		stale, err := NewStalenessDetector(blobs).FindStale(ctx, []domain.DiscoveredAsset{asset("1:1", "abc")})

		require.NoError(t, err)
		assert.Empty(t, stale)
		assert.NotNil(t, stale)
	})

	t.Run("differing hash is stale", func(t *testing.T) {
		blobs := newMockBlobStore()
		blobs.seed(domain.AssetKey("Icons", "1:1"), "old")

		stale, err := NewStalenessDetector(blobs).FindStale(ctx, []domain.DiscoveredAsset{asset("1:1", "new")})

		require.NoError(t, err)
		assert.Len(t, stale, 1)
	})

	t.Run("hash comparison is exact", func(t *testing.T) {
		blobs := newMockBlobStore()
		blobs.seed(domain.AssetKey("Icons", "1:1"), "ABC")

		stale, err := NewStalenessDetector(blobs).FindStale(ctx, []domain.DiscoveredAsset{asset("1:1", "abc")})

		require.NoError(t, err)
		assert.Len(t, stale, 1)
	})

	t.Run("missing hash metadata is stale", func(t *testing.T) {
		blobs := newMockBlobStore()
		blobs.objects[domain.AssetKey("Icons", "1:1")] = storedObject{data: []byte("x")}

		stale, err := NewStalenessDetector(blobs).FindStale(ctx, []domain.DiscoveredAsset{asset("1:1", "abc")})

		require.NoError(t, err)
		assert.Len(t, stale, 1)
	})

	t.Run("keeps input order", func(t *testing.T) {
		blobs := newMockBlobStore()
		blobs.seed(domain.AssetKey("Icons", "1:2"), "b")
		in := []domain.DiscoveredAsset{asset("1:1", "a"), asset("1:2", "b"), asset("1:3", "c"), asset("1:4", "d")}

		stale, err := NewStalenessDetector(blobs).FindStale(ctx, in)

		require.NoError(t, err)
		require.Len(t, stale, 3)
		assert.Equal(t, "1:1", stale[0].AssetID)
		assert.Equal(t, "1:3", stale[1].AssetID)
		assert.Equal(t, "1:4", stale[2].AssetID)
	})

	t.Run("storage error propagates", func(t *testing.T) {
		blobs := newMockBlobStore()
		blobs.headErr = errors.New("access denied")

		_, err := NewStalenessDetector(blobs).FindStale(ctx, []domain.DiscoveredAsset{asset("1:1", "abc")})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
	})
}
