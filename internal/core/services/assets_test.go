package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/figsync/internal/core/domain"
)

func newCatalogue(src *mockDocumentSource) *AssetCatalogue {
	return NewAssetCatalogue(NewAssetIndexer(src), src, "https://cdn.example.com")
}

func TestAssetCatalogue(t *testing.T) {
	ctx := context.Background()

	t.Run("pages", func(t *testing.T) {
		src := newMockDocumentSource()
		src.addPage(page("1:0", "Icons"))
		src.addPage(page("2:0", "Logos"))

		pages, err := newCatalogue(src).Pages(ctx, "F1")

		require.NoError(t, err)
		require.Len(t, pages, 2)
		assert.Equal(t, domain.PageRef{ID: "2:0", Name: "Logos", Type: "CANVAS"}, pages[1])
	})

	t.Run("file version", func(t *testing.T) {
		src := newMockDocumentSource()
		src.addPage(page("1:0", "Icons"))
		src.info.Version = "123456"

		v, err := newCatalogue(src).FileVersion(ctx, "F1")

		require.NoError(t, err)
		assert.Equal(t, "123456", v)
	})

	t.Run("assets grouped by page", func(t *testing.T) {
		src := newMockDocumentSource()
		src.addPage(page("1:0", "Icons", frame("1:1", "Home")))
		src.addPage(page("2:0", "Logos", frame("2:1", "Brand"), frame("2:2", "Mark")))

		byPage, err := newCatalogue(src).Assets(ctx, "F1", []string{"Logos"})

		require.NoError(t, err)
		assert.Len(t, byPage, 1)
		assert.Len(t, byPage["Logos"], 2)
	})

	t.Run("templates", func(t *testing.T) {
		src := newMockDocumentSource()
		src.addPage(page("1:0", "Hero/Summer", frame("1:1", "Wide")))

		templates, err := newCatalogue(src).Templates(ctx, "F1", nil)

		require.NoError(t, err)
		require.Len(t, templates, 1)
		assert.Equal(t, "Hero", templates[0].Name)
	})

	t.Run("upstream error propagates", func(t *testing.T) {
		src := newMockDocumentSource()
		src.docErr = errors.New("unreachable")

		_, err := newCatalogue(src).Pages(ctx, "F1")

		require.Error(t, err)
	})

	t.Run("file id required", func(t *testing.T) {
		c := newCatalogue(newMockDocumentSource())

		_, err := c.Pages(ctx, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = c.FileVersion(ctx, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = c.Assets(ctx, "", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = c.Templates(ctx, "", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("asset url is deterministic", func(t *testing.T) {
		c := newCatalogue(newMockDocumentSource())

		a := c.AssetURL("F1", "Icons Set", "1:2", 3)
		b := c.AssetURL("F1", "Icons Set", "1:2", 3)

		assert.Equal(t, a, b)
		assert.Equal(t, "https://cdn.example.com/figma-cache/Icons+Set/1%3A2?v=3", a)
	})
}
