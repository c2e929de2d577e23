package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
	"github.com/custodia-labs/figsync/internal/logger"
)

const (
	// pageListDepth reaches the pages under the document root.
	pageListDepth = 1

	// frameDepth reaches the frames directly under a page.
	frameDepth = 1

	// templateIndexDepth reaches the children of frames on a template index page.
	templateIndexDepth = 2
)

// AssetIndexer turns the design document's page/frame hierarchy into a
// flat list of assets.
type AssetIndexer struct {
	source driven.DocumentSource
}

// NewAssetIndexer creates an indexer reading from source.
func NewAssetIndexer(source driven.DocumentSource) *AssetIndexer {
	return &AssetIndexer{source: source}
}

// Frames returns the direct children of a page that can be assets.
func Frames(page domain.Node) []domain.Node {
	frames := make([]domain.Node, 0, len(page.Children))
	for _, child := range page.Children {
		if child.HasIdentity() {
			frames = append(frames, child)
		}
	}
	return frames
}

// AssetsOf emits one asset per frame of page. Fingerprints are left empty.
func AssetsOf(pageName string, page domain.Node) []domain.DiscoveredAsset {
	frames := Frames(page)
	assets := make([]domain.DiscoveredAsset, 0, len(frames))
	for _, f := range frames {
		assets = append(assets, domain.DiscoveredAsset{
			PageName:  pageName,
			AssetID:   f.ID,
			AssetName: f.Name,
		})
	}
	return assets
}

// Pages lists the pages of a file.
func (i *AssetIndexer) Pages(ctx context.Context, fileID string) ([]domain.PageRef, error) {
	info, err := i.source.FetchDocument(ctx, fileID, pageListDepth)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	return info.Pages(), nil
}

// DiscoverAssets returns the assets of every selected page. A file with no
// matching pages yields an empty list, not an error.
func (i *AssetIndexer) DiscoverAssets(
	ctx context.Context,
	fileID string,
	sel domain.PageSelector,
) ([]domain.DiscoveredAsset, error) {
	byPage, order, err := i.discover(ctx, fileID, sel)
	if err != nil {
		return nil, err
	}

	assets := []domain.DiscoveredAsset{}
	for _, name := range order {
		assets = append(assets, byPage[name]...)
	}
	return assets, nil
}

// DiscoverAssetsByPage is DiscoverAssets grouped by page name. Every
// selected page that exists has an entry, even when it has no frames.
func (i *AssetIndexer) DiscoverAssetsByPage(
	ctx context.Context,
	fileID string,
	sel domain.PageSelector,
) (map[string][]domain.DiscoveredAsset, error) {
	byPage, _, err := i.discover(ctx, fileID, sel)
	return byPage, err
}

func (i *AssetIndexer) discover(
	ctx context.Context,
	fileID string,
	sel domain.PageSelector,
) (map[string][]domain.DiscoveredAsset, []string, error) {
	pages, err := i.Pages(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}

	var selected []domain.PageRef
	for _, p := range pages {
		if sel.Matches(p.Name) {
			selected = append(selected, p)
		}
	}

	byPage := make(map[string][]domain.DiscoveredAsset, len(selected))
	if len(selected) == 0 {
		return byPage, nil, nil
	}

	ids := make([]string, 0, len(selected))
	for _, p := range selected {
		ids = append(ids, p.ID)
	}
	nodes, err := i.source.FetchSubtree(ctx, fileID, ids, frameDepth)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch pages: %w", err)
	}

	order := make([]string, 0, len(selected))
	for _, p := range selected {
		node, ok := nodes[p.ID]
		if !ok {
			logger.Warn("Page %s (%s) missing from upstream response", p.Name, p.ID)
			continue
		}
		if _, seen := byPage[p.Name]; !seen {
			order = append(order, p.Name)
		}
		byPage[p.Name] = append(byPage[p.Name], AssetsOf(p.Name, node)...)
	}
	return byPage, order, nil
}

// templateGroupRef ties a (template, group) pair to the page holding its assets.
type templateGroupRef struct {
	template string
	group    string
	page     domain.PageRef
}

// DiscoverTemplates groups assets from template-style pages.
//
// A page named "Template/Group" contributes one group. A page named
// "Prefix/Template" is an index page: each of its frames named "T/G", or
// each frame "T" with a child "G", declares a pair whose assets live on the
// page "Prefix/G". When names is non-empty only those templates are kept.
func (i *AssetIndexer) DiscoverTemplates(
	ctx context.Context,
	fileID string,
	names []string,
) ([]domain.Template, error) {
	pages, err := i.Pages(ctx, fileID)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]domain.PageRef, len(pages))
	var refs []templateGroupRef
	var indexPages []domain.PageRef
	for _, p := range pages {
		byName[p.Name] = p
		if _, last, ok := domain.SplitPath(p.Name); ok && last == domain.TemplatePageSuffix {
			indexPages = append(indexPages, p)
			continue
		}
		if tmpl, group, ok := domain.SplitPair(p.Name); ok {
			refs = append(refs, templateGroupRef{template: tmpl, group: group, page: p})
		}
	}

	if len(indexPages) > 0 {
		declared, err := i.indexPageRefs(ctx, fileID, indexPages, byName)
		if err != nil {
			return nil, err
		}
		refs = append(refs, declared...)
	}

	refs = filterTemplates(refs, names)
	if len(refs) == 0 {
		return nil, domain.ErrNoTemplatesFound
	}

	nodes, err := i.source.FetchSubtree(ctx, fileID, uniquePageIDs(refs), frameDepth)
	if err != nil {
		return nil, fmt.Errorf("fetch template pages: %w", err)
	}

	var templates []domain.Template
	index := make(map[string]int)
	for _, ref := range refs {
		pos, ok := index[ref.template]
		if !ok {
			pos = len(templates)
			index[ref.template] = pos
			templates = append(templates, domain.Template{Name: ref.template})
		}
		assets := []domain.DiscoveredAsset{}
		if node, found := nodes[ref.page.ID]; found {
			assets = AssetsOf(ref.page.Name, node)
		}
		templates[pos].Groups = append(templates[pos].Groups, domain.TemplateGroup{
			Name:   ref.group,
			Assets: assets,
		})
	}
	return templates, nil
}

// indexPageRefs resolves the pairs declared on template index pages.
func (i *AssetIndexer) indexPageRefs(
	ctx context.Context,
	fileID string,
	indexPages []domain.PageRef,
	byName map[string]domain.PageRef,
) ([]templateGroupRef, error) {
	ids := make([]string, 0, len(indexPages))
	for _, p := range indexPages {
		ids = append(ids, p.ID)
	}
	nodes, err := i.source.FetchSubtree(ctx, fileID, ids, templateIndexDepth)
	if err != nil {
		return nil, fmt.Errorf("fetch template index pages: %w", err)
	}

	var refs []templateGroupRef
	for _, p := range indexPages {
		node, ok := nodes[p.ID]
		if !ok {
			continue
		}
		prefix, _, _ := domain.SplitPath(p.Name)
		for _, pair := range declaredPairs(node) {
			target, ok := byName[prefix+"/"+pair[1]]
			if !ok {
				logger.Warn("Template %s declares group %s but page %s/%s does not exist",
					pair[0], pair[1], prefix, pair[1])
				continue
			}
			refs = append(refs, templateGroupRef{template: pair[0], group: pair[1], page: target})
		}
	}
	return refs, nil
}

// declaredPairs lists the (template, group) pairs named by an index page's frames.
func declaredPairs(index domain.Node) [][2]string {
	var pairs [][2]string
	for _, frame := range Frames(index) {
		if tmpl, group, ok := domain.SplitPair(frame.Name); ok {
			pairs = append(pairs, [2]string{tmpl, group})
			continue
		}
		for _, child := range frame.Children {
			if child.Name != "" {
				pairs = append(pairs, [2]string{frame.Name, child.Name})
			}
		}
	}
	return pairs
}

func filterTemplates(refs []templateGroupRef, names []string) []templateGroupRef {
	if len(names) == 0 {
		return refs
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	kept := refs[:0:0]
	for _, r := range refs {
		if wanted[r.template] {
			kept = append(kept, r)
		}
	}
	return kept
}

func uniquePageIDs(refs []templateGroupRef) []string {
	seen := make(map[string]bool, len(refs))
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		if !seen[r.page.ID] {
			seen[r.page.ID] = true
			ids = append(ids, r.page.ID)
		}
	}
	return ids
}
