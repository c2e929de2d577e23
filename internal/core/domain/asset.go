package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// Blob store key prefixes. These are a contract with external consumers
// that build URLs from (pageName, assetId) without calling the core.
const (
	AssetKeyPrefix = "figma-cache/"
	JobKeyPrefix   = "job-markers/"

	// HashMetadataKey is the metadata entry holding the fingerprint of the
	// content that was fetched into a cached asset.
	HashMetadataKey = "hash"

	// ContentTypePNG is the content type of every cached asset.
	ContentTypePNG = "image/png"

	// ContentTypeJSON is the content type of job markers.
	ContentTypeJSON = "application/json"

	// MaxImageBatch is the upstream limit of node ids per rendered-image request.
	MaxImageBatch = 20
)

// DiscoveredAsset is one frame found by walking a page. It is rebuilt on
// every sync pass and never persisted directly.
type DiscoveredAsset struct {
	PageName           string `json:"pageName"`
	AssetID            string `json:"assetId"`
	AssetName          string `json:"assetName"`
	ContentFingerprint string `json:"contentFingerprint,omitempty"`
}

// Key returns the blob store key of the cached copy of this asset.
func (a DiscoveredAsset) Key() string {
	return AssetKey(a.PageName, a.AssetID)
}

// ToSync converts the asset into the payload handed to the worker.
func (a DiscoveredAsset) ToSync() AssetToSync {
	return AssetToSync{
		PageName:  a.PageName,
		AssetID:   a.AssetID,
		AssetName: a.AssetName,
		Hash:      a.ContentFingerprint,
	}
}

// AssetToSync is one entry of a worker request.
type AssetToSync struct {
	PageName  string `json:"pageName"`
	AssetID   string `json:"assetId"`
	AssetName string `json:"assetName"`
	Hash      string `json:"hash"`
}

// Key returns the blob store key the worker writes this asset to.
func (a AssetToSync) Key() string {
	return AssetKey(a.PageName, a.AssetID)
}

// AssetKey returns the storage key of a cached asset.
func AssetKey(pageName, assetID string) string {
	return AssetKeyPrefix + pageName + "/" + assetID
}

// ObjectInfo describes a stored blob without its payload.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// Hash returns the fingerprint recorded on a cached asset, if any.
func (o ObjectInfo) Hash() string {
	if o.Metadata == nil {
		return ""
	}
	return o.Metadata[HashMetadataKey]
}

// PutOptions carries the optional attributes of a blob write.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

var (
	pageNameEscaper = strings.NewReplacer("+", "%2B", " ", "+")
	assetIDEscaper  = strings.NewReplacer(":", "%3A")
)

// AssetURL builds the public URL of a cached asset. The result depends only
// on its inputs. A positive version is appended as a cache-busting query.
//
// The key layout is not namespaced by file, so the file id does not appear
// in the URL; it is accepted so callers keep a stable signature if it ever is.
func AssetURL(baseURL, _, pageName, assetID string, version int) string {
	u := strings.TrimSuffix(baseURL, "/") + "/" + AssetKeyPrefix +
		pageNameEscaper.Replace(pageName) + "/" + assetIDEscaper.Replace(assetID)
	if version > 0 {
		u += "?v=" + strconv.Itoa(version)
	}
	return u
}

// AssetKeyFromURLPath turns the escaped path of an AssetURL, relative to
// its base URL, back into the store key. A '+' is a space and percent
// escapes are decoded, so a page named "C++" arrives as "C%2B%2B".
func AssetKeyFromURLPath(escapedPath string) (string, error) {
	return url.PathUnescape(strings.ReplaceAll(escapedPath, "+", " "))
}

// NormalizeKeyPrefix returns a remote store key prefix that ends in '/'
// so that prefix+key and the public URL base agree. Leading and trailing
// slashes are collapsed; an empty or all-slash prefix means none.
func NormalizeKeyPrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// PageSelector chooses which pages discovery walks.
type PageSelector struct {
	All   bool
	Names []string
}

// AllPages selects every page of the document.
func AllPages() PageSelector {
	return PageSelector{All: true}
}

// PagesNamed selects pages by exact name.
func PagesNamed(names ...string) PageSelector {
	return PageSelector{Names: names}
}

// Matches reports whether a page with the given name is selected.
func (s PageSelector) Matches(name string) bool {
	if s.All {
		return true
	}
	for _, n := range s.Names {
		if n == name {
			return true
		}
	}
	return false
}
