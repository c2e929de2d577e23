package figma

import "github.com/custodia-labs/figsync/internal/core/domain"

// fileResponse is the body of GET /files/{key}.
type fileResponse struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	LastModified string       `json:"lastModified"`
	Document     *domain.Node `json:"document"`
}

// nodesResponse is the body of GET /files/{key}/nodes. Unknown ids map to null.
type nodesResponse struct {
	Name  string                `json:"name"`
	Nodes map[string]*nodeEntry `json:"nodes"`
}

type nodeEntry struct {
	Document *pageDocument `json:"document"`
}

// pageDocument decodes a requested subtree with domain.DecodePage, so only
// its direct children keep their raw payload for fingerprinting.
type pageDocument struct {
	domain.Node
}

func (p *pageDocument) UnmarshalJSON(data []byte) error {
	node, err := domain.DecodePage(data)
	if err != nil {
		return err
	}
	p.Node = node
	return nil
}

// imagesResponse is the body of GET /images/{key}. Nodes that failed to
// render map to null.
type imagesResponse struct {
	Err    *string            `json:"err"`
	Images map[string]*string `json:"images"`
}

// errorResponse is the API's error body. Endpoints disagree on the field name.
type errorResponse struct {
	Status  int    `json:"status"`
	Err     string `json:"err"`
	Message string `json:"message"`
}

func (e errorResponse) text() string {
	if e.Err != "" {
		return e.Err
	}
	return e.Message
}
