package domain

import "encoding/json"

// Node is a node in the upstream hierarchical design document.
// The core only ever reads snapshots of it.
type Node struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Children []Node `json:"children,omitempty"`

	// Raw holds the node exactly as the upstream sent it, including every
	// property the struct does not model. Only DecodePage and DecodeNode
	// fill it, and only on the nodes that get fingerprinted.
	Raw json.RawMessage `json:"-"`
}

// DecodePage decodes a page subtree and keeps the raw payload of each
// direct child (the frames). The page and deeper descendants carry no
// Raw, so the retained bytes never exceed the input and every byte is
// parsed a bounded number of times regardless of depth.
func DecodePage(data []byte) (Node, error) {
	var wire struct {
		ID       string            `json:"id"`
		Name     string            `json:"name"`
		Type     string            `json:"type"`
		Children []json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return Node{}, err
	}

	page := Node{ID: wire.ID, Name: wire.Name, Type: wire.Type}
	if len(wire.Children) > 0 {
		page.Children = make([]Node, 0, len(wire.Children))
	}
	for _, raw := range wire.Children {
		var child Node
		if err := json.Unmarshal(raw, &child); err != nil {
			return Node{}, err
		}
		child.Raw = raw
		page.Children = append(page.Children, child)
	}
	return page, nil
}

// DecodeNode decodes a subtree and keeps its payload on the root only.
func DecodeNode(data []byte) (Node, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return Node{}, err
	}
	n.Raw = append(json.RawMessage(nil), data...)
	return n, nil
}

// HasIdentity reports whether the node carries both an id and a name.
// Nodes without both are never treated as assets.
func (n Node) HasIdentity() bool {
	return n.ID != "" && n.Name != ""
}

// Child returns the first direct child with the given name.
func (n Node) Child(name string) (Node, bool) {
	for _, c := range n.Children {
		if c.Name == name {
			return c, true
		}
	}
	return Node{}, false
}

// PageRef identifies a page (a direct child of the document root).
type PageRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// FileInfo is the shallow view of a design file.
type FileInfo struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	LastModified string `json:"lastModified,omitempty"`
	Document     Node   `json:"document"`
}

// Pages returns the page list of a shallow document fetch.
func (f FileInfo) Pages() []PageRef {
	pages := make([]PageRef, 0, len(f.Document.Children))
	for _, p := range f.Document.Children {
		pages = append(pages, PageRef{ID: p.ID, Name: p.Name, Type: p.Type})
	}
	return pages
}

// FullDepth asks the document source for a subtree without a depth limit.
const FullDepth = 0
