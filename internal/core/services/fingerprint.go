package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"

	"github.com/custodia-labs/figsync/internal/core/domain"
)

// ComputeFingerprint returns a content hash of the node's full subtree.
//
// The payload is the node as the upstream sent it, or its modelled fields
// when it was built in code. It is canonicalised with RFC 8785 (sorted
// keys, fixed number and string formatting) before hashing, so logically
// identical subtrees hash the same regardless of property order.
func ComputeFingerprint(node domain.Node) (string, error) {
	payload := []byte(node.Raw)
	if len(payload) == 0 {
		var err error
		payload, err = json.Marshal(node)
		if err != nil {
			return "", fmt.Errorf("serialise node %s: %w", node.ID, err)
		}
	}

	canonical, err := jcs.Transform(payload)
	if err != nil {
		return "", fmt.Errorf("canonicalise node %s: %w", node.ID, err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
