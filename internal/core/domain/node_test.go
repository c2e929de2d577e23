package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePage(t *testing.T) {
	payload := `{
		"id": "0:1",
		"name": "Logos",
		"type": "CANVAS",
		"backgroundColor": {"r": 1, "g": 1, "b": 1, "a": 1},
		"children": [
			{"id": "1:2", "name": "Primary", "type": "FRAME", "fills": [{"type": "SOLID"}],
			 "children": [{"id": "1:3", "name": "Mark", "strokes": []}]}
		]
	}`

	page, err := DecodePage([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, "0:1", page.ID)
	assert.Equal(t, "Logos", page.Name)
	assert.Equal(t, "CANVAS", page.Type)
	assert.Empty(t, page.Raw)
	require.Len(t, page.Children, 1)

	frame := page.Children[0]
	assert.Equal(t, "Primary", frame.Name)
	assert.Contains(t, string(frame.Raw), "fills")
	assert.Contains(t, string(frame.Raw), "strokes")
	assert.NotContains(t, string(frame.Raw), "backgroundColor")

	require.Len(t, frame.Children, 1)
	assert.Equal(t, "Mark", frame.Children[0].Name)
	assert.Empty(t, frame.Children[0].Raw)
}

func TestDecodePage_RetainedBytesBoundedByInput(t *testing.T) {
	const depth = 30
	leaf := `{"id":"leaf","name":"Leaf","blob":"` + strings.Repeat("x", 1<<20) + `"}`
	chain := leaf
	for i := depth; i > 0; i-- {
		chain = fmt.Sprintf(`{"id":"n%d","name":"N%d","children":[%s]}`, i, i, chain)
	}
	payload := `{"id":"0:1","name":"Deep","children":[` + chain + `]}`

	page, err := DecodePage([]byte(payload))
	require.NoError(t, err)

	assert.LessOrEqual(t, retainedRaw(page), len(payload))

	n := page
	for i := 0; i <= depth; i++ {
		require.Len(t, n.Children, 1)
		n = n.Children[0]
	}
	assert.Equal(t, "Leaf", n.Name)
}

func retainedRaw(n Node) int {
	total := len(n.Raw)
	for _, c := range n.Children {
		total += retainedRaw(c)
	}
	return total
}

func TestDecodePage_Errors(t *testing.T) {
	_, err := DecodePage([]byte(`{"id":`))
	assert.Error(t, err)

	_, err = DecodePage([]byte(`{"id":"0:1","children":[{"id":1}]}`))
	assert.Error(t, err)
}

func TestDecodeNode_KeepsRootPayload(t *testing.T) {
	node, err := DecodeNode([]byte(`{"id":"1:2","name":"Hero","fills":[],"children":[{"id":"1:3","name":"T"}]}`))
	require.NoError(t, err)

	assert.Contains(t, string(node.Raw), "fills")
	require.Len(t, node.Children, 1)
	assert.Empty(t, node.Children[0].Raw)
}

func TestNode_PlainUnmarshalKeepsNoRaw(t *testing.T) {
	var node Node
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","name":"a","children":[{"id":"2","name":"b"}]}`), &node))

	assert.Empty(t, node.Raw)
	assert.Empty(t, node.Children[0].Raw)
}

func TestNode_HasIdentity(t *testing.T) {
	assert.True(t, Node{ID: "1", Name: "a"}.HasIdentity())
	assert.False(t, Node{ID: "1"}.HasIdentity())
	assert.False(t, Node{Name: "a"}.HasIdentity())
}

func TestNode_Child(t *testing.T) {
	node := Node{Children: []Node{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}}}

	child, ok := node.Child("b")
	assert.True(t, ok)
	assert.Equal(t, "2", child.ID)

	_, ok = node.Child("c")
	assert.False(t, ok)
}

func TestFileInfo_Pages(t *testing.T) {
	info := FileInfo{
		Document: Node{Children: []Node{
			{ID: "0:1", Name: "Logos", Type: "CANVAS"},
			{ID: "0:2", Name: "Backgrounds", Type: "CANVAS"},
		}},
	}

	assert.Equal(t, []PageRef{
		{ID: "0:1", Name: "Logos", Type: "CANVAS"},
		{ID: "0:2", Name: "Backgrounds", Type: "CANVAS"},
	}, info.Pages())

	assert.Empty(t, FileInfo{}.Pages())
}
