package payload

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResume_GraftsBoundaries(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	tree := Element("main", nil,
		Text("shell"),
		&Node{Kind: KindSuspense, Boundary: "b0", Fallback: Text("loading...")},
	)
	require.NoError(t, enc.WriteRow(Row{Kind: RowTree, Node: tree}))
	require.NoError(t, enc.WriteRow(Row{
		Kind:     RowBoundary,
		Boundary: "b0",
		Node:     Element("section", nil, Text("resolved")),
	}))
	require.NoError(t, enc.WriteRow(Row{Kind: RowDone}))

	root, err := Resume(&buf)
	require.NoError(t, err)
	require.Len(t, root.Children, 2)

	grafted := root.Children[1]
	assert.Equal(t, KindElement, grafted.Kind)
	assert.Equal(t, "section", grafted.Tag)
	require.Len(t, grafted.Children, 1)
	assert.Equal(t, "resolved", grafted.Children[0].Text)
}

func TestResume_UnknownBoundaryFails(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.WriteRow(Row{Kind: RowTree, Node: Text("shell")}))
	require.NoError(t, enc.WriteRow(Row{Kind: RowBoundary, Boundary: "nope", Node: Text("x")}))

	_, err := Resume(&buf)
	assert.Error(t, err)
}

func TestResume_StreamErrorRowFails(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.WriteRow(Row{Kind: RowTree, Node: Text("shell")}))
	require.NoError(t, enc.WriteRow(Row{Kind: RowError, Message: "render exploded"}))

	_, err := Resume(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render exploded")
}

func TestResume_BoundaryErrorRowDegradesOneBoundary(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	tree := Element("main", nil,
		&Node{Kind: KindSuspense, Boundary: "b1", Fallback: Text("...")},
		&Node{Kind: KindSuspense, Boundary: "b2", Fallback: Text("...")},
	)
	require.NoError(t, enc.WriteRow(Row{Kind: RowTree, Node: tree}))
	require.NoError(t, enc.WriteRow(Row{Kind: RowError, Boundary: "b1", Message: "upstream timeout"}))
	require.NoError(t, enc.WriteRow(Row{
		Kind:     RowBoundary,
		Boundary: "b2",
		Node:     Element("section", nil, Text("resolved")),
	}))
	require.NoError(t, enc.WriteRow(Row{Kind: RowDone}))

	root, err := Resume(&buf)
	require.NoError(t, err)
	require.Len(t, root.Children, 2)

	failed := root.Children[0]
	assert.Equal(t, KindElement, failed.Kind)
	assert.Equal(t, "upstream timeout", failed.Props["data-seam-error"])

	resolved := root.Children[1]
	assert.Equal(t, "section", resolved.Tag)
}

func TestResume_BoundaryErrorRowUnknownBoundaryFails(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.WriteRow(Row{Kind: RowTree, Node: Text("shell")}))
	require.NoError(t, enc.WriteRow(Row{Kind: RowError, Boundary: "nope", Message: "x"}))

	_, err := Resume(&buf)
	assert.Error(t, err)
}

func TestResume_EmptyStreamFails(t *testing.T) {
	_, err := Resume(bytes.NewReader(nil))
	assert.Error(t, err)
}
