package payload

import (
	"errors"
	"fmt"
	"io"
)

// Resume reassembles a component stream into a complete tree: the in-process
// client runtime. The tree row arrives first; each boundary row replaces the
// matching suspense placeholder with its resolved content.
func Resume(r io.Reader) (*Node, error) {
	dec := NewDecoder(r)

	var root *Node
	for {
		row, err := dec.ReadRow()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		switch row.Kind {
		case RowTree:
			root = row.Node
		case RowBoundary:
			if root == nil {
				return nil, fmt.Errorf("payload: boundary row %q before tree row", row.Boundary)
			}
			if !graft(root, row.Boundary, row.Node) {
				return nil, fmt.Errorf("payload: no suspense boundary %q in tree", row.Boundary)
			}
		case RowError:
			// A boundary-scoped error degrades just that boundary, matching
			// the server's streaming behavior. Stream-level errors carry no
			// boundary and fail the whole resume.
			if row.Boundary == "" {
				return nil, errors.New(row.Message)
			}
			if root == nil {
				return nil, fmt.Errorf("payload: error row %q before tree row", row.Boundary)
			}
			marker := Element("div", map[string]any{"data-seam-error": row.Message})
			if !graft(root, row.Boundary, marker) {
				return nil, fmt.Errorf("payload: no suspense boundary %q in tree", row.Boundary)
			}
		case RowDone:
			return root, nil
		}
	}

	if root == nil {
		return nil, errors.New("payload: stream ended without a tree row")
	}
	return root, nil
}

// graft replaces the suspense placeholder identified by boundary with the
// resolved subtree. Returns false when no matching boundary exists.
func graft(root *Node, boundary string, resolved *Node) bool {
	found := false
	Walk(root, func(n *Node) bool {
		if found {
			return false
		}
		if n.Kind == KindSuspense && n.Boundary == boundary {
			// Replace in place: the placeholder becomes the resolved node.
			*n = *resolved
			found = true
			return false
		}
		return true
	})
	return found
}
