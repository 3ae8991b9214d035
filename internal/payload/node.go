// Package payload implements the component-stream payload: a serialized,
// chunk-referencing representation of a rendered tree, decodable on either
// the server or the client.
package payload

import "context"

// NodeKind discriminates the node variants of a component tree.
type NodeKind string

const (
	// KindElement is an intrinsic markup element.
	KindElement NodeKind = "element"
	// KindText is a text leaf.
	KindText NodeKind = "text"
	// KindClientRef references a client component by chunk, not by value.
	KindClientRef NodeKind = "client-ref"
	// KindSuspense is a boundary whose content resolves after the shell.
	KindSuspense NodeKind = "suspense"
)

// ClientRef identifies a client component by its chunk location. The id and
// chunk list are stamped from the manifests during the RSC phase so the
// client can fetch exactly the chunks it needs.
type ClientRef struct {
	ID     string         `msgpack:"id"`
	Name   string         `msgpack:"name"`
	Chunks []string       `msgpack:"chunks"`
	Props  map[string]any `msgpack:"props"`
}

// Resolver produces the deferred content of a suspense boundary.
type Resolver func(ctx context.Context) (*Node, error)

// Node is one node of a component tree.
type Node struct {
	Kind     NodeKind       `msgpack:"kind"`
	Tag      string         `msgpack:"tag,omitempty"`
	Props    map[string]any `msgpack:"props,omitempty"`
	Children []*Node        `msgpack:"children,omitempty"`
	Text     string         `msgpack:"text,omitempty"`
	Ref      *ClientRef     `msgpack:"ref,omitempty"`
	Boundary string         `msgpack:"boundary,omitempty"`
	Fallback *Node          `msgpack:"fallback,omitempty"`

	// Resolve is the server-side thunk backing a suspense boundary.
	// Never serialized; the boundary content travels as its own row.
	Resolve Resolver `msgpack:"-"`
}

// Element creates an intrinsic element node.
func Element(tag string, props map[string]any, children ...*Node) *Node {
	return &Node{Kind: KindElement, Tag: tag, Props: props, Children: children}
}

// Text creates a text leaf.
func Text(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// Client creates a reference to a client component identified by module id.
// The chunk list is filled in during the RSC phase.
func Client(moduleID string, props map[string]any) *Node {
	return &Node{
		Kind: KindClientRef,
		Ref:  &ClientRef{ID: moduleID, Name: "*", Props: props},
	}
}

// Suspense creates a boundary that renders fallback immediately and streams
// the resolver's content as a follow-up row.
func Suspense(fallback *Node, resolve Resolver) *Node {
	return &Node{Kind: KindSuspense, Fallback: fallback, Resolve: resolve}
}

// Walk visits every node of the tree in document order. Returning false
// from fn stops descent into the current node's children.
func Walk(root *Node, fn func(*Node) bool) {
	if root == nil {
		return
	}
	if !fn(root) {
		return
	}
	if root.Fallback != nil {
		Walk(root.Fallback, fn)
	}
	for _, child := range root.Children {
		Walk(child, fn)
	}
}
