// Package modgraph provides the module dependency graph structures and
// algorithms driving the build orchestrator.
package modgraph

import (
	"github.com/seamui/seam/internal/directive"
)

// Module represents one source module discovered during analysis.
// Immutable after classification.
type Module struct {
	ID       string             // Stable module identity: path relative to the app root
	Kind     directive.Kind     // Client, Server, or Shared
	Exports  []string           // Exported binding names in declaration order
	Imports  []directive.Import // Static imports in document order
	Resolved map[string]string  // Import specifier -> resolved module id (first-party only)
	CSS      bool               // True for stylesheet modules (passthrough chunks)
}

// Graph represents the complete module dependency structure for one build.
type Graph struct {
	Modules   map[string]*Module  // module id -> module
	Children  map[string][]string // module id -> imported module ids (outgoing edges)
	Parents   map[string][]string // module id -> importer module ids (incoming edges)
	Order     []string            // module ids in discovery order
	Entries   []string            // entry module ids
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		Modules:  make(map[string]*Module),
		Children: make(map[string][]string),
		Parents:  make(map[string][]string),
	}
}

// AddModule adds a module node to the graph, preserving discovery order.
func (g *Graph) AddModule(m *Module) {
	if _, exists := g.Modules[m.ID]; exists {
		return
	}
	g.Modules[m.ID] = m
	g.Order = append(g.Order, m.ID)
}

// AddEdge adds an importer -> imported relationship to the graph.
// It also maintains the reverse mapping for efficient importer lookups.
func (g *Graph) AddEdge(importer, imported string) {
	g.Children[importer] = append(g.Children[importer], imported)
	g.Parents[imported] = append(g.Parents[imported], importer)
}

// GetModule returns the module for a given id, or nil if not found.
func (g *Graph) GetModule(id string) *Module {
	return g.Modules[id]
}

// HasModule returns true if the graph contains a module with the given id.
func (g *Graph) HasModule(id string) bool {
	_, exists := g.Modules[id]
	return exists
}

// GetChildren returns all modules directly imported by id.
func (g *Graph) GetChildren(id string) []string {
	return g.Children[id]
}

// GetParents returns all direct importers of id.
func (g *Graph) GetParents(id string) []string {
	return g.Parents[id]
}

// ModuleCount returns the number of modules in the graph.
func (g *Graph) ModuleCount() int {
	return len(g.Modules)
}

// EdgeCount returns the number of import edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.Children {
		count += len(children)
	}
	return count
}

// ByKind returns module ids of the given kind in discovery order.
func (g *Graph) ByKind(kind directive.Kind) []string {
	var ids []string
	for _, id := range g.Order {
		if g.Modules[id].Kind == kind {
			ids = append(ids, id)
		}
	}
	return ids
}

// ReachableFrom returns the ids of all modules reachable from entry
// (inclusive) in deterministic DFS preorder.
func (g *Graph) ReachableFrom(entry string) []string {
	var out []string
	visited := make(map[string]bool)

	var visit func(id string)
	visit = func(id string) {
		if visited[id] || !g.HasModule(id) {
			return
		}
		visited[id] = true
		out = append(out, id)
		for _, child := range g.GetChildren(id) {
			visit(child)
		}
	}
	visit(entry)
	return out
}

// InDegree returns the number of incoming edges (importers) for a module.
func (g *Graph) InDegree(id string) int {
	return len(g.Parents[id])
}

// OutDegree returns the number of outgoing edges (imports) for a module.
func (g *Graph) OutDegree(id string) int {
	return len(g.Children[id])
}
