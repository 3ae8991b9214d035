package modgraph

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/seamui/seam/internal/directive"
)

// candidateSuffixes are tried in order when a relative specifier does not
// resolve to a file as written.
var candidateSuffixes = []string{"", ".js", ".jsx", ".mjs", "/index.js"}

// Builder constructs a module dependency graph by traversing imports
// transitively from the entry modules. Each module is scanned exactly once
// even when reachable via multiple import paths.
type Builder struct {
	root    string // absolute app root directory
	scanner *directive.Scanner
}

// NewBuilder creates a graph builder rooted at the given app directory.
func NewBuilder(root string) *Builder {
	return &Builder{
		root:    root,
		scanner: directive.NewScanner(),
	}
}

// Build traverses the graph from the given entry modules (paths relative to
// the app root). Bare specifiers are treated as external packages and are
// not traversed.
func (b *Builder) Build(entries ...string) (*Graph, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no entry modules specified")
	}

	g := NewGraph()

	// Iterative DFS with a visited set: classification is idempotent.
	var visit func(id string) error
	visit = func(id string) error {
		if g.HasModule(id) {
			return nil
		}

		mod, err := b.scanModule(id)
		if err != nil {
			return err
		}
		g.AddModule(mod)

		// Walk imports in document order so edge order is deterministic.
		seen := make(map[string]bool)
		for _, imp := range mod.Imports {
			childID, ok := mod.Resolved[imp.Specifier]
			if !ok || seen[childID] {
				continue
			}
			seen[childID] = true
			g.AddEdge(id, childID)
			if err := visit(childID); err != nil {
				return err
			}
		}
		return nil
	}

	for _, entry := range entries {
		id := path.Clean(filepath.ToSlash(entry))
		if !fileExists(filepath.Join(b.root, filepath.FromSlash(id))) {
			return nil, fmt.Errorf("entry module %q not found under %q", id, b.root)
		}
		g.Entries = append(g.Entries, id)
		if err := visit(id); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// scanModule reads and classifies a single module.
func (b *Builder) scanModule(id string) (*Module, error) {
	abs := filepath.Join(b.root, filepath.FromSlash(id))
	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read module %q: %w", id, err)
	}

	// Stylesheets are passthrough chunks with no exports or imports.
	if strings.HasSuffix(id, ".css") {
		return &Module{ID: id, Kind: directive.KindShared, CSS: true}, nil
	}

	res, err := b.scanner.Scan(id, src)
	if err != nil {
		return nil, err
	}

	mod := &Module{
		ID:       id,
		Kind:     res.Kind,
		Exports:  res.Exports,
		Imports:  res.Imports,
		Resolved: make(map[string]string),
	}

	for _, imp := range res.Imports {
		childID, ok, err := b.resolve(id, imp.Specifier)
		if err != nil {
			return nil, err
		}
		if ok {
			mod.Resolved[imp.Specifier] = childID
		}
	}
	return mod, nil
}

// resolve maps an import specifier to a module id. Relative specifiers are
// resolved against the importer's directory with extension probing. Bare
// specifiers are external: (id, false, nil).
func (b *Builder) resolve(fromID, specifier string) (string, bool, error) {
	if !strings.HasPrefix(specifier, "./") && !strings.HasPrefix(specifier, "../") {
		return "", false, nil
	}

	base := path.Join(path.Dir(fromID), specifier)
	for _, suffix := range candidateSuffixes {
		candidate := path.Clean(base + suffix)
		if strings.HasPrefix(candidate, "..") {
			continue
		}
		if fileExists(filepath.Join(b.root, filepath.FromSlash(candidate))) {
			return candidate, true, nil
		}
	}
	return "", false, fmt.Errorf("module %q: import %q does not resolve to a file under the app root", fromID, specifier)
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
