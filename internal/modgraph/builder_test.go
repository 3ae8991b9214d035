package modgraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/seamui/seam/internal/directive"
)

// writeApp lays out a fixture application under a temp dir.
func writeApp(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, src := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestBuild_TransitiveTraversal(t *testing.T) {
	root := writeApp(t, map[string]string{
		"server.js":  `import { page } from "./page.js";`,
		"page.js":    `import Counter from "./components/counter.js";` + "\n" + `export function page() {}`,
		"components/counter.js": `"use client";` + "\n" + `export default function Counter() {}`,
	})

	g, err := NewBuilder(root).Build("server.js")
	if err != nil {
		t.Fatal(err)
	}

	if g.ModuleCount() != 3 {
		t.Fatalf("Expected 3 modules, got %d", g.ModuleCount())
	}
	counter := g.GetModule("components/counter.js")
	if counter == nil {
		t.Fatal("Expected components/counter.js in graph")
	}
	if counter.Kind != directive.KindClient {
		t.Errorf("Expected client kind, got %v", counter.Kind)
	}
}

func TestBuild_VisitedOnceViaMultiplePaths(t *testing.T) {
	root := writeApp(t, map[string]string{
		"server.js": `import "./a.js"; import "./b.js";`,
		"a.js":      `import { util } from "./util.js";`,
		"b.js":      `import { util } from "./util.js";`,
		"util.js":   `export function util() {}`,
	})

	g, err := NewBuilder(root).Build("server.js")
	if err != nil {
		t.Fatal(err)
	}

	if g.ModuleCount() != 4 {
		t.Fatalf("Expected 4 modules (util visited once), got %d", g.ModuleCount())
	}
	if g.InDegree("util.js") != 2 {
		t.Errorf("Expected util.js to have 2 importers, got %d", g.InDegree("util.js"))
	}
}

func TestBuild_ExtensionProbing(t *testing.T) {
	root := writeApp(t, map[string]string{
		"server.js":       `import "./lib"; import "./widgets";`,
		"lib.js":          `export const lib = 1;`,
		"widgets/index.js": `export const w = 1;`,
	})

	g, err := NewBuilder(root).Build("server.js")
	if err != nil {
		t.Fatal(err)
	}
	if !g.HasModule("lib.js") {
		t.Error("Expected ./lib to resolve to lib.js")
	}
	if !g.HasModule("widgets/index.js") {
		t.Error("Expected ./widgets to resolve to widgets/index.js")
	}
}

func TestBuild_BareSpecifiersExternal(t *testing.T) {
	root := writeApp(t, map[string]string{
		"server.js": `import { h } from "seam/runtime";` + "\n" + `export const x = 1;`,
	})

	g, err := NewBuilder(root).Build("server.js")
	if err != nil {
		t.Fatal(err)
	}
	if g.ModuleCount() != 1 {
		t.Errorf("Expected only the entry module, got %d", g.ModuleCount())
	}
}

func TestBuild_CSSModule(t *testing.T) {
	root := writeApp(t, map[string]string{
		"server.js": `import "./styles.css";`,
		"styles.css": `body { margin: 0; }`,
	})

	g, err := NewBuilder(root).Build("server.js")
	if err != nil {
		t.Fatal(err)
	}
	css := g.GetModule("styles.css")
	if css == nil || !css.CSS {
		t.Fatalf("Expected styles.css as CSS module, got %+v", css)
	}
}

func TestBuild_ConflictingDirectiveAborts(t *testing.T) {
	root := writeApp(t, map[string]string{
		"server.js": `import "./mixed.js";`,
		"mixed.js":  `"use client";` + "\n" + `"use server";` + "\n" + `export const x = 1;`,
	})

	_, err := NewBuilder(root).Build("server.js")
	if err == nil {
		t.Fatal("Expected conflicting directive error")
	}
	if !directive.IsConflictingDirective(err) {
		t.Errorf("Expected ConflictingDirectiveError, got %v", err)
	}
}

func TestBuild_UnresolvedImportFails(t *testing.T) {
	root := writeApp(t, map[string]string{
		"server.js": `import "./missing.js";`,
	})

	_, err := NewBuilder(root).Build("server.js")
	if err == nil {
		t.Fatal("Expected unresolved import error")
	}
}

func TestBuild_MissingEntryFails(t *testing.T) {
	root := writeApp(t, map[string]string{})
	_, err := NewBuilder(root).Build("server.js")
	if err == nil {
		t.Fatal("Expected missing entry error")
	}
}
