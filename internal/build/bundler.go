package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/seamui/seam/internal/modgraph"
)

// Condition selects the module-resolution condition of a compilation. The
// same framework specifier resolves differently under the server and client
// conditions; getting two different resolutions is required, not a bug.
type Condition string

const (
	ConditionServer Condition = "server"
	ConditionClient Condition = "client"
)

// Transform rewrites one module's source for the bundle being produced.
// A nil Transform is the identity.
type Transform func(mod *modgraph.Module, src []byte) []byte

// Request describes one bundle pass over a set of modules.
type Request struct {
	Graph      *modgraph.Graph
	Modules    []string          // module ids to emit, importers first
	OutDir     string            // directory chunk files are written into
	Condition  Condition         // module-resolution condition
	Transform  Transform         // boundary rewriter, nil for passthrough
	EntryNames map[string]string // module id -> entry name (chunk name stem)
	Names      map[string]string // preassigned module id -> chunk file name
}

// BundleResult is the chunk/module association list of a finalized bundle.
type BundleResult struct {
	Chunks map[string]string // module id -> emitted chunk file name
}

// Bundler is the transform-capable collaborator the orchestrator drives.
type Bundler interface {
	Bundle(ctx context.Context, req *Request) (*BundleResult, error)
}

// frameworkPattern matches bare framework specifiers such as "seam/runtime"
// so they can be resolved per condition.
var frameworkPattern = regexp.MustCompile(`(["'])seam/([a-z-]+)(["'])`)

// ChunkBundler emits one addressable chunk file per module. Chunk names are
// content-addressed over the original source so they are stable across the
// build passes of one invocation.
type ChunkBundler struct {
	root        string // absolute app root for reading module sources
	parallelism int
}

// NewChunkBundler creates a ChunkBundler reading sources under root.
func NewChunkBundler(root string, parallelism int) *ChunkBundler {
	if parallelism < 1 {
		parallelism = 1
	}
	return &ChunkBundler{root: root, parallelism: parallelism}
}

// Bundle transforms and writes every requested module as its own chunk.
// Individual module transforms run in parallel; naming happens up front so
// import rewriting never depends on write completion order.
func (b *ChunkBundler) Bundle(ctx context.Context, req *Request) (*BundleResult, error) {
	if err := os.MkdirAll(req.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %q: %w", req.OutDir, err)
	}

	// Name every chunk first: importers need their children's final names.
	sources := make(map[string][]byte, len(req.Modules))
	names := make(map[string]string, len(req.Modules))
	for _, id := range req.Modules {
		src, err := os.ReadFile(filepath.Join(b.root, filepath.FromSlash(id)))
		if err != nil {
			return nil, fmt.Errorf("failed to read module %q: %w", id, err)
		}
		sources[id] = src

		if name, ok := req.Names[id]; ok {
			names[id] = name
			continue
		}
		stem, ok := req.EntryNames[id]
		if !ok {
			stem = SharedEntryPrefix + trailingSegment(id)
		}
		names[id] = chunkFileName(stem, id, src)
	}

	result := &BundleResult{Chunks: make(map[string]string, len(req.Modules))}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallelism)

	for _, id := range req.Modules {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			mod := req.Graph.GetModule(id)
			out := sources[id]
			if !mod.CSS {
				if req.Transform != nil {
					out = req.Transform(mod, out)
				}
				out = rewriteImports(mod, out, names, req.Condition)
			}

			name := names[id]
			if err := os.WriteFile(filepath.Join(req.OutDir, name), out, 0644); err != nil {
				return fmt.Errorf("failed to write chunk %q: %w", name, err)
			}

			mu.Lock()
			result.Chunks[id] = name
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// rewriteImports points first-party import specifiers at the emitted chunk
// files and resolves bare framework specifiers for the active condition.
func rewriteImports(mod *modgraph.Module, src []byte, names map[string]string, condition Condition) []byte {
	out := string(src)
	for spec, childID := range mod.Resolved {
		if name, ok := names[childID]; ok {
			out = strings.ReplaceAll(out, `"`+spec+`"`, `"./`+name+`"`)
			out = strings.ReplaceAll(out, `'`+spec+`'`, `'./`+name+`'`)
		}
	}
	out = frameworkPattern.ReplaceAllString(out, fmt.Sprintf(`${1}./seam-${2}.%s.mjs${3}`, condition))
	return []byte(out)
}

// chunkFileName derives the content-addressed chunk file name for a module.
func chunkFileName(stem, id string, src []byte) string {
	sum := sha256.Sum256(src)
	ext := ".mjs"
	if strings.HasSuffix(id, ".css") {
		ext = ".css"
	}
	return fmt.Sprintf("%s-%s%s", stem, hex.EncodeToString(sum[:4]), ext)
}
