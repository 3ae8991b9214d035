// Package assets tracks the code-split chunks touched during one render and
// derives the script/link tags and the static/dynamic asset partition.
package assets

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/elliotchance/orderedmap/v2"
)

// Assets is the JS/CSS partition of a chunk set, deduplicated, in
// first-touch order.
type Assets struct {
	JS  []string
	CSS []string
}

// LinkTags returns stylesheet and modulepreload link tags, CSS first.
func (a Assets) LinkTags() []string {
	tags := make([]string, 0, len(a.CSS)+len(a.JS))
	for _, css := range a.CSS {
		tags = append(tags, fmt.Sprintf(`<link rel="stylesheet" href="/chunks/%s">`, css))
	}
	for _, js := range a.JS {
		tags = append(tags, fmt.Sprintf(`<link rel="modulepreload" href="/chunks/%s">`, js))
	}
	return tags
}

// ScriptTags returns module script tags for the JS assets, in touch order.
func (a Assets) ScriptTags() []string {
	tags := make([]string, 0, len(a.JS))
	for _, js := range a.JS {
		tags = append(tags, fmt.Sprintf(`<script type="module" src="/chunks/%s"></script>`, js))
	}
	return tags
}

// Split is the partial-pre-rendering partition of a render's assets. Static
// shell assets are needed before any suspended content resolves and are
// eligible for edge caching; dynamic assets are not.
type Split struct {
	Static  Assets
	Dynamic Assets
}

// importThunkPattern extracts the literal specifier of an import thunk such
// as `() => import("./counter.js")`. Dynamically computed specifiers are
// unsupported and rejected.
var importThunkPattern = regexp.MustCompile(`import\(\s*["']([^"']+)["']\s*\)`)

// Extractor accumulates the chunks exercised by one render session.
//
// An Extractor must be instantiated per render session. Sharing one across
// requests leaks chunk sets between concurrent renders, corrupting both
// responses. Within a session the two render phases run concurrently over
// the same Extractor, so every method takes the mutex.
type Extractor struct {
	mu        sync.Mutex
	chunks    *orderedmap.OrderedMap[string, int] // chunk id -> touch index
	suspended bool
	splitAt   int // touch index of the first chunk after suspension
}

// NewExtractor creates an empty per-session Extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		chunks:  orderedmap.NewOrderedMap[string, int](),
		splitAt: -1,
	}
}

// AddChunk records that a chunk was touched by the render. Duplicate adds
// keep the first-touch position.
func (e *Extractor) AddChunk(chunk string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addChunkLocked(chunk)
}

func (e *Extractor) addChunkLocked(chunk string) {
	if _, exists := e.chunks.Get(chunk); exists {
		return
	}
	idx := e.chunks.Len()
	e.chunks.Set(chunk, idx)
	if e.suspended && e.splitAt == -1 {
		e.splitAt = idx
	}
}

// AddComponent records the chunk behind a client-component import thunk.
// The thunk source must contain the module specifier as a literal string.
func (e *Extractor) AddComponent(thunkSource string) error {
	m := importThunkPattern.FindStringSubmatch(thunkSource)
	if m == nil {
		return fmt.Errorf("assets: import thunk %q has no literal specifier; dynamically computed specifiers are not trackable", thunkSource)
	}
	e.AddChunk(m[1])
	return nil
}

// MarkSuspended records that the render crossed its first suspension
// boundary. Chunks added from here on belong to the dynamic partition.
func (e *Extractor) MarkSuspended() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.suspended = true
}

// Suspended reports whether the render crossed any suspension boundary.
func (e *Extractor) Suspended() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.suspended
}

// GetChunks returns all touched chunks in first-touch order.
func (e *Extractor) GetChunks() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chunksLocked()
}

func (e *Extractor) chunksLocked() []string {
	out := make([]string, 0, e.chunks.Len())
	for el := e.chunks.Front(); el != nil; el = el.Next() {
		out = append(out, el.Key)
	}
	return out
}

// GetAssets partitions the touched chunks into JS and CSS. The output order
// is deterministic for identical render input.
func (e *Extractor) GetAssets() Assets {
	return partition(e.GetChunks())
}

// SplitForPPR partitions the touched assets into the static shell and the
// dynamic remainder. Every chunk appears in exactly one partition; the split
// point is the render's first suspension boundary.
func (e *Extractor) SplitForPPR() Split {
	e.mu.Lock()
	chunks := e.chunksLocked()
	splitAt := e.splitAt
	e.mu.Unlock()

	if splitAt < 0 {
		return Split{Static: partition(chunks)}
	}
	return Split{
		Static:  partition(chunks[:splitAt]),
		Dynamic: partition(chunks[splitAt:]),
	}
}

// ScriptTags returns module script tags for all touched JS assets.
func (e *Extractor) ScriptTags() []string {
	return e.GetAssets().ScriptTags()
}

// LinkTags returns stylesheet and modulepreload link tags for all touched
// assets.
func (e *Extractor) LinkTags() []string {
	return e.GetAssets().LinkTags()
}

// Reset clears the accumulator for reuse within the same session.
func (e *Extractor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chunks = orderedmap.NewOrderedMap[string, int]()
	e.suspended = false
	e.splitAt = -1
}

// Cleanup releases the tracking set so repeated renders do not accumulate
// memory. The Extractor is unusable afterwards.
func (e *Extractor) Cleanup() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chunks = nil
}

// partition splits chunk files into JS and CSS by extension.
func partition(chunks []string) Assets {
	var a Assets
	for _, chunk := range chunks {
		if strings.HasSuffix(chunk, ".css") {
			a.CSS = append(a.CSS, chunk)
		} else {
			a.JS = append(a.JS, chunk)
		}
	}
	return a
}
