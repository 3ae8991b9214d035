// Package manifest defines the build's terminal artifacts: the mappings
// from module identities to their runtime chunk locations. Manifests are
// written once per build and are read-only at request time.
package manifest

// Names of the manifest files under the build output directory.
const (
	ClientFile = "client-manifest.json"
	SSRFile    = "ssr-manifest.json"
	ActionFile = "action-manifest.json"
)

// ExportAll is the export-surface wildcard recorded for component entries.
const ExportAll = "*"

// ClientEntry describes one client component in the client manifest.
type ClientEntry struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Chunks []string `json:"chunks"`
}

// SSREntry maps a chunk file back to its originating module.
type SSREntry struct {
	Specifier string `json:"specifier"`
	Name      string `json:"name"`
}

// ActionEntry maps a server-action module to its runtime chunk.
type ActionEntry struct {
	Chunk string `json:"chunk"`
}

// ClientManifest maps module id -> chunk descriptor. Consumed by the
// HTML-phase resolver (spec -> chunk direction).
type ClientManifest map[string]ClientEntry

// SSRManifest maps chunk file -> module descriptor. Consumed by the
// payload decoder (chunk -> spec direction, the inverse of ClientManifest).
type SSRManifest map[string]SSREntry

// ActionManifest maps server-action module id -> chunk. Consumed by the
// action dispatcher to locate the invocable chunk.
type ActionManifest map[string]ActionEntry

// Set bundles the manifests of one build output. Replaced wholesale on the
// next build, never mutated in place.
type Set struct {
	Client ClientManifest
	SSR    SSRManifest
	Action ActionManifest
}

// LookupClient returns the chunk descriptor for a client-component module
// id. Explicit lookup, no lazy synthesis.
func (s *Set) LookupClient(moduleID string) (ClientEntry, bool) {
	e, ok := s.Client[moduleID]
	return e, ok
}

// Specifier returns the originating module id for a chunk file.
func (s *Set) Specifier(chunkFile string) (string, bool) {
	e, ok := s.SSR[chunkFile]
	return e.Specifier, ok
}

// ActionChunk returns the runtime chunk registered for a server-action
// module id.
func (s *Set) ActionChunk(moduleID string) (string, bool) {
	e, ok := s.Action[moduleID]
	return e.Chunk, ok
}
