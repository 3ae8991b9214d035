package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Emitter accumulates manifest records during the shared chunk build and
// serializes them once as the build's terminal artifact. An Emitter belongs
// to exactly one build invocation.
type Emitter struct {
	client ClientManifest
	ssr    SSRManifest
	action ActionManifest
}

// NewEmitter creates an empty Emitter.
func NewEmitter() *Emitter {
	return &Emitter{
		client: make(ClientManifest),
		ssr:    make(SSRManifest),
		action: make(ActionManifest),
	}
}

// RecordClientComponent records the chunk association for a client-component
// entry: the client manifest gains moduleID -> chunk and the SSR manifest
// gains the inverse chunk -> moduleID record.
func (e *Emitter) RecordClientComponent(moduleID, chunkFile string) {
	e.client[moduleID] = ClientEntry{
		ID:     chunkFile,
		Name:   ExportAll,
		Chunks: []string{chunkFile},
	}
	e.ssr[chunkFile] = SSREntry{
		Specifier: moduleID,
		Name:      ExportAll,
	}
}

// RecordAction records the chunk association for a server-action entry.
func (e *Emitter) RecordAction(moduleID, chunkFile string) {
	e.action[moduleID] = ActionEntry{Chunk: chunkFile}
}

// Set returns the accumulated manifests as a read-only Set.
func (e *Emitter) Set() *Set {
	return &Set{Client: e.client, SSR: e.ssr, Action: e.action}
}

// WriteFiles serializes all manifests into dir. Called only after every
// build stage has succeeded; a failed build must never leave a partial
// manifest behind.
func (e *Emitter) WriteFiles(dir string) error {
	files := map[string]any{
		ClientFile: e.client,
		SSRFile:    e.ssr,
		ActionFile: e.action,
	}
	for name, v := range files {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the manifests of a finished build from dir.
func Load(dir string) (*Set, error) {
	set := &Set{
		Client: make(ClientManifest),
		SSR:    make(SSRManifest),
		Action: make(ActionManifest),
	}
	targets := map[string]any{
		ClientFile: &set.Client,
		SSRFile:    &set.SSR,
		ActionFile: &set.Action,
	}
	for name, target := range targets {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := json.Unmarshal(data, target); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}
	return set, nil
}
