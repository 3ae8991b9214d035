package build

import (
	"fmt"
	"path"
	"strings"
)

// Entry name prefixes distinguishing the generated entry kinds.
const (
	ClientEntryPrefix = "client__"
	ActionEntryPrefix = "action__"
	SharedEntryPrefix = "shared__"
)

// EntryMap maps generated entry names to module ids. Built once per build
// invocation from the accumulated classification sets.
type EntryMap map[string]string

// DeriveEntries derives entry names from a fixed prefix plus the trailing
// path segment of each module id (extension stripped). Entry names must be
// unique within a build: two module ids with the same trailing segment are
// rejected rather than silently overwriting each other's chunks.
func DeriveEntries(prefix string, moduleIDs []string) (EntryMap, error) {
	entries := make(EntryMap, len(moduleIDs))
	for _, id := range moduleIDs {
		name := prefix + trailingSegment(id)
		if existing, dup := entries[name]; dup {
			return nil, fmt.Errorf("entry name %q collides: modules %q and %q share a trailing path segment; rename one of the files",
				name, existing, id)
		}
		entries[name] = id
	}
	return entries, nil
}

// trailingSegment returns the last path segment of a module id without its
// extension, e.g. "components/counter.js" -> "counter".
func trailingSegment(id string) string {
	base := path.Base(id)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
