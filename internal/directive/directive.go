// Package directive classifies source modules by their execution-boundary
// directive ("use client" / "use server") and discovers their export surface.
package directive

import (
	"errors"
	"fmt"
)

// Kind is the classification of a module.
type Kind int

const (
	// KindShared marks a module with no directive. It is usable from both
	// environments and is never rewritten.
	KindShared Kind = iota
	// KindClient marks a module with a top-level "use client" directive.
	KindClient
	// KindServer marks a module with a top-level "use server" directive.
	KindServer
)

// String returns the human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	default:
		return "shared"
	}
}

// Directive literals recognized at the top level of a module.
const (
	UseClient = "use client"
	UseServer = "use server"
)

// ConflictingDirectiveError reports a module carrying both directives.
// The two are mutually exclusive per module; the file must be split.
type ConflictingDirectiveError struct {
	Path string
}

func (e *ConflictingDirectiveError) Error() string {
	return fmt.Sprintf("module %q contains both %q and %q directives: split it into separate client and server files",
		e.Path, UseClient, UseServer)
}

// IsConflictingDirective reports whether err is a ConflictingDirectiveError.
func IsConflictingDirective(err error) bool {
	var cde *ConflictingDirectiveError
	return errors.As(err, &cde)
}

// UnresolvableImportError reports an import whose specifier could not be
// statically extracted. Dynamically computed import paths are unsupported:
// a dropped specifier would mean a component never gets its own chunk, so
// this is surfaced at build time rather than silently ignored.
type UnresolvableImportError struct {
	Path string
	Line uint32
}

func (e *UnresolvableImportError) Error() string {
	return fmt.Sprintf("module %q line %d: dynamic import specifier is not a string literal and cannot be tracked",
		e.Path, e.Line)
}

// IsUnresolvableImport reports whether err is an UnresolvableImportError.
func IsUnresolvableImport(err error) bool {
	var uie *UnresolvableImportError
	return errors.As(err, &uie)
}

// Import is a statically extracted import of a module.
type Import struct {
	Specifier string // Literal specifier text, e.g. "./counter.js"
	Dynamic   bool   // True for import(...) expressions
}

// ScanResult is the outcome of scanning one module.
type ScanResult struct {
	Kind    Kind
	Exports []string // Exported binding names in declaration order, aliases applied
	Imports []Import // Static imports in document order
}
