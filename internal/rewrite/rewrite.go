// Package rewrite generates reference stubs: replacement module bodies that
// let one environment reference, without executing, modules belonging to the
// other environment.
package rewrite

import (
	"fmt"
	"strings"

	"github.com/seamui/seam/internal/directive"
	"github.com/seamui/seam/internal/modgraph"
)

// Target is the bundle a module is being compiled into.
type Target int

const (
	// TargetServer is the server bundle: client modules are stubbed out.
	TargetServer Target = iota
	// TargetClient is the client bundle: server modules are stubbed out.
	TargetClient
)

// RuntimeSpecifier is the framework module the generated stubs import from.
// The bundler resolves it per compilation condition.
const RuntimeSpecifier = "seam/runtime"

// Rewrite returns the replacement source for a module compiled into the
// given target bundle. The second return is false when the module crosses no
// boundary and its source must pass through byte-for-byte.
func Rewrite(mod *modgraph.Module, src []byte, target Target) ([]byte, bool) {
	switch {
	case mod.Kind == directive.KindClient && target == TargetServer:
		return []byte(clientStub(mod.ID)), true
	case mod.Kind == directive.KindServer && target == TargetClient:
		return []byte(serverProxy(mod.ID, mod.Exports)), true
	default:
		return src, false
	}
}

// clientStub replaces a client component in the server bundle. The component
// is referenced, never run: the registration binds (moduleId, "default") to
// a placeholder that throws on invocation.
func clientStub(moduleID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "import { registerClientReference } from %q;\n", RuntimeSpecifier)
	fmt.Fprintf(&b, "export default registerClientReference(%q, %q);\n", moduleID, "default")
	return b.String()
}

// serverProxy replaces a server-action module in the client bundle. Each
// discovered export becomes a callable reference keyed by
// "moduleId#exportName", dispatched through the fixed transport callback.
func serverProxy(moduleID string, exports []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "import { createServerReference, callServer } from %q;\n", RuntimeSpecifier)
	for _, name := range exports {
		key := moduleID + "#" + name
		if name == "default" {
			fmt.Fprintf(&b, "export default createServerReference(%q, callServer);\n", key)
		} else {
			fmt.Fprintf(&b, "export const %s = createServerReference(%q, callServer);\n", name, key)
		}
	}
	return b.String()
}
