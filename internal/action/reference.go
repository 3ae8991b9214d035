// Package action implements server-action references and dispatch: decoding
// an inbound action invocation, loading the registered implementation, and
// streaming the result back in component-stream encoding.
package action

import (
	"fmt"
	"strings"
)

// HeaderName is the request header carrying the action reference token.
const HeaderName = "rsa-id"

// Reference identifies a server action by module and export.
type Reference struct {
	ModuleID   string
	ExportName string
}

// Encode returns the opaque wire token "<moduleId>#<exportName>".
func (r Reference) Encode() string {
	return r.ModuleID + "#" + r.ExportName
}

// Decode parses a wire token back into a Reference. The split is on the
// last separator: export names never contain '#', module ids may.
// Round-trip identity holds: Decode(x).Encode() == x.
func Decode(token string) (Reference, error) {
	idx := strings.LastIndex(token, "#")
	if idx <= 0 || idx == len(token)-1 {
		return Reference{}, fmt.Errorf("action: malformed reference token %q", token)
	}
	return Reference{
		ModuleID:   token[:idx],
		ExportName: token[idx+1:],
	}, nil
}
