package action

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/seamui/seam/internal/logger"
	"github.com/seamui/seam/internal/manifest"
	"github.com/seamui/seam/internal/payload"
)

// Handler is the server-side implementation of one action export.
// It may return plain data or a payload node (serializable UI).
type Handler func(ctx context.Context, args []any) (any, error)

// UnknownActionError reports an invocation of a reference with no chunk
// registered in the server build's manifest.
type UnknownActionError struct {
	Ref Reference
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("action: no registered chunk for %q", e.Ref.Encode())
}

// IsUnknownAction reports whether err is an UnknownActionError.
func IsUnknownAction(err error) bool {
	var uae *UnknownActionError
	return errors.As(err, &uae)
}

// InvocationError wraps a failure raised by the invoked action itself.
type InvocationError struct {
	Ref Reference
	Err error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("action %q failed: %v", e.Ref.Encode(), e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// IsInvocationError reports whether err is an InvocationError.
func IsInvocationError(err error) bool {
	var ie *InvocationError
	return errors.As(err, &ie)
}

// Registry holds the loaded action implementations keyed by module id and
// export name. It stands in for dynamic chunk import on the Go side: the
// manifest decides whether a module is invocable, the registry supplies the
// implementation.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds an implementation to (moduleID, exportName).
func (r *Registry) Register(moduleID, exportName string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[Reference{ModuleID: moduleID, ExportName: exportName}.Encode()] = h
}

// Lookup returns the handler for a reference, if loaded.
func (r *Registry) Lookup(ref Reference) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[ref.Encode()]
	return h, ok
}

// Dispatcher decodes inbound invocations, checks the manifest, invokes the
// export, and streams the result.
type Dispatcher struct {
	mu        sync.RWMutex
	manifests *manifest.Set
	registry  *Registry
	log       *logger.Logger
}

// NewDispatcher creates a Dispatcher over the given build manifests.
func NewDispatcher(manifests *manifest.Set, registry *Registry, log *logger.Logger) *Dispatcher {
	return &Dispatcher{manifests: manifests, registry: registry, log: log}
}

// SetManifests swaps in a new build's manifests.
func (d *Dispatcher) SetManifests(set *manifest.Set) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.manifests = set
}

func (d *Dispatcher) manifestSet() *manifest.Set {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.manifests
}

// Invoke decodes the token and argument stream, runs the action, and
// returns its result. A panic inside the action surfaces as an
// InvocationError, not a server crash.
func (d *Dispatcher) Invoke(ctx context.Context, token string, body io.Reader) (result any, err error) {
	ref, err := Decode(token)
	if err != nil {
		return nil, err
	}

	if _, ok := d.manifestSet().ActionChunk(ref.ModuleID); !ok {
		return nil, &UnknownActionError{Ref: ref}
	}

	handler, ok := d.registry.Lookup(ref)
	if !ok {
		return nil, &UnknownActionError{Ref: ref}
	}

	args, err := decodeArgs(body)
	if err != nil {
		return nil, fmt.Errorf("action %q: %w", token, err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = &InvocationError{Ref: ref, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	d.log.Debugw("Invoking server action", "action", token, "args", len(args))
	result, err = handler(ctx, args)
	if err != nil {
		return nil, &InvocationError{Ref: ref, Err: err}
	}
	return result, nil
}

// Stream invokes the action and writes the outcome to w using the
// component-stream encoding: a value or tree row followed by done, or an
// error row for a failed invocation.
func (d *Dispatcher) Stream(ctx context.Context, token string, body io.Reader, w io.Writer) error {
	enc := payload.NewEncoder(w)

	result, err := d.Invoke(ctx, token, body)
	if err != nil {
		if werr := enc.WriteRow(payload.Row{Kind: payload.RowError, Message: err.Error()}); werr != nil {
			return werr
		}
		return err
	}

	var row payload.Row
	if node, ok := result.(*payload.Node); ok {
		row = payload.Row{Kind: payload.RowTree, Node: node}
	} else {
		row = payload.Row{Kind: payload.RowValue, Value: result}
	}
	if err := enc.WriteRow(row); err != nil {
		return err
	}
	return enc.WriteRow(payload.Row{Kind: payload.RowDone})
}

// EncodeArgs serializes an argument list into the request-body wire form.
// Used by the in-process client runtime and by tests.
func EncodeArgs(w io.Writer, args []any) error {
	enc := payload.NewEncoder(w)
	for _, arg := range args {
		if err := enc.WriteRow(payload.Row{Kind: payload.RowValue, Value: arg}); err != nil {
			return err
		}
	}
	return enc.WriteRow(payload.Row{Kind: payload.RowDone})
}

// decodeArgs reads the serialized argument list from the request body.
func decodeArgs(r io.Reader) ([]any, error) {
	if r == nil {
		return nil, nil
	}
	dec := payload.NewDecoder(r)
	var args []any
	for {
		row, err := dec.ReadRow()
		if err == io.EOF {
			return args, nil
		}
		if err != nil {
			return nil, fmt.Errorf("undecodable argument stream: %w", err)
		}
		switch row.Kind {
		case payload.RowValue:
			args = append(args, row.Value)
		case payload.RowDone:
			return args, nil
		}
	}
}
