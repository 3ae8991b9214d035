package render

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

// UnknownComponentError reports a client-component reference with no record
// in the client manifest. References are stamped from explicit lookups only;
// an unknown id fails the render instead of synthesizing an entry.
type UnknownComponentError struct {
	ModuleID string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("render: client component %q not present in client manifest", e.ModuleID)
}

// IsUnknownComponent reports whether err is an UnknownComponentError.
func IsUnknownComponent(err error) bool {
	var uc *UnknownComponentError
	return errors.As(err, &uc)
}

// Renderer drives both render phases against one build's manifests. A
// Renderer is shared across requests; all mutable per-render state lives in
// the Session.
type Renderer struct {
	mu        sync.RWMutex
	manifests *manifest.Set
	routes    *Registry
	ssr       *SSRRegistry
	log       *logger.Logger
}

// NewRenderer creates a Renderer over the given manifests and registries.
func NewRenderer(set *manifest.Set, routes *Registry, ssr *SSRRegistry, log *logger.Logger) *Renderer {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Renderer{manifests: set, routes: routes, ssr: ssr, log: log}
}

// Manifests returns the manifest set the renderer resolves against.
func (r *Renderer) Manifests() *manifest.Set {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.manifests
}

// SetManifests swaps in a new build's manifests. In-flight renders keep the
// set they started with.
func (r *Renderer) SetManifests(set *manifest.Set) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manifests = set
}

// RenderRSC runs the first phase: build the route's component tree, stamp
// client references from the client manifest, and stream the payload rows to
// w. The shell tree goes out first with suspense fallbacks inline; each
// boundary's content follows as its own row once its resolver returns.
func (r *Renderer) RenderRSC(ctx context.Context, sess *Session, route string, props Props, w io.Writer) error {
	if err := sess.Transition(StateStreamingRSC); err != nil {
		return err
	}

	fn, ok := r.routes.Lookup(route)
	if !ok {
		return &NotFoundError{Route: route}
	}

	tree, err := fn(ctx, props)
	if err != nil {
		return fmt.Errorf("render: route %q: %w", route, err)
	}

	pass := &rscPass{renderer: r, sess: sess, manifests: r.Manifests()}
	if err := pass.prepare(tree); err != nil {
		return err
	}

	enc := payload.NewEncoder(w)
	if err := enc.WriteRow(payload.Row{Kind: payload.RowTree, Node: tree}); err != nil {
		return err
	}

	// Boundaries resolve in discovery order. A resolver returning an error
	// degrades that one boundary; a dead context aborts the whole stream.
	for len(pass.queue) > 0 {
		boundary := pass.queue[0]
		pass.queue = pass.queue[1:]

		sess.Extractor.MarkSuspended()

		content, err := boundary.Resolve(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			sess.Abort()
			return &StreamAbortError{SessionID: sess.ID, Err: ctxErr}
		}
		if err != nil {
			r.log.WithRequest(sess.ID).Warnw("Suspense boundary failed",
				"boundary", boundary.Boundary, "error", err)
			if werr := enc.WriteRow(payload.Row{
				Kind:     payload.RowError,
				Boundary: boundary.Boundary,
				Message:  err.Error(),
			}); werr != nil {
				return werr
			}
			continue
		}

		if err := pass.prepare(content); err != nil {
			return err
		}
		if err := enc.WriteRow(payload.Row{
			Kind:     payload.RowBoundary,
			Boundary: boundary.Boundary,
			Node:     content,
		}); err != nil {
			return err
		}
	}

	return enc.WriteRow(payload.Row{Kind: payload.RowDone})
}

// rscPass carries the per-render preparation state: the boundary counter and
// the FIFO of unresolved boundaries.
type rscPass struct {
	renderer  *Renderer
	sess      *Session
	manifests *manifest.Set
	boundary  int
	queue     []*payload.Node
}

// prepare walks a tree, stamping client references from the client manifest,
// recording touched chunks, and enqueueing suspense boundaries. After
// stamping, the reference id is the chunk reference; the module specifier is
// recoverable only through the SSR manifest. Nested boundaries inside
// resolved content are discovered on the follow-up prepare of that content.
func (p *rscPass) prepare(tree *payload.Node) error {
	var walkErr error
	payload.Walk(tree, func(n *payload.Node) bool {
		switch n.Kind {
		case payload.KindClientRef:
			entry, ok := p.manifests.LookupClient(n.Ref.ID)
			if !ok {
				walkErr = &UnknownComponentError{ModuleID: n.Ref.ID}
				return false
			}
			n.Ref.ID = entry.ID
			n.Ref.Chunks = entry.Chunks
			for _, chunk := range entry.Chunks {
				p.sess.Extractor.AddChunk(chunk)
			}
		case payload.KindSuspense:
			if n.Boundary == "" {
				p.boundary++
				n.Boundary = fmt.Sprintf("b%d", p.boundary)
				if n.Resolve != nil {
					p.queue = append(p.queue, n)
				}
			}
		}
		return true
	})
	return walkErr
}
