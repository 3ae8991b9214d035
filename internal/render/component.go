package render

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/seamui/seam/internal/payload"
)

// Props is the property bag handed to a component.
type Props map[string]any

// ComponentFunc produces a component tree for one render. Implementations
// must be safe for concurrent calls; per-render state belongs in the tree,
// not in the function.
type ComponentFunc func(ctx context.Context, props Props) (*payload.Node, error)

// NotFoundError reports a route with no registered page component.
type NotFoundError struct {
	Route string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("render: no page registered for route %q", e.Route)
}

// Registry maps routes to their page components.
type Registry struct {
	mu     sync.RWMutex
	routes map[string]ComponentFunc
}

// NewRegistry creates an empty route registry.
func NewRegistry() *Registry {
	return &Registry{routes: make(map[string]ComponentFunc)}
}

// Register binds a page component to a route. Later registrations for the
// same route win; routes are set up once at startup.
func (r *Registry) Register(route string, fn ComponentFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[route] = fn
}

// Lookup returns the page component for a route.
func (r *Registry) Lookup(route string) (ComponentFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.routes[route]
	return fn, ok
}

// Routes returns the registered routes, sorted.
func (r *Registry) Routes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.routes))
	for route := range r.routes {
		out = append(out, route)
	}
	sort.Strings(out)
	return out
}

// SSRRegistry maps client-component module ids to server-side render
// functions. A registered function lets the HTML phase paint real markup
// inside the component's mount point instead of leaving it empty until
// hydration.
type SSRRegistry struct {
	mu         sync.RWMutex
	components map[string]ComponentFunc
}

// NewSSRRegistry creates an empty SSR registry.
func NewSSRRegistry() *SSRRegistry {
	return &SSRRegistry{components: make(map[string]ComponentFunc)}
}

// Register binds a server-side renderer to a client-component module id.
func (r *SSRRegistry) Register(moduleID string, fn ComponentFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[moduleID] = fn
}

// Lookup returns the server-side renderer for a module id.
func (r *SSRRegistry) Lookup(moduleID string) (ComponentFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.components[moduleID]
	return fn, ok
}
