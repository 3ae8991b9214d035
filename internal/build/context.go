// Package build implements the directive-driven build orchestrator: an
// analysis pass discovers client/server boundaries, then three further
// builds emit the shared chunks, the server bundle, and the client bundle.
package build

import (
	"sync"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/seamui/seam/internal/modgraph"
)

// Context carries the classification sets accumulated during the analysis
// stage. It is an explicit per-invocation object, not process state: two
// builds in one process never see each other's sets.
//
// The sets preserve insertion order and tolerate duplicate registration,
// and registration is safe under concurrent module transforms.
type Context struct {
	mu      sync.Mutex
	clients *orderedmap.OrderedMap[string, *modgraph.Module]
	servers *orderedmap.OrderedMap[string, *modgraph.Module]
}

// NewContext creates an empty build context.
func NewContext() *Context {
	c := &Context{}
	c.Reset()
	return c
}

// Reset reinitializes the sets. Called at the start of every build
// invocation so nothing dangles between builds in a long-lived process.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients = orderedmap.NewOrderedMap[string, *modgraph.Module]()
	c.servers = orderedmap.NewOrderedMap[string, *modgraph.Module]()
}

// RegisterClient records a client-classified module. Duplicate registration
// keeps the first insertion position.
func (c *Context) RegisterClient(mod *modgraph.Module) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.clients.Get(mod.ID); !exists {
		c.clients.Set(mod.ID, mod)
	}
}

// RegisterServer records a server-classified module.
func (c *Context) RegisterServer(mod *modgraph.Module) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.servers.Get(mod.ID); !exists {
		c.servers.Set(mod.ID, mod)
	}
}

// ClientModules returns the registered client modules in insertion order.
func (c *Context) ClientModules() []*modgraph.Module {
	c.mu.Lock()
	defer c.mu.Unlock()
	return collect(c.clients)
}

// ServerModules returns the registered server modules in insertion order.
func (c *Context) ServerModules() []*modgraph.Module {
	c.mu.Lock()
	defer c.mu.Unlock()
	return collect(c.servers)
}

func collect(m *orderedmap.OrderedMap[string, *modgraph.Module]) []*modgraph.Module {
	out := make([]*modgraph.Module, 0, m.Len())
	for el := m.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}
