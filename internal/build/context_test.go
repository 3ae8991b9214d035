package build

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seamui/seam/internal/directive"
	"github.com/seamui/seam/internal/modgraph"
)

func mod(id string, kind directive.Kind) *modgraph.Module {
	return &modgraph.Module{ID: id, Kind: kind}
}

func TestContextPreservesInsertionOrder(t *testing.T) {
	c := NewContext()
	c.RegisterClient(mod("components/b.js", directive.KindClient))
	c.RegisterClient(mod("components/a.js", directive.KindClient))
	c.RegisterClient(mod("components/c.js", directive.KindClient))

	var ids []string
	for _, m := range c.ClientModules() {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"components/b.js", "components/a.js", "components/c.js"}, ids)
}

func TestContextDuplicateRegistrationKeepsFirstPosition(t *testing.T) {
	c := NewContext()
	c.RegisterClient(mod("a.js", directive.KindClient))
	c.RegisterClient(mod("b.js", directive.KindClient))
	c.RegisterClient(mod("a.js", directive.KindClient))

	mods := c.ClientModules()
	assert.Len(t, mods, 2)
	assert.Equal(t, "a.js", mods[0].ID)
}

func TestContextResetClearsBothSets(t *testing.T) {
	c := NewContext()
	c.RegisterClient(mod("a.js", directive.KindClient))
	c.RegisterServer(mod("b.js", directive.KindServer))

	c.Reset()

	assert.Empty(t, c.ClientModules())
	assert.Empty(t, c.ServerModules())
}

func TestContextSeparatesClientAndServerSets(t *testing.T) {
	c := NewContext()
	c.RegisterClient(mod("a.js", directive.KindClient))
	c.RegisterServer(mod("b.js", directive.KindServer))

	assert.Len(t, c.ClientModules(), 1)
	assert.Len(t, c.ServerModules(), 1)
	assert.Equal(t, "a.js", c.ClientModules()[0].ID)
	assert.Equal(t, "b.js", c.ServerModules()[0].ID)
}

func TestContextConcurrentRegistration(t *testing.T) {
	c := NewContext()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RegisterClient(mod("a.js", directive.KindClient))
			c.RegisterServer(mod("b.js", directive.KindServer))
		}()
	}
	wg.Wait()

	assert.Len(t, c.ClientModules(), 1)
	assert.Len(t, c.ServerModules(), 1)
}
