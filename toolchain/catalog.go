package toolchain

import (
	"fmt"
	"sync"

	"github.com/helloagents/reagent"
	"github.com/helloagents/reagent/schema"
)

// Catalog is an ordered set of tools with unique names.
//
// Tools are registered before a run starts. Registration compiles each
// tool's argument schema once so the executor can validate calls without
// recompiling. A Catalog is safe for concurrent use; lookups during runs
// take a read lock only.
type Catalog struct {
	mu      sync.RWMutex
	order   []string
	tools   map[string]reagent.Tool
	schemas map[string]*schema.Schema
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		tools:   make(map[string]reagent.Tool),
		schemas: make(map[string]*schema.Schema),
	}
}

// Register adds tool to the catalog. It fails when the tool is nil, has an
// empty name, uses the reserved finish name, collides with an existing tool
// or declares an invalid parameter list.
func (c *Catalog) Register(tool reagent.Tool) error {
	if tool == nil {
		return reagent.ErrNilTool
	}
	spec := tool.Spec()
	if spec.Name == "" {
		return fmt.Errorf("%w: empty tool name", reagent.ErrInvalidToolSpec)
	}
	if spec.Name == reagent.FinishToolName {
		return fmt.Errorf("%w: %s", reagent.ErrReservedToolName, spec.Name)
	}

	compiled, err := schema.CompileTool(spec)
	if err != nil {
		return fmt.Errorf("register %s: %w", spec.Name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tools[spec.Name]; exists {
		return fmt.Errorf("%w: %s", reagent.ErrDuplicateTool, spec.Name)
	}
	c.order = append(c.order, spec.Name)
	c.tools[spec.Name] = tool
	c.schemas[spec.Name] = compiled
	return nil
}

// MustRegister is like Register but panics on error. It returns the catalog
// for chaining.
func (c *Catalog) MustRegister(tools ...reagent.Tool) *Catalog {
	for _, t := range tools {
		if err := c.Register(t); err != nil {
			panic(err)
		}
	}
	return c
}

// Unregister removes the named tool and reports whether it was present.
// Agents read the catalog on every iteration, so remove tools between runs,
// not during one.
func (c *Catalog) Unregister(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tools[name]; !ok {
		return false
	}
	delete(c.tools, name)
	delete(c.schemas, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Lookup returns the tool registered under name.
func (c *Catalog) Lookup(name string) (reagent.Tool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tools[name]
	return t, ok
}

// Schema returns the compiled argument schema of the named tool.
func (c *Catalog) Schema(name string) (*schema.Schema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.schemas[name]
	return s, ok
}

// Specs returns every tool's spec in registration order.
func (c *Catalog) Specs() []reagent.ToolSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	specs := make([]reagent.ToolSpec, 0, len(c.order))
	for _, name := range c.order {
		specs = append(specs, c.tools[name].Spec())
	}
	return specs
}

// Names returns the registered tool names in registration order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of registered tools.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Compile-time check that Catalog implements reagent.ToolCatalog.
var _ reagent.ToolCatalog = (*Catalog)(nil)
