package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds an effect of one kind from its manifest configuration
type Factory func(config map[string]interface{}) (Effect, error)

// Catalog manages the effect kinds compiled into the binary. Manifest
// plugins refer to these kinds by name.
type Catalog struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under kind
func (c *Catalog) Register(kind string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("cannot register nil factory")
	}
	if kind == "" {
		return fmt.Errorf("effect kind cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.factories[kind]; exists {
		return fmt.Errorf("effect kind %s is already registered", kind)
	}

	c.factories[kind] = factory
	return nil
}

// Get retrieves a factory by kind
func (c *Catalog) Get(kind string) (Factory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	factory, exists := c.factories[kind]
	return factory, exists
}

// Kinds returns all registered kinds in sorted order
func (c *Catalog) Kinds() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	kinds := make([]string, 0, len(c.factories))
	for kind := range c.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
