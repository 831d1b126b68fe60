package plugin

import (
	"sort"
)

// Registry is the immutable name-to-plugin mapping built once per run.
// It is safe for concurrent reads and has no mutating methods.
type Registry struct {
	plugins map[string]Entry
}

// NewRegistry creates a registry from entries. Entries with a nil effect or
// empty module name are ignored; a later entry replaces an earlier one with
// the same module name.
func NewRegistry(entries ...Entry) *Registry {
	plugins := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if e.Module == "" || e.Effect == nil {
			continue
		}
		plugins[e.Module] = e
	}
	return &Registry{plugins: plugins}
}

// Get retrieves a plugin entry by name
func (r *Registry) Get(name string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	entry, exists := r.plugins[name]
	return entry, exists
}

// Lookup retrieves the effect registered under name
func (r *Registry) Lookup(name string) (Effect, bool) {
	entry, exists := r.Get(name)
	if !exists {
		return nil, false
	}
	return entry.Effect, true
}

// List returns all registered plugin names in sorted order
func (r *Registry) List() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered plugins
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.plugins)
}
