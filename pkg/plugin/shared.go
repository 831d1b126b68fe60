package plugin

import (
	"fmt"
	goplugin "plugin"
)

// DefinitionsSymbol is the symbol a shared-object plugin must export:
//
//	func Definitions() []plugin.Definition
const DefinitionsSymbol = "Definitions"

// SharedObjectLoader loads Go plugins built with -buildmode=plugin.
type SharedObjectLoader struct{}

func (SharedObjectLoader) Extensions() []string {
	return []string{".so"}
}

func (SharedObjectLoader) Load(path string) ([]Definition, error) {
	p, err := goplugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shared object: %w", err)
	}
	sym, err := p.Lookup(DefinitionsSymbol)
	if err != nil {
		return nil, fmt.Errorf("missing %s symbol: %w", DefinitionsSymbol, err)
	}
	definitions, ok := sym.(func() []Definition)
	if !ok {
		return nil, fmt.Errorf("symbol %s has type %T, want func() []plugin.Definition", DefinitionsSymbol, sym)
	}
	return definitions(), nil
}
