// Package builtin wires the effect kinds compiled into the binary.
package builtin

import (
	"FrameForge/pkg/plugin"
	"FrameForge/pkg/plugin/blur"
	"FrameForge/pkg/plugin/grayscale"
	"FrameForge/pkg/plugin/invert"
	"fmt"
)

// NewCatalog returns a catalog holding every built-in effect kind
func NewCatalog() (*plugin.Catalog, error) {
	catalog := plugin.NewCatalog()
	kinds := []struct {
		kind    string
		factory plugin.Factory
	}{
		{grayscale.Kind, grayscale.New},
		{blur.Kind, blur.New},
		{invert.Kind, invert.New},
	}
	for _, k := range kinds {
		if err := catalog.Register(k.kind, k.factory); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", k.kind, err)
		}
	}
	return catalog, nil
}
