package plugin

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ManifestDefinition is one entry of a plugin manifest's definitions list
type ManifestDefinition struct {
	Name   string                 `mapstructure:"name"`
	Kind   string                 `mapstructure:"kind"`
	Config map[string]interface{} `mapstructure:"config"`
}

// ManifestLoader loads YAML plugin modules whose definitions are bound to
// effect kinds compiled into the catalog:
//
//	definitions:
//	  - name: BlurPlugin
//	    kind: gaussian-blur
//	    config:
//	      kernel_size: 25
type ManifestLoader struct {
	catalog *Catalog
}

// NewManifestLoader creates a manifest loader resolving kinds against catalog
func NewManifestLoader(catalog *Catalog) *ManifestLoader {
	return &ManifestLoader{catalog: catalog}
}

func (l *ManifestLoader) Extensions() []string {
	return []string{".yaml", ".yml"}
}

func (l *ManifestLoader) Load(path string) ([]Definition, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest []ManifestDefinition
	if err := v.UnmarshalKey("definitions", &manifest); err != nil {
		return nil, fmt.Errorf("failed to decode manifest definitions: %w", err)
	}

	definitions := make([]Definition, 0, len(manifest))
	for _, md := range manifest {
		if md.Name == "" {
			return nil, fmt.Errorf("manifest definition without a name")
		}
		factory, exists := l.catalog.Get(md.Kind)
		if !exists {
			return nil, fmt.Errorf("definition %s: unknown effect kind %q", md.Name, md.Kind)
		}
		config := md.Config
		definitions = append(definitions, Definition{
			Name: md.Name,
			New: func() (Effect, error) {
				return factory(config)
			},
		})
	}
	return definitions, nil
}
