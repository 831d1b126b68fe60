package plugin

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ExcludePrefix marks plugin files that discovery must ignore
const ExcludePrefix = "_"

// Loader turns one plugin source file into its top-level definitions
type Loader interface {
	// Extensions lists the file extensions (with leading dot) this loader handles
	Extensions() []string

	// Load opens the module at path and returns its definitions
	Load(path string) ([]Definition, error)
}

// Discoverer scans a plugin directory and builds a Registry
type Discoverer struct {
	loaders map[string]Loader
	logger  *zap.Logger
}

// NewDiscoverer creates a discoverer dispatching files to loaders by extension.
// When two loaders claim the same extension the later one wins.
func NewDiscoverer(logger *zap.Logger, loaders ...Loader) *Discoverer {
	byExt := make(map[string]Loader)
	for _, l := range loaders {
		for _, ext := range l.Extensions() {
			byExt[strings.ToLower(ext)] = l
		}
	}
	return &Discoverer{
		loaders: byExt,
		logger:  logger,
	}
}

// Discover loads every plugin module in dir. It never fails: a missing
// directory yields an empty registry and modules that fail to load are
// logged and skipped.
func (d *Discoverer) Discover(dir string) *Registry {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			d.logger.Debug("Plugin directory not found", zap.String("dir", dir))
		} else {
			d.logger.Warn("Failed to read plugin directory", zap.String("dir", dir), zap.Error(err))
		}
		return NewRegistry()
	}

	registered := make([]Entry, 0, len(entries))
	for _, de := range entries {
		if de.IsDir() || strings.HasPrefix(de.Name(), ExcludePrefix) {
			continue
		}
		ext := filepath.Ext(de.Name())
		loader, ok := d.loaders[strings.ToLower(ext)]
		if !ok {
			continue
		}

		module := strings.TrimSuffix(de.Name(), ext)
		path := filepath.Join(dir, de.Name())

		entry, found, err := d.loadModule(loader, module, path)
		if err != nil {
			d.logger.Error("Error loading plugin", zap.String("module", module), zap.Error(err))
			continue
		}
		if !found {
			continue
		}

		d.logger.Info("Loaded plugin", zap.String("module", module), zap.String("type", entry.TypeName))
		registered = append(registered, entry)
	}

	return NewRegistry(registered...)
}

// loadModule loads a single module and instantiates its plugin types. The
// last qualifying definition wins.
func (d *Discoverer) loadModule(loader Loader, module, path string) (entry Entry, found bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			entry, found = Entry{}, false
			err = &PluginLoadError{Module: module, Path: path, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	definitions, err := loader.Load(path)
	if err != nil {
		return Entry{}, false, &PluginLoadError{Module: module, Path: path, Err: err}
	}

	for _, def := range definitions {
		if !def.IsPluginType() {
			continue
		}
		effect, err := def.New()
		if err != nil {
			return Entry{}, false, &PluginLoadError{
				Module: module,
				Path:   path,
				Err:    fmt.Errorf("failed to construct %s: %w", def.Name, err),
			}
		}
		if effect == nil {
			// does not expose the effect capability
			continue
		}
		entry = Entry{Module: module, TypeName: def.Name, Effect: effect}
		found = true
	}
	return entry, found, nil
}
