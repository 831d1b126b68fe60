package plugin

import (
	"FrameForge/pkg/frame"
	"fmt"
	"strings"
)

// TypeSuffix marks a module definition as a plugin type.
const TypeSuffix = "Plugin"

// Effect defines the capability every plugin must implement
type Effect interface {
	// ApplyEffect transforms a frame. The result may have a different channel
	// count than the input but must keep its geometry.
	ApplyEffect(f frame.Frame) (frame.Frame, error)
}

// EffectFunc adapts a plain function to the Effect interface
type EffectFunc func(f frame.Frame) (frame.Frame, error)

// ApplyEffect calls fn(f)
func (fn EffectFunc) ApplyEffect(f frame.Frame) (frame.Frame, error) {
	return fn(f)
}

// Definition is a top-level definition exported by a plugin module
type Definition struct {
	Name string                 // Declared type name, e.g. "GrayscalePlugin"
	New  func() (Effect, error) // Zero-argument constructor
}

// IsPluginType reports whether the definition follows the plugin naming convention
func (d Definition) IsPluginType() bool {
	return strings.HasSuffix(d.Name, TypeSuffix) && d.New != nil
}

// Entry is a registered plugin instance
type Entry struct {
	Module   string // Registration name, derived from the module file name
	TypeName string // Name of the definition that produced Effect
	Effect   Effect
}

// PluginLoadError reports a module that could not be loaded or instantiated
type PluginLoadError struct {
	Module string
	Path   string
	Err    error
}

func (e *PluginLoadError) Error() string {
	return fmt.Sprintf("load plugin module %s (%s): %v", e.Module, e.Path, e.Err)
}

func (e *PluginLoadError) Unwrap() error {
	return e.Err
}
