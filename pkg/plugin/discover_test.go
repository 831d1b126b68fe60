package plugin_test

import (
	"FrameForge/pkg/frame"
	"FrameForge/pkg/plugin"
	"FrameForge/pkg/plugin/builtin"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeLoader serves definitions from memory, keyed by file base name
type fakeLoader struct {
	modules map[string][]plugin.Definition
	errs    map[string]error
}

func (l *fakeLoader) Extensions() []string { return []string{".fx"} }

func (l *fakeLoader) Load(path string) ([]plugin.Definition, error) {
	name := strings.TrimSuffix(filepath.Base(path), ".fx")
	if err, ok := l.errs[name]; ok {
		return nil, err
	}
	return l.modules[name], nil
}

func constant(v byte) func() (plugin.Effect, error) {
	return func() (plugin.Effect, error) {
		return plugin.EffectFunc(func(f frame.Frame) (frame.Frame, error) {
			out := f.Clone()
			for i := range out.Pix {
				out.Pix[i] = v
			}
			return out, nil
		}), nil
	}
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDiscoverMissingDirectory(t *testing.T) {
	d := plugin.NewDiscoverer(zap.NewNop(), &fakeLoader{})

	r := d.Discover(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NotNil(t, r)
	assert.Equal(t, 0, r.Len())
}

func TestDiscoverRegistersByModuleName(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "sepia.fx")

	loader := &fakeLoader{modules: map[string][]plugin.Definition{
		"sepia": {{Name: "WarmTonePlugin", New: constant(1)}},
	}}
	r := plugin.NewDiscoverer(zap.NewNop(), loader).Discover(dir)

	entry, ok := r.Get("sepia")
	require.True(t, ok)
	assert.Equal(t, "WarmTonePlugin", entry.TypeName)
	_, ok = r.Get("WarmTonePlugin")
	assert.False(t, ok)
}

func TestDiscoverLastQualifyingTypeWins(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "tone.fx")

	loader := &fakeLoader{modules: map[string][]plugin.Definition{
		"tone": {
			{Name: "DarkPlugin", New: constant(0)},
			{Name: "toneHelper", New: constant(7)},
			{Name: "BrightPlugin", New: constant(255)},
			{Name: "NotAnEffectPlugin", New: func() (plugin.Effect, error) { return nil, nil }},
		},
	}}
	r := plugin.NewDiscoverer(zap.NewNop(), loader).Discover(dir)

	entry, ok := r.Get("tone")
	require.True(t, ok)
	assert.Equal(t, "BrightPlugin", entry.TypeName)

	out, err := entry.Effect.ApplyEffect(frame.New(1, 1, frame.BGR))
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 255, 255}, out.Pix)
}

func TestDiscoverTenModulesTenEntries(t *testing.T) {
	dir := t.TempDir()
	loader := &fakeLoader{modules: map[string][]plugin.Definition{}}
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("fx%02d", i)
		touch(t, dir, name+".fx")
		loader.modules[name] = []plugin.Definition{
			{Name: "APlugin", New: constant(1)},
			{Name: "BPlugin", New: constant(2)},
			{Name: "CPlugin", New: constant(3)},
		}
	}

	r := plugin.NewDiscoverer(zap.NewNop(), loader).Discover(dir)
	assert.Equal(t, 10, r.Len())
	for _, name := range r.List() {
		entry, _ := r.Get(name)
		assert.Equal(t, "CPlugin", entry.TypeName)
	}
}

func TestDiscoverSkipsExcludedAndUnknownFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "_private.fx", "notes.txt", "edge.fx")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.fx"), 0o755))

	loader := &fakeLoader{modules: map[string][]plugin.Definition{
		"_private": {{Name: "HiddenPlugin", New: constant(1)}},
		"notes":    {{Name: "NotesPlugin", New: constant(1)}},
		"edge":     {{Name: "EdgePlugin", New: constant(1)}},
		"nested":   {{Name: "NestedPlugin", New: constant(1)}},
	}}
	r := plugin.NewDiscoverer(zap.NewNop(), loader).Discover(dir)

	assert.Equal(t, []string{"edge"}, r.List())
}

func TestDiscoverIsolatesFailingModules(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.fx", "b.fx", "c.fx", "d.fx")

	loader := &fakeLoader{
		modules: map[string][]plugin.Definition{
			"a": {{Name: "APlugin", New: constant(1)}},
			"c": {{Name: "CPlugin", New: func() (plugin.Effect, error) { return nil, errors.New("no gpu") }}},
			"d": {{Name: "DPlugin", New: func() (plugin.Effect, error) { panic("boom") }}},
		},
		errs: map[string]error{"b": errors.New("syntax error")},
	}

	core, logs := observer.New(zapcore.InfoLevel)
	r := plugin.NewDiscoverer(zap.New(core), loader).Discover(dir)

	assert.Equal(t, []string{"a"}, r.List())

	loaded := logs.FilterMessage("Loaded plugin").All()
	require.Len(t, loaded, 1)
	assert.Equal(t, "a", loaded[0].ContextMap()["module"])
	assert.Equal(t, "APlugin", loaded[0].ContextMap()["type"])

	failed := logs.FilterMessage("Error loading plugin").All()
	require.Len(t, failed, 3)
	modules := []interface{}{}
	for _, entry := range failed {
		modules = append(modules, entry.ContextMap()["module"])
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	}
	assert.Equal(t, []interface{}{"b", "c", "d"}, modules)
	assert.Contains(t, failed[1].ContextMap()["error"], "no gpu")
}

func TestDiscoverFailedModuleKeepsEarlierSameName(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "blur.fx")
	write(t, dir, "blur.yaml", "definitions: [")

	catalog, err := builtin.NewCatalog()
	require.NoError(t, err)
	loader := &fakeLoader{modules: map[string][]plugin.Definition{
		"blur": {{Name: "FakeBlurPlugin", New: constant(9)}},
	}}
	r := plugin.NewDiscoverer(zap.NewNop(), loader, plugin.NewManifestLoader(catalog)).Discover(dir)

	entry, ok := r.Get("blur")
	require.True(t, ok)
	assert.Equal(t, "FakeBlurPlugin", entry.TypeName)
}

func TestDiscoverLaterSameNameModuleReplacesEarlier(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "blur.fx")
	write(t, dir, "blur.yaml", `
definitions:
  - name: BlurPlugin
    kind: gaussian-blur
    config:
      kernel_size: 3
`)

	catalog, err := builtin.NewCatalog()
	require.NoError(t, err)
	loader := &fakeLoader{modules: map[string][]plugin.Definition{
		"blur": {{Name: "FakeBlurPlugin", New: constant(9)}},
	}}
	core, logs := observer.New(zapcore.InfoLevel)
	r := plugin.NewDiscoverer(zap.New(core), loader, plugin.NewManifestLoader(catalog)).Discover(dir)

	assert.Equal(t, 1, r.Len())
	entry, ok := r.Get("blur")
	require.True(t, ok)
	assert.Equal(t, "BlurPlugin", entry.TypeName)
	assert.Equal(t, 2, logs.FilterMessage("Loaded plugin").Len())
}

func TestDiscoverManifestExtensionIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "Gray.YAML", `
definitions:
  - name: GrayscalePlugin
    kind: grayscale
`)

	catalog, err := builtin.NewCatalog()
	require.NoError(t, err)
	core, logs := observer.New(zapcore.InfoLevel)
	r := plugin.NewDiscoverer(zap.New(core), plugin.NewManifestLoader(catalog)).Discover(dir)

	assert.Equal(t, []string{"Gray"}, r.List())
	assert.Equal(t, 0, logs.FilterMessage("Error loading plugin").Len())
}

func TestDiscoverManifests(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "grayscale.yaml", `
definitions:
  - name: GrayscalePlugin
    kind: grayscale
`)
	write(t, dir, "blur.yml", `
definitions:
  - name: BlurPlugin
    kind: gaussian-blur
    config:
      kernel_size: 5
`)
	write(t, dir, "broken.yaml", `
definitions:
  - name: BrokenPlugin
    kind: gaussian-blur
    config:
      kernel_size: 4
`)
	write(t, dir, "missing.yaml", `
definitions:
  - name: SepiaPlugin
    kind: sepia
`)
	write(t, dir, "_disabled.yaml", `
definitions:
  - name: InvertPlugin
    kind: invert
`)

	catalog, err := builtin.NewCatalog()
	require.NoError(t, err)
	core, logs := observer.New(zapcore.InfoLevel)
	r := plugin.NewDiscoverer(zap.New(core), plugin.NewManifestLoader(catalog), plugin.SharedObjectLoader{}).Discover(dir)

	assert.Equal(t, []string{"blur", "grayscale"}, r.List())
	assert.Equal(t, 2, logs.FilterMessage("Error loading plugin").Len())

	gray, ok := r.Lookup("grayscale")
	require.True(t, ok)
	out, err := gray.ApplyEffect(frame.New(2, 2, frame.BGR))
	require.NoError(t, err)
	assert.Equal(t, frame.Gray, out.Channels)
}

func TestDiscoverBrokenSharedObject(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "vignette.so", "not an elf file")

	core, logs := observer.New(zapcore.InfoLevel)
	r := plugin.NewDiscoverer(zap.New(core), plugin.SharedObjectLoader{}).Discover(dir)

	assert.Equal(t, 0, r.Len())
	failed := logs.FilterMessage("Error loading plugin").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "vignette", failed[0].ContextMap()["module"])
}

func TestPluginLoadErrorUnwraps(t *testing.T) {
	cause := errors.New("missing dependency")
	err := error(&plugin.PluginLoadError{Module: "blur", Path: "plugins/blur.yaml", Err: cause})

	var loadErr *plugin.PluginLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "blur")
}
