package plugin

import (
	"FrameForge/pkg/frame"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity() Effect {
	return EffectFunc(func(f frame.Frame) (frame.Frame, error) { return f, nil })
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(
		Entry{Module: "blur", TypeName: "BlurPlugin", Effect: identity()},
		Entry{Module: "grayscale", TypeName: "GrayscalePlugin", Effect: identity()},
	)

	entry, ok := r.Get("blur")
	require.True(t, ok)
	assert.Equal(t, "BlurPlugin", entry.TypeName)

	_, ok = r.Lookup("sepia")
	assert.False(t, ok)

	assert.Equal(t, []string{"blur", "grayscale"}, r.List())
	assert.Equal(t, 2, r.Len())
}

func TestRegistryLaterEntryWins(t *testing.T) {
	r := NewRegistry(
		Entry{Module: "blur", TypeName: "BoxBlurPlugin", Effect: identity()},
		Entry{Module: "blur", TypeName: "GaussianBlurPlugin", Effect: identity()},
	)

	entry, ok := r.Get("blur")
	require.True(t, ok)
	assert.Equal(t, "GaussianBlurPlugin", entry.TypeName)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryIgnoresInvalidEntries(t *testing.T) {
	r := NewRegistry(
		Entry{Module: "", Effect: identity()},
		Entry{Module: "broken"},
	)
	assert.Equal(t, 0, r.Len())
}

func TestNilRegistryIsEmpty(t *testing.T) {
	var r *Registry
	_, ok := r.Lookup("blur")
	assert.False(t, ok)
	assert.Empty(t, r.List())
	assert.Equal(t, 0, r.Len())
}

func TestDefinitionIsPluginType(t *testing.T) {
	ctor := func() (Effect, error) { return identity(), nil }

	assert.True(t, Definition{Name: "BlurPlugin", New: ctor}.IsPluginType())
	assert.False(t, Definition{Name: "BlurHelper", New: ctor}.IsPluginType())
	assert.False(t, Definition{Name: "BlurPlugin"}.IsPluginType())
}

func TestCatalogRegister(t *testing.T) {
	c := NewCatalog()
	factory := func(map[string]interface{}) (Effect, error) { return identity(), nil }

	require.NoError(t, c.Register("mirror", factory))
	assert.Error(t, c.Register("mirror", factory))
	assert.Error(t, c.Register("", factory))
	assert.Error(t, c.Register("nil", nil))

	_, ok := c.Get("mirror")
	assert.True(t, ok)
	assert.Equal(t, []string{"mirror"}, c.Kinds())
}
