package registry

import (
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelkit/panelkit/pkg/models"
)

func manifestJSON(widgetType, name, category string) []byte {
	return []byte(`{
		"type": "` + widgetType + `",
		"name": "` + name + `",
		"version": "1.0.0",
		"category": "` + category + `",
		"capabilities": {"configurable": true}
	}`)
}

func TestLoader_Discover(t *testing.T) {
	fsys := fstest.MapFS{
		"weather/manifest.json": &fstest.MapFile{Data: manifestJSON("weather", "Weather", "data")},
		"clock/manifest.json":   &fstest.MapFile{Data: manifestJSON("clock", "Clock", "data")},
		"clock/README.md":       &fstest.MapFile{Data: []byte("not a manifest")},
	}

	loader := NewLoader(slog.Default(), NewRegistry(slog.Default(), nil))

	modules, err := loader.Discover(fsys)
	require.NoError(t, err)
	require.Len(t, modules, 2)
	assert.Equal(t, "weather", modules["weather/manifest.json"].Type)
	assert.Equal(t, "clock", modules["clock/manifest.json"].Type)
}

func TestLoader_Discover_MalformedManifestSkipped(t *testing.T) {
	fsys := fstest.MapFS{
		"good/manifest.json":   &fstest.MapFile{Data: manifestJSON("good", "Good", "data")},
		"broken/manifest.json": &fstest.MapFile{Data: []byte("{ not json")},
	}

	loader := NewLoader(slog.Default(), NewRegistry(slog.Default(), nil))

	modules, err := loader.Discover(fsys)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Contains(t, modules, "good/manifest.json")
}

func TestLoader_AutoRegister(t *testing.T) {
	reg := NewRegistry(slog.Default(), nil)
	loader := NewLoader(slog.Default(), reg)

	modules := map[string]*models.Manifest{
		"weather/manifest.json": {
			Type:         "weather",
			Name:         "Weather",
			Version:      "1.0.0",
			Category:     "data",
			Capabilities: models.Capabilities{DataDriven: true},
		},
		"clock/manifest.json": {
			Type:         "clock",
			Name:         "Clock",
			Version:      "1.0.0",
			Category:     "data",
			Capabilities: models.Capabilities{Configurable: true},
		},
		"broken/manifest.json": {
			Name: "No Type",
		},
	}

	result := loader.AutoRegister(modules)

	assert.Equal(t, 2, result.Registered)
	assert.Equal(t, []string{"broken/manifest.json"}, result.Skipped)
	assert.Empty(t, result.Errors)

	assert.NotNil(t, reg.Definition("weather"))
	assert.NotNil(t, reg.Definition("clock"))
	assert.Equal(t, 2, reg.Count())
}

func TestLoader_AutoRegister_Idempotent(t *testing.T) {
	reg := NewRegistry(slog.Default(), nil)
	loader := NewLoader(slog.Default(), reg)

	modules := map[string]*models.Manifest{
		"weather/manifest.json": {
			Type:         "weather",
			Name:         "Weather",
			Version:      "1.0.0",
			Category:     "data",
			Capabilities: models.Capabilities{DataDriven: true},
		},
	}

	first := loader.AutoRegister(modules)
	require.Equal(t, 1, first.Registered)

	// A second pass starts from a cleared catalog, so nothing collides.
	second := loader.AutoRegister(modules)
	assert.Equal(t, 1, second.Registered)
	assert.Empty(t, second.Errors)
	assert.Equal(t, 1, reg.Count())
}

func TestLoader_RegisterModules_LayersOverBuiltins(t *testing.T) {
	reg := NewRegistry(slog.Default(), nil)
	reg.RegisterDefaultWidgets()
	builtins := reg.Count()

	loader := NewLoader(slog.Default(), reg)

	result := loader.RegisterModules(map[string]*models.Manifest{
		"weather/manifest.json": {
			Type:         "weather",
			Name:         "Weather",
			Version:      "1.0.0",
			Category:     "data",
			Capabilities: models.Capabilities{DataDriven: true},
		},
		// Collides with a built-in; the built-in wins.
		"chart/manifest.json": {
			Type:         "chart",
			Name:         "Impostor Chart",
			Version:      "9.0.0",
			Category:     "chart",
			Capabilities: models.Capabilities{Configurable: true},
		},
	})

	assert.Equal(t, 1, result.Registered)
	require.Len(t, result.Errors, 1)
	assert.True(t, IsDuplicateID(result.Errors[0]))

	assert.Equal(t, builtins+1, reg.Count())
	assert.NotEqual(t, "Impostor Chart", reg.Definition("chart").Name)
}
