package viewer

import (
	"context"
	"testing"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func materials(t *testing.T, v *Viewer) map[string]scene.Material {
	t.Helper()
	out := make(map[string]scene.Material)
	require.NoError(t, v.Engine.Do(func(*scene.Scene, *render.Camera, *scene.OrbitControls) {
		for _, e := range v.Registry.Entries() {
			out[e.Component.ID] = *e.Object.Material
		}
	}))
	return out
}

func TestHighlightRoundTrip(t *testing.T) {
	v := newTestViewer(t, Options{})
	load(t, v, demoModel(t))
	original := materials(t, v)
	ctx := context.Background()

	require.True(t, v.Select(ctx, "comp-1"))
	lit := materials(t, v)
	e, _ := v.Registry.Get("comp-1")
	assert.Equal(t, render.MultiplyColor(e.OriginalColor, HighlightBrightness), lit["comp-1"].Color)
	assert.Equal(t, e.OriginalEmissive, lit["comp-1"].Emissive)
	assert.Equal(t, HighlightIntensity, lit["comp-1"].EmissiveIntensity)
	assert.Equal(t, original["comp-2"], lit["comp-2"])
	assert.Equal(t, original["comp-3"], lit["comp-3"])

	require.True(t, v.Select(ctx, "comp-3"))
	moved := materials(t, v)
	assert.Equal(t, original["comp-1"], moved["comp-1"])
	assert.Equal(t, HighlightIntensity, moved["comp-3"].EmissiveIntensity)

	require.True(t, v.ClearSelection(ctx))
	assert.Equal(t, original, materials(t, v))
}

func TestHighlightIdempotent(t *testing.T) {
	v := newTestViewer(t, Options{})
	load(t, v, demoModel(t))

	require.NoError(t, v.Highlighter.Apply(Select("comp-2")))
	first := materials(t, v)
	require.NoError(t, v.Highlighter.Apply(Select("comp-2")))
	assert.Equal(t, first, materials(t, v))
}

func TestHighlightUnknownSelection(t *testing.T) {
	v := newTestViewer(t, Options{})
	load(t, v, demoModel(t))
	original := materials(t, v)

	require.NoError(t, v.Highlighter.Apply(Select("ghost")))
	assert.Equal(t, original, materials(t, v))
}
