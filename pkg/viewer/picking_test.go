package viewer

import (
	"context"
	"testing"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/models"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// aimAt points the camera at target from 30 units along +Z.
func aimAt(t *testing.T, v *Viewer, target math3d.Vec3) {
	t.Helper()
	require.NoError(t, v.Engine.Do(func(_ *scene.Scene, cam *render.Camera, ctl *scene.OrbitControls) {
		cam.Position = target.Add(math3d.V3(0, 0, 30))
		cam.Target = target
		ctl.Target = target
	}))
}

func TestPickNearestTaggedObject(t *testing.T) {
	v := newTestViewer(t, Options{})
	load(t, v, demoModel(t))
	aimAt(t, v, math3d.V3(2.5, 25, 2.5))

	id, ok := v.Picker.Pick(32, 24, testViewport)
	require.True(t, ok)
	assert.Equal(t, "comp-1", id)

	// Same point in a viewport offset on screen.
	id, ok = v.Picker.Pick(132, 74, Viewport{X: 100, Y: 50, Width: 64, Height: 48})
	require.True(t, ok)
	assert.Equal(t, "comp-1", id)

	// comp-3 sits at the fallback position (10,0,0).
	aimAt(t, v, math3d.V3(10, 0, 0))
	id, ok = v.Picker.Pick(32, 24, testViewport)
	require.True(t, ok)
	assert.Equal(t, "comp-3", id)
}

func TestPickIgnoresUntaggedAndHelpers(t *testing.T) {
	v := newTestViewer(t, Options{})
	load(t, v, demoModel(t))
	aimAt(t, v, math3d.V3(2.5, 25, 2.5))

	// An untagged wall right in front of the pylon.
	wall, err := models.NewBox("wall", math3d.V3(20, 20, 1))
	require.NoError(t, err)
	require.NoError(t, v.Engine.Do(func(s *scene.Scene, _ *render.Camera, _ *scene.OrbitControls) {
		o := scene.NewMeshObject("wall", wall, &scene.Material{})
		o.Position = math3d.V3(2.5, 25, 20)
		s.Add(o)
	}))
	id, ok := v.Picker.Pick(32, 24, testViewport)
	require.True(t, ok)
	assert.Equal(t, "comp-1", id)
}

func TestPickDiscardsEmptyComponentID(t *testing.T) {
	v := newTestViewer(t, Options{})
	load(t, v, demoModel(t))
	aimAt(t, v, math3d.V3(2.5, 25, 2.5))

	shield, err := models.NewBox("shield", math3d.V3(20, 20, 1))
	require.NoError(t, err)
	require.NoError(t, v.Engine.Do(func(s *scene.Scene, _ *render.Camera, _ *scene.OrbitControls) {
		o := scene.NewMeshObject("shield", shield, &scene.Material{})
		o.Position = math3d.V3(2.5, 25, 20)
		o.Tag = &scene.Tag{ModelID: "bim-1", ComponentID: "  "}
		s.Add(o)
	}))
	_, ok := v.Picker.Pick(32, 24, testViewport)
	assert.False(t, ok)
}

func TestClickMissKeepsSelection(t *testing.T) {
	v := newTestViewer(t, Options{})
	load(t, v, demoModel(t))
	ctx := context.Background()
	require.True(t, v.Select(ctx, "comp-3"))

	aimAt(t, v, math3d.V3(500, 500, 500))
	_, ok := v.Click(ctx, 32, 24, testViewport)
	assert.False(t, ok)
	assert.Equal(t, Select("comp-3"), v.Selection())

	aimAt(t, v, math3d.V3(2.5, 25, 2.5))
	id, ok := v.Click(ctx, 32, 24, testViewport)
	require.True(t, ok)
	assert.Equal(t, "comp-1", id)
	assert.Equal(t, Select("comp-1"), v.Selection())
}

func TestPickZeroViewport(t *testing.T) {
	v := newTestViewer(t, Options{})
	_, ok := v.Picker.Pick(0, 0, Viewport{})
	assert.False(t, ok)
}
