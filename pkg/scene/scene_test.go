package scene

import (
	"testing"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/models"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoxObject(t *testing.T, pos math3d.Vec3) *Object {
	t.Helper()
	box, err := models.NewBox("box", math3d.V3(2, 2, 2))
	require.NoError(t, err)
	o := NewMeshObject("box", box, &Material{Color: render.ColorWhite})
	o.Position = pos
	return o
}

func TestSceneAddRemove(t *testing.T) {
	s := NewScene(render.ColorBlack)
	o := newBoxObject(t, math3d.Zero3())
	s.Add(o, o, nil)
	assert.Len(t, s.Children(), 1)
	assert.True(t, s.Contains(o))
	assert.True(t, s.Remove(o))
	assert.False(t, s.Remove(o))
	assert.Empty(t, s.Children())
}

func TestSceneTaggedAndBounds(t *testing.T) {
	s := NewScene(render.ColorBlack)
	a := newBoxObject(t, math3d.V3(-5, 0, 0))
	b := newBoxObject(t, math3d.V3(5, 0, 0))
	b.Tag = &Tag{ModelID: "m", ComponentID: "c"}
	s.Add(a, b, NewAxesHelper(10))

	tagged := s.Tagged()
	require.Len(t, tagged, 1)
	assert.Same(t, b, tagged[0])

	bounds := s.Bounds()
	assert.True(t, bounds.Min.ApproxEqual(math3d.V3(-6, -1, -1), 1e-9))
	assert.True(t, bounds.Max.ApproxEqual(math3d.V3(6, 1, 1), 1e-9))
}

func TestObjectRaycast(t *testing.T) {
	o := newBoxObject(t, math3d.V3(5, 0, 0))
	d, ok := o.Raycast(math3d.NewRay(math3d.V3(5, 0, 10), math3d.V3(0, 0, -1)))
	require.True(t, ok)
	assert.InDelta(t, 9, d, 1e-9)

	_, ok = o.Raycast(math3d.NewRay(math3d.V3(0, 0, 10), math3d.V3(0, 0, -1)))
	assert.False(t, ok)

	light := NewAmbientLight(render.ColorWhite, 1)
	_, ok = light.Raycast(math3d.NewRay(math3d.V3(0, 0, 10), math3d.V3(0, 0, -1)))
	assert.False(t, ok)
}

func TestObjectRotatedBounds(t *testing.T) {
	box, err := models.NewBox("slab", math3d.V3(4, 1, 1))
	require.NoError(t, err)
	o := NewMeshObject("slab", box, &Material{})
	o.Rotation = math3d.QuatFromUnitVectors(math3d.V3(1, 0, 0), math3d.Up())
	b := o.WorldBounds()
	assert.InDelta(t, 4, b.Size().Y, 1e-9)
	assert.InDelta(t, 1, b.Size().X, 1e-9)
}

func TestObjectDispose(t *testing.T) {
	o := newBoxObject(t, math3d.Zero3())
	o.Dispose()
	assert.True(t, o.Mesh.Disposed())
	assert.True(t, o.Material.Disposed())
}

func TestExportNodes(t *testing.T) {
	s := NewScene(render.ColorBlack)
	o := newBoxObject(t, math3d.V3(1, 2, 3))
	o.Tag = &Tag{ModelID: "bim-1", ComponentID: "comp-1"}
	o.Material.Emissive = render.RGB(255, 0, 0)
	o.Material.EmissiveIntensity = 0.2
	s.Add(o, newBoxObject(t, math3d.Zero3()), NewGridHelper(50, 50))

	nodes := s.ExportNodes()
	require.Len(t, nodes, 1)
	n := nodes[0]
	assert.Equal(t, "comp-1", n.Name)
	assert.Equal(t, math3d.V3(1, 2, 3), n.Translation)
	assert.Equal(t, "bim-1", n.Extras["modelId"])
	assert.InDelta(t, 0.2, n.Material.Emissive[0], 1e-9)
	assert.InDelta(t, 1, n.Material.BaseColor[3], 1e-9)
}

func BenchmarkObjectRaycast(b *testing.B) {
	cyl, err := models.NewCylinder("pylon", 2.5, 50, 32)
	if err != nil {
		b.Fatal(err)
	}
	o := NewMeshObject("pylon", cyl, &Material{Color: render.ColorWhite})
	o.Position = math3d.V3(0, 25, 0)
	ray := math3d.NewRay(math3d.V3(0, 10, 20), math3d.V3(0, 0.3, -1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = o.Raycast(ray)
	}
}
