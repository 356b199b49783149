package viewer

import (
	"math"
	"testing"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(min, max [3]float64) *bim.BoundingBox {
	return &bim.BoundingBox{Min: min, Max: max}
}

func assertVec(t *testing.T, want, got math3d.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqual(got, 1e-9), "want %v, got %v", want, got)
}

func TestSynthesizeFromBoundingBox(t *testing.T) {
	tests := []struct {
		name     string
		typ      bim.ComponentType
		box      *bim.BoundingBox
		wantPos  math3d.Vec3
		wantSize math3d.Vec3
		kind     ShapeKind
	}{
		{"deck clamps thin axis", bim.TypeDeck, box([3]float64{0, 0, 0}, [3]float64{20, 1, 0.3}), math3d.V3(10, 0.5, 0.15), math3d.V3(20, 1, 0.5), ShapeBox},
		{"beam", bim.TypeBeam, box([3]float64{-2, 4, -1}, [3]float64{2, 6, 1}), math3d.V3(0, 5, 0), math3d.V3(4, 2, 2), ShapeBox},
		{"flat foundation", bim.TypeFoundation, box([3]float64{1, 1, 1}, [3]float64{1, 1, 1}), math3d.V3(1, 1, 1), math3d.V3(0.5, 0.5, 0.5), ShapeBox},
		{"pylon", bim.TypePylon, box([3]float64{0, 0, 0}, [3]float64{5, 50, 5}), math3d.V3(2.5, 25, 2.5), math3d.V3(5, 50, 5), ShapeCylinder},
		{"column", bim.TypeColumn, box([3]float64{0, 0, 0}, [3]float64{2, 10, 4}), math3d.V3(1, 5, 2), math3d.V3(2, 10, 4), ShapeCylinder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syn, err := Synthesize(bim.Component{ID: "c", Type: tt.typ}, tt.box, 7)
			require.NoError(t, err)
			assert.False(t, syn.Fallback)
			assertVec(t, tt.wantPos, syn.Object.Position)
			assertVec(t, tt.wantSize, syn.Shape.Size)
			assert.Equal(t, tt.kind, syn.Shape.Kind)
		})
	}
}

func TestSynthesizeCylinderParameters(t *testing.T) {
	syn, err := Synthesize(bim.Component{ID: "p", Type: bim.TypePylon}, box([3]float64{0, 0, 0}, [3]float64{2, 10, 4}), 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, syn.Shape.Radius)
	assert.Equal(t, 10.0, syn.Shape.Height)
	assert.Equal(t, CylinderSegments, syn.Shape.Segments)
	size := syn.Object.Mesh.Size()
	assert.InDelta(t, 4, size.X, 1e-9)
	assert.InDelta(t, 10, size.Y, 1e-9)
}

func TestSynthesizeCable(t *testing.T) {
	syn, err := Synthesize(bim.Component{ID: "k", Type: bim.TypeCable}, box([3]float64{0, 0, 0}, [3]float64{3, 4, 0}), 0)
	require.NoError(t, err)
	assert.Equal(t, CableRadius, syn.Shape.Radius)
	assert.Equal(t, CableSegments, syn.Shape.Segments)
	assert.InDelta(t, 5, syn.Shape.Height, 1e-9)
	assertVec(t, math3d.V3(1.5, 2, 0), syn.Object.Position)
	// +Y is turned onto the direction from the upper corner to the lower one.
	assertVec(t, math3d.V3(-0.6, -0.8, 0), syn.Object.Rotation.Rotate(math3d.Up()))

	syn, err = Synthesize(bim.Component{ID: "k", Type: bim.TypeCable}, box([3]float64{1, 1, 1}, [3]float64{1, 1, 1}), 0)
	require.NoError(t, err)
	assert.Equal(t, MinCableLength, syn.Shape.Height)
	assert.Equal(t, math3d.IdentityQuat(), syn.Object.Rotation)

	syn, err = Synthesize(bim.Component{ID: "k", Type: bim.TypeCable}, nil, 2)
	require.NoError(t, err)
	assert.True(t, syn.Fallback)
	assert.Equal(t, DefaultSize, syn.Shape.Height)
	assertVec(t, math3d.V3(10, 0, 0), syn.Object.Position)
}

func TestSynthesizeFallback(t *testing.T) {
	syn, err := Synthesize(bim.Component{ID: "d", Type: bim.TypeDeck}, nil, 3)
	require.NoError(t, err)
	assert.True(t, syn.Fallback)
	assertVec(t, math3d.V3(15, 0, 0), syn.Object.Position)
	assertVec(t, math3d.V3(2, 2, 2), syn.Shape.Size)
}

func TestSynthesizeRejectsNonFiniteBox(t *testing.T) {
	_, err := Synthesize(bim.Component{ID: "bad", Type: bim.TypeDeck}, box([3]float64{0, math.Inf(1), 0}, [3]float64{1, 1, 1}), 0)
	assert.Error(t, err)
}

func TestSynthesizeStatusMaterial(t *testing.T) {
	tests := []struct {
		status   bim.Status
		color    uint32
		emissive uint32
	}{
		{bim.StatusSafe, 0x22c55e, 0x15803d},
		{bim.StatusWarning, 0xeab308, 0xca8a04},
		{bim.StatusDanger, 0xef4444, 0xdc2626},
		{"", 0x3b82f6, 0x1e3a8a},
	}
	for _, tt := range tests {
		syn, err := Synthesize(bim.Component{ID: "s", Type: bim.TypeWall, Status: tt.status}, nil, 0)
		require.NoError(t, err)
		m := syn.Object.Material
		assert.Equal(t, render.Hex(tt.color), m.Color, "status %q", tt.status)
		assert.Equal(t, render.Hex(tt.emissive), m.Emissive, "status %q", tt.status)
		assert.Equal(t, BaseEmissiveIntensity, m.EmissiveIntensity)
		assert.Equal(t, Metalness, m.Metalness)
		assert.Equal(t, Roughness, m.Roughness)
	}
}
