package viewer

import (
	"fmt"

	"fortio.org/log"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/models"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/scene"
)

// Synthesis parameters.
const (
	DefaultSize      = 2.0
	MinSize          = 0.5
	FallbackSpacing  = 5.0
	CylinderSegments = 32
	CableRadius      = 0.1
	CableSegments    = 16
	MinCableLength   = 0.1

	BaseEmissiveIntensity = 0.2
	Metalness             = 0.2
	Roughness             = 0.5
)

// ShapeKind is the primitive a component is drawn with.
type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeCylinder
)

func (k ShapeKind) String() string {
	if k == ShapeCylinder {
		return "cylinder"
	}
	return "box"
}

// Shape records the primitive parameters chosen for a component.
type Shape struct {
	Kind     ShapeKind
	Size     math3d.Vec3 // box extents; clamped box size for every kind
	Radius   float64
	Height   float64
	Segments int
}

// Synthesis is the result of turning one component into a scene object.
type Synthesis struct {
	Object   *scene.Object
	Shape    Shape
	Fallback bool // no bounding box: default size at the index position
}

// StatusColors returns the base and emissive colors for a status.
func StatusColors(s bim.Status) (color, emissive render.Color) {
	switch s {
	case bim.StatusSafe:
		return render.Hex(0x22c55e), render.Hex(0x15803d)
	case bim.StatusWarning:
		return render.Hex(0xeab308), render.Hex(0xca8a04)
	case bim.StatusDanger:
		return render.Hex(0xef4444), render.Hex(0xdc2626)
	default:
		return render.Hex(0x3b82f6), render.Hex(0x1e3a8a)
	}
}

func newStatusMaterial(s bim.Status) *scene.Material {
	c, e := StatusColors(s)
	return &scene.Material{
		Color:             c,
		Emissive:          e,
		EmissiveIntensity: BaseEmissiveIntensity,
		Metalness:         Metalness,
		Roughness:         Roughness,
	}
}

// Synthesize builds the mesh for c from its bounding box, or from the default
// size at (index*FallbackSpacing, 0, 0) when box is nil.
func Synthesize(c bim.Component, box *bim.BoundingBox, index int) (*Synthesis, error) {
	size := math3d.V3(DefaultSize, DefaultSize, DefaultSize)
	pos := math3d.V3(float64(index)*FallbackSpacing, 0, 0)
	var lo, hi math3d.Vec3
	if box != nil {
		lo, hi = math3d.V3FromArray(box.Min), math3d.V3FromArray(box.Max)
		if !lo.IsFinite() || !hi.IsFinite() {
			return nil, fmt.Errorf("component %s: non-finite bounding box", c.ID)
		}
		size = hi.Sub(lo).ClampMin(MinSize)
		pos = lo.Add(hi).Scale(0.5)
	}

	syn := &Synthesis{Fallback: box == nil}
	obj := scene.NewMeshObject(c.Name, nil, newStatusMaterial(c.Status))
	obj.Position = pos

	var err error
	switch c.Type {
	case bim.TypePylon, bim.TypeColumn:
		syn.Shape = Shape{
			Kind:     ShapeCylinder,
			Size:     size,
			Radius:   max(size.X, size.Z) / 2,
			Height:   size.Y,
			Segments: CylinderSegments,
		}
	case bim.TypeCable:
		syn.Shape = Shape{Kind: ShapeCylinder, Size: size, Radius: CableRadius, Height: size.Y, Segments: CableSegments}
		if box != nil {
			// The box's diagonal corners stand in for the cable endpoints,
			// anchored at the higher one. Authored boxes must follow this.
			start, end := hi, lo
			if lo.Y > hi.Y {
				start, end = lo, hi
			}
			dir := end.Sub(start)
			syn.Shape.Height = max(dir.Len(), MinCableLength)
			obj.Position = start.Add(end).Scale(0.5)
			if dir.Len() > 0.001 {
				obj.Rotation = math3d.QuatFromUnitVectors(math3d.Up(), dir.Normalize())
			}
		}
	default:
		syn.Shape = Shape{Kind: ShapeBox, Size: size}
	}

	if syn.Shape.Kind == ShapeCylinder {
		obj.Mesh, err = models.NewCylinder(c.ID, syn.Shape.Radius, syn.Shape.Height, syn.Shape.Segments)
	} else {
		obj.Mesh, err = models.NewBox(c.ID, syn.Shape.Size)
	}
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", c.ID, err)
	}
	syn.Object = obj
	log.LogVf("Synthesized %s %s (%s) at %v", c.Type, c.ID, syn.Shape.Kind, obj.Position)
	return syn, nil
}

// SynthesizeComponent looks up the geometry of the index-th component of m
// and synthesizes it, warning when no geometry entry exists.
func SynthesizeComponent(m *bim.Model, index int) (*Synthesis, error) {
	c := m.Components[index]
	var box *bim.BoundingBox
	if g, ok := m.GeometryFor(c.ID); ok {
		box = &g.BoundingBox
	} else {
		log.Warnf("No geometry for component %s (%s), using fallback placement", c.Name, c.ID)
	}
	return Synthesize(c, box, index)
}
