package scene

import (
	"math"
	"sync/atomic"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/models"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
)

// Kind classifies scene children.
type Kind int

const (
	KindMesh Kind = iota
	KindAmbientLight
	KindDirectionalLight
	KindGrid
	KindAxes
)

func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindAmbientLight:
		return "ambient-light"
	case KindDirectionalLight:
		return "directional-light"
	case KindGrid:
		return "grid"
	case KindAxes:
		return "axes"
	default:
		return "unknown"
	}
}

// Tag binds a mesh to the BIM component it renders. Objects without a tag
// are never picked.
type Tag struct {
	ModelID     string
	ComponentID string
}

var nextObjectID atomic.Uint64

// Object is a node in the scene: a mesh, a light, or a helper.
type Object struct {
	ID   uint64
	Name string
	Kind Kind

	Position math3d.Vec3
	Rotation math3d.Quat
	Scale    math3d.Vec3

	Mesh     *models.Mesh
	Material *Material
	Tag      *Tag

	// Lights
	LightColor render.Color
	Intensity  float64

	// Helpers: grid size/divisions, axes length
	Size      float64
	Divisions int
}

func newObject(kind Kind, name string) *Object {
	return &Object{
		ID:       nextObjectID.Add(1),
		Name:     name,
		Kind:     kind,
		Rotation: math3d.IdentityQuat(),
		Scale:    math3d.V3(1, 1, 1),
	}
}

// NewMeshObject wraps a mesh and material.
func NewMeshObject(name string, mesh *models.Mesh, mat *Material) *Object {
	o := newObject(KindMesh, name)
	o.Mesh = mesh
	o.Material = mat
	return o
}

// Matrix returns the local-to-world transform.
func (o *Object) Matrix() math3d.Mat4 {
	return math3d.Compose(o.Position, o.Rotation, o.Scale)
}

// WorldBounds returns the world-space bounding box of a mesh object, or an
// empty box for anything else.
func (o *Object) WorldBounds() math3d.Box3 {
	if o.Kind != KindMesh || o.Mesh == nil || o.Mesh.VertexCount() == 0 {
		return math3d.EmptyBox3()
	}
	return o.Mesh.Bounds().Transform(o.Matrix())
}

// Raycast returns the distance to the nearest triangle hit by ray.
func (o *Object) Raycast(ray math3d.Ray) (float64, bool) {
	if o.Kind != KindMesh || o.Mesh == nil {
		return 0, false
	}
	if _, ok := ray.IntersectBox(o.WorldBounds()); !ok {
		return 0, false
	}
	m := o.Matrix()
	best := math.Inf(1)
	for i := range o.Mesh.TriangleCount() {
		f := o.Mesh.GetFace(i)
		a, _, _ := o.Mesh.GetVertex(f[0])
		b, _, _ := o.Mesh.GetVertex(f[1])
		c, _, _ := o.Mesh.GetVertex(f[2])
		if t, ok := ray.IntersectTriangle(m.MulVec3(a), m.MulVec3(b), m.MulVec3(c)); ok && t < best {
			best = t
		}
	}
	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}

// Dispose releases the mesh geometry and material.
func (o *Object) Dispose() {
	if o.Mesh != nil {
		o.Mesh.Dispose()
	}
	if o.Material != nil {
		o.Material.Dispose()
	}
}
