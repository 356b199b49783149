// Package scene owns the 3D scene graph, the perspective camera, orbit
// controls and the render loop that draws them.
package scene

import (
	"slices"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
)

// Scene is a flat list of objects drawn over a background color.
// It is not safe for concurrent use; Engine serializes access.
type Scene struct {
	Background render.Color
	children   []*Object
}

// NewScene creates an empty scene.
func NewScene(bg render.Color) *Scene {
	return &Scene{Background: bg}
}

// Add appends objects that are not already children.
func (s *Scene) Add(objs ...*Object) {
	for _, o := range objs {
		if o != nil && !s.Contains(o) {
			s.children = append(s.children, o)
		}
	}
}

// Remove detaches o; it reports whether o was a child.
func (s *Scene) Remove(o *Object) bool {
	i := slices.Index(s.children, o)
	if i < 0 {
		return false
	}
	s.children = slices.Delete(s.children, i, i+1)
	return true
}

// Contains reports whether o is a child.
func (s *Scene) Contains(o *Object) bool {
	return slices.Contains(s.children, o)
}

// Children returns a copy of the child list.
func (s *Scene) Children() []*Object {
	return slices.Clone(s.children)
}

// HasKind reports whether any child is of kind k.
func (s *Scene) HasKind(k Kind) bool {
	return slices.ContainsFunc(s.children, func(o *Object) bool { return o.Kind == k })
}

// CountKind returns the number of children of kind k.
func (s *Scene) CountKind(k Kind) int {
	n := 0
	for _, o := range s.children {
		if o.Kind == k {
			n++
		}
	}
	return n
}

// Tagged returns the mesh children that carry a component tag.
func (s *Scene) Tagged() []*Object {
	var out []*Object
	for _, o := range s.children {
		if o.Kind == KindMesh && o.Tag != nil {
			out = append(out, o)
		}
	}
	return out
}

// Bounds returns the union of all mesh bounds.
func (s *Scene) Bounds() math3d.Box3 {
	b := math3d.EmptyBox3()
	for _, o := range s.children {
		b = b.Union(o.WorldBounds())
	}
	return b
}

// ensureDefaults adds the light rig and helpers, each only when no child
// of that kind exists yet.
func (s *Scene) ensureDefaults() {
	if !s.HasKind(KindAmbientLight) && !s.HasKind(KindDirectionalLight) {
		s.Add(defaultLighting()...)
	}
	if !s.HasKind(KindGrid) {
		s.Add(NewGridHelper(50, 50))
	}
	if !s.HasKind(KindAxes) {
		s.Add(NewAxesHelper(10))
	}
}
