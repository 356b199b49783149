package scene

import (
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
)

// NewAmbientLight creates a light that illuminates every face equally.
func NewAmbientLight(c render.Color, intensity float64) *Object {
	o := newObject(KindAmbientLight, "ambient")
	o.LightColor = c
	o.Intensity = intensity
	return o
}

// NewDirectionalLight creates a light shining from position toward the origin.
func NewDirectionalLight(c render.Color, intensity float64, position math3d.Vec3) *Object {
	o := newObject(KindDirectionalLight, "directional")
	o.LightColor = c
	o.Intensity = intensity
	o.Position = position
	return o
}

// NewGridHelper creates a size×size grid on the XZ plane.
func NewGridHelper(size float64, divisions int) *Object {
	o := newObject(KindGrid, "grid")
	o.Size = size
	o.Divisions = divisions
	return o
}

// NewAxesHelper creates RGB lines along +X, +Y and +Z.
func NewAxesHelper(length float64) *Object {
	o := newObject(KindAxes, "axes")
	o.Size = length
	return o
}

// defaultLighting returns the fixed light rig of the viewer.
func defaultLighting() []*Object {
	white := render.ColorWhite
	return []*Object{
		NewAmbientLight(white, 1.0),
		NewDirectionalLight(white, 1.2, math3d.V3(10, 10, 10)),
		NewDirectionalLight(white, 0.8, math3d.V3(-10, 5, -10)),
		NewDirectionalLight(white, 0.6, math3d.V3(0, 20, 0)),
	}
}
