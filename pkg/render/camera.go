package render

import (
	"math"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
)

// Camera is a perspective camera looking from Position at Target.
type Camera struct {
	Position math3d.Vec3
	Target   math3d.Vec3
	Up       math3d.Vec3

	FOV    float64 // Vertical field of view in radians
	Aspect float64 // Width / height
	Near   float64
	Far    float64
}

// NewCamera creates a camera at (0, 0, 5) looking at the origin.
func NewCamera() *Camera {
	return &Camera{
		Position: math3d.V3(0, 0, 5),
		Up:       math3d.Up(),
		FOV:      math.Pi / 3,
		Aspect:   1,
		Near:     0.1,
		Far:      100,
	}
}

// SetPosition moves the camera without changing its target.
func (c *Camera) SetPosition(p math3d.Vec3) {
	c.Position = p
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target math3d.Vec3) {
	c.Target = target
}

// SetFOV sets the vertical field of view in radians.
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
}

// FOVDegrees returns the vertical field of view in degrees.
func (c *Camera) FOVDegrees() float64 {
	return c.FOV * 180 / math.Pi
}

// SetAspectRatio sets width / height; non-positive values are ignored.
func (c *Camera) SetAspectRatio(aspect float64) {
	if aspect > 0 {
		c.Aspect = aspect
	}
}

// SetClipPlanes sets the near and far clip distances.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near, c.Far = near, far
}

// ViewMatrix returns the world-to-camera matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	return math3d.LookAt(c.Position, c.Target, c.Up)
}

// ProjectionMatrix returns the camera-to-clip matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	return math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// ViewProjectionMatrix returns projection * view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// Ray returns the world-space ray through a point in normalized device
// coordinates.
func (c *Camera) Ray(ndc math3d.Vec2) math3d.Ray {
	inv := c.ViewProjectionMatrix().Inverse()
	near := inv.MulVec3(math3d.V3(ndc.X, ndc.Y, -1))
	far := inv.MulVec3(math3d.V3(ndc.X, ndc.Y, 1))
	return math3d.NewRay(c.Position, far.Sub(near))
}

// Project maps a world point to screen pixels of a w×h viewport. ok is false
// for points behind the camera.
func (c *Camera) Project(p math3d.Vec3, w, h int) (x, y float64, ok bool) {
	clip := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= 0 {
		return 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	return (ndc.X + 1) * 0.5 * float64(w), (1 - ndc.Y) * 0.5 * float64(h), true
}
