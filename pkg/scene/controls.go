package scene

import (
	"math"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
	"github.com/charmbracelet/harmonica"
)

const (
	minPolar    = 1e-3
	minDistance = 0.01
	restEpsilon = 1e-6
)

// orbitAxis holds one orbit velocity that a spring pulls back to rest.
type orbitAxis struct {
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

func newOrbitAxis(fps int, frequency float64) orbitAxis {
	return orbitAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), frequency, 1.0),
	}
}

// step returns the amount to apply this frame and decays the velocity.
func (a *orbitAxis) step(damping bool) float64 {
	v := a.Velocity
	if !damping {
		a.Velocity, a.velAccel = 0, 0
		return v
	}
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
	if math.Abs(a.Velocity) < restEpsilon {
		a.Velocity, a.velAccel = 0, 0
	}
	return v
}

func (a *orbitAxis) stop() {
	a.Velocity, a.velAccel = 0, 0
}

// OrbitControls orbit, zoom and pan a camera around Target.
type OrbitControls struct {
	Target        math3d.Vec3
	EnableDamping bool
	DampingFactor float64
	EnableZoom    bool
	EnablePan     bool

	camera   *render.Camera
	fps      int
	theta    orbitAxis
	phi      orbitAxis
	zoom     orbitAxis
	panX     orbitAxis
	panY     orbitAxis
	disposed bool
}

// NewOrbitControls attaches controls to camera, keeping its current target.
func NewOrbitControls(camera *render.Camera, fps int) *OrbitControls {
	c := &OrbitControls{
		Target:        camera.Target,
		EnableDamping: true,
		DampingFactor: 0.05,
		EnableZoom:    true,
		EnablePan:     true,
		camera:        camera,
		fps:           fps,
	}
	c.resetAxes()
	return c
}

// Spring frequency scales with DampingFactor; 0.05 gives 4.0.
func (c *OrbitControls) resetAxes() {
	f := c.DampingFactor * 80
	if f <= 0 {
		f = 4.0
	}
	c.theta = newOrbitAxis(c.fps, f)
	c.phi = newOrbitAxis(c.fps, f)
	c.zoom = newOrbitAxis(c.fps, f)
	c.panX = newOrbitAxis(c.fps, f)
	c.panY = newOrbitAxis(c.fps, f)
}

// Rotate adds azimuth and polar angular velocity in radians.
func (c *OrbitControls) Rotate(dTheta, dPhi float64) {
	c.theta.Velocity += dTheta
	c.phi.Velocity += dPhi
}

// Zoom moves the camera toward the target for positive delta.
func (c *OrbitControls) Zoom(delta float64) {
	if c.EnableZoom {
		c.zoom.Velocity += delta
	}
}

// Pan shifts the target in screen space, scaled by the orbit distance.
func (c *OrbitControls) Pan(dx, dy float64) {
	if c.EnablePan {
		c.panX.Velocity += dx
		c.panY.Velocity += dy
	}
}

// Stop cancels all pending motion.
func (c *OrbitControls) Stop() {
	c.theta.stop()
	c.phi.stop()
	c.zoom.stop()
	c.panX.stop()
	c.panY.stop()
}

// Moving reports whether any velocity is still decaying.
func (c *OrbitControls) Moving() bool {
	for _, a := range []*orbitAxis{&c.theta, &c.phi, &c.zoom, &c.panX, &c.panY} {
		if a.Velocity != 0 {
			return true
		}
	}
	return false
}

// Dispose detaches the controls; later updates are no-ops.
func (c *OrbitControls) Dispose() {
	c.Stop()
	c.disposed = true
}

// Update advances one frame. The camera position only changes while some
// motion is pending, so positions set from outside are kept as is.
func (c *OrbitControls) Update() {
	if c.disposed || c.camera == nil {
		return
	}
	if !c.Moving() {
		c.camera.Target = c.Target
		return
	}
	dTheta := c.theta.step(c.EnableDamping)
	dPhi := c.phi.step(c.EnableDamping)
	dZoom := c.zoom.step(c.EnableDamping)
	dx := c.panX.step(c.EnableDamping)
	dy := c.panY.step(c.EnableDamping)

	offset := c.camera.Position.Sub(c.Target)
	radius := offset.Len()
	if radius < minDistance {
		radius = minDistance
		offset = math3d.V3(0, 0, radius)
	}

	if dx != 0 || dy != 0 {
		forward := offset.Negate().Normalize()
		right := forward.Cross(c.camera.Up).Normalize()
		up := right.Cross(forward)
		shift := right.Scale(-dx * radius).Add(up.Scale(dy * radius))
		c.Target = c.Target.Add(shift)
	}

	theta := math.Atan2(offset.X, offset.Z) + dTheta
	phi := math.Acos(math.Max(-1, math.Min(1, offset.Y/radius))) + dPhi
	phi = math.Max(minPolar, math.Min(math.Pi-minPolar, phi))
	radius = math.Max(minDistance, radius*math.Exp(-dZoom))

	sinPhi := math.Sin(phi)
	c.camera.Position = c.Target.Add(math3d.V3(
		radius*sinPhi*math.Sin(theta),
		radius*math.Cos(phi),
		radius*sinPhi*math.Cos(theta),
	))
	c.camera.Target = c.Target
}
