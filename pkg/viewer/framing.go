package viewer

import (
	"math"
	"time"

	"fortio.org/log"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/scene"
)

const (
	DefaultFillRatio     = 0.8
	DefaultFocusDuration = 1200 * time.Millisecond

	cameraChannel = "camera"
	viewAngle     = math.Pi / 4
	heightFactor  = 0.3
)

// FramingDistance returns the camera distance at which a box of size fills
// fill of the viewport, given the vertical fov in radians.
func FramingDistance(size math3d.Vec3, fov, aspect, fill float64) float64 {
	if fill <= 0 {
		fill = DefaultFillRatio
	}
	if aspect <= 0 {
		aspect = 1
	}
	t := math.Tan(fov / 2)
	vertical := (size.Y / 2) / (t * fill)
	horizontal := (max(size.X, size.Z) / 2) / (t * aspect * fill)
	return max(vertical, horizontal, 0.5*size.MaxComponent())
}

// Framing is a camera placement: where it sits and what it orbits.
type Framing struct {
	Position math3d.Vec3
	Target   math3d.Vec3
}

// FrameBox places the camera at 45° around the box center, raised by a
// fraction of the distance.
func FrameBox(box math3d.Box3, cam *render.Camera, fill float64) Framing {
	center := box.Center()
	d := FramingDistance(box.Size(), cam.FOV, cam.Aspect, fill)
	return Framing{
		Position: center.Add(math3d.V3(d*math.Cos(viewAngle), heightFactor*d, d*math.Sin(viewAngle))),
		Target:   center,
	}
}

func (f Framing) apply(cam *render.Camera, ctl *scene.OrbitControls) {
	cam.Position = f.Position
	cam.Target = f.Target
	if ctl != nil {
		ctl.Stop()
		ctl.Target = f.Target
	}
}

// FocusToScene frames box immediately.
func FocusToScene(cam *render.Camera, ctl *scene.OrbitControls, box math3d.Box3, fill float64) Framing {
	f := FrameBox(box, cam, fill)
	f.apply(cam, ctl)
	return f
}

// FocusToComponent frames the world bounds of obj immediately.
func FocusToComponent(cam *render.Camera, ctl *scene.OrbitControls, obj *scene.Object, fill float64) Framing {
	return FocusToScene(cam, ctl, obj.WorldBounds(), fill)
}

// SceneBounds is the union of m's geometry boxes, or [-10,10]³ when there
// are none.
func SceneBounds(m *bim.Model) math3d.Box3 {
	b := math3d.EmptyBox3()
	if m != nil {
		for _, g := range m.Geometries {
			b = b.Union(math3d.B3(math3d.V3FromArray(g.BoundingBox.Min), math3d.V3FromArray(g.BoundingBox.Max)))
		}
	}
	if b.IsEmpty() {
		return math3d.B3(math3d.V3(-10, -10, -10), math3d.V3(10, 10, 10))
	}
	return b
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

// tween interpolates from the camera's placement at the first frame to to.
// The final frame snaps exactly onto to.
func tween(to Framing, duration time.Duration) scene.Animation {
	var start time.Time
	var from Framing
	return func(now time.Time, cam *render.Camera, ctl *scene.OrbitControls) bool {
		if start.IsZero() {
			start = now
			from = Framing{Position: cam.Position, Target: ctl.Target}
			ctl.Stop()
		}
		t := 1.0
		if duration > 0 {
			t = min(1, float64(now.Sub(start))/float64(duration))
		}
		if t >= 1 {
			to.apply(cam, ctl)
			return true
		}
		e := easeInOutCubic(t)
		cam.Position = from.Position.Lerp(to.Position, e)
		ctl.Target = from.Target.Lerp(to.Target, e)
		cam.Target = ctl.Target
		return false
	}
}

// Framer drives camera framing on an engine.
type Framer struct {
	engine   *scene.Engine
	reg      *Registry
	Fill     float64
	Duration time.Duration
}

func NewFramer(engine *scene.Engine, reg *Registry) *Framer {
	return &Framer{engine: engine, reg: reg, Fill: DefaultFillRatio, Duration: DefaultFocusDuration}
}

// FocusScene frames the whole model at once. Models without geometry are
// left as they are.
func (f *Framer) FocusScene(m *bim.Model) error {
	if m == nil || len(m.Geometries) == 0 {
		log.Debugf("No geometry to frame, keeping camera")
		return nil
	}
	box := SceneBounds(m)
	return f.engine.Do(func(_ *scene.Scene, cam *render.Camera, ctl *scene.OrbitControls) {
		fr := FocusToScene(cam, ctl, box, f.Fill)
		log.LogVf("Framed scene center %v from %v", fr.Target, fr.Position)
	})
}

// FocusComponent starts an animated transition onto componentID,
// replacing any transition in flight. It reports whether the component was
// found.
func (f *Framer) FocusComponent(componentID string) (bool, error) {
	e, ok := f.reg.Get(componentID)
	if !ok {
		return false, nil
	}
	var target Framing
	err := f.engine.Do(func(_ *scene.Scene, cam *render.Camera, _ *scene.OrbitControls) {
		target = FrameBox(e.Object.WorldBounds(), cam, f.Fill)
	})
	if err != nil {
		return false, err
	}
	return true, f.engine.Animate(cameraChannel, tween(target, f.Duration))
}

// Animating reports whether a camera transition is in flight.
func (f *Framer) Animating() bool {
	return f.engine.Animating(cameraChannel)
}
