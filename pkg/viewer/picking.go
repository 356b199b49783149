package viewer

import (
	"math"
	"strings"

	"fortio.org/log"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/scene"
)

// Viewport is the screen rectangle the scene is drawn into.
type Viewport struct {
	X, Y          float64
	Width, Height int
}

// Picker maps screen positions to component ids.
type Picker struct {
	engine *scene.Engine
	reg    *Registry
}

func NewPicker(engine *scene.Engine, reg *Registry) *Picker {
	return &Picker{engine: engine, reg: reg}
}

// Pick casts a ray through screen point (x, y) and returns the component id
// of the nearest tagged object of the active model.
func (p *Picker) Pick(x, y float64, vp Viewport) (string, bool) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return "", false
	}
	ndc := math3d.ScreenToNDC(x-vp.X, y-vp.Y, vp.Width, vp.Height)
	modelID := p.reg.ModelID()

	var hit *scene.Object
	err := p.engine.Do(func(s *scene.Scene, cam *render.Camera, _ *scene.OrbitControls) {
		ray := cam.Ray(ndc)
		best := math.Inf(1)
		for _, o := range s.Tagged() {
			if o.Tag.ModelID != modelID {
				continue
			}
			if d, ok := o.Raycast(ray); ok && d < best {
				best, hit = d, o
			}
		}
	})
	if err != nil || hit == nil {
		return "", false
	}
	id := hit.Tag.ComponentID
	if strings.TrimSpace(id) == "" {
		log.Warnf("Picked object %q has an empty component id, ignoring", hit.Name)
		return "", false
	}
	return id, true
}
