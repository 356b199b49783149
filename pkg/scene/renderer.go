package scene

import (
	"image"
	"math"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
)

// Renderer draws a scene from a camera into an image.
type Renderer interface {
	SetSize(width, height int)
	Render(s *Scene, cam *render.Camera)
	Image() *image.RGBA
	Dispose()
}

// RasterRenderer is the software Renderer backed by render.Rasterizer.
type RasterRenderer struct {
	fb   *render.Framebuffer
	rast *render.Rasterizer
}

// NewRasterRenderer creates a renderer with a width×height framebuffer.
func NewRasterRenderer(width, height int) *RasterRenderer {
	fb := render.NewFramebuffer(width, height)
	return &RasterRenderer{fb: fb, rast: render.NewRasterizer(nil, fb)}
}

func (r *RasterRenderer) SetSize(width, height int) {
	if r.fb == nil || (r.fb.Width == width && r.fb.Height == height) {
		return
	}
	r.fb.Resize(width, height)
	r.rast.Resize()
}

func (r *RasterRenderer) Image() *image.RGBA {
	if r.fb == nil {
		return nil
	}
	return r.fb.ToImage()
}

func (r *RasterRenderer) Dispose() {
	r.fb = nil
	r.rast = nil
}

func (r *RasterRenderer) Render(s *Scene, cam *render.Camera) {
	if r.fb == nil || s == nil || cam == nil {
		return
	}
	r.fb.BG = s.Background
	r.fb.Clear()
	r.rast.ClearDepth()
	r.rast.SetCamera(cam)

	lights := collectLights(s)
	for _, o := range s.children {
		switch o.Kind {
		case KindGrid:
			drawGrid(r.rast, o)
		case KindAxes:
			drawAxes(r.rast, o)
		}
	}
	for _, o := range s.children {
		if o.Kind != KindMesh || o.Mesh == nil || o.Material == nil || o.Mesh.Disposed() {
			continue
		}
		mat := o.Material
		r.rast.DrawMesh(o.Mesh, o.Matrix(), func(n math3d.Vec3) render.Color {
			return lights.shade(n, mat)
		})
	}
}

type lightRig struct {
	ambient float64
	dirs    []math3d.Vec3 // scaled by intensity
}

func collectLights(s *Scene) lightRig {
	var l lightRig
	for _, o := range s.children {
		switch o.Kind {
		case KindAmbientLight:
			l.ambient += o.Intensity
		case KindDirectionalLight:
			l.dirs = append(l.dirs, o.Position.Normalize().Scale(o.Intensity))
		}
	}
	return l
}

// shade is a Lambert approximation: ambient and diffuse terms modulate the
// base color, then the emissive term is added on top.
func (l lightRig) shade(n math3d.Vec3, m *Material) render.Color {
	lum := 0.35 * l.ambient
	for _, d := range l.dirs {
		lum += 0.5 * math.Max(0, n.Dot(d))
	}
	lum *= 1 - 0.3*m.Metalness
	base := render.MultiplyColor(m.Color, lum)
	return render.AddColor(base, render.MultiplyColor(m.Emissive, m.EmissiveIntensity))
}

var (
	gridColor       = render.Hex(0x444444)
	gridCenterColor = render.Hex(0x888888)
)

func drawGrid(r *render.Rasterizer, o *Object) {
	if o.Divisions <= 0 || o.Size <= 0 {
		return
	}
	half := o.Size / 2
	step := o.Size / float64(o.Divisions)
	for i := 0; i <= o.Divisions; i++ {
		k := -half + float64(i)*step
		c := gridColor
		if math.Abs(k) < step/2 {
			c = gridCenterColor
		}
		r.DrawLine3D(math3d.V3(k, 0, -half), math3d.V3(k, 0, half), c)
		r.DrawLine3D(math3d.V3(-half, 0, k), math3d.V3(half, 0, k), c)
	}
}

func drawAxes(r *render.Rasterizer, o *Object) {
	origin := math3d.Zero3()
	r.DrawLine3D(origin, math3d.V3(o.Size, 0, 0), render.ColorRed)
	r.DrawLine3D(origin, math3d.V3(0, o.Size, 0), render.ColorGreen)
	r.DrawLine3D(origin, math3d.V3(0, 0, o.Size), render.ColorBlue)
}
