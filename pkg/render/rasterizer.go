package render

import (
	"math"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
)

// MeshRenderer is the interface for meshes that can be rasterized.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer is a MeshRenderer that knows its local bounds.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// ShadeFunc returns the color of a face given its world-space normal.
type ShadeFunc func(normal math3d.Vec3) Color

// Rasterizer handles software triangle rasterization.
type Rasterizer struct {
	camera                 *Camera
	fb                     *Framebuffer
	zbuffer                []float64 // Depth buffer (1D array, row-major)
	DisableBackfaceCulling bool      // If true, render both sides of triangles
}

// NewRasterizer creates a new rasterizer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{camera: camera, fb: fb}
	r.Resize()
	return r
}

// SetCamera swaps the camera used for projection.
func (r *Rasterizer) SetCamera(c *Camera) {
	r.camera = c
}

// Framebuffer returns the target framebuffer.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// Resize resizes the rasterizer's depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth clears the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

func (r *Rasterizer) getDepth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

func (r *Rasterizer) setDepth(x, y int, z float64) {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return
	}
	r.zbuffer[y*r.Width()+x] = z
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y float64 // Screen coordinates
	Z    float64 // NDC depth
	W    float64 // Clip W (<= 0 means behind the camera)
}

func (r *Rasterizer) toScreen(viewProj math3d.Mat4, p math3d.Vec3) screenVertex {
	clip := viewProj.MulVec4(math3d.V4FromV3(p, 1))
	sv := screenVertex{W: clip.W}
	if clip.W != 0 {
		sv.X = clip.X / clip.W
		sv.Y = clip.Y / clip.W
		sv.Z = clip.Z / clip.W
	}
	sv.X = (sv.X + 1) * 0.5 * float64(r.Width())
	sv.Y = (1 - sv.Y) * 0.5 * float64(r.Height()) // Y flipped
	return sv
}

// DrawTriangleFlat rasterizes a single-color triangle with depth testing.
func (r *Rasterizer) DrawTriangleFlat(v0, v1, v2 math3d.Vec3, color Color) {
	if r.fb == nil || r.camera == nil {
		return
	}
	viewProj := r.camera.ViewProjectionMatrix()
	sv := [3]screenVertex{
		r.toScreen(viewProj, v0),
		r.toScreen(viewProj, v1),
		r.toScreen(viewProj, v2),
	}

	// No near-plane clipping: a triangle is drawn only when fully in front.
	if sv[0].W <= 0 || sv[1].W <= 0 || sv[2].W <= 0 {
		return
	}

	// Backface culling (using screen-space winding)
	cross := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if cross == 0 {
		return
	}
	if cross > 0 && !r.DisableBackfaceCulling {
		return // Back-facing (Y is flipped, so front faces have negative area)
	}

	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5

			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				px, py,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			if z < -1 || z > 1 || z >= r.getDepth(x, y) {
				continue
			}
			r.setDepth(x, y, z)
			r.fb.SetPixel(x, y, color)
		}
	}
}

// DrawTriangleLit draws a triangle with simple directional lighting.
func (r *Rasterizer) DrawTriangleLit(v0, v1, v2 math3d.Vec3, baseColor Color, lightDir math3d.Vec3) {
	normal := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()

	intensity := math.Max(0, normal.Dot(lightDir.Normalize()))
	intensity = 0.3 + 0.7*intensity // Ambient + diffuse

	r.DrawTriangleFlat(v0, v1, v2, MultiplyColor(baseColor, intensity))
}

// DrawMesh renders every face of mesh after transform, colored by shade.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, transform math3d.Mat4, shade ShadeFunc) {
	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		p0, _, _ := mesh.GetVertex(face[0])
		p1, _, _ := mesh.GetVertex(face[1])
		p2, _, _ := mesh.GetVertex(face[2])

		v0 := transform.MulVec3(p0)
		v1 := transform.MulVec3(p1)
		v2 := transform.MulVec3(p2)

		normal := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
		r.DrawTriangleFlat(v0, v1, v2, shade(normal))
	}
}

// DrawMeshWireframe renders a mesh as wireframe.
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, transform math3d.Mat4, color Color) {
	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		p0, _, _ := mesh.GetVertex(face[0])
		p1, _, _ := mesh.GetVertex(face[1])
		p2, _, _ := mesh.GetVertex(face[2])

		v0 := transform.MulVec3(p0)
		v1 := transform.MulVec3(p1)
		v2 := transform.MulVec3(p2)

		r.DrawLine3D(v0, v1, color)
		r.DrawLine3D(v1, v2, color)
		r.DrawLine3D(v2, v0, color)
	}
}

// DrawLine3D draws a projected 3D line without depth testing. Lines with an
// endpoint behind the camera are skipped.
func (r *Rasterizer) DrawLine3D(a, b math3d.Vec3, color Color) {
	if r.fb == nil || r.camera == nil {
		return
	}
	viewProj := r.camera.ViewProjectionMatrix()
	sa := r.toScreen(viewProj, a)
	sb := r.toScreen(viewProj, b)
	if sa.W <= 0 || sb.W <= 0 {
		return
	}
	r.fb.DrawLine(int(sa.X), int(sa.Y), int(sb.X), int(sb.Y), color)
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
