package models

import (
	"fmt"
	"math"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
)

// NewCylinder builds a capped cylinder centered on the origin with its axis
// along +Y. Faces wind counter-clockwise seen from outside.
func NewCylinder(name string, radius, height float64, segments int) (*Mesh, error) {
	if segments < 3 {
		return nil, fmt.Errorf("cylinder %q: need at least 3 segments, got %d", name, segments)
	}
	if radius <= 0 || height <= 0 {
		return nil, fmt.Errorf("cylinder %q: radius %v and height %v must be positive", name, radius, height)
	}
	m := NewMesh(name)
	half := height / 2

	ring := func(theta float64) (float64, float64) {
		return radius * math.Sin(theta), radius * math.Cos(theta)
	}

	// Side: segments+1 columns so the UV seam gets its own vertices.
	side := make([][2]int, segments+1)
	for i := 0; i <= segments; i++ {
		u := float64(i) / float64(segments)
		theta := u * 2 * math.Pi
		x, z := ring(theta)
		n := math3d.V3(math.Sin(theta), 0, math.Cos(theta))
		top := m.AddVertex(math3d.V3(x, half, z), n, math3d.V2(u, 1))
		bottom := m.AddVertex(math3d.V3(x, -half, z), n, math3d.V2(u, 0))
		side[i] = [2]int{top, bottom}
	}
	for i := range segments {
		t0, b0 := side[i][0], side[i][1]
		t1, b1 := side[i+1][0], side[i+1][1]
		m.AddFace(b0, b1, t1)
		m.AddFace(b0, t1, t0)
	}

	// Caps
	for _, y := range []float64{half, -half} {
		n := math3d.V3(0, math.Copysign(1, y), 0)
		center := m.AddVertex(math3d.V3(0, y, 0), n, math3d.V2(0.5, 0.5))
		first := len(m.Vertices)
		for i := 0; i <= segments; i++ {
			theta := float64(i) / float64(segments) * 2 * math.Pi
			x, z := ring(theta)
			m.AddVertex(math3d.V3(x, y, z), n, math3d.V2(0.5+x/(2*radius), 0.5+z/(2*radius)))
		}
		for i := range segments {
			a, b := first+i, first+i+1
			if y > 0 {
				m.AddFace(center, a, b)
			} else {
				m.AddFace(center, b, a)
			}
		}
	}

	m.CalculateBounds()
	return m, nil
}

// boxFace describes one side of a box: outward normal n and in-plane axes
// u, v with u × v = n.
type boxFace struct {
	n, u, v math3d.Vec3
}

var boxFaces = [6]boxFace{
	{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
	{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
	{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
	{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
	{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
	{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
}

// NewBox builds an axis-aligned box of the given size centered on the origin.
func NewBox(name string, size math3d.Vec3) (*Mesh, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("box %q: size %v must be positive", name, size)
	}
	m := NewMesh(name)
	half := size.Scale(0.5)
	corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range boxFaces {
		first := len(m.Vertices)
		for _, c := range corners {
			p := f.n.Add(f.u.Scale(c[0])).Add(f.v.Scale(c[1])).Mul(half)
			m.AddVertex(p, f.n, math3d.V2((c[0]+1)/2, (c[1]+1)/2))
		}
		m.AddFace(first, first+1, first+2)
		m.AddFace(first, first+2, first+3)
	}
	m.CalculateBounds()
	return m, nil
}
