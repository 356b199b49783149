package math3d

import "math"

// Vec2 represents a 2D vector. Used for texture coordinates and
// normalized device coordinates.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Add returns the vector sum a + b.
func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

// Sub returns the vector difference a - b.
func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

// Scale returns the scalar product a * s.
func (a Vec2) Scale(s float64) Vec2 {
	return Vec2{a.X * s, a.Y * s}
}

// Len returns the length of the vector.
func (a Vec2) Len() float64 {
	return math.Hypot(a.X, a.Y)
}

// ScreenToNDC maps pixel coordinates inside a viewport of w×h pixels to
// normalized device coordinates in [-1, 1], with +Y up.
func ScreenToNDC(x, y float64, w, h int) Vec2 {
	if w <= 0 || h <= 0 {
		return Vec2{}
	}
	return Vec2{
		X: (x/float64(w))*2 - 1,
		Y: -(y/float64(h))*2 + 1,
	}
}
