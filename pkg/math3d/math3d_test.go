package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestMat4InverseRoundTrip(t *testing.T) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5)).Mul(Scale(V3(2, 3, 4)))
	got := m.Mul(m.Inverse())
	id := Identity()
	for i := range got.M {
		if math.Abs(got.M[i]-id.M[i]) > eps {
			t.Fatalf("m * inverse(m) = %v, want identity", got.M)
		}
	}
}

func TestMat4InverseSingular(t *testing.T) {
	var zero Mat4
	if zero.Inverse() != Identity() {
		t.Errorf("singular inverse should fall back to identity")
	}
}

func TestLookAtMovesTargetOntoNegativeZ(t *testing.T) {
	view := LookAt(V3(0, 10, 20), V3(0, 0, 0), Up())
	p := view.MulVec3(V3(0, 0, 0))
	if math.Abs(p.X) > eps || math.Abs(p.Y) > eps {
		t.Errorf("target should be on the view axis, got %v", p)
	}
	if want := -math.Sqrt(500); math.Abs(p.Z-want) > 1e-6 {
		t.Errorf("target depth = %v, want %v", p.Z, want)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj := Perspective(math.Pi/2, 1, 1, 100)
	near := proj.MulVec3(V3(0, 0, -1))
	far := proj.MulVec3(V3(0, 0, -100))
	if math.Abs(near.Z+1) > 1e-9 || math.Abs(far.Z-1) > 1e-9 {
		t.Errorf("near/far depth = %v/%v, want -1/1", near.Z, far.Z)
	}
}

func TestQuatFromUnitVectors(t *testing.T) {
	tests := []struct {
		name string
		to   Vec3
	}{
		{"same", V3(0, 1, 0)},
		{"x axis", V3(1, 0, 0)},
		{"diagonal", V3(1, -1, 1).Normalize()},
		{"opposite", V3(0, -1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuatFromUnitVectors(Up(), tt.to)
			got := q.Rotate(Up())
			if !got.ApproxEqual(tt.to, 1e-9) {
				t.Errorf("rotate(up) = %v, want %v", got, tt.to)
			}
			m := q.Mat4().MulVec3Dir(Up())
			if !m.ApproxEqual(tt.to, 1e-9) {
				t.Errorf("matrix rotate(up) = %v, want %v", m, tt.to)
			}
		})
	}
}

func TestBox3Union(t *testing.T) {
	a := B3(V3(0, 0, 0), V3(1, 1, 1))
	b := B3(V3(-1, 2, 0), V3(0, 3, 5))
	u := a.Union(b)
	if u.Min != V3(-1, 0, 0) || u.Max != V3(1, 3, 5) {
		t.Errorf("union = %v", u)
	}
	if got := EmptyBox3().Union(a); got != a {
		t.Errorf("empty union = %v, want %v", got, a)
	}
	if c := u.Center(); c != V3(0, 1.5, 2.5) {
		t.Errorf("center = %v", c)
	}
	if s := EmptyBox3().Size(); s != Zero3() {
		t.Errorf("empty size = %v", s)
	}
}

func TestRayIntersectBox(t *testing.T) {
	box := B3(V3(-1, -1, -1), V3(1, 1, 1))
	tests := []struct {
		name  string
		ray   Ray
		hit   bool
		distT float64
	}{
		{"front", NewRay(V3(0, 0, 5), V3(0, 0, -1)), true, 4},
		{"miss", NewRay(V3(3, 0, 5), V3(0, 0, -1)), false, 0},
		{"behind", NewRay(V3(0, 0, 5), V3(0, 0, 1)), false, 0},
		{"inside", NewRay(V3(0, 0, 0), V3(1, 0, 0)), true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := tt.ray.IntersectBox(box)
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v", ok, tt.hit)
			}
			if ok && math.Abs(d-tt.distT) > eps {
				t.Errorf("distance = %v, want %v", d, tt.distT)
			}
		})
	}
}

func TestRayIntersectTriangle(t *testing.T) {
	a, b, c := V3(0, 0, 0), V3(1, 0, 0), V3(0, 1, 0)
	r := NewRay(V3(0.25, 0.25, 2), V3(0, 0, -1))
	d, ok := r.IntersectTriangle(a, b, c)
	if !ok || math.Abs(d-2) > eps {
		t.Errorf("hit = %v at %v, want true at 2", ok, d)
	}
	// back face
	r = NewRay(V3(0.25, 0.25, -2), V3(0, 0, 1))
	if _, ok := r.IntersectTriangle(a, b, c); !ok {
		t.Errorf("back face should be hit")
	}
	r = NewRay(V3(0.8, 0.8, 2), V3(0, 0, -1))
	if _, ok := r.IntersectTriangle(a, b, c); ok {
		t.Errorf("point outside triangle should miss")
	}
}

func TestScreenToNDC(t *testing.T) {
	tests := []struct {
		x, y float64
		want Vec2
	}{
		{0, 0, V2(-1, 1)},
		{100, 50, V2(1, -1)},
		{50, 25, V2(0, 0)},
	}
	for _, tt := range tests {
		if got := ScreenToNDC(tt.x, tt.y, 100, 50); got != tt.want {
			t.Errorf("ScreenToNDC(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}
