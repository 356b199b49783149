package math3d

import "math"

// Quat is a rotation quaternion (X, Y, Z vector part, W scalar part).
type Quat struct {
	X, Y, Z, W float64
}

// IdentityQuat returns the rotation that does nothing.
func IdentityQuat() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle returns the rotation of angle radians around axis.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	a := axis.Normalize()
	s := math.Sin(angle / 2)
	return Quat{a.X * s, a.Y * s, a.Z * s, math.Cos(angle / 2)}
}

// QuatFromUnitVectors returns the shortest rotation taking unit vector from
// onto unit vector to. Opposite vectors rotate 180° around an axis
// orthogonal to from.
func QuatFromUnitVectors(from, to Vec3) Quat {
	r := from.Dot(to) + 1
	var q Quat
	if r < 1e-9 {
		if math.Abs(from.X) > math.Abs(from.Z) {
			q = Quat{-from.Y, from.X, 0, 0}
		} else {
			q = Quat{0, -from.Z, from.Y, 0}
		}
	} else {
		c := from.Cross(to)
		q = Quat{c.X, c.Y, c.Z, r}
	}
	return q.Normalize()
}

// Len returns the quaternion norm.
func (q Quat) Len() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalize returns the unit quaternion.
func (q Quat) Normalize() Quat {
	l := q.Len()
	if l == 0 {
		return IdentityQuat()
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// Mul returns the Hamilton product q * b (apply b, then q).
func (q Quat) Mul(b Quat) Quat {
	return Quat{
		q.W*b.X + q.X*b.W + q.Y*b.Z - q.Z*b.Y,
		q.W*b.Y - q.X*b.Z + q.Y*b.W + q.Z*b.X,
		q.W*b.Z + q.X*b.Y - q.Y*b.X + q.Z*b.W,
		q.W*b.W - q.X*b.X - q.Y*b.Y - q.Z*b.Z,
	}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Mat4 returns the rotation matrix for q.
func (q Quat) Mat4() Mat4 {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	x2, y2, z2 := x+x, y+y, z+z
	xx, xy, xz := x*x2, x*y2, x*z2
	yy, yz, zz := y*y2, y*z2, z*z2
	wx, wy, wz := w*x2, w*y2, w*z2
	return Mat4{M: [16]float64{
		1 - (yy + zz), xy - wz, xz + wy, 0,
		xy + wz, 1 - (xx + zz), yz - wx, 0,
		xz - wy, yz + wx, 1 - (xx + yy), 0,
		0, 0, 0, 1,
	}}
}
