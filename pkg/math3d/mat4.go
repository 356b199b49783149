package math3d

import "math"

// Mat4 is a 4x4 matrix stored row-major: M[row*4+col].
// Points are column vectors, so transforms compose right to left.
type Mat4 struct {
	M [16]float64
}

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{M: [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// At returns the element at row r, column c.
func (m Mat4) At(r, c int) float64 {
	return m.M[r*4+c]
}

// Mul returns the matrix product m * b.
func (m Mat4) Mul(b Mat4) Mat4 {
	var out Mat4
	for r := range 4 {
		for c := range 4 {
			out.M[r*4+c] = m.M[r*4]*b.M[c] +
				m.M[r*4+1]*b.M[4+c] +
				m.M[r*4+2]*b.M[8+c] +
				m.M[r*4+3]*b.M[12+c]
		}
	}
	return out
}

// MulVec4 transforms a homogeneous vector.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m.M[0]*v.X + m.M[1]*v.Y + m.M[2]*v.Z + m.M[3]*v.W,
		m.M[4]*v.X + m.M[5]*v.Y + m.M[6]*v.Z + m.M[7]*v.W,
		m.M[8]*v.X + m.M[9]*v.Y + m.M[10]*v.Z + m.M[11]*v.W,
		m.M[12]*v.X + m.M[13]*v.Y + m.M[14]*v.Z + m.M[15]*v.W,
	}
}

// MulVec3 transforms a point (w = 1) and applies the perspective divide.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 1)).PerspectiveDivide()
}

// MulVec3Dir transforms a direction (w = 0); translation is ignored.
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return Vec3{
		m.M[0]*v.X + m.M[1]*v.Y + m.M[2]*v.Z,
		m.M[4]*v.X + m.M[5]*v.Y + m.M[6]*v.Z,
		m.M[8]*v.X + m.M[9]*v.Y + m.M[10]*v.Z,
	}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	var out Mat4
	for r := range 4 {
		for c := range 4 {
			out.M[c*4+r] = m.M[r*4+c]
		}
	}
	return out
}

// Translation returns the translation part of an affine matrix.
func (m Mat4) Translation() Vec3 {
	return Vec3{m.M[3], m.M[7], m.M[11]}
}

// Translate returns a translation matrix.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m.M[3], m.M[7], m.M[11] = v.X, v.Y, v.Z
	return m
}

// Scale returns a scaling matrix.
func Scale(v Vec3) Mat4 {
	m := Identity()
	m.M[0], m.M[5], m.M[10] = v.X, v.Y, v.Z
	return m
}

// RotateX returns a rotation around the X axis (radians).
func RotateX(a float64) Mat4 {
	c, s := math.Cos(a), math.Sin(a)
	m := Identity()
	m.M[5], m.M[6] = c, -s
	m.M[9], m.M[10] = s, c
	return m
}

// RotateY returns a rotation around the Y axis (radians).
func RotateY(a float64) Mat4 {
	c, s := math.Cos(a), math.Sin(a)
	m := Identity()
	m.M[0], m.M[2] = c, s
	m.M[8], m.M[10] = -s, c
	return m
}

// RotateZ returns a rotation around the Z axis (radians).
func RotateZ(a float64) Mat4 {
	c, s := math.Cos(a), math.Sin(a)
	m := Identity()
	m.M[0], m.M[1] = c, -s
	m.M[4], m.M[5] = s, c
	return m
}

// Perspective returns an OpenGL-style projection matrix. fovY is the
// vertical field of view in radians; NDC depth runs from -1 (near) to 1 (far).
func Perspective(fovY, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovY/2)
	var m Mat4
	m.M[0] = f / aspect
	m.M[5] = f
	m.M[10] = (far + near) / (near - far)
	m.M[11] = 2 * far * near / (near - far)
	m.M[14] = -1
	return m
}

// LookAt returns a view matrix for a camera at eye looking at target.
func LookAt(eye, target, up Vec3) Mat4 {
	f := target.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	if s.LenSq() == 0 {
		// up is parallel to the view direction
		s = f.Cross(V3(0, 0, 1)).Normalize()
	}
	u := s.Cross(f)
	return Mat4{M: [16]float64{
		s.X, s.Y, s.Z, -s.Dot(eye),
		u.X, u.Y, u.Z, -u.Dot(eye),
		-f.X, -f.Y, -f.Z, f.Dot(eye),
		0, 0, 0, 1,
	}}
}

// Compose builds a translation * rotation * scale matrix.
func Compose(position Vec3, rotation Quat, scale Vec3) Mat4 {
	return Translate(position).Mul(rotation.Mat4()).Mul(Scale(scale))
}

// Inverse returns the inverse matrix, or the identity if m is singular.
func (m Mat4) Inverse() Mat4 {
	a := m.M
	var inv [16]float64

	inv[0] = a[5]*a[10]*a[15] - a[5]*a[11]*a[14] - a[9]*a[6]*a[15] + a[9]*a[7]*a[14] + a[13]*a[6]*a[11] - a[13]*a[7]*a[10]
	inv[4] = -a[4]*a[10]*a[15] + a[4]*a[11]*a[14] + a[8]*a[6]*a[15] - a[8]*a[7]*a[14] - a[12]*a[6]*a[11] + a[12]*a[7]*a[10]
	inv[8] = a[4]*a[9]*a[15] - a[4]*a[11]*a[13] - a[8]*a[5]*a[15] + a[8]*a[7]*a[13] + a[12]*a[5]*a[11] - a[12]*a[7]*a[9]
	inv[12] = -a[4]*a[9]*a[14] + a[4]*a[10]*a[13] + a[8]*a[5]*a[14] - a[8]*a[6]*a[13] - a[12]*a[5]*a[10] + a[12]*a[6]*a[9]
	inv[1] = -a[1]*a[10]*a[15] + a[1]*a[11]*a[14] + a[9]*a[2]*a[15] - a[9]*a[3]*a[14] - a[13]*a[2]*a[11] + a[13]*a[3]*a[10]
	inv[5] = a[0]*a[10]*a[15] - a[0]*a[11]*a[14] - a[8]*a[2]*a[15] + a[8]*a[3]*a[14] + a[12]*a[2]*a[11] - a[12]*a[3]*a[10]
	inv[9] = -a[0]*a[9]*a[15] + a[0]*a[11]*a[13] + a[8]*a[1]*a[15] - a[8]*a[3]*a[13] - a[12]*a[1]*a[11] + a[12]*a[3]*a[9]
	inv[13] = a[0]*a[9]*a[14] - a[0]*a[10]*a[13] - a[8]*a[1]*a[14] + a[8]*a[2]*a[13] + a[12]*a[1]*a[10] - a[12]*a[2]*a[9]
	inv[2] = a[1]*a[6]*a[15] - a[1]*a[7]*a[14] - a[5]*a[2]*a[15] + a[5]*a[3]*a[14] + a[13]*a[2]*a[7] - a[13]*a[3]*a[6]
	inv[6] = -a[0]*a[6]*a[15] + a[0]*a[7]*a[14] + a[4]*a[2]*a[15] - a[4]*a[3]*a[14] - a[12]*a[2]*a[7] + a[12]*a[3]*a[6]
	inv[10] = a[0]*a[5]*a[15] - a[0]*a[7]*a[13] - a[4]*a[1]*a[15] + a[4]*a[3]*a[13] + a[12]*a[1]*a[7] - a[12]*a[3]*a[5]
	inv[14] = -a[0]*a[5]*a[14] + a[0]*a[6]*a[13] + a[4]*a[1]*a[14] - a[4]*a[2]*a[13] - a[12]*a[1]*a[6] + a[12]*a[2]*a[5]
	inv[3] = -a[1]*a[6]*a[11] + a[1]*a[7]*a[10] + a[5]*a[2]*a[11] - a[5]*a[3]*a[10] - a[9]*a[2]*a[7] + a[9]*a[3]*a[6]
	inv[7] = a[0]*a[6]*a[11] - a[0]*a[7]*a[10] - a[4]*a[2]*a[11] + a[4]*a[3]*a[10] + a[8]*a[2]*a[7] - a[8]*a[3]*a[6]
	inv[11] = -a[0]*a[5]*a[11] + a[0]*a[7]*a[9] + a[4]*a[1]*a[11] - a[4]*a[3]*a[9] - a[8]*a[1]*a[7] + a[8]*a[3]*a[5]
	inv[15] = a[0]*a[5]*a[10] - a[0]*a[6]*a[9] - a[4]*a[1]*a[10] + a[4]*a[2]*a[9] + a[8]*a[1]*a[6] - a[8]*a[2]*a[5]

	det := a[0]*inv[0] + a[1]*inv[4] + a[2]*inv[8] + a[3]*inv[12]
	if det == 0 {
		return Identity()
	}
	det = 1 / det
	for i := range inv {
		inv[i] *= det
	}
	return Mat4{M: inv}
}
