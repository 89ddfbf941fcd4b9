package physics

// Geometry helpers shared by the solver, the gait controller and the renderers.
// Vectors and quaternions are mgl64 values; this package only adds the handful of
// conventions the rest of the code relies on (forward is -Z, up is +Y, degenerate
// directions collapse to zero instead of NaN).

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type (
	Vec3 = mgl64.Vec3
	Quat = mgl64.Quat
)

// Epsilon below which a vector is treated as having no direction.
const Epsilon = 1e-9

var (
	Zero    = Vec3{0, 0, 0}
	Up      = Vec3{0, 1, 0}
	Right   = Vec3{1, 0, 0}
	Back    = Vec3{0, 0, 1}
	Forward = Vec3{0, 0, -1}
)

// NormalizeOrZero returns v scaled to unit length, or the zero vector when v has
// no usable direction.
func NormalizeOrZero(v Vec3) Vec3 {
	l := v.Len()
	if l <= Epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return Zero
	}
	return v.Mul(1 / l)
}

// Distance computes the Euclidean distance between two points.
func Distance(a, b Vec3) float64 {
	return b.Sub(a).Len()
}

// Midpoint of the segment a-b.
func Midpoint(a, b Vec3) Vec3 {
	return a.Add(b).Mul(0.5)
}

// LookingTowards returns the rotation that maps Forward onto dir while keeping the
// local +Y axis as close to up as possible. A zero dir keeps Forward and an up
// parallel to dir picks an arbitrary perpendicular right axis.
func LookingTowards(dir, up Vec3) Quat {
	back := NormalizeOrZero(dir.Mul(-1))
	if back == Zero {
		back = Back
	}
	upHint := NormalizeOrZero(up)
	if upHint == Zero {
		upHint = Up
	}

	right := NormalizeOrZero(upHint.Cross(back))
	if right == Zero {
		right = anyOrthonormal(back)
	}
	localUp := back.Cross(right)

	rot := mgl64.Mat3FromCols(right, localUp, back)
	return mgl64.Mat4ToQuat(rot.Mat4()).Normalize()
}

// LookingAt returns the orientation of an observer at from facing to.
func LookingAt(from, to, up Vec3) Quat {
	return LookingTowards(to.Sub(from), up)
}

// FromAxisAngle wraps mgl64.QuatRotate with a normalised axis.
func FromAxisAngle(axis Vec3, radians float64) Quat {
	return mgl64.QuatRotate(radians, NormalizeOrZero(axis))
}

// FromEulerXYZ composes Rx(x)·Ry(y)·Rz(z).
func FromEulerXYZ(x, y, z float64) Quat {
	return mgl64.AnglesToQuat(x, y, z, mgl64.XYZ)
}

// ToEulerXYZ decomposes q into the angles accepted by FromEulerXYZ.
func ToEulerXYZ(q Quat) (x, y, z float64) {
	q = q.Normalize()
	w, qx, qy, qz := q.W, q.V[0], q.V[1], q.V[2]

	m00 := 1 - 2*(qy*qy+qz*qz)
	m01 := 2 * (qx*qy - w*qz)
	m02 := 2 * (qx*qz + w*qy)
	m11 := 1 - 2*(qx*qx+qz*qz)
	m12 := 2 * (qy*qz - w*qx)
	m21 := 2 * (qy*qz + w*qx)
	m22 := 1 - 2*(qx*qx+qy*qy)

	y = math.Asin(mgl64.Clamp(m02, -1, 1))
	if math.Abs(m02) < 1-1e-7 {
		x = math.Atan2(-m12, m22)
		z = math.Atan2(-m01, m00)
		return x, y, z
	}
	// gimbal lock: fold roll into pitch
	x = math.Atan2(m21, m11)
	return x, y, 0
}

// anyOrthonormal returns a unit vector perpendicular to the unit vector v.
func anyOrthonormal(v Vec3) Vec3 {
	sign := math.Copysign(1, v[2])
	a := -1 / (sign + v[2])
	b := v[0] * v[1] * a
	return Vec3{1 + sign*v[0]*v[0]*a, sign * b, -sign * v[0]}
}
