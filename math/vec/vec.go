// SPDX-License-Identifier: GPL-2.0-or-later

package vec

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type Vec3 [3]float32

// Length returns the length of the vector
func (v Vec3) Length() float32 {
	return math32.Sqrt(Dot(v, v))
}

// LengthSquared avoids the sqrt where only comparisons are needed
func (v Vec3) LengthSquared() float32 {
	return Dot(v, v)
}

// Add returns a + b
func Add(a, b Vec3) Vec3 {
	return Vec3{
		a[0] + b[0],
		a[1] + b[1],
		a[2] + b[2],
	}
}

// Sub returns a - b
func Sub(a, b Vec3) Vec3 {
	return Vec3{
		a[0] - b[0],
		a[1] - b[1],
		a[2] - b[2],
	}
}

// Scale returns the vector multiplied by the skalar s
func Scale(s float32, v Vec3) Vec3 {
	return Vec3{
		v[0] * s,
		v[1] * s,
		v[2] * s,
	}
}

// MA returns a + s*b
func MA(a Vec3, s float32, b Vec3) Vec3 {
	return Vec3{
		a[0] + s*b[0],
		a[1] + s*b[1],
		a[2] + s*b[2],
	}
}

// Normalize returns the normalized vector
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Scale(1/l, v)
}

// Dot returns a dot b
func Dot(a, b Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// DoublePrecDot return a dot b calculated in double precision
func DoublePrecDot(a, b Vec3) float32 {
	p := func(x, y float32) float64 {
		return float64(x) * float64(y)
	}
	return float32(p(a[0], b[0]) + p(a[1], b[1]) + p(a[2], b[2]))
}

// Cross returns a cross b
func Cross(a, b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Distance returns |a - b|
func Distance(a, b Vec3) float32 {
	return Sub(a, b).Length()
}

// Lerp computes a weighted average between two points
func Lerp(a, b Vec3, frac float32) Vec3 {
	fi := 1 - frac
	return Vec3{
		fi*a[0] + frac*b[0],
		fi*a[1] + frac*b[1],
		fi*a[2] + frac*b[2],
	}
}

// Equal returns a == b
func Equal(a, b Vec3) bool {
	return a == b
}

// NearlyEqual compares component wise with tolerance eps
func NearlyEqual(a, b Vec3, eps float32) bool {
	return math32.Abs(a[0]-b[0]) <= eps &&
		math32.Abs(a[1]-b[1]) <= eps &&
		math32.Abs(a[2]-b[2]) <= eps
}

func minmax(a, b float32) (float32, float32) {
	if a < b {
		return a, b
	}
	return b, a
}

func MinMax(a, b Vec3) (Vec3, Vec3) {
	var r, s Vec3
	r[0], s[0] = minmax(a[0], b[0])
	r[1], s[1] = minmax(a[1], b[1])
	r[2], s[2] = minmax(a[2], b[2])
	return r, s
}

func AngleVectors(angles Vec3) (forward, right, up Vec3) {
	deg := math32.Pi * 2 / 360
	sp, cp := math32.Sincos(angles[0] * deg) // PITCH
	sy, cy := math32.Sincos(angles[1] * deg) // YAW
	sr, cr := math32.Sincos(angles[2] * deg) // ROLL

	forward = Vec3{cp * cy, cp * sy, -sp}
	right = Vec3{
		(-1*sr*sp*cy + -1*cr*-sy),
		(-1*sr*sp*sy + -1*cr*cy),
		-1 * sr * cp,
	}
	up = Vec3{
		(cr*sp*cy + -sr*-sy),
		(cr*sp*sy + -sr*cy),
		cr * cp,
	}
	return
}

// AnglesToQuat builds the orientation for pitch, yaw, roll in degrees.
// Yaw turns around +Z, pitch around +Y (positive looks down), roll around +X.
func AnglesToQuat(angles Vec3) mgl32.Quat {
	yaw := mgl32.QuatRotate(mgl32.DegToRad(angles[1]), mgl32.Vec3{0, 0, 1})
	pitch := mgl32.QuatRotate(mgl32.DegToRad(angles[0]), mgl32.Vec3{0, 1, 0})
	roll := mgl32.QuatRotate(mgl32.DegToRad(angles[2]), mgl32.Vec3{1, 0, 0})
	return yaw.Mul(pitch).Mul(roll).Normalize()
}

// Rotate applies the orientation q to v.
func Rotate(q mgl32.Quat, v Vec3) Vec3 {
	return Vec3(q.Rotate(mgl32.Vec3(v)))
}

// Basis returns the local axes of orientation q: x forward, y left, z up.
func Basis(q mgl32.Quat) (forward, left, up Vec3) {
	forward = Rotate(q, Vec3{1, 0, 0})
	left = Rotate(q, Vec3{0, 1, 0})
	up = Rotate(q, Vec3{0, 0, 1})
	return
}
