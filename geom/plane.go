// SPDX-License-Identifier: GPL-2.0-or-later

// Package geom holds the pure geometry used by the portal walks: planes,
// convex polygons, clipping and the sphere cull.
//
// A point is outside a plane when its signed distance is positive. Clipping
// keeps the inside part.
package geom

import (
	"gaunt/math/vec"
)

// Epsilon is the on-plane tolerance in world units.
const Epsilon = 1.0 / 256

type Plane struct {
	Normal   vec.Vec3
	Dist     float32
	SignBits byte // caching of box side tests
}

// NewPlane returns the plane with normal n through point p.
func NewPlane(n, p vec.Vec3) Plane {
	pl := Plane{Normal: n, Dist: vec.Dot(n, p)}
	pl.UpdateSignBits()
	return pl
}

// Distance is the signed distance of pt to the plane.
func (p *Plane) Distance(pt vec.Vec3) float32 {
	return vec.Dot(pt, p.Normal) - p.Dist
}

// Flip returns the plane facing the other way.
func (p Plane) Flip() Plane {
	f := Plane{Normal: vec.Scale(-1, p.Normal), Dist: -p.Dist}
	f.UpdateSignBits()
	return f
}

func (p *Plane) UpdateSignBits() {
	p.SignBits = 0
	if p.Normal[0] < 0 {
		p.SignBits |= 1 << 0
	}
	if p.Normal[1] < 0 {
		p.SignBits |= 1 << 1
	}
	if p.Normal[2] < 0 {
		p.SignBits |= 1 << 2
	}
}

const (
	BoxOutside = 1 << iota // some of the box is on the positive side
	BoxInside              // some of the box is on the negative side
	BoxCrossing = BoxOutside | BoxInside
)

// BoxOnPlaneSide reports which sides of the plane the box touches.
func (p *Plane) BoxOnPlaneSide(mins, maxs vec.Vec3) int {
	// pick the corners nearest and farthest along the normal
	var near, far vec.Vec3
	for i := 0; i < 3; i++ {
		if p.SignBits&(1<<i) != 0 {
			far[i], near[i] = mins[i], maxs[i]
		} else {
			far[i], near[i] = maxs[i], mins[i]
		}
	}
	sides := 0
	if vec.Dot(p.Normal, far) > p.Dist {
		sides = BoxOutside
	}
	if vec.Dot(p.Normal, near) <= p.Dist {
		sides |= BoxInside
	}
	return sides
}

// EdgePlane builds the plane containing the edge a-b and the direction dir,
// facing away from inside. ok is false for a zero length edge or an edge
// parallel to dir.
func EdgePlane(a, b, dir, inside vec.Vec3) (Plane, bool) {
	e := vec.Sub(b, a)
	n := vec.Cross(e, dir)
	l := n.Length()
	if l <= 1e-6*e.Length()*dir.Length() {
		return Plane{}, false
	}
	p := NewPlane(vec.Scale(1/l, n), a)
	if p.Distance(inside) > 0 {
		p = p.Flip()
	}
	return p, true
}

// PerspectiveEdgePlane is EdgePlane with the direction taken from the eye.
func PerspectiveEdgePlane(a, b, eye, inside vec.Vec3) (Plane, bool) {
	return EdgePlane(a, b, vec.Sub(a, eye), inside)
}
