// SPDX-License-Identifier: GPL-2.0-or-later

package geom

import (
	"gaunt/math/vec"
)

// Poly is a convex vertex loop with its supporting plane.
type Poly struct {
	Verts []vec.Vec3
	Plane Plane
}

type CutResult int

const (
	Kept     CutResult = iota // nothing was outside
	Clipped                   // part of the polygon was removed
	Rejected                  // nothing usable is left
)

func (r CutResult) String() string {
	switch r {
	case Kept:
		return "kept"
	case Clipped:
		return "clipped"
	default:
		return "rejected"
	}
}

// Cut clips src against p keeping the inside part and appends the result to
// dst[:0]. src and dst must not share storage.
func Cut(dst []vec.Vec3, src []vec.Vec3, p Plane) ([]vec.Vec3, CutResult) {
	dst = dst[:0]
	if len(src) < 3 {
		return dst, Rejected
	}
	front, back := 0, 0
	for _, v := range src {
		d := p.Distance(v)
		if d > Epsilon {
			front++
		} else if d < -Epsilon {
			back++
		}
	}
	if front == 0 {
		return append(dst, src...), Kept
	}
	if back == 0 {
		return dst, Rejected
	}

	prev := src[len(src)-1]
	prevDist := p.Distance(prev)
	for _, cur := range src {
		curDist := p.Distance(cur)
		if (prevDist > Epsilon && curDist < -Epsilon) || (prevDist < -Epsilon && curDist > Epsilon) {
			frac := prevDist / (prevDist - curDist)
			dst = append(dst, vec.Lerp(prev, cur, frac))
		}
		if curDist <= Epsilon {
			dst = append(dst, cur)
		}
		prev, prevDist = cur, curDist
	}
	if len(dst) < 3 {
		return dst[:0], Rejected
	}
	return dst, Clipped
}

// Centroid returns the vertex average.
func Centroid(verts []vec.Vec3) vec.Vec3 {
	var c vec.Vec3
	if len(verts) == 0 {
		return c
	}
	for _, v := range verts {
		c = vec.Add(c, v)
	}
	return vec.Scale(1/float32(len(verts)), c)
}

// PlaneFromVerts computes the supporting plane with Newell's method. The
// normal follows the counter clockwise winding. ok is false for degenerate
// loops.
func PlaneFromVerts(verts []vec.Vec3) (Plane, bool) {
	if len(verts) < 3 {
		return Plane{}, false
	}
	var n vec.Vec3
	prev := verts[len(verts)-1]
	for _, cur := range verts {
		n[0] += (prev[1] - cur[1]) * (prev[2] + cur[2])
		n[1] += (prev[2] - cur[2]) * (prev[0] + cur[0])
		n[2] += (prev[0] - cur[0]) * (prev[1] + cur[1])
		prev = cur
	}
	l := n.Length()
	if l < 1e-6 {
		return Plane{}, false
	}
	return NewPlane(vec.Scale(1/l, n), Centroid(verts)), true
}

// FaceToward flips the polygon's plane so that pt is on its positive side.
func (p *Poly) FaceToward(pt vec.Vec3) {
	if p.Plane.Distance(pt) < 0 {
		p.Plane = p.Plane.Flip()
	}
}

// FaceAlong flips the polygon's plane so that its normal opposes dir.
func (p *Poly) FaceAlong(dir vec.Vec3) {
	if vec.Dot(p.Plane.Normal, dir) > 0 {
		p.Plane = p.Plane.Flip()
	}
}

// ProjectionInside reports whether pt projected along the polygon normal
// lands inside the loop. The loop may be wound either way.
func ProjectionInside(verts []vec.Vec3, n vec.Vec3, pt vec.Vec3) bool {
	if len(verts) < 3 {
		return false
	}
	pos, neg := false, false
	prev := verts[len(verts)-1]
	for _, cur := range verts {
		s := vec.Dot(vec.Cross(vec.Sub(cur, prev), vec.Sub(pt, prev)), n)
		if s > 0 {
			pos = true
		} else if s < 0 {
			neg = true
		}
		if pos && neg {
			return false
		}
		prev = cur
	}
	return true
}

// ClosestPointOnSegment returns the point of a-b nearest to p.
func ClosestPointOnSegment(p, a, b vec.Vec3) vec.Vec3 {
	ab := vec.Sub(b, a)
	l := vec.Dot(ab, ab)
	if l == 0 {
		return a
	}
	t := vec.Dot(vec.Sub(p, a), ab) / l
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}
	return vec.MA(a, t, ab)
}

// ClosestPointOnLoop returns the point on the closed edge loop nearest to p.
func ClosestPointOnLoop(p vec.Vec3, verts []vec.Vec3) vec.Vec3 {
	if len(verts) == 0 {
		return p
	}
	best := verts[0]
	bestDist := vec.Sub(p, best).LengthSquared()
	prev := verts[len(verts)-1]
	for _, cur := range verts {
		c := ClosestPointOnSegment(p, prev, cur)
		if d := vec.Sub(p, c).LengthSquared(); d < bestDist {
			best, bestDist = c, d
		}
		prev = cur
	}
	return best
}
