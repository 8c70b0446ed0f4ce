// SPDX-License-Identifier: GPL-2.0-or-later

package geom

import (
	"gaunt/math/vec"
)

// Region is a convex volume seen through a polygon: everything behind Poly
// along the ray directions and inside all Sides. Poly's plane faces the
// viewer. Without a polygon only the side planes bound the region.
//
// Dirs holds one ray direction per polygon vertex (perspective). If Dirs is
// empty Dir is shared by every vertex (orthographic).
type Region struct {
	Sides []Plane
	Poly  *Poly
	Dirs  []vec.Vec3
	Dir   vec.Vec3
}

func (r *Region) dir(i int) vec.Vec3 {
	if len(r.Dirs) == 0 {
		return r.Dir
	}
	return r.Dirs[i]
}

// SphereVisible reports whether the sphere may touch the region.
// It never rejects an intersecting sphere. Near the corners of the polygon
// it may accept spheres that miss.
func (r *Region) SphereVisible(center vec.Vec3, radius float32) bool {
	for i := range r.Sides {
		if r.Sides[i].Distance(center) > radius {
			return false
		}
	}
	if r.Poly == nil || len(r.Poly.Verts) < 3 {
		return true
	}
	poly := r.Poly
	support := poly.Plane.Distance(center)
	if support > radius {
		return false
	}
	if support <= 0 {
		// behind the aperture the side planes are exact enough
		return true
	}

	radiusSq := radius * radius
	verts := poly.Verts
	n := len(verts)
	inFront := true
	for i, v := range verts {
		w := vec.Sub(center, v)
		along := vec.Dot(w, r.dir(i))
		if along >= 0 {
			inFront = false
			continue
		}
		// corner plane through v facing the center; it only bounds the
		// region when it does not face either adjacent edge
		prev := verts[(i+n-1)%n]
		next := verts[(i+1)%n]
		if vec.Dot(w, vec.Sub(prev, v)) > 0 || vec.Dot(w, vec.Sub(next, v)) > 0 {
			continue
		}
		if w.LengthSquared() > radiusSq {
			return false
		}
	}

	if inFront && !ProjectionInside(verts, poly.Plane.Normal, center) {
		// the nearest point is on the edge loop or inside a side face
		c := ClosestPointOnLoop(center, verts)
		if vec.Sub(center, c).LengthSquared() <= radiusSq {
			return true
		}
		for i := range verts {
			j := (i + 1) % n
			if r.faceWithin(verts[i], verts[j], r.dir(i), r.dir(j), center, radius) {
				return true
			}
		}
		return false
	}
	return true
}

// faceWithin reports whether the side face spanned by edge a-b and the rays
// da and db behind the polygon comes within radius of center.
func (r *Region) faceWithin(a, b, da, db, center vec.Vec3, radius float32) bool {
	edge := vec.Sub(b, a)
	n := vec.Cross(edge, da)
	if n.LengthSquared() < Epsilon*Epsilon {
		return false
	}
	n = n.Normalize()
	dist := vec.Dot(vec.Sub(center, a), n)
	if dist > radius || dist < -radius {
		return false
	}
	q := vec.MA(center, -dist, n)
	if r.Poly.Plane.Distance(q) > 0 {
		return false
	}
	ma := vec.Cross(n, da)
	if vec.Dot(ma, edge) < 0 {
		ma = vec.Scale(-1, ma)
	}
	mb := vec.Cross(n, db)
	if vec.Dot(mb, edge) > 0 {
		mb = vec.Scale(-1, mb)
	}
	return vec.Dot(ma, vec.Sub(q, a)) >= 0 && vec.Dot(mb, vec.Sub(q, b)) >= 0
}
