// SPDX-License-Identifier: GPL-2.0-or-later

package vis

import (
	"github.com/go-gl/mathgl/mgl32"

	"gaunt/geom"
	"gaunt/math/vec"
	"gaunt/portal"
	"gaunt/scene"
)

// Cascade is the result of one CascadeDrawLists call. The slices are reused
// by the next call on the same Sun.
type Cascade struct {
	Zones []*scene.Zone   // discovery order
	Ents  []*scene.Entity // shadow casters, opaque first
}

// Sun keeps the portal graph lit by a directional light. The graph only
// depends on the light direction and is rebuilt when it changes.
type Sun struct {
	descent portal.Descent
	world   *scene.World
	dir     vec.Vec3
	valid   bool

	clip    [2][]vec.Vec3
	poly    geom.Poly
	sides   []geom.Plane
	box     []geom.Plane
	region  geom.Region
	cascade Cascade
}

// Dir is the normalized light direction of the current graph.
func (s *Sun) Dir() vec.Vec3 {
	return s.dir
}

// Nodes is the number of retained graph nodes.
func (s *Sun) Nodes() int {
	return s.descent.Len()
}

// Invalidate forces the next Update to rebuild the graph, for example after
// the zone graph changed.
func (s *Sun) Invalidate() {
	s.valid = false
}

// Update makes the graph match the light travelling along dir. It reports
// whether the graph was rebuilt.
func (s *Sun) Update(w *scene.World, dir vec.Vec3) bool {
	l := dir.Normalize()
	if s.valid && s.world == w && l == s.dir {
		return false
	}
	s.world = w
	s.dir = l
	s.valid = true
	s.build()
	return true
}

// build floods from every sun source zone. Nodes are never popped, an
// exhausted node hands control back to its parent.
func (s *Sun) build() {
	d := &s.descent
	d.Clear()
	for _, z := range s.world.Zones {
		if z.SunSource {
			d.Push(z, -1)
		}
	}
	roots := d.Len()
	for r := 0; r < roots; r++ {
		i := r
		for i >= 0 {
			f := d.Frame(i)
			set, poly, ok := f.NextPortal()
			if !ok {
				i = f.Parent
				continue
			}
			next := set.Other(f.Zone)
			if d.IsAncestor(i, next) {
				continue
			}
			facing := vec.Dot(s.dir, poly.Plane.Normal)
			if next == set.Front && facing <= geom.Epsilon {
				continue
			}
			if next == set.Back && facing >= -geom.Epsilon {
				continue
			}
			verts, ok := s.cut(poly.Verts, d.Planes(i))
			if !ok {
				continue
			}
			child := d.Push(next, i)
			d.SetPoly(child, verts, poly.Plane)
			cf := d.Frame(child)
			cf.Poly.FaceAlong(s.dir)
			c := geom.Centroid(cf.Poly.Verts)
			for k, a := range cf.Poly.Verts {
				b := cf.Poly.Verts[(k+1)%len(cf.Poly.Verts)]
				if p, ok := geom.EdgePlane(a, b, s.dir, c); ok {
					d.PushPlane(p)
				}
			}
			i = child
		}
	}
}

// cut clips src by planes into the sun's scratch buffers.
func (s *Sun) cut(src []vec.Vec3, planes []geom.Plane) ([]vec.Vec3, bool) {
	cur := src
	b := 0
	for _, p := range planes {
		out, r := geom.Cut(s.clip[b], cur, p)
		s.clip[b] = out
		switch r {
		case geom.Rejected:
			return nil, false
		case geom.Clipped:
			cur = out
			b ^= 1
		}
	}
	return cur, true
}

// TrimVisibleSunBranches marks every node whose zone carries visCode, and
// all of its ancestors, as needing casters this frame. It reports whether
// any node was marked.
func (s *Sun) TrimVisibleSunBranches(visCode uint32) bool {
	d := &s.descent
	code := d.NextFullDrawCode()
	if visCode == 0 {
		return false
	}
	marked := false
	for i := 0; i < d.Len(); i++ {
		if d.Frame(i).Zone.VisCode != visCode {
			continue
		}
		marked = true
		for j := i; j >= 0; {
			f := d.Frame(j)
			if f.FullDraw == code {
				break
			}
			f.FullDraw = code
			j = f.Parent
		}
	}
	return marked
}

// CascadeBox maps the ortho parameters of a shadow pass to box extents in
// the light's frame: x along the light, y to the left, z up.
func CascadeBox(near, far, left, right, bottom, top float32) (boxMin, boxMax vec.Vec3) {
	return vec.Vec3{near, -right, bottom}, vec.Vec3{far, -left, top}
}

// SunOrientation returns an orientation whose forward axis is dir.
func SunOrientation(dir vec.Vec3) mgl32.Quat {
	return mgl32.QuatBetweenVectors(mgl32.Vec3{1, 0, 0}, mgl32.Vec3(dir.Normalize())).Normalize()
}

// boxPlanes sets s.box to the six planes of the oriented box.
func (s *Sun) boxPlanes(origin vec.Vec3, ori mgl32.Quat, boxMin, boxMax vec.Vec3) {
	s.box = s.box[:0]
	forward, left, up := vec.Basis(ori)
	for k, axis := range [3]vec.Vec3{forward, left, up} {
		o := vec.Dot(axis, origin)
		hi := geom.Plane{Normal: axis, Dist: o + boxMax[k]}
		lo := geom.Plane{Normal: vec.Scale(-1, axis), Dist: -(o + boxMin[k])}
		hi.UpdateSignBits()
		lo.UpdateSignBits()
		s.box = append(s.box, hi, lo)
	}
}

// CascadeDrawLists collects the zones and shadow casters of the graph that
// fall into one cascade's oriented box. Only nodes marked by the last
// TrimVisibleSunBranches contribute casters.
func (s *Sun) CascadeDrawLists(w *scene.World, origin vec.Vec3, ori mgl32.Quat, boxMin, boxMax vec.Vec3) *Cascade {
	c := &s.cascade
	c.Zones = c.Zones[:0]
	c.Ents = c.Ents[:0]
	if !s.valid || s.world != w {
		return c
	}
	s.boxPlanes(origin, ori, boxMin, boxMax)
	zoneCode := w.ZoneLit.Next()
	hitCode := w.EntityHit.Next()
	full := s.descent.FullDrawCode()

	d := &s.descent
	for i := 0; i < d.Len(); i++ {
		f := d.Frame(i)
		if !s.nodeRegion(f) {
			continue
		}
		if f.Zone.LitCode != zoneCode {
			f.Zone.LitCode = zoneCode
			c.Zones = append(c.Zones, f.Zone)
		}
		if full == 0 || f.FullDraw != full {
			continue
		}
		for _, head := range f.Zone.Ents {
			for e := range head.Parts() {
				if e.HitCode == hitCode {
					continue
				}
				if e.Flags&scene.EntityShadow == 0 || e.Mesh == nil || e.Texture == nil {
					e.HitCode = hitCode
					continue
				}
				if !s.region.SphereVisible(e.Pos, e.Radius()) {
					continue
				}
				e.HitCode = hitCode
				c.Ents = append(c.Ents, e)
			}
		}
	}
	scene.SortCasters(c.Ents)
	return c
}

// nodeRegion sets s.region to the part of node f inside the cascade box.
// It reports false when nothing of the node is inside.
func (s *Sun) nodeRegion(f *portal.Frame) bool {
	s.region.Dir = s.dir
	s.region.Dirs = nil
	if !f.HasPoly() {
		if f.Zone.HasBounds {
			for k := range s.box {
				if s.box[k].BoxOnPlaneSide(f.Zone.Mins, f.Zone.Maxs) == geom.BoxOutside {
					return false
				}
			}
		}
		s.region.Sides = s.box
		s.region.Poly = nil
		return true
	}
	verts, ok := s.cut(f.Poly.Verts, s.box)
	if !ok {
		return false
	}
	s.poly.Verts = append(s.poly.Verts[:0], verts...)
	s.poly.Plane = f.Poly.Plane
	s.sides = s.sides[:0]
	c := geom.Centroid(s.poly.Verts)
	for k, a := range s.poly.Verts {
		b := s.poly.Verts[(k+1)%len(s.poly.Verts)]
		if p, ok := geom.EdgePlane(a, b, s.dir, c); ok {
			s.sides = append(s.sides, p)
		}
	}
	s.sides = append(s.sides, s.box...)
	s.region.Sides = s.sides
	s.region.Poly = &s.poly
	return true
}
