// SPDX-License-Identifier: GPL-2.0-or-later

// Package vis decides what can be seen from the camera and what can cast
// shadows into it, by walking the zone graph through portals.
package vis

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"gaunt/cvars"
	"gaunt/geom"
	"gaunt/math"
	"gaunt/math/vec"
	"gaunt/portal"
	"gaunt/scene"
)

type Camera struct {
	Pos    vec.Vec3
	Ori    mgl32.Quat // identity when zero
	FovY   float32    // degrees, fov cvar when 0
	Aspect float32    // width / height, 1 when 0
	Near   float32    // 1 when 0
	Far    float32    // gl_farclip when 0
}

func (c *Camera) defaults() Camera {
	r := *c
	if r.Ori == (mgl32.Quat{}) {
		r.Ori = mgl32.QuatIdent()
	}
	if r.FovY <= 0 {
		r.FovY = cvars.Fov.Value()
	}
	r.FovY = math.Clamp(1, r.FovY, 179)
	if r.Aspect <= 0 {
		r.Aspect = 1
	}
	if r.Near <= 0 {
		r.Near = 1
	}
	if r.Far <= 0 {
		r.Far = cvars.GlFarClip.Value()
	}
	return r
}

// View is the result of a camera flood. The slices are reused by the next
// flood of the same Viewer.
type View struct {
	Zones  []*scene.Zone // discovery order
	Opaque []*scene.Entity
	Cloud  []*scene.Entity
	Glass  []*scene.Entity
	Points []*scene.Bulb // discovery order
	Spots  []*scene.Bulb // discovery order
	// ZoneCode is the Zone.VisCode of every zone in Zones, 0 for an empty view.
	ZoneCode uint32
}

func (v *View) reset() {
	v.Zones = v.Zones[:0]
	v.Opaque = v.Opaque[:0]
	v.Cloud = v.Cloud[:0]
	v.Glass = v.Glass[:0]
	v.Points = v.Points[:0]
	v.Spots = v.Spots[:0]
	v.ZoneCode = 0
}

// Viewer runs camera floods. It keeps its scratch space between calls and
// must not be used concurrently.
type Viewer struct {
	view    View
	descent portal.Descent
	clip    [2][]vec.Vec3
	dirs    []vec.Vec3
	region  geom.Region

	eye      vec.Vec3
	far      geom.Plane
	hitCode  uint32
	drawCode uint32

	Stats Stats
}

// Flood collects everything visible from cam. A camera outside every zone
// sees nothing.
func (v *Viewer) Flood(w *scene.World, cam Camera, loc scene.Locator) *View {
	v.view.reset()
	v.Stats = Stats{}
	d := &v.descent
	d.Clear()

	start := loc.ZoneAt(cam.Pos)
	if start == nil {
		v.report()
		return &v.view
	}
	cam = cam.defaults()
	v.view.ZoneCode = w.ZoneVis.Next()
	v.hitCode = w.EntityHit.Next()
	v.drawCode = w.BulbDraw.Next()
	v.eye = cam.Pos

	v.pushRoot(start, &cam)
	v.markZone(start)
	v.addObjects(0)

	novis := cvars.RNoVis.Bool()
	for d.Len() > 0 {
		i := d.Len() - 1
		f := d.Frame(i)
		set, poly, ok := f.NextPortal()
		if !ok {
			d.Pop()
			continue
		}
		next := set.Other(f.Zone)
		if d.IsAncestor(i, next) {
			continue
		}
		inherit := novis
		if !inherit {
			dist := poly.Plane.Distance(v.eye)
			switch {
			case dist >= -geom.Epsilon && dist <= geom.Epsilon:
				// the eye is in the portal plane: the aperture degenerates
				// to a line, keep the parent's region
				inherit = true
			case next == set.Front && dist > 0:
				continue
			case next == set.Back && dist < 0:
				continue
			}
		}
		verts, ok := v.clipToFrame(i, poly.Verts, inherit)
		if !ok {
			continue
		}

		child := d.Push(next, i)
		if inherit {
			pf := d.Frame(i)
			d.SetPoly(child, pf.Poly.Verts, pf.Poly.Plane)
			parent := d.Planes(i)
			copy(d.PushPlanes(len(parent)), parent)
		} else {
			d.SetPoly(child, verts, poly.Plane)
			cf := d.Frame(child)
			cf.Poly.FaceToward(v.eye)
			v.pushEdgePlanes(cf.Poly.Verts)
			d.PushPlane(v.far)
		}
		v.Stats.Frames++
		v.Stats.MaxDepth = max(v.Stats.MaxDepth, v.depth(child))
		v.Stats.Planes = max(v.Stats.Planes, d.NumPlanes())
		v.markZone(next)
		v.addObjects(child)
	}

	scene.SortByMaterial(v.view.Opaque)
	scene.SortByMaterial(v.view.Cloud)
	scene.SortByMaterial(v.view.Glass)
	v.Stats.Zones = len(v.view.Zones)
	v.report()
	return &v.view
}

// pushRoot pushes the camera zone with the near plane quad as aperture and
// the frustum planes as clip region.
func (v *Viewer) pushRoot(z *scene.Zone, cam *Camera) {
	d := &v.descent
	forward, left, up := vec.Basis(cam.Ori)
	tanY := math32.Tan(math.Deg2Rad(cam.FovY / 2))
	h := cam.Near * tanY
	wd := h * cam.Aspect
	center := vec.MA(cam.Pos, cam.Near, forward)
	quad := [4]vec.Vec3{
		vec.Add(center, vec.Add(vec.Scale(wd, left), vec.Scale(h, up))),
		vec.Add(center, vec.Sub(vec.Scale(h, up), vec.Scale(wd, left))),
		vec.Sub(center, vec.Add(vec.Scale(wd, left), vec.Scale(h, up))),
		vec.Add(center, vec.Sub(vec.Scale(wd, left), vec.Scale(h, up))),
	}
	root := d.Push(z, -1)
	d.SetPoly(root, quad[:], geom.NewPlane(vec.Scale(-1, forward), center))
	v.pushEdgePlanes(d.Frame(root).Poly.Verts)
	v.far = geom.NewPlane(forward, vec.MA(cam.Pos, cam.Far, forward))
	d.PushPlane(v.far)
	v.Stats.Frames = 1
	v.Stats.MaxDepth = 1
	v.Stats.Planes = d.NumPlanes()
}

func (v *Viewer) pushEdgePlanes(verts []vec.Vec3) {
	c := geom.Centroid(verts)
	for i, a := range verts {
		b := verts[(i+1)%len(verts)]
		if p, ok := geom.PerspectiveEdgePlane(a, b, v.eye, c); ok {
			v.descent.PushPlane(p)
		}
	}
}

// clipToFrame cuts src by every plane of frame i. The result lives in the
// viewer's scratch buffers. With skip set src is returned untouched.
func (v *Viewer) clipToFrame(i int, src []vec.Vec3, skip bool) ([]vec.Vec3, bool) {
	if skip {
		return src, true
	}
	cur := src
	b := 0
	for _, p := range v.descent.Planes(i) {
		out, r := geom.Cut(v.clip[b], cur, p)
		v.clip[b] = out
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

func (v *Viewer) depth(i int) int {
	n := 0
	for ; i >= 0; i = v.descent.Frame(i).Parent {
		n++
	}
	return n
}

func (v *Viewer) markZone(z *scene.Zone) {
	if z.VisCode == v.view.ZoneCode {
		return
	}
	z.VisCode = v.view.ZoneCode
	v.view.Zones = append(v.view.Zones, z)
}

// addObjects collects the entities and lights of frame i's zone that pass
// the sphere cull against the frame's region. i must be the top frame.
func (v *Viewer) addObjects(i int) {
	f := v.descent.Frame(i)
	v.region.Sides = v.descent.Planes(i)
	v.region.Poly = &f.Poly
	v.dirs = v.dirs[:0]
	for _, p := range f.Poly.Verts {
		v.dirs = append(v.dirs, vec.Sub(p, v.eye).Normalize())
	}
	v.region.Dirs = v.dirs

	if cvars.RDrawEntities.Bool() {
		for _, head := range f.Zone.Ents {
			for e := range head.Parts() {
				v.addEntity(e)
			}
		}
	}
	if cvars.RDynamic.Bool() {
		spheres := cvars.RSpotSphere.Bool()
		for _, b := range f.Zone.Bulbs {
			v.addBulb(b, spheres)
		}
	}
}

func (v *Viewer) addEntity(e *scene.Entity) {
	if e.HitCode == v.hitCode {
		return
	}
	if e.Flags&scene.DrawFlags != scene.DrawFlags || e.Mesh == nil {
		e.HitCode = v.hitCode
		return
	}
	if !v.region.SphereVisible(e.Pos, e.Radius()) {
		// another portal path may still reach it
		v.Stats.Culled++
		return
	}
	e.HitCode = v.hitCode
	v.Stats.Entities++
	switch {
	case e.Flags&scene.EntityCloud != 0:
		v.view.Cloud = append(v.view.Cloud, e)
	case e.Translucent():
		v.view.Glass = append(v.view.Glass, e)
	default:
		v.view.Opaque = append(v.view.Opaque, e)
	}
}

func (v *Viewer) addBulb(b *scene.Bulb, spheres bool) {
	if b.DrawCode == v.drawCode {
		return
	}
	if b.Radius <= 0 || b.Intensity == 0 {
		b.DrawCode = v.drawCode
		return
	}
	if !v.region.SphereVisible(b.Pos, b.Radius) {
		v.Stats.Culled++
		return
	}
	if spheres {
		if c, r, ok := b.SpotSphere(); ok && !v.region.SphereVisible(c, r) {
			v.Stats.Culled++
			return
		}
	}
	b.DrawCode = v.drawCode
	v.Stats.Bulbs++
	if b.Spot() {
		v.view.Spots = append(v.view.Spots, b)
	} else {
		v.view.Points = append(v.view.Points, b)
	}
}
