// SPDX-License-Identifier: GPL-2.0-or-later

// Package portal implements the traversal stack shared by the camera and the
// sun walks over the zone graph.
package portal

import (
	"math"

	"gaunt/geom"
	"gaunt/math/vec"
	"gaunt/scene"
)

// Frame is one step of a walk: the zone entered, the clipped aperture it was
// entered through and a cursor into the zone's portal sets.
type Frame struct {
	Zone *scene.Zone
	// Poly is empty for root frames.
	Poly geom.Poly
	// Set and Polygon point at the next portal polygon to try.
	Set     int
	Polygon int
	// Parent is the index of the frame this one was entered from, -1 for roots.
	Parent int
	// PlaneStart is this frame's first plane in the shared pool.
	PlaneStart int
	// FullDraw equals the descent's full draw code when the frame's casters
	// are needed this frame. Only the sun graph uses it.
	FullDraw uint32
}

// HasPoly reports whether the frame was entered through an aperture.
func (f *Frame) HasPoly() bool {
	return len(f.Poly.Verts) >= 3
}

// NextPortal returns the next untried polygon of the frame's zone and
// advances the cursor past it. ok is false once every set is exhausted.
func (f *Frame) NextPortal() (set *scene.PortalSet, poly *geom.Poly, ok bool) {
	sets := f.Zone.PortalSets
	for f.Set < len(sets) {
		s := sets[f.Set]
		if f.Polygon < len(s.Polys) {
			p := &s.Polys[f.Polygon]
			f.Polygon++
			return s, p, true
		}
		f.Set++
		f.Polygon = 0
	}
	return nil, nil, false
}

// Descent is a stack of frames with a pool of clip planes. The planes of
// frame k are Pool[frame[k].PlaneStart:frame[k+1].PlaneStart], the last
// frame owns the rest of the pool. Frames must be popped in stack order.
//
// Storage is kept across Clear so a walk per frame does not allocate once
// the buffers have grown. Push may move the frames, so *Frame values must be
// fetched again by index after a push.
type Descent struct {
	frames       []Frame
	planes       []geom.Plane
	fullDrawCode uint32
}

// Push adds a frame for z entered from parent and returns its index. The
// new frame owns no planes until PushPlanes or PushPlane is called.
func (d *Descent) Push(z *scene.Zone, parent int) int {
	n := len(d.frames)
	if n < cap(d.frames) {
		d.frames = d.frames[:n+1]
	} else {
		d.frames = append(d.frames, Frame{})
	}
	f := &d.frames[n]
	verts := f.Poly.Verts[:0]
	*f = Frame{
		Zone:       z,
		Poly:       geom.Poly{Verts: verts},
		Parent:     parent,
		PlaneStart: len(d.planes),
	}
	return n
}

// SetPoly copies verts and plane into frame i's aperture.
func (d *Descent) SetPoly(i int, verts []vec.Vec3, plane geom.Plane) {
	f := &d.frames[i]
	f.Poly.Verts = append(f.Poly.Verts[:0], verts...)
	f.Poly.Plane = plane
}

// PushPlanes grows the pool by n planes for the top frame and returns them.
// The slice is only valid until the pool grows again.
func (d *Descent) PushPlanes(n int) []geom.Plane {
	l := len(d.planes)
	if l+n <= cap(d.planes) {
		d.planes = d.planes[:l+n]
	} else {
		d.planes = append(d.planes, make([]geom.Plane, n)...)
	}
	return d.planes[l : l+n]
}

// PushPlane appends a single plane for the top frame.
func (d *Descent) PushPlane(p geom.Plane) {
	d.planes = append(d.planes, p)
}

// Pop removes the top frame and releases its planes.
func (d *Descent) Pop() {
	n := len(d.frames) - 1
	if n < 0 {
		return
	}
	d.planes = d.planes[:d.frames[n].PlaneStart]
	d.frames = d.frames[:n]
}

// Clear drops every frame but keeps the storage.
func (d *Descent) Clear() {
	d.frames = d.frames[:0]
	d.planes = d.planes[:0]
}

func (d *Descent) Len() int {
	return len(d.frames)
}

func (d *Descent) Frame(i int) *Frame {
	return &d.frames[i]
}

// Top returns the last pushed frame or nil.
func (d *Descent) Top() *Frame {
	if len(d.frames) == 0 {
		return nil
	}
	return &d.frames[len(d.frames)-1]
}

// Planes returns the clip planes of frame i.
func (d *Descent) Planes(i int) []geom.Plane {
	start := d.frames[i].PlaneStart
	end := len(d.planes)
	if i+1 < len(d.frames) {
		end = d.frames[i+1].PlaneStart
	}
	return d.planes[start:end]
}

// NumPlanes is the size of the whole pool.
func (d *Descent) NumPlanes() int {
	return len(d.planes)
}

// IsAncestor reports whether z is the zone of frame i or of any frame on
// its parent chain.
func (d *Descent) IsAncestor(i int, z *scene.Zone) bool {
	for i >= 0 {
		f := &d.frames[i]
		if f.Zone == z {
			return true
		}
		i = f.Parent
	}
	return false
}

// FullDrawCode is the current full draw generation.
func (d *Descent) FullDrawCode() uint32 {
	return d.fullDrawCode
}

// NextFullDrawCode starts a new full draw generation. When the counter is
// exhausted every frame's marker is cleared and counting restarts at 1.
func (d *Descent) NextFullDrawCode() uint32 {
	if d.fullDrawCode == math.MaxUint32 {
		for i := range d.frames {
			d.frames[i].FullDraw = 0
		}
		d.fullDrawCode = 0
	}
	d.fullDrawCode++
	return d.fullDrawCode
}
