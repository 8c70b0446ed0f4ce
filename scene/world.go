// SPDX-License-Identifier: GPL-2.0-or-later

// Package scene is the zone graph the visibility walks run over: zones
// joined by portal sets, entities and lights linked into zones, and the
// generation counters stamping them.
package scene

import (
	"slices"

	"gaunt/geom"
	"gaunt/math/vec"
)

// World owns every zone, entity part and light of a loaded level.
type World struct {
	Zones    []*Zone
	Entities []*Entity
	Bulbs    []*Bulb

	ZoneVis   Counter // Zone.VisCode
	ZoneLit   Counter // Zone.LitCode
	EntityHit Counter // Entity.HitCode
	BulbDraw  Counter // Bulb.DrawCode
}

func NewWorld() *World {
	w := &World{}
	w.ZoneVis.reset = func() {
		for _, z := range w.Zones {
			z.VisCode = 0
		}
	}
	w.ZoneLit.reset = func() {
		for _, z := range w.Zones {
			z.LitCode = 0
		}
	}
	w.EntityHit.reset = func() {
		for _, e := range w.Entities {
			e.HitCode = 0
		}
	}
	w.BulbDraw.reset = func() {
		for _, b := range w.Bulbs {
			b.DrawCode = 0
		}
	}
	return w
}

func (w *World) NewZone(name string) *Zone {
	z := &Zone{ID: len(w.Zones), Name: name}
	w.Zones = append(w.Zones, z)
	return z
}

// SetBounds gives z an axis aligned box as bounds and hull.
func (z *Zone) SetBounds(mins, maxs vec.Vec3) {
	z.HasBounds = true
	z.Mins, z.Maxs = vec.MinMax(mins, maxs)
	z.Hull = z.Hull[:0]
	for i := 0; i < 3; i++ {
		var n vec.Vec3
		n[i] = 1
		z.Hull = append(z.Hull, geom.NewPlane(n, z.Maxs))
		n[i] = -1
		z.Hull = append(z.Hull, geom.NewPlane(n, z.Mins))
	}
}

// Connect adds a portal set between front and back. Every poly's plane must
// point into front.
func (w *World) Connect(front, back *Zone, polys ...geom.Poly) *PortalSet {
	s := &PortalSet{Front: front, Back: back, Polys: polys}
	front.PortalSets = append(front.PortalSets, s)
	if back != front {
		back.PortalSets = append(back.PortalSets, s)
	}
	return s
}

// AddEntity registers e and every part chained behind it.
func (w *World) AddEntity(e *Entity) {
	for p := range e.Parts() {
		p.ID = len(w.Entities)
		w.Entities = append(w.Entities, p)
	}
}

// LinkEntity links the chain headed by e into zones, replacing older links.
func (w *World) LinkEntity(e *Entity, zones ...*Zone) {
	w.UnlinkEntity(e)
	for _, z := range zones {
		z.Ents = append(z.Ents, e)
	}
	e.zones = append(e.zones[:0], zones...)
}

func (w *World) UnlinkEntity(e *Entity) {
	for _, z := range e.zones {
		if i := slices.Index(z.Ents, e); i >= 0 {
			z.Ents = slices.Delete(z.Ents, i, i+1)
		}
	}
	e.zones = e.zones[:0]
}

func (w *World) AddBulb(b *Bulb) {
	b.ID = len(w.Bulbs)
	w.Bulbs = append(w.Bulbs, b)
}

// LinkBulb links b into zones, replacing older links.
func (w *World) LinkBulb(b *Bulb, zones ...*Zone) {
	w.UnlinkBulb(b)
	for _, z := range zones {
		z.Bulbs = append(z.Bulbs, b)
	}
	b.zones = append(b.zones[:0], zones...)
}

func (w *World) UnlinkBulb(b *Bulb) {
	for _, z := range b.zones {
		if i := slices.Index(z.Bulbs, b); i >= 0 {
			z.Bulbs = slices.Delete(z.Bulbs, i, i+1)
		}
	}
	b.zones = b.zones[:0]
}

// ZoneAt returns the first zone whose hull contains p.
func (w *World) ZoneAt(p vec.Vec3) *Zone {
	for _, z := range w.Zones {
		if z.Contains(p) {
			return z
		}
	}
	return nil
}

// Zone looks a zone up by name.
func (w *World) Zone(name string) *Zone {
	for _, z := range w.Zones {
		if z.Name == name {
			return z
		}
	}
	return nil
}
