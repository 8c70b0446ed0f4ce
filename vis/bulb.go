// SPDX-License-Identifier: GPL-2.0-or-later

package vis

import (
	"gaunt/math/vec"
	"gaunt/scene"
)

// Lighter builds the caster lists of point and spot lights. Lights are not
// bounded by portals, an entity counts when its sphere reaches the light's.
type Lighter struct {
	ents []*scene.Entity
}

// BulbDrawList returns the shadow casters within radius of pos over the
// zones the light is linked into, and the LitMask flags of every entity in
// range. The list is reused by the next call.
func (l *Lighter) BulbDrawList(w *scene.World, light *scene.Bulb, radius float32, pos vec.Vec3) ([]*scene.Entity, scene.EntityFlag) {
	flags := l.walk(w, light, radius, pos, true)
	scene.SortCasters(l.ents)
	return l.ents, flags
}

// BulbLitFlags is BulbDrawList without the caster list.
func (l *Lighter) BulbLitFlags(w *scene.World, light *scene.Bulb, radius float32, pos vec.Vec3) scene.EntityFlag {
	return l.walk(w, light, radius, pos, false)
}

func (l *Lighter) walk(w *scene.World, light *scene.Bulb, radius float32, pos vec.Vec3, list bool) scene.EntityFlag {
	l.ents = l.ents[:0]
	code := w.EntityHit.Next()
	var flags scene.EntityFlag
	for _, z := range light.Zones() {
		for _, head := range z.Ents {
			for e := range head.Parts() {
				if e.HitCode == code {
					continue
				}
				e.HitCode = code
				if e.Mesh == nil {
					continue
				}
				if vec.Distance(e.Pos, pos) > e.Radius()+radius {
					continue
				}
				flags |= e.Flags & scene.LitMask
				if list && e.Flags&scene.EntityShadow != 0 {
					l.ents = append(l.ents, e)
				}
			}
		}
	}
	return flags
}
