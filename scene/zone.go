// SPDX-License-Identifier: GPL-2.0-or-later

package scene

import (
	"gaunt/geom"
	"gaunt/math/vec"
)

// Zone is a convex region of the level. Its links are maintained by the
// scene, the stamps by the visibility walks.
type Zone struct {
	ID         int
	Name       string
	PortalSets []*PortalSet
	Ents       []*Entity // heads of entity chains touching the zone
	Bulbs      []*Bulb
	SunSource  bool

	// Optional bounds, used to skip sun roots outside a cascade.
	HasBounds  bool
	Mins, Maxs vec.Vec3
	// Optional convex hull, used by World.ZoneAt.
	Hull []geom.Plane

	VisCode uint32 // camera flood generation
	LitCode uint32 // cascade zone list generation
}

func (z *Zone) String() string {
	return z.Name
}

// Contains reports whether p is inside the zone's hull. Zones without a hull
// contain nothing.
func (z *Zone) Contains(p vec.Vec3) bool {
	if len(z.Hull) == 0 {
		return false
	}
	for i := range z.Hull {
		if z.Hull[i].Distance(p) > geom.Epsilon {
			return false
		}
	}
	return true
}

// PortalSet joins two zones through one or more convex apertures. Every
// polygon's plane normal points into Front.
type PortalSet struct {
	Front, Back *Zone
	Polys       []geom.Poly
}

// Other returns the zone on the far side of the set as seen from z.
func (s *PortalSet) Other(z *Zone) *Zone {
	if z == s.Back {
		return s.Front
	}
	return s.Back
}

// Locator resolves a point to the zone containing it or nil.
type Locator interface {
	ZoneAt(p vec.Vec3) *Zone
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(p vec.Vec3) *Zone

func (f LocatorFunc) ZoneAt(p vec.Vec3) *Zone {
	return f(p)
}
