// SPDX-License-Identifier: GPL-2.0-or-later

package vis

import (
	"gaunt/conlog"
	"gaunt/cvars"
)

// Stats counts the work of the last camera flood.
type Stats struct {
	Zones    int
	Frames   int // frames pushed
	MaxDepth int
	Planes   int // peak plane pool size
	Entities int
	Bulbs    int
	Culled   int // sphere cull rejections
}

func (v *Viewer) report() {
	if !cvars.RSpeeds.Bool() {
		return
	}
	s := &v.Stats
	conlog.Printf("%3d zones %4d frames %2d depth %4d planes %4d ents %3d lights %4d culled\n",
		s.Zones, s.Frames, s.MaxDepth, s.Planes, s.Entities, s.Bulbs, s.Culled)
}
