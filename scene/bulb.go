// SPDX-License-Identifier: GPL-2.0-or-later

package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"gaunt/math/vec"
)

// Bulb is a point or spot light.
type Bulb struct {
	ID        int
	Name      string
	Pos       vec.Vec3
	Ori       mgl32.Quat
	Radius    float32
	Outer     float32 // full cone angle in radians, >= Pi is a point light
	Intensity float32
	Color     vec.Vec3

	DrawCode uint32

	zones []*Zone
}

func NewBulb(name string, pos vec.Vec3, radius, intensity float32) *Bulb {
	return &Bulb{
		Name:      name,
		Pos:       pos,
		Ori:       mgl32.QuatIdent(),
		Radius:    radius,
		Outer:     math32.Pi,
		Intensity: intensity,
		Color:     vec.Vec3{1, 1, 1},
	}
}

func (b *Bulb) String() string {
	return b.Name
}

func (b *Bulb) Spot() bool {
	return b.Outer < math32.Pi
}

// Forward is the spot axis.
func (b *Bulb) Forward() vec.Vec3 {
	return vec.Rotate(b.Ori, vec.Vec3{1, 0, 0})
}

// Zones returns the zones the light is linked into.
func (b *Bulb) Zones() []*Zone {
	return b.zones
}

// SpotSphere returns a sphere enclosing a spot light's cone, shifted forward
// along the axis. ok is false when the cone is too wide for the shifted
// sphere to be smaller than the light's own radius.
func (b *Bulb) SpotSphere() (center vec.Vec3, radius float32, ok bool) {
	if !b.Spot() {
		return b.Pos, b.Radius, false
	}
	half := b.Outer / 2
	c := math32.Cos(half)
	// through the apex and the rim circle; wider than 60 degrees it grows
	// past the light radius
	if c <= 0.5 {
		return b.Pos, b.Radius, false
	}
	off := b.Radius / (2 * c)
	return vec.MA(b.Pos, off, b.Forward()), off, true
}
