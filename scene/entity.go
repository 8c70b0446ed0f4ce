// SPDX-License-Identifier: GPL-2.0-or-later

package scene

import (
	"iter"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"gaunt/math/vec"
)

type EntityFlag uint32

const (
	EntityVisible      EntityFlag = 1 << iota
	EntityWorldVisible            // 2
	EntityShadow                  // 4, casts shadows
	EntityGlass                   // 8, translucent
	EntityCloud                   // 16, volumetric
	EntityLoop                    // 32
	EntityLerp                    // 64
	EntityOverlay                 // 128, needs the overlay pass when lit
)

const (
	// DrawFlags must all be set for the camera to collect an entity.
	DrawFlags = EntityVisible | EntityWorldVisible
	// LitMask selects the flags a light reports about what it touches.
	LitMask = EntityOverlay | EntityGlass | EntityCloud
)

var (
	meshSpace    = uuid.NewSHA1(uuid.NameSpaceOID, []byte("gaunt/mesh"))
	textureSpace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("gaunt/texture"))
)

type Mesh struct {
	Name   string
	Handle uuid.UUID
	Radius float32 // bounding sphere around the entity origin at scale 1
}

// NewMesh derives the handle from the name so sorting by handle is stable
// for a given level.
func NewMesh(name string, radius float32) *Mesh {
	return &Mesh{
		Name:   name,
		Handle: uuid.NewSHA1(meshSpace, []byte(name)),
		Radius: radius,
	}
}

type Texture struct {
	Name   string
	Handle uuid.UUID
}

func NewTexture(name string) *Texture {
	return &Texture{
		Name:   name,
		Handle: uuid.NewSHA1(textureSpace, []byte(name)),
	}
}

type Entity struct {
	ID      int
	Name    string
	Pos     vec.Vec3
	Ori     mgl32.Quat
	Scale   float32
	Mesh    *Mesh
	Texture *Texture
	Flags   EntityFlag
	Opacity float32
	// Child is the next part of a composite entity.
	Child *Entity

	HitCode uint32

	zones []*Zone
}

// NewEntity returns a visible, opaque entity at pos.
func NewEntity(name string, pos vec.Vec3, mesh *Mesh, tex *Texture) *Entity {
	return &Entity{
		Name:    name,
		Pos:     pos,
		Ori:     mgl32.QuatIdent(),
		Scale:   1,
		Mesh:    mesh,
		Texture: tex,
		Flags:   DrawFlags,
		Opacity: 1,
	}
}

func (e *Entity) String() string {
	return e.Name
}

// Parts yields e and every entity chained behind it.
func (e *Entity) Parts() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for p := e; p != nil; p = p.Child {
			if !yield(p) {
				return
			}
		}
	}
}

// Radius is the scaled bounding radius, 0 without a mesh.
func (e *Entity) Radius() float32 {
	if e.Mesh == nil {
		return 0
	}
	return e.Mesh.Radius * e.Scale
}

func (e *Entity) Translucent() bool {
	return e.Flags&EntityGlass != 0 || e.Opacity < 1
}

// Zones returns the zones the entity's chain is linked into.
func (e *Entity) Zones() []*Zone {
	return e.zones
}

func (e *Entity) meshHandle() uuid.UUID {
	if e.Mesh == nil {
		return uuid.Nil
	}
	return e.Mesh.Handle
}

func (e *Entity) textureHandle() uuid.UUID {
	if e.Texture == nil {
		return uuid.Nil
	}
	return e.Texture.Handle
}
