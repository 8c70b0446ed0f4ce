// SPDX-License-Identifier: GPL-2.0-or-later

// Package level reads JSON level descriptions into a scene.World.
package level

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"github.com/chewxy/math32"
	"github.com/gammazero/deque"
	"github.com/pkg/errors"

	"gaunt/cvars"
	"gaunt/geom"
	"gaunt/math"
	"gaunt/math/vec"
	"gaunt/scene"
)

type zoneDef struct {
	Name string    `json:"name"`
	Mins *vec.Vec3 `json:"mins"`
	Maxs *vec.Vec3 `json:"maxs"`
	Sun  bool      `json:"sun"`
}

type portalDef struct {
	Front string       `json:"front"`
	Back  string       `json:"back"`
	Polys [][]vec.Vec3 `json:"polys"`
}

type meshDef struct {
	Name   string  `json:"name"`
	Radius float32 `json:"radius"`
}

type entityDef struct {
	Name    string      `json:"name"`
	Mesh    string      `json:"mesh"`
	Texture string      `json:"texture"`
	Pos     vec.Vec3    `json:"pos"`
	Angles  vec.Vec3    `json:"angles"`
	Scale   *float32    `json:"scale"`
	Opacity *float32    `json:"opacity"`
	Flags   []string    `json:"flags"`
	Zones   []string    `json:"zones"`
	Parts   []entityDef `json:"parts"`
}

type bulbDef struct {
	Name      string    `json:"name"`
	Pos       vec.Vec3  `json:"pos"`
	Angles    vec.Vec3  `json:"angles"`
	Radius    float32   `json:"radius"`
	Cone      float32   `json:"cone"` // full angle in degrees, 0 or >= 180 is a point light
	Intensity *float32  `json:"intensity"`
	Color     *vec.Vec3 `json:"color"`
	Zones     []string  `json:"zones"`
}

type cameraDef struct {
	Pos    vec.Vec3 `json:"pos"`
	Angles vec.Vec3 `json:"angles"`
}

type levelDef struct {
	Zones    []zoneDef   `json:"zones"`
	Portals  []portalDef `json:"portals"`
	Meshes   []meshDef   `json:"meshes"`
	Entities []entityDef `json:"entities"`
	Bulbs    []bulbDef   `json:"bulbs"`
	Sun      *vec.Vec3   `json:"sun"`
	Camera   *cameraDef  `json:"camera"`
}

// Level is a loaded world plus the defaults stored with it.
type Level struct {
	World *scene.World
	// Sun is the light direction, zero without a sun.
	Sun vec.Vec3
	// CameraPos and CameraAngles are the suggested start pose.
	CameraPos    vec.Vec3
	CameraAngles vec.Vec3
}

var flagNames = map[string]scene.EntityFlag{
	"visible":      scene.EntityVisible,
	"worldvisible": scene.EntityWorldVisible,
	"shadow":       scene.EntityShadow,
	"glass":        scene.EntityGlass,
	"cloud":        scene.EntityCloud,
	"loop":         scene.EntityLoop,
	"lerp":         scene.EntityLerp,
	"overlay":      scene.EntityOverlay,
}

func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading level")
	}
	l, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "level %s", path)
	}
	return l, nil
}

func Parse(data []byte) (*Level, error) {
	var def levelDef
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, errors.Wrap(err, "decoding level")
	}
	b := builder{
		w:        scene.NewWorld(),
		meshes:   make(map[string]*scene.Mesh),
		textures: make(map[string]*scene.Texture),
	}
	if err := b.build(&def); err != nil {
		return nil, err
	}
	b.checkReachable()

	l := &Level{World: b.w}
	if def.Sun != nil {
		l.Sun = def.Sun.Normalize()
	}
	if def.Camera != nil {
		l.CameraPos = def.Camera.Pos
		l.CameraAngles = def.Camera.Angles
	}
	return l, nil
}

type builder struct {
	w        *scene.World
	meshes   map[string]*scene.Mesh
	textures map[string]*scene.Texture
}

func (b *builder) build(def *levelDef) error {
	for i, zd := range def.Zones {
		if zd.Name == "" {
			return errors.Errorf("zone %d has no name", i)
		}
		if b.w.Zone(zd.Name) != nil {
			return errors.Errorf("zone %s defined twice", zd.Name)
		}
		z := b.w.NewZone(zd.Name)
		z.SunSource = zd.Sun
		switch {
		case zd.Mins != nil && zd.Maxs != nil:
			z.SetBounds(*zd.Mins, *zd.Maxs)
		case zd.Mins != nil || zd.Maxs != nil:
			return errors.Errorf("zone %s needs both mins and maxs", zd.Name)
		}
	}
	for i, pd := range def.Portals {
		if err := b.portal(pd); err != nil {
			return errors.Wrapf(err, "portal %d", i)
		}
	}
	for _, md := range def.Meshes {
		if md.Radius <= 0 {
			return errors.Errorf("mesh %s needs a positive radius", md.Name)
		}
		b.meshes[md.Name] = scene.NewMesh(md.Name, md.Radius)
	}
	for i, ed := range def.Entities {
		if err := b.entity(&ed); err != nil {
			return errors.Wrapf(err, "entity %d (%s)", i, ed.Name)
		}
	}
	for i, bd := range def.Bulbs {
		if err := b.bulb(&bd); err != nil {
			return errors.Wrapf(err, "bulb %d (%s)", i, bd.Name)
		}
	}
	return nil
}

func (b *builder) zone(name string) (*scene.Zone, error) {
	z := b.w.Zone(name)
	if z == nil {
		return nil, errors.Errorf("unknown zone %q", name)
	}
	return z, nil
}

func (b *builder) zones(names []string) ([]*scene.Zone, error) {
	zs := make([]*scene.Zone, 0, len(names))
	for _, n := range names {
		z, err := b.zone(n)
		if err != nil {
			return nil, err
		}
		zs = append(zs, z)
	}
	return zs, nil
}

func center(z *scene.Zone) vec.Vec3 {
	return vec.Scale(0.5, vec.Add(z.Mins, z.Maxs))
}

func (b *builder) portal(pd portalDef) error {
	front, err := b.zone(pd.Front)
	if err != nil {
		return err
	}
	back, err := b.zone(pd.Back)
	if err != nil {
		return err
	}
	if front == back {
		return errors.Errorf("zone %s is connected to itself", front)
	}
	if len(pd.Polys) == 0 {
		return errors.Errorf("%s-%s has no polygons", front, back)
	}
	polys := make([]geom.Poly, 0, len(pd.Polys))
	for k, verts := range pd.Polys {
		p, ok := geom.PlaneFromVerts(verts)
		if !ok {
			return errors.Errorf("polygon %d is degenerate", k)
		}
		if !convex(verts, p.Normal) {
			return errors.Errorf("polygon %d is not convex", k)
		}
		// the plane must point into the front zone
		switch {
		case front.HasBounds:
			if p.Distance(center(front)) < 0 {
				p = p.Flip()
			}
		case back.HasBounds:
			if p.Distance(center(back)) > 0 {
				p = p.Flip()
			}
		default:
			slog.Warn("portal orientation taken from winding", "front", front.Name, "back", back.Name)
		}
		polys = append(polys, geom.Poly{Verts: verts, Plane: p})
	}
	b.w.Connect(front, back, polys...)
	return nil
}

// convex reports whether every turn of the loop bends the same way
// around n.
func convex(verts []vec.Vec3, n vec.Vec3) bool {
	l := len(verts)
	for i := range verts {
		a := vec.Sub(verts[(i+1)%l], verts[i])
		c := vec.Sub(verts[(i+2)%l], verts[(i+1)%l])
		if vec.Dot(vec.Cross(a, c), n) < -geom.Epsilon {
			return false
		}
	}
	return true
}

func (b *builder) texture(name string) *scene.Texture {
	if name == "" {
		return nil
	}
	t, ok := b.textures[name]
	if !ok {
		t = scene.NewTexture(name)
		b.textures[name] = t
	}
	return t
}

func (b *builder) part(ed *entityDef) (*scene.Entity, error) {
	var mesh *scene.Mesh
	if ed.Mesh != "" {
		m, ok := b.meshes[ed.Mesh]
		if !ok {
			return nil, errors.Errorf("unknown mesh %q", ed.Mesh)
		}
		mesh = m
	}
	e := scene.NewEntity(ed.Name, ed.Pos, mesh, b.texture(ed.Texture))
	e.Ori = vec.AnglesToQuat(ed.Angles)
	if ed.Scale != nil {
		e.Scale = *ed.Scale
	}
	if ed.Opacity != nil {
		e.Opacity = math.Clamp(0, *ed.Opacity, 1)
	}
	if ed.Flags != nil {
		e.Flags = 0
		for _, f := range ed.Flags {
			v, ok := flagNames[strings.ToLower(f)]
			if !ok {
				return nil, errors.Errorf("unknown flag %q", f)
			}
			e.Flags |= v
		}
	}
	if mesh != nil && cvars.NoShadow(mesh.Name) {
		e.Flags &^= scene.EntityShadow
	}
	return e, nil
}

func (b *builder) entity(ed *entityDef) error {
	head, err := b.part(ed)
	if err != nil {
		return err
	}
	tail := head
	for i := range ed.Parts {
		p, err := b.part(&ed.Parts[i])
		if err != nil {
			return errors.Wrapf(err, "part %d", i)
		}
		tail.Child = p
		tail = p
	}
	b.w.AddEntity(head)

	var zones []*scene.Zone
	if ed.Zones != nil {
		zones, err = b.zones(ed.Zones)
		if err != nil {
			return err
		}
	} else {
		for p := range head.Parts() {
			zones = b.touching(zones, p.Pos, p.Radius())
		}
	}
	if len(zones) == 0 {
		slog.Warn("entity is outside every zone", "entity", head.Name)
	}
	b.w.LinkEntity(head, zones...)
	return nil
}

func (b *builder) bulb(bd *bulbDef) error {
	if bd.Radius < 0 {
		return errors.Errorf("negative radius %v", bd.Radius)
	}
	intensity := float32(1)
	if bd.Intensity != nil {
		intensity = *bd.Intensity
	}
	l := scene.NewBulb(bd.Name, bd.Pos, bd.Radius, intensity)
	l.Ori = vec.AnglesToQuat(bd.Angles)
	if bd.Cone > 0 && bd.Cone < 180 {
		l.Outer = math.Deg2Rad(bd.Cone)
	} else {
		l.Outer = math32.Pi
	}
	if bd.Color != nil {
		l.Color = *bd.Color
	}
	b.w.AddBulb(l)

	var zones []*scene.Zone
	if bd.Zones != nil {
		z, err := b.zones(bd.Zones)
		if err != nil {
			return err
		}
		zones = z
	} else {
		zones = b.touching(nil, l.Pos, l.Radius)
	}
	b.w.LinkBulb(l, zones...)
	return nil
}

// touching appends the bounded zones the sphere overlaps and zs does not
// hold yet.
func (b *builder) touching(zs []*scene.Zone, pos vec.Vec3, radius float32) []*scene.Zone {
outer:
	for _, z := range b.w.Zones {
		if !z.HasBounds {
			continue
		}
		for i := 0; i < 3; i++ {
			if pos[i]+radius < z.Mins[i] || pos[i]-radius > z.Maxs[i] {
				continue outer
			}
		}
		for _, have := range zs {
			if have == z {
				continue outer
			}
		}
		zs = append(zs, z)
	}
	return zs
}

// checkReachable warns about zones no portal path leads to from the first
// zone or a sun source.
func (b *builder) checkReachable() {
	if len(b.w.Zones) == 0 {
		return
	}
	seen := make([]bool, len(b.w.Zones))
	var todo deque.Deque[*scene.Zone]
	push := func(z *scene.Zone) {
		if seen[z.ID] {
			return
		}
		seen[z.ID] = true
		todo.PushBack(z)
	}
	push(b.w.Zones[0])
	for _, z := range b.w.Zones {
		if z.SunSource {
			push(z)
		}
	}
	for todo.Len() > 0 {
		z := todo.PopFront()
		for _, s := range z.PortalSets {
			push(s.Other(z))
		}
	}
	for _, z := range b.w.Zones {
		if !seen[z.ID] {
			slog.Warn("zone is unreachable", "zone", z.Name)
		}
	}
}
