// SPDX-License-Identifier: GPL-2.0-or-later

package vis

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaunt/conlog"
	"gaunt/cvars"
	"gaunt/geom"
	"gaunt/math/vec"
	"gaunt/scene"
)

var (
	crate = scene.NewMesh("crate", 8)
	wood  = scene.NewTexture("wood")
)

func room(w *scene.World, name string, mins, maxs vec.Vec3) *scene.Zone {
	z := w.NewZone(name)
	z.SetBounds(mins, maxs)
	return z
}

// portalX is a square aperture in the plane x=at facing along sign*x.
func portalX(at, size, sign float32) geom.Poly {
	return geom.Poly{
		Verts: []vec.Vec3{
			{at, -size, -size},
			{at, size, -size},
			{at, size, size},
			{at, -size, size},
		},
		Plane: geom.NewPlane(vec.Vec3{sign, 0, 0}, vec.Vec3{at, 0, 0}),
	}
}

// portalZ is a rectangle in the plane z=at facing along sign*z.
func portalZ(at, x0, x1, y0, y1, sign float32) geom.Poly {
	return geom.Poly{
		Verts: []vec.Vec3{
			{x0, y0, at},
			{x1, y0, at},
			{x1, y1, at},
			{x0, y1, at},
		},
		Plane: geom.NewPlane(vec.Vec3{0, 0, sign}, vec.Vec3{0, 0, at}),
	}
}

func entity(w *scene.World, name string, pos vec.Vec3, zones ...*scene.Zone) *scene.Entity {
	e := scene.NewEntity(name, pos, crate, wood)
	w.AddEntity(e)
	w.LinkEntity(e, zones...)
	return e
}

func bulb(w *scene.World, name string, pos vec.Vec3, radius float32, zones ...*scene.Zone) *scene.Bulb {
	b := scene.NewBulb(name, pos, radius, 1)
	w.AddBulb(b)
	w.LinkBulb(b, zones...)
	return b
}

func camera(pos vec.Vec3) Camera {
	return Camera{
		Pos:    pos,
		Ori:    mgl32.QuatIdent(),
		FovY:   90,
		Aspect: 1,
		Near:   4,
		Far:    4096,
	}
}

func setCvar(t *testing.T, name, value string) {
	t.Helper()
	var old string
	switch name {
	case "r_novis":
		old = cvars.RNoVis.String()
		cvars.RNoVis.SetByString(value)
		t.Cleanup(func() { cvars.RNoVis.SetByString(old) })
	case "r_speeds":
		old = cvars.RSpeeds.String()
		cvars.RSpeeds.SetByString(value)
		t.Cleanup(func() { cvars.RSpeeds.SetByString(old) })
	default:
		t.Fatalf("unknown cvar %s", name)
	}
}

// corridor is A | B along x with one portal at x=100 whose front side is B.
func corridor() (*scene.World, *scene.Zone, *scene.Zone) {
	w := scene.NewWorld()
	a := room(w, "A", vec.Vec3{0, -100, -100}, vec.Vec3{100, 100, 100})
	b := room(w, "B", vec.Vec3{100, -100, -100}, vec.Vec3{200, 100, 100})
	w.Connect(b, a, portalX(100, 32, 1))
	return w, a, b
}

func TestSingleZoneSingleEntity(t *testing.T) {
	w := scene.NewWorld()
	z := room(w, "Z", vec.Vec3{-100, -100, -100}, vec.Vec3{100, 100, 100})
	e := entity(w, "E", vec.Vec3{}, z)

	var v Viewer
	view := v.Flood(w, camera(vec.Vec3{}), w)
	require.Len(t, view.Zones, 1)
	assert.Same(t, z, view.Zones[0])
	require.Len(t, view.Opaque, 1)
	assert.Same(t, e, view.Opaque[0])
	assert.Empty(t, view.Glass)
	assert.Empty(t, view.Cloud)
}

func TestNoPortalZoneAnyPose(t *testing.T) {
	w := scene.NewWorld()
	z := room(w, "Z", vec.Vec3{-100, -100, -100}, vec.Vec3{100, 100, 100})
	var v Viewer
	for _, pos := range []vec.Vec3{{}, {90, 90, 90}, {-50, 20, -80}} {
		for _, angles := range []vec.Vec3{{}, {30, 120, 0}, {-80, 270, 45}} {
			cam := camera(pos)
			cam.Ori = vec.AnglesToQuat(angles)
			view := v.Flood(w, cam, w)
			require.Len(t, view.Zones, 1, "pos %v angles %v", pos, angles)
			assert.Same(t, z, view.Zones[0])
		}
	}
}

func TestCameraOutsideWorld(t *testing.T) {
	w, a, _ := corridor()
	entity(w, "E", vec.Vec3{50, 0, 0}, a)
	bulb(w, "L", vec.Vec3{50, 0, 0}, 50, a)

	var v Viewer
	nowhere := scene.LocatorFunc(func(vec.Vec3) *scene.Zone { return nil })
	view := v.Flood(w, camera(vec.Vec3{50, 0, 0}), nowhere)
	assert.Empty(t, view.Zones)
	assert.Empty(t, view.Opaque)
	assert.Empty(t, view.Cloud)
	assert.Empty(t, view.Glass)
	assert.Empty(t, view.Points)
	assert.Empty(t, view.Spots)
	assert.Zero(t, view.ZoneCode)
}

func TestThroughPortal(t *testing.T) {
	w, a, b := corridor()
	seen := entity(w, "seen", vec.Vec3{150, 0, 0}, b)
	hidden := entity(w, "hidden", vec.Vec3{150, 90, 0}, b)

	var v Viewer
	view := v.Flood(w, camera(vec.Vec3{50, 0, 0}), w)
	assert.Equal(t, []*scene.Zone{a, b}, view.Zones)
	assert.Contains(t, view.Opaque, seen)
	assert.NotContains(t, view.Opaque, hidden)
	assert.Positive(t, v.Stats.Culled)
	assert.Equal(t, 2, v.Stats.Frames)
	assert.Equal(t, view.ZoneCode, b.VisCode)
}

func TestBackFacingPortal(t *testing.T) {
	w, a, b := corridor()
	e := entity(w, "E", vec.Vec3{170, 0, 0}, b)

	// the camera has slipped past the portal plane but is still
	// attributed to A
	inA := scene.LocatorFunc(func(vec.Vec3) *scene.Zone { return a })
	var v Viewer
	view := v.Flood(w, camera(vec.Vec3{150, 0, 0}), inA)
	assert.Equal(t, []*scene.Zone{a}, view.Zones)
	assert.NotContains(t, view.Opaque, e)
	assert.NotEqual(t, view.ZoneCode, b.VisCode)
}

func TestPortalBehindCamera(t *testing.T) {
	w, a, b := corridor()
	var v Viewer
	cam := camera(vec.Vec3{50, 0, 0})
	cam.Ori = vec.AnglesToQuat(vec.Vec3{0, 180, 0})
	view := v.Flood(w, cam, w)
	assert.Equal(t, []*scene.Zone{a}, view.Zones)
	assert.NotContains(t, view.Zones, b)
}

func TestCameraInPortalPlane(t *testing.T) {
	w, a, b := corridor()
	e := entity(w, "E", vec.Vec3{150, 0, 0}, b)
	inA := scene.LocatorFunc(func(vec.Vec3) *scene.Zone { return a })
	var v Viewer
	view := v.Flood(w, camera(vec.Vec3{100, 0, 0}), inA)
	assert.Equal(t, []*scene.Zone{a, b}, view.Zones)
	assert.Contains(t, view.Opaque, e)
}

// ring builds A -> B -> C -> A with every portal facing +x.
func ring() (*scene.World, []*scene.Zone) {
	w := scene.NewWorld()
	a := room(w, "A", vec.Vec3{-50, -100, -100}, vec.Vec3{10, 100, 100})
	b := room(w, "B", vec.Vec3{10, -100, -100}, vec.Vec3{20, 100, 100})
	c := room(w, "C", vec.Vec3{20, -100, -100}, vec.Vec3{30, 100, 100})
	w.Connect(b, a, portalX(10, 32, 1))
	w.Connect(c, b, portalX(20, 32, 1))
	w.Connect(a, c, portalX(30, 32, 1))
	return w, []*scene.Zone{a, b, c}
}

func TestCycleTerminates(t *testing.T) {
	w, zones := ring()
	var v Viewer
	view := v.Flood(w, camera(vec.Vec3{}), w)
	assert.Equal(t, zones, view.Zones)
}

func TestCycleTerminatesFromEveryZone(t *testing.T) {
	setCvar(t, "r_novis", "1")
	w, zones := ring()
	var v Viewer
	for _, start := range zones {
		at := scene.LocatorFunc(func(vec.Vec3) *scene.Zone { return start })
		view := v.Flood(w, camera(vec.Vec3{}), at)
		require.Len(t, view.Zones, 3, "start %v", start)
		assert.ElementsMatch(t, zones, view.Zones)
		assert.Same(t, start, view.Zones[0])
		// both directions around the ring, each zone at most once per path
		assert.Equal(t, 5, v.Stats.Frames)
	}
}

func TestClassification(t *testing.T) {
	w := scene.NewWorld()
	z := room(w, "Z", vec.Vec3{-100, -100, -100}, vec.Vec3{100, 100, 100})
	opaque := entity(w, "opaque", vec.Vec3{50, 0, 0}, z)
	glass := entity(w, "glass", vec.Vec3{50, 10, 0}, z)
	glass.Flags |= scene.EntityGlass
	faded := entity(w, "faded", vec.Vec3{50, -10, 0}, z)
	faded.Opacity = 0.5
	cloud := entity(w, "cloud", vec.Vec3{50, 0, 10}, z)
	cloud.Flags |= scene.EntityCloud
	hidden := entity(w, "hidden", vec.Vec3{50, 0, -10}, z)
	hidden.Flags &^= scene.EntityWorldVisible
	meshless := entity(w, "meshless", vec.Vec3{50, 0, -20}, z)
	meshless.Mesh = nil

	var v Viewer
	view := v.Flood(w, camera(vec.Vec3{}), w)
	assert.Equal(t, []*scene.Entity{opaque}, view.Opaque)
	assert.ElementsMatch(t, []*scene.Entity{glass, faded}, view.Glass)
	assert.Equal(t, []*scene.Entity{cloud}, view.Cloud)
}

func TestEntityPartsCulledSeparately(t *testing.T) {
	w := scene.NewWorld()
	z := room(w, "Z", vec.Vec3{-100, -100, -100}, vec.Vec3{100, 100, 100})
	head := scene.NewEntity("head", vec.Vec3{50, 0, 0}, crate, wood)
	tail := scene.NewEntity("tail", vec.Vec3{-50, 0, 0}, crate, wood)
	head.Child = tail
	w.AddEntity(head)
	w.LinkEntity(head, z)

	var v Viewer
	view := v.Flood(w, camera(vec.Vec3{}), w)
	assert.Equal(t, []*scene.Entity{head}, view.Opaque)
}

func TestMaterialOrder(t *testing.T) {
	w := scene.NewWorld()
	z := room(w, "Z", vec.Vec3{-100, -100, -100}, vec.Vec3{100, 100, 100})
	barrel := scene.NewMesh("barrel", 8)
	var ents []*scene.Entity
	for i := 0; i < 6; i++ {
		e := entity(w, fmt.Sprint("e", i), vec.Vec3{50, float32(i*5 - 15), 0}, z)
		if i%2 == 0 {
			e.Mesh = barrel
		}
		ents = append(ents, e)
	}
	var v Viewer
	view := v.Flood(w, camera(vec.Vec3{}), w)
	require.Len(t, view.Opaque, 6)
	for i := 1; i < len(view.Opaque); i++ {
		p, c := view.Opaque[i-1], view.Opaque[i]
		if p.Mesh == c.Mesh {
			assert.Less(t, p.ID, c.ID)
		}
	}
	// meshes are grouped
	changes := 0
	for i := 1; i < len(view.Opaque); i++ {
		if view.Opaque[i-1].Mesh != view.Opaque[i].Mesh {
			changes++
		}
	}
	assert.Equal(t, 1, changes)
}

func TestLightsInView(t *testing.T) {
	w, _, b := corridor()
	point := bulb(w, "point", vec.Vec3{150, 0, 0}, 20, b)
	spot := bulb(w, "spot", vec.Vec3{150, 10, 0}, 20, b)
	spot.Outer = math32.Pi / 2
	dark := bulb(w, "dark", vec.Vec3{150, -10, 0}, 20, b)
	dark.Intensity = 0
	away := bulb(w, "away", vec.Vec3{150, 95, 0}, 5, b)

	var v Viewer
	view := v.Flood(w, camera(vec.Vec3{50, 0, 0}), w)
	assert.Equal(t, []*scene.Bulb{point}, view.Points)
	assert.Equal(t, []*scene.Bulb{spot}, view.Spots)
	assert.NotContains(t, view.Points, dark)
	assert.NotContains(t, view.Points, away)
}

func TestGenerationWraparound(t *testing.T) {
	w, a, b := corridor()
	e := entity(w, "E", vec.Vec3{150, 0, 0}, b)
	var v Viewer
	v.Flood(w, camera(vec.Vec3{50, 0, 0}), w)

	w.ZoneVis.Set(math.MaxUint32)
	w.EntityHit.Set(math.MaxUint32)
	w.BulbDraw.Set(math.MaxUint32)
	view := v.Flood(w, camera(vec.Vec3{50, 0, 0}), w)
	assert.Equal(t, uint32(1), view.ZoneCode)
	assert.Equal(t, []*scene.Zone{a, b}, view.Zones)
	assert.Equal(t, []*scene.Entity{e}, view.Opaque)
}

func TestDeterminism(t *testing.T) {
	build := func() *scene.World {
		w, a, b := corridor()
		for i := 0; i < 5; i++ {
			e := entity(w, fmt.Sprint("crate", i), vec.Vec3{150, float32(i * 4), 0}, b)
			if i == 2 {
				e.Mesh = scene.NewMesh("barrel", 8)
			}
			if i == 3 {
				e.Flags |= scene.EntityGlass
			}
		}
		entity(w, "near", vec.Vec3{60, 0, 0}, a)
		bulb(w, "lamp", vec.Vec3{150, 0, 10}, 30, b)
		return w
	}
	cam := camera(vec.Vec3{50, 3, 2})

	var v1, v2 Viewer
	w1 := build()
	first := v1.Flood(w1, cam, w1).Snapshot()
	again := v1.Flood(w1, cam, w1).Snapshot()
	w2 := build()
	other := v2.Flood(w2, cam, w2).Snapshot()

	require.NotEmpty(t, first.Opaque)
	assert.Equal(t, first.Marshal(), again.Marshal())
	assert.Equal(t, first.Marshal(), other.Marshal())
}

func TestSpeeds(t *testing.T) {
	setCvar(t, "r_speeds", "1")
	var out strings.Builder
	conlog.SetPrintf(func(f string, v ...interface{}) {
		fmt.Fprintf(&out, f, v...)
	})
	defer conlog.SetPrintf(nil)

	w, _, _ := corridor()
	var v Viewer
	v.Flood(w, camera(vec.Vec3{50, 0, 0}), w)
	assert.Contains(t, out.String(), "  2 zones")
}
