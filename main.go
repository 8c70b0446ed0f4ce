// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"gaunt/commandline"
	"gaunt/cvar"
	"gaunt/cvars"
	"gaunt/level"
	"gaunt/math/vec"
	"gaunt/scene"
	"gaunt/vis"
)

// Record numbers of the -snapshot file. Every record is an embedded
// vis.Snapshot.
const (
	viewRecord    protowire.Number = 1
	cascadeRecord protowire.Number = 2
	lightRecord   protowire.Number = 3
)

type output struct {
	file []byte
}

func (o *output) add(title string, num protowire.Number, s vis.Snapshot) {
	fmt.Printf("%s\n%s", title, s.String())
	o.file = protowire.AppendTag(o.file, num, protowire.BytesType)
	o.file = protowire.AppendBytes(o.file, s.Marshal())
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		slog.Error("gaunt failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run() error {
	for _, a := range commandline.Cvars() {
		if err := cvar.ExecuteLine(a); err != nil {
			return errors.Wrap(err, "-cvar")
		}
	}
	prefix, list := commandline.CvarList()
	if list {
		cvar.List(prefix)
	}
	if commandline.Level() == "" {
		if list {
			return nil
		}
		return errors.New("no level given, use -level")
	}
	l, err := level.Load(commandline.Level())
	if err != nil {
		return err
	}
	w := l.World

	cam := vis.Camera{
		Pos:    l.CameraPos,
		FovY:   commandline.Fov(),
		Aspect: commandline.Aspect(),
		Near:   commandline.Near(),
		Far:    commandline.Far(),
	}
	angles := l.CameraAngles
	if p, ok := commandline.Pos(); ok {
		cam.Pos = p
	}
	if a, ok := commandline.Angles(); ok {
		angles = a
	}
	cam.Ori = vec.AnglesToQuat(angles)

	var out output
	var viewer vis.Viewer
	view := viewer.Flood(w, cam, w)
	if len(view.Zones) == 0 {
		slog.Warn("camera is outside every zone", slog.Any("pos", cam.Pos))
	}
	out.add("view", viewRecord, view.Snapshot())

	if cvars.RShadows.Bool() {
		sunDir := l.Sun
		if d, ok := commandline.Sun(); ok {
			sunDir = d
		}
		cascades(&out, w, sunDir, cam.Pos, view.ZoneCode)
	}
	if commandline.Lights() {
		lights(&out, w, view, commandline.LightsNum())
	}

	if path := commandline.Snapshot(); path != "" {
		if err := os.WriteFile(path, out.file, 0o644); err != nil {
			return errors.Wrap(err, "writing snapshot")
		}
	}
	return nil
}

// cascades builds one caster list per r_sun_cascades half extent, each box
// centered on focus.
func cascades(out *output, w *scene.World, dir, focus vec.Vec3, visCode uint32) {
	if dir == (vec.Vec3{}) {
		return
	}
	var sun vis.Sun
	sun.Update(w, dir)
	if !sun.TrimVisibleSunBranches(visCode) {
		return
	}
	ori := vis.SunOrientation(dir)
	dir = dir.Normalize()
	for _, e := range cvars.RSunCascades.Floats() {
		if e <= 0 {
			continue
		}
		origin := vec.MA(focus, -e, dir)
		lo, hi := vis.CascadeBox(0, 2*e, -e, e, -e, e)
		c := sun.CascadeDrawLists(w, origin, ori, lo, hi)
		out.add(fmt.Sprintf("cascade %v", e), cascadeRecord, c.Snapshot())
	}
}

// lights builds caster lists for the first n visible lights, all of them
// when n is negative.
func lights(out *output, w *scene.World, view *vis.View, n int) {
	var lighter vis.Lighter
	spheres := cvars.RSpotSphere.Bool()
	all := append(append([]*scene.Bulb(nil), view.Points...), view.Spots...)
	for i, b := range all {
		if n >= 0 && i >= n {
			break
		}
		pos, radius := b.Pos, b.Radius
		if spheres {
			if c, r, ok := b.SpotSphere(); ok {
				pos, radius = c, r
			}
		}
		ents, flags := lighter.BulbDrawList(w, b, radius, pos)
		out.add(fmt.Sprintf("light %s", b.Name), lightRecord, vis.CasterSnapshot(ents, flags))
	}
}
