// SPDX-License-Identifier: GPL-2.0-or-later

package commandline

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"gaunt/math/vec"
)

var (
	levelPath    string
	snapshotPath string

	fov    float64
	aspect float64
	near   float64
	far    float64

	pos    vec3
	angles vec3
	sun    vec3

	lights = boolInt{false, -1}

	cvars    stringList
	cvarList boolString
)

type boolInt struct {
	set bool
	num int
}

func (b *boolInt) IsBoolFlag() bool {
	// We can not support both "-flag" and "-flag 10"
	// This allows "-flag", and "-flag=10"
	// and also "-flag=true" and "-flag=false"
	// but not "-flag 10"
	return true
}

func (b *boolInt) Set(s string) error {
	v, err := strconv.ParseInt(s, 0, strconv.IntSize)
	if err != nil {
		v, err := strconv.ParseBool(s)
		b.set = v
		return err
	}
	b.set = true
	b.num = int(v)
	return nil
}

func (b *boolInt) String() string {
	return fmt.Sprintf("Set: %v, Num: %v", b.set, b.num)
}

// boolString is a flag usable as "-flag" and "-flag=text".
type boolString struct {
	set bool
	s   string
}

func (b *boolString) IsBoolFlag() bool {
	return true
}

func (b *boolString) Set(s string) error {
	b.set = true
	b.s = s
	if s == "true" {
		// a bare "-flag"
		b.s = ""
	}
	return nil
}

func (b *boolString) String() string {
	return fmt.Sprintf("Set: %v, Str: %v", b.set, b.s)
}

// vec3 parses "x,y,z".
type vec3 struct {
	set bool
	v   vec.Vec3
}

func (f *vec3) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fmt.Errorf("want x,y,z got %q", s)
	}
	var v vec.Vec3
	for i, p := range parts {
		c, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return err
		}
		v[i] = float32(c)
	}
	f.v = v
	f.set = true
	return nil
}

func (f *vec3) String() string {
	return fmt.Sprintf("%v,%v,%v", f.v[0], f.v[1], f.v[2])
}

type stringList []string

func (l *stringList) Set(s string) error {
	*l = append(*l, s)
	return nil
}

func (l *stringList) String() string {
	return strings.Join(*l, " ")
}

func init() {
	flag.StringVar(&levelPath, "level", "", "level file to load")
	flag.StringVar(&snapshotPath, "snapshot", "", "write the binary snapshot of all lists to this file")

	flag.Float64Var(&fov, "fov", 0, "vertical field of view in degrees, 0 uses the fov cvar")
	flag.Float64Var(&aspect, "aspect", 16.0/9, "viewport width / height")
	flag.Float64Var(&near, "near", 4, "near clip distance")
	flag.Float64Var(&far, "far", 0, "far clip distance, 0 uses gl_farclip")

	flag.Var(&pos, "pos", "camera position x,y,z, defaults to the level's camera")
	flag.Var(&angles, "angles", "camera pitch,yaw,roll in degrees")
	flag.Var(&sun, "sun", "sun direction x,y,z, defaults to the level's sun")

	flag.Var(&lights, "lights", "build caster lists for visible lights, optional number of lights")
	flag.Var(&cvars, "cvar", "a cvar console line, name=value, \"name value\" or name to print it, may be repeated")
	flag.Var(&cvarList, "cvarlist", "list cvars, optionally only those starting with the given prefix")
}

func Level() string {
	return levelPath
}

func Snapshot() string {
	return snapshotPath
}

func Fov() float32 {
	return float32(fov)
}

func Aspect() float32 {
	return float32(aspect)
}

func Near() float32 {
	return float32(near)
}

func Far() float32 {
	return float32(far)
}

// Pos returns the camera position and whether it was given.
func Pos() (vec.Vec3, bool) {
	return pos.v, pos.set
}

func Angles() (vec.Vec3, bool) {
	return angles.v, angles.set
}

func Sun() (vec.Vec3, bool) {
	return sun.v, sun.set
}

func Lights() bool {
	return lights.set
}

// LightsNum is the number of lights to build lists for, negative for all.
func LightsNum() int {
	return lights.num
}

func Cvars() []string {
	return cvars
}

// CvarList returns the prefix for the cvar listing and whether one was asked for.
func CvarList() (string, bool) {
	return cvarList.s, cvarList.set
}
