// SPDX-License-Identifier: GPL-2.0-or-later

package vis

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"gaunt/scene"
)

// Snapshot is a flat copy of output lists by name, kept after the lists
// themselves are reused. Its wire form is a protobuf message so runs can be
// stored and compared byte for byte.
type Snapshot struct {
	Zones   []string
	Opaque  []string
	Cloud   []string
	Glass   []string
	Points  []string
	Spots   []string
	Casters []string
	Flags   uint32
}

const (
	fieldZone   protowire.Number = 1
	fieldOpaque protowire.Number = 2
	fieldCloud  protowire.Number = 3
	fieldGlass  protowire.Number = 4
	fieldPoint  protowire.Number = 5
	fieldSpot   protowire.Number = 6
	fieldCaster protowire.Number = 7
	fieldFlags  protowire.Number = 8
)

func zoneNames(zs []*scene.Zone) []string {
	r := make([]string, 0, len(zs))
	for _, z := range zs {
		r = append(r, z.Name)
	}
	return r
}

func entityNames(es []*scene.Entity) []string {
	r := make([]string, 0, len(es))
	for _, e := range es {
		r = append(r, e.Name)
	}
	return r
}

func bulbNames(bs []*scene.Bulb) []string {
	r := make([]string, 0, len(bs))
	for _, b := range bs {
		r = append(r, b.Name)
	}
	return r
}

func (v *View) Snapshot() Snapshot {
	return Snapshot{
		Zones:  zoneNames(v.Zones),
		Opaque: entityNames(v.Opaque),
		Cloud:  entityNames(v.Cloud),
		Glass:  entityNames(v.Glass),
		Points: bulbNames(v.Points),
		Spots:  bulbNames(v.Spots),
	}
}

func (c *Cascade) Snapshot() Snapshot {
	return Snapshot{
		Zones:   zoneNames(c.Zones),
		Casters: entityNames(c.Ents),
	}
}

// CasterSnapshot records the result of BulbDrawList.
func CasterSnapshot(ents []*scene.Entity, flags scene.EntityFlag) Snapshot {
	return Snapshot{
		Casters: entityNames(ents),
		Flags:   uint32(flags),
	}
}

func appendStrings(b []byte, num protowire.Number, s []string) []byte {
	for _, v := range s {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, v)
	}
	return b
}

// Marshal encodes s. Equal snapshots encode to equal bytes.
func (s *Snapshot) Marshal() []byte {
	var b []byte
	b = appendStrings(b, fieldZone, s.Zones)
	b = appendStrings(b, fieldOpaque, s.Opaque)
	b = appendStrings(b, fieldCloud, s.Cloud)
	b = appendStrings(b, fieldGlass, s.Glass)
	b = appendStrings(b, fieldPoint, s.Points)
	b = appendStrings(b, fieldSpot, s.Spots)
	b = appendStrings(b, fieldCaster, s.Casters)
	if s.Flags != 0 {
		b = protowire.AppendTag(b, fieldFlags, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(s.Flags))
	}
	return b
}

func (s *Snapshot) list(num protowire.Number) *[]string {
	switch num {
	case fieldZone:
		return &s.Zones
	case fieldOpaque:
		return &s.Opaque
	case fieldCloud:
		return &s.Cloud
	case fieldGlass:
		return &s.Glass
	case fieldPoint:
		return &s.Points
	case fieldSpot:
		return &s.Spots
	case fieldCaster:
		return &s.Casters
	}
	return nil
}

// Unmarshal decodes b into s, replacing its contents. Unknown fields are
// skipped.
func (s *Snapshot) Unmarshal(b []byte) error {
	*s = Snapshot{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "snapshot tag")
		}
		b = b[n:]
		switch {
		case typ == protowire.BytesType && s.list(num) != nil:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return errors.Wrapf(protowire.ParseError(n), "snapshot field %d", num)
			}
			l := s.list(num)
			*l = append(*l, v)
			b = b[n:]
		case typ == protowire.VarintType && num == fieldFlags:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "snapshot flags")
			}
			s.Flags = uint32(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return errors.Wrapf(protowire.ParseError(n), "snapshot field %d", num)
			}
			b = b[n:]
		}
	}
	return nil
}

// String lists the non-empty lists one per line.
func (s *Snapshot) String() string {
	var sb strings.Builder
	line := func(name string, l []string) {
		if len(l) == 0 {
			return
		}
		fmt.Fprintf(&sb, "%s: %s\n", name, strings.Join(l, " "))
	}
	line("zones", s.Zones)
	line("opaque", s.Opaque)
	line("cloud", s.Cloud)
	line("glass", s.Glass)
	line("points", s.Points)
	line("spots", s.Spots)
	line("casters", s.Casters)
	if s.Flags != 0 {
		fmt.Fprintf(&sb, "flags: %#x\n", s.Flags)
	}
	return sb.String()
}
