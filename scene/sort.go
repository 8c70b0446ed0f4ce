// SPDX-License-Identifier: GPL-2.0-or-later

package scene

import (
	"bytes"
	"cmp"
	"slices"
)

func compareMaterial(a, b *Entity) int {
	am, bm := a.meshHandle(), b.meshHandle()
	if c := bytes.Compare(am[:], bm[:]); c != 0 {
		return c
	}
	at, bt := a.textureHandle(), b.textureHandle()
	if c := bytes.Compare(at[:], bt[:]); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortByMaterial orders by mesh, then texture, then ID.
func SortByMaterial(ents []*Entity) {
	slices.SortFunc(ents, compareMaterial)
}

// SortCasters puts opaque entities before translucent ones, each group in
// material order.
func SortCasters(ents []*Entity) {
	slices.SortFunc(ents, func(a, b *Entity) int {
		at, bt := a.Translucent(), b.Translucent()
		if at != bt {
			if at {
				return 1
			}
			return -1
		}
		return compareMaterial(a, b)
	})
}
