// SPDX-License-Identifier: GPL-2.0-or-later

package cvars

import (
	"strings"

	"gaunt/cvar"
)

var (
	Fov           *cvar.Cvar
	GlFarClip     *cvar.Cvar
	RDrawEntities *cvar.Cvar
	RDynamic      *cvar.Cvar
	RNoShadowList *cvar.Cvar
	RNoVis        *cvar.Cvar
	RShadows      *cvar.Cvar
	RSpeeds       *cvar.Cvar
	RSpotSphere   *cvar.Cvar
	RSunCascades  *cvar.Cvar
)

func init() {
	Fov = cvar.MustRegister("fov", "90", cvar.NONE)
	GlFarClip = cvar.MustRegister("gl_farclip", "16384", cvar.ARCHIVE)
	RDrawEntities = cvar.MustRegister("r_drawentities", "1", cvar.NONE)
	RDynamic = cvar.MustRegister("r_dynamic", "1", cvar.ARCHIVE)
	RNoVis = cvar.MustRegister("r_novis", "0", cvar.ARCHIVE)
	RShadows = cvar.MustRegister("r_shadows", "1", cvar.ARCHIVE)
	RSpeeds = cvar.MustRegister("r_speeds", "0", cvar.NONE)
	RSpotSphere = cvar.MustRegister("r_spotsphere", "1", cvar.ARCHIVE)
	// half extents of the sun shadow cascades, nearest first
	RSunCascades = cvar.MustRegister("r_sun_cascades", "128,512,2048", cvar.ARCHIVE)

	// comma separated mesh names that never cast shadows
	RNoShadowList = cvar.MustRegister("r_noshadow_list", "", cvar.NONE)
}

// NoShadow reports whether mesh is listed in r_noshadow_list.
func NoShadow(mesh string) bool {
	for _, m := range strings.Split(RNoShadowList.String(), ",") {
		if m = strings.TrimSpace(m); m != "" && m == mesh {
			return true
		}
	}
	return false
}
