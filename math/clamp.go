// SPDX-License-Identifier: GPL-2.0-or-later

package math

import "cmp"

// Clamp limits val to [lo, hi]. lo wins when the bounds cross.
func Clamp[K cmp.Ordered](lo, val, hi K) K {
	return max(lo, min(val, hi))
}
