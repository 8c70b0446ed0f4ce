// SPDX-License-Identifier: GPL-2.0-or-later

package scene

import (
	"math"
)

// Counter hands out generation codes. A stamp equal to the current code
// means "already handled this walk". When the code space is used up the
// owner's stamps are cleared and counting restarts at 1.
type Counter struct {
	code  uint32
	reset func()
}

func (c *Counter) Code() uint32 {
	return c.code
}

func (c *Counter) Next() uint32 {
	if c.code == math.MaxUint32 {
		if c.reset != nil {
			c.reset()
		}
		c.code = 0
	}
	c.code++
	return c.code
}

// Set forces the current code, for tests and debugging.
func (c *Counter) Set(code uint32) {
	c.code = code
}
