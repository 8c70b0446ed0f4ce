// SPDX-License-Identifier: GPL-2.0-or-later

// Package conlog is the console printf. It defaults to slog and can be
// redirected by the binary or by tests.
package conlog

import (
	"fmt"
	"log/slog"
	"strings"
)

var p = defaultPrintf

func defaultPrintf(format string, v ...interface{}) {
	slog.Info(strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}

// SetPrintf redirects console output. A nil f restores the default.
func SetPrintf(f func(string, ...interface{})) {
	if f == nil {
		f = defaultPrintf
	}
	p = f
}

func Printf(format string, v ...interface{}) {
	p(format, v...)
}
