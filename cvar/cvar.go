// SPDX-License-Identifier: GPL-2.0-or-later

package cvar

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"gaunt/conlog"
)

var (
	cvarArray  []*Cvar
	cvarByName = make(map[string]*Cvar)
)

type flag uint64

const (
	NONE    flag = 0
	ARCHIVE flag = 1
	NOTIFY  flag = 1 << 1
	ROM     flag = 1 << 6
)

type Cvar struct {
	archive bool
	notify  bool
	rom     bool
	name    string
	// stringValue is the truth, value the derived one
	stringValue string
	value       float32
}

func All() []*Cvar {
	return cvarArray
}

func (cv *Cvar) Archive() bool {
	return cv.archive
}

func (cv *Cvar) Notify() bool {
	return cv.notify
}

func (cv *Cvar) SetByString(s string) {
	if cv.rom {
		return
	}
	cv.stringValue = s
	pf, _ := strconv.ParseFloat(cv.stringValue, 32)
	cv.value = float32(pf)
	if cv.notify {
		conlog.Printf("\"%s\" changed to \"%s\"\n", cv.name, s)
	}
}

func (cv *Cvar) String() string {
	return cv.stringValue
}

func (cv *Cvar) Name() string {
	return cv.name
}

func (cv *Cvar) Value() float32 {
	return cv.value
}

func (cv *Cvar) Bool() bool {
	return cv.stringValue != "0"
}

// Floats parses a comma separated list of numbers. Unparsable entries are
// skipped.
func (cv *Cvar) Floats() []float32 {
	var r []float32
	for _, f := range strings.Split(cv.stringValue, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			continue
		}
		r = append(r, float32(v))
	}
	return r
}

func Get(name string) (*Cvar, bool) {
	cv, ok := cvarByName[name]
	return cv, ok
}

func Register(name, value string, flags flag) (*Cvar, error) {
	if _, ok := cvarByName[name]; ok {
		return nil, fmt.Errorf("can't register variable %s, already defined", name)
	}
	cv := &Cvar{
		name:    name,
		archive: flags&ARCHIVE != 0,
	}
	cv.SetByString(value)
	// set after the initial value so registration stays quiet and writable
	cv.notify = flags&NOTIFY != 0
	cv.rom = flags&ROM != 0
	cvarArray = append(cvarArray, cv)
	cvarByName[name] = cv
	return cv, nil
}

func MustRegister(n, v string, flag flag) *Cvar {
	cv, err := Register(n, v, flag)
	if err != nil {
		log.Panic(n)
	}
	return cv
}

// Set assigns value to the named cvar.
func Set(name, value string) error {
	cv, ok := Get(name)
	if !ok {
		return fmt.Errorf("cvar %s not found", name)
	}
	if cv.rom {
		return fmt.Errorf("cvar %s is read only", name)
	}
	cv.SetByString(value)
	return nil
}

// Parse applies an assignment of the form name=value.
func Parse(assignment string) error {
	name, value, ok := strings.Cut(assignment, "=")
	if !ok {
		return fmt.Errorf("expected name=value, got %q", assignment)
	}
	return Set(strings.TrimSpace(name), strings.TrimSpace(value))
}

// Execute treats args as a console line: a lone cvar name prints its value,
// a name followed by a value sets it. It reports whether args named a cvar.
func Execute(args []string) bool {
	if len(args) == 0 {
		return false
	}
	cv, ok := Get(args[0])
	if !ok {
		return false
	}
	if len(args) == 1 {
		conlog.Printf("\"%s\" is \"%s\"\n", cv.Name(), cv.String())
		return true
	}
	cv.SetByString(args[1])
	return true
}

// ExecuteLine runs one console line. It accepts name=value as well as the
// forms Execute takes.
func ExecuteLine(line string) error {
	if strings.Contains(line, "=") {
		return Parse(line)
	}
	args := strings.Fields(line)
	if !Execute(args) {
		return fmt.Errorf("unknown cvar in %q", line)
	}
	return nil
}

// List prints every cvar whose name starts with prefix.
func List(prefix string) {
	n := 0
	for _, v := range All() {
		if !strings.HasPrefix(v.Name(), prefix) {
			continue
		}
		a := " "
		if v.Archive() {
			a = "*"
		}
		s := " "
		if v.Notify() {
			s = "s"
		}
		conlog.Printf("%s%s %s \"%s\"\n", a, s, v.Name(), v.String())
		n++
	}
	if prefix != "" {
		conlog.Printf("%v cvars beginning with \"%s\"\n", n, prefix)
		return
	}
	conlog.Printf("%v cvars\n", n)
}
