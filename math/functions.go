package math

import (
	"github.com/chewxy/math32"
)

const (
	Pi = math32.Pi
)

func Deg2Rad(a float32) float32 {
	return a * Pi / 180
}

func Rad2Deg(a float32) float32 {
	return a * 180 / Pi
}
