// SPDX-License-Identifier: GPL-2.0-or-later

package geom

import (
	"testing"

	"gaunt/math/vec"
)

// unit square in the z=0 plane, counter clockwise seen from +z
func square(size float32) []vec.Vec3 {
	return []vec.Vec3{
		{-size, -size, 0},
		{size, -size, 0},
		{size, size, 0},
		{-size, size, 0},
	}
}

func TestPlaneDistance(t *testing.T) {
	p := NewPlane(vec.Vec3{0, 0, 1}, vec.Vec3{0, 0, 2})
	if got := p.Distance(vec.Vec3{5, 5, 5}); got != 3 {
		t.Errorf("Distance = %v want 3", got)
	}
	f := p.Flip()
	if got := f.Distance(vec.Vec3{5, 5, 5}); got != -3 {
		t.Errorf("flipped Distance = %v want -3", got)
	}
}

func TestBoxOnPlaneSide(t *testing.T) {
	p := NewPlane(vec.Vec3{1, 0, 0}, vec.Vec3{10, 0, 0})
	tests := []struct {
		mins, maxs vec.Vec3
		want       int
	}{
		{vec.Vec3{11, 0, 0}, vec.Vec3{12, 1, 1}, BoxOutside},
		{vec.Vec3{0, 0, 0}, vec.Vec3{5, 1, 1}, BoxInside},
		{vec.Vec3{5, 0, 0}, vec.Vec3{15, 1, 1}, BoxCrossing},
	}
	for _, tc := range tests {
		if got := p.BoxOnPlaneSide(tc.mins, tc.maxs); got != tc.want {
			t.Errorf("BoxOnPlaneSide(%v,%v) = %v want %v", tc.mins, tc.maxs, got, tc.want)
		}
	}
	n := NewPlane(vec.Vec3{-1, 0, 0}, vec.Vec3{10, 0, 0})
	if got := n.BoxOnPlaneSide(vec.Vec3{0, 0, 0}, vec.Vec3{5, 1, 1}); got != BoxOutside {
		t.Errorf("negative normal BoxOnPlaneSide = %v want %v", got, BoxOutside)
	}
}

func TestCutKept(t *testing.T) {
	p := NewPlane(vec.Vec3{1, 0, 0}, vec.Vec3{5, 0, 0})
	got, r := Cut(nil, square(1), p)
	if r != Kept || len(got) != 4 {
		t.Errorf("Cut = %v %v want kept with 4 verts", r, got)
	}
}

func TestCutRejected(t *testing.T) {
	p := NewPlane(vec.Vec3{-1, 0, 0}, vec.Vec3{5, 0, 0})
	got, r := Cut(nil, square(1), p)
	if r != Rejected || len(got) != 0 {
		t.Errorf("Cut = %v %v want rejected", r, got)
	}
}

func TestCutClipped(t *testing.T) {
	p := NewPlane(vec.Vec3{1, 0, 0}, vec.Vec3{0, 0, 0})
	got, r := Cut(nil, square(1), p)
	if r != Clipped {
		t.Fatalf("Cut = %v want clipped", r)
	}
	if len(got) != 4 {
		t.Fatalf("Cut returned %d verts want 4", len(got))
	}
	for _, v := range got {
		if v[0] > Epsilon {
			t.Errorf("vertex %v is outside the cutting plane", v)
		}
	}
}

func TestCutDegenerate(t *testing.T) {
	p := NewPlane(vec.Vec3{1, 0, 0}, vec.Vec3{5, 0, 0})
	line := []vec.Vec3{{0, 0, 0}, {1, 0, 0}}
	if _, r := Cut(nil, line, p); r != Rejected {
		t.Errorf("Cut of a two vertex loop = %v want rejected", r)
	}
	// only a sliver touching the plane survives
	tri := []vec.Vec3{{0, 0, 0}, {10, 1, 0}, {10, -1, 0}}
	q := NewPlane(vec.Vec3{1, 0, 0}, vec.Vec3{0, 0, 0})
	if _, r := Cut(nil, tri, q); r != Rejected {
		t.Errorf("Cut leaving a single vertex = %v want rejected", r)
	}
}

func TestPlaneFromVerts(t *testing.T) {
	p, ok := PlaneFromVerts(square(2))
	if !ok {
		t.Fatalf("PlaneFromVerts failed")
	}
	if !vec.NearlyEqual(p.Normal, vec.Vec3{0, 0, 1}, 1e-6) || p.Dist != 0 {
		t.Errorf("PlaneFromVerts = %v want z up through origin", p)
	}
	if _, ok := PlaneFromVerts([]vec.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}); ok {
		t.Errorf("collinear loop produced a plane")
	}
}

func TestEdgePlane(t *testing.T) {
	a := vec.Vec3{0, -1, 0}
	b := vec.Vec3{0, 1, 0}
	p, ok := EdgePlane(a, b, vec.Vec3{0, 0, -1}, vec.Vec3{-5, 0, 0})
	if !ok {
		t.Fatalf("EdgePlane failed")
	}
	if p.Distance(vec.Vec3{-5, 0, 0}) >= 0 {
		t.Errorf("inside point is not behind the edge plane %v", p)
	}
	if d := p.Distance(vec.Vec3{0, 0, 100}); d > 1e-4 || d < -1e-4 {
		t.Errorf("direction is not contained in the edge plane, d=%v", d)
	}
	if _, ok := EdgePlane(a, a, vec.Vec3{0, 0, 1}, vec.Vec3{}); ok {
		t.Errorf("zero length edge produced a plane")
	}
	if _, ok := EdgePlane(a, b, vec.Vec3{0, 1, 0}, vec.Vec3{}); ok {
		t.Errorf("edge parallel to the direction produced a plane")
	}
}

func TestClosestPointOnSegment(t *testing.T) {
	a := vec.Vec3{0, 0, 0}
	b := vec.Vec3{10, 0, 0}
	tests := []struct {
		p, want vec.Vec3
	}{
		{vec.Vec3{5, 3, 0}, vec.Vec3{5, 0, 0}},
		{vec.Vec3{-5, 3, 0}, a},
		{vec.Vec3{15, 3, 0}, b},
	}
	for _, tc := range tests {
		if got := ClosestPointOnSegment(tc.p, a, b); got != tc.want {
			t.Errorf("ClosestPointOnSegment(%v) = %v want %v", tc.p, got, tc.want)
		}
	}
	if got := ClosestPointOnSegment(vec.Vec3{1, 1, 1}, a, a); got != a {
		t.Errorf("zero length segment = %v want %v", got, a)
	}
}

func TestClosestPointOnLoop(t *testing.T) {
	got := ClosestPointOnLoop(vec.Vec3{3, 0, 0}, square(1))
	want := vec.Vec3{1, 0, 0}
	if got != want {
		t.Errorf("ClosestPointOnLoop = %v want %v", got, want)
	}
}

func TestProjectionInside(t *testing.T) {
	n := vec.Vec3{0, 0, 1}
	if !ProjectionInside(square(1), n, vec.Vec3{0.5, 0.5, 7}) {
		t.Errorf("point above the square is not inside")
	}
	if ProjectionInside(square(1), n, vec.Vec3{1.5, 0, 7}) {
		t.Errorf("point beside the square is inside")
	}
	rev := square(1)
	rev[1], rev[3] = rev[3], rev[1]
	if !ProjectionInside(rev, n, vec.Vec3{0, 0, -3}) {
		t.Errorf("winding changed the result")
	}
}
