package sdfx

import (
	"math"
	"testing"
)

func TestBoxBoundingBox(t *testing.T) {
	k := New()
	s := k.Box(2, 4, 6)
	min, max := s.BoundingBox()
	want := [3]float64{1, 2, 3}
	for axis := 0; axis < 3; axis++ {
		if math.Abs(max[axis]-want[axis]) > 1e-9 || math.Abs(min[axis]+want[axis]) > 1e-9 {
			t.Errorf("axis %d: bounds [%g, %g], want [%g, %g]",
				axis, min[axis], max[axis], -want[axis], want[axis])
		}
	}
}

func TestTranslateShiftsBounds(t *testing.T) {
	k := New()
	s := k.Translate(k.Box(2, 2, 2), 10, 0, 0)
	min, max := s.BoundingBox()
	if math.Abs(min.X()-9) > 1e-9 || math.Abs(max.X()-11) > 1e-9 {
		t.Errorf("x bounds [%g, %g], want [9, 11]", min.X(), max.X())
	}
}

func TestUnionBoundsContainOperands(t *testing.T) {
	k := New()
	a := k.Box(2, 2, 2)
	b := k.Translate(k.Box(2, 2, 2), 5, 0, 0)
	min, max := k.Union(a, b).BoundingBox()
	if min.X() > -1+1e-9 || max.X() < 6-1e-9 {
		t.Errorf("union x bounds [%g, %g] do not span both operands", min.X(), max.X())
	}
}

func TestToBodyBox(t *testing.T) {
	if testing.Short() {
		t.Skip("marching cubes is slow")
	}
	k := New()
	body, err := k.ToBody(k.Box(2, 2, 2))
	if err != nil {
		t.Fatalf("ToBody failed: %v", err)
	}
	if body.TriangleCount() == 0 {
		t.Fatal("expected a non-empty tessellation")
	}
	// Triangle soup: three dedicated vertices per triangle.
	if body.VertexCount() != 3*body.TriangleCount() {
		t.Errorf("%d vertices for %d triangles, want 3 per triangle",
			body.VertexCount(), body.TriangleCount())
	}

	// All positions stay near the box; UVs are normalized to its extent.
	for i := 0; i < body.VertexCount(); i++ {
		v := body.Vertex(i)
		for axis := 0; axis < 3; axis++ {
			if math.Abs(v.Position[axis]) > 1.2 {
				t.Fatalf("vertex %d at %v escapes the box", i, v.Position)
			}
		}
		if v.UV.X() < -0.2 || v.UV.X() > 1.2 || v.UV.Y() < -0.2 || v.UV.Y() > 1.2 {
			t.Fatalf("vertex %d UV %v outside the normalized range", i, v.UV)
		}
	}
}

func TestToBodyDifference(t *testing.T) {
	if testing.Short() {
		t.Skip("marching cubes is slow")
	}
	k := New()
	solid := k.Difference(k.Box(2, 2, 2), k.Cylinder(3, 0.5, 0))
	body, err := k.ToBody(solid)
	if err != nil {
		t.Fatalf("ToBody failed: %v", err)
	}
	if body.TriangleCount() == 0 {
		t.Fatal("expected a non-empty tessellation")
	}
}
