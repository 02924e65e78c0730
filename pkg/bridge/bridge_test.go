package bridge_test

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/heartwood/pkg/bridge"
	"github.com/chazu/heartwood/pkg/hemesh"
	"github.com/chazu/heartwood/pkg/kernel"
	"github.com/chazu/heartwood/pkg/primitive"
)

func TestToBodyCube(t *testing.T) {
	body, err := bridge.ToBody(primitive.Cube(2))
	if err != nil {
		t.Fatalf("ToBody failed: %v", err)
	}
	if body.VertexCount() != 8 {
		t.Errorf("expected 8 vertices, got %d", body.VertexCount())
	}
	// Six quads fan into two triangles each.
	if body.TriangleCount() != 12 {
		t.Errorf("expected 12 triangles, got %d", body.TriangleCount())
	}

	// Cube corners average three orthogonal face normals, giving the unit
	// diagonal direction.
	invSqrt3 := 1.0 / math.Sqrt(3)
	for i := 0; i < body.VertexCount(); i++ {
		v := body.Vertex(i)
		for axis := 0; axis < 3; axis++ {
			wantMag := invSqrt3
			if math.Abs(math.Abs(v.Normal[axis])-wantMag) > 1e-9 {
				t.Errorf("vertex %d normal %v: axis %d magnitude not 1/sqrt(3)", i, v.Normal, axis)
			}
			// Normal points outward, matching the corner's octant.
			if math.Signbit(v.Normal[axis]) != math.Signbit(v.Position[axis]) {
				t.Errorf("vertex %d normal %v does not point away from center %v", i, v.Normal, v.Position)
			}
		}
	}
}

func TestRoundTripCube(t *testing.T) {
	body, err := bridge.ToBody(primitive.Cube(2))
	if err != nil {
		t.Fatalf("ToBody failed: %v", err)
	}
	m, err := bridge.FromBody(body)
	if err != nil {
		t.Fatalf("FromBody failed: %v", err)
	}

	// One mesh vertex per body vertex; coplanar triangles are not merged
	// back into quads.
	if m.NumVertices() != 8 {
		t.Errorf("expected 8 vertices, got %d", m.NumVertices())
	}
	if m.NumFaces() != 12 {
		t.Errorf("expected 12 triangle faces, got %d", m.NumFaces())
	}
	if err := m.Validate(); err != nil {
		t.Errorf("round-tripped mesh failed validation: %v", err)
	}
}

func TestFromBodyInfersSharpEdges(t *testing.T) {
	body, err := bridge.ToBody(primitive.Cube(2))
	if err != nil {
		t.Fatalf("ToBody failed: %v", err)
	}
	m, err := bridge.FromBody(body)
	if err != nil {
		t.Fatalf("FromBody failed: %v", err)
	}

	// The triangulated cube has 18 edges: the 12 original 90-degree edges
	// come back sharp, the 6 coplanar face diagonals stay smooth.
	if m.NumEdges() != 18 {
		t.Fatalf("expected 18 edges, got %d", m.NumEdges())
	}
	sharp := 0
	for e := 0; e < m.NumEdges(); e++ {
		edge := m.Edge(hemesh.EdgeIndex(e))
		if edge.Sharp {
			sharp++
			if edge.Sharpness != 1.0 {
				t.Errorf("inferred sharp edge %d has sharpness %g, want 1.0", e, edge.Sharpness)
			}
		}
	}
	if sharp != 12 {
		t.Errorf("expected 12 inferred sharp edges, got %d", sharp)
	}
}

func TestBridgeArgumentErrors(t *testing.T) {
	if _, err := bridge.ToBody(nil); !errors.Is(err, kernel.ErrInvalidArgument) {
		t.Errorf("ToBody(nil): expected ErrInvalidArgument, got %v", err)
	}
	if _, err := bridge.FromBody(nil); !errors.Is(err, kernel.ErrInvalidArgument) {
		t.Errorf("FromBody(nil): expected ErrInvalidArgument, got %v", err)
	}
}

func TestToBodyPreservesUV(t *testing.T) {
	m := primitive.Grid(1, 1, 2)
	for v := 0; v < m.NumVertices(); v++ {
		vert := m.Vertex(hemesh.VertexIndex(v))
		vert.UV = mgl64.Vec2{vert.Position.X() / 2, vert.Position.Y() / 2}
	}
	body, err := bridge.ToBody(m)
	if err != nil {
		t.Fatalf("ToBody failed: %v", err)
	}
	for i := 0; i < body.VertexCount(); i++ {
		bv := body.Vertex(i)
		want := mgl64.Vec2{bv.Position.X() / 2, bv.Position.Y() / 2}
		if bv.UV.Sub(want).Len() > 1e-12 {
			t.Errorf("vertex %d UV %v, want %v", i, bv.UV, want)
		}
	}
}
