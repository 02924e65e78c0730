package primitive_test

import (
	"testing"

	"github.com/chazu/heartwood/pkg/hemesh"
	"github.com/chazu/heartwood/pkg/primitive"
)

func TestCube(t *testing.T) {
	m := primitive.Cube(2)
	if m.NumVertices() != 8 || m.NumEdges() != 12 || m.NumFaces() != 6 {
		t.Fatalf("cube counts: %d vertices, %d edges, %d faces",
			m.NumVertices(), m.NumEdges(), m.NumFaces())
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("cube failed validation: %v", err)
	}
	for f := 0; f < m.NumFaces(); f++ {
		if len(m.FaceLoop(hemesh.FaceIndex(f))) != 4 {
			t.Errorf("cube face %d is not a quad", f)
		}
	}
	for e := 0; e < m.NumEdges(); e++ {
		if m.IsBoundaryEdge(hemesh.EdgeIndex(e)) {
			t.Errorf("closed cube has boundary edge %d", e)
		}
	}
}

func TestCubeExtent(t *testing.T) {
	m := primitive.Cube(4)
	for v := 0; v < m.NumVertices(); v++ {
		p := m.Vertex(hemesh.VertexIndex(v)).Position
		for axis := 0; axis < 3; axis++ {
			if p[axis] != 2 && p[axis] != -2 {
				t.Fatalf("vertex %d coordinate %d = %g, want +/-2", v, axis, p[axis])
			}
		}
	}
}

func TestGrid(t *testing.T) {
	m := primitive.Grid(3, 2, 1)
	if m.NumVertices() != 12 {
		t.Errorf("expected 12 vertices, got %d", m.NumVertices())
	}
	if m.NumFaces() != 6 {
		t.Errorf("expected 6 faces, got %d", m.NumFaces())
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("grid failed validation: %v", err)
	}

	boundary := 0
	for e := 0; e < m.NumEdges(); e++ {
		if m.IsBoundaryEdge(hemesh.EdgeIndex(e)) {
			boundary++
		}
	}
	// The rim of a 3x2 grid has 2*(3+2) boundary edges.
	if boundary != 10 {
		t.Errorf("expected 10 boundary edges, got %d", boundary)
	}
}

func TestGridClampsDegenerate(t *testing.T) {
	m := primitive.Grid(0, 0, 1)
	if m.NumFaces() != 1 {
		t.Errorf("degenerate grid should clamp to a single quad, got %d faces", m.NumFaces())
	}
}
