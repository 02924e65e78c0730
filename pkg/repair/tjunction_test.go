package repair_test

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/heartwood/pkg/hemesh"
	"github.com/chazu/heartwood/pkg/kernel"
	"github.com/chazu/heartwood/pkg/primitive"
	"github.com/chazu/heartwood/pkg/repair"
)

// buildTJunction constructs three quads where vertex 6 sits exactly on
// the interior of edge (1,2) without being one of its endpoints:
//
//	3 ---------- 2 ---- 7
//	|            |  C   |
//	|     A      6 ---- 5
//	|            |  B   |
//	0 ---------- 1 ---- 4
//
// Faces B and C reference vertex 6; face A's left edge runs straight
// from 1 to 2 past it.
func buildTJunction(t *testing.T) *hemesh.Mesh {
	t.Helper()
	positions := []mgl64.Vec3{
		{0, 0, 0}, {2, 0, 0}, {2, 2, 0}, {0, 2, 0},
		{4, 0, 0}, {4, 1, 0}, {2, 1, 0}, {4, 2, 0},
	}
	verts := make([]hemesh.Vertex, len(positions))
	for i, p := range positions {
		verts[i] = hemesh.Vertex{Position: p}
	}
	faces := [][]hemesh.VertexIndex{
		{0, 1, 2, 3},
		{1, 4, 5, 6},
		{6, 5, 7, 2},
	}
	m, err := hemesh.Build(verts, faces)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return m
}

func findEdge(t *testing.T, m *hemesh.Mesh, a, b hemesh.VertexIndex) hemesh.EdgeIndex {
	t.Helper()
	for e := 0; e < m.NumEdges(); e++ {
		x, y := m.EdgeEndpoints(hemesh.EdgeIndex(e))
		if (x == a && y == b) || (x == b && y == a) {
			return hemesh.EdgeIndex(e)
		}
	}
	t.Fatalf("no edge between vertices %d and %d", a, b)
	return hemesh.NoEdge
}

func TestRepairResolvesTJunction(t *testing.T) {
	m := buildTJunction(t)

	n, err := repair.Repair(m)
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 junction resolved, got %d", n)
	}

	// The split adds a brand-new vertex at the interpolated point; the
	// hanging vertex 6 stays where it is.
	if m.NumVertices() != 9 {
		t.Errorf("expected 9 vertices after split, got %d", m.NumVertices())
	}
	split := hemesh.VertexIndex(8)
	want := mgl64.Vec3{2, 1, 0}
	if got := m.Vertex(split).Position; got.Sub(want).Len() > 1e-12 {
		t.Errorf("split vertex at %v, want %v", got, want)
	}
	if m.NumFaces() != 3 {
		t.Errorf("expected 3 faces, got %d", m.NumFaces())
	}

	// The face that owned the long edge is now a pentagon.
	pentagons := 0
	for f := 0; f < m.NumFaces(); f++ {
		if len(m.FaceLoop(hemesh.FaceIndex(f))) == 5 {
			pentagons++
		}
	}
	if pentagons != 1 {
		t.Errorf("expected exactly 1 pentagon, got %d", pentagons)
	}

	if err := m.Validate(); err != nil {
		t.Errorf("repaired mesh failed validation: %v", err)
	}
}

func TestRepairIdempotent(t *testing.T) {
	m := buildTJunction(t)
	if _, err := repair.Repair(m); err != nil {
		t.Fatalf("first Repair failed: %v", err)
	}
	n, err := repair.Repair(m)
	if err != nil {
		t.Fatalf("second Repair failed: %v", err)
	}
	if n != 0 {
		t.Errorf("second Repair resolved %d junctions, want 0", n)
	}
}

func TestRepairNearMissVertexIdempotent(t *testing.T) {
	// The hanging vertex sits 5e-5 off the edge, inside DistanceTol but
	// not exactly on it, and the edge length of 3 makes the split
	// parameter inexact. The split lands at the vertex's projection, so
	// on a second pass the hanging vertex is within tolerance of the new
	// endpoint and must not re-qualify as a junction.
	positions := []mgl64.Vec3{
		{0, 0, 0}, {2, 0, 0}, {2, 3, 0}, {0, 3, 0},
		{4, 0, 0}, {4, 1.1, 0}, {2.00005, 1.1, 0}, {4, 3, 0},
	}
	verts := make([]hemesh.Vertex, len(positions))
	for i, p := range positions {
		verts[i] = hemesh.Vertex{Position: p}
	}
	faces := [][]hemesh.VertexIndex{
		{0, 1, 2, 3},
		{1, 4, 5, 6},
		{6, 5, 7, 2},
	}
	m, err := hemesh.Build(verts, faces)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	n, err := repair.Repair(m)
	if err != nil {
		t.Fatalf("first Repair failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("first Repair resolved %d junctions, want 1", n)
	}
	if m.NumVertices() != 9 {
		t.Errorf("expected 9 vertices after split, got %d", m.NumVertices())
	}

	// The split vertex lies on the edge itself, at the projection.
	split := m.Vertex(8).Position
	if math.Abs(split.X()-2) > 1e-12 || math.Abs(split.Y()-1.1) > 1e-12 {
		t.Errorf("split vertex at %v, want projection (2, 1.1, 0)", split)
	}

	n, err = repair.Repair(m)
	if err != nil {
		t.Fatalf("second Repair failed: %v", err)
	}
	if n != 0 {
		t.Errorf("second Repair resolved %d junctions, want 0", n)
	}
	if m.NumVertices() != 9 {
		t.Errorf("second Repair changed the mesh: %d vertices", m.NumVertices())
	}
}

func TestRepairCleanMeshUntouched(t *testing.T) {
	m := primitive.Cube(2)
	n, err := repair.Repair(m)
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if n != 0 {
		t.Errorf("clean cube: expected 0 junctions, got %d", n)
	}
	if m.NumVertices() != 8 || m.NumFaces() != 6 {
		t.Error("clean mesh was modified")
	}
}

func TestRepairCarriesSharpnessToSplitHalves(t *testing.T) {
	m := buildTJunction(t)
	e := findEdge(t, m, 1, 2)
	edge := m.Edge(e)
	edge.Sharp = true
	edge.Sharpness = 0.75

	if _, err := repair.Repair(m); err != nil {
		t.Fatalf("Repair failed: %v", err)
	}

	split := hemesh.VertexIndex(8)
	for _, pair := range [][2]hemesh.VertexIndex{{1, split}, {split, 2}} {
		half := m.Edge(findEdge(t, m, pair[0], pair[1]))
		if !half.Sharp || half.Sharpness != 0.75 {
			t.Errorf("edge (%d,%d): sharp=%v sharpness=%g, want inherited crease 0.75",
				pair[0], pair[1], half.Sharp, half.Sharpness)
		}
	}
}

func TestRepairNilMesh(t *testing.T) {
	if _, err := repair.Repair(nil); !errors.Is(err, kernel.ErrInvalidOperation) {
		t.Errorf("Repair(nil): expected ErrInvalidOperation, got %v", err)
	}
}
