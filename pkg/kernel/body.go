package kernel

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Geometric tolerances for Body validation.
const (
	// coincidentTol is the distance below which two triangle corners are
	// considered the same point.
	coincidentTol = 1e-10
	// areaTol rejects triangles whose doubled area falls below this bound.
	areaTol = 1e-12
	// normalTol is the allowed deviation of a vertex normal from unit length.
	normalTol = 1e-6
)

// Vertex is one boundary representation vertex: position, unit normal,
// and texture coordinate.
type Vertex struct {
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	UV       mgl64.Vec2
}

// Triangle indexes three vertices of a Body.
type Triangle [3]int

// Body is an immutable triangulated boundary representation. It is the
// interchange format for boolean composition and display. Construction
// validates indices and geometry; any edit produces a new Body.
type Body struct {
	verts []Vertex
	tris  []Triangle
}

// NewBody validates the vertex and triangle lists and constructs a Body.
// It fails with ErrInvalidArgument on out-of-range indices, triangles with
// coincident or near-coincident corners, near-zero-area triangles, and
// non-unit vertex normals.
func NewBody(verts []Vertex, tris []Triangle) (*Body, error) {
	if len(verts) < 3 || len(tris) < 1 {
		return nil, fmt.Errorf("%w: body needs at least 3 vertices and 1 triangle, got %d/%d",
			ErrInvalidArgument, len(verts), len(tris))
	}
	for i, v := range verts {
		if d := math.Abs(v.Normal.Len() - 1); d > normalTol {
			return nil, fmt.Errorf("%w: vertex %d has non-unit normal (|n|=%g)",
				ErrInvalidArgument, i, v.Normal.Len())
		}
	}
	for i, t := range tris {
		for _, idx := range t {
			if idx < 0 || idx >= len(verts) {
				return nil, fmt.Errorf("%w: triangle %d references vertex %d, have %d vertices",
					ErrInvalidArgument, i, idx, len(verts))
			}
		}
		a := verts[t[0]].Position
		b := verts[t[1]].Position
		c := verts[t[2]].Position
		if a.Sub(b).Len() < coincidentTol || b.Sub(c).Len() < coincidentTol || c.Sub(a).Len() < coincidentTol {
			return nil, fmt.Errorf("%w: triangle %d has coincident vertices", ErrInvalidArgument, i)
		}
		if b.Sub(a).Cross(c.Sub(a)).Len() < areaTol {
			return nil, fmt.Errorf("%w: triangle %d has near-zero area", ErrInvalidArgument, i)
		}
	}

	body := &Body{
		verts: make([]Vertex, len(verts)),
		tris:  make([]Triangle, len(tris)),
	}
	copy(body.verts, verts)
	copy(body.tris, tris)
	return body, nil
}

// VertexCount returns the number of vertices.
func (b *Body) VertexCount() int { return len(b.verts) }

// TriangleCount returns the number of triangles.
func (b *Body) TriangleCount() int { return len(b.tris) }

// Vertex returns the vertex at index i.
func (b *Body) Vertex(i int) Vertex { return b.verts[i] }

// Triangle returns the triangle at index i.
func (b *Body) Triangle(i int) Triangle { return b.tris[i] }

// Vertices returns a copy of the vertex list.
func (b *Body) Vertices() []Vertex {
	out := make([]Vertex, len(b.verts))
	copy(out, b.verts)
	return out
}

// Triangles returns a copy of the triangle list.
func (b *Body) Triangles() []Triangle {
	out := make([]Triangle, len(b.tris))
	copy(out, b.tris)
	return out
}
