// Package bridge converts between the half-edge topological mesh and the
// flat triangulated boundary representation. The conversion is lossy in
// both directions: polygon faces are fan-triangulated going out and are
// not re-merged coming back, and sharp features are re-inferred from
// dihedral angles rather than recovered.
package bridge

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/heartwood/pkg/hemesh"
	"github.com/chazu/heartwood/pkg/kernel"
)

// SharpAngleDeg is the dihedral angle above which a reconstructed edge is
// marked fully sharp.
const SharpAngleDeg = 30.0

// ToBody flattens a topological mesh into an immutable boundary
// representation. Vertex normals are the normalized average of the
// incident faces' unit normals; polygon faces are fan-triangulated from
// their first loop vertex, which is exact for the convex planar quads
// subdivision produces.
func ToBody(m *hemesh.Mesh) (*kernel.Body, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: bridge needs a mesh", kernel.ErrInvalidArgument)
	}

	faceNormals := make([]mgl64.Vec3, m.NumFaces())
	for f := 0; f < m.NumFaces(); f++ {
		faceNormals[f] = faceNormal(m, hemesh.FaceIndex(f))
	}

	verts := make([]kernel.Vertex, m.NumVertices())
	for v := 0; v < m.NumVertices(); v++ {
		vi := hemesh.VertexIndex(v)
		ring, _ := m.VertexRing(vi)
		var n mgl64.Vec3
		for _, h := range ring {
			n = n.Add(faceNormals[m.HalfEdge(h).Face])
		}
		if n.Len() < 1e-12 {
			// Incident normals cancelled; fall back to one face's normal.
			n = faceNormals[m.HalfEdge(ring[0]).Face]
		}
		vert := m.Vertex(vi)
		verts[v] = kernel.Vertex{
			Position: vert.Position,
			Normal:   n.Normalize(),
			UV:       vert.UV,
		}
	}

	var tris []kernel.Triangle
	for f := 0; f < m.NumFaces(); f++ {
		vs := m.FaceVertices(hemesh.FaceIndex(f))
		for i := 1; i < len(vs)-1; i++ {
			tris = append(tris, kernel.Triangle{int(vs[0]), int(vs[i]), int(vs[i+1])})
		}
	}

	return kernel.NewBody(verts, tris)
}

// FromBody reconstructs a topological mesh from a boundary representation.
// One mesh vertex is created per body vertex (normals are dropped; they
// are re-derived on the way back out) and one face per triangle. Interior
// edges whose adjacent faces meet at more than SharpAngleDeg are marked
// fully sharp.
func FromBody(b *kernel.Body) (*hemesh.Mesh, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: bridge needs a body", kernel.ErrInvalidArgument)
	}

	verts := make([]hemesh.Vertex, b.VertexCount())
	for i := range verts {
		bv := b.Vertex(i)
		verts[i] = hemesh.Vertex{Position: bv.Position, UV: bv.UV}
	}
	faces := make([][]hemesh.VertexIndex, b.TriangleCount())
	for i := range faces {
		t := b.Triangle(i)
		faces[i] = []hemesh.VertexIndex{
			hemesh.VertexIndex(t[0]), hemesh.VertexIndex(t[1]), hemesh.VertexIndex(t[2]),
		}
	}

	m, err := hemesh.Build(verts, faces)
	if err != nil {
		return nil, fmt.Errorf("%w: body does not form a valid mesh: %v", kernel.ErrInvalidArgument, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: reconstructed mesh failed validation: %v", kernel.ErrInvalidOperation, err)
	}

	inferSharpEdges(m)
	return m, nil
}

// inferSharpEdges marks interior edges sharp where the dihedral angle
// between the adjacent face normals exceeds SharpAngleDeg. A one-way,
// lossy heuristic: authoring intent is not recoverable from a flat mesh.
func inferSharpEdges(m *hemesh.Mesh) {
	threshold := SharpAngleDeg * math.Pi / 180

	faceNormals := make([]mgl64.Vec3, m.NumFaces())
	for f := 0; f < m.NumFaces(); f++ {
		faceNormals[f] = faceNormal(m, hemesh.FaceIndex(f))
	}

	for e := 0; e < m.NumEdges(); e++ {
		ei := hemesh.EdgeIndex(e)
		if m.IsBoundaryEdge(ei) {
			continue
		}
		h := m.Edge(ei).Half
		n1 := faceNormals[m.HalfEdge(h).Face]
		n2 := faceNormals[m.HalfEdge(m.HalfEdge(h).Pair).Face]
		cos := n1.Dot(n2)
		if cos > 1 {
			cos = 1
		} else if cos < -1 {
			cos = -1
		}
		if math.Acos(cos) > threshold {
			edge := m.Edge(ei)
			edge.Sharp = true
			edge.Sharpness = 1.0
		}
	}
}

// faceNormal computes a face's unit normal from its first three loop
// vertices.
func faceNormal(m *hemesh.Mesh, f hemesh.FaceIndex) mgl64.Vec3 {
	vs := m.FaceVertices(f)
	a := m.Vertex(vs[0]).Position
	b := m.Vertex(vs[1]).Position
	c := m.Vertex(vs[2]).Position
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() < 1e-12 {
		return mgl64.Vec3{}
	}
	return n.Normalize()
}
