package subdiv

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/heartwood/pkg/hemesh"
	"github.com/chazu/heartwood/pkg/kernel"
)

// Refine computes one Catmull-Clark refinement pass and returns a new,
// finer mesh. The input mesh is read-only. Every original face of degree d
// yields d quads; sharp features are re-derived onto the elements of the
// new mesh that continue them.
//
// Boundary vertices keep their original position and UV instead of using a
// boundary smoothing rule. That is the established behavior of this
// kernel, not an oversight; callers and tests rely on the passthrough.
func Refine(m *hemesh.Mesh) (*hemesh.Mesh, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: refine needs a mesh", kernel.ErrInvalidArgument)
	}

	nv := m.NumVertices()
	ne := m.NumEdges()
	nf := m.NumFaces()

	// Face points: centroid of each face's vertices.
	facePos := make([]mgl64.Vec3, nf)
	faceUV := make([]mgl64.Vec2, nf)
	for f := 0; f < nf; f++ {
		var p mgl64.Vec3
		var uv mgl64.Vec2
		vs := m.FaceVertices(hemesh.FaceIndex(f))
		for _, v := range vs {
			p = p.Add(m.Vertex(v).Position)
			uv = uv.Add(m.Vertex(v).UV)
		}
		inv := 1.0 / float64(len(vs))
		facePos[f] = p.Mul(inv)
		faceUV[f] = uv.Mul(inv)
	}

	// Edge points: midpoint on the boundary, 4-way average in the
	// interior, then blended toward the crease midpoint by sharpness.
	edgePos := make([]mgl64.Vec3, ne)
	edgeUV := make([]mgl64.Vec2, ne)
	for e := 0; e < ne; e++ {
		ei := hemesh.EdgeIndex(e)
		a, b := m.EdgeEndpoints(ei)
		va, vb := m.Vertex(a), m.Vertex(b)
		mid := va.Position.Add(vb.Position).Mul(0.5)
		midUV := va.UV.Add(vb.UV).Mul(0.5)

		regular := mid
		regularUV := midUV
		if !m.IsBoundaryEdge(ei) {
			h := m.Edge(ei).Half
			f1 := m.HalfEdge(h).Face
			f2 := m.HalfEdge(m.HalfEdge(h).Pair).Face
			regular = va.Position.Add(vb.Position).Add(facePos[f1]).Add(facePos[f2]).Mul(0.25)
			regularUV = va.UV.Add(vb.UV).Add(faceUV[f1]).Add(faceUV[f2]).Mul(0.25)
		}

		edge := m.Edge(ei)
		switch {
		case !edge.Sharp:
			edgePos[e], edgeUV[e] = regular, regularUV
		case edge.Sharpness >= 1:
			edgePos[e], edgeUV[e] = mid, midUV
		default:
			t := edge.Sharpness
			edgePos[e] = regular.Mul(1 - t).Add(mid.Mul(t))
			edgeUV[e] = regularUV.Mul(1 - t).Add(midUV.Mul(t))
		}
	}

	// Vertex points: (Q + 2R + (n-3)P) / n for interior vertices, where
	// Q averages the incident face points and R the incident edge
	// midpoints. Sharp vertices pin to P; boundary vertices pass through.
	vertPos := make([]mgl64.Vec3, nv)
	vertUV := make([]mgl64.Vec2, nv)
	for v := 0; v < nv; v++ {
		vi := hemesh.VertexIndex(v)
		vert := m.Vertex(vi)
		ring, closed := m.VertexRing(vi)
		if vert.Sharp || !closed {
			vertPos[v] = vert.Position
			vertUV[v] = vert.UV
			continue
		}
		n := float64(len(ring))
		var q mgl64.Vec3
		var qUV mgl64.Vec2
		var r mgl64.Vec3
		var rUV mgl64.Vec2
		for _, h := range ring {
			he := m.HalfEdge(h)
			q = q.Add(facePos[he.Face])
			qUV = qUV.Add(faceUV[he.Face])
			a, b := m.EdgeEndpoints(he.Edge)
			r = r.Add(m.Vertex(a).Position.Add(m.Vertex(b).Position).Mul(0.5))
			rUV = rUV.Add(m.Vertex(a).UV.Add(m.Vertex(b).UV).Mul(0.5))
		}
		q = q.Mul(1 / n)
		qUV = qUV.Mul(1 / n)
		r = r.Mul(1 / n)
		rUV = rUV.Mul(1 / n)
		vertPos[v] = q.Add(r.Mul(2)).Add(vert.Position.Mul(n - 3)).Mul(1 / n)
		vertUV[v] = qUV.Add(rUV.Mul(2)).Add(vert.UV.Mul(n - 3)).Mul(1 / n)
	}

	// New vertex arena layout: vertex points, then edge points, then face
	// points. A vertex point inherits the sharp flag of its source vertex.
	verts := make([]hemesh.Vertex, 0, nv+ne+nf)
	for v := 0; v < nv; v++ {
		verts = append(verts, hemesh.Vertex{
			Position: vertPos[v],
			UV:       vertUV[v],
			Sharp:    m.Vertex(hemesh.VertexIndex(v)).Sharp,
		})
	}
	for e := 0; e < ne; e++ {
		verts = append(verts, hemesh.Vertex{Position: edgePos[e], UV: edgeUV[e]})
	}
	for f := 0; f < nf; f++ {
		verts = append(verts, hemesh.Vertex{Position: facePos[f], UV: faceUV[f]})
	}
	epBase := hemesh.VertexIndex(nv)
	fpBase := hemesh.VertexIndex(nv + ne)

	// One quad per (face, corner): corner vertex point, edge point of the
	// outgoing side, face point, edge point of the incoming side. Winding
	// follows the parent face.
	faces := make([][]hemesh.VertexIndex, 0, 4*nf)
	for f := 0; f < nf; f++ {
		fp := fpBase + hemesh.VertexIndex(f)
		for _, h := range m.FaceLoop(hemesh.FaceIndex(f)) {
			he := m.HalfEdge(h)
			next := m.HalfEdge(he.Next)
			faces = append(faces, []hemesh.VertexIndex{
				hemesh.VertexIndex(he.Dest),
				epBase + hemesh.VertexIndex(next.Edge),
				fp,
				epBase + hemesh.VertexIndex(he.Edge),
			})
		}
	}

	out, err := hemesh.Build(verts, faces)
	if err != nil {
		return nil, fmt.Errorf("%w: subdivision resulted in invalid topology: %v", kernel.ErrInvalidOperation, err)
	}

	// Re-derive creases: a new edge between a vertex point and an edge
	// point is one half of an original edge and continues its sharpness.
	// Edges touching a face point are interior to an original face and
	// stay smooth.
	for e := 0; e < out.NumEdges(); e++ {
		a, b := out.EdgeEndpoints(hemesh.EdgeIndex(e))
		if a > b {
			a, b = b, a
		}
		if a < epBase && b >= epBase && b < fpBase {
			src := m.Edge(hemesh.EdgeIndex(b - epBase))
			if src.Sharp {
				dst := out.Edge(hemesh.EdgeIndex(e))
				dst.Sharp = true
				dst.Sharpness = src.Sharpness
			}
		}
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%w: subdivision resulted in invalid topology: %v", kernel.ErrInvalidOperation, err)
	}
	return out, nil
}
