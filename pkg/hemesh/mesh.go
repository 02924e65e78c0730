// Package hemesh implements the half-edge topological mesh used as the
// control mesh for subdivision surfaces. Elements live in per-kind arenas
// and reference each other through integer indices, keeping adjacency
// traversal O(1) without pointer cycles.
//
// Half-edges are never mutated after construction; topology changes build
// a new mesh (or replace a mesh's contents wholesale) rather than patching
// links in place.
package hemesh

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Index types for the element arenas.
type (
	VertexIndex   int
	HalfEdgeIndex int
	EdgeIndex     int
	FaceIndex     int
)

// Sentinel for "no element". A half-edge with Pair == NoHalfEdge lies on
// the mesh boundary.
const (
	NoVertex   VertexIndex   = -1
	NoHalfEdge HalfEdgeIndex = -1
	NoEdge     EdgeIndex     = -1
	NoFace     FaceIndex     = -1
)

// Vertex carries a position, a texture coordinate, the sharp-feature flag,
// and one outgoing half-edge for traversal. For boundary vertices the
// outgoing half-edge is always an unpaired one, so boundary status can be
// read directly off it.
type Vertex struct {
	Position mgl64.Vec3
	UV       mgl64.Vec2
	Sharp    bool
	Outgoing HalfEdgeIndex
}

// HalfEdge is one traversal direction of a mesh edge.
type HalfEdge struct {
	Dest VertexIndex   // destination vertex
	Face FaceIndex     // incident face
	Next HalfEdgeIndex // next half-edge around Face
	Prev HalfEdgeIndex // previous half-edge around Face
	Pair HalfEdgeIndex // opposite direction, NoHalfEdge on a boundary
	Edge EdgeIndex     // owning logical edge
}

// Edge is a logical undirected edge wrapping one representative half-edge.
// Sharpness blends the subdivision edge rule between fully smooth (0) and
// fully creased (1).
type Edge struct {
	Half      HalfEdgeIndex
	Sharp     bool
	Sharpness float64
}

// Face is a closed loop of half-edges; Half is the loop entry.
type Face struct {
	Half HalfEdgeIndex
}

// Mesh owns the element arenas.
type Mesh struct {
	verts     []Vertex
	halfEdges []HalfEdge
	edges     []Edge
	faces     []Face
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// NumVertices returns the number of vertices.
func (m *Mesh) NumVertices() int { return len(m.verts) }

// NumHalfEdges returns the number of half-edges.
func (m *Mesh) NumHalfEdges() int { return len(m.halfEdges) }

// NumEdges returns the number of logical edges.
func (m *Mesh) NumEdges() int { return len(m.edges) }

// NumFaces returns the number of faces.
func (m *Mesh) NumFaces() int { return len(m.faces) }

// Vertex returns the vertex at index v. The pointer stays valid until the
// mesh is cleared or rebuilt; sharp flags are mutable through it.
func (m *Mesh) Vertex(v VertexIndex) *Vertex { return &m.verts[v] }

// HalfEdge returns the half-edge at index h.
func (m *Mesh) HalfEdge(h HalfEdgeIndex) *HalfEdge { return &m.halfEdges[h] }

// Edge returns the edge at index e; sharp flags are mutable through it.
func (m *Mesh) Edge(e EdgeIndex) *Edge { return &m.edges[e] }

// Face returns the face at index f.
func (m *Mesh) Face(f FaceIndex) *Face { return &m.faces[f] }

// Origin returns the source vertex of half-edge h.
func (m *Mesh) Origin(h HalfEdgeIndex) VertexIndex {
	return m.halfEdges[m.halfEdges[h].Prev].Dest
}

// EdgeEndpoints returns the two endpoint vertices of edge e, in the
// direction of its representative half-edge.
func (m *Mesh) EdgeEndpoints(e EdgeIndex) (from, to VertexIndex) {
	h := m.edges[e].Half
	return m.Origin(h), m.halfEdges[h].Dest
}

// IsBoundaryEdge reports whether edge e has a face on only one side.
func (m *Mesh) IsBoundaryEdge(e EdgeIndex) bool {
	return m.halfEdges[m.edges[e].Half].Pair == NoHalfEdge
}

// IsBoundaryVertex reports whether vertex v lies on the mesh boundary.
// Build guarantees that a boundary vertex's outgoing half-edge is one of
// its unpaired ones.
func (m *Mesh) IsBoundaryVertex(v VertexIndex) bool {
	return m.halfEdges[m.verts[v].Outgoing].Pair == NoHalfEdge
}

// FaceLoop returns the half-edges of face f in loop order.
func (m *Mesh) FaceLoop(f FaceIndex) []HalfEdgeIndex {
	var loop []HalfEdgeIndex
	start := m.faces[f].Half
	h := start
	for {
		loop = append(loop, h)
		h = m.halfEdges[h].Next
		if h == start {
			return loop
		}
	}
}

// FaceVertices returns the vertices of face f in loop order. Each vertex
// is the destination of the corresponding half-edge in FaceLoop.
func (m *Mesh) FaceVertices(f FaceIndex) []VertexIndex {
	loop := m.FaceLoop(f)
	vs := make([]VertexIndex, len(loop))
	for i, h := range loop {
		vs[i] = m.halfEdges[h].Dest
	}
	return vs
}

// VertexRing returns the outgoing half-edges around vertex v, and whether
// the ring closed. An open ring means v is a boundary vertex and the
// traversal stopped at the far boundary; smoothing rules must skip the
// missing side.
func (m *Mesh) VertexRing(v VertexIndex) (ring []HalfEdgeIndex, closed bool) {
	start := m.verts[v].Outgoing
	h := start
	for {
		ring = append(ring, h)
		// Rotate to the next outgoing half-edge: the incoming half-edge of
		// the current face at v, crossed to the neighboring face.
		incoming := m.halfEdges[h].Prev
		h = m.halfEdges[incoming].Pair
		if h == NoHalfEdge {
			return ring, false
		}
		if h == start {
			return ring, true
		}
	}
}

// Clear discards all elements, leaving an empty mesh.
func (m *Mesh) Clear() {
	m.verts = nil
	m.halfEdges = nil
	m.edges = nil
	m.faces = nil
}

// ReplaceWith replaces m's contents with other's. Used by the repair
// procedure to publish a fully rebuilt, already-validated mesh through an
// existing handle in one step.
func (m *Mesh) ReplaceWith(other *Mesh) {
	m.verts = other.verts
	m.halfEdges = other.halfEdges
	m.edges = other.edges
	m.faces = other.faces
}
