package hemesh

import (
	"fmt"
)

// directedEdge keys the pairing map during construction.
type directedEdge struct {
	from, to VertexIndex
}

// Build constructs a mesh from vertex positions/UVs and face vertex loops.
// Faces must share a consistent winding; an interior edge is recognized by
// its two opposite-direction half-edges. A directed edge appearing twice
// means more than two faces meet at the edge (non-manifold) and the build
// fails. Unmatched half-edges become boundary.
func Build(verts []Vertex, faces [][]VertexIndex) (*Mesh, error) {
	m := New()
	m.verts = make([]Vertex, len(verts))
	copy(m.verts, verts)
	for i := range m.verts {
		m.verts[i].Outgoing = NoHalfEdge
	}

	pairing := make(map[directedEdge]HalfEdgeIndex)

	for fi, loop := range faces {
		if len(loop) < 3 {
			return nil, fmt.Errorf("face %d has %d vertices, need at least 3", fi, len(loop))
		}
		face := FaceIndex(fi)
		base := HalfEdgeIndex(len(m.halfEdges))
		n := HalfEdgeIndex(len(loop))

		for i, to := range loop {
			from := loop[(i+len(loop)-1)%len(loop)]
			if from < 0 || int(from) >= len(m.verts) || to < 0 || int(to) >= len(m.verts) {
				return nil, fmt.Errorf("face %d references vertex out of range", fi)
			}
			if from == to {
				return nil, fmt.Errorf("face %d has a degenerate zero-length edge at vertex %d", fi, to)
			}
			h := base + HalfEdgeIndex(i)
			key := directedEdge{from, to}
			if _, dup := pairing[key]; dup {
				return nil, fmt.Errorf("non-manifold: directed edge %d->%d appears in more than one face", from, to)
			}
			pairing[key] = h

			m.halfEdges = append(m.halfEdges, HalfEdge{
				Dest: to,
				Face: face,
				Next: base + (HalfEdgeIndex(i)+1)%n,
				Prev: base + (HalfEdgeIndex(i)+n-1)%n,
				Pair: NoHalfEdge,
				Edge: NoEdge,
			})
		}
		m.faces = append(m.faces, Face{Half: base})
	}

	// Pair opposite half-edges and allocate one logical edge per pair (or
	// per unmatched boundary half-edge).
	for h := range m.halfEdges {
		he := &m.halfEdges[h]
		if he.Edge != NoEdge {
			continue
		}
		from := m.Origin(HalfEdgeIndex(h))
		opp, ok := pairing[directedEdge{he.Dest, from}]
		e := EdgeIndex(len(m.edges))
		m.edges = append(m.edges, Edge{Half: HalfEdgeIndex(h)})
		he.Edge = e
		if ok {
			he.Pair = opp
			m.halfEdges[opp].Pair = HalfEdgeIndex(h)
			m.halfEdges[opp].Edge = e
		}
	}

	// Attach outgoing half-edges. Boundary vertices must point at an
	// unpaired outgoing half-edge so that ring traversal sweeps the whole
	// open fan and boundary status is detectable from the vertex alone.
	for h := range m.halfEdges {
		from := m.Origin(HalfEdgeIndex(h))
		v := &m.verts[from]
		if v.Outgoing == NoHalfEdge || m.halfEdges[h].Pair == NoHalfEdge {
			if v.Outgoing == NoHalfEdge || m.halfEdges[v.Outgoing].Pair != NoHalfEdge {
				v.Outgoing = HalfEdgeIndex(h)
			}
		}
	}

	for v := range m.verts {
		if m.verts[v].Outgoing == NoHalfEdge {
			return nil, fmt.Errorf("vertex %d is not referenced by any face", v)
		}
	}

	return m, nil
}
