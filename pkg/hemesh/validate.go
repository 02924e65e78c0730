package hemesh

import (
	"fmt"
)

// Validate checks the structural topology invariants:
//
//   - every index is in range
//   - pairing is symmetric and never links a half-edge to its own face
//   - Next/Prev are mutually consistent
//   - every face loop closes and has at least 3 half-edges
//   - every half-edge belongs to the edge that claims it
//   - every vertex's outgoing half-edge actually originates at it
//
// It returns nil for a valid mesh, or a descriptive error for the first
// violated invariant.
func (m *Mesh) Validate() error {
	nh := HalfEdgeIndex(len(m.halfEdges))
	for h := HalfEdgeIndex(0); h < nh; h++ {
		he := m.halfEdges[h]
		if he.Dest < 0 || int(he.Dest) >= len(m.verts) {
			return fmt.Errorf("half-edge %d: destination vertex %d out of range", h, he.Dest)
		}
		if he.Face < 0 || int(he.Face) >= len(m.faces) {
			return fmt.Errorf("half-edge %d: face %d out of range", h, he.Face)
		}
		if he.Next < 0 || he.Next >= nh || he.Prev < 0 || he.Prev >= nh {
			return fmt.Errorf("half-edge %d: next/prev out of range", h)
		}
		if m.halfEdges[he.Next].Prev != h {
			return fmt.Errorf("half-edge %d: next.prev does not return to it", h)
		}
		if m.halfEdges[he.Prev].Next != h {
			return fmt.Errorf("half-edge %d: prev.next does not return to it", h)
		}
		if he.Edge < 0 || int(he.Edge) >= len(m.edges) {
			return fmt.Errorf("half-edge %d: edge %d out of range", h, he.Edge)
		}
		if he.Pair != NoHalfEdge {
			if he.Pair < 0 || he.Pair >= nh {
				return fmt.Errorf("half-edge %d: pair %d out of range", h, he.Pair)
			}
			pair := m.halfEdges[he.Pair]
			if pair.Pair != h {
				return fmt.Errorf("half-edge %d: pairing is not symmetric", h)
			}
			if pair.Face == he.Face {
				return fmt.Errorf("half-edge %d: pair lies on the same face %d", h, he.Face)
			}
			if pair.Edge != he.Edge {
				return fmt.Errorf("half-edge %d: pair belongs to a different edge", h)
			}
			if pair.Dest != m.Origin(h) || he.Dest != m.Origin(he.Pair) {
				return fmt.Errorf("half-edge %d: pair endpoints do not mirror it", h)
			}
		}
	}

	for f := range m.faces {
		start := m.faces[f].Half
		if start < 0 || start >= nh {
			return fmt.Errorf("face %d: entry half-edge out of range", f)
		}
		count := 0
		h := start
		for {
			if m.halfEdges[h].Face != FaceIndex(f) {
				return fmt.Errorf("face %d: loop wanders into face %d", f, m.halfEdges[h].Face)
			}
			count++
			if count > len(m.halfEdges) {
				return fmt.Errorf("face %d: loop does not close", f)
			}
			h = m.halfEdges[h].Next
			if h == start {
				break
			}
		}
		if count < 3 {
			return fmt.Errorf("face %d: loop has only %d half-edges", f, count)
		}
	}

	for e := range m.edges {
		h := m.edges[e].Half
		if h < 0 || h >= nh {
			return fmt.Errorf("edge %d: representative half-edge out of range", e)
		}
		if m.halfEdges[h].Edge != EdgeIndex(e) {
			return fmt.Errorf("edge %d: representative half-edge belongs to edge %d", e, m.halfEdges[h].Edge)
		}
	}

	for v := range m.verts {
		out := m.verts[v].Outgoing
		if out < 0 || out >= nh {
			return fmt.Errorf("vertex %d: outgoing half-edge out of range", v)
		}
		if m.Origin(out) != VertexIndex(v) {
			return fmt.Errorf("vertex %d: outgoing half-edge originates elsewhere", v)
		}
	}

	return nil
}
