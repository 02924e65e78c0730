// Package repair detects and resolves T-junctions: vertices lying in the
// interior of an edge they are not an endpoint of. Booleans and imports
// routinely introduce them, and subdivision assumes a mesh without them.
//
// Resolution splits the offending edge at the projected parameter and
// rebuilds the whole mesh from updated face loops. A global rebuild trades
// efficiency for topological safety: the half-edge graph is never patched
// in place, and the rebuilt mesh is validated before it replaces the
// original contents.
package repair

import (
	"fmt"
	"sort"

	"github.com/chazu/heartwood/pkg/hemesh"
	"github.com/chazu/heartwood/pkg/kernel"
)

const (
	// DistanceTol is the maximum perpendicular distance from a vertex to
	// an edge for the vertex to count as lying on it.
	DistanceTol = 1e-4
	// minEdgeLen guards the projection against degenerate edges; anything
	// shorter is skipped rather than matched.
	minEdgeLen = 1e-12
)

// junction is one detected T-junction: vertex v projects onto edge e at
// normalized parameter t.
type junction struct {
	edge   hemesh.EdgeIndex
	t      float64
	vertex hemesh.VertexIndex
}

// Repair scans the mesh for T-junctions and resolves all of them in one
// rebuild. It returns the number of junctions resolved; zero means the
// mesh was already clean and is untouched. Running Repair twice without
// intervening edits is a no-op on the second run.
//
// A nil mesh is ErrInvalidOperation, as is a rebuild that fails topology
// validation; on any error the input mesh is left unchanged.
func Repair(m *hemesh.Mesh) (int, error) {
	if m == nil {
		return 0, fmt.Errorf("%w: repair needs a mesh", kernel.ErrInvalidOperation)
	}

	junctions := detect(m)
	if len(junctions) == 0 {
		return 0, nil
	}

	rebuilt, err := resolve(m, junctions)
	if err != nil {
		return 0, err
	}
	if err := rebuilt.Validate(); err != nil {
		return 0, fmt.Errorf("%w: repair resulted in invalid topology: %v", kernel.ErrInvalidOperation, err)
	}
	m.ReplaceWith(rebuilt)
	return len(junctions), nil
}

// detect finds every (vertex, edge) incidence where the vertex projects
// strictly inside the edge within DistanceTol. Results are ordered by
// edge, then by parameter, so multiple splits on one edge apply
// left-to-right deterministically.
func detect(m *hemesh.Mesh) []junction {
	var found []junction
	for e := 0; e < m.NumEdges(); e++ {
		ei := hemesh.EdgeIndex(e)
		a, b := m.EdgeEndpoints(ei)
		pa := m.Vertex(a).Position
		dir := m.Vertex(b).Position.Sub(pa)
		len2 := dir.Dot(dir)
		if len2 < minEdgeLen*minEdgeLen {
			continue
		}
		for v := 0; v < m.NumVertices(); v++ {
			vi := hemesh.VertexIndex(v)
			if vi == a || vi == b {
				continue
			}
			p := m.Vertex(vi).Position
			// A vertex within tolerance of an endpoint is that endpoint's
			// coincidence problem, not a T-junction; splitting there would
			// re-detect its own split point on the next pass.
			if p.Sub(pa).Len() < DistanceTol || p.Sub(m.Vertex(b).Position).Len() < DistanceTol {
				continue
			}
			t := p.Sub(pa).Dot(dir) / len2
			if t <= 0 || t >= 1 {
				continue
			}
			if p.Sub(pa.Add(dir.Mul(t))).Len() < DistanceTol {
				found = append(found, junction{edge: ei, t: t, vertex: vi})
			}
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].edge != found[j].edge {
			return found[i].edge < found[j].edge
		}
		return found[i].t < found[j].t
	})
	return found
}

// resolve builds a new mesh with every junction's edge split. Each split
// creates a brand-new vertex at the exact interpolated position and UV —
// not the nearby existing vertex — so incidence is exact by construction.
// The new vertex is spliced into the loop of each face adjacent to the
// edge, immediately after the edge's start vertex on that side.
func resolve(m *hemesh.Mesh, junctions []junction) (*hemesh.Mesh, error) {
	verts := make([]hemesh.Vertex, m.NumVertices())
	for v := range verts {
		verts[v] = *m.Vertex(hemesh.VertexIndex(v))
	}
	loops := make([][]hemesh.VertexIndex, m.NumFaces())
	for f := range loops {
		loops[f] = m.FaceVertices(hemesh.FaceIndex(f))
	}

	// Sharpness survives the rebuild keyed by endpoint pair; split edges
	// pass their crease on to both halves.
	type edgeAttr struct {
		sharp     bool
		sharpness float64
	}
	attrs := make(map[[2]hemesh.VertexIndex]edgeAttr)
	key := func(a, b hemesh.VertexIndex) [2]hemesh.VertexIndex {
		if a > b {
			a, b = b, a
		}
		return [2]hemesh.VertexIndex{a, b}
	}
	for e := 0; e < m.NumEdges(); e++ {
		edge := m.Edge(hemesh.EdgeIndex(e))
		if edge.Sharp {
			a, b := m.EdgeEndpoints(hemesh.EdgeIndex(e))
			attrs[key(a, b)] = edgeAttr{sharp: true, sharpness: edge.Sharpness}
		}
	}

	// Group junctions per edge; detect already ordered them by parameter.
	for i := 0; i < len(junctions); {
		j := i
		for j < len(junctions) && junctions[j].edge == junctions[i].edge {
			j++
		}
		group := junctions[i:j]
		i = j

		ei := group[0].edge
		a, b := m.EdgeEndpoints(ei)
		va, vb := m.Vertex(a), m.Vertex(b)

		// Interpolated split vertices, left to right along the edge.
		split := make([]hemesh.VertexIndex, len(group))
		for g, jn := range group {
			nv := hemesh.VertexIndex(len(verts))
			verts = append(verts, hemesh.Vertex{
				Position: va.Position.Add(vb.Position.Sub(va.Position).Mul(jn.t)),
				UV:       va.UV.Add(vb.UV.Sub(va.UV).Mul(jn.t)),
			})
			split[g] = nv
		}

		if attr, ok := attrs[key(a, b)]; ok {
			chain := append([]hemesh.VertexIndex{a}, append(split, b)...)
			for c := 0; c+1 < len(chain); c++ {
				attrs[key(chain[c], chain[c+1])] = attr
			}
		}

		h := m.Edge(ei).Half
		insert(loops, m.HalfEdge(h).Face, m.Origin(h), m.HalfEdge(h).Dest, split)
		if pair := m.HalfEdge(h).Pair; pair != hemesh.NoHalfEdge {
			reversed := make([]hemesh.VertexIndex, len(split))
			for r := range split {
				reversed[r] = split[len(split)-1-r]
			}
			insert(loops, m.HalfEdge(pair).Face, m.Origin(pair), m.HalfEdge(pair).Dest, reversed)
		}
	}

	rebuilt, err := hemesh.Build(verts, loops)
	if err != nil {
		return nil, fmt.Errorf("%w: repair rebuild failed: %v", kernel.ErrInvalidOperation, err)
	}
	for e := 0; e < rebuilt.NumEdges(); e++ {
		a, b := rebuilt.EdgeEndpoints(hemesh.EdgeIndex(e))
		if attr, ok := attrs[key(a, b)]; ok && attr.sharp {
			edge := rebuilt.Edge(hemesh.EdgeIndex(e))
			edge.Sharp = true
			edge.Sharpness = attr.sharpness
		}
	}
	return rebuilt, nil
}

// insert splices the split vertices into face f's loop between from and
// to, ordered from the from side. The caller reverses the split order for
// the pair face so both sides agree geometrically.
func insert(loops [][]hemesh.VertexIndex, f hemesh.FaceIndex, from, to hemesh.VertexIndex, split []hemesh.VertexIndex) {
	loop := loops[f]
	for i, v := range loop {
		if v == from && loop[(i+1)%len(loop)] == to {
			inserted := make([]hemesh.VertexIndex, 0, len(loop)+len(split))
			inserted = append(inserted, loop[:i+1]...)
			inserted = append(inserted, split...)
			inserted = append(inserted, loop[i+1:]...)
			loops[f] = inserted
			return
		}
	}
}
