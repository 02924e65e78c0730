// Package primitive builds coarse control meshes for subdivision editing.
package primitive

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/heartwood/pkg/hemesh"
)

// Cube returns a closed all-quad cube centered at the origin with the
// given edge length. Faces wind counter-clockwise viewed from outside.
func Cube(size float64) *hemesh.Mesh {
	h := size / 2
	corners := []mgl64.Vec3{
		{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
		{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
	}
	verts := make([]hemesh.Vertex, len(corners))
	for i, p := range corners {
		verts[i] = hemesh.Vertex{
			Position: p,
			UV:       mgl64.Vec2{(p.X()/size + 0.5), (p.Y()/size + 0.5)},
		}
	}
	faces := [][]hemesh.VertexIndex{
		{0, 3, 2, 1}, // bottom
		{4, 5, 6, 7}, // top
		{0, 1, 5, 4}, // front
		{1, 2, 6, 5}, // right
		{2, 3, 7, 6}, // back
		{3, 0, 4, 7}, // left
	}
	m, err := hemesh.Build(verts, faces)
	if err != nil {
		// The cube tables are fixed; a failure here is a programming error.
		panic(err)
	}
	return m
}

// Grid returns an open planar mesh of cols x rows quads in the XY plane,
// spanning size units per quad. Its rim exercises the boundary edge and
// boundary vertex rules.
func Grid(cols, rows int, size float64) *hemesh.Mesh {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	var verts []hemesh.Vertex
	for j := 0; j <= rows; j++ {
		for i := 0; i <= cols; i++ {
			verts = append(verts, hemesh.Vertex{
				Position: mgl64.Vec3{float64(i) * size, float64(j) * size, 0},
				UV:       mgl64.Vec2{float64(i) / float64(cols), float64(j) / float64(rows)},
			})
		}
	}
	at := func(i, j int) hemesh.VertexIndex {
		return hemesh.VertexIndex(j*(cols+1) + i)
	}
	var faces [][]hemesh.VertexIndex
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			faces = append(faces, []hemesh.VertexIndex{
				at(i, j), at(i+1, j), at(i+1, j+1), at(i, j+1),
			})
		}
	}
	m, err := hemesh.Build(verts, faces)
	if err != nil {
		panic(err)
	}
	return m
}
