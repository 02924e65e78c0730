package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/heartwood/pkg/bridge"
	"github.com/chazu/heartwood/pkg/hemesh"
	"github.com/chazu/heartwood/pkg/primitive"
	"github.com/chazu/heartwood/pkg/stl"
	"github.com/chazu/heartwood/pkg/subdiv"
)

var (
	cubeSize       float64
	cubeLevels     int
	cubeSharpEdges string
	cubeSharpVerts string
	cubeOut        string
)

var cubeCmd = &cobra.Command{
	Use:   "cube",
	Short: "Subdivide a cube control mesh and export it as STL",
	RunE:  runCube,
}

func init() {
	cubeCmd.Flags().Float64Var(&cubeSize, "size", 2.0, "cube edge length")
	cubeCmd.Flags().IntVar(&cubeLevels, "levels", 2, "subdivision levels")
	cubeCmd.Flags().StringVar(&cubeSharpEdges, "sharp-edges", "", "comma-separated edge indices to crease fully")
	cubeCmd.Flags().StringVar(&cubeSharpVerts, "sharp-vertices", "", "comma-separated vertex indices to pin")
	cubeCmd.Flags().StringVar(&cubeOut, "out", "cube.stl", "output STL path")
	rootCmd.AddCommand(cubeCmd)
}

func runCube(cmd *cobra.Command, args []string) error {
	mesh := primitive.Cube(cubeSize)

	edges, err := parseIndices(cubeSharpEdges)
	if err != nil {
		return fmt.Errorf("--sharp-edges: %w", err)
	}
	for _, e := range edges {
		if e < 0 || e >= mesh.NumEdges() {
			return fmt.Errorf("--sharp-edges: edge %d out of range (cube has %d)", e, mesh.NumEdges())
		}
		edge := mesh.Edge(hemesh.EdgeIndex(e))
		edge.Sharp = true
		edge.Sharpness = 1.0
	}

	verts, err := parseIndices(cubeSharpVerts)
	if err != nil {
		return fmt.Errorf("--sharp-vertices: %w", err)
	}
	for _, v := range verts {
		if v < 0 || v >= mesh.NumVertices() {
			return fmt.Errorf("--sharp-vertices: vertex %d out of range (cube has %d)", v, mesh.NumVertices())
		}
		mesh.Vertex(hemesh.VertexIndex(v)).Sharp = true
	}

	surf, err := subdiv.NewSurface(mesh)
	if err != nil {
		return err
	}
	if err := surf.Subdivide(cubeLevels); err != nil {
		return err
	}

	body, err := bridge.ToBody(surf.Mesh())
	if err != nil {
		return err
	}

	f, err := os.Create(cubeOut)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := stl.WriteBinary(f, "heartwood cube", body); err != nil {
		return err
	}

	log.Printf("cube: %d levels, %d faces, %d triangles -> %s",
		surf.Level(), surf.Mesh().NumFaces(), body.TriangleCount(), cubeOut)
	return nil
}

// parseIndices reads a comma-separated list of non-negative integers.
func parseIndices(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("bad index %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}
