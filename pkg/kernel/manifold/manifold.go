//go:build manifold

// Package manifold binds the boolean combiner to the Manifold library
// (https://github.com/elalish/manifold) through CGo. Manifold provides
// guaranteed-manifold mesh boolean operations, which is exactly the
// contract kernel.Combiner asks for.
//
// This package requires the Manifold C library (manifoldc) to be
// installed. Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/heartwood/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Combiner = (*Combiner)(nil)

// Combiner implements kernel.Combiner using the Manifold C library.
type Combiner struct{}

// New creates a Manifold-backed combiner.
func New() (kernel.Combiner, error) {
	return &Combiner{}, nil
}

// Combine runs the requested boolean operation on two boundary
// representations and returns the manifold result. Vertex normals of the
// result are recomputed by area-weighted averaging; the operands' texture
// coordinates do not survive the C round trip.
func (c *Combiner) Combine(op kernel.BoolOp, a, b *kernel.Body) (*kernel.Body, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: %s needs two operands", kernel.ErrInvalidArgument, op)
	}

	ma, err := toManifold(a)
	if err != nil {
		return nil, fmt.Errorf("%s: left operand: %w", op, err)
	}
	mb, err := toManifold(b)
	if err != nil {
		return nil, fmt.Errorf("%s: right operand: %w", op, err)
	}

	alloc := C.manifold_alloc_manifold()
	var ptr *C.ManifoldManifold
	switch op {
	case kernel.OpUnion:
		ptr = C.manifold_union(alloc, ma.ptr, mb.ptr)
	case kernel.OpSubtract:
		ptr = C.manifold_difference(alloc, ma.ptr, mb.ptr)
	case kernel.OpIntersect:
		ptr = C.manifold_intersection(alloc, ma.ptr, mb.ptr)
	default:
		return nil, fmt.Errorf("%w: unknown boolean operation %d", kernel.ErrInvalidArgument, op)
	}
	result := newSolid(ptr)

	body, err := toBody(result)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return body, nil
}

// manifoldSolid wraps a C ManifoldManifold pointer with a Go-side
// finalizer for automatic memory management.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// toManifold uploads a Body as a MeshGL with position-only vertex
// properties and constructs a manifold from it. Manifold rejects
// non-manifold input, which surfaces here as an empty solid.
func toManifold(body *kernel.Body) (*manifoldSolid, error) {
	numVert := body.VertexCount()
	numTri := body.TriangleCount()

	props := make([]float32, numVert*3)
	for i := 0; i < numVert; i++ {
		p := body.Vertex(i).Position
		props[i*3+0] = float32(p.X())
		props[i*3+1] = float32(p.Y())
		props[i*3+2] = float32(p.Z())
	}
	indices := make([]uint32, numTri*3)
	for i := 0; i < numTri; i++ {
		t := body.Triangle(i)
		indices[i*3+0] = uint32(t[0])
		indices[i*3+1] = uint32(t[1])
		indices[i*3+2] = uint32(t[2])
	}

	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_meshgl(meshAlloc,
		(*C.float)(unsafe.Pointer(&props[0])), C.size_t(numVert), C.size_t(3),
		(*C.uint32_t)(unsafe.Pointer(&indices[0])), C.size_t(numTri),
	)
	defer C.manifold_delete_meshgl(meshGL)

	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_of_meshgl(alloc, meshGL)
	solid := newSolid(ptr)

	if int(C.manifold_num_tri(solid.ptr)) == 0 {
		return nil, fmt.Errorf("%w: operand is not a manifold mesh", kernel.ErrInvalidOperation)
	}
	return solid, nil
}

// toBody extracts the result MeshGL back into a boundary representation.
func toBody(s *manifoldSolid) (*kernel.Body, error) {
	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, s.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	if numVert == 0 || numTri == 0 {
		return nil, fmt.Errorf("%w: boolean result is empty", kernel.ErrInvalidOperation)
	}
	numProp := int(C.manifold_meshgl_num_prop(meshGL))

	propData := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&propData[0])),
		meshGL,
	)
	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&indices[0])),
		meshGL,
	)

	positions := make([]mgl64.Vec3, numVert)
	for i := 0; i < numVert; i++ {
		base := i * numProp
		positions[i] = mgl64.Vec3{
			float64(propData[base+0]),
			float64(propData[base+1]),
			float64(propData[base+2]),
		}
	}

	tris := make([]kernel.Triangle, numTri)
	for i := 0; i < numTri; i++ {
		tris[i] = kernel.Triangle{
			int(indices[i*3+0]), int(indices[i*3+1]), int(indices[i*3+2]),
		}
	}

	normals := vertexNormals(positions, tris)
	verts := make([]kernel.Vertex, numVert)
	for i := range verts {
		verts[i] = kernel.Vertex{Position: positions[i], Normal: normals[i]}
	}
	return kernel.NewBody(verts, tris)
}

// vertexNormals averages the unnormalized face normals incident on each
// vertex; the cross-product magnitude weights large faces more heavily.
func vertexNormals(positions []mgl64.Vec3, tris []kernel.Triangle) []mgl64.Vec3 {
	acc := make([]mgl64.Vec3, len(positions))
	for _, t := range tris {
		a, b, c := positions[t[0]], positions[t[1]], positions[t[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		for _, idx := range t {
			acc[idx] = acc[idx].Add(n)
		}
	}
	for i, n := range acc {
		if n.Len() < 1e-12 {
			acc[i] = mgl64.Vec3{0, 0, 1}
			continue
		}
		acc[i] = n.Normalize()
	}
	return acc
}
