// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. It authors base solids
// that enter subdivision editing as boundary representations.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/heartwood/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max mgl64.Vec3) {
	bb := s.s.BoundingBox()
	min = mgl64.Vec3{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = mgl64.Vec3{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates a box with the given dimensions, centered at the origin.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	return wrap(s)
}

// Cylinder creates a cylinder with the given height and radius.
// The segments parameter is ignored since SDF represents smooth surfaces.
func (k *SdfxKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return wrap(s)
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToBody converts a solid to a boundary representation using marching
// cubes. Each triangle contributes three vertices carrying the triangle's
// face normal; texture coordinates are a planar projection along the
// normal's dominant axis, scaled to the solid's bounding box.
func (k *SdfxKernel) ToBody(s kernel.Solid) (*kernel.Body, error) {
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(defaultMeshCells)
	triangles := render.ToTriangles(sdf3, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("%w: solid produced no triangles", kernel.ErrInvalidOperation)
	}

	bb := sdf3.BoundingBox()
	scale := math.Max(bb.Max.X-bb.Min.X, math.Max(bb.Max.Y-bb.Min.Y, bb.Max.Z-bb.Min.Z))
	if scale < 1e-12 {
		scale = 1
	}

	verts := make([]kernel.Vertex, 0, len(triangles)*3)
	tris := make([]kernel.Triangle, 0, len(triangles))

	for _, tri := range triangles {
		n := tri.Normal()
		length := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
		if length < 1e-12 {
			// Marching cubes occasionally emits slivers; drop them.
			continue
		}
		normal := mgl64.Vec3{n.X / length, n.Y / length, n.Z / length}

		base := len(verts)
		for j := 0; j < 3; j++ {
			v := tri[j]
			pos := mgl64.Vec3{v.X, v.Y, v.Z}
			verts = append(verts, kernel.Vertex{
				Position: pos,
				Normal:   normal,
				UV:       planarUV(pos, normal, mgl64.Vec3{bb.Min.X, bb.Min.Y, bb.Min.Z}, scale),
			})
		}
		tris = append(tris, kernel.Triangle{base, base + 1, base + 2})
	}

	return kernel.NewBody(verts, tris)
}

// planarUV projects a point onto the plane orthogonal to the normal's
// dominant axis and normalizes against the bounding box scale.
func planarUV(p, n, min mgl64.Vec3, scale float64) mgl64.Vec2 {
	rel := p.Sub(min).Mul(1 / scale)
	ax, ay, az := math.Abs(n.X()), math.Abs(n.Y()), math.Abs(n.Z())
	switch {
	case az >= ax && az >= ay:
		return mgl64.Vec2{rel.X(), rel.Y()}
	case ay >= ax:
		return mgl64.Vec2{rel.X(), rel.Z()}
	default:
		return mgl64.Vec2{rel.Y(), rel.Z()}
	}
}
