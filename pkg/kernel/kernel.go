// Package kernel defines the abstract geometry kernel interface and the
// boundary representation (Body) used as the interchange format between
// the subdivision core, boolean solid operations, and rendering.
// Implementations (sdfx) provide solid modeling behind the Kernel
// interface; boolean composition of boundary representations sits behind
// the Combiner interface.
package kernel

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidArgument reports malformed or out-of-contract caller input:
// nil required references, negative subdivision levels, out-of-range
// triangle indices, degenerate geometry at construction.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrInvalidOperation reports an operation that cannot proceed given
// current, valid-looking state, such as a rebuilt mesh failing topology
// validation.
var ErrInvalidOperation = errors.New("invalid operation")

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max mgl64.Vec3)
}

// Kernel is the abstract geometry kernel interface. It authors base
// geometry (primitives, transforms, booleans on its own solids) that
// enters subdivision editing as a Body via the representation bridge.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Boundary representation output
	ToBody(s Solid) (*Body, error)
}

// BoolOp selects a boolean solid operation.
type BoolOp int

const (
	OpUnion BoolOp = iota
	OpSubtract
	OpIntersect
)

func (op BoolOp) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpSubtract:
		return "subtract"
	case OpIntersect:
		return "intersect"
	default:
		return "unknown"
	}
}

// Combiner performs boolean composition of two boundary representations.
// It is an external collaborator; failures propagate to callers unchanged.
type Combiner interface {
	Combine(op BoolOp, a, b *Body) (*Body, error)
}
