// Package subdiv implements Catmull-Clark subdivision surfaces over
// half-edge control meshes, with crease (sharp edge) and corner (sharp
// vertex) support, and boolean composition by delegation to an external
// solid combiner.
package subdiv

import (
	"fmt"

	"github.com/chazu/heartwood/pkg/hemesh"
	"github.com/chazu/heartwood/pkg/kernel"
)

// Surface binds a control mesh to its current refinement. The control
// mesh is never modified by subdivision; every refinement level is
// recomputed from it, so the same surface can be re-subdivided to any
// level at any time.
type Surface struct {
	base     *hemesh.Mesh
	current  *hemesh.Mesh
	level    int
	material string
}

// NewSurface wraps a control mesh. A nil mesh is ErrInvalidArgument.
func NewSurface(base *hemesh.Mesh) (*Surface, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: surface needs a base mesh", kernel.ErrInvalidArgument)
	}
	return &Surface{base: base, current: base}, nil
}

// Base returns the control mesh.
func (s *Surface) Base() *hemesh.Mesh { return s.base }

// Mesh returns the mesh at the current refinement level. At level 0 this
// is the control mesh itself.
func (s *Surface) Mesh() *hemesh.Mesh { return s.current }

// Level returns the current refinement level.
func (s *Surface) Level() int { return s.level }

// Material returns the material tag carried by the surface.
func (s *Surface) Material() string { return s.material }

// SetMaterial sets the material tag.
func (s *Surface) SetMaterial(name string) { s.material = name }

// Subdivide refines the control mesh the given number of levels and makes
// the result current. Level 0 restores the control mesh. A negative level
// is ErrInvalidArgument; a refinement pass producing broken topology is
// ErrInvalidOperation and leaves the surface unchanged.
func (s *Surface) Subdivide(levels int) error {
	if levels < 0 {
		return fmt.Errorf("%w: negative subdivision level %d", kernel.ErrInvalidArgument, levels)
	}
	m := s.base
	for i := 0; i < levels; i++ {
		next, err := Refine(m)
		if err != nil {
			return fmt.Errorf("level %d: %w", i+1, err)
		}
		m = next
	}
	s.current = m
	s.level = levels
	return nil
}
