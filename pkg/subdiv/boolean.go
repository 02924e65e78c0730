package subdiv

import (
	"fmt"

	"github.com/chazu/heartwood/pkg/bridge"
	"github.com/chazu/heartwood/pkg/kernel"
)

// Union composes this surface with other through the external combiner
// and returns a new surface built on the resulting boundary
// representation. The left operand's material tag carries over to the
// result on union only.
func (s *Surface) Union(other *Surface, c kernel.Combiner) (*Surface, error) {
	return s.combine(kernel.OpUnion, other, c)
}

// Subtract removes other from this surface through the external combiner.
func (s *Surface) Subtract(other *Surface, c kernel.Combiner) (*Surface, error) {
	return s.combine(kernel.OpSubtract, other, c)
}

// Intersect keeps the common volume of this surface and other.
func (s *Surface) Intersect(other *Surface, c kernel.Combiner) (*Surface, error) {
	return s.combine(kernel.OpIntersect, other, c)
}

// combine is the delegation path: flatten both operands to boundary
// representations, hand them to the combiner, and re-enter subdivision
// editing through the bridge's reverse path. Combiner failures propagate
// unchanged; there is no local recovery.
func (s *Surface) combine(op kernel.BoolOp, other *Surface, c kernel.Combiner) (*Surface, error) {
	if other == nil {
		return nil, fmt.Errorf("%w: %s needs a right-hand operand", kernel.ErrInvalidArgument, op)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s needs a combiner", kernel.ErrInvalidArgument, op)
	}

	left, err := bridge.ToBody(s.Mesh())
	if err != nil {
		return nil, fmt.Errorf("%s: left operand: %w", op, err)
	}
	right, err := bridge.ToBody(other.Mesh())
	if err != nil {
		return nil, fmt.Errorf("%s: right operand: %w", op, err)
	}

	body, err := c.Combine(op, left, right)
	if err != nil {
		return nil, err
	}

	mesh, err := bridge.FromBody(body)
	if err != nil {
		return nil, fmt.Errorf("%s: result: %w", op, err)
	}
	result, err := NewSurface(mesh)
	if err != nil {
		return nil, err
	}
	if op == kernel.OpUnion {
		result.material = s.material
	}
	return result, nil
}
