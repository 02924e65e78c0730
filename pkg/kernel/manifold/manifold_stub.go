//go:build !manifold

// Package manifold binds the boolean combiner to the Manifold library.
// When the "manifold" build tag is not set, this stub is compiled
// instead, returning an error from New().
//
// Build with: go build -tags=manifold
package manifold

import (
	"errors"

	"github.com/chazu/heartwood/pkg/kernel"
)

// New returns an error indicating Manifold is not available.
// Build with -tags=manifold to enable.
func New() (kernel.Combiner, error) {
	return nil, errors.New("manifold combiner not available: build with -tags=manifold")
}
