// Package stl writes boundary representations as binary STL, the lowest
// common denominator for inspecting kernel output in external viewers.
package stl

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/chazu/heartwood/pkg/kernel"
)

// WriteBinary writes body as a binary STL stream. The name is embedded in
// the 80-byte header, truncated if necessary. Facet normals are recomputed
// per triangle from the vertex winding, which is what most STL consumers
// expect regardless of the stored vertex normals.
func WriteBinary(w io.Writer, name string, body *kernel.Body) error {
	if body == nil {
		return fmt.Errorf("%w: stl writer needs a body", kernel.ErrInvalidArgument)
	}

	var header [80]byte
	copy(header[:], name)
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("stl: write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(body.TriangleCount())); err != nil {
		return fmt.Errorf("stl: write triangle count: %w", err)
	}

	var rec [50]byte
	for i := 0; i < body.TriangleCount(); i++ {
		t := body.Triangle(i)
		a := body.Vertex(t[0]).Position
		b := body.Vertex(t[1]).Position
		c := body.Vertex(t[2]).Position

		n := b.Sub(a).Cross(c.Sub(a))
		if l := n.Len(); l > 1e-12 {
			n = n.Mul(1 / l)
		}

		le := binary.LittleEndian
		le.PutUint32(rec[0:], floatBits(n.X()))
		le.PutUint32(rec[4:], floatBits(n.Y()))
		le.PutUint32(rec[8:], floatBits(n.Z()))
		off := 12
		for _, p := range [][3]float64{
			{a.X(), a.Y(), a.Z()},
			{b.X(), b.Y(), b.Z()},
			{c.X(), c.Y(), c.Z()},
		} {
			le.PutUint32(rec[off:], floatBits(p[0]))
			le.PutUint32(rec[off+4:], floatBits(p[1]))
			le.PutUint32(rec[off+8:], floatBits(p[2]))
			off += 12
		}
		le.PutUint16(rec[48:], 0) // attribute byte count

		if _, err := w.Write(rec[:]); err != nil {
			return fmt.Errorf("stl: write facet %d: %w", i, err)
		}
	}
	return nil
}

func floatBits(f float64) uint32 {
	return math.Float32bits(float32(f))
}
