package stl_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/chazu/heartwood/pkg/bridge"
	"github.com/chazu/heartwood/pkg/kernel"
	"github.com/chazu/heartwood/pkg/primitive"
	"github.com/chazu/heartwood/pkg/stl"
)

func TestWriteBinaryCube(t *testing.T) {
	body, err := bridge.ToBody(primitive.Cube(2))
	if err != nil {
		t.Fatalf("ToBody failed: %v", err)
	}

	var buf bytes.Buffer
	if err := stl.WriteBinary(&buf, "cube", body); err != nil {
		t.Fatalf("WriteBinary failed: %v", err)
	}

	// 80-byte header, uint32 facet count, 50 bytes per facet.
	want := 84 + 50*body.TriangleCount()
	if buf.Len() != want {
		t.Errorf("expected %d bytes, got %d", want, buf.Len())
	}

	data := buf.Bytes()
	if !bytes.HasPrefix(data, []byte("cube")) {
		t.Error("header does not start with the model name")
	}
	count := binary.LittleEndian.Uint32(data[80:84])
	if int(count) != body.TriangleCount() {
		t.Errorf("facet count field %d, want %d", count, body.TriangleCount())
	}

	// Each facet normal is unit length (or zero for slivers, which a cube
	// does not have).
	for i := 0; i < int(count); i++ {
		off := 84 + 50*i
		nx := math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
		ny := math.Float32frombits(binary.LittleEndian.Uint32(data[off+4:]))
		nz := math.Float32frombits(binary.LittleEndian.Uint32(data[off+8:]))
		l := math.Sqrt(float64(nx*nx + ny*ny + nz*nz))
		if math.Abs(l-1) > 1e-5 {
			t.Errorf("facet %d normal length %g, want 1", i, l)
		}
		attr := binary.LittleEndian.Uint16(data[off+48:])
		if attr != 0 {
			t.Errorf("facet %d attribute byte count %d, want 0", i, attr)
		}
	}
}

func TestWriteBinaryNilBody(t *testing.T) {
	var buf bytes.Buffer
	if err := stl.WriteBinary(&buf, "x", nil); !errors.Is(err, kernel.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if buf.Len() != 0 {
		t.Error("writer received bytes despite the error")
	}
}
