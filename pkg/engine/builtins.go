package engine

import (
	"fmt"
	"strings"
	"sync/atomic"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/heartwood/pkg/hemesh"
	"github.com/chazu/heartwood/pkg/kernel"
	"github.com/chazu/heartwood/pkg/primitive"
	"github.com/chazu/heartwood/pkg/repair"
	"github.com/chazu/heartwood/pkg/subdiv"
)

// kwPrefix marks keyword tokens rewritten by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites Heartwood Lisp for zygomys:
//
//   - :keyword tokens become "__kw_keyword" string literals, so builtins
//     can take keyword arguments without registering global symbols
//   - kebab-case identifiers become underscore form (zygomys reads the
//     hyphen as subtraction)
//   - ; line comments become // comments
//
// String literal boundaries are respected throughout.
func preprocessSource(source string) string {
	out := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			out = append(out, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					out = append(out, b[i], b[i+1])
					i += 2
					continue
				}
				out = append(out, b[i])
				i++
			}
			if i < len(b) {
				out = append(out, b[i])
				i++
			}
		case b[i] == ';':
			out = append(out, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}
		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, strings.ReplaceAll(string(b[i+1:j]), "-", "_")...)
			out = append(out, '"')
			i = j
		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out = append(out, '_')
			i++
		default:
			out = append(out, b[i])
			i++
		}
	}
	return string(out)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// sexpSurface wraps a named surface so builtins can pass it around.
type sexpSurface struct {
	name string
	surf *subdiv.Surface
}

func (s *sexpSurface) SexpString(ps *zygo.PrintState) string {
	m := s.surf.Mesh()
	return fmt.Sprintf("(surface %q :level %d :faces %d)", s.name, s.surf.Level(), m.NumFaces())
}
func (s *sexpSurface) Type() *zygo.RegisteredType { return nil }

// anonCounter names surfaces the script did not.
var anonCounter uint64

func nextAnonName() string {
	return fmt.Sprintf("surface_%d", atomic.AddUint64(&anonCounter, 1))
}

// kwArgs is a parsed mixed positional/keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	out := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		if str, ok := args[i].(*zygo.SexpStr); ok && strings.HasPrefix(str.S, kwPrefix) {
			name := str.S[len(kwPrefix):]
			if i+1 < len(args) {
				out.kw[name] = args[i+1]
				i += 2
			} else {
				out.kw[name] = zygo.SexpNull
				i++
			}
			continue
		}
		out.positional = append(out.positional, args[i])
		i++
	}
	return out
}

func toFloat(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T", s)
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T", s)
}

func toString(s zygo.Sexp) (string, error) {
	if v, ok := s.(*zygo.SexpStr); ok {
		return v.S, nil
	}
	return "", fmt.Errorf("expected string, got %T", s)
}

func toSurface(s zygo.Sexp) (*sexpSurface, error) {
	if v, ok := s.(*sexpSurface); ok {
		return v, nil
	}
	return nil, fmt.Errorf("expected surface, got %T", s)
}

// floatKW reads an optional keyword number with a default.
func floatKW(pa kwArgs, name string, def float64) (float64, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

func intKW(pa kwArgs, name string, def int) (int, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func nameKW(pa kwArgs) (string, error) {
	v, ok := pa.kw["name"]
	if !ok {
		return nextAnonName(), nil
	}
	s, err := toString(v)
	if err != nil {
		return "", fmt.Errorf("name: %w", err)
	}
	return s, nil
}

// registerBuiltins installs the Heartwood DSL into a zygomys environment.
// The builtins operate on the provided workspace, populating it during
// evaluation.
func registerBuiltins(env *zygo.Zlisp, ws *Workspace, combiner kernel.Combiner) {

	register := func(name string, mesh func(pa kwArgs) (*hemesh.Mesh, error)) {
		env.AddFunction(name, func(env *zygo.Zlisp, fname string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			m, err := mesh(pa)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			surfName, err := nameKW(pa)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			surf, err := subdiv.NewSurface(m)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			ws.add(surfName, surf)
			return &sexpSurface{name: surfName, surf: surf}, nil
		})
	}

	// (cube :size 2.0 :name "box")
	register("cube", func(pa kwArgs) (*hemesh.Mesh, error) {
		size, err := floatKW(pa, "size", 1)
		if err != nil {
			return nil, err
		}
		return primitive.Cube(size), nil
	})

	// (grid :cols 4 :rows 4 :size 1.0 :name "sheet")
	register("grid", func(pa kwArgs) (*hemesh.Mesh, error) {
		cols, err := intKW(pa, "cols", 1)
		if err != nil {
			return nil, err
		}
		rows, err := intKW(pa, "rows", 1)
		if err != nil {
			return nil, err
		}
		size, err := floatKW(pa, "size", 1)
		if err != nil {
			return nil, err
		}
		return primitive.Grid(cols, rows, size), nil
	})

	// (sharp-edge surf 3 1.0) — crease edge 3 fully
	env.AddFunction("sharp_edge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("sharp-edge: want (sharp-edge surface edge sharpness)")
		}
		s, err := toSurface(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sharp-edge: %w", err)
		}
		idx, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sharp-edge: %w", err)
		}
		sharpness, err := toFloat(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sharp-edge: %w", err)
		}
		base := s.surf.Base()
		if idx < 0 || idx >= base.NumEdges() {
			return zygo.SexpNull, fmt.Errorf("sharp-edge: edge %d out of range (mesh has %d)", idx, base.NumEdges())
		}
		edge := base.Edge(hemesh.EdgeIndex(idx))
		edge.Sharp = sharpness > 0
		edge.Sharpness = sharpness
		return args[0], nil
	})

	// (sharp-vertex surf 0)
	env.AddFunction("sharp_vertex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("sharp-vertex: want (sharp-vertex surface vertex)")
		}
		s, err := toSurface(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sharp-vertex: %w", err)
		}
		idx, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sharp-vertex: %w", err)
		}
		base := s.surf.Base()
		if idx < 0 || idx >= base.NumVertices() {
			return zygo.SexpNull, fmt.Errorf("sharp-vertex: vertex %d out of range (mesh has %d)", idx, base.NumVertices())
		}
		base.Vertex(hemesh.VertexIndex(idx)).Sharp = true
		return args[0], nil
	})

	// (subdivide surf 2)
	env.AddFunction("subdivide", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("subdivide: want (subdivide surface levels)")
		}
		s, err := toSurface(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("subdivide: %w", err)
		}
		levels, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("subdivide: %w", err)
		}
		if err := s.surf.Subdivide(levels); err != nil {
			return zygo.SexpNull, fmt.Errorf("subdivide: %w", err)
		}
		return args[0], nil
	})

	// (repair surf) — returns the number of T-junctions resolved
	env.AddFunction("repair", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("repair: want (repair surface)")
		}
		s, err := toSurface(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("repair: %w", err)
		}
		n, err := repair.Repair(s.surf.Base())
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("repair: %w", err)
		}
		return &zygo.SexpInt{Val: int64(n)}, nil
	})

	// (material surf "oak")
	env.AddFunction("material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("material: want (material surface name)")
		}
		s, err := toSurface(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("material: %w", err)
		}
		mat, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("material: %w", err)
		}
		s.surf.SetMaterial(mat)
		return args[0], nil
	})

	boolean := func(name string, op kernel.BoolOp) {
		env.AddFunction(name, func(env *zygo.Zlisp, fname string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s: want (%s left right)", name, name)
			}
			if combiner == nil {
				return zygo.SexpNull, fmt.Errorf("%s: no boolean solver configured", name)
			}
			left, err := toSurface(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			right, err := toSurface(pa.positional[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			var result *subdiv.Surface
			switch op {
			case kernel.OpUnion:
				result, err = left.surf.Union(right.surf, combiner)
			case kernel.OpSubtract:
				result, err = left.surf.Subtract(right.surf, combiner)
			case kernel.OpIntersect:
				result, err = left.surf.Intersect(right.surf, combiner)
			}
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			surfName, err := nameKW(pa)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			ws.add(surfName, result)
			return &sexpSurface{name: surfName, surf: result}, nil
		})
	}
	boolean("union", kernel.OpUnion)
	boolean("subtract", kernel.OpSubtract)
	boolean("intersect", kernel.OpIntersect)
}
