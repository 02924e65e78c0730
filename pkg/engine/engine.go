// Package engine provides the Lisp modeling console for Heartwood. It
// wraps zygomys in a sandboxed environment; a script authors control
// surfaces, marks sharp features, runs repair, and subdivides, producing
// a workspace of named surfaces for the caller to flatten or export.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/heartwood/pkg/kernel"
	"github.com/chazu/heartwood/pkg/subdiv"
)

// EvalTimeout is the hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Workspace is the output of one evaluation: every surface the script
// created, retrievable by name and in creation order.
type Workspace struct {
	surfaces map[string]*subdiv.Surface
	order    []string
}

func newWorkspace() *Workspace {
	return &Workspace{surfaces: make(map[string]*subdiv.Surface)}
}

// add registers a surface, replacing any previous surface of that name.
func (w *Workspace) add(name string, s *subdiv.Surface) {
	if _, exists := w.surfaces[name]; !exists {
		w.order = append(w.order, name)
	}
	w.surfaces[name] = s
}

// Surface returns the named surface, or nil.
func (w *Workspace) Surface(name string) *subdiv.Surface {
	return w.surfaces[name]
}

// Names returns the surface names in creation order.
func (w *Workspace) Names() []string {
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each call to Evaluate creates a fresh sandboxed environment for
// determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	combiner   kernel.Combiner
}

// NewEngine creates an Engine. The combiner backs the union/subtract/
// intersect builtins and may be nil, in which case those builtins fail
// with a script-level error.
func NewEngine(combiner kernel.Combiner) *Engine {
	return &Engine{combiner: combiner}
}

// evalResult passes evaluation output through the timeout channel.
type evalResult struct {
	ws     *Workspace
	errors []EvalError
	err    error
}

// Evaluate runs Lisp source and produces a workspace of surfaces.
//
// Return semantics:
//   - On success: workspace + nil errors + nil error
//   - On parse/eval failure: nil workspace + eval errors + nil error
//   - On fatal failure (timeout, panic): nil + nil + error
func (e *Engine) Evaluate(source string) (*Workspace, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		ws, evalErrs, err := e.evaluate(source)
		ch <- evalResult{ws: ws, errors: evalErrs, err: err}
	}()

	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()
		if gen != current {
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return res.ws, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", EvalTimeout)
	}
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Workspace, []EvalError, error) {
	ws := newWorkspace()
	if strings.TrimSpace(source) == "" {
		return ws, nil, nil
	}

	// Sandbox mode prevents user code from reaching the filesystem or
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, ws, e.combiner)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygoError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygoError(err), nil
	}
	return ws, nil, nil
}

// linePattern matches zygomys errors that include "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// parseZygoError converts a zygomys error into EvalError values,
// extracting a line number when the message carries one.
func parseZygoError(err error) []EvalError {
	msg := err.Error()
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
