package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chazu/heartwood/pkg/bridge"
	"github.com/chazu/heartwood/pkg/engine"
	"github.com/chazu/heartwood/pkg/kernel/manifold"
	"github.com/chazu/heartwood/pkg/stl"
)

var evalOutDir string

var evalCmd = &cobra.Command{
	Use:   "eval <script>",
	Short: "Evaluate a modeling script and export its surfaces as STL",
	Args:  cobra.ExactArgs(1),
	RunE:  runEval,
}

func init() {
	evalCmd.Flags().StringVar(&evalOutDir, "out-dir", ".", "directory for exported STL files")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	combiner, err := manifold.New()
	if err != nil {
		// Booleans are unavailable without the solver; everything else
		// still works.
		log.Printf("eval: %v", err)
		combiner = nil
	}

	eng := engine.NewEngine(combiner)
	ws, evalErrs, err := eng.Evaluate(string(source))
	if err != nil {
		return err
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return fmt.Errorf("%d evaluation error(s)", len(evalErrs))
	}

	for _, name := range ws.Names() {
		surf := ws.Surface(name)
		body, err := bridge.ToBody(surf.Mesh())
		if err != nil {
			return fmt.Errorf("surface %q: %w", name, err)
		}
		path := filepath.Join(evalOutDir, name+".stl")
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := stl.WriteBinary(f, name, body); err != nil {
			f.Close()
			return fmt.Errorf("surface %q: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Printf("eval: %s (level %d, %d faces) -> %s",
			name, surf.Level(), surf.Mesh().NumFaces(), path)
	}
	return nil
}
