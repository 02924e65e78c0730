// Command heartwood drives the subdivision kernel from the shell:
// generate primitive control meshes, evaluate modeling scripts, and
// export refined surfaces as STL.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "heartwood",
	Short: "Subdivision surface modeling kernel",
	Long:  `Heartwood refines coarse control meshes into smooth Catmull-Clark limit surfaces while preserving authored creases and corners.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
