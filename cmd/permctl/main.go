// Command permctl is a small example host for pkg/registry: it loads a
// save-string file from disk, answers one-shot permission queries against
// it, and lets a caller grant permissions and write the result back.
//
// It is not part of the core library -- the core registry intentionally
// has no CLI or persistence story of its own (see pkg/registry and
// pkg/regfile) -- but exercises the rest of the domain stack (cobra for
// the command tree, yaml.v3 for its own config file, afero for the
// filesystem it reads and writes through).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "permctl",
		Short: "Inspect and edit a permissions registry save file",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a permctl config file (optional)")

	root.AddCommand(newDumpCmd(&configPath))
	root.AddCommand(newCheckCmd(&configPath))
	root.AddCommand(newGrantCmd(&configPath))
	return root
}
