package root

import (
	"github.com/spf13/cobra"

	"github.com/polytool/polytool/cmd/solve"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "polytool",
		Short: "Polytool resolves consistent tool version sets",
		Long: `Polytool computes one consistent assignment of exact versions for a set of
requested tools, runtimes and plugins with version constraints, or explains
why no such assignment exists.`,
	}

	// add sub-commands
	rootCmd.AddCommand(solve.NewSolveCommand())

	return rootCmd
}
