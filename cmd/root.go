package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/deadcore/analyzer/pkg/types"
	"github.com/deadcore/analyzer/pkg/version"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "deadcore",
	Short:   "deadcore - find dead files in TypeScript/JavaScript projects",
	Long:    "deadcore analyzes a TypeScript or JavaScript project's module graph and\nreports source files that are unreachable from any real entry point,\nwith a calibrated confidence score rather than a binary verdict.",
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.SilenceErrors = true
}

// Execute runs the root command and exits with code 1 on error.
// ExitError is handled specially: its Code is used as the exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *types.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
