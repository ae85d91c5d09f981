package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deadcore/analyzer/internal/config"
	"github.com/deadcore/analyzer/internal/engine"
	"github.com/deadcore/analyzer/internal/output"
	"github.com/deadcore/analyzer/internal/resolve"
	"github.com/deadcore/analyzer/pkg/types"
)

var (
	analyzeConfigPath string
	analyzeThreshold  int
	analyzeJSONOutput bool
	failOnErrors      bool
	failOnWarnings    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <directory>",
	Short: "Analyze a TypeScript/JavaScript project for dead files",
	Long: `Analyze a TypeScript or JavaScript project directory for dead files -
source files that are unreachable from any entry point.

The project is expected to contain a package.json or tsconfig.json, or at
least one recognized source file (.ts, .tsx, .js, .jsx).`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("cannot resolve path: %w", err)
		}

		if err := validateProject(dir); err != nil {
			return err
		}

		cfg, err := config.Load(dir, analyzeConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if analyzeThreshold > 0 {
			cfg.ConfidenceThresholds.MinimumThreshold = analyzeThreshold
		}

		result, diags, err := engine.New().Analyze(cmd.Context(), dir, cfg)
		if err != nil {
			var configErr *resolve.ConfigError
			if errors.As(err, &configErr) {
				return &types.ExitError{Code: 2, Message: err.Error()}
			}
			return err
		}

		if verbose {
			for _, d := range diags {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %v\n", d.Kind, d.Path, d.Err)
			}
		}

		if analyzeJSONOutput {
			if err := output.RenderJSON(cmd.OutOrStdout(), result); err != nil {
				return fmt.Errorf("render json: %w", err)
			}
		} else {
			output.RenderTerminal(cmd.OutOrStdout(), result)
		}

		if failOnErrors && result.Errors > 0 {
			return &types.ExitError{Code: 3, Message: fmt.Sprintf("%d error(s) during analysis", result.Errors)}
		}
		if failOnWarnings && result.Warnings > 0 {
			return &types.ExitError{Code: 3, Message: fmt.Sprintf("%d warning(s) during analysis", result.Warnings)}
		}

		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeConfigPath, "config", "", "path to .deadcorerc.yml config file")
	analyzeCmd.Flags().IntVar(&analyzeThreshold, "threshold", 0, "minimum confidence to report a file as dead (default from config, else 50)")
	analyzeCmd.Flags().BoolVar(&analyzeJSONOutput, "json", false, "output results as JSON")
	analyzeCmd.Flags().BoolVar(&failOnErrors, "fail-on-errors", false, "exit non-zero if any file failed to read or parse, or pattern extraction failed")
	analyzeCmd.Flags().BoolVar(&failOnWarnings, "fail-on-warnings", false, "exit non-zero if any warning was emitted")
	rootCmd.AddCommand(analyzeCmd)
}

// validateProject checks that dir exists, is a directory, and contains a
// recognized TypeScript/JavaScript project marker or source file.
func validateProject(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("directory not found: %s", dir)
	}
	if err != nil {
		return fmt.Errorf("cannot access directory: %s", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	indicators := []string{"package.json", "tsconfig.json", "jsconfig.json"}
	for _, f := range indicators {
		if _, err := os.Stat(filepath.Join(dir, f)); err == nil {
			return nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read directory: %s", err)
	}
	recognizedExt := map[string]bool{".ts": true, ".tsx": true, ".js": true, ".jsx": true}
	for _, entry := range entries {
		if !entry.IsDir() && recognizedExt[filepath.Ext(entry.Name())] {
			return nil
		}
	}

	return fmt.Errorf("no recognized TypeScript/JavaScript project found in: %s\nExpected package.json, tsconfig.json, or at least one .ts/.tsx/.js/.jsx file", dir)
}
