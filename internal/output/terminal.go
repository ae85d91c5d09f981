package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/deadcore/analyzer/internal/engine"
)

// Display thresholds for confidence coloring.
const (
	confidenceRedMin    = 85 // at or above: red (near-certain dead)
	confidenceYellowMin = 50 // at or above: yellow; below: uncolored (reported only when the threshold is lowered)
)

// colorsFor returns the red/yellow/dim color functions to use for w,
// disabled when w is not a terminal or NO_COLOR is set.
func colorsFor(w io.Writer) (red, yellow, dim func(format string, a ...interface{}) string) {
	enabled := true
	if os.Getenv("NO_COLOR") != "" {
		enabled = false
	}
	if f, ok := w.(*os.File); ok {
		enabled = enabled && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	} else {
		enabled = false
	}

	if !enabled {
		plain := func(format string, a ...interface{}) string { return fmt.Sprintf(format, a...) }
		return plain, plain, plain
	}
	return color.New(color.FgRed).SprintfFunc(), color.New(color.FgYellow).SprintfFunc(), color.New(color.Faint).SprintfFunc()
}

// confidenceColor renders a confidence value in red at confidenceRedMin or
// above, yellow at confidenceYellowMin or above, and uncolored below that.
func confidenceColor(w io.Writer, confidence int) string {
	red, yellow, _ := colorsFor(w)
	if confidence >= confidenceRedMin {
		return red("%d", confidence)
	}
	if confidence >= confidenceYellowMin {
		return yellow("%d", confidence)
	}
	return fmt.Sprintf("%d", confidence)
}

// RenderTerminal writes a human-readable summary of result to w: file and
// line counts, entry points, the ranked dead-file list with confidence and
// reasons, and a final diagnostics tally.
func RenderTerminal(w io.Writer, result *engine.AnalysisResult) {
	_, _, dim := colorsFor(w)

	fmt.Fprintf(w, "Analyzed %d files (%d lines of code) in %dms\n",
		result.FilesAnalyzed, result.LinesOfCode, result.PerformanceMetrics.AnalysisTimeMs)
	fmt.Fprintf(w, "Entry points: %d\n", len(result.EntryPoints))
	fmt.Fprintf(w, "Dependency graph: %d nodes, %d edges, %d reachable, %d unreachable\n",
		result.DependencyGraph.TotalNodes, result.DependencyGraph.TotalEdges,
		result.DependencyGraph.ReachableFiles, result.DependencyGraph.UnreachableFiles)
	if n := len(result.DependencyGraph.CircularDependencies); n > 0 {
		fmt.Fprintf(w, "Circular dependency groups: %d\n", n)
	}

	if len(result.DeadFiles) == 0 {
		fmt.Fprintln(w, "\nNo dead files found.")
	} else {
		fmt.Fprintf(w, "\n%d dead file(s):\n", len(result.DeadFiles))
		for _, df := range result.DeadFiles {
			fmt.Fprintf(w, "  [%s] %s\n", confidenceColor(w, df.Confidence), df.Path)
			for _, reason := range df.Reasons {
				fmt.Fprintf(w, "      %s %s\n", dim("-"), reason)
			}
		}
	}

	if result.Errors > 0 || result.Warnings > 0 {
		fmt.Fprintf(w, "\n%d error(s), %d warning(s)\n", result.Errors, result.Warnings)
	}
}
