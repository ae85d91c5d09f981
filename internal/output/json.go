// Package output renders an engine.AnalysisResult to the CLI's two
// supported surfaces: a plain JSON document and a colorized terminal
// summary.
//
// Grounded on the teacher's internal/output/json.go (a JSONReport struct
// encoded with encoding/json.Encoder + SetIndent) and internal/output
// /terminal.go (fatih/color-driven threshold coloring, NO_COLOR aware).
// The chart/HTML/badge rendering those files also carried is dropped -
// see DESIGN.md.
package output

import (
	"encoding/json"
	"io"

	"github.com/deadcore/analyzer/internal/engine"
)

// RenderJSON writes result to w as pretty-printed JSON, matching the
// engine.AnalysisResult field names exactly (no intermediate report
// struct is needed - the result is already the wire shape).
func RenderJSON(w io.Writer, result *engine.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
