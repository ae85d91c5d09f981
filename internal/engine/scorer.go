package engine

import (
	"path/filepath"
	"strings"

	"github.com/deadcore/analyzer/internal/detect"
	"github.com/deadcore/analyzer/internal/graph"
)

// scoringContext bundles everything the scorer needs per candidate beyond
// the graph node itself: the merged dynamic-usage evidence, the set of
// files that are part of an isolated (wholly-unreachable) cycle, the
// per-file exported-name lists gathered during edge extraction, and the
// resolved targets of every captured dynamic import.
type scoringContext struct {
	usage             *detect.DynamicUsage
	isolatedCycle     map[string]bool
	exportedNames     map[string][]string
	dynamicImportHits map[string]bool // canonical file path -> "a dynamic import resolved here"
	emptyOrCommentsOf map[string]bool
	thresholds        ConfidenceThresholds
}

// scoreCandidate applies the spec's additive-then-multiplicative-then-
// clamp scoring model to one unreachable, non-entry-point node and
// returns its confidence and ordered reasons.
func scoreCandidate(node *graph.Node, ctx *scoringContext) (int, []string) {
	score := 70
	reasons := []string{"not reachable from any entry point"}

	if node.InDegree == 0 {
		score += 15
		reasons = append(reasons, "no incoming references")
	} else if node.LastImportType == graph.TypeImport {
		score -= 10
		reasons = append(reasons, "referenced only by type-only imports")
	}

	if symbolMatches(node.Path, ctx) {
		score += symbolMatchDelta(ctx.thresholds)
		reasons = append(reasons, "symbol appears in service-container/command-bus registration")
	}

	if ctx.dynamicImportHits[node.Path] {
		score += dynamicImportDelta(ctx.thresholds)
		reasons = append(reasons, "target of a dynamic import")
	}

	if ctx.isolatedCycle[node.Path] {
		score += 5
		reasons = append(reasons, "isolated cycle of unreferenced files")
	}

	if ctx.emptyOrCommentsOf[node.Path] {
		score += 10
		reasons = append(reasons, "no executable content")
	}

	if matches := detect.ArchitecturalCoreMatchCount(node.Path); matches > 0 {
		multiplier := 1.0
		for i := 0; i < matches; i++ {
			multiplier *= ctx.thresholds.ArchitecturalCoreMultiplier
		}
		score = int(float64(score) * multiplier)
		reasons = append(reasons, "file name matches architectural-core pattern")
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score, reasons
}

// symbolMatchDelta and dynamicImportDelta derive the two rescue
// magnitudes from the single configured dynamicPatternBonus unit, chosen
// so that the documented default (20) reproduces the scoring table's
// literal -40 and -50 exactly. See DESIGN.md's Open Question decision on
// the architecturalCoreMultiplier/dynamicPatternBonus interaction.
func symbolMatchDelta(t ConfidenceThresholds) int {
	return -2 * t.DynamicPatternBonus
}

func dynamicImportDelta(t ConfidenceThresholds) int {
	return -(5 * t.DynamicPatternBonus) / 2
}

// symbolMatches reports whether path's basename (without extension) or
// any of its exported identifiers is a case-sensitive, whole-string key
// in serviceContainer, commandBus, or customPatterns.
func symbolMatches(path string, ctx *scoringContext) bool {
	candidates := make([]string, 0, 1+len(ctx.exportedNames[path]))
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	candidates = append(candidates, base)
	candidates = append(candidates, ctx.exportedNames[path]...)

	for _, name := range candidates {
		if ctx.usage.ServiceContainer.Has(name) || ctx.usage.CommandBus.Has(name) || ctx.usage.CustomPatterns.Has(name) {
			return true
		}
	}
	return false
}
