// Package engine is the Unified Analysis Engine: the orchestrator that
// drives the Compiler Service to build a program, walks each source file
// to populate the Dependency Graph, invokes the Pattern Detector, computes
// reachability, scores the resulting dead-file candidates, and emits the
// AnalysisResult. Control flow is strictly one-way - engine calls
// collaborators, never the reverse.
//
// Grounded on the teacher's internal/pipeline/pipeline.go: the same
// sequential-stages-with-a-parallel-analysis-fan-out shape, the same
// errgroup-based "errors are logged but do not abort the scan" policy, and
// the same mutex-guarded accumulator for results gathered off the fan-out.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deadcore/analyzer/internal/detect"
	"github.com/deadcore/analyzer/internal/graph"
	"github.com/deadcore/analyzer/internal/resolve"
	"github.com/deadcore/analyzer/internal/tsast"
)

// Engine runs one analyze() call at a time; it holds no state across
// calls. A fresh Engine (or a reused one - it is stateless) is safe to
// call Analyze on concurrently for different projects.
type Engine struct{}

// New returns a ready-to-use Engine.
func New() *Engine {
	return &Engine{}
}

// Analyze runs the full algorithm described in the spec's Unified Engine
// section over projectPath with cfg. Fatal failures abort and are returned
// directly: a ConfigError from the program build, a parser setup failure,
// or an InvariantError. Per-file failures are accumulated as Diagnostics
// and folded into the result's errors/warnings counters.
func (e *Engine) Analyze(ctx context.Context, projectPath string, cfg Config) (*AnalysisResult, []Diagnostic, error) {
	start := time.Now()
	var diags []Diagnostic

	// 1. Program build.
	program, err := resolve.CreateProgram(projectPath, cfg.effectiveCompilerOptions(), cfg.Exclude)
	if err != nil {
		return nil, nil, err
	}

	sourceFiles := program.SourceFiles()
	sort.Strings(sourceFiles)

	g := graph.New()

	// 2. Node seeding.
	for _, f := range sourceFiles {
		g.AddFile(f)
	}

	// 3. Entry points.
	entryPoints := detect.DiscoverEntryPoints(program, cfg.EntryPoints)
	if len(entryPoints) == 0 {
		if syn, ok := synthesizeEntryPoint(program.RootDir, sourceFiles); ok {
			entryPoints = []string{syn}
		}
	}
	if len(entryPoints) == 0 {
		diags = append(diags, Diagnostic{Kind: WarningKind, Err: fmt.Errorf("no entry points discovered; treating every file as an entry point")})
		entryPoints = append(entryPoints, sourceFiles...)
	}
	for _, ep := range entryPoints {
		g.AddEntryPoint(ep)
	}

	// 4+5. Edge extraction and dynamic-usage collection, parallelized
	// across source files with the graph's own mutation gate serializing
	// writes (spec section 5).
	customPatterns, patternErrs := compileCustomPatterns(cfg.DynamicPatterns.CustomPatterns)
	for _, perr := range patternErrs {
		diags = append(diags, Diagnostic{Kind: PatternErrorKind, Err: perr})
	}

	usage := detect.NewDynamicUsage()
	exported := make(map[string][]string)
	locByFile := make(map[string]int)
	emptyOrComments := make(map[string]bool)

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	parser, err := tsast.NewParser()
	if err != nil {
		return nil, nil, fmt.Errorf("create parser: %w", err)
	}
	defer parser.Close()

	for _, f := range sourceFiles {
		f := f
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return nil
			default:
			}

			content, readErr := os.ReadFile(f)
			if readErr != nil {
				g.MarkUnknown(f)
				mu.Lock()
				diags = append(diags, Diagnostic{Kind: ParseErrorKind, Path: f, Err: readErr})
				mu.Unlock()
				return nil
			}

			lines, isEmpty := countCodeLines(content)

			tree, parseErr := parser.ParseFile(strings.ToLower(filepath.Ext(f)), content)
			if parseErr != nil {
				g.MarkUnknown(f)
				mu.Lock()
				diags = append(diags, Diagnostic{Kind: ParseErrorKind, Path: f, Err: parseErr})
				locByFile[f] = lines
				mu.Unlock()
				return nil
			}
			defer tree.Close()

			refs := extractImportRefs(tree.RootNode(), content)
			names := exportedNames(tree.RootNode(), content)

			for _, ref := range refs {
				resolved, ok := program.ResolveImport(f, ref.specifier)
				if !ok {
					continue // ResolveError: silent, treated as external
				}
				g.AddDependency(f, resolved, ref.kind)
			}

			fileUsage, patErrs := detect.ReadAndExtract(f, parser, customPatterns)

			mu.Lock()
			usage.Merge(fileUsage)
			exported[f] = names
			locByFile[f] = lines
			emptyOrComments[f] = isEmpty
			for _, perr := range patErrs {
				diags = append(diags, Diagnostic{Kind: PatternErrorKind, Path: f, Err: perr})
			}
			mu.Unlock()

			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	for _, f := range sourceFiles {
		if !detect.IsArchitecturalCore(f) {
			continue
		}
		// Every sourceFiles entry was seeded into g at step 2, before any
		// goroutine could have touched the graph; a miss here means the
		// seeding/scoring phases have drifted out of sync.
		node := g.Node(f)
		if node == nil {
			return nil, nil, &InvariantError{Detail: fmt.Sprintf("architectural-core file %s missing from graph after seeding", f)}
		}
		node.IsArchitecturalCore = true
	}

	// 6. Reachability.
	reachable := g.FindReachable()

	// 7. Dead candidate identification.
	entrySet := make(map[string]bool, len(entryPoints))
	for _, ep := range entryPoints {
		entrySet[ep] = true
	}

	cycles := g.GetCycles()
	isolatedCycle := make(map[string]bool)
	for _, members := range cycles {
		allUnreachable := true
		for _, m := range members {
			if reachable[m] {
				allUnreachable = false
				break
			}
		}
		if allUnreachable {
			for _, m := range members {
				isolatedCycle[m] = true
			}
		}
	}

	dynamicImportHits := resolveDynamicImportTargets(program, usage.DynamicImports)

	scoreCtx := &scoringContext{
		usage:             usage,
		isolatedCycle:     isolatedCycle,
		exportedNames:     exported,
		dynamicImportHits: dynamicImportHits,
		emptyOrCommentsOf: emptyOrComments,
		thresholds:        cfg.ConfidenceThresholds,
	}

	var deadFiles []DeadFile
	var errorCount, warningCount int
	for _, d := range diags {
		if d.Kind == WarningKind {
			warningCount++
		} else {
			errorCount++
		}
	}

	sourceFileSet := make(map[string]bool, len(sourceFiles))
	for _, f := range sourceFiles {
		sourceFileSet[f] = true
	}

	for _, node := range g.Nodes() {
		if !sourceFileSet[node.Path] {
			continue // not an analyzed source file (e.g. a resolved .json import)
		}
		if node.Unknown || node.IsEntryPoint || entrySet[node.Path] || reachable[node.Path] {
			continue
		}
		// 8. Confidence scoring.
		confidence, reasons := scoreCandidate(node, scoreCtx)
		node.Confidence = confidence
		// 9. Thresholding.
		if confidence < cfg.ConfidenceThresholds.MinimumThreshold {
			continue
		}
		deadFiles = append(deadFiles, DeadFile{Path: node.Path, Confidence: confidence, Reasons: reasons})
	}

	// 10. Order by descending confidence, then by path.
	sort.Slice(deadFiles, func(i, j int) bool {
		if deadFiles[i].Confidence != deadFiles[j].Confidence {
			return deadFiles[i].Confidence > deadFiles[j].Confidence
		}
		return deadFiles[i].Path < deadFiles[j].Path
	})

	totalLoc := 0
	for _, n := range locByFile {
		totalLoc += n
	}

	reachableCount := 0
	for _, f := range sourceFiles {
		if reachable[f] {
			reachableCount++
		}
	}

	result := &AnalysisResult{
		FilesAnalyzed: len(sourceFiles),
		LinesOfCode:   totalLoc,
		PerformanceMetrics: PerformanceMetrics{
			AnalysisTimeMs: time.Since(start).Milliseconds(),
		},
		EntryPoints: entryPoints,
		DependencyGraph: DependencyGraphSummary{
			TotalNodes:           g.NodeCount(),
			TotalEdges:           g.EdgeCount(),
			ReachableFiles:       reachableCount,
			UnreachableFiles:     len(sourceFiles) - reachableCount,
			CircularDependencies: cycles,
		},
		DeadFiles: deadFiles,
		DynamicUsage: DynamicUsageSummary{
			ServiceContainer: usage.ServiceContainer.ToMap(),
			CommandBus:       usage.CommandBus.ToMap(),
			DynamicImports:   usage.DynamicImports.ToMap(),
			CustomPatterns:   usage.CustomPatterns.ToMap(),
		},
		Errors:   errorCount,
		Warnings: warningCount,
	}

	return result, diags, nil
}

// synthesizeEntryPoint looks for the first file matching src/index.* or
// index.* among sourceFiles, in sorted order, when the detector's
// algorithm produced no entry points at all.
func synthesizeEntryPoint(rootDir string, sourceFiles []string) (string, bool) {
	candidates := make([]string, len(sourceFiles))
	copy(candidates, sourceFiles)
	sort.Strings(candidates)

	for _, f := range candidates {
		rel, err := filepath.Rel(rootDir, f)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		base := filepath.Base(rel)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		if stem != "index" {
			continue
		}
		if rel == base || strings.HasPrefix(rel, "src/") {
			return f, true
		}
	}
	return "", false
}

// resolveDynamicImportTargets resolves every captured dynamic-import
// specifier against the file(s) that contained it, returning the set of
// canonical target paths that at least one dynamic import resolves to.
func resolveDynamicImportTargets(program *resolve.Program, idx *detect.SymbolIndex) map[string]bool {
	hits := make(map[string]bool)
	for _, specifier := range idx.Keys() {
		for _, fromFile := range idx.Files(specifier) {
			if resolved, ok := program.ResolveImport(fromFile, specifier); ok {
				hits[resolved] = true
			}
		}
	}
	return hits
}
