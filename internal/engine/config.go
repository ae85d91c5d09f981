package engine

import (
	"regexp"

	"github.com/deadcore/analyzer/internal/detect"
	"github.com/deadcore/analyzer/internal/resolve"
)

// CustomPatternConfig is one user-configured regex pass: Regex's capture
// group SymbolGroup yields the symbol name recorded into
// DynamicUsage.customPatterns.
type CustomPatternConfig struct {
	Name        string
	Regex       string
	SymbolGroup int
}

// DynamicPatternsConfig holds the additional regex passes a caller can
// register on top of the built-in service-container/command-bus/dynamic-
// import detection.
type DynamicPatternsConfig struct {
	CustomPatterns []CustomPatternConfig
}

// ConfidenceThresholds tunes the scorer (see Config.ConfidenceThresholds).
type ConfidenceThresholds struct {
	MinimumThreshold            int
	ArchitecturalCoreMultiplier float64
	DynamicPatternBonus         int
}

// Config is the Unified Engine's input: the recognized options a
// collaborator (CLI, config-file loader) may set.
type Config struct {
	// EntryPoints are added unconditionally to the entry set.
	EntryPoints []string
	// Exclude lists globs; matching files are skipped during discovery.
	Exclude []string
	// CompilerOptions, when non-nil, overrides the Compiler Service's
	// discovered or synthesized defaults.
	CompilerOptions *resolve.CompilerOptions
	// ModuleResolution selects resolution mode: "node", "node16", or
	// "nodenext". Default "node16".
	ModuleResolution string

	DynamicPatterns      DynamicPatternsConfig
	ConfidenceThresholds ConfidenceThresholds

	// CacheEnabled is a collaborator-level hint; the engine itself holds
	// no cache across calls.
	CacheEnabled bool
}

// effectiveCompilerOptions returns the override passed to the Compiler
// Service, folding ModuleResolution - the spec's dedicated resolution-mode
// selector - on top of any compilerOptions passthrough. The two are
// distinct config knobs (spec.md: compilerOptions is a raw tsconfig
// passthrough, moduleResolution is the mode selector), but only one
// CompilerOptions.ModuleResolution field actually reaches the Compiler
// Service, so ModuleResolution wins when both are set.
func (c Config) effectiveCompilerOptions() *resolve.CompilerOptions {
	if c.ModuleResolution == "" {
		return c.CompilerOptions
	}
	var opts resolve.CompilerOptions
	if c.CompilerOptions != nil {
		opts = *c.CompilerOptions
	}
	opts.ModuleResolution = c.ModuleResolution
	return &opts
}

// DefaultConfig returns the engine's defaults: no explicit entry points or
// excludes, node16 resolution, a 0.5 architectural-core dampener, a
// dynamic-pattern-bonus unit of 20 (reproducing the -40/-50 rescue
// deltas documented in the scoring model at its default), and a minimum
// confidence threshold of 50.
func DefaultConfig() Config {
	return Config{
		ModuleResolution: "node16",
		ConfidenceThresholds: ConfidenceThresholds{
			MinimumThreshold:            50,
			ArchitecturalCoreMultiplier: 0.5,
			DynamicPatternBonus:         20,
		},
	}
}

// compileCustomPatterns turns the config's custom-pattern specs into
// compiled detect.CustomPattern values, skipping (and reporting) any whose
// regex fails to compile.
func compileCustomPatterns(specs []CustomPatternConfig) ([]detect.CustomPattern, []error) {
	var out []detect.CustomPattern
	var errs []error
	for _, spec := range specs {
		re, err := regexp.Compile(spec.Regex)
		if err != nil {
			errs = append(errs, &PatternConfigError{Name: spec.Name, Err: err})
			continue
		}
		out = append(out, detect.CustomPattern{Name: spec.Name, Regex: re, SymbolGroup: spec.SymbolGroup})
	}
	return out, errs
}

// PatternConfigError reports a custom dynamic-pattern whose regex failed
// to compile. Local: the pattern is skipped, not fatal to analysis.
type PatternConfigError struct {
	Name string
	Err  error
}

func (e *PatternConfigError) Error() string {
	return "custom pattern " + e.Name + ": " + e.Err.Error()
}

func (e *PatternConfigError) Unwrap() error { return e.Err }
