// Package config loads .deadcorerc.yml project-level configuration,
// overriding the engine's defaults.
//
// Grounded on the teacher's internal/config/config.go: same dotfile
// discovery (.deadcorerc.yml then .deadcorerc.yaml, or an explicit
// --config path), same strict yaml.v3 decoding plus a Validate() pass.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/deadcore/analyzer/internal/engine"
	"github.com/deadcore/analyzer/internal/resolve"
)

// FileConfig is the .deadcorerc.yml shape. Every field is optional; a
// zero value means "use the engine default" except where noted.
type FileConfig struct {
	EntryPoints      []string               `yaml:"entryPoints"`
	Exclude          []string                `yaml:"exclude"`
	CompilerOptions  *compilerOptions        `yaml:"compilerOptions"`
	ModuleResolution string                  `yaml:"moduleResolution"`
	DynamicPatterns  dynamicPatternsConfig   `yaml:"dynamicPatterns"`
	ConfidenceThresholds confidenceThresholds `yaml:"confidenceThresholds"`
	CacheEnabled     bool                    `yaml:"cacheEnabled"`
}

// compilerOptions is the raw tsconfig-style passthrough (spec.md:
// "compilerOptions - passed through to the Compiler Service, overriding
// defaults"). It deliberately has no moduleResolution field of its own:
// resolution mode is selected exclusively through FileConfig's top-level
// ModuleResolution, which is the dedicated knob the spec names separately
// (spec.md: "moduleResolution - selects resolution mode; default node16").
type compilerOptions struct {
	Target                           string `yaml:"target"`
	AllowJS                          bool   `yaml:"allowJs"`
	ResolveJSONModule                bool   `yaml:"resolveJsonModule"`
	ESModuleInterop                  bool   `yaml:"esModuleInterop"`
	SkipLibCheck                     bool   `yaml:"skipLibCheck"`
	ForceConsistentCasingInFileNames bool   `yaml:"forceConsistentCasingInFileNames"`
}

type customPatternConfig struct {
	Name        string `yaml:"name"`
	Regex       string `yaml:"regex"`
	SymbolGroup int    `yaml:"symbolGroup"`
}

type dynamicPatternsConfig struct {
	CustomPatterns []customPatternConfig `yaml:"customPatterns"`
}

type confidenceThresholds struct {
	MinimumThreshold            *int     `yaml:"minimumThreshold"`
	ArchitecturalCoreMultiplier *float64 `yaml:"architecturalCoreMultiplier"`
	DynamicPatternBonus         *int     `yaml:"dynamicPatternBonus"`
}

// Load discovers .deadcorerc.yml/.deadcorerc.yaml in dir (or reads
// explicitPath, when non-empty) and returns an engine.Config with the
// file's overrides applied on top of engine.DefaultConfig(). If no config
// file is found and explicitPath is empty, returns the engine default
// with no error.
func Load(dir string, explicitPath string) (engine.Config, error) {
	cfg := engine.DefaultConfig()

	configPath := explicitPath
	if configPath == "" {
		ymlPath := filepath.Join(dir, ".deadcorerc.yml")
		yamlPath := filepath.Join(dir, ".deadcorerc.yaml")
		if _, err := os.Stat(ymlPath); err == nil {
			configPath = ymlPath
		} else if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", configPath, err)
	}

	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", configPath, err)
	}

	if err := fc.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	fc.applyTo(&cfg)
	return cfg, nil
}

// Validate checks the decoded file's values are in range before they are
// merged into an engine.Config.
func (fc *FileConfig) Validate() error {
	switch fc.ModuleResolution {
	case "", "node", "node16", "nodenext":
	default:
		return fmt.Errorf("unsupported moduleResolution %q (want node, node16, or nodenext)", fc.ModuleResolution)
	}

	if t := fc.ConfidenceThresholds.MinimumThreshold; t != nil && (*t < 0 || *t > 100) {
		return fmt.Errorf("confidenceThresholds.minimumThreshold must be in [0, 100], got %d", *t)
	}
	if m := fc.ConfidenceThresholds.ArchitecturalCoreMultiplier; m != nil && (*m < 0 || *m > 1) {
		return fmt.Errorf("confidenceThresholds.architecturalCoreMultiplier must be in [0, 1], got %v", *m)
	}
	if b := fc.ConfidenceThresholds.DynamicPatternBonus; b != nil && *b < 0 {
		return fmt.Errorf("confidenceThresholds.dynamicPatternBonus must be >= 0, got %d", *b)
	}

	for _, cp := range fc.DynamicPatterns.CustomPatterns {
		if cp.Name == "" {
			return fmt.Errorf("dynamicPatterns.customPatterns entry missing name")
		}
		if cp.Regex == "" {
			return fmt.Errorf("dynamicPatterns.customPatterns %q missing regex", cp.Name)
		}
	}

	return nil
}

// applyTo merges fc's overrides into cfg. Unset (zero-value) scalar
// fields leave cfg's default untouched; slices and the pointer-typed
// threshold fields are only applied when present.
func (fc *FileConfig) applyTo(cfg *engine.Config) {
	if len(fc.EntryPoints) > 0 {
		cfg.EntryPoints = fc.EntryPoints
	}
	if len(fc.Exclude) > 0 {
		cfg.Exclude = fc.Exclude
	}
	if fc.ModuleResolution != "" {
		cfg.ModuleResolution = fc.ModuleResolution
	}
	if fc.CompilerOptions != nil {
		cfg.CompilerOptions = &resolve.CompilerOptions{
			Target:                           fc.CompilerOptions.Target,
			AllowJS:                          fc.CompilerOptions.AllowJS,
			ResolveJSONModule:                fc.CompilerOptions.ResolveJSONModule,
			ESModuleInterop:                  fc.CompilerOptions.ESModuleInterop,
			SkipLibCheck:                     fc.CompilerOptions.SkipLibCheck,
			ForceConsistentCasingInFileNames: fc.CompilerOptions.ForceConsistentCasingInFileNames,
		}
	}

	for _, cp := range fc.DynamicPatterns.CustomPatterns {
		cfg.DynamicPatterns.CustomPatterns = append(cfg.DynamicPatterns.CustomPatterns, engine.CustomPatternConfig{
			Name:        cp.Name,
			Regex:       cp.Regex,
			SymbolGroup: cp.SymbolGroup,
		})
	}

	if t := fc.ConfidenceThresholds.MinimumThreshold; t != nil {
		cfg.ConfidenceThresholds.MinimumThreshold = *t
	}
	if m := fc.ConfidenceThresholds.ArchitecturalCoreMultiplier; m != nil {
		cfg.ConfidenceThresholds.ArchitecturalCoreMultiplier = *m
	}
	if b := fc.ConfidenceThresholds.DynamicPatternBonus; b != nil {
		cfg.ConfidenceThresholds.DynamicPatternBonus = *b
	}

	cfg.CacheEnabled = cfg.CacheEnabled || fc.CacheEnabled
}
