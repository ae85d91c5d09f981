// Package resolve is the Compiler Service: it owns the on-disk project
// view, discovers source files, loads or synthesizes compiler options, and
// exposes module resolution matching the semantics a TypeScript compiler
// applies in Node16/NodeNext mode.
//
// Grounded on the teacher's internal/discovery/walker.go (tree walk with
// skip-dirs and .gitignore exclusion) and internal/analyzer/c3_architecture
// /typescript.go (relative-import resolution against a known-files set).
// There is no off-the-shelf TypeScript module resolver in the example
// pack, so resolution is hand-rolled the same way the teacher hand-rolls
// its own TS import-graph resolution - see DESIGN.md.
package resolve

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/deadcore/analyzer/pkg/types"
)

// skipDirs lists directory names excluded from source discovery.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
}

// acceptedExt lists the extensions discovery walks for.
var acceptedExt = []string{".ts", ".tsx", ".js", ".jsx"}

// ConfigError indicates a malformed tsconfig.json or a non-existent
// project path. It is fatal: the engine aborts analysis on ConfigError.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error at %s: %s", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// CompilerOptions mirrors the subset of tsconfig.json compilerOptions that
// affect module resolution and source discovery.
type CompilerOptions struct {
	Target                           string
	ModuleResolution                 string // "node" | "node16" | "nodenext"
	AllowJS                          bool
	ResolveJSONModule                bool
	ESModuleInterop                  bool
	SkipLibCheck                     bool
	ForceConsistentCasingInFileNames bool
}

// DefaultCompilerOptions returns the synthesized defaults the spec
// mandates when no tsconfig.json is found: modern ES target, Node16
// resolution, allowJs, resolveJsonModule, esModuleInterop, skipLibCheck.
func DefaultCompilerOptions() CompilerOptions {
	return CompilerOptions{
		Target:             "ES2022",
		ModuleResolution:   "node16",
		AllowJS:            true,
		ResolveJSONModule:  true,
		ESModuleInterop:    true,
		SkipLibCheck:       true,
	}
}

// tsconfigFile is the minimal shape needed out of tsconfig.json: just
// enough to detect malformed JSON and pick up a handful of resolution-
// relevant compilerOptions. Unknown fields are ignored.
type tsconfigFile struct {
	CompilerOptions struct {
		Target                           string `json:"target"`
		ModuleResolution                 string `json:"moduleResolution"`
		AllowJs                          *bool  `json:"allowJs"`
		ResolveJSONModule                *bool  `json:"resolveJsonModule"`
		ESModuleInterop                  *bool  `json:"esModuleInterop"`
		SkipLibCheck                     *bool  `json:"skipLibCheck"`
		ForceConsistentCasingInFileNames *bool  `json:"forceConsistentCasingInFileNames"`
	} `json:"compilerOptions"`
}

// Program is the resolved, typed view of a project: its root directory,
// effective compiler options, and the set of discovered files.
type Program struct {
	RootDir string
	Options CompilerOptions

	// all holds every discovered file's canonical path (includes
	// declaration files; sourceFiles() filters those out).
	all []string
}

// CreateProgram discovers a tsconfig.json colocated with projectPath; if
// absent, synthesizes DefaultCompilerOptions. overrides, when non-nil, are
// merged on top: an empty string field keeps the discovered/default value,
// and a boolean field can only switch an option on (a false override keeps
// the discovered/default value).
func CreateProgram(projectPath string, overrides *CompilerOptions, excludeGlobs []string) (*Program, error) {
	info, err := os.Stat(projectPath)
	if err != nil || !info.IsDir() {
		return nil, &ConfigError{Path: projectPath, Err: fmt.Errorf("project path does not exist or is not a directory")}
	}

	opts, err := loadCompilerOptions(projectPath)
	if err != nil {
		return nil, err
	}
	if overrides != nil {
		opts = mergeOptions(opts, *overrides)
	}

	files, err := discoverFiles(projectPath, excludeGlobs)
	if err != nil {
		return nil, err
	}

	return &Program{RootDir: projectPath, Options: opts, all: files}, nil
}

func mergeOptions(base CompilerOptions, override CompilerOptions) CompilerOptions {
	if override.Target != "" {
		base.Target = override.Target
	}
	if override.ModuleResolution != "" {
		base.ModuleResolution = override.ModuleResolution
	}
	base.AllowJS = base.AllowJS || override.AllowJS
	base.ResolveJSONModule = base.ResolveJSONModule || override.ResolveJSONModule
	base.ESModuleInterop = base.ESModuleInterop || override.ESModuleInterop
	base.SkipLibCheck = base.SkipLibCheck || override.SkipLibCheck
	base.ForceConsistentCasingInFileNames = base.ForceConsistentCasingInFileNames || override.ForceConsistentCasingInFileNames
	return base
}

func loadCompilerOptions(projectPath string) (CompilerOptions, error) {
	path := filepath.Join(projectPath, "tsconfig.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultCompilerOptions(), nil
	}

	var cfg tsconfigFile
	if err := json.Unmarshal(data, &cfg); err != nil {
		return CompilerOptions{}, &ConfigError{Path: path, Err: err}
	}

	opts := DefaultCompilerOptions()
	if cfg.CompilerOptions.Target != "" {
		opts.Target = cfg.CompilerOptions.Target
	}
	if cfg.CompilerOptions.ModuleResolution != "" {
		opts.ModuleResolution = strings.ToLower(cfg.CompilerOptions.ModuleResolution)
	}
	if cfg.CompilerOptions.AllowJs != nil {
		opts.AllowJS = *cfg.CompilerOptions.AllowJs
	}
	if cfg.CompilerOptions.ResolveJSONModule != nil {
		opts.ResolveJSONModule = *cfg.CompilerOptions.ResolveJSONModule
	}
	if cfg.CompilerOptions.ESModuleInterop != nil {
		opts.ESModuleInterop = *cfg.CompilerOptions.ESModuleInterop
	}
	if cfg.CompilerOptions.SkipLibCheck != nil {
		opts.SkipLibCheck = *cfg.CompilerOptions.SkipLibCheck
	}
	if cfg.CompilerOptions.ForceConsistentCasingInFileNames != nil {
		opts.ForceConsistentCasingInFileNames = *cfg.CompilerOptions.ForceConsistentCasingInFileNames
	}
	return opts, nil
}

// discoverFiles walks rootDir, skipping node_modules/.git/dist/build/
// coverage and any path matching an exclude glob, returning canonical
// absolute paths (symlinks resolved, separators normalized) for every
// .ts/.tsx/.js/.jsx file found.
func discoverFiles(rootDir string, excludeGlobs []string) ([]string, error) {
	var gitIgnore *ignore.GitIgnore
	if _, err := os.Stat(filepath.Join(rootDir, ".gitignore")); err == nil {
		gitIgnore, _ = ignore.CompileIgnoreFile(filepath.Join(rootDir, ".gitignore"))
	}

	var files []string
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()

		if d.IsDir() {
			if name != "." && strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			if skipDirs[name] {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		accepted := false
		for _, e := range acceptedExt {
			if ext == e {
				accepted = true
				break
			}
		}
		if !accepted {
			return nil
		}

		rel, relErr := filepath.Rel(rootDir, path)
		if relErr == nil {
			if gitIgnore != nil && gitIgnore.MatchesPath(rel) {
				return nil
			}
			if matchesAnyGlob(excludeGlobs, rel) {
				return nil
			}
		}

		canon, err := Canonicalize(path)
		if err != nil {
			return nil
		}
		files = append(files, canon)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// SourceFiles returns the discovered files that are neither declaration
// files (*.d.ts) nor inside node_modules. node_modules is already excluded
// during discovery, so this filters by extension class only.
func (p *Program) SourceFiles() []string {
	var out []string
	for _, f := range p.all {
		if types.ExtensionFromPath(f) == types.ExtDTS {
			continue
		}
		out = append(out, f)
	}
	return out
}

// AllFiles returns every discovered file, including declaration files.
func (p *Program) AllFiles() []string {
	out := make([]string, len(p.all))
	copy(out, p.all)
	return out
}
