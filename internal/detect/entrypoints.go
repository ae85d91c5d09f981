package detect

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/deadcore/analyzer/internal/resolve"
)

// cliConventionalPaths are checked for existence and added as entry points
// before the general conventional entry paths, per the spec's entry-point
// discovery algorithm step 2.
var cliConventionalPaths = []string{
	"src/cli/cli.ts",
	"src/cli/index.ts",
	"src/cli.ts",
	"cli/cli.ts",
	"cli/index.ts",
	"bin/cli.ts",
	"bin/index.ts",
}

// conventionalEntryStems are joined with each of the .ts/.tsx extensions
// to form step 3's conventional entry paths.
var conventionalEntryStems = []string{
	"src/index",
	"src/main",
	"index",
	"main",
	"src/app",
	"app",
	"src/server",
	"server",
}

var conventionalExtensions = []string{".ts", ".tsx"}

// packageJSON is the minimal shape of package.json needed for entry-point
// discovery: "main" (a string) and "bin" (a string, or a map of command
// name to script path).
type packageJSON struct {
	Main string          `json:"main"`
	Bin  json.RawMessage `json:"bin"`
}

// DiscoverEntryPoints implements the spec's entry-point discovery
// algorithm: packaging metadata, then CLI-conventional paths, then
// general conventional paths, then explicit overrides - deduplicated,
// first-seen order preserved.
//
// Grounded on the teacher's internal/discovery classification of
// conventional file roles and cmd/scan.go's validateProject, which checks
// the same packaging-metadata files (package.json, tsconfig.json) to
// recognize a project.
func DiscoverEntryPoints(prog *resolve.Program, explicit []string) []string {
	var found []string
	seen := make(map[string]bool)
	add := func(path string) {
		if path == "" || seen[path] {
			return
		}
		seen[path] = true
		found = append(found, path)
	}

	for _, path := range fromPackagingMetadata(prog) {
		add(path)
	}

	for _, rel := range cliConventionalPaths {
		if path, ok := existingFile(prog.RootDir, rel); ok {
			add(path)
		}
	}

	for _, stem := range conventionalEntryStems {
		for _, ext := range conventionalExtensions {
			if path, ok := existingFile(prog.RootDir, stem+ext); ok {
				add(path)
			}
		}
	}

	for _, path := range explicit {
		if canon, err := resolve.Canonicalize(path); err == nil {
			add(canon)
		} else {
			add(path)
		}
	}

	return found
}

// fromPackagingMetadata resolves package.json's "main" and "bin" fields.
// A missing packaging file is not an error - it simply contributes no
// entry points.
func fromPackagingMetadata(prog *resolve.Program) []string {
	data, err := os.ReadFile(filepath.Join(prog.RootDir, "package.json"))
	if err != nil {
		return nil
	}

	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil
	}

	var out []string
	if pkg.Main != "" {
		if resolved, ok := prog.ResolveFromDir(prog.RootDir, pkg.Main); ok {
			out = append(out, resolved)
		}
	}

	for _, binPath := range binPaths(pkg.Bin) {
		if resolved, ok := prog.ResolveFromDir(prog.RootDir, binPath); ok {
			out = append(out, resolved)
		}
	}

	return out
}

// binPaths normalizes package.json's "bin" field, which is either a bare
// string (single executable) or an object mapping command name to script
// path.
func binPaths(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if asString == "" {
			return nil
		}
		return []string{asString}
	}

	var asMap map[string]string
	if err := json.Unmarshal(raw, &asMap); err == nil {
		names := make([]string, 0, len(asMap))
		for name := range asMap {
			names = append(names, name)
		}
		sort.Strings(names)

		out := make([]string, 0, len(names))
		for _, name := range names {
			if v := asMap[name]; v != "" {
				out = append(out, v)
			}
		}
		return out
	}

	return nil
}

// existingFile joins rootDir and rel and reports whether a regular file
// exists there, returning its canonical path.
func existingFile(rootDir, rel string) (string, bool) {
	path := filepath.Join(rootDir, filepath.FromSlash(rel))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	canon, err := resolve.Canonicalize(path)
	if err != nil {
		return "", false
	}
	return canon, true
}
