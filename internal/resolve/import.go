package resolve

import (
	"os"
	"path/filepath"
	"strings"
)

// relativeExtensions is the order ResolveImport tries suffixes in when a
// specifier names no extension.
var relativeExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// ResolveImport resolves specifier as seen from fromFile, returning the
// canonical absolute path of the target and true, or ("", false) when the
// specifier is external (bare, absolute, or simply unresolvable - a
// ResolveError is silent per the spec's error taxonomy: treated as
// external, never surfaced as a failure).
//
// The single most load-bearing rule here: a specifier ending in ".js"
// resolves to the sibling ".ts"/".tsx" file when that file exists on disk
// but the literal ".js" does not. Node16/NodeNext require the compiled
// ".js" extension in specifiers even when the source is TypeScript, so
// without this rule almost every relative import in a modern TS project
// would fail to resolve and its target would be misclassified dead.
func (p *Program) ResolveImport(fromFile, specifier string) (string, bool) {
	if !isRelative(specifier) {
		return "", false
	}
	return p.ResolveFromDir(filepath.Dir(fromFile), specifier)
}

// ResolveFromDir resolves specifier relative to dir using the same
// extension-fallback rules as ResolveImport, but without requiring a
// leading "./" - used for package.json's "main"/"bin" fields, which name
// a local path without import-specifier syntax.
//
// The ".js"-to-sibling-".ts"/".tsx" rewrite only applies under Node16/
// NodeNext resolution (p.Options.ModuleResolution != "node"): classic
// "node" resolution has no such rule, so a ".js" specifier there resolves
// only to a literal ".js" file, same as any other extension.
func (p *Program) ResolveFromDir(dir, specifier string) (string, bool) {
	target := filepath.Join(dir, filepath.FromSlash(specifier))
	ext := strings.ToLower(filepath.Ext(specifier))

	if p.Options.ModuleResolution != "node" && (ext == ".js" || ext == ".jsx") {
		base := strings.TrimSuffix(target, filepath.Ext(target))
		if !fileExists(target) {
			siblings := []string{".ts", ".tsx"}
			for _, want := range siblings {
				if candidate := base + want; fileExists(candidate) {
					return p.canonicalWithin(candidate)
				}
			}
		}
	}

	// A literal path that already carries one of our accepted source
	// extensions resolves directly; anything else (".json", no extension
	// at all, etc.) falls through to the suffix-appending loops below so
	// that non-source files never short-circuit resolution on their own.
	if isAcceptedExt(ext) && fileExists(target) {
		return p.canonicalWithin(target)
	}

	for _, e := range relativeExtensions {
		if candidate := target + e; fileExists(candidate) {
			return p.canonicalWithin(candidate)
		}
	}

	for _, e := range relativeExtensions {
		candidate := filepath.Join(target, "index"+e)
		if fileExists(candidate) {
			return p.canonicalWithin(candidate)
		}
	}

	return "", false
}

// isAcceptedExt reports whether ext (already lower-cased) is one of the
// source extensions discovery walks for.
func isAcceptedExt(ext string) bool {
	for _, e := range acceptedExt {
		if ext == e {
			return true
		}
	}
	return false
}

// canonicalWithin canonicalizes path and verifies it still falls under the
// program's root directory; a resolution that escapes the project root is
// treated as external, matching the spec's edge-case policy.
func (p *Program) canonicalWithin(path string) (string, bool) {
	canon, err := Canonicalize(path)
	if err != nil {
		return "", false
	}
	root, err := Canonicalize(p.RootDir)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(root, canon)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return canon, true
}

func isRelative(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
