package resolve

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Canonicalize resolves symlinks and normalizes separators so that the
// same on-disk file always produces the same path string, regardless of
// how it was reached (a relative import vs. an absolute entry-point path).
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Best-effort: a file that doesn't exist yet (or a broken symlink)
		// still gets a stable canonical form from the absolute, cleaned path.
		resolved = filepath.Clean(abs)
	}
	return filepath.ToSlash(resolved), nil
}

// matchesAnyGlob reports whether rel (a slash-normalized, root-relative
// path) matches any of the exclude globs. Glob syntax follows doublestar,
// so "**/*.test.ts" and "src/generated/**" both work as expected.
func matchesAnyGlob(globs []string, rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}
