package detect

import (
	"path/filepath"
	"strings"
)

// architecturalCorePatterns are basename substrings (checked
// case-insensitively) that mark a file as infrastructure the scorer
// should be reluctant to call dead even with zero static references.
var architecturalCorePatterns = []string{
	"application",
	"container",
	"servicecontainer",
	"commandbus",
	"config",
	"bootstrap",
	"kernel",
	"registry",
	"factory",
	"builder",
	"manager",
	"service",
	"provider",
}

// IsArchitecturalCore reports whether path's basename (case-insensitive,
// extension stripped) contains any recognized architectural-core pattern.
func IsArchitecturalCore(path string) bool {
	return ArchitecturalCoreMatchCount(path) > 0
}

// ArchitecturalCoreMatchCount counts how many distinct architectural-core
// patterns path's basename matches. A name like "ApplicationContainer"
// matches both "application" and "container" - two independent signals
// that a file is infrastructure, not one. The scorer compounds the
// dampener once per match (multiplier^matchCount) so that a file matching
// several patterns is trusted more than one matching a single, generic
// pattern like "Service".
func ArchitecturalCoreMatchCount(path string) int {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	lower := strings.ToLower(base)

	count := 0
	for _, pattern := range architecturalCorePatterns {
		if strings.Contains(lower, pattern) {
			count++
		}
	}
	return count
}
