package engine

import "strings"

// countCodeLines returns the number of non-empty, non-comment lines in
// content and reports whether the file has zero such lines (the "empty or
// comment-only" scoring factor). The comment heuristic tracks `/* */`
// block state line-by-line and treats a line that is blank after that
// stripping, or that starts with "//", as non-code; it does not need to be
// a full lexer since it only gates a +10 confidence nudge, not resolution.
func countCodeLines(content []byte) (int, bool) {
	lines := strings.Split(string(content), "\n")
	count := 0
	inBlockComment := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if inBlockComment {
			if idx := strings.Index(trimmed, "*/"); idx >= 0 {
				inBlockComment = false
				trimmed = strings.TrimSpace(trimmed[idx+2:])
			} else {
				continue
			}
		}

		for {
			if trimmed == "" {
				break
			}
			if strings.HasPrefix(trimmed, "//") {
				trimmed = ""
				break
			}
			if strings.HasPrefix(trimmed, "/*") {
				if idx := strings.Index(trimmed, "*/"); idx >= 0 {
					trimmed = strings.TrimSpace(trimmed[idx+2:])
					continue
				}
				inBlockComment = true
				trimmed = ""
				break
			}
			break
		}

		if trimmed != "" {
			count++
		}
	}

	return count, count == 0
}
