package tools

import (
	"regexp"
	"strings"
)

// structuredPatterns detect SQL-like query syntax. A query matching any of
// them is passed through to the remote verbatim; everything else is treated
// as free text. The heuristic can misclassify free text containing bare
// boolean words ("cats and dogs" reads as structured); callers depend on
// the existing behavior, so it is kept as-is.
var structuredPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\w+\s*[=<>!]+\s*`),
	regexp.MustCompile(`(?i)\bAND\b`),
	regexp.MustCompile(`(?i)\bOR\b`),
	regexp.MustCompile(`(?i)\bLIKE\b`),
	regexp.MustCompile(`(?i)\bIN\b`),
	regexp.MustCompile(`(?i)\bNOT\b`),
	regexp.MustCompile(`(?i)\bBETWEEN\b`),
	regexp.MustCompile(`(?i)\bIS\b\s+\bNULL\b`),
}

// isStructuredQuery reports whether a query uses structured syntax.
func isStructuredQuery(query string) bool {
	for _, p := range structuredPatterns {
		if p.MatchString(query) {
			return true
		}
	}
	return false
}

// sanitizeQueryValue escapes characters that would break out of a quoted
// value in the remote query language: single quotes are doubled, and
// literal comment/terminator sequences are stripped.
func sanitizeQueryValue(value string) string {
	s := strings.ReplaceAll(value, "'", "''")
	// Known edge: stripping "--" before ";" means an input like "-;-"
	// yields "--" in the output. Callers treat the result as a quoted
	// fuzzy-match value, so the sequence is inert there.
	s = strings.ReplaceAll(s, "--", "")
	s = strings.ReplaceAll(s, ";", "")
	return s
}
