package tools

import "strings"

// CleanPath strips whitespace, backticks, single quotes and double quotes
// surrounding a path, in that order.
func CleanPath(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`")
	s = strings.Trim(s, "'")
	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}

// CleanInput strips whitespace and backticks, then removes one pair of
// matching outer quotes.
func CleanInput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`")
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == s[len(s)-1] && (s[0] == '\'' || s[0] == '"') {
		s = s[1 : len(s)-1]
	}
	return s
}

// TruncateRunes cuts s to at most n characters without splitting a UTF-8
// sequence. It reports whether anything was cut.
func TruncateRunes(s string, n int) (string, bool) {
	if len(s) <= n {
		return s, false
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i], true
		}
		count++
	}
	return s, false
}
