// Package strutil provides string helpers shared by the ai packages.
package strutil

import (
	"strings"
	"unicode"
)

// Truncate shortens s to at most maxLen runes and appends "...".
// Returns empty string if maxLen <= 0.
func Truncate(s string, maxLen int) string {
	if s == "" || maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// Title upper-cases the first letter of every word, where words are split on
// spaces and hyphens: "sci-fi" becomes "Sci-Fi".
func Title(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	upper := true
	for _, r := range s {
		if upper && unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		if r == ' ' || r == '-' {
			upper = true
		} else {
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
