package utils

import "strings"

// NormalizeInput lowercases s and drops everything but a-z and spaces.
// Newlines and tabs are dropped too, so lines of a file join into one run.
func NormalizeInput(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || r == ' ' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
