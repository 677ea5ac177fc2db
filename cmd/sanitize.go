package cmd

import "strings"

// sanitize replaces C0 and C1 control characters with '?' before document
// text reaches a terminal, so ids and messages cannot carry escape sequences.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || (r >= 0x7F && r <= 0x9F) {
			return '?'
		}
		return r
	}, s)
}
