// Package extract implements the heuristic text extraction strategies:
// label-proximity, key-value, pattern-anchored, their ensemble, and the
// item-table detector. Every strategy consumes a plain text blob and
// produces an invoice.Record; it does not matter which OCR source the
// text came from.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var innerSpaceRe = regexp.MustCompile(`\s+`)

// SplitLines breaks a text blob into trimmed, whitespace-collapsed,
// non-empty lines.
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		cleaned := strings.TrimSpace(innerSpaceRe.ReplaceAllString(line, " "))
		if cleaned != "" {
			lines = append(lines, cleaned)
		}
	}
	return lines
}

// hasColon reports whether the line contains a colon-like separator
// (ASCII or fullwidth).
func hasColon(line string) bool {
	return strings.ContainsAny(line, ":：")
}

// splitColon splits a line at its first colon-like separator. ok is
// false when the line has none.
func splitColon(line string) (left, right string, ok bool) {
	idx := strings.IndexAny(line, ":：")
	if idx < 0 {
		return line, "", false
	}
	_, size := utf8.DecodeRuneInString(line[idx:])
	return line[:idx], line[idx+size:], true
}
