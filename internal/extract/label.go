package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/garyjia/invoice-bench/internal/invoice"
)

// amountTokenRe matches an amount-shaped token inside a matched label
// line, used as a last resort for the totals fields.
var amountTokenRe = regexp.MustCompile(`[0-9]+(?:[.,][0-9]{2})?`)

// aliasPattern builds a case-insensitive alternation over the aliases,
// longest first so a longer alias wins over its own prefix (e.g.
// "invoice number" before "invoice no").
func aliasPattern(aliases []string) *regexp.Regexp {
	seen := map[string]struct{}{}
	var cleaned []string
	for _, alias := range aliases {
		trimmed := strings.TrimSpace(alias)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return nil
	}
	sort.SliceStable(cleaned, func(i, j int) bool { return len(cleaned[i]) > len(cleaned[j]) })
	quoted := make([]string, len(cleaned))
	for i, alias := range cleaned {
		quoted[i] = regexp.QuoteMeta(alias)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// nextLineValue resolves the "label on its own line" case: the value is
// the following line, unless that line is a section sub-label, in which
// case the one after it is used.
func nextLineValue(lines []string, idx int, labelRe *regexp.Regexp) (string, bool) {
	if idx+1 >= len(lines) {
		return "", false
	}
	next := strings.TrimSpace(lines[idx+1])
	if next == "" || labelRe.MatchString(next) {
		return "", false
	}
	if invoice.IsSublabel(next) && idx+2 < len(lines) {
		return strings.TrimSpace(lines[idx+2]), true
	}
	return next, true
}

// labelValue scans lines for any of the field's aliases and returns the
// value text next to the first usable match. Matches buried inside a
// longer alphanumeric token are rejected unless the line carries a
// separator, so "subtotaling" does not satisfy "subtotal".
func labelValue(lines []string, aliases []string) string {
	if len(lines) == 0 || len(aliases) == 0 {
		return ""
	}
	labelRe := aliasPattern(aliases)
	if labelRe == nil {
		return ""
	}
	for idx, line := range lines {
		loc := labelRe.FindStringIndex(line)
		if loc == nil {
			continue
		}
		matched := line[loc[0]:loc[1]]
		if hasColon(line) {
			_, after, _ := splitColon(line)
			after = strings.Trim(after, " -#")
			if after != "" {
				return after
			}
		}
		if invoice.NormalizeLabel(line) == invoice.NormalizeLabel(matched) {
			if value, ok := nextLineValue(lines, idx, labelRe); ok {
				return value
			}
			continue
		}
		var before, after rune
		if loc[0] > 0 {
			before, _ = utf8.DecodeLastRuneInString(line[:loc[0]])
		}
		if loc[1] < len(line) {
			after, _ = utf8.DecodeRuneInString(line[loc[1]:])
		}
		if (isWordRune(before) || isWordRune(after)) && !hasColon(line) {
			continue
		}
		candidate := strings.Trim(line[loc[1]:], " -#")
		if candidate != "" {
			return candidate
		}
		if value, ok := nextLineValue(lines, idx, labelRe); ok {
			return value
		}
	}
	return ""
}

// Regex is the label-proximity strategy: for each schema field, find a
// line matching one of its aliases and take the value after the
// separator, or from the following line when the label stands alone.
func Regex(text string) *invoice.Record {
	lines := SplitLines(text)
	result := invoice.New()
	for _, spec := range invoice.FieldSpecs {
		value := labelValue(lines, invoice.Aliases[spec.Path])
		if spec.Path == "notes" && value == "" {
			for _, line := range lines {
				if strings.Contains(strings.ToLower(line), "note") {
					value = line
					break
				}
			}
		}
		if value != "" {
			result.Set(spec.Path, value)
		}
	}
	// Totals that the first pass left empty fall back to an
	// amount-shaped token inside the matched label line.
	for _, path := range []string{"totals.subtotal", "totals.tax", "totals.due"} {
		if !invoice.IsEmptyValue(result.Get(path)) {
			continue
		}
		value := labelValue(lines, invoice.Aliases[path])
		if value == "" {
			continue
		}
		if amount := amountTokenRe.FindString(value); amount != "" {
			result.Set(path, amount)
		}
	}
	if len(result.Items) == 0 {
		result.Items = ExtractItems(lines)
	}
	return result
}
