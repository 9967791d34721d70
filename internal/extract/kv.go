package extract

import (
	"regexp"
	"strings"

	"github.com/garyjia/invoice-bench/internal/invoice"
	"github.com/garyjia/invoice-bench/internal/textscore"
)

var dashSeparatorRe = regexp.MustCompile(`\s[-–—]\s`)

func hasDashSeparator(line string) bool {
	return strings.Contains(line, " - ") || strings.Contains(line, " – ") || strings.Contains(line, " — ")
}

// bestAlias scores a key half against every alias of every schema field:
// exact substring containment scores 1.0, anything else its token
// Jaccard. Returns the best field path and its score.
func bestAlias(leftNorm string) (string, float64) {
	bestPath := ""
	bestScore := 0.0
	for _, spec := range invoice.FieldSpecs {
		for _, alias := range invoice.Aliases[spec.Path] {
			aliasNorm := strings.ToLower(strings.TrimSpace(alias))
			var score float64
			if aliasNorm != "" && strings.Contains(leftNorm, aliasNorm) {
				score = 1.0
			} else {
				score = textscore.TokenJaccard(leftNorm, aliasNorm)
			}
			if score > bestScore {
				bestScore = score
				bestPath = spec.Path
			}
		}
	}
	return bestPath, bestScore
}

// KeyValue is the key-value strategy: split each line on a colon-like or
// dash-like separator, match the left half against the alias table, and
// assign the right half (or the next line when the right half is empty)
// to the best-scoring still-unfilled field.
func KeyValue(text string) *invoice.Record {
	lines := SplitLines(text)
	result := invoice.New()
	for idx, line := range lines {
		var left, right string
		if hasColon(line) {
			left, right, _ = splitColon(line)
		} else if hasDashSeparator(line) {
			parts := dashSeparatorRe.Split(line, 2)
			if len(parts) != 2 {
				continue
			}
			left, right = parts[0], parts[1]
		} else {
			left, right = line, ""
		}
		leftNorm := invoice.NormalizeLabel(left)
		right = strings.TrimSpace(right)
		bestPath, bestScore := bestAlias(leftNorm)
		if bestPath == "" || bestScore < 0.8 || !invoice.IsEmptyValue(result.Get(bestPath)) {
			continue
		}
		if right != "" {
			result.Set(bestPath, right)
		} else if idx+1 < len(lines) {
			next := strings.TrimSpace(lines[idx+1])
			if next != "" && !invoice.IsLabelLine(next) {
				result.Set(bestPath, next)
			}
		}
	}
	if len(result.Items) == 0 {
		result.Items = ExtractItems(lines)
	}
	return result
}
