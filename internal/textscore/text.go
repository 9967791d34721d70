// Package textscore holds the pure text comparison kernel used by both
// the extraction heuristics and the evaluator: normalization, token
// metrics, and locale-tolerant number/date parsing. Nothing here touches
// I/O or returns errors; malformed input degrades to zero values.
package textscore

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	tokenRe       = regexp.MustCompile(`[a-z0-9]+`)
)

// Normalize lowercases, collapses whitespace, and strips punctuation.
// Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(value string) string {
	text := strings.ToLower(strings.TrimSpace(value))
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = punctuationRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Tokenize extracts lowercase ASCII alphanumeric runs.
func Tokenize(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}

// TokenF1 is the harmonic mean of token precision and recall using
// multiset intersection counts. Both inputs empty scores 1.0, exactly one
// empty scores 0.0.
func TokenF1(gt, pred string) float64 {
	gtTokens := Tokenize(gt)
	predTokens := Tokenize(pred)
	if len(gtTokens) == 0 && len(predTokens) == 0 {
		return 1.0
	}
	if len(gtTokens) == 0 || len(predTokens) == 0 {
		return 0.0
	}
	gtCounts := make(map[string]int, len(gtTokens))
	for _, tok := range gtTokens {
		gtCounts[tok]++
	}
	predCounts := make(map[string]int, len(predTokens))
	for _, tok := range predTokens {
		predCounts[tok]++
	}
	overlap := 0
	for tok, cnt := range gtCounts {
		if other := predCounts[tok]; other < cnt {
			overlap += other
		} else {
			overlap += cnt
		}
	}
	precision := float64(overlap) / float64(len(predTokens))
	recall := float64(overlap) / float64(len(gtTokens))
	if precision+recall == 0 {
		return 0.0
	}
	return 2 * precision * recall / (precision + recall)
}

// Jaccard is the set-based token overlap ratio, with the same
// empty-input contract as TokenF1.
func Jaccard(gt, pred string) float64 {
	gtSet := tokenSet(gt)
	predSet := tokenSet(pred)
	if len(gtSet) == 0 && len(predSet) == 0 {
		return 1.0
	}
	if len(gtSet) == 0 || len(predSet) == 0 {
		return 0.0
	}
	inter := 0
	for tok := range gtSet {
		if _, ok := predSet[tok]; ok {
			inter++
		}
	}
	union := len(gtSet) + len(predSet) - inter
	return float64(inter) / float64(union)
}

// TokenJaccard is the variant used for label scoring: either side having
// no tokens scores 0.0 (there is no "both labels empty" match case).
func TokenJaccard(left, right string) float64 {
	leftSet := tokenSet(left)
	rightSet := tokenSet(right)
	if len(leftSet) == 0 || len(rightSet) == 0 {
		return 0.0
	}
	inter := 0
	for tok := range leftSet {
		if _, ok := rightSet[tok]; ok {
			inter++
		}
	}
	union := len(leftSet) + len(rightSet) - inter
	return float64(inter) / float64(union)
}

func tokenSet(text string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, tok := range Tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}

// CharSimilarity is the character-multiset overlap ratio over the longer
// string's rune length. Identical strings score 1.0; disjoint character
// sets score 0.0.
func CharSimilarity(gt, pred string) float64 {
	gtRunes := []rune(gt)
	predRunes := []rune(pred)
	if len(gtRunes) == 0 && len(predRunes) == 0 {
		return 1.0
	}
	if len(gtRunes) == 0 || len(predRunes) == 0 {
		return 0.0
	}
	counts := make(map[rune]int, len(gtRunes))
	for _, r := range gtRunes {
		counts[r]++
	}
	common := 0
	for _, r := range predRunes {
		if counts[r] > 0 {
			counts[r]--
			common++
		}
	}
	longest := len(gtRunes)
	if len(predRunes) > longest {
		longest = len(predRunes)
	}
	return float64(common) / float64(longest)
}
