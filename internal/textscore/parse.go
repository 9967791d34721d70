package textscore

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	numberJunkRe   = regexp.MustCompile(`[^\d,.\-]`)
	looseDateRe    = regexp.MustCompile(`(\d{1,2})[.\-/](\d{1,2})[.\-/](\d{4})`)
	dateLayouts    = []string{"2006-01-02", "2006/01/02", "02.01.2006", "02/01/2006", "02-01-2006", "01/02/2006", "2006-1-2", "2006/1/2"}
)

// Stringify renders a loosely-typed leaf value the way the evaluator and
// extractors compare it: nil becomes "", numbers drop trailing zeros.
func Stringify(value any) string {
	switch t := value.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(value)
	}
}

// ParseNumber parses locale-ambiguous numeric text. Numeric input passes
// through. For strings, everything except digits, separators, and minus
// is dropped, then the rightmost of comma/dot wins as the decimal
// separator ("1.234,56" -> 1234.56, "1,234.56" -> 1234.56). Unparsable
// input reports ok=false, never an error.
func ParseNumber(value any) (float64, bool) {
	switch t := value.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	text := strings.TrimSpace(Stringify(value))
	if text == "" {
		return 0, false
	}
	text = numberJunkRe.ReplaceAllString(text, "")
	if text == "" {
		return 0, false
	}
	hasComma := strings.Contains(text, ",")
	hasDot := strings.Contains(text, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(text, ",") > strings.LastIndex(text, ".") {
			text = strings.ReplaceAll(text, ".", "")
			text = strings.ReplaceAll(text, ",", ".")
		} else {
			text = strings.ReplaceAll(text, ",", "")
		}
	case hasComma:
		text = strings.ReplaceAll(text, ",", ".")
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseDate tries a fixed ordered list of layouts, then falls back to a
// loose D/M/YYYY pattern where a component above 12 forces the other slot
// to be the month. Reports ok=false when nothing parses to a valid date.
func ParseDate(value any) (time.Time, bool) {
	if value == nil {
		return time.Time{}, false
	}
	if t, ok := value.(time.Time); ok {
		return t, true
	}
	text := strings.TrimSpace(Stringify(value))
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	match := looseDateRe.FindStringSubmatch(text)
	if match == nil {
		return time.Time{}, false
	}
	part1, _ := strconv.Atoi(match[1])
	part2, _ := strconv.Atoi(match[2])
	year, _ := strconv.Atoi(match[3])
	day, month := part1, part2
	if part2 > 12 {
		day, month = part2, part1
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayDelta is the absolute difference between two dates in whole days.
func DayDelta(a, b time.Time) float64 {
	d := b.Sub(a).Hours() / 24
	if d < 0 {
		d = -d
	}
	return d
}
