package textscore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"  Hello,   World! ",
		"Rechnungs-Nr.: 2024/001",
		"发票号码：INV-001",
		"",
		"already normalized text",
	}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "normalize should be idempotent for %q", input)
	}
}

func TestNormalizeStripsCasingAndPunctuation(t *testing.T) {
	assert.Equal(t, "amount due", Normalize("Amount   Due:"))
	assert.Equal(t, "invoice 2024", Normalize("INVOICE #2024!"))
	assert.Equal(t, "", Normalize("  ...  "))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"inv", "2024", "001"}, Tokenize("INV-2024/001"))
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("——"))
}

func TestTokenF1(t *testing.T) {
	tests := []struct {
		name string
		gt   string
		pred string
		want float64
	}{
		{name: "both empty", gt: "", pred: "", want: 1.0},
		{name: "gt empty", gt: "", pred: "widget", want: 0.0},
		{name: "pred empty", gt: "widget", pred: "", want: 0.0},
		{name: "identical", gt: "Widget A", pred: "Widget A", want: 1.0},
		{name: "disjoint", gt: "alpha beta", pred: "gamma delta", want: 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TokenF1(tt.gt, tt.pred), 1e-9)
		})
	}
}

func TestTokenF1MultisetOverlap(t *testing.T) {
	// "a a b" vs "a a c": overlap counts the duplicate token twice.
	// precision = 2/3, recall = 2/3, f1 = 2/3.
	got := TokenF1("a a b", "a a c")
	assert.InDelta(t, 2.0/3.0, got, 1e-9)

	// Set-based overlap would give a lower score here.
	single := TokenF1("a b", "a c")
	assert.Less(t, single, got)
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 1.0, Jaccard("", ""))
	assert.Equal(t, 0.0, Jaccard("widget", ""))
	assert.InDelta(t, 1.0/3.0, Jaccard("alpha beta", "beta gamma"), 1e-9)
}

func TestTokenJaccardEmptyIsZero(t *testing.T) {
	// Label scoring has no "both empty" match case.
	assert.Equal(t, 0.0, TokenJaccard("", ""))
	assert.InDelta(t, 0.5, TokenJaccard("invoice number", "invoice"), 1e-9)
}

func TestCharSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, CharSimilarity("", ""))
	assert.Equal(t, 0.0, CharSimilarity("abc", ""))
	assert.Equal(t, 1.0, CharSimilarity("invoice", "invoice"))
	assert.Equal(t, 0.0, CharSimilarity("abc", "xyz"))
	// "abcd" vs "abce" share three of four characters.
	assert.InDelta(t, 0.75, CharSimilarity("abcd", "abce"), 1e-9)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
		ok    bool
	}{
		{name: "european grouping", input: "1.234,56", want: 1234.56, ok: true},
		{name: "us grouping", input: "1,234.56", want: 1234.56, ok: true},
		{name: "comma decimal", input: "12,5", want: 12.5, ok: true},
		{name: "currency prefix", input: "$1,250.00", want: 1250.0, ok: true},
		{name: "negative", input: "-42.00", want: -42.0, ok: true},
		{name: "plain float", input: 3.5, want: 3.5, ok: true},
		{name: "plain int", input: 7, want: 7.0, ok: true},
		{name: "letters", input: "abc", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "nil", input: nil, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input any
		year  int
		month int
		day   int
		ok    bool
	}{
		{name: "iso", input: "2023-12-31", year: 2023, month: 12, day: 31, ok: true},
		{name: "iso slashes", input: "2023/12/31", year: 2023, month: 12, day: 31, ok: true},
		{name: "dotted european", input: "31.12.2023", year: 2023, month: 12, day: 31, ok: true},
		{name: "slashed european", input: "31/12/2023", year: 2023, month: 12, day: 31, ok: true},
		{name: "dashed european", input: "31-12-2023", year: 2023, month: 12, day: 31, ok: true},
		{name: "ambiguous prefers day first", input: "05.03.2024", year: 2024, month: 3, day: 5, ok: true},
		{name: "second slot over twelve forces month", input: "03.14.2024", year: 2024, month: 3, day: 14, ok: true},
		{name: "single digit parts", input: "5.3.2024", year: 2024, month: 3, day: 5, ok: true},
		{name: "invalid month and day", input: "2023-13-40", ok: false},
		{name: "february overflow", input: "30.02.2023", ok: false},
		{name: "garbage", input: "not a date", ok: false},
		{name: "empty", input: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.year, got.Year())
				assert.Equal(t, tt.month, int(got.Month()))
				assert.Equal(t, tt.day, got.Day())
			}
		})
	}
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "widget", Stringify("widget"))
	assert.Equal(t, "2", Stringify(2.0))
	assert.Equal(t, "12.5", Stringify(12.5))
	assert.Equal(t, "7", Stringify(7))
}
