package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/invoice-bench/internal/invoice"
)

const sampleText = `
INVOICE
Invoice number: INV-2024-001
Invoice date: 2024-01-05
Due date
2024-02-04
Seller
Acme GmbH
Seller email: acme@example.com
Bill to: Kunde AG
Beschreibung Menge Einzelpreis Betrag
Widget A
2
10.00
20.00
Gadget B
1
5.50
5.50
Netto: 25.50
Tax: 4.85
Total: 30.35
IBAN: DE44500105175407324931
Notes: Thank you for your business
`

func TestSplitLines(t *testing.T) {
	lines := SplitLines("  first   line \n\n\t\n second\tline \n")
	assert.Equal(t, []string{"first line", "second line"}, lines)
	assert.Empty(t, SplitLines(""))
}

func TestRegexExtractSeparatedValues(t *testing.T) {
	rec := Regex(sampleText)

	assert.Equal(t, "INV-2024-001", rec.Get("invoice.number"))
	assert.Equal(t, "2024-01-05", rec.Get("invoice.date"))
	assert.Equal(t, "25.50", rec.Get("totals.subtotal"))
	assert.Equal(t, "4.85", rec.Get("totals.tax"))
	assert.Equal(t, "30.35", rec.Get("totals.due"))
	assert.Equal(t, "DE44500105175407324931", rec.Get("payment.iban"))
	assert.Equal(t, "Thank you for your business", rec.Get("notes"))
}

func TestRegexExtractLabelOnOwnLine(t *testing.T) {
	rec := Regex(sampleText)

	// The value follows the standalone label on the next line.
	assert.Equal(t, "2024-02-04", rec.Get("invoice.due_date"))
	assert.Equal(t, "Acme GmbH", rec.Get("seller.name"))
}

func TestRegexExtractSkipsSublabelLine(t *testing.T) {
	text := "Seller\nName\nAcme GmbH\n"
	rec := Regex(text)
	assert.Equal(t, "Acme GmbH", rec.Get("seller.name"))
}

func TestRegexExtractRejectsEmbeddedMatch(t *testing.T) {
	// "subtotaling" must not satisfy the "subtotal" alias when the line
	// carries no separator.
	text := "we are subtotaling the year\nSubtotal: 99.00\n"
	rec := Regex(text)
	assert.Equal(t, "99.00", rec.Get("totals.subtotal"))
}

func TestRegexExtractEmptyDocument(t *testing.T) {
	rec := Regex("")
	for _, spec := range invoice.FieldSpecs {
		assert.True(t, invoice.IsEmptyValue(rec.Get(spec.Path)), "field %s should be empty", spec.Path)
	}
	assert.Empty(t, rec.Items)
}

func TestKeyValueExtract(t *testing.T) {
	rec := KeyValue(sampleText)

	assert.Equal(t, "INV-2024-001", rec.Get("invoice.number"))
	assert.Equal(t, "Kunde AG", rec.Get("client.name"))
	assert.Equal(t, "25.50", rec.Get("totals.subtotal"))
	assert.Equal(t, "30.35", rec.Get("totals.due"))
	assert.Equal(t, "DE44500105175407324931", rec.Get("payment.iban"))
}

func TestKeyValueExtractDashSeparator(t *testing.T) {
	rec := KeyValue("Invoice number - INV-77\n")
	assert.Equal(t, "INV-77", rec.Get("invoice.number"))
}

func TestKeyValueExtractValueOnNextLine(t *testing.T) {
	rec := KeyValue("Invoice number:\nINV-55\n")
	assert.Equal(t, "INV-55", rec.Get("invoice.number"))

	// The next line is itself a label, so nothing is assigned.
	rec = KeyValue("Invoice number:\nInvoice date\n")
	assert.True(t, invoice.IsEmptyValue(rec.Get("invoice.number")))
}

func TestKeyValueDoesNotOverwrite(t *testing.T) {
	rec := KeyValue("Invoice number: INV-1\nInvoice number: INV-2\n")
	assert.Equal(t, "INV-1", rec.Get("invoice.number"))
}

func TestPatternExtractFormats(t *testing.T) {
	text := strings.Join([]string{
		"Zahlung an DE44500105175407324931",
		"Geschrieben von seller@acme.example",
		"Gesendet an billing@north.example",
		"Telefon +49 30 1234567",
		"Gedruckt 2024-01-05 sowie 2024-02-04",
		"Beleg INV-2024-0042",
	}, "\n")
	rec := Pattern(text)

	assert.Equal(t, "DE44500105175407324931", rec.Get("payment.iban"))
	assert.Equal(t, "seller@acme.example", rec.Get("seller.email"))
	assert.Equal(t, "billing@north.example", rec.Get("client.email"))
	assert.Equal(t, "+49 30 1234567", rec.Get("seller.contact"))
	assert.Equal(t, "2024-01-05", rec.Get("invoice.date"))
	assert.Equal(t, "2024-02-04", rec.Get("invoice.due_date"))
	assert.Equal(t, "INV-2024-0042", rec.Get("invoice.number"))
}

func TestPatternExtractPhoneRejectsBareNumbers(t *testing.T) {
	// A digit run without separator characters is an amount or an id,
	// not a phone number.
	rec := Pattern("Gesamtwert 12345678\n")
	assert.True(t, invoice.IsEmptyValue(rec.Get("seller.contact")))
}

func TestExtractItemsTable(t *testing.T) {
	lines := SplitLines(sampleText)
	items := ExtractItems(lines)
	require.Len(t, items, 2)

	assert.Equal(t, "Widget A", items[0].Description)
	assert.Equal(t, 2.0, items[0].Qty)
	assert.Equal(t, 10.0, items[0].UnitPrice)
	assert.Equal(t, 20.0, items[0].LineTotal)
	assert.Equal(t, "Gadget B", items[1].Description)
}

func TestExtractItemsNoHeader(t *testing.T) {
	assert.Empty(t, ExtractItems(SplitLines("just some text\nwith no table\n")))
	assert.Empty(t, ExtractItems(nil))
}

func TestExtractItemsResyncSkipsBrokenRow(t *testing.T) {
	text := strings.Join([]string{
		"Description Qty Unit price Betrag",
		"Broken row",
		"not-a-number",
		"Widget A",
		"2",
		"10.00",
		"20.00",
		"Subtotal",
		"x", "y", "z",
	}, "\n")
	items := ExtractItems(SplitLines(text))
	require.Len(t, items, 1)
	assert.Equal(t, "Widget A", items[0].Description)
}

func TestEnsemblePriorityAndItemChoice(t *testing.T) {
	rec := Ensemble(sampleText)

	// Fields resolved by any strategy are present.
	assert.Equal(t, "INV-2024-001", rec.Get("invoice.number"))
	assert.Equal(t, "acme@example.com", rec.Get("seller.email"))
	assert.Equal(t, "30.35", rec.Get("totals.due"))

	// The item list comes from the strategy with the most rows.
	require.Len(t, rec.Items, 2)
}

func TestEnsembleCarriesPatternOnlyFields(t *testing.T) {
	// No label anywhere near the date; only the format-anchored pass can
	// recover it, and the merge must keep it.
	text := "Beleg gedruckt am 2024-01-05\n"
	assert.True(t, invoice.IsEmptyValue(Regex(text).Get("invoice.date")))
	assert.Equal(t, "2024-01-05", Ensemble(text).Get("invoice.date"))
}

func TestMergeMissingFillsOnlyGaps(t *testing.T) {
	primary := invoice.New()
	primary.Set("invoice.number", "INV-1")
	fallback := invoice.New()
	fallback.Set("invoice.number", "INV-2")
	fallback.Set("seller.name", "Acme")
	fallback.Items = []invoice.Item{{Description: "Widget"}}

	merged := mergeMissing(primary, fallback)
	assert.Equal(t, "INV-1", merged.Get("invoice.number"))
	assert.Equal(t, "Acme", merged.Get("seller.name"))
	assert.Len(t, merged.Items, 1)
}

func TestByName(t *testing.T) {
	for _, name := range Methods() {
		fn, ok := ByName(name)
		require.True(t, ok, name)
		require.NotNil(t, fn)
	}
	_, ok := ByName("nope")
	assert.False(t, ok)
}
