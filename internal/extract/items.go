package extract

import (
	"strings"

	"github.com/garyjia/invoice-bench/internal/invoice"
	"github.com/garyjia/invoice-bench/internal/textscore"
)

// Header vocabularies for detecting the item table. Matching is
// substring containment on the normalized line.
var (
	itemDescHeaders = []string{
		"description", "item", "items", "article",
		"beschreibung", "artikel",
		"popis", "polozka", "položka",
		"商品", "描述", "品名",
	}
	itemQtyHeaders = []string{
		"qty", "quantity", "menge", "anzahl", "mnozstvi", "množství", "数量",
	}
	itemUnitHeaders = []string{
		"unit price", "unit", "einzelpreis", "preis",
		"jednotkova cena", "jednotková cena", "单价",
	}
	itemTotalHeaders = []string{
		"total", "amount", "betrag", "summe", "celkem", "金额", "总价", "合计",
	}
	sectionStopHeaders = []string{
		"invoice info", "invoice information", "payment information",
		"contact information", "seller", "client", "totals", "subtotal",
		"tax", "amount due",
		"发票信息", "联系方式", "付款信息", "小计", "税", "合计", "总计",
		"rechnungsinformationen", "zahlungsinformationen", "kontaktdaten",
		"zwischensumme", "umsatzsteuer", "gesamt",
		"faktura", "soucet", "součet", "celkem",
	}
)

func containsAnyHeader(norm string, headers []string) bool {
	for _, header := range headers {
		if strings.Contains(norm, header) {
			return true
		}
	}
	return false
}

// findItemTableStart slides a six-line window over the document looking
// for a region where headers for description, quantity, unit price, and
// total all appear. The table body starts after the last header found.
func findItemTableStart(lines []string) (int, bool) {
	const window = 6
	for idx := range lines {
		end := idx
		var foundDesc, foundQty, foundUnit, foundTotal bool
		limit := idx + window
		if limit > len(lines) {
			limit = len(lines)
		}
		for offset, line := range lines[idx:limit] {
			norm := invoice.NormalizeLabel(line)
			if containsAnyHeader(norm, itemDescHeaders) {
				foundDesc = true
				end = idx + offset
			}
			if containsAnyHeader(norm, itemQtyHeaders) {
				foundQty = true
				end = idx + offset
			}
			if containsAnyHeader(norm, itemUnitHeaders) {
				foundUnit = true
				end = idx + offset
			}
			if containsAnyHeader(norm, itemTotalHeaders) {
				foundTotal = true
				end = idx + offset
			}
		}
		if foundDesc && foundQty && foundUnit && foundTotal {
			return end + 1, true
		}
	}
	return 0, false
}

// ExtractItems recovers the tabular item list from flattened lines. Rows
// are assumed to span four lines (description, qty, unit price, total);
// when the three numeric lines do not parse, the cursor advances one
// line to resync. The scan stops at a section-stop phrase.
func ExtractItems(lines []string) []invoice.Item {
	if len(lines) == 0 {
		return nil
	}
	start, ok := findItemTableStart(lines)
	if !ok {
		return nil
	}
	var items []invoice.Item
	idx := start
	for idx+3 < len(lines) {
		line := strings.TrimSpace(lines[idx])
		norm := invoice.NormalizeLabel(line)
		if containsAnyHeader(norm, sectionStopHeaders) {
			break
		}
		if containsAnyHeader(norm, itemDescHeaders) {
			idx++
			continue
		}
		if _, isNumber := textscore.ParseNumber(line); isNumber {
			idx++
			continue
		}
		qty, qtyOK := textscore.ParseNumber(lines[idx+1])
		unit, unitOK := textscore.ParseNumber(lines[idx+2])
		total, totalOK := textscore.ParseNumber(lines[idx+3])
		if !qtyOK || !unitOK || !totalOK {
			idx++
			continue
		}
		items = append(items, invoice.Item{
			Description: line,
			Qty:         qty,
			UnitPrice:   unit,
			LineTotal:   total,
		})
		idx += 4
	}
	return items
}
