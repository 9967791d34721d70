package extract

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/garyjia/invoice-bench/internal/invoice"
	"github.com/garyjia/invoice-bench/internal/textscore"
)

var (
	ibanRe       = regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{10,30}\b`)
	emailRe      = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	phoneRe      = regexp.MustCompile(`\+?\d[\d\s().-]{6,}\d`)
	phoneSepRe   = regexp.MustCompile(`[+\s().-]`)
	digitRe      = regexp.MustCompile(`\d`)
	dateTokenRe  = regexp.MustCompile(`\d{4}[-/]\d{2}[-/]\d{2}|\d{1,2}[./-]\d{1,2}[./-]\d{4}`)
	invoiceNumRe = regexp.MustCompile(`\b[A-Z0-9][A-Z0-9-]{5,}\b`)
)

var invoiceNumPrefixes = []string{"INV", "RE", "FAK", "DE-", "CZ-", "SK-"}

// filterPhones keeps phone-shaped tokens: at least seven digits and at
// least one separator character, which rejects bare numeric totals.
func filterPhones(candidates []string) []string {
	var phones []string
	for _, phone := range candidates {
		if len(digitRe.FindAllString(phone, -1)) < 7 {
			continue
		}
		if !phoneSepRe.MatchString(phone) {
			continue
		}
		phones = append(phones, phone)
	}
	return phones
}

type datedToken struct {
	at  time.Time
	raw string
}

// Pattern runs the label-proximity strategy and then augments the gaps
// with format-anchored matches: IBAN, emails, phone numbers, dates
// (earliest parseable becomes the invoice date, latest the due date),
// and an invoice-number shaped token.
func Pattern(text string) *invoice.Record {
	result := Regex(text)
	lines := SplitLines(text)
	blob := strings.Join(lines, " ")

	if invoice.IsEmptyValue(result.Get("payment.iban")) {
		if iban := ibanRe.FindString(blob); iban != "" {
			result.Set("payment.iban", iban)
		}
	}

	emails := dedupe(emailRe.FindAllString(blob, -1))
	if len(emails) > 0 && invoice.IsEmptyValue(result.Get("seller.email")) {
		result.Set("seller.email", emails[0])
	}
	if len(emails) > 1 && invoice.IsEmptyValue(result.Get("client.email")) {
		result.Set("client.email", emails[1])
	}

	phones := filterPhones(phoneRe.FindAllString(blob, -1))
	if len(phones) > 0 && invoice.IsEmptyValue(result.Get("seller.contact")) {
		result.Set("seller.contact", strings.TrimSpace(phones[0]))
	}
	if len(phones) > 1 && invoice.IsEmptyValue(result.Get("client.contact")) {
		result.Set("client.contact", strings.TrimSpace(phones[1]))
	}

	var dates []datedToken
	for _, raw := range dateTokenRe.FindAllString(blob, -1) {
		if at, ok := textscore.ParseDate(raw); ok {
			dates = append(dates, datedToken{at: at, raw: raw})
		}
	}
	sort.SliceStable(dates, func(i, j int) bool {
		if !dates[i].at.Equal(dates[j].at) {
			return dates[i].at.Before(dates[j].at)
		}
		return dates[i].raw < dates[j].raw
	})
	if len(dates) > 0 && invoice.IsEmptyValue(result.Get("invoice.date")) {
		result.Set("invoice.date", dates[0].raw)
	}
	if len(dates) > 1 && invoice.IsEmptyValue(result.Get("invoice.due_date")) {
		result.Set("invoice.due_date", dates[len(dates)-1].raw)
	}

	if invoice.IsEmptyValue(result.Get("invoice.number")) {
		for _, token := range invoiceNumRe.FindAllString(strings.ToUpper(blob), -1) {
			if looksLikeInvoiceNumber(token) {
				result.Set("invoice.number", token)
				break
			}
		}
	}

	if len(result.Items) == 0 {
		result.Items = ExtractItems(lines)
	}
	return result
}

func looksLikeInvoiceNumber(token string) bool {
	for _, prefix := range invoiceNumPrefixes {
		if strings.HasPrefix(token, prefix) {
			return true
		}
	}
	return strings.Contains(token, "INV")
}

func dedupe(values []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
