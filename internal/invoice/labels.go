package invoice

import "strings"

// Aliases maps each field path to the label synonyms a rendered document
// may use for it, across the languages the dataset generator emits
// (English, German, Czech with and without diacritics, Chinese). Order
// matters only for determinism; matching itself is longest-first.
var Aliases = map[string][]string{
	"invoice.number": {
		"invoice number", "invoice no", "invoice #", "invoice id",
		"rechnungsnummer", "rechnungs nr", "rechnungsnr",
		"cislo faktury", "číslo faktury", "faktura c", "faktura č",
		"发票编号", "发票号码", "发票号",
	},
	"invoice.date": {
		"invoice date", "date",
		"rechnungsdatum", "ausstellungsdatum",
		"datum vystaveni", "datum vystavení",
		"开票日期", "发票日期",
	},
	"invoice.due_date": {
		"due date", "payment due", "pay by",
		"faelligkeitsdatum", "fälligkeitsdatum", "zahlbar bis",
		"datum splatnosti", "splatnost",
		"到期日期", "到期日", "付款期限",
	},
	"invoice.reference": {
		"reference", "ref", "order ref", "po",
		"bestellnummer", "auftragsnummer", "referenz",
		"variabilni symbol", "variabilní symbol", "objednavka", "objednávka",
		"参考号", "参考编号", "订单号",
		"订单编号", "采购订单",
	},
	"seller.name": {
		"seller", "from", "supplier",
		"lieferant", "verkaeufer", "verkäufer",
		"dodavatel", "vystavitel",
		"卖方", "销售方", "供应商", "发票方",
	},
	"seller.contact": {
		"seller contact", "from contact", "supplier contact",
		"kontakt", "kontaktperson", "ansprechpartner",
		"kontaktni osoba", "kontaktní osoba",
		"联系人", "联系方式",
	},
	"seller.email": {
		"seller email", "from email", "supplier email",
		"email", "e-mail", "emailova adresa", "emailová adresa",
		"电子邮件", "邮箱",
	},
	"seller.address": {
		"seller address", "from address", "supplier address",
		"address", "anschrift", "adresse", "adresa", "sidlo", "sídlo",
		"地址",
	},
	"client.name": {
		"client", "bill to", "customer",
		"kunde", "rechnungsempfaenger", "rechnungsempfänger",
		"empfaenger", "empfänger",
		"odberatel", "odběratel", "zakaznik", "zákazník",
		"买方", "客户", "购方",
	},
	"client.contact": {
		"client contact", "bill to contact", "customer contact",
		"kontakt", "ansprechpartner", "kontaktni osoba", "kontaktní osoba",
		"联系人", "联系方式",
	},
	"client.email": {
		"client email", "customer email", "email", "e-mail",
		"电子邮件", "邮箱",
	},
	"client.address": {
		"client address", "bill to address", "customer address",
		"anschrift", "adresse", "adresa",
		"地址",
	},
	"totals.subtotal": {
		"subtotal", "zwischensumme", "netto", "mezisoucet", "mezisoučet", "小计",
	},
	"totals.tax": {
		"tax", "vat", "mwst", "umsatzsteuer", "ust", "dph", "daň", "税额", "税",
	},
	"totals.due": {
		"total", "amount due", "balance due", "total due",
		"gesamt", "gesamtbetrag", "summe",
		"celkem", "castka k uhrade", "částka k úhradě", "k uhrade",
		"合计", "总计", "应付", "应付金额", "总额",
	},
	"payment.bank": {
		"bank", "bankverbindung", "banka",
		"bankovni spojeni", "bankovní spojení",
		"开户行", "银行",
	},
	"payment.iban": {"iban"},
	"payment.reference": {
		"payment reference", "payment ref", "reference",
		"verwendungszweck", "zahlungsreferenz",
		"variabilni symbol", "variabilní symbol",
		"specificky symbol", "specifický symbol",
		"付款参考", "汇款附言",
	},
	"notes": {
		"notes", "note", "bemerkungen", "hinweis", "notiz",
		"poznamka", "poznámka", "备注", "说明",
	},
}

// SublabelSkip holds the short sub-labels panels print under a section
// heading ("Name", "Email", ...). A line that matches one is a label, not
// a value, so value lookup skips past it.
var SublabelSkip = map[string]struct{}{
	"name":             {},
	"contact":          {},
	"email":            {},
	"e-mail":           {},
	"address":          {},
	"jmeno":            {},
	"jméno":       {},
	"nazev":            {},
	"název":       {},
	"kontakt":          {},
	"kontaktni osoba":  {},
	"kontaktní osoba": {},
	"adresa":           {},
	"anschrift":        {},
	"adresse":          {},
	"名称":     {},
	"联系人":     {},
	"联系方式": {},
	"电子邮件": {},
	"邮箱":     {},
	"地址":     {},
}

// labelSet is the normalized reverse lookup over every alias.
var labelSet = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, aliases := range Aliases {
		for _, alias := range aliases {
			if norm := NormalizeLabel(alias); norm != "" {
				set[norm] = struct{}{}
			}
		}
	}
	return set
}()

// NormalizeLabel lowercases a line and collapses runs of whitespace.
// Unlike full text normalization it keeps punctuation, so "e-mail" and
// "invoice #" stay distinct aliases.
func NormalizeLabel(line string) string {
	return strings.ToLower(strings.Join(strings.Fields(line), " "))
}

// IsLabelLine reports whether a line is a known label or sub-label after
// normalization, meaning it should not be consumed as a field value.
func IsLabelLine(line string) bool {
	norm := NormalizeLabel(line)
	if _, ok := labelSet[norm]; ok {
		return true
	}
	_, ok := SublabelSkip[norm]
	return ok
}

// IsSublabel reports whether a normalized line is one of the short
// section sub-labels.
func IsSublabel(line string) bool {
	_, ok := SublabelSkip[NormalizeLabel(line)]
	return ok
}
