package llm

// systemPrompt pins the model to bare JSON output.
const systemPrompt = "You extract structured invoice data. Reply ONLY with a JSON object (no prose, no code fences). " +
	"Use ISO dates (YYYY-MM-DD) when possible. Use numbers for amounts and quantities."

// schemaHint is the minified target shape included in every request.
const schemaHint = `{"invoice":{"number":"","date":"","due_date":"","reference":""},` +
	`"seller":{"name":"","contact":"","email":"","address":""},` +
	`"client":{"name":"","contact":"","email":"","address":""},` +
	`"items":[{"description":"","qty":"","unit_price":"","line_total":""}],` +
	`"totals":{"subtotal":"","tax":"","due":""},` +
	`"payment":{"bank":"","iban":"","reference":""},` +
	`"notes":""}`

// buildPrompt builds the extraction instruction for one document.
func buildPrompt() string {
	return "Extract the invoice data into JSON using this schema:\n" +
		schemaHint +
		"\nReturn ONLY valid JSON with the same keys. Use empty strings when a field is missing. " +
		"Keep numbers as numbers, not formatted strings. Minify the JSON (single line, no extra whitespace)."
}
