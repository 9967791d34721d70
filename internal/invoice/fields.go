package invoice

// Field value types. The type drives tolerance rules during scoring:
// amounts compare within 0.01, generic numbers within 0.5, dates by
// calendar equality.
const (
	FieldText   = "text"
	FieldNumber = "number"
	FieldAmount = "amount"
	FieldDate   = "date"
)

// FieldSpec addresses one scorable leaf of a Record.
type FieldSpec struct {
	Path  string
	Label string
	Type  string
}

// FieldSpecs is the document-level schema, in evaluation order.
var FieldSpecs = []FieldSpec{
	{Path: "invoice.number", Label: "Invoice number", Type: FieldText},
	{Path: "invoice.date", Label: "Invoice date", Type: FieldDate},
	{Path: "invoice.due_date", Label: "Due date", Type: FieldDate},
	{Path: "invoice.reference", Label: "Reference", Type: FieldText},
	{Path: "seller.name", Label: "Seller name", Type: FieldText},
	{Path: "seller.contact", Label: "Seller contact", Type: FieldText},
	{Path: "seller.email", Label: "Seller email", Type: FieldText},
	{Path: "seller.address", Label: "Seller address", Type: FieldText},
	{Path: "client.name", Label: "Client name", Type: FieldText},
	{Path: "client.contact", Label: "Client contact", Type: FieldText},
	{Path: "client.email", Label: "Client email", Type: FieldText},
	{Path: "client.address", Label: "Client address", Type: FieldText},
	{Path: "totals.subtotal", Label: "Subtotal", Type: FieldAmount},
	{Path: "totals.tax", Label: "Tax", Type: FieldAmount},
	{Path: "totals.due", Label: "Amount due", Type: FieldAmount},
	{Path: "payment.bank", Label: "Bank", Type: FieldText},
	{Path: "payment.iban", Label: "IBAN", Type: FieldText},
	{Path: "payment.reference", Label: "Payment reference", Type: FieldText},
	{Path: "notes", Label: "Notes", Type: FieldText},
}

// ItemFieldSpecs is the per-item schema, in evaluation order.
var ItemFieldSpecs = []FieldSpec{
	{Path: "description", Label: "Item description", Type: FieldText},
	{Path: "qty", Label: "Quantity", Type: FieldNumber},
	{Path: "unit_price", Label: "Unit price", Type: FieldAmount},
	{Path: "line_total", Label: "Line total", Type: FieldAmount},
}
