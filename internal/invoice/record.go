package invoice

import (
	"strconv"
	"strings"
)

// Record is the shared document shape for ground truth and for every
// extraction method's prediction. Sections hold loosely-typed leaf values
// because upstream sources (dataset JSON, LLM output, heuristics) disagree
// on whether amounts and quantities are numbers or strings.
type Record struct {
	Invoice map[string]any `json:"invoice"`
	Seller  map[string]any `json:"seller"`
	Client  map[string]any `json:"client"`
	Items   []Item         `json:"items"`
	Totals  map[string]any `json:"totals"`
	Payment map[string]any `json:"payment"`
	Notes   any            `json:"notes"`
}

// Item is one line of the tabular item list.
type Item struct {
	Description any `json:"description"`
	Qty         any `json:"qty"`
	UnitPrice   any `json:"unit_price"`
	LineTotal   any `json:"line_total"`
}

// Field returns the named item column value.
func (it Item) Field(name string) any {
	switch name {
	case "description":
		return it.Description
	case "qty":
		return it.Qty
	case "unit_price":
		return it.UnitPrice
	case "line_total":
		return it.LineTotal
	}
	return nil
}

// SetField assigns the named item column value.
func (it *Item) SetField(name string, value any) {
	switch name {
	case "description":
		it.Description = value
	case "qty":
		it.Qty = value
	case "unit_price":
		it.UnitPrice = value
	case "line_total":
		it.LineTotal = value
	}
}

// New returns an empty record with all sections allocated.
func New() *Record {
	return &Record{
		Invoice: map[string]any{},
		Seller:  map[string]any{},
		Client:  map[string]any{},
		Items:   []Item{},
		Totals:  map[string]any{},
		Payment: map[string]any{},
		Notes:   "",
	}
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return New()
	}
	out := &Record{
		Invoice: cloneSection(r.Invoice),
		Seller:  cloneSection(r.Seller),
		Client:  cloneSection(r.Client),
		Totals:  cloneSection(r.Totals),
		Payment: cloneSection(r.Payment),
		Notes:   r.Notes,
	}
	out.Items = make([]Item, len(r.Items))
	copy(out.Items, r.Items)
	return out
}

func cloneSection(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// tokenizePath splits dotted paths with optional bracket indices into
// tokens, e.g. "items[0].qty" -> ["items", "0", "qty"].
func tokenizePath(path string) []string {
	var tokens []string
	for _, segment := range strings.Split(path, ".") {
		buf := segment
		for {
			open := strings.IndexByte(buf, '[')
			if open < 0 {
				break
			}
			if before := buf[:open]; before != "" {
				tokens = append(tokens, before)
			}
			rest := buf[open+1:]
			closeIdx := strings.IndexByte(rest, ']')
			if closeIdx < 0 {
				buf = rest
				continue
			}
			if idx := rest[:closeIdx]; idx != "" {
				tokens = append(tokens, idx)
			}
			buf = rest[closeIdx+1:]
		}
		if buf != "" {
			tokens = append(tokens, buf)
		}
	}
	return tokens
}

func (r *Record) section(name string) map[string]any {
	switch name {
	case "invoice":
		return r.Invoice
	case "seller":
		return r.Seller
	case "client":
		return r.Client
	case "totals":
		return r.Totals
	case "payment":
		return r.Payment
	}
	return nil
}

func (r *Record) ensureSection(name string) map[string]any {
	switch name {
	case "invoice":
		if r.Invoice == nil {
			r.Invoice = map[string]any{}
		}
		return r.Invoice
	case "seller":
		if r.Seller == nil {
			r.Seller = map[string]any{}
		}
		return r.Seller
	case "client":
		if r.Client == nil {
			r.Client = map[string]any{}
		}
		return r.Client
	case "totals":
		if r.Totals == nil {
			r.Totals = map[string]any{}
		}
		return r.Totals
	case "payment":
		if r.Payment == nil {
			r.Payment = map[string]any{}
		}
		return r.Payment
	}
	return nil
}

// Get navigates a dotted path and returns nil when any step is missing.
// Supported shapes: "<section>.<key>", "notes", "items[N].<column>".
func (r *Record) Get(path string) any {
	if r == nil || path == "" {
		return nil
	}
	tokens := tokenizePath(path)
	if len(tokens) == 0 {
		return nil
	}
	switch tokens[0] {
	case "notes":
		if len(tokens) == 1 {
			return r.Notes
		}
		return nil
	case "items":
		if len(tokens) == 1 {
			return r.Items
		}
		idx, err := strconv.Atoi(tokens[1])
		if err != nil || idx < 0 || idx >= len(r.Items) {
			return nil
		}
		if len(tokens) == 2 {
			return r.Items[idx]
		}
		return r.Items[idx].Field(tokens[2])
	default:
		sec := r.section(tokens[0])
		if sec == nil || len(tokens) < 2 {
			return nil
		}
		val, ok := sec[tokens[1]]
		if !ok {
			return nil
		}
		return val
	}
}

// Set assigns a value along a dotted path, creating intermediate
// containers as needed. Unknown sections and malformed paths are ignored
// rather than rejected so extractor passes can always write best-effort.
func (r *Record) Set(path string, value any) {
	if r == nil || path == "" {
		return
	}
	tokens := tokenizePath(path)
	if len(tokens) == 0 {
		return
	}
	switch tokens[0] {
	case "notes":
		if len(tokens) == 1 {
			r.Notes = value
		}
	case "items":
		if len(tokens) < 2 {
			if items, ok := value.([]Item); ok {
				r.Items = items
			}
			return
		}
		idx, err := strconv.Atoi(tokens[1])
		if err != nil || idx < 0 {
			return
		}
		for len(r.Items) <= idx {
			r.Items = append(r.Items, Item{})
		}
		if len(tokens) == 2 {
			if item, ok := value.(Item); ok {
				r.Items[idx] = item
			}
			return
		}
		r.Items[idx].SetField(tokens[2], value)
	default:
		sec := r.ensureSection(tokens[0])
		if sec == nil || len(tokens) < 2 {
			return
		}
		sec[tokens[1]] = value
	}
}

// IsEmptyValue reports whether a leaf value counts as unfilled for
// merge and presence purposes: nil, empty string, or empty item list.
func IsEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []Item:
		return len(t) == 0
	}
	return false
}
