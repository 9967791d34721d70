package extract

import (
	"github.com/garyjia/invoice-bench/internal/invoice"
)

// mergeMissing copies fallback values into a clone of primary for every
// schema field the primary left unfilled. A field already populated by a
// higher-priority pass is never overwritten.
func mergeMissing(primary, fallback *invoice.Record) *invoice.Record {
	if primary == nil {
		primary = invoice.New()
	}
	if fallback == nil {
		fallback = invoice.New()
	}
	merged := primary.Clone()
	for _, spec := range invoice.FieldSpecs {
		if !invoice.IsEmptyValue(merged.Get(spec.Path)) {
			continue
		}
		if value := fallback.Get(spec.Path); !invoice.IsEmptyValue(value) {
			merged.Set(spec.Path, value)
		}
	}
	if len(merged.Items) == 0 && len(fallback.Items) > 0 {
		merged.Items = append([]invoice.Item(nil), fallback.Items...)
	}
	return merged
}

// Ensemble runs the pattern, key-value, and label-proximity strategies
// and merges them in that priority order. The item list is taken from
// whichever strategy recovered the most rows, earliest strategy winning
// ties.
func Ensemble(text string) *invoice.Record {
	regex := Regex(text)
	kv := KeyValue(text)
	pattern := Pattern(text)

	merged := mergeMissing(pattern, kv)
	merged = mergeMissing(merged, regex)

	best := regex.Items
	for _, candidate := range [][]invoice.Item{kv.Items, pattern.Items} {
		if len(candidate) > len(best) {
			best = candidate
		}
	}
	if len(best) > 0 {
		merged.Items = best
	}
	return merged
}

// Func is a text extraction strategy.
type Func func(text string) *invoice.Record

// methods maps strategy names to implementations, in presentation order.
var methodOrder = []string{"regex", "kv", "pattern", "ensemble"}

var methods = map[string]Func{
	"regex":    Regex,
	"kv":       KeyValue,
	"pattern":  Pattern,
	"ensemble": Ensemble,
}

// ByName resolves a strategy by its method name.
func ByName(name string) (Func, bool) {
	fn, ok := methods[name]
	return fn, ok
}

// Methods lists the built-in strategy names in stable order.
func Methods() []string {
	return append([]string(nil), methodOrder...)
}
