// Package evaluate scores a predicted invoice record against ground
// truth and folds per-sample results into per-method aggregate reports.
// It is provenance-blind: heuristic and LLM predictions are scored
// identically.
package evaluate

import "github.com/garyjia/invoice-bench/internal/invoice"

// NumericMetric carries the tolerance sub-metrics for amount/number
// fields when both sides parsed as numbers.
type NumericMetric struct {
	AbsErr    float64 `json:"abs_err"`
	RelErr    float64 `json:"rel_err"`
	WithinTol bool    `json:"within_tol"`
}

// DateMetric carries the day delta for date fields when both sides
// parsed as dates.
type DateMetric struct {
	AbsDays float64 `json:"abs_days"`
}

// FieldMetric is the per (sample, field) comparison result.
type FieldMetric struct {
	Label      string         `json:"label"`
	Type       string         `json:"type"`
	Exact      int            `json:"exact"`
	Normalized int            `json:"normalized"`
	TokenF1    float64        `json:"token_f1"`
	Jaccard    float64        `json:"jaccard"`
	CharSim    float64        `json:"char_sim"`
	Numeric    *NumericMetric `json:"numeric,omitempty"`
	Date       *DateMetric    `json:"date,omitempty"`
	Present    bool           `json:"present"`
}

// ErrorExample records a notable miss for later inspection. Advisory
// only; it never feeds back into the scores.
type ErrorExample struct {
	Sample string  `json:"sample"`
	GT     string  `json:"gt"`
	Pred   string  `json:"pred"`
	Score  float64 `json:"score"`
}

// ItemMatch pairs a ground-truth row with the predicted row the greedy
// matcher assigned to it. Each index appears in at most one match per
// sample.
type ItemMatch struct {
	GTIndex    int     `json:"gt_index"`
	PredIndex  int     `json:"pred_index"`
	Similarity float64 `json:"similarity"`
}

// Tally is a correct/total counter pair.
type Tally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// ItemResult is the per-sample item list evaluation.
type ItemResult struct {
	Sample        string             `json:"sample"`
	Skip          bool               `json:"skip,omitempty"`
	Matched       int                `json:"matched"`
	GTCount       int                `json:"gt_count"`
	PredCount     int                `json:"pred_count"`
	Precision     float64            `json:"precision"`
	Recall        float64            `json:"recall"`
	F1            float64            `json:"f1"`
	Matches       []ItemMatch        `json:"matches,omitempty"`
	FieldScores   map[string]*Tally  `json:"field_scores,omitempty"`
	FieldAccuracy map[string]float64 `json:"field_accuracy,omitempty"`
}

// SampleResult is everything one (method, sample) evaluation produced.
type SampleResult struct {
	Fields      map[string]*FieldMetric   `json:"fields"`
	FieldErrors map[string][]ErrorExample `json:"field_errors"`
	Items       *ItemResult               `json:"items"`
}

// Options restricts scoring to what a given rendered sample displayed.
type Options struct {
	// VisiblePaths limits scored fields; nil means every schema field.
	VisiblePaths map[string]bool
	// ItemsVisible disables item scoring when false; nil means enabled.
	ItemsVisible *bool
}

func (o Options) fieldVisible(path string) bool {
	if o.VisiblePaths == nil {
		return true
	}
	return o.VisiblePaths[path]
}

func (o Options) itemsEnabled() bool {
	if o.ItemsVisible == nil {
		return true
	}
	return *o.ItemsVisible
}

// orderedFieldPaths yields the schema paths present in a result map, in
// schema order, so aggregation is deterministic.
func orderedFieldPaths(fields map[string]*FieldMetric) []string {
	paths := make([]string, 0, len(fields))
	for _, spec := range invoice.FieldSpecs {
		if _, ok := fields[spec.Path]; ok {
			paths = append(paths, spec.Path)
		}
	}
	return paths
}
