package evaluate

import (
	"sort"

	"github.com/garyjia/invoice-bench/internal/invoice"
)

// maxErrorExamples caps how many worst-scoring examples a finalized
// report keeps per field.
const maxErrorExamples = 5

type fieldStats struct {
	label        string
	fieldType    string
	count        int
	present      int
	exact        int
	normalized   int
	tokenF1Sum   float64
	jaccardSum   float64
	charSimSum   float64
	absErrSum    float64
	relErrSum    float64
	withinTol    int
	numericCount int
	dateErrSum   float64
	dateCount    int
}

type itemStats struct {
	gtCount     int
	predCount   int
	matched     int
	samples     int
	fieldScores map[string]*Tally
}

// AggregateState accumulates per-sample results for one method. It is
// not safe for concurrent use; run one instance per goroutine and Merge
// afterwards — all counters add, so merging disjoint subsets and
// finalizing equals finalizing a single-pass state.
type AggregateState struct {
	fields      map[string]*fieldStats
	item        itemStats
	fieldErrors map[string][]ErrorExample
	sampleCount int
}

// NewAggregate returns a zeroed aggregate covering the full schema.
func NewAggregate() *AggregateState {
	agg := &AggregateState{
		fields:      map[string]*fieldStats{},
		fieldErrors: map[string][]ErrorExample{},
		item:        itemStats{fieldScores: map[string]*Tally{}},
	}
	for _, spec := range invoice.FieldSpecs {
		agg.fields[spec.Path] = &fieldStats{label: spec.Label, fieldType: spec.Type}
	}
	for _, spec := range invoice.ItemFieldSpecs {
		agg.item.fieldScores[spec.Path] = &Tally{}
	}
	return agg
}

// SampleCount reports how many samples have been folded in.
func (a *AggregateState) SampleCount() int {
	return a.sampleCount
}

// Update folds one sample result into the running totals. Similarity
// sums always accumulate; numeric and date sums only when that sample
// had a parseable pair, so their means divide by the right denominator.
func (a *AggregateState) Update(result *SampleResult) {
	a.sampleCount++
	for _, path := range orderedFieldPaths(result.Fields) {
		metric := result.Fields[path]
		stats, ok := a.fields[path]
		if !ok {
			continue
		}
		stats.count++
		if metric.Present {
			stats.present++
		}
		stats.exact += metric.Exact
		stats.normalized += metric.Normalized
		stats.tokenF1Sum += metric.TokenF1
		stats.jaccardSum += metric.Jaccard
		stats.charSimSum += metric.CharSim
		if metric.Numeric != nil {
			stats.numericCount++
			stats.absErrSum += metric.Numeric.AbsErr
			stats.relErrSum += metric.Numeric.RelErr
			if metric.Numeric.WithinTol {
				stats.withinTol++
			}
		}
		if metric.Date != nil {
			stats.dateCount++
			stats.dateErrSum += metric.Date.AbsDays
		}
		if errs := result.FieldErrors[path]; len(errs) > 0 {
			a.fieldErrors[path] = append(a.fieldErrors[path], errs...)
		}
	}

	item := result.Items
	if item == nil || item.Skip {
		return
	}
	a.item.samples++
	a.item.gtCount += item.GTCount
	a.item.predCount += item.PredCount
	a.item.matched += item.Matched
	for _, spec := range invoice.ItemFieldSpecs {
		if tally, ok := item.FieldScores[spec.Path]; ok {
			a.item.fieldScores[spec.Path].Total += tally.Total
			a.item.fieldScores[spec.Path].Correct += tally.Correct
		}
	}
}

// Merge adds another aggregate's raw counters into this one. Both must
// have been built over disjoint sample subsets.
func (a *AggregateState) Merge(other *AggregateState) {
	if other == nil {
		return
	}
	a.sampleCount += other.sampleCount
	for path, stats := range a.fields {
		src, ok := other.fields[path]
		if !ok {
			continue
		}
		stats.count += src.count
		stats.present += src.present
		stats.exact += src.exact
		stats.normalized += src.normalized
		stats.tokenF1Sum += src.tokenF1Sum
		stats.jaccardSum += src.jaccardSum
		stats.charSimSum += src.charSimSum
		stats.absErrSum += src.absErrSum
		stats.relErrSum += src.relErrSum
		stats.withinTol += src.withinTol
		stats.numericCount += src.numericCount
		stats.dateErrSum += src.dateErrSum
		stats.dateCount += src.dateCount
	}
	for path, errs := range other.fieldErrors {
		a.fieldErrors[path] = append(a.fieldErrors[path], errs...)
	}
	a.item.samples += other.item.samples
	a.item.gtCount += other.item.gtCount
	a.item.predCount += other.item.predCount
	a.item.matched += other.item.matched
	for path, tally := range a.item.fieldScores {
		if src, ok := other.item.fieldScores[path]; ok {
			tally.Total += src.Total
			tally.Correct += src.Correct
		}
	}
}

// FieldReport is a finalized per-field metric set. Rates are nil (not
// zero) when the field was never observed, so an unobserved field cannot
// masquerade as a universal failure.
type FieldReport struct {
	Label            string   `json:"label"`
	Type             string   `json:"type"`
	Count            int      `json:"count"`
	PresentRate      *float64 `json:"present_rate"`
	ExactRate        *float64 `json:"exact_rate"`
	NormalizedRate   *float64 `json:"normalized_rate"`
	TokenF1          *float64 `json:"token_f1"`
	CharSimilarity   *float64 `json:"char_similarity"`
	Jaccard          *float64 `json:"jaccard"`
	NumericMAE       *float64 `json:"numeric_mae"`
	NumericMAPE      *float64 `json:"numeric_mape"`
	NumericWithinTol *float64 `json:"numeric_within_tol"`
	DateMAEDays      *float64 `json:"date_mae_days"`
}

// OverallMetrics are the macro (unweighted per-field mean) rates plus
// globally-derived item metrics.
type OverallMetrics struct {
	SampleCount         int                 `json:"sample_count"`
	ExactMacro          *float64            `json:"exact_macro"`
	NormalizedMacro     *float64            `json:"normalized_macro"`
	TokenF1Macro        *float64            `json:"token_f1_macro"`
	CharSimilarityMacro *float64            `json:"char_similarity_macro"`
	ItemPrecision       *float64            `json:"item_precision"`
	ItemRecall          *float64            `json:"item_recall"`
	ItemF1              *float64            `json:"item_f1"`
	ItemFieldAccuracy   map[string]*float64 `json:"item_field_accuracy"`
}

// Report is the immutable finalized output for one method.
type Report struct {
	Overall OverallMetrics            `json:"overall"`
	Fields  map[string]FieldReport    `json:"fields"`
	Errors  map[string][]ErrorExample `json:"errors"`
}

func ptr(v float64) *float64 {
	return &v
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return ptr(sum / float64(len(values)))
}

// Finalize divides every sum by its correct denominator and derives the
// macro overview. Fields with no observations are excluded from the
// macro means rather than treated as zero. Call exactly once, after all
// updates and merges.
func (a *AggregateState) Finalize() *Report {
	fields := map[string]FieldReport{}
	var exactRates, normRates, tokenF1s, charSims []float64
	for _, spec := range invoice.FieldSpecs {
		stats := a.fields[spec.Path]
		if stats.count == 0 {
			fields[spec.Path] = FieldReport{Label: stats.label, Type: stats.fieldType}
			continue
		}
		count := float64(stats.count)
		report := FieldReport{
			Label:          stats.label,
			Type:           stats.fieldType,
			Count:          stats.count,
			PresentRate:    ptr(float64(stats.present) / count),
			ExactRate:      ptr(float64(stats.exact) / count),
			NormalizedRate: ptr(float64(stats.normalized) / count),
			TokenF1:        ptr(stats.tokenF1Sum / count),
			CharSimilarity: ptr(stats.charSimSum / count),
			Jaccard:        ptr(stats.jaccardSum / count),
		}
		if stats.numericCount > 0 {
			numeric := float64(stats.numericCount)
			report.NumericMAE = ptr(stats.absErrSum / numeric)
			report.NumericMAPE = ptr(stats.relErrSum / numeric)
			report.NumericWithinTol = ptr(float64(stats.withinTol) / numeric)
		}
		if stats.dateCount > 0 {
			report.DateMAEDays = ptr(stats.dateErrSum / float64(stats.dateCount))
		}
		fields[spec.Path] = report
		exactRates = append(exactRates, *report.ExactRate)
		normRates = append(normRates, *report.NormalizedRate)
		tokenF1s = append(tokenF1s, *report.TokenF1)
		charSims = append(charSims, *report.CharSimilarity)
	}

	overall := OverallMetrics{
		SampleCount:         a.sampleCount,
		ExactMacro:          mean(exactRates),
		NormalizedMacro:     mean(normRates),
		TokenF1Macro:        mean(tokenF1s),
		CharSimilarityMacro: mean(charSims),
		ItemFieldAccuracy:   map[string]*float64{},
	}
	if a.item.samples > 0 {
		precision := 0.0
		if a.item.predCount > 0 {
			precision = float64(a.item.matched) / float64(a.item.predCount)
		}
		recall := 0.0
		if a.item.gtCount > 0 {
			recall = float64(a.item.matched) / float64(a.item.gtCount)
		}
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		overall.ItemPrecision = ptr(precision)
		overall.ItemRecall = ptr(recall)
		overall.ItemF1 = ptr(f1)
		for _, spec := range invoice.ItemFieldSpecs {
			tally := a.item.fieldScores[spec.Path]
			if tally.Total > 0 {
				overall.ItemFieldAccuracy[spec.Path] = ptr(float64(tally.Correct) / float64(tally.Total))
			} else {
				overall.ItemFieldAccuracy[spec.Path] = ptr(0.0)
			}
		}
	} else {
		for _, spec := range invoice.ItemFieldSpecs {
			overall.ItemFieldAccuracy[spec.Path] = nil
		}
	}

	errors := map[string][]ErrorExample{}
	for _, spec := range invoice.FieldSpecs {
		examples := append([]ErrorExample(nil), a.fieldErrors[spec.Path]...)
		sort.SliceStable(examples, func(i, j int) bool { return examples[i].Score < examples[j].Score })
		if len(examples) > maxErrorExamples {
			examples = examples[:maxErrorExamples]
		}
		errors[spec.Path] = examples
	}

	return &Report{Overall: overall, Fields: fields, Errors: errors}
}
