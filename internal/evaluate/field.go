package evaluate

import (
	"strings"

	"github.com/garyjia/invoice-bench/internal/invoice"
	"github.com/garyjia/invoice-bench/internal/textscore"
)

// Tolerances for type-aware equality. Amounts must agree to a cent;
// generic numbers to half a unit.
const (
	amountTolerance = 0.01
	numberTolerance = 0.5
)

func toleranceFor(fieldType string) float64 {
	if fieldType == invoice.FieldAmount {
		return amountTolerance
	}
	return numberTolerance
}

// EvaluateSample compares one prediction to one ground truth across the
// document schema and the item list. Malformed values never abort the
// sample; they just score as mismatches.
func EvaluateSample(gt, pred *invoice.Record, sampleID string, opts Options) *SampleResult {
	result := &SampleResult{
		Fields:      map[string]*FieldMetric{},
		FieldErrors: map[string][]ErrorExample{},
	}
	if gt == nil {
		gt = invoice.New()
	}
	if pred == nil {
		pred = invoice.New()
	}
	for _, spec := range invoice.FieldSpecs {
		if !opts.fieldVisible(spec.Path) {
			continue
		}
		gtVal := gt.Get(spec.Path)
		predVal := pred.Get(spec.Path)
		gtStr := textscore.Stringify(gtVal)
		predStr := textscore.Stringify(predVal)

		metric := &FieldMetric{
			Label:      spec.Label,
			Type:       spec.Type,
			Exact:      boolToInt(gtStr == predStr),
			Normalized: boolToInt(textscore.Normalize(gtStr) == textscore.Normalize(predStr)),
			TokenF1:    textscore.TokenF1(gtStr, predStr),
			Jaccard:    textscore.Jaccard(gtStr, predStr),
			CharSim:    textscore.CharSimilarity(gtStr, predStr),
			Present:    strings.TrimSpace(predStr) != "",
		}

		switch spec.Type {
		case invoice.FieldAmount, invoice.FieldNumber:
			gtNum, gtOK := textscore.ParseNumber(gtVal)
			predNum, predOK := textscore.ParseNumber(predVal)
			if gtOK && predOK {
				absErr := abs(gtNum - predNum)
				relErr := absErr / maxFloat(abs(gtNum), 1e-6)
				withinTol := absErr <= toleranceFor(spec.Type)
				metric.Exact = boolToInt(withinTol)
				metric.Normalized = boolToInt(withinTol)
				metric.Numeric = &NumericMetric{AbsErr: absErr, RelErr: relErr, WithinTol: withinTol}
			}
		case invoice.FieldDate:
			gtDate, gtOK := textscore.ParseDate(gtVal)
			predDate, predOK := textscore.ParseDate(predVal)
			if gtOK && predOK {
				same := textscore.SameDay(gtDate, predDate)
				metric.Exact = boolToInt(same)
				metric.Normalized = boolToInt(same)
				metric.Date = &DateMetric{AbsDays: textscore.DayDelta(gtDate, predDate)}
			}
		}
		result.Fields[spec.Path] = metric

		score := metric.TokenF1
		if spec.Type != invoice.FieldText {
			score = float64(metric.Exact)
		}
		if !metric.Present || score < 0.5 {
			result.FieldErrors[spec.Path] = append(result.FieldErrors[spec.Path], ErrorExample{
				Sample: sampleID,
				GT:     gtStr,
				Pred:   predStr,
				Score:  score,
			})
		}
	}

	result.Items = EvaluateItems(gt.Items, pred.Items, sampleID, opts.itemsEnabled())
	return result
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
