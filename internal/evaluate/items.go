package evaluate

import (
	"github.com/garyjia/invoice-bench/internal/invoice"
	"github.com/garyjia/invoice-bench/internal/textscore"
)

// matchThreshold is the minimum blended similarity for a ground-truth
// row to accept a predicted row.
const matchThreshold = 0.5

// numericCloseness is 1 − min(|gt−pred| / max(|gt|, 1), 1). The
// denominator floors at 1 deliberately, which widens tolerance around
// zero-valued ground truth.
func numericCloseness(gt, pred float64) float64 {
	diff := abs(gt - pred)
	scale := maxFloat(abs(gt), 1.0)
	ratio := diff / scale
	if ratio > 1 {
		ratio = 1
	}
	return 1 - ratio
}

// ItemSimilarity blends description token-F1 (0.4) with qty, unit price,
// and line total closeness (0.2 each). A numeric column missing on
// either side contributes 0.
func ItemSimilarity(gt, pred invoice.Item) float64 {
	descScore := textscore.TokenF1(textscore.Stringify(gt.Description), textscore.Stringify(pred.Description))
	var qtyScore, unitScore, totalScore float64
	if gtQty, ok := textscore.ParseNumber(gt.Qty); ok {
		if predQty, ok := textscore.ParseNumber(pred.Qty); ok {
			qtyScore = numericCloseness(gtQty, predQty)
		}
	}
	if gtUnit, ok := textscore.ParseNumber(gt.UnitPrice); ok {
		if predUnit, ok := textscore.ParseNumber(pred.UnitPrice); ok {
			unitScore = numericCloseness(gtUnit, predUnit)
		}
	}
	if gtTotal, ok := textscore.ParseNumber(gt.LineTotal); ok {
		if predTotal, ok := textscore.ParseNumber(pred.LineTotal); ok {
			totalScore = numericCloseness(gtTotal, predTotal)
		}
	}
	return 0.4*descScore + 0.2*qtyScore + 0.2*unitScore + 0.2*totalScore
}

// EvaluateItems matches predicted rows to ground-truth rows greedily in
// ground-truth order: each row takes the best still-unused prediction,
// accepted at similarity >= 0.5, with no backtracking. Matched pairs are
// then scored per column with the same tolerance rules as document
// fields.
func EvaluateItems(gtItems, predItems []invoice.Item, sampleID string, enabled bool) *ItemResult {
	if !enabled {
		return &ItemResult{Sample: sampleID, Skip: true}
	}
	var matches []ItemMatch
	usedPred := map[int]bool{}
	for gi, gt := range gtItems {
		bestIdx := -1
		bestScore := 0.0
		for pi, pred := range predItems {
			if usedPred[pi] {
				continue
			}
			if score := ItemSimilarity(gt, pred); score > bestScore {
				bestIdx = pi
				bestScore = score
			}
		}
		if bestIdx >= 0 && bestScore >= matchThreshold {
			usedPred[bestIdx] = true
			matches = append(matches, ItemMatch{GTIndex: gi, PredIndex: bestIdx, Similarity: bestScore})
		}
	}

	matched := len(matches)
	gtCount := len(gtItems)
	predCount := len(predItems)
	precision := 0.0
	if predCount > 0 {
		precision = float64(matched) / float64(predCount)
	}
	recall := 0.0
	if gtCount > 0 {
		recall = float64(matched) / float64(gtCount)
	}
	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	fieldScores := map[string]*Tally{}
	for _, spec := range invoice.ItemFieldSpecs {
		fieldScores[spec.Path] = &Tally{}
	}
	for _, match := range matches {
		gt := gtItems[match.GTIndex]
		pred := predItems[match.PredIndex]
		for _, spec := range invoice.ItemFieldSpecs {
			gtVal := gt.Field(spec.Path)
			predVal := pred.Field(spec.Path)
			ok := false
			if spec.Type == invoice.FieldText {
				ok = textscore.Normalize(textscore.Stringify(gtVal)) == textscore.Normalize(textscore.Stringify(predVal))
			} else {
				gtNum, gtOK := textscore.ParseNumber(gtVal)
				predNum, predOK := textscore.ParseNumber(predVal)
				if gtOK && predOK {
					ok = abs(gtNum-predNum) <= toleranceFor(spec.Type)
				}
			}
			fieldScores[spec.Path].Total++
			if ok {
				fieldScores[spec.Path].Correct++
			}
		}
	}
	fieldAccuracy := map[string]float64{}
	for _, spec := range invoice.ItemFieldSpecs {
		tally := fieldScores[spec.Path]
		if tally.Total > 0 {
			fieldAccuracy[spec.Path] = float64(tally.Correct) / float64(tally.Total)
		} else {
			fieldAccuracy[spec.Path] = 0.0
		}
	}

	return &ItemResult{
		Sample:        sampleID,
		Matched:       matched,
		GTCount:       gtCount,
		PredCount:     predCount,
		Precision:     precision,
		Recall:        recall,
		F1:            f1,
		Matches:       matches,
		FieldScores:   fieldScores,
		FieldAccuracy: fieldAccuracy,
	}
}
