package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/garyjia/invoice-bench/internal/bench"
	"github.com/garyjia/invoice-bench/internal/evaluate"
)

func TestSummarize(t *testing.T) {
	exact := 0.912
	tokenF1 := 0.87
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	run := &bench.Run{
		ID:          "run-7",
		Dataset:     "testdata",
		Source:      "ocr",
		SampleCount: 12,
		StartedAt:   started,
		FinishedAt:  started.Add(90 * time.Second),
		Reports: map[string]*evaluate.Report{
			"regex":    {Overall: evaluate.OverallMetrics{ExactMacro: &exact, TokenF1Macro: &tokenF1}},
			"ensemble": {Overall: evaluate.OverallMetrics{}},
		},
	}

	text := summarize(run)
	assert.Contains(t, text, "run-7")
	assert.Contains(t, text, "testdata (12 samples, source ocr)")
	assert.Contains(t, text, "1m30s")
	assert.Contains(t, text, "regex: exact 0.912, token F1 0.870")
	assert.Contains(t, text, "ensemble: no observed fields")
}
