package bench

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-bench/internal/dataset"
	"github.com/garyjia/invoice-bench/internal/invoice"
)

func benchSample(id, number, due string) dataset.Sample {
	gt := invoice.New()
	gt.Set("invoice.number", number)
	gt.Set("totals.due", due)
	return dataset.Sample{
		ID: id,
		GT: gt,
		VisiblePaths: map[string]bool{
			"invoice.number": true,
			"totals.due":     true,
		},
	}
}

func benchText(number, due string) string {
	return fmt.Sprintf("Invoice number: %s\nTotal due: %s\n", number, due)
}

func textFor(samples []dataset.Sample) TextSource {
	texts := map[string]string{}
	for _, s := range samples {
		texts[s.ID] = benchText(
			fmt.Sprint(s.GT.Get("invoice.number")),
			fmt.Sprint(s.GT.Get("totals.due")))
	}
	return func(_ context.Context, sample dataset.Sample) (string, error) {
		text, ok := texts[sample.ID]
		if !ok {
			return "", errors.New("no text")
		}
		return text, nil
	}
}

func TestRunnerPerfectExtraction(t *testing.T) {
	samples := []dataset.Sample{
		benchSample("s1", "INV-1", "10.00"),
		benchSample("s2", "INV-2", "20.00"),
		benchSample("s3", "INV-3", "30.00"),
	}
	runner := NewRunner(textFor(samples), nil, zap.NewNop())

	run, err := runner.Run(context.Background(), samples, Options{
		Methods: []string{"regex", "ensemble"},
		Workers: 2,
		Dataset: "testdata",
		Source:  "pdf",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "testdata", run.Dataset)
	assert.Equal(t, 3, run.SampleCount)
	require.Contains(t, run.Reports, "regex")
	require.Contains(t, run.Reports, "ensemble")

	report := run.Reports["regex"]
	assert.Equal(t, 3, report.Overall.SampleCount)
	require.Contains(t, report.Fields, "invoice.number")
	number := report.Fields["invoice.number"]
	require.NotNil(t, number.ExactRate)
	assert.InDelta(t, 1.0, *number.ExactRate, 1e-9)
	due := report.Fields["totals.due"]
	require.NotNil(t, due.NumericWithinTol)
	assert.InDelta(t, 1.0, *due.NumericWithinTol, 1e-9)
}

func TestRunnerDeterministicAcrossWorkerCounts(t *testing.T) {
	var samples []dataset.Sample
	for i := 0; i < 7; i++ {
		samples = append(samples, benchSample(
			fmt.Sprintf("s%d", i),
			fmt.Sprintf("INV-%d", i),
			fmt.Sprintf("%d.50", 10+i)))
	}
	text := textFor(samples)
	// One sample whose text disagrees with the ground truth so the
	// report carries a real error distribution.
	samples[3].GT.Set("totals.due", "999.99")
	serial, err := NewRunner(text, nil, zap.NewNop()).Run(context.Background(), samples, Options{
		Methods: []string{"regex"},
		Workers: 1,
	})
	require.NoError(t, err)
	parallel, err := NewRunner(text, nil, zap.NewNop()).Run(context.Background(), samples, Options{
		Methods: []string{"regex"},
		Workers: 3,
	})
	require.NoError(t, err)

	serialDue := serial.Reports["regex"].Fields["totals.due"]
	parallelDue := parallel.Reports["regex"].Fields["totals.due"]
	require.NotNil(t, serialDue.ExactRate)
	require.NotNil(t, parallelDue.ExactRate)
	assert.Equal(t, *serialDue.ExactRate, *parallelDue.ExactRate)
	assert.Equal(t, *serialDue.NumericWithinTol, *parallelDue.NumericWithinTol)
	assert.Equal(t, serial.Reports["regex"].Overall.SampleCount, parallel.Reports["regex"].Overall.SampleCount)
}

func TestRunnerTextFailureScoresEmpty(t *testing.T) {
	samples := []dataset.Sample{benchSample("s1", "INV-1", "10.00")}
	failing := func(context.Context, dataset.Sample) (string, error) {
		return "", errors.New("boom")
	}
	runner := NewRunner(failing, nil, zap.NewNop())

	run, err := runner.Run(context.Background(), samples, Options{Methods: []string{"regex"}})
	require.NoError(t, err)

	number := run.Reports["regex"].Fields["invoice.number"]
	require.NotNil(t, number.PresentRate)
	assert.Zero(t, *number.PresentRate)
}

func TestRunnerUnknownMethod(t *testing.T) {
	samples := []dataset.Sample{benchSample("s1", "INV-1", "10.00")}
	runner := NewRunner(textFor(samples), nil, zap.NewNop())

	_, err := runner.Run(context.Background(), samples, Options{Methods: []string{"psychic"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "psychic")
}

func TestRunnerLLMNotConfigured(t *testing.T) {
	samples := []dataset.Sample{benchSample("s1", "INV-1", "10.00")}
	runner := NewRunner(textFor(samples), nil, zap.NewNop())

	_, err := runner.Run(context.Background(), samples, Options{Methods: []string{"llm"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm")
}

type fakeExtractor struct{ rec *invoice.Record }

func (f *fakeExtractor) Extract(context.Context, string) (*invoice.Record, error) {
	return f.rec, nil
}

func TestRunnerLLMMethod(t *testing.T) {
	samples := []dataset.Sample{benchSample("s1", "INV-1", "10.00")}
	rec := invoice.New()
	rec.Set("invoice.number", "INV-1")
	rec.Set("totals.due", "10.00")
	runner := NewRunner(textFor(samples), &fakeExtractor{rec: rec}, zap.NewNop())

	run, err := runner.Run(context.Background(), samples, Options{Methods: []string{"llm"}})
	require.NoError(t, err)

	number := run.Reports["llm"].Fields["invoice.number"]
	require.NotNil(t, number.ExactRate)
	assert.InDelta(t, 1.0, *number.ExactRate, 1e-9)
}

func TestRunnerCancelledContext(t *testing.T) {
	samples := []dataset.Sample{benchSample("s1", "INV-1", "10.00")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(textFor(samples), nil, zap.NewNop()).Run(ctx, samples, Options{Methods: []string{"regex"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
