// Package bench orchestrates a benchmark run: acquire text for every
// sample, run each configured extraction strategy over it, and fold the
// per-sample evaluations into one finalized report per method.
package bench

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-bench/internal/dataset"
	"github.com/garyjia/invoice-bench/internal/evaluate"
	"github.com/garyjia/invoice-bench/internal/extract"
	"github.com/garyjia/invoice-bench/internal/invoice"
)

// TextSource produces the document text for one sample.
type TextSource func(ctx context.Context, sample dataset.Sample) (string, error)

// RecordExtractor is a strategy that needs more than the text blob,
// such as the model-backed extractor.
type RecordExtractor interface {
	Extract(ctx context.Context, text string) (*invoice.Record, error)
}

// Options configures one benchmark run.
type Options struct {
	Methods []string
	Workers int
	Dataset string
	Source  string
}

// Run is the persisted outcome of one benchmark invocation.
type Run struct {
	ID          string                      `json:"id"`
	Dataset     string                      `json:"dataset"`
	Source      string                      `json:"source"`
	Methods     []string                    `json:"methods"`
	SampleCount int                         `json:"sample_count"`
	StartedAt   time.Time                   `json:"started_at"`
	FinishedAt  time.Time                   `json:"finished_at"`
	Reports     map[string]*evaluate.Report `json:"reports"`
}

// Runner evaluates extraction strategies over a sample set.
type Runner struct {
	text   TextSource
	llm    RecordExtractor
	logger *zap.Logger
}

// NewRunner creates a Runner. llm may be nil when the llm method is not
// configured.
func NewRunner(text TextSource, llm RecordExtractor, logger *zap.Logger) *Runner {
	return &Runner{text: text, llm: llm, logger: logger}
}

// Run executes every configured method over the samples and returns the
// finalized reports. Text acquisition happens once per sample and is
// shared across methods.
func (r *Runner) Run(ctx context.Context, samples []dataset.Sample, opts Options) (*Run, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if len(samples) > 0 && workers > len(samples) {
		workers = len(samples)
	}

	run := &Run{
		ID:          uuid.NewString(),
		Dataset:     opts.Dataset,
		Source:      opts.Source,
		Methods:     append([]string(nil), opts.Methods...),
		SampleCount: len(samples),
		StartedAt:   time.Now().UTC(),
		Reports:     map[string]*evaluate.Report{},
	}
	r.logger.Info("Benchmark run started",
		zap.String("run_id", run.ID),
		zap.Int("samples", len(samples)),
		zap.Strings("methods", opts.Methods),
		zap.Int("workers", workers))

	texts, err := r.collectTexts(ctx, samples, workers)
	if err != nil {
		return nil, err
	}

	for _, method := range opts.Methods {
		report, err := r.runMethod(ctx, method, samples, texts, workers)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", method, err)
		}
		run.Reports[method] = report
		r.logger.Info("Method evaluated",
			zap.String("run_id", run.ID),
			zap.String("method", method))
	}

	run.FinishedAt = time.Now().UTC()
	return run, nil
}

// collectTexts resolves the text for every sample. Acquisition failures
// are not fatal; the sample scores against an empty page.
func (r *Runner) collectTexts(ctx context.Context, samples []dataset.Sample, workers int) ([]string, error) {
	texts := make([]string, len(samples))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := offset; i < len(samples); i += workers {
				if ctx.Err() != nil {
					return
				}
				text, err := r.text(ctx, samples[i])
				if err != nil {
					r.logger.Warn("Text acquisition failed, scoring empty text",
						zap.String("sample", samples[i].ID),
						zap.Error(err))
					continue
				}
				texts[i] = text
			}
		}(w)
	}
	wg.Wait()
	return texts, ctx.Err()
}

// runMethod evaluates one strategy across all samples. Workers take a
// fixed stripe of samples and keep a private aggregate; the stripes are
// merged in worker order so the finalized report is deterministic.
func (r *Runner) runMethod(ctx context.Context, method string, samples []dataset.Sample, texts []string, workers int) (*evaluate.Report, error) {
	extractRecord, err := r.resolveMethod(method)
	if err != nil {
		return nil, err
	}

	aggs := make([]*evaluate.AggregateState, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		agg := evaluate.NewAggregate()
		aggs[w] = agg
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := offset; i < len(samples); i += workers {
				if ctx.Err() != nil {
					return
				}
				sample := samples[i]
				rec := extractRecord(ctx, sample, texts[i])
				itemsVisible := sample.ItemsVisible
				result := evaluate.EvaluateSample(sample.GT, rec, sample.ID, evaluate.Options{
					VisiblePaths: sample.VisiblePaths,
					ItemsVisible: &itemsVisible,
				})
				agg.Update(result)
			}
		}(w)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := aggs[0]
	for _, agg := range aggs[1:] {
		merged.Merge(agg)
	}
	return merged.Finalize(), nil
}

func (r *Runner) resolveMethod(method string) (func(context.Context, dataset.Sample, string) *invoice.Record, error) {
	if method == "llm" {
		if r.llm == nil {
			return nil, fmt.Errorf("llm method requested but no extractor is configured")
		}
		return func(ctx context.Context, sample dataset.Sample, text string) *invoice.Record {
			rec, err := r.llm.Extract(ctx, text)
			if err != nil {
				r.logger.Warn("LLM extraction failed, scoring empty record",
					zap.String("sample", sample.ID),
					zap.Error(err))
				return invoice.New()
			}
			return rec
		}, nil
	}
	fn, ok := extract.ByName(method)
	if !ok {
		return nil, fmt.Errorf("unknown extraction method %q", method)
	}
	return func(_ context.Context, _ dataset.Sample, text string) *invoice.Record {
		return fn(text)
	}, nil
}
