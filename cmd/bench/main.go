// Command bench runs the extraction benchmark over a generated invoice
// dataset, stores the reports, writes an Excel workbook, and optionally
// announces the run in a Lark chat.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-bench/internal/bench"
	"github.com/garyjia/invoice-bench/internal/config"
	"github.com/garyjia/invoice-bench/internal/dataset"
	"github.com/garyjia/invoice-bench/internal/export"
	"github.com/garyjia/invoice-bench/internal/llm"
	"github.com/garyjia/invoice-bench/internal/notify"
	"github.com/garyjia/invoice-bench/internal/ocr"
	"github.com/garyjia/invoice-bench/internal/repository"
	"github.com/garyjia/invoice-bench/pkg/database"
	"github.com/garyjia/invoice-bench/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Benchmark failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	samples, err := dataset.List(cfg.Dataset.Dir, logger)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	if len(samples) == 0 {
		return fmt.Errorf("no samples found in %s", cfg.Dataset.Dir)
	}
	logger.Info("Dataset loaded",
		zap.String("dir", cfg.Dataset.Dir),
		zap.Int("samples", len(samples)))

	text, err := textSource(cfg, logger)
	if err != nil {
		return err
	}

	var extractor bench.RecordExtractor
	if methodEnabled(cfg.Bench.Methods, "llm") {
		extractor = llm.New(llm.Config{
			APIKey:    cfg.OpenAI.APIKey,
			BaseURL:   cfg.OpenAI.BaseURL,
			Model:     cfg.OpenAI.Model,
			MaxTokens: cfg.OpenAI.MaxTokens,
		}, logger)
	}

	runner := bench.NewRunner(text, extractor, logger)
	run, err := runner.Run(ctx, samples, bench.Options{
		Methods: cfg.Bench.Methods,
		Workers: cfg.Bench.Workers,
		Dataset: cfg.Dataset.Dir,
		Source:  cfg.Bench.Source,
	})
	if err != nil {
		return err
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	repo := repository.NewRunRepository(db, logger)
	if err := repo.SaveRun(run); err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}

	writer := export.NewExcelWriter(cfg.Export.OutputDir, logger)
	workbook, err := writer.Write(run)
	if err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	if cfg.Lark.Enabled {
		notifier := notify.NewLarkNotifier(notify.Config{
			AppID:     cfg.Lark.AppID,
			AppSecret: cfg.Lark.AppSecret,
			ChatID:    cfg.Lark.ChatID,
		}, logger)
		notifyCtx, cancel := context.WithTimeout(ctx, cfg.Lark.Timeout)
		defer cancel()
		if err := notifier.RunCompleted(notifyCtx, run); err != nil {
			// The run itself succeeded; a failed announcement is not fatal.
			logger.Warn("Failed to send run notification", zap.Error(err))
		}
	}

	logger.Info("Benchmark run complete",
		zap.String("run_id", run.ID),
		zap.String("workbook", workbook))
	return nil
}

// textSource builds the document text resolver for the configured
// source.
func textSource(cfg *config.Config, logger *zap.Logger) (bench.TextSource, error) {
	switch cfg.Bench.Source {
	case "pdf":
		return func(_ context.Context, sample dataset.Sample) (string, error) {
			return ocr.PDFText(sample.PDFPath)
		}, nil
	case "ocr":
		return func(_ context.Context, sample dataset.Sample) (string, error) {
			return ocr.LinesFromBoxes(ocr.ReadBoxes(sample.OCRPath)), nil
		}, nil
	case "tesseract":
		engine := ocr.NewTesseract(cfg.OCR.TesseractCmd, cfg.OCR.Languages, cfg.OCR.Zoom, logger)
		if !engine.Available() {
			return nil, fmt.Errorf("tesseract binary not found; set TESSERACT_CMD or install tesseract")
		}
		return func(ctx context.Context, sample dataset.Sample) (string, error) {
			return engine.Text(ctx, sample.PDFPath)
		}, nil
	default:
		return nil, fmt.Errorf("unknown text source %q", cfg.Bench.Source)
	}
}

func methodEnabled(methods []string, name string) bool {
	for _, method := range methods {
		if method == name {
			return true
		}
	}
	return false
}
