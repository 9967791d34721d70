// Command extract runs one extraction strategy over a single PDF or
// text file and prints the resulting record as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-bench/internal/extract"
	"github.com/garyjia/invoice-bench/internal/invoice"
	"github.com/garyjia/invoice-bench/internal/llm"
	"github.com/garyjia/invoice-bench/internal/ocr"
	"github.com/garyjia/invoice-bench/pkg/utils"
)

func main() {
	method := flag.String("method", "ensemble", "extraction method: "+strings.Join(append(extract.Methods(), "llm"), ", "))
	model := flag.String("model", "gpt-4o-mini", "model name for the llm method")
	timeout := flag.Duration("timeout", 60*time.Second, "llm request timeout")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: extract [flags] <invoice.pdf|invoice.txt>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	_ = gotenv.Load()

	logger, err := utils.NewLogger(utils.LoggerConfig{Level: "warn", OutputPath: "stderr", Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	path := flag.Arg(0)
	text, err := readText(path)
	if err != nil {
		logger.Fatal("Failed to read document", zap.String("path", path), zap.Error(err))
	}

	rec, err := runMethod(*method, *model, *timeout, text, logger)
	if err != nil {
		logger.Fatal("Extraction failed", zap.String("method", *method), zap.Error(err))
	}

	encoded, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		logger.Fatal("Failed to encode record", zap.Error(err))
	}
	fmt.Println(string(encoded))
}

func readText(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return ocr.PDFText(path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func runMethod(method, model string, timeout time.Duration, text string, logger *zap.Logger) (*invoice.Record, error) {
	if method == "llm" {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the llm method")
		}
		extractor := llm.New(llm.Config{
			APIKey:  apiKey,
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Model:   model,
		}, logger)
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return extractor.Extract(ctx, text)
	}

	fn, ok := extract.ByName(method)
	if !ok {
		return nil, fmt.Errorf("unknown extraction method %q", method)
	}
	return fn(text), nil
}
