package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Tesseract runs the tesseract binary over rendered page images.
type Tesseract struct {
	cmd    string
	langs  string
	zoom   float64
	logger *zap.Logger
}

// NewTesseract creates a Tesseract runner. An empty cmd falls back to
// the binary on PATH; langs is the optional -l argument.
func NewTesseract(cmd, langs string, zoom float64, logger *zap.Logger) *Tesseract {
	if cmd == "" {
		if found, err := exec.LookPath("tesseract"); err == nil {
			cmd = found
		}
	}
	return &Tesseract{cmd: cmd, langs: langs, zoom: zoom, logger: logger}
}

// Available reports whether a tesseract binary was resolved.
func (t *Tesseract) Available() bool {
	return t.cmd != ""
}

// Text renders the PDF pages and OCRs each one, returning the pages
// joined with newlines.
func (t *Tesseract) Text(ctx context.Context, pdfPath string) (string, error) {
	if t.cmd == "" {
		return "", errors.New("tesseract binary not found in PATH")
	}
	pages, err := PageImages(pdfPath, t.zoom)
	if err != nil {
		return "", err
	}

	var texts []string
	for pageNum, imgBytes := range pages {
		text, err := t.ocrPage(ctx, imgBytes)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", pageNum, err)
		}
		texts = append(texts, text)
	}
	return strings.Join(texts, "\n"), nil
}

func (t *Tesseract) ocrPage(ctx context.Context, imgBytes []byte) (string, error) {
	tmpDir, err := os.MkdirTemp("", "invoice_ocr_*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	imgPath := filepath.Join(tmpDir, "page.png")
	if err := os.WriteFile(imgPath, imgBytes, 0644); err != nil {
		return "", fmt.Errorf("failed to write page image: %w", err)
	}

	args := []string{imgPath, "stdout", "--oem", "1"}
	if t.langs != "" {
		args = append(args, "-l", t.langs)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.cmd, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.logger.Error("Tesseract invocation failed",
			zap.String("stderr", stderr.String()),
			zap.Error(err))
		return "", fmt.Errorf("tesseract failed: %s: %w", strings.TrimSpace(stderr.String()), err)
	}
	return stdout.String(), nil
}
