// Package ocr acquires document text for the extraction strategies: the
// PDF's embedded text layer, a Tesseract subprocess over rendered page
// images, or a previously produced OCR box file. Every source yields a
// plain text blob; the extractors do not care which one produced it.
package ocr

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// DefaultZoom is the page render scale used when none is configured.
const DefaultZoom = 1.7

// PDFText extracts the embedded text layer of every page.
func PDFText(pdfPath string) (string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer doc.Close()

	var chunks []string
	for page := 0; page < doc.NumPage(); page++ {
		text, err := doc.Text(page)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", page, err)
		}
		chunks = append(chunks, text)
	}
	return strings.Join(chunks, "\n"), nil
}

// PageImages renders each page to a PNG at the given zoom.
func PageImages(pdfPath string, zoom float64) ([][]byte, error) {
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer doc.Close()

	var images [][]byte
	for page := 0; page < doc.NumPage(); page++ {
		img, err := doc.ImageDPI(page, 72*zoom)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", page, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", page, err)
		}
		images = append(images, buf.Bytes())
	}
	return images, nil
}
