// Package export writes benchmark reports to an Excel workbook, one
// overview sheet plus one sheet of per-field metrics per method.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-bench/internal/bench"
	"github.com/garyjia/invoice-bench/internal/evaluate"
)

// ExcelWriter renders runs into .xlsx workbooks.
type ExcelWriter struct {
	outputDir string
	logger    *zap.Logger
}

// NewExcelWriter creates an ExcelWriter rooted at outputDir.
func NewExcelWriter(outputDir string, logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{outputDir: outputDir, logger: logger}
}

// Write renders the run and returns the workbook path.
func (w *ExcelWriter) Write(run *bench.Run) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			w.logger.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	if err := w.writeOverview(f, run); err != nil {
		return "", err
	}
	for _, method := range sortedMethods(run) {
		if err := w.writeMethodSheet(f, method, run.Reports[method]); err != nil {
			return "", err
		}
	}
	// The default sheet was replaced by Overview.
	if idx, err := f.GetSheetIndex("Overview"); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	outputPath := filepath.Join(w.outputDir, fmt.Sprintf("run_%s.xlsx", run.ID))
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	w.logger.Info("Report workbook written",
		zap.String("run_id", run.ID),
		zap.String("path", outputPath))
	return outputPath, nil
}

func (w *ExcelWriter) writeOverview(f *excelize.File, run *bench.Run) error {
	const sheet = "Overview"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to rename overview sheet: %w", err)
	}

	w.setCell(f, sheet, "A1", "Run")
	w.setCell(f, sheet, "B1", run.ID)
	w.setCell(f, sheet, "A2", "Dataset")
	w.setCell(f, sheet, "B2", run.Dataset)
	w.setCell(f, sheet, "A3", "Source")
	w.setCell(f, sheet, "B3", run.Source)
	w.setCell(f, sheet, "A4", "Samples")
	w.setCell(f, sheet, "B4", run.SampleCount)
	w.setCell(f, sheet, "A5", "Started")
	w.setCell(f, sheet, "B5", run.StartedAt.Format("2006-01-02 15:04:05"))

	headers := []string{"Method", "Exact (macro)", "Normalized (macro)", "Token F1 (macro)",
		"Char similarity (macro)", "Item precision", "Item recall", "Item F1"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 7)
		w.setCell(f, sheet, cell, header)
	}

	row := 8
	for _, method := range sortedMethods(run) {
		overall := run.Reports[method].Overall
		values := []any{
			method,
			rate(overall.ExactMacro),
			rate(overall.NormalizedMacro),
			rate(overall.TokenF1Macro),
			rate(overall.CharSimilarityMacro),
			rate(overall.ItemPrecision),
			rate(overall.ItemRecall),
			rate(overall.ItemF1),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			w.setCell(f, sheet, cell, value)
		}
		row++
	}
	return nil
}

func (w *ExcelWriter) writeMethodSheet(f *excelize.File, method string, report *evaluate.Report) error {
	sheet := method
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	headers := []string{"Field", "Label", "Type", "Count", "Present", "Exact",
		"Normalized", "Token F1", "Char sim", "Numeric MAE", "Within tol", "Date MAE (days)"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		w.setCell(f, sheet, cell, header)
	}

	paths := make([]string, 0, len(report.Fields))
	for path := range report.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	row := 2
	for _, path := range paths {
		field := report.Fields[path]
		values := []any{
			path, field.Label, field.Type, field.Count,
			rate(field.PresentRate), rate(field.ExactRate), rate(field.NormalizedRate),
			rate(field.TokenF1), rate(field.CharSimilarity),
			rate(field.NumericMAE), rate(field.NumericWithinTol), rate(field.DateMAEDays),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			w.setCell(f, sheet, cell, value)
		}
		row++
	}
	return nil
}

func (w *ExcelWriter) setCell(f *excelize.File, sheet, cell string, value any) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		w.logger.Warn("Failed to set cell",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}

func sortedMethods(run *bench.Run) []string {
	methods := make([]string, 0, len(run.Reports))
	for method := range run.Reports {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return methods
}

// rate renders a nullable metric; missing metrics stay blank.
func rate(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
