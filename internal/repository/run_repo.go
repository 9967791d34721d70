// Package repository persists benchmark runs and their reports.
package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/invoice-bench/internal/bench"
	"github.com/garyjia/invoice-bench/internal/evaluate"
	"github.com/garyjia/invoice-bench/pkg/database"
)

// RunSummary is the list view of one stored run.
type RunSummary struct {
	ID          string    `json:"id"`
	Dataset     string    `json:"dataset"`
	Source      string    `json:"source"`
	SampleCount int       `json:"sample_count"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Methods     []string  `json:"methods"`
}

// RunRepository handles run database operations
type RunRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *database.DB, logger *zap.Logger) *RunRepository {
	return &RunRepository{
		db:     db,
		logger: logger,
	}
}

// SaveRun stores a run and all of its reports in one transaction.
func (r *RunRepository) SaveRun(run *bench.Run) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO runs (id, dataset, source, sample_count, started_at, finished_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, run.Dataset, run.Source, run.SampleCount, run.StartedAt, run.FinishedAt)
		if err != nil {
			r.logger.Error("Failed to insert run", zap.String("run_id", run.ID), zap.Error(err))
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for _, method := range run.Methods {
			report, ok := run.Reports[method]
			if !ok {
				continue
			}
			encoded, err := json.Marshal(report)
			if err != nil {
				return fmt.Errorf("failed to encode report for %s: %w", method, err)
			}
			_, err = tx.Exec(`
				INSERT INTO reports (run_id, method, report_json)
				VALUES (?, ?, ?)
			`, run.ID, method, string(encoded))
			if err != nil {
				r.logger.Error("Failed to insert report",
					zap.String("run_id", run.ID),
					zap.String("method", method),
					zap.Error(err))
				return fmt.Errorf("failed to insert report for %s: %w", method, err)
			}
		}
		return nil
	})
}

// ListRuns returns stored runs, most recent first.
func (r *RunRepository) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(`
		SELECT id, dataset, source, sample_count, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		if err := rows.Scan(&run.ID, &run.Dataset, &run.Source,
			&run.SampleCount, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		methods, err := r.methodsForRun(run.ID)
		if err != nil {
			return nil, err
		}
		run.Methods = methods
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetReports returns the decoded reports of one run, keyed by method.
func (r *RunRepository) GetReports(runID string) (map[string]*evaluate.Report, error) {
	rows, err := r.db.Query(`
		SELECT method, report_json FROM reports WHERE run_id = ? ORDER BY method
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := map[string]*evaluate.Report{}
	for rows.Next() {
		var method, encoded string
		if err := rows.Scan(&method, &encoded); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		var report evaluate.Report
		if err := json.Unmarshal([]byte(encoded), &report); err != nil {
			return nil, fmt.Errorf("failed to decode report for %s: %w", method, err)
		}
		reports[method] = &report
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, sql.ErrNoRows
	}
	return reports, nil
}

func (r *RunRepository) methodsForRun(runID string) ([]string, error) {
	rows, err := r.db.Query(`SELECT method FROM reports WHERE run_id = ? ORDER BY method`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run methods: %w", err)
	}
	defer rows.Close()

	var methods []string
	for rows.Next() {
		var method string
		if err := rows.Scan(&method); err != nil {
			return nil, fmt.Errorf("failed to scan method: %w", err)
		}
		methods = append(methods, method)
	}
	return methods, rows.Err()
}
