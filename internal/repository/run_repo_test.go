package repository

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-bench/internal/bench"
	"github.com/garyjia/invoice-bench/internal/evaluate"
	"github.com/garyjia/invoice-bench/pkg/database"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "bench.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func testRun(id string, startedAt time.Time) *bench.Run {
	rate := 0.75
	return &bench.Run{
		ID:          id,
		Dataset:     "testdata",
		Source:      "pdf",
		Methods:     []string{"kv", "regex"},
		SampleCount: 4,
		StartedAt:   startedAt,
		FinishedAt:  startedAt.Add(time.Minute),
		Reports: map[string]*evaluate.Report{
			"regex": {
				Overall: evaluate.OverallMetrics{SampleCount: 4, ExactMacro: &rate},
				Fields: map[string]evaluate.FieldReport{
					"invoice.number": {Label: "Invoice number", Type: "id", Count: 4, ExactRate: &rate},
				},
				Errors: map[string][]evaluate.ErrorExample{},
			},
			"kv": {
				Overall: evaluate.OverallMetrics{SampleCount: 4},
				Fields:  map[string]evaluate.FieldReport{},
				Errors:  map[string][]evaluate.ErrorExample{},
			},
		},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	db := testDB(t)
	repo := NewRunRepository(db, zap.NewNop())

	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveRun(testRun("run-1", started)))

	runs, err := repo.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, "testdata", runs[0].Dataset)
	assert.Equal(t, 4, runs[0].SampleCount)
	assert.Equal(t, []string{"kv", "regex"}, runs[0].Methods)

	reports, err := repo.GetReports("run-1")
	require.NoError(t, err)
	require.Contains(t, reports, "regex")
	field := reports["regex"].Fields["invoice.number"]
	require.NotNil(t, field.ExactRate)
	assert.InDelta(t, 0.75, *field.ExactRate, 1e-9)
}

func TestListRunsOrdersByRecency(t *testing.T) {
	db := testDB(t)
	repo := NewRunRepository(db, zap.NewNop())

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveRun(testRun("older", base)))
	require.NoError(t, repo.SaveRun(testRun("newer", base.Add(time.Hour))))

	runs, err := repo.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "newer", runs[0].ID)
	assert.Equal(t, "older", runs[1].ID)
}

func TestGetReportsMissingRun(t *testing.T) {
	db := testDB(t)
	repo := NewRunRepository(db, zap.NewNop())

	_, err := repo.GetReports("nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDuplicateRunIDRejected(t *testing.T) {
	db := testDB(t)
	repo := NewRunRepository(db, zap.NewNop())

	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveRun(testRun("run-1", started)))
	assert.Error(t, repo.SaveRun(testRun("run-1", started)))
}
