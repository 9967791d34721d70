package database

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// migration is one versioned schema step. Steps are embedded rather
// than read from disk so the binary carries its own schema.
type migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []migration{
	{
		Version: 1,
		Name:    "initial_schema",
		SQL: `
			CREATE TABLE IF NOT EXISTS runs (
				id TEXT PRIMARY KEY,
				dataset TEXT NOT NULL,
				source TEXT NOT NULL,
				sample_count INTEGER NOT NULL,
				started_at DATETIME NOT NULL,
				finished_at DATETIME NOT NULL
			);

			CREATE TABLE IF NOT EXISTS reports (
				run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
				method TEXT NOT NULL,
				report_json TEXT NOT NULL,
				PRIMARY KEY (run_id, method)
			);

			CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
		`,
	},
}

// Migrate applies all pending schema steps.
func (db *DB) Migrate() error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		db.logger.Info("Applying migration",
			zap.Int("version", m.Version),
			zap.String("name", m.Name))
		err := db.WithTransaction(func(tx *sql.Tx) error {
			if _, err := tx.Exec(m.SQL); err != nil {
				return fmt.Errorf("failed to execute migration SQL: %w", err)
			}
			_, err := tx.Exec(
				"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
				m.Version, m.Name,
			)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.Version, err)
		}
	}
	return nil
}
