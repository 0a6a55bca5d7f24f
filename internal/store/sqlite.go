package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"letraz-autoapply/pkg/models"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS applications (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id       TEXT NOT NULL,
	link         TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	company      TEXT NOT NULL DEFAULT '',
	outcome      TEXT NOT NULL,
	error        TEXT NOT NULL DEFAULT '',
	run_id       TEXT NOT NULL DEFAULT '',
	attempted_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_applications_job_outcome ON applications (job_id, outcome);`

// SQLiteStore keeps the ledger in a local SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One writer at a time; the run is sequential anyway
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating applications table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) HasApplied(ctx context.Context, jobKey string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM applications WHERE job_id = ? AND outcome = ? LIMIT 1",
		jobKey, models.OutcomeSubmitted.String(),
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking applied status for %s: %w", jobKey, err)
	}
	return true, nil
}

func (s *SQLiteStore) Record(ctx context.Context, rec models.ApplicationRecord) error {
	if rec.AttemptedAt.IsZero() {
		rec.AttemptedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO applications (job_id, link, title, company, outcome, error, run_id, attempted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.JobID, rec.Link, rec.Title, rec.Company, rec.Outcome.String(), rec.Error, rec.RunID,
		rec.AttemptedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("recording attempt for %s: %w", rec.JobID, err)
	}
	return nil
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]models.ApplicationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT job_id, link, title, company, outcome, error, run_id, attempted_at
		 FROM applications ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent attempts: %w", err)
	}
	defer rows.Close()

	var out []models.ApplicationRecord
	for rows.Next() {
		var (
			rec     models.ApplicationRecord
			outcome string
			millis  int64
		)
		if err := rows.Scan(&rec.JobID, &rec.Link, &rec.Title, &rec.Company, &outcome, &rec.Error, &rec.RunID, &millis); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}
		rec.Outcome = models.ParseApplyOutcome(outcome)
		rec.AttemptedAt = time.UnixMilli(millis).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
