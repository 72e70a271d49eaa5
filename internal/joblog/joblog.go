package joblog

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gasops/mtr-extract/internal/common"
)

// Status values stored in the jobs table.
const (
	StatusRunning = "RUNNING"
	StatusOK      = "OK"
	StatusFailed  = "FAILED"
)

// Job is one processed document's history row.
type Job struct {
	ID         int64
	HeatNumber string
	Source     string
	Stage      string
	Status     string
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Log records per-document processing history in a local SQLite file so batch
// runs can be audited after the fact.
type Log struct {
	db  *sql.DB
	log *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	heat_number TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	stage TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'RUNNING',
	error TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_heat_number ON jobs(heat_number);
`

// Open creates (or opens) the job log at path and ensures the schema exists.
func Open(path string, logger *slog.Logger) (*Log, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "open job log")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "migrate job log")
	}
	logger.Info("joblog.open", "path", path)
	return &Log{db: db, log: logger}, nil
}

func (l *Log) Close() error {
	return l.db.Close()
}

// Start inserts a RUNNING row and returns its id.
func (l *Log) Start(ctx context.Context, heatNumber, source string) (int64, error) {
	now := time.Now().UTC()
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO jobs (heat_number, source, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		heatNumber, source, StatusRunning, now, now,
	)
	if err != nil {
		return 0, common.WrapError(err, "insert job")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, common.WrapError(err, "job id")
	}
	l.log.Info("joblog.start", "job_id", id, "heat_number", heatNumber, "source", source)
	return id, nil
}

// Finish marks a job terminal with the stage that produced its document.
// errMsg empty means success.
func (l *Log) Finish(ctx context.Context, id int64, stage, errMsg string) error {
	status := StatusOK
	if errMsg != "" {
		status = StatusFailed
	}
	_, err := l.db.ExecContext(ctx,
		`UPDATE jobs SET stage = ?, status = ?, error = ?, updated_at = ? WHERE id = ?`,
		stage, status, errMsg, time.Now().UTC(), id,
	)
	if err != nil {
		return common.WrapError(err, "update job")
	}
	l.log.Info("joblog.finish", "job_id", id, "stage", stage, "status", status)
	return nil
}

// Recent returns the newest n jobs, newest first.
func (l *Log) Recent(ctx context.Context, n int) ([]Job, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, heat_number, source, stage, status, error, created_at, updated_at
		 FROM jobs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, common.WrapError(err, "query jobs")
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.HeatNumber, &j.Source, &j.Stage, &j.Status, &j.Error, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, common.WrapError(err, "scan job")
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
