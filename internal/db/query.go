// Package db persists run summaries and payloads to sqlite so past runs can
// be listed and re-read without their export files.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"triage/internal/report"
)

type Queries struct {
	db *sql.DB
}

func New(conn *sql.DB) *Queries {
	return &Queries{db: conn}
}

// Open connects to the sqlite file and ensures the schema exists.
func Open(ctx context.Context, path string) (*Queries, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database file, %s: %w", "file://"+path, err)
	}
	_, err = conn.ExecContext(ctx, Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return New(conn), nil
}

func (q *Queries) Close() error {
	return q.db.Close()
}

// RunRow is the stored header of one run; the full payload lives in the
// payload column as JSON.
type RunRow struct {
	ID        int64
	RunID     string
	Version   string
	Dataset   string
	Mode      string
	Passed    int64
	Failed    int64
	Total     int64
	CreatedAt int64
}

func (q *Queries) SaveRun(ctx context.Context, run report.Run) (RunRow, error) {

	payload, err := json.Marshal(run)
	if err != nil {
		return RunRow{}, fmt.Errorf("failed to marshal run payload: %w", err)
	}

	const saveRun = `
INSERT INTO runs (run_id, version, dataset, mode, passed, failed, total, payload)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (run_id) DO
	UPDATE
	SET version = excluded.version,
		dataset = excluded.dataset,
		mode    = excluded.mode,
		passed  = excluded.passed,
		failed  = excluded.failed,
		total   = excluded.total,
		payload = excluded.payload
RETURNING id, run_id, version, dataset, mode, passed, failed, total, created_at
`

	row := q.db.QueryRowContext(ctx, saveRun,
		run.RunID,
		run.Version,
		run.Dataset,
		run.Mode,
		run.Summary.Passed,
		run.Summary.Failed,
		run.Summary.Total,
		string(payload),
	)

	var i RunRow
	err = row.Scan(
		&i.ID,
		&i.RunID,
		&i.Version,
		&i.Dataset,
		&i.Mode,
		&i.Passed,
		&i.Failed,
		&i.Total,
		&i.CreatedAt,
	)
	if err != nil {
		return RunRow{}, fmt.Errorf("insert run: %w", err)
	}
	return i, nil
}

func (q *Queries) ListRuns(ctx context.Context, limit int64) ([]RunRow, error) {

	const listRuns = `
SELECT id, run_id, version, dataset, mode, passed, failed, total, created_at
FROM runs
ORDER BY created_at DESC, id DESC
LIMIT ?
`

	rows, err := q.db.QueryContext(ctx, listRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RunRow
	for rows.Next() {
		var i RunRow
		if err := rows.Scan(
			&i.ID,
			&i.RunID,
			&i.Version,
			&i.Dataset,
			&i.Mode,
			&i.Passed,
			&i.Failed,
			&i.Total,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) GetRun(ctx context.Context, runID string) (report.Run, error) {

	const getRun = `
SELECT payload
FROM runs
WHERE run_id = ?
`

	var payload string
	err := q.db.QueryRowContext(ctx, getRun, runID).Scan(&payload)
	if err != nil {
		return report.Run{}, fmt.Errorf("select run %s: %w", runID, err)
	}

	var run report.Run
	err = json.Unmarshal([]byte(payload), &run)
	if err != nil {
		return report.Run{}, fmt.Errorf("failed to unmarshal run payload: %w", err)
	}
	return run, nil
}
