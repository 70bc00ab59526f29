package library

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ExportRun is one export attempt, terminal state included.
type ExportRun struct {
	ID           int64
	ProjectID    string
	Destination  string
	State        string
	Codec        string
	SegmentCount int
	PlanDuration float64
	Elapsed      time.Duration
	ErrorText    string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// RecordExport appends one run to the export history.
func (s *Store) RecordExport(ctx context.Context, run ExportRun) (int64, error) {
	res, err := s.execWithRetry(ctx, `
        INSERT INTO export_runs (
            project_id, destination, state, codec, segment_count,
            plan_duration, elapsed_ms, error, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ProjectID,
		run.Destination,
		run.State,
		run.Codec,
		run.SegmentCount,
		run.PlanDuration,
		run.Elapsed.Milliseconds(),
		nullableString(run.ErrorText),
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("record export: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record export: %w", err)
	}
	return id, nil
}

// ListExports returns export history for one project, newest first. A
// non-positive limit returns everything.
func (s *Store) ListExports(ctx context.Context, projectID string, limit int) ([]ExportRun, error) {
	ctx = ensureContext(ctx)
	query := `
        SELECT id, project_id, destination, state, codec, segment_count,
               plan_duration, elapsed_ms, error, started_at, finished_at
        FROM export_runs
        WHERE project_id = ?
        ORDER BY started_at DESC, id DESC`
	args := []any{projectID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var runs []ExportRun
	for rows.Next() {
		var (
			run                   ExportRun
			elapsedMS             int64
			errorText             sql.NullString
			startedAt, finishedAt string
		)
		if err := rows.Scan(&run.ID, &run.ProjectID, &run.Destination, &run.State, &run.Codec,
			&run.SegmentCount, &run.PlanDuration, &elapsedMS, &errorText, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		run.ErrorText = errorText.String
		run.StartedAt = parseTimestamp(startedAt)
		run.FinishedAt = parseTimestamp(finishedAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	return runs, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
