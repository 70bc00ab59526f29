package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cutroom/internal/services"
	"cutroom/internal/timeline"
)

// ProjectRecord is one listing row. The full document is fetched
// separately by GetProject.
type ProjectRecord struct {
	ID         string
	Name       string
	Duration   float64
	TrackCount int
	ClipCount  int
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// SaveProject upserts the project document keyed by its identifier. The
// document must validate before it is written.
func (s *Store) SaveProject(ctx context.Context, project *timeline.Project) error {
	if project == nil {
		return services.Wrap(services.ErrValidation, "library", "save project", "no project given", nil)
	}
	if err := project.Validate(); err != nil {
		return err
	}
	document, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	clipCount := 0
	for _, track := range project.Tracks {
		clipCount += len(track.Clips)
	}

	_, err = s.execWithRetry(ctx, `
        INSERT INTO projects (
            id, name, document, duration_seconds, track_count, clip_count, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            document = excluded.document,
            duration_seconds = excluded.duration_seconds,
            track_count = excluded.track_count,
            clip_count = excluded.clip_count,
            updated_at = excluded.updated_at`,
		project.ID,
		project.Name,
		string(document),
		project.TotalDuration(),
		len(project.Tracks),
		clipCount,
		project.CreatedAt.UTC().Format(time.RFC3339Nano),
		project.ModifiedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

// GetProject loads one project document by identifier.
func (s *Store) GetProject(ctx context.Context, id string) (*timeline.Project, error) {
	ctx = ensureContext(ctx)
	var document string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM projects WHERE id = ?`, id).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "library", "get project", fmt.Sprintf("project %s", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	var project timeline.Project
	if err := json.Unmarshal([]byte(document), &project); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", id, err)
	}
	return &project, nil
}

// FindProject resolves an exact identifier first, then an exact name.
// Name lookups require the name to be unique in the library.
func (s *Store) FindProject(ctx context.Context, ref string) (*timeline.Project, error) {
	project, err := s.GetProject(ctx, ref)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, services.ErrNotFound) {
		return nil, err
	}

	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM projects WHERE name = ? ORDER BY updated_at DESC`, ref)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	switch len(ids) {
	case 0:
		return nil, services.Wrap(services.ErrNotFound, "library", "find project", fmt.Sprintf("no project matches %q", ref), nil)
	case 1:
		return s.GetProject(ctx, ids[0])
	default:
		return nil, services.Wrap(services.ErrValidation, "library", "find project",
			fmt.Sprintf("%d projects share the name %q, use an id", len(ids), ref), nil)
	}
}

// ListProjects returns listing rows, most recently modified first.
func (s *Store) ListProjects(ctx context.Context) ([]ProjectRecord, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, name, duration_seconds, track_count, clip_count, created_at, updated_at
        FROM projects
        ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var records []ProjectRecord
	for rows.Next() {
		var (
			record               ProjectRecord
			createdAt, updatedAt string
		)
		if err := rows.Scan(&record.ID, &record.Name, &record.Duration, &record.TrackCount, &record.ClipCount, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		record.CreatedAt = parseTimestamp(createdAt)
		record.ModifiedAt = parseTimestamp(updatedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return records, nil
}

// DeleteProject removes a project and its export history.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.execWithRetry(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "library", "delete project", fmt.Sprintf("project %s", id), nil)
	}
	if _, err := s.execWithRetry(ctx, `DELETE FROM export_runs WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("delete export history: %w", err)
	}
	return nil
}

func parseTimestamp(value string) time.Time {
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	return time.Time{}
}
