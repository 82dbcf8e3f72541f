package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository"
)

const timeEntryColumns = `id,
       user_id,
       project_id,
       task_id,
       type,
       timestamp`

func scanTimeEntry(row pgx.Row) (*models.TimeEntry, error) {
	var (
		entry     models.TimeEntry
		id        int64
		projectID int64
		taskID    *int64
	)
	err := row.Scan(
		&id,
		&entry.UserID,
		&projectID,
		&taskID,
		&entry.Type,
		&entry.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	entry.ID = formatID(id)
	entry.ProjectID = formatID(projectID)
	entry.TaskID = formatNullableID(taskID)
	return &entry, nil
}

func (s *Store) CreateTimeEntry(ctx context.Context, entry *models.TimeEntry) error {
	return insertTimeEntry(ctx, s.pool, entry)
}

func (s *Store) RecordTimeEntry(ctx context.Context, entry *models.TimeEntry, update repository.TimerUpdate) error {
	projectID, ok := parseID(entry.ProjectID)
	if !ok {
		return repository.ErrInvalidReference
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		// Timer writes on one project queue up behind this lock, so the
		// open start check below sees every committed entry.
		const lockProjectQuery = `
SELECT id
FROM projects
WHERE id = $1
FOR UPDATE
`
		var locked int64
		err := tx.QueryRow(ctx, lockProjectQuery, projectID).Scan(&locked)
		if err != nil {
			err = translateError(err)
			if errors.Is(err, repository.ErrNotFound) {
				return repository.ErrInvalidReference
			}
			return fmt.Errorf("failed to lock project: %w", err)
		}

		err = insertTimeEntry(ctx, tx, entry)
		if err != nil {
			return err
		}

		var todayMillis *int64
		if update.TodayTime != nil {
			ms := update.TodayTime.Milliseconds()
			todayMillis = &ms
		}

		const applyTimerQuery = `
UPDATE projects
SET total_time_ms = total_time_ms + $2,
    today_time_ms = COALESCE($3, today_time_ms),
    is_timer_running = EXISTS (SELECT 1
                               FROM (SELECT DISTINCT ON (user_id) type
                                     FROM time_entries
                                     WHERE project_id = $1
                                     ORDER BY user_id, timestamp DESC, id DESC) latest
                               WHERE latest.type = 'start'),
    updated_at = $4
WHERE id = $1
`
		_, err = tx.Exec(
			ctx,
			applyTimerQuery,
			projectID,
			update.Elapsed.Milliseconds(),
			todayMillis,
			update.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update project timer: %w", err)
		}
		return nil
	})
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertTimeEntry(ctx context.Context, q queryRower, entry *models.TimeEntry) error {
	projectID, ok := parseID(entry.ProjectID)
	if !ok {
		return repository.ErrInvalidReference
	}
	var taskID *int64
	if entry.TaskID != "" {
		id, ok := parseID(entry.TaskID)
		if !ok {
			return repository.ErrInvalidReference
		}
		taskID = &id
	}

	const insertTimeEntryQuery = `
INSERT INTO time_entries (user_id,
                          project_id,
                          task_id,
                          type,
                          timestamp)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`
	var id int64
	err := q.QueryRow(
		ctx,
		insertTimeEntryQuery,
		entry.UserID,
		projectID,
		taskID,
		entry.Type,
		entry.Timestamp,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to insert time entry: %w", translateError(err))
	}
	entry.ID = formatID(id)
	return nil
}

func (s *Store) GetTimeEntryByID(ctx context.Context, entryID string) (*models.TimeEntry, error) {
	id, ok := parseID(entryID)
	if !ok {
		return nil, repository.ErrNotFound
	}

	const selectTimeEntryByIDQuery = `
SELECT ` + timeEntryColumns + `
FROM time_entries
WHERE id = $1
`
	entry, err := scanTimeEntry(s.pool.QueryRow(ctx, selectTimeEntryByIDQuery, id))
	if err != nil {
		return nil, translateError(err)
	}
	return entry, nil
}

func (s *Store) ListTimeEntries(ctx context.Context, filter repository.TimeEntryFilter) ([]*models.TimeEntry, error) {
	var projectID, taskID *int64
	if filter.ProjectID != "" {
		id, ok := parseID(filter.ProjectID)
		if !ok {
			return []*models.TimeEntry{}, nil
		}
		projectID = &id
	}
	if filter.TaskID != "" {
		id, ok := parseID(filter.TaskID)
		if !ok {
			return []*models.TimeEntry{}, nil
		}
		taskID = &id
	}

	const selectTimeEntriesQuery = `
SELECT ` + timeEntryColumns + `
FROM time_entries
WHERE timestamp >= $1
  AND ($2::BIGINT IS NULL OR project_id = $2)
  AND ($3::BIGINT IS NULL OR task_id = $3)
  AND ($4 = '' OR user_id = $4)
ORDER BY timestamp, id
`
	rows, err := s.pool.Query(
		ctx,
		selectTimeEntriesQuery,
		filter.Since,
		projectID,
		taskID,
		filter.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to select time entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.TimeEntry
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, entry)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return entries, nil
}

func (s *Store) GetLastTimeEntry(ctx context.Context, projectID, userID string) (*models.TimeEntry, error) {
	id, ok := parseID(projectID)
	if !ok {
		return nil, repository.ErrNotFound
	}

	const selectLastTimeEntryQuery = `
SELECT ` + timeEntryColumns + `
FROM time_entries
WHERE project_id = $1
  AND user_id = $2
ORDER BY timestamp DESC, id DESC
LIMIT 1
`
	entry, err := scanTimeEntry(s.pool.QueryRow(ctx, selectLastTimeEntryQuery, id, userID))
	if err != nil {
		return nil, translateError(err)
	}
	return entry, nil
}

func (s *Store) UpdateTimeEntry(ctx context.Context, entry *models.TimeEntry) error {
	id, ok := parseID(entry.ID)
	if !ok {
		return repository.ErrNotFound
	}

	const updateTimeEntryQuery = `
UPDATE time_entries
SET type = $1,
    timestamp = $2
WHERE id = $3
`
	tag, err := s.pool.Exec(ctx, updateTimeEntryQuery, entry.Type, entry.Timestamp, id)
	if err != nil {
		return fmt.Errorf("failed to update time entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTimeEntry(ctx context.Context, entryID string) error {
	id, ok := parseID(entryID)
	if !ok {
		return repository.ErrNotFound
	}

	const deleteTimeEntryQuery = `
DELETE FROM time_entries
WHERE id = $1
`
	tag, err := s.pool.Exec(ctx, deleteTimeEntryQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
