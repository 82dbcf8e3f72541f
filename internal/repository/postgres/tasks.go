package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository"
)

func scanTask(row pgx.Row) (*models.Task, error) {
	var (
		task      models.Task
		id        int64
		projectID int64
	)
	err := row.Scan(
		&id,
		&projectID,
		&task.AssignedTo,
		&task.Text,
		&task.Status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.ID = formatID(id)
	task.ProjectID = formatID(projectID)
	return &task, nil
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	projectID, ok := parseID(task.ProjectID)
	if !ok {
		return repository.ErrInvalidReference
	}

	const insertTaskQuery = `
INSERT INTO tasks (project_id,
                   assigned_to,
                   text,
                   status,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`
	var taskID int64
	err := s.pool.QueryRow(
		ctx,
		insertTaskQuery,
		projectID,
		task.AssignedTo,
		task.Text,
		task.Status,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&taskID)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", translateError(err))
	}
	task.ID = formatID(taskID)
	return nil
}

func (s *Store) GetTaskByID(ctx context.Context, taskID string) (*models.Task, error) {
	id, ok := parseID(taskID)
	if !ok {
		return nil, repository.ErrNotFound
	}

	const selectTaskByIDQuery = `
SELECT id,
       project_id,
       assigned_to,
       text,
       status,
       created_at,
       updated_at
FROM tasks
WHERE id = $1
`
	task, err := scanTask(s.pool.QueryRow(ctx, selectTaskByIDQuery, id))
	if err != nil {
		return nil, translateError(err)
	}
	return task, nil
}

func (s *Store) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]*models.Task, error) {
	var projectID *int64
	if filter.ProjectID != "" {
		id, ok := parseID(filter.ProjectID)
		if !ok {
			return []*models.Task{}, nil
		}
		projectID = &id
	}

	var limit *int64
	if filter.Limit > 0 {
		l := int64(filter.Limit)
		limit = &l
	}

	const selectTasksQuery = `
SELECT id,
       project_id,
       assigned_to,
       text,
       status,
       created_at,
       updated_at
FROM tasks
WHERE ($1::BIGINT IS NULL OR project_id = $1)
  AND ($2 = '' OR assigned_to = $2)
ORDER BY id DESC
LIMIT $3 OFFSET $4
`
	rows, err := s.pool.Query(
		ctx,
		selectTasksQuery,
		projectID,
		filter.AssignedTo,
		limit,
		int64(filter.Offset),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0, filter.Limit)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return tasks, nil
}

func (s *Store) UpdateTask(ctx context.Context, task *models.Task) error {
	id, ok := parseID(task.ID)
	if !ok {
		return repository.ErrNotFound
	}

	const updateTaskQuery = `
UPDATE tasks
SET text = $1,
    status = $2,
    updated_at = $3
WHERE id = $4
`
	tag, err := s.pool.Exec(
		ctx,
		updateTaskQuery,
		task.Text,
		task.Status,
		task.UpdatedAt,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	id, ok := parseID(taskID)
	if !ok {
		return repository.ErrNotFound
	}

	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	tag, err := s.pool.Exec(ctx, deleteTaskQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
