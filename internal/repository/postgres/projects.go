package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository"
)

// projectSelect joins the membership relation so every read carries
// the invited user ids.
const projectSelect = `
SELECT p.id,
       p.user_id,
       p.name,
       p.description,
       p.status,
       p.progress,
       p.total_time_ms,
       p.today_time_ms,
       p.deadline,
       p.color,
       p.is_timer_running,
       p.created_at,
       p.updated_at,
       COALESCE(array_agg(m.user_id ORDER BY m.created_at) FILTER (WHERE m.user_id IS NOT NULL), '{}')
FROM projects p
         LEFT JOIN project_members m ON m.project_id = p.id
`

func scanProject(row pgx.Row) (*models.Project, error) {
	var (
		project      models.Project
		id           int64
		totalMillis  int64
		todayMillis  int64
	)
	err := row.Scan(
		&id,
		&project.UserID,
		&project.Name,
		&project.Description,
		&project.Status,
		&project.Progress,
		&totalMillis,
		&todayMillis,
		&project.Deadline,
		&project.Color,
		&project.IsTimerRunning,
		&project.CreatedAt,
		&project.UpdatedAt,
		&project.InvitedUserIDs,
	)
	if err != nil {
		return nil, err
	}
	project.ID = formatID(id)
	project.TotalTime = time.Duration(totalMillis) * time.Millisecond
	project.TodayTime = time.Duration(todayMillis) * time.Millisecond
	return &project, nil
}

func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	const insertProjectQuery = `
INSERT INTO projects (user_id,
                      name,
                      description,
                      status,
                      progress,
                      total_time_ms,
                      today_time_ms,
                      deadline,
                      color,
                      is_timer_running,
                      created_at,
                      updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id
`
	var id int64
	err := s.pool.QueryRow(
		ctx,
		insertProjectQuery,
		project.UserID,
		project.Name,
		project.Description,
		project.Status,
		project.Progress,
		project.TotalTime.Milliseconds(),
		project.TodayTime.Milliseconds(),
		project.Deadline,
		project.Color,
		project.IsTimerRunning,
		project.CreatedAt,
		project.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", translateError(err))
	}
	project.ID = formatID(id)
	project.InvitedUserIDs = []string{}
	return nil
}

func (s *Store) GetProjectByID(ctx context.Context, projectID string) (*models.Project, error) {
	id, ok := parseID(projectID)
	if !ok {
		return nil, repository.ErrNotFound
	}

	const selectProjectByIDQuery = projectSelect + `
WHERE p.id = $1
GROUP BY p.id
`
	project, err := scanProject(s.pool.QueryRow(ctx, selectProjectByIDQuery, id))
	if err != nil {
		return nil, translateError(err)
	}
	return project, nil
}

func (s *Store) GetProjectByName(ctx context.Context, name string) (*models.Project, error) {
	const selectProjectByNameQuery = projectSelect + `
WHERE p.name = $1
GROUP BY p.id
ORDER BY p.id
LIMIT 1
`
	project, err := scanProject(s.pool.QueryRow(ctx, selectProjectByNameQuery, name))
	if err != nil {
		return nil, translateError(err)
	}
	return project, nil
}

func (s *Store) ListProjectsForUser(ctx context.Context, userID string) ([]*models.Project, error) {
	const selectProjectsForUserQuery = projectSelect + `
WHERE p.user_id = $1
   OR EXISTS (SELECT 1
              FROM project_members pm
              WHERE pm.project_id = p.id
                AND pm.user_id = $1)
GROUP BY p.id
ORDER BY p.id
`
	rows, err := s.pool.Query(ctx, selectProjectsForUserQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return projects, nil
}

func (s *Store) UpdateProject(ctx context.Context, project *models.Project) error {
	id, ok := parseID(project.ID)
	if !ok {
		return repository.ErrNotFound
	}

	const updateProjectQuery = `
UPDATE projects
SET name = $1,
    description = $2,
    status = $3,
    progress = $4,
    deadline = $5,
    color = $6,
    updated_at = $7
WHERE id = $8
`
	tag, err := s.pool.Exec(
		ctx,
		updateProjectQuery,
		project.Name,
		project.Description,
		project.Status,
		project.Progress,
		project.Deadline,
		project.Color,
		project.UpdatedAt,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, projectID string) error {
	id, ok := parseID(projectID)
	if !ok {
		return repository.ErrNotFound
	}

	const deleteProjectQuery = `
DELETE FROM projects
WHERE id = $1
`
	tag, err := s.pool.Exec(ctx, deleteProjectQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

const insertProjectMemberQuery = `
INSERT INTO project_members (project_id,
                             user_id,
                             created_at)
VALUES ($1, $2, $3)
ON CONFLICT (project_id, user_id) DO NOTHING
`

func (s *Store) ListProjectMembers(ctx context.Context, projectID string) ([]*models.User, error) {
	id, ok := parseID(projectID)
	if !ok {
		return nil, repository.ErrNotFound
	}

	const selectProjectMembersQuery = `
SELECT u.id,
       u.username,
       u.email,
       u.password,
       u.created_at,
       u.updated_at
FROM project_members m
         JOIN users u ON u.id = m.user_id
WHERE m.project_id = $1
ORDER BY m.created_at, u.id
`
	rows, err := s.pool.Query(ctx, selectProjectMembersQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select project members: %w", err)
	}
	users, err := collectUsers(rows)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}
