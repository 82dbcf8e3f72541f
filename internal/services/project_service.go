package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository"
)

const (
	maxProjectNameLength = 100
	// maxProjectColorLength matches the color column.
	maxProjectColorLength = 7
)

type projectServiceImpl struct {
	logger   zerolog.Logger
	projects repository.ProjectRepository
}

func NewProjectService(
	logger zerolog.Logger,
	projects repository.ProjectRepository,
) ProjectService {
	return &projectServiceImpl{
		logger:   logger,
		projects: projects,
	}
}

func (s *projectServiceImpl) CreateProject(ctx context.Context, params CreateProjectParams) (*models.Project, error) {
	now := time.Now()
	project := &models.Project{
		UserID:      params.UserID,
		Name:        strings.TrimSpace(params.Name),
		Description: params.Description,
		Status:      params.Status,
		Progress:    params.Progress,
		Deadline:    params.Deadline,
		Color:       params.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if project.Status == "" {
		project.Status = models.ProjectStatusActive
	}
	if project.Color == "" {
		project.Color = models.DefaultProjectColor
	}

	err := validateProject(project)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", params.UserID).
			Msg("invalid project")
		return nil, err
	}

	err = s.projects.CreateProject(ctx, project)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", params.UserID).
			Msg("failed to insert project")
		return nil, err
	}

	s.logger.Info().
		Str("project_id", project.ID).
		Str("user_id", project.UserID).
		Msg("created project")
	return project, nil
}

func (s *projectServiceImpl) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	return getProject(ctx, s.logger, s.projects, projectID)
}

func (s *projectServiceImpl) GetProjectByName(ctx context.Context, name string) (*models.Project, error) {
	project, err := s.projects.GetProjectByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Error().
				Str("name", name).
				Msg("project not found")
			return nil, ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Str("name", name).
			Msg("failed to select project by name")
		return nil, err
	}
	return project, nil
}

func (s *projectServiceImpl) ListProjects(ctx context.Context, userID string) ([]*models.Project, error) {
	projects, err := s.projects.ListProjectsForUser(ctx, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select projects")
		return nil, err
	}
	s.logger.Debug().
		Str("user_id", userID).
		Int("count", len(projects)).
		Msg("selected projects")
	return projects, nil
}

func (s *projectServiceImpl) UpdateProject(ctx context.Context, params UpdateProjectParams) (*models.Project, error) {
	project, err := s.getOwnedProject(ctx, params.ID, params.UserID)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		project.Name = strings.TrimSpace(*params.Name)
	}
	if params.Description != nil {
		project.Description = *params.Description
	}
	if params.Status != nil {
		project.Status = *params.Status
	}
	if params.Progress != nil {
		project.Progress = *params.Progress
	}
	if params.Deadline != nil {
		project.Deadline = params.Deadline
	}
	if params.Color != nil {
		project.Color = *params.Color
	}
	project.UpdatedAt = time.Now()

	err = validateProject(project)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", project.ID).
			Msg("invalid project")
		return nil, err
	}

	err = s.projects.UpdateProject(ctx, project)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Str("project_id", project.ID).
			Msg("failed to update project")
		return nil, err
	}

	s.logger.Info().
		Str("project_id", project.ID).
		Str("user_id", params.UserID).
		Msg("updated project")
	return project, nil
}

func (s *projectServiceImpl) DeleteProject(ctx context.Context, projectID, userID string) error {
	project, err := s.getOwnedProject(ctx, projectID, userID)
	if err != nil {
		return err
	}

	err = s.projects.DeleteProject(ctx, project.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Str("project_id", project.ID).
			Msg("failed to delete project")
		return err
	}

	s.logger.Info().
		Str("project_id", project.ID).
		Str("user_id", userID).
		Msg("deleted project")
	return nil
}

func (s *projectServiceImpl) getOwnedProject(ctx context.Context, projectID, userID string) (*models.Project, error) {
	project, err := getProject(ctx, s.logger, s.projects, projectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		s.logger.Error().
			Str("project_id", projectID).
			Str("user_id", userID).
			Msg("project is not owned by user")
		return nil, ErrProjectNotFound
	}
	return project, nil
}

func validateProject(p *models.Project) error {
	switch {
	case p.Name == "", utf8.RuneCountInString(p.Name) > maxProjectNameLength:
		return ErrInvalidProject
	case !p.Status.IsValid():
		return ErrInvalidProject
	case p.Progress < 0, p.Progress > 100:
		return ErrInvalidProject
	case len(p.Color) > maxProjectColorLength:
		return ErrInvalidProject
	}
	return nil
}

func getProject(
	ctx context.Context,
	logger zerolog.Logger,
	projects repository.ProjectRepository,
	projectID string,
) (*models.Project, error) {
	project, err := projects.GetProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Error().
				Str("project_id", projectID).
				Msg("project not found")
			return nil, ErrProjectNotFound
		}

		logger.Error().
			Err(err).
			Str("project_id", projectID).
			Msg("failed to select project by id")
		return nil, err
	}
	return project, nil
}

// getAccessibleProject loads the project and checks that the user
// owns it or is a member.
func getAccessibleProject(
	ctx context.Context,
	logger zerolog.Logger,
	projects repository.ProjectRepository,
	projectID, userID string,
) (*models.Project, error) {
	project, err := getProject(ctx, logger, projects, projectID)
	if err != nil {
		return nil, err
	}
	if !project.HasAccess(userID) {
		logger.Error().
			Str("project_id", projectID).
			Str("user_id", userID).
			Msg("user has no access to project")
		return nil, ErrForbidden
	}
	return project, nil
}
