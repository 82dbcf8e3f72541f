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
	maxTaskTextLength = 255
	defaultTaskLimit  = 32
)

type taskServiceImpl struct {
	logger   zerolog.Logger
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
}

func NewTaskService(
	logger zerolog.Logger,
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
) TaskService {
	return &taskServiceImpl{
		logger:   logger,
		tasks:    tasks,
		projects: projects,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	_, err := getAccessibleProject(ctx, s.logger, s.projects, params.ProjectID, params.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	task := &models.Task{
		ProjectID:  params.ProjectID,
		AssignedTo: params.AssignedTo,
		Text:       strings.TrimSpace(params.Text),
		Status:     params.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if task.AssignedTo == "" {
		task.AssignedTo = params.UserID
	}
	if task.Status == "" {
		task.Status = models.TaskStatusNew
	}
	if !task.Status.IsValid() {
		s.logger.Error().
			Str("status", string(task.Status)).
			Msg("invalid task status")
		return nil, ErrInvalidTaskStatus
	}
	if !validTaskText(task.Text) {
		return nil, ErrInvalidTask
	}

	err = s.tasks.CreateTask(ctx, task)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			s.logger.Error().
				Str("assigned_to", task.AssignedTo).
				Msg("assignee not found")
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("project_id", task.ProjectID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, taskID, userID string) (*models.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	_, err = getAccessibleProject(ctx, s.logger, s.projects, task.ProjectID, userID)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, params ListTasksParams) ([]*models.Task, error) {
	filter := repository.TaskFilter{
		ProjectID: params.ProjectID,
		Offset:    params.Offset,
		Limit:     params.Limit,
	}
	if filter.Limit == 0 {
		filter.Limit = defaultTaskLimit
	}

	if params.ProjectID != "" {
		_, err := getAccessibleProject(ctx, s.logger, s.projects, params.ProjectID, params.UserID)
		if err != nil {
			return nil, err
		}
	} else {
		filter.AssignedTo = params.UserID
	}

	tasks, err := s.tasks.ListTasks(ctx, filter)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", params.ProjectID).
			Str("user_id", params.UserID).
			Msg("failed to select tasks")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Str("project_id", params.ProjectID).
		Str("user_id", params.UserID).
		Msg("selected tasks")
	return tasks, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	if !params.Status.IsValid() {
		s.logger.Error().
			Str("status", string(params.Status)).
			Msg("invalid task status")
		return nil, ErrInvalidTaskStatus
	}

	task, err := s.GetTask(ctx, params.ID, params.UserID)
	if err != nil {
		return nil, err
	}

	task.Status = params.Status
	if params.Text != nil {
		text := strings.TrimSpace(*params.Text)
		if !validTaskText(text) {
			return nil, ErrInvalidTask
		}
		task.Text = text
	}
	task.UpdatedAt = time.Now()

	err = s.tasks.UpdateTask(ctx, task)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", params.UserID).
		Str("status", string(task.Status)).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, taskID, userID string) error {
	task, err := s.GetTask(ctx, taskID, userID)
	if err != nil {
		return err
	}

	err = s.tasks.DeleteTask(ctx, task.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", userID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) getTask(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Error().
				Str("task_id", taskID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task by id")
		return nil, err
	}
	return task, nil
}

func validTaskText(text string) bool {
	return text != "" && utf8.RuneCountInString(text) <= maxTaskTextLength
}
