package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository"
)

type timeEntryServiceImpl struct {
	logger   zerolog.Logger
	entries  repository.TimeEntryRepository
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
}

func NewTimeEntryService(
	logger zerolog.Logger,
	entries repository.TimeEntryRepository,
	projects repository.ProjectRepository,
	tasks repository.TaskRepository,
) TimeEntryService {
	return &timeEntryServiceImpl{
		logger:   logger,
		entries:  entries,
		projects: projects,
		tasks:    tasks,
	}
}

func (s *timeEntryServiceImpl) CreateTimeEntry(ctx context.Context, params CreateTimeEntryParams) (*models.TimeEntry, error) {
	if !params.Type.IsValid() {
		s.logger.Error().
			Str("type", string(params.Type)).
			Msg("invalid time entry type")
		return nil, ErrInvalidTimeEntryType
	}

	project, err := getAccessibleProject(ctx, s.logger, s.projects, params.ProjectID, params.UserID)
	if err != nil {
		return nil, err
	}

	if params.TaskID != "" {
		task, err := s.tasks.GetTaskByID(ctx, params.TaskID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTaskNotFound
			}
			s.logger.Error().
				Err(err).
				Str("task_id", params.TaskID).
				Msg("failed to select task by id")
			return nil, err
		}
		if task.ProjectID != project.ID {
			s.logger.Error().
				Str("task_id", task.ID).
				Str("project_id", project.ID).
				Msg("task belongs to another project")
			return nil, ErrTaskNotFound
		}
	}

	last, err := s.entries.GetLastTimeEntry(ctx, project.ID, params.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error().
				Err(err).
				Str("project_id", project.ID).
				Msg("failed to select last time entry")
			return nil, err
		}
	}

	// Every user runs their own timer; the project only tracks
	// whether anyone's is open.
	running := last != nil && last.Type == models.TimeEntryStart
	switch {
	case params.Type == models.TimeEntryStart && running:
		s.logger.Error().
			Str("project_id", project.ID).
			Str("user_id", params.UserID).
			Msg("timer already running")
		return nil, ErrTimerAlreadyRunning
	case params.Type == models.TimeEntryEnd && !running:
		s.logger.Error().
			Str("project_id", project.ID).
			Str("user_id", params.UserID).
			Msg("timer not running")
		return nil, ErrTimerNotRunning
	}

	now := time.Now().UTC()
	entry := &models.TimeEntry{
		UserID:    params.UserID,
		ProjectID: project.ID,
		TaskID:    params.TaskID,
		Type:      params.Type,
		Timestamp: now,
	}

	update := repository.TimerUpdate{UpdatedAt: now}
	if entry.Type == models.TimeEntryEnd {
		if elapsed := now.Sub(last.Timestamp); elapsed > 0 {
			update.Elapsed = elapsed
		}

		today, err := s.entries.ListTimeEntries(ctx, repository.TimeEntryFilter{
			ProjectID: project.ID,
			Since:     StartOfDay(now),
		})
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("project_id", project.ID).
				Msg("failed to select today's time entries")
			return nil, err
		}
		todayTime := TrackedTime(append(today, entry))
		update.TodayTime = &todayTime
	}

	err = s.entries.RecordTimeEntry(ctx, entry, update)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error().
			Err(err).
			Str("project_id", project.ID).
			Msg("failed to record time entry")
		return nil, err
	}

	s.logger.Info().
		Str("entry_id", entry.ID).
		Str("project_id", project.ID).
		Str("type", string(entry.Type)).
		Dur("elapsed", update.Elapsed).
		Msg("created time entry")
	return entry, nil
}

func (s *timeEntryServiceImpl) ListTimeEntries(ctx context.Context, params ListTimeEntriesParams) ([]*models.TimeEntry, error) {
	filter := repository.TimeEntryFilter{
		ProjectID: params.ProjectID,
		TaskID:    params.TaskID,
		UserID:    params.UserID,
		Since:     params.Since,
	}
	if filter.UserID == "" {
		filter.UserID = params.RequesterID
	}

	if params.ProjectID != "" {
		_, err := getAccessibleProject(ctx, s.logger, s.projects, params.ProjectID, params.RequesterID)
		if err != nil {
			return nil, err
		}
	} else if filter.UserID != params.RequesterID {
		s.logger.Error().
			Str("user_id", filter.UserID).
			Str("requester_id", params.RequesterID).
			Msg("foreign time entries requested without a project")
		return nil, ErrForbidden
	}

	entries, err := s.entries.ListTimeEntries(ctx, filter)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select time entries")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(entries)).
		Str("user_id", filter.UserID).
		Msg("selected time entries")
	return entries, nil
}

func (s *timeEntryServiceImpl) UpdateTimeEntry(ctx context.Context, params UpdateTimeEntryParams) (*models.TimeEntry, error) {
	entry, err := s.getOwnEntry(ctx, params.ID, params.UserID)
	if err != nil {
		return nil, err
	}

	if params.Type != nil {
		if !params.Type.IsValid() {
			return nil, ErrInvalidTimeEntryType
		}
		entry.Type = *params.Type
	}
	if params.Timestamp != nil {
		entry.Timestamp = params.Timestamp.UTC()
	}

	err = s.entries.UpdateTimeEntry(ctx, entry)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTimeEntryNotFound
		}
		s.logger.Error().
			Err(err).
			Str("entry_id", entry.ID).
			Msg("failed to update time entry")
		return nil, err
	}

	s.logger.Info().
		Str("entry_id", entry.ID).
		Msg("updated time entry")
	return entry, nil
}

func (s *timeEntryServiceImpl) DeleteTimeEntry(ctx context.Context, entryID, userID string) error {
	entry, err := s.getOwnEntry(ctx, entryID, userID)
	if err != nil {
		return err
	}

	err = s.entries.DeleteTimeEntry(ctx, entry.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTimeEntryNotFound
		}
		s.logger.Error().
			Err(err).
			Str("entry_id", entry.ID).
			Msg("failed to delete time entry")
		return err
	}

	s.logger.Info().
		Str("entry_id", entry.ID).
		Msg("deleted time entry")
	return nil
}

// getOwnEntry hides entries of other users behind ErrTimeEntryNotFound.
func (s *timeEntryServiceImpl) getOwnEntry(ctx context.Context, entryID, userID string) (*models.TimeEntry, error) {
	entry, err := s.entries.GetTimeEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Error().
				Str("entry_id", entryID).
				Msg("time entry not found")
			return nil, ErrTimeEntryNotFound
		}
		s.logger.Error().
			Err(err).
			Str("entry_id", entryID).
			Msg("failed to select time entry by id")
		return nil, err
	}
	if entry.UserID != userID {
		s.logger.Error().
			Str("entry_id", entryID).
			Str("user_id", userID).
			Msg("time entry belongs to another user")
		return nil, ErrTimeEntryNotFound
	}
	return entry, nil
}

// StartOfDay returns midnight UTC of the day t falls on.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TrackedTime sums the closed start/end intervals of every user.
// entries must be ordered by timestamp. An end without a preceding
// start and a start without a following end are ignored.
func TrackedTime(entries []*models.TimeEntry) time.Duration {
	var total time.Duration
	open := make(map[string]time.Time)
	for _, e := range entries {
		switch e.Type {
		case models.TimeEntryStart:
			if _, ok := open[e.UserID]; !ok {
				open[e.UserID] = e.Timestamp
			}
		case models.TimeEntryEnd:
			started, ok := open[e.UserID]
			if !ok {
				continue
			}
			if d := e.Timestamp.Sub(started); d > 0 {
				total += d
			}
			delete(open, e.UserID)
		}
	}
	return total
}
