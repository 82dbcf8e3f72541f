package memory

import (
	"context"
	"sort"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository"
)

func (s *Store) CreateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[task.ProjectID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := s.users[task.AssignedTo]; !ok {
		return repository.ErrInvalidReference
	}

	c := *task
	c.ID = s.nextID()
	s.tasks[c.ID] = &c
	task.ID = c.ID
	return nil
}

func (s *Store) GetTaskByID(_ context.Context, taskID string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (s *Store) ListTasks(_ context.Context, filter repository.TaskFilter) ([]*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*models.Task
	for _, t := range s.tasks {
		if filter.ProjectID != "" && t.ProjectID != filter.ProjectID {
			continue
		}
		if filter.AssignedTo != "" && t.AssignedTo != filter.AssignedTo {
			continue
		}
		c := *t
		matched = append(matched, &c)
	}
	// Newest first, like the postgres implementation.
	sort.Slice(matched, func(i, j int) bool {
		return numericLess(matched[j].ID, matched[i].ID)
	})

	offset := int(filter.Offset)
	if offset >= len(matched) {
		return []*models.Task{}, nil
	}
	matched = matched[offset:]
	if filter.Limit > 0 && int(filter.Limit) < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (s *Store) UpdateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[task.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Text = task.Text
	existing.Status = task.Status
	existing.UpdatedAt = task.UpdatedAt
	return nil
}

func (s *Store) DeleteTask(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[taskID]; !ok {
		return repository.ErrNotFound
	}
	delete(s.tasks, taskID)
	return nil
}
