package memory

import (
	"context"
	"sort"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository"
)

func (s *Store) CreateTimeEntry(_ context.Context, entry *models.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertEntry(entry)
}

func (s *Store) RecordTimeEntry(_ context.Context, entry *models.TimeEntry, update repository.TimerUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.insertEntry(entry)
	if err != nil {
		return err
	}

	project := s.projects[entry.ProjectID]
	project.TotalTime += update.Elapsed
	if update.TodayTime != nil {
		project.TodayTime = *update.TodayTime
	}
	project.IsTimerRunning = s.hasOpenStart(entry.ProjectID)
	project.UpdatedAt = update.UpdatedAt
	return nil
}

// hasOpenStart reports whether any user's latest entry on the project
// is a start. It must be called with mu held.
func (s *Store) hasOpenStart(projectID string) bool {
	latest := make(map[string]*models.TimeEntry)
	for _, e := range s.entries {
		if e.ProjectID != projectID {
			continue
		}
		last, ok := latest[e.UserID]
		if !ok || entryBefore(last, e) {
			latest[e.UserID] = e
		}
	}
	for _, e := range latest {
		if e.Type == models.TimeEntryStart {
			return true
		}
	}
	return false
}

// insertEntry must be called with mu held.
func (s *Store) insertEntry(entry *models.TimeEntry) error {
	if _, ok := s.projects[entry.ProjectID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := s.users[entry.UserID]; !ok {
		return repository.ErrInvalidReference
	}
	if entry.TaskID != "" {
		if _, ok := s.tasks[entry.TaskID]; !ok {
			return repository.ErrInvalidReference
		}
	}

	c := *entry
	c.ID = s.nextID()
	s.entries[c.ID] = &c
	entry.ID = c.ID
	return nil
}

func (s *Store) GetTimeEntryByID(_ context.Context, entryID string) (*models.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[entryID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *e
	return &c, nil
}

func entryBefore(a, b *models.TimeEntry) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return numericLess(a.ID, b.ID)
}

func sortEntries(entries []*models.TimeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entryBefore(entries[i], entries[j])
	})
}

func (s *Store) ListTimeEntries(_ context.Context, filter repository.TimeEntryFilter) ([]*models.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.TimeEntry
	for _, e := range s.entries {
		if filter.ProjectID != "" && e.ProjectID != filter.ProjectID {
			continue
		}
		if filter.TaskID != "" && e.TaskID != filter.TaskID {
			continue
		}
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		if e.Timestamp.Before(filter.Since) {
			continue
		}
		c := *e
		result = append(result, &c)
	}
	sortEntries(result)
	return result, nil
}

func (s *Store) GetLastTimeEntry(_ context.Context, projectID, userID string) (*models.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var candidates []*models.TimeEntry
	for _, e := range s.entries {
		if e.ProjectID == projectID && e.UserID == userID {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return nil, repository.ErrNotFound
	}
	sortEntries(candidates)
	c := *candidates[len(candidates)-1]
	return &c, nil
}

func (s *Store) UpdateTimeEntry(_ context.Context, entry *models.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.entries[entry.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Type = entry.Type
	existing.Timestamp = entry.Timestamp
	return nil
}

func (s *Store) DeleteTimeEntry(_ context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entryID]; !ok {
		return repository.ErrNotFound
	}
	delete(s.entries, entryID)
	return nil
}
