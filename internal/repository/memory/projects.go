package memory

import (
	"context"
	"sort"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository"
)

// copyProject must be called with mu held.
func (s *Store) copyProject(p *models.Project) *models.Project {
	c := *p
	c.Deadline = copyTime(p.Deadline)
	c.InvitedUserIDs = append([]string{}, s.members[p.ID]...)
	return &c
}

func (s *Store) CreateProject(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[project.UserID]; !ok {
		return repository.ErrInvalidReference
	}

	c := *project
	c.ID = s.nextID()
	c.Deadline = copyTime(project.Deadline)
	c.InvitedUserIDs = nil
	s.projects[c.ID] = &c

	project.ID = c.ID
	project.InvitedUserIDs = []string{}
	return nil
}

func (s *Store) GetProjectByID(_ context.Context, projectID string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[projectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.copyProject(p), nil
}

func (s *Store) GetProjectByName(_ context.Context, name string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *models.Project
	for _, p := range s.projects {
		if p.Name != name {
			continue
		}
		if found == nil || numericLess(p.ID, found.ID) {
			found = p
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return s.copyProject(found), nil
}

func (s *Store) ListProjectsForUser(_ context.Context, userID string) ([]*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Project
	for _, p := range s.projects {
		if p.UserID == userID || s.isMember(p.ID, userID) {
			result = append(result, s.copyProject(p))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return numericLess(result[i].ID, result[j].ID)
	})
	return result, nil
}

func (s *Store) UpdateProject(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.projects[project.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Name = project.Name
	existing.Description = project.Description
	existing.Status = project.Status
	existing.Progress = project.Progress
	existing.Deadline = copyTime(project.Deadline)
	existing.Color = project.Color
	existing.UpdatedAt = project.UpdatedAt
	return nil
}

func (s *Store) DeleteProject(_ context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[projectID]; !ok {
		return repository.ErrNotFound
	}
	delete(s.projects, projectID)
	delete(s.members, projectID)
	for id, t := range s.tasks {
		if t.ProjectID == projectID {
			delete(s.tasks, id)
		}
	}
	for id, inv := range s.invitations {
		if inv.ProjectID == projectID {
			delete(s.tokens, inv.Token)
			delete(s.invitations, id)
		}
	}
	for id, e := range s.entries {
		if e.ProjectID == projectID {
			delete(s.entries, id)
		}
	}
	return nil
}

// AddProjectMember adds a member without an invitation. Production code
// only gains members through AcceptPendingInvitation; tests use this to
// seed ledger drift.
func (s *Store) AddProjectMember(_ context.Context, projectID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addMember(projectID, userID)
}

// addMember must be called with mu held.
func (s *Store) addMember(projectID, userID string) error {
	if _, ok := s.projects[projectID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := s.users[userID]; !ok {
		return repository.ErrInvalidReference
	}
	if s.isMember(projectID, userID) {
		return nil
	}
	s.members[projectID] = append(s.members[projectID], userID)
	return nil
}

// isMember must be called with mu held.
func (s *Store) isMember(projectID, userID string) bool {
	for _, id := range s.members[projectID] {
		if id == userID {
			return true
		}
	}
	return false
}

func (s *Store) ListProjectMembers(_ context.Context, projectID string) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[projectID]; !ok {
		return nil, repository.ErrNotFound
	}
	result := make([]*models.User, 0, len(s.members[projectID]))
	for _, id := range s.members[projectID] {
		if u, ok := s.users[id]; ok {
			c := *u
			result = append(result, &c)
		}
	}
	return result, nil
}
