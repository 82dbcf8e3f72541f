package memory

import (
	"context"
	"strings"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository"
)

func (s *Store) CreateUser(_ context.Context, user *models.User, info *models.UserInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return repository.ErrDuplicateUsername
		}
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	u := *user
	s.users[u.ID] = &u
	if info != nil {
		i := *info
		i.UserID = u.ID
		s.infos[u.ID] = &i
	}
	return nil
}

func (s *Store) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s *Store) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == login {
			c := *u
			return &c, nil
		}
	}
	for _, u := range s.users {
		if u.Username == login {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) SearchUsers(_ context.Context, query, userID string) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query = strings.ToLower(query)
	var result []*models.User
	for _, u := range s.users {
		matchesQuery := query != "" &&
			(strings.Contains(strings.ToLower(u.Username), query) ||
				strings.Contains(strings.ToLower(u.Email), query))
		matchesID := userID != "" && u.ID == userID
		if matchesQuery || matchesID {
			c := *u
			result = append(result, &c)
		}
	}
	sortUsers(result)
	return result, nil
}

func (s *Store) ListUsersExcept(_ context.Context, userID string) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		if u.ID == userID {
			continue
		}
		c := *u
		result = append(result, &c)
	}
	sortUsers(result)
	return result, nil
}

func (s *Store) GetUserInfo(_ context.Context, userID string) (*models.UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.infos[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *info
	return &c, nil
}

func (s *Store) UpdateUserInfo(_ context.Context, info *models.UserInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.infos[info.UserID]; !ok {
		return repository.ErrNotFound
	}
	c := *info
	s.infos[info.UserID] = &c
	return nil
}
