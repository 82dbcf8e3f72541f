package memory

import (
	"context"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository"
)

func (s *Store) CreateSession(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[session.UserID]; !ok {
		return repository.ErrInvalidReference
	}
	c := *session
	s.sessions[c.ID] = &c
	return nil
}

func (s *Store) ReplaceUserSessions(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[session.UserID]; !ok {
		return repository.ErrInvalidReference
	}
	for id, existing := range s.sessions {
		if existing.UserID == session.UserID {
			delete(s.sessions, id)
		}
	}
	c := *session
	s.sessions[c.ID] = &c
	return nil
}

func (s *Store) GetSessionByID(_ context.Context, sessionID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *session
	return &c, nil
}

func (s *Store) GetSessionByRefreshToken(_ context.Context, refreshToken, fingerprint string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, session := range s.sessions {
		if session.RefreshToken == refreshToken && session.Fingerprint == fingerprint {
			c := *session
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) UpdateSession(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sessions[session.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.RefreshToken = session.RefreshToken
	existing.ExpiresAt = session.ExpiresAt
	existing.UpdatedAt = session.UpdatedAt
	return nil
}

func (s *Store) DeleteSessionsByUserID(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	for id, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, id)
			affected++
		}
	}
	return affected, nil
}
