package memory

import (
	"context"
	"sort"
	"time"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository"
)

func (s *Store) CreateInvitation(_ context.Context, invitation *models.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[invitation.ProjectID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := s.users[invitation.FromUserID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := s.users[invitation.ToUserID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := s.tokens[invitation.Token]; ok {
		return repository.ErrDuplicateToken
	}

	c := *invitation
	c.ID = s.nextID()
	s.invitations[c.ID] = &c
	s.tokens[c.Token] = c.ID
	invitation.ID = c.ID
	return nil
}

func (s *Store) GetInvitationByID(_ context.Context, invitationID string) (*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invitations[invitationID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *inv
	return &c, nil
}

func (s *Store) ListInvitations(_ context.Context, filter repository.InvitationFilter) ([]*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Invitation
	for _, inv := range s.invitations {
		if filter.ProjectID != "" && inv.ProjectID != filter.ProjectID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if filter.FromUserID != "" && inv.FromUserID != filter.FromUserID {
			continue
		}
		if filter.ParticipantID != "" &&
			inv.FromUserID != filter.ParticipantID &&
			inv.ToUserID != filter.ParticipantID {
			continue
		}
		c := *inv
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		return numericLess(result[i].ID, result[j].ID)
	})
	return result, nil
}

func (s *Store) UpdateInvitationStatus(
	_ context.Context,
	invitationID string,
	status models.InvitationStatus,
	updatedAt time.Time,
) (*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invitations[invitationID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	inv.Status = status
	inv.UpdatedAt = updatedAt
	c := *inv
	return &c, nil
}

func (s *Store) AcceptPendingInvitation(_ context.Context, token string, acceptedAt time.Time) (*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.tokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	inv := s.invitations[id]
	if inv.Status != models.InvitationStatusPending {
		return nil, repository.ErrNotFound
	}

	err := s.addMember(inv.ProjectID, inv.ToUserID)
	if err != nil {
		return nil, err
	}
	inv.Status = models.InvitationStatusAccepted
	inv.UpdatedAt = acceptedAt
	c := *inv
	return &c, nil
}

func (s *Store) GetLatestInvitation(_ context.Context, projectID, toUserID string) (*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *models.Invitation
	for _, inv := range s.invitations {
		if inv.ProjectID != projectID || inv.ToUserID != toUserID {
			continue
		}
		if latest == nil ||
			inv.CreatedAt.After(latest.CreatedAt) ||
			(inv.CreatedAt.Equal(latest.CreatedAt) && numericLess(latest.ID, inv.ID)) {
			latest = inv
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	c := *latest
	return &c, nil
}
