package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/notify"
	"github.com/oponion/oponion-api/internal/repository"
)

type invitationServiceImpl struct {
	logger      zerolog.Logger
	invitations repository.InvitationRepository
	projects    repository.ProjectRepository
	users       repository.UserRepository
	notifier    notify.Notifier
}

func NewInvitationService(
	logger zerolog.Logger,
	invitations repository.InvitationRepository,
	projects repository.ProjectRepository,
	users repository.UserRepository,
	notifier notify.Notifier,
) InvitationService {
	return &invitationServiceImpl{
		logger:      logger,
		invitations: invitations,
		projects:    projects,
		users:       users,
		notifier:    notifier,
	}
}

func (s *invitationServiceImpl) SendInvitation(ctx context.Context, params SendInvitationParams) (*models.Invitation, error) {
	invitee, err := s.getUser(ctx, params.ToUserID)
	if err != nil {
		return nil, err
	}
	inviter, err := s.getUser(ctx, params.FromUserID)
	if err != nil {
		return nil, err
	}
	project, err := getProject(ctx, s.logger, s.projects, params.ProjectID)
	if err != nil {
		return nil, err
	}

	token, err := uuid.NewRandom()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate invitation token")
		return nil, err
	}

	now := time.Now()
	invitation := &models.Invitation{
		FromUserID: inviter.ID,
		ToUserID:   invitee.ID,
		ProjectID:  project.ID,
		Token:      token.String(),
		Status:     models.InvitationStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.invitations.CreateInvitation(ctx, invitation)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			s.logger.Error().
				Str("project_id", project.ID).
				Msg("project disappeared before the invitation was stored")
			return nil, ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Str("project_id", project.ID).
			Msg("failed to insert invitation")
		return nil, err
	}
	s.logger.Debug().
		Str("invitation_id", invitation.ID).
		Msg("inserted invitation")

	err = s.notifier.NotifyInvitation(ctx, notify.Invitation{
		Token:          invitation.Token,
		RecipientEmail: invitee.Email,
		RecipientName:  invitee.Username,
		InviterName:    inviter.Username,
		ProjectName:    project.Name,
	})
	if err != nil {
		// The invitation stays pending; the inviter can send another one.
		s.logger.Error().
			Err(err).
			Str("invitation_id", invitation.ID).
			Str("to_user_id", invitee.ID).
			Msg("failed to notify invitee")
		return invitation, fmt.Errorf("%w: %w", ErrNotificationFailed, err)
	}

	s.logger.Info().
		Str("invitation_id", invitation.ID).
		Str("from_user_id", invitation.FromUserID).
		Str("to_user_id", invitation.ToUserID).
		Str("project_id", invitation.ProjectID).
		Msg("sent invitation")
	return invitation, nil
}

func (s *invitationServiceImpl) ConfirmInvitation(ctx context.Context, token string) (*models.Invitation, error) {
	if token == "" {
		return nil, ErrInvalidInvitationToken
	}

	invitation, err := s.invitations.AcceptPendingInvitation(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Error().Msg("invalid or already used invitation token")
			return nil, ErrInvalidInvitationToken
		}

		s.logger.Error().
			Err(err).
			Msg("failed to accept invitation")
		return nil, err
	}

	s.logger.Info().
		Str("invitation_id", invitation.ID).
		Str("project_id", invitation.ProjectID).
		Str("user_id", invitation.ToUserID).
		Msg("confirmed invitation")
	return invitation, nil
}

func (s *invitationServiceImpl) SetInvitationStatus(ctx context.Context, params SetInvitationStatusParams) (*models.Invitation, error) {
	if !params.Status.IsValid() {
		s.logger.Error().
			Str("status", string(params.Status)).
			Msg("invalid invitation status")
		return nil, ErrInvalidInvitationStatus
	}

	invitation, err := s.invitations.GetInvitationByID(ctx, params.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Error().
				Str("invitation_id", params.ID).
				Msg("invitation not found")
			return nil, ErrInvitationNotFound
		}

		s.logger.Error().
			Err(err).
			Str("invitation_id", params.ID).
			Msg("failed to select invitation by id")
		return nil, err
	}

	if invitation.FromUserID != params.UserID && invitation.ToUserID != params.UserID {
		s.logger.Error().
			Str("invitation_id", invitation.ID).
			Str("user_id", params.UserID).
			Msg("user is neither inviter nor invitee")
		return nil, ErrForbidden
	}

	invitation, err = s.invitations.UpdateInvitationStatus(ctx, invitation.ID, params.Status, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvitationNotFound
		}

		s.logger.Error().
			Err(err).
			Str("invitation_id", params.ID).
			Msg("failed to update invitation status")
		return nil, err
	}

	s.logger.Info().
		Str("invitation_id", invitation.ID).
		Str("status", string(invitation.Status)).
		Msg("updated invitation status")
	return invitation, nil
}

func (s *invitationServiceImpl) ListInvitations(ctx context.Context, params ListInvitationsParams) ([]*models.Invitation, error) {
	project, err := getProject(ctx, s.logger, s.projects, params.ProjectID)
	if err != nil {
		return nil, err
	}

	filter := repository.InvitationFilter{ProjectID: project.ID}
	if params.AcceptedOnly {
		filter.Status = models.InvitationStatusAccepted
	}
	if params.SentByRequester {
		filter.FromUserID = params.RequesterID
	}
	if project.UserID != params.RequesterID {
		filter.ParticipantID = params.RequesterID
	}

	invitations, err := s.invitations.ListInvitations(ctx, filter)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", project.ID).
			Msg("failed to select invitations")
		return nil, err
	}
	s.logger.Debug().
		Str("project_id", project.ID).
		Int("count", len(invitations)).
		Msg("selected invitations")
	return invitations, nil
}

func (s *invitationServiceImpl) ListInvitedUsers(ctx context.Context, projectID string) ([]*models.InvitedUser, error) {
	project, err := getProject(ctx, s.logger, s.projects, projectID)
	if err != nil {
		return nil, err
	}

	members, err := s.projects.ListProjectMembers(ctx, project.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", project.ID).
			Msg("failed to select project members")
		return nil, err
	}

	invited := make([]*models.InvitedUser, 0, len(members))
	for _, member := range members {
		status := models.InvitationStatusUnknown
		latest, err := s.invitations.GetLatestInvitation(ctx, project.ID, member.ID)
		switch {
		case err == nil:
			status = latest.Status
		case !errors.Is(err, repository.ErrNotFound):
			s.logger.Error().
				Err(err).
				Str("project_id", project.ID).
				Str("user_id", member.ID).
				Msg("failed to select latest invitation")
			return nil, err
		}

		invited = append(invited, &models.InvitedUser{
			ID:               member.ID,
			Email:            member.Email,
			Name:             member.Username,
			InvitationStatus: status,
		})
	}
	return invited, nil
}

func (s *invitationServiceImpl) getUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Error().
				Str("user_id", userID).
				Msg("user not found")
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select user by id")
		return nil, err
	}
	return user, nil
}
