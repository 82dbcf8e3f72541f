package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository"
)

type userServiceImpl struct {
	logger zerolog.Logger
	users  repository.UserRepository
}

func NewUserService(
	logger zerolog.Logger,
	users repository.UserRepository,
) UserService {
	return &userServiceImpl{
		logger: logger,
		users:  users,
	}
}

func (s *userServiceImpl) SearchUsers(ctx context.Context, query, userID string) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	userID = strings.TrimSpace(userID)
	if query == "" && userID == "" {
		return nil, ErrMissingSearchParams
	}

	users, err := s.users.SearchUsers(ctx, query, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("query", query).
			Msg("failed to search users")
		return nil, err
	}
	s.logger.Debug().
		Str("query", query).
		Int("count", len(users)).
		Msg("searched users")
	return users, nil
}

func (s *userServiceImpl) ListSelectableUsers(ctx context.Context, requesterID string) ([]*models.User, error) {
	users, err := s.users.ListUsersExcept(ctx, requesterID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", requesterID).
			Msg("failed to list users")
		return nil, err
	}
	return users, nil
}

func (s *userServiceImpl) GetUserInfo(ctx context.Context, userID string) (*models.UserInfo, error) {
	info, err := s.users.GetUserInfo(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Error().
				Str("user_id", userID).
				Msg("user information not found")
			return nil, ErrUserInfoNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select user information")
		return nil, err
	}
	return info, nil
}

func (s *userServiceImpl) UpdateUserInfo(ctx context.Context, params UpdateUserInfoParams) (*models.UserInfo, error) {
	info, err := s.GetUserInfo(ctx, params.UserID)
	if err != nil {
		return nil, err
	}

	assign := func(dst *string, src *string) {
		switch {
		case src != nil:
			*dst = *src
		case !params.Partial:
			*dst = ""
		}
	}
	assign(&info.Email, params.Email)
	assign(&info.FirstName, params.FirstName)
	assign(&info.LastName, params.LastName)
	assign(&info.Phone, params.Phone)
	assign(&info.Job, params.Job)
	assign(&info.Location, params.Location)
	assign(&info.Timezone, params.Timezone)
	assign(&info.Languages, params.Languages)
	assign(&info.Bio, params.Bio)

	err = s.users.UpdateUserInfo(ctx, info)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserInfoNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", params.UserID).
			Msg("failed to update user information")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", params.UserID).
		Bool("partial", params.Partial).
		Msg("updated user information")
	return info, nil
}
