package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository"
)

const invitationColumns = `id,
       from_user_id,
       to_user_id,
       project_id,
       token,
       status,
       created_at,
       updated_at`

func scanInvitation(row pgx.Row) (*models.Invitation, error) {
	var (
		invitation models.Invitation
		id         int64
		projectID  int64
	)
	err := row.Scan(
		&id,
		&invitation.FromUserID,
		&invitation.ToUserID,
		&projectID,
		&invitation.Token,
		&invitation.Status,
		&invitation.CreatedAt,
		&invitation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	invitation.ID = formatID(id)
	invitation.ProjectID = formatID(projectID)
	return &invitation, nil
}

func (s *Store) CreateInvitation(ctx context.Context, invitation *models.Invitation) error {
	projectID, ok := parseID(invitation.ProjectID)
	if !ok {
		return repository.ErrInvalidReference
	}

	const insertInvitationQuery = `
INSERT INTO invitations (from_user_id,
                         to_user_id,
                         project_id,
                         token,
                         status,
                         created_at,
                         updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`
	var id int64
	err := s.pool.QueryRow(
		ctx,
		insertInvitationQuery,
		invitation.FromUserID,
		invitation.ToUserID,
		projectID,
		invitation.Token,
		invitation.Status,
		invitation.CreatedAt,
		invitation.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to insert invitation: %w", translateError(err))
	}
	invitation.ID = formatID(id)
	return nil
}

func (s *Store) GetInvitationByID(ctx context.Context, invitationID string) (*models.Invitation, error) {
	id, ok := parseID(invitationID)
	if !ok {
		return nil, repository.ErrNotFound
	}

	const selectInvitationByIDQuery = `
SELECT ` + invitationColumns + `
FROM invitations
WHERE id = $1
`
	invitation, err := scanInvitation(s.pool.QueryRow(ctx, selectInvitationByIDQuery, id))
	if err != nil {
		return nil, translateError(err)
	}
	return invitation, nil
}

func (s *Store) ListInvitations(ctx context.Context, filter repository.InvitationFilter) ([]*models.Invitation, error) {
	var projectID *int64
	if filter.ProjectID != "" {
		id, ok := parseID(filter.ProjectID)
		if !ok {
			return []*models.Invitation{}, nil
		}
		projectID = &id
	}

	const selectInvitationsQuery = `
SELECT ` + invitationColumns + `
FROM invitations
WHERE ($1::BIGINT IS NULL OR project_id = $1)
  AND ($2 = '' OR status = $2)
  AND ($3 = '' OR from_user_id = $3)
  AND ($4 = '' OR from_user_id = $4 OR to_user_id = $4)
ORDER BY id
`
	rows, err := s.pool.Query(
		ctx,
		selectInvitationsQuery,
		projectID,
		string(filter.Status),
		filter.FromUserID,
		filter.ParticipantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to select invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*models.Invitation
	for rows.Next() {
		invitation, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, invitation)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return invitations, nil
}

func (s *Store) UpdateInvitationStatus(
	ctx context.Context,
	invitationID string,
	status models.InvitationStatus,
	updatedAt time.Time,
) (*models.Invitation, error) {
	id, ok := parseID(invitationID)
	if !ok {
		return nil, repository.ErrNotFound
	}

	const updateInvitationStatusQuery = `
UPDATE invitations
SET status = $1,
    updated_at = $2
WHERE id = $3
RETURNING ` + invitationColumns
	invitation, err := scanInvitation(s.pool.QueryRow(ctx, updateInvitationStatusQuery, status, updatedAt, id))
	if err != nil {
		return nil, translateError(err)
	}
	return invitation, nil
}

func (s *Store) AcceptPendingInvitation(ctx context.Context, token string, acceptedAt time.Time) (*models.Invitation, error) {
	var invitation *models.Invitation
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		// The conditional update takes the row lock, so a concurrent
		// caller blocks here and then sees a non-pending status.
		const consumeInvitationQuery = `
UPDATE invitations
SET status = 'accepted',
    updated_at = $2
WHERE token = $1
  AND status = 'pending'
RETURNING ` + invitationColumns
		var err error
		invitation, err = scanInvitation(tx.QueryRow(ctx, consumeInvitationQuery, token, acceptedAt))
		if err != nil {
			return translateError(err)
		}

		projectID, _ := parseID(invitation.ProjectID)
		_, err = tx.Exec(ctx, insertProjectMemberQuery, projectID, invitation.ToUserID, acceptedAt)
		if err != nil {
			return fmt.Errorf("failed to insert project member: %w", translateError(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invitation, nil
}

func (s *Store) GetLatestInvitation(ctx context.Context, projectID, toUserID string) (*models.Invitation, error) {
	id, ok := parseID(projectID)
	if !ok {
		return nil, repository.ErrNotFound
	}

	const selectLatestInvitationQuery = `
SELECT ` + invitationColumns + `
FROM invitations
WHERE project_id = $1
  AND to_user_id = $2
ORDER BY created_at DESC, id DESC
LIMIT 1
`
	invitation, err := scanInvitation(s.pool.QueryRow(ctx, selectLatestInvitationQuery, id, toUserID))
	if err != nil {
		return nil, translateError(err)
	}
	return invitation, nil
}
