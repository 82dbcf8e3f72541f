package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository"
)

const insertSessionQuery = `
INSERT INTO sessions (id,
                      user_id,
                      fingerprint,
                      refresh_token,
                      expires_at,
                      created_at,
                      updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	_, err := s.pool.Exec(
		ctx,
		insertSessionQuery,
		session.ID,
		session.UserID,
		session.Fingerprint,
		session.RefreshToken,
		session.ExpiresAt,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", translateError(err))
	}
	return nil
}

func (s *Store) ReplaceUserSessions(ctx context.Context, session *models.Session) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		const deleteSessionsByUserIDQuery = `
DELETE FROM sessions
       WHERE user_id = $1
`
		_, err := tx.Exec(ctx, deleteSessionsByUserIDQuery, session.UserID)
		if err != nil {
			return fmt.Errorf("failed to delete sessions by user id: %w", err)
		}

		_, err = tx.Exec(
			ctx,
			insertSessionQuery,
			session.ID,
			session.UserID,
			session.Fingerprint,
			session.RefreshToken,
			session.ExpiresAt,
			session.CreatedAt,
			session.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", translateError(err))
		}
		return nil
	})
}

func (s *Store) GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error) {
	const selectSessionByIDQuery = `
SELECT user_id,
       fingerprint,
       refresh_token,
       expires_at,
       created_at,
       updated_at
FROM sessions
WHERE id = $1
`
	session := &models.Session{ID: sessionID}
	err := s.pool.QueryRow(ctx, selectSessionByIDQuery, sessionID).Scan(
		&session.UserID,
		&session.Fingerprint,
		&session.RefreshToken,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return session, nil
}

func (s *Store) GetSessionByRefreshToken(ctx context.Context, refreshToken, fingerprint string) (*models.Session, error) {
	const selectSessionByRefreshTokenQuery = `
SELECT id,
       user_id,
       expires_at,
       created_at,
       updated_at
FROM sessions
WHERE refresh_token = $1 AND
      fingerprint = $2
`
	session := &models.Session{
		RefreshToken: refreshToken,
		Fingerprint:  fingerprint,
	}
	err := s.pool.QueryRow(ctx, selectSessionByRefreshTokenQuery, refreshToken, fingerprint).Scan(
		&session.ID,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return session, nil
}

func (s *Store) UpdateSession(ctx context.Context, session *models.Session) error {
	const updateSessionQuery = `
UPDATE sessions
SET refresh_token = $1,
    expires_at = $2,
    updated_at = $3
WHERE id = $4
`
	tag, err := s.pool.Exec(
		ctx,
		updateSessionQuery,
		session.RefreshToken,
		session.ExpiresAt,
		session.UpdatedAt,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteSessionsByUserID(ctx context.Context, userID string) (int64, error) {
	const deleteSessionsByUserIDQuery = `
DELETE FROM sessions
       WHERE user_id = $1
`
	tag, err := s.pool.Exec(ctx, deleteSessionsByUserIDQuery, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions by user id: %w", err)
	}
	return tag.RowsAffected(), nil
}
