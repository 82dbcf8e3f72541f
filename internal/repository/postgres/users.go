package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User, info *models.UserInfo) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		const insertUserQuery = `
INSERT INTO users (id,
                   username,
                   email,
                   password,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
		_, err := tx.Exec(
			ctx,
			insertUserQuery,
			user.ID,
			user.Username,
			user.Email,
			user.Password,
			user.CreatedAt,
			user.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", translateError(err))
		}
		if info == nil {
			return nil
		}

		const insertUserInfoQuery = `
INSERT INTO user_information (user_id,
                              email,
                              first_name,
                              last_name,
                              phone,
                              job,
                              location,
                              timezone,
                              languages,
                              bio,
                              joined_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`
		_, err = tx.Exec(
			ctx,
			insertUserInfoQuery,
			user.ID,
			info.Email,
			info.FirstName,
			info.LastName,
			info.Phone,
			info.Job,
			info.Location,
			info.Timezone,
			info.Languages,
			info.Bio,
			info.JoinedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert user information: %w", translateError(err))
		}
		return nil
	})
}

const userColumns = `id,
       username,
       email,
       password,
       created_at,
       updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := new(models.User)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func collectUsers(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return users, nil
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	const selectUserByIDQuery = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
`
	user, err := scanUser(s.pool.QueryRow(ctx, selectUserByIDQuery, userID))
	if err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

func (s *Store) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	const selectUserByLoginQuery = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1 OR username = $1
ORDER BY email = $1 DESC
LIMIT 1
`
	user, err := scanUser(s.pool.QueryRow(ctx, selectUserByLoginQuery, login))
	if err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

func (s *Store) SearchUsers(ctx context.Context, query, userID string) ([]*models.User, error) {
	const searchUsersQuery = `
SELECT ` + userColumns + `
FROM users
WHERE ($1 <> '' AND (username ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'))
   OR ($2 <> '' AND id = $2)
ORDER BY created_at, id
`
	rows, err := s.pool.Query(ctx, searchUsersQuery, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return collectUsers(rows)
}

func (s *Store) ListUsersExcept(ctx context.Context, userID string) ([]*models.User, error) {
	const selectUsersExceptQuery = `
SELECT ` + userColumns + `
FROM users
WHERE id <> $1
ORDER BY created_at, id
`
	rows, err := s.pool.Query(ctx, selectUsersExceptQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select users: %w", err)
	}
	return collectUsers(rows)
}

func (s *Store) GetUserInfo(ctx context.Context, userID string) (*models.UserInfo, error) {
	const selectUserInfoQuery = `
SELECT email,
       first_name,
       last_name,
       phone,
       job,
       location,
       timezone,
       languages,
       bio,
       joined_at
FROM user_information
WHERE user_id = $1
`
	info := &models.UserInfo{UserID: userID}
	err := s.pool.QueryRow(ctx, selectUserInfoQuery, userID).Scan(
		&info.Email,
		&info.FirstName,
		&info.LastName,
		&info.Phone,
		&info.Job,
		&info.Location,
		&info.Timezone,
		&info.Languages,
		&info.Bio,
		&info.JoinedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return info, nil
}

func (s *Store) UpdateUserInfo(ctx context.Context, info *models.UserInfo) error {
	const updateUserInfoQuery = `
UPDATE user_information
SET email = $1,
    first_name = $2,
    last_name = $3,
    phone = $4,
    job = $5,
    location = $6,
    timezone = $7,
    languages = $8,
    bio = $9
WHERE user_id = $10
`
	tag, err := s.pool.Exec(
		ctx,
		updateUserInfoQuery,
		info.Email,
		info.FirstName,
		info.LastName,
		info.Phone,
		info.Job,
		info.Location,
		info.Timezone,
		info.Languages,
		info.Bio,
		info.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user information: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
