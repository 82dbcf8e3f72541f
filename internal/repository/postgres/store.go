// Package postgres implements repository.Store on top of a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oponion/oponion-api/internal/repository"
)

var _ repository.Store = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// parseID converts a public identifier into a bigserial key.
// Identifiers that are not numbers cannot exist in the database.
func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatNullableID(id *int64) string {
	if id == nil {
		return ""
	}
	return formatID(*id)
}

func translateError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			switch pgErr.ConstraintName {
			case "users_username_key":
				return repository.ErrDuplicateUsername
			case "users_email_key":
				return repository.ErrDuplicateEmail
			case "invitations_token_key":
				return repository.ErrDuplicateToken
			}
		case pgerrcode.ForeignKeyViolation:
			return repository.ErrInvalidReference
		}
	}
	return err
}

func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = fn(tx)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}
