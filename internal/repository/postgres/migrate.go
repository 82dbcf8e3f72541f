package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// Migrate applies the embedded goose migrations in the given direction.
// Logger receives goose's progress output.
func Migrate(ctx context.Context, pool *pgxpool.Pool, direction string, logger goose.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if logger != nil {
		goose.SetLogger(logger)
	}
	goose.SetBaseFS(migrations)

	err := goose.SetDialect("postgres")
	if err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	switch direction {
	case MigrateUp:
		err = goose.UpContext(ctx, db, "migrations")
	case MigrateDown:
		err = goose.DownContext(ctx, db, "migrations")
	case MigrateStatus:
		err = goose.StatusContext(ctx, db, "migrations")
	default:
		return fmt.Errorf("unknown migration direction: %s", direction)
	}
	if err != nil {
		return fmt.Errorf("failed to migrate %s: %w", direction, err)
	}
	return nil
}
