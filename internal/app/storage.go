package app

import (
	"fmt"

	"github.com/oponion/oponion-api/internal/config"
	"github.com/oponion/oponion-api/internal/repository"
	"github.com/oponion/oponion-api/internal/repository/memory"
	"github.com/oponion/oponion-api/internal/repository/postgres"
)

var globalStore repository.Store

// MustOpenStorage selects the store named by STORAGE_DRIVER. The
// postgres driver connects and, if enabled, applies pending migrations.
func MustOpenStorage() {
	cfg := config.Global()

	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		globalStore = memory.New()
		globalLogger.Warn().Msg("using in-memory storage, data is lost on shutdown")
	case config.StorageDriverPostgres:
		MustConnectPostgres()
		if cfg.Postgres.AutoMigrate {
			MustMigratePostgres(postgres.MigrateUp)
		}
		globalStore = postgres.New(globalPostgresPool)
	default:
		err := fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
		globalLogger.Error().
			Err(err).
			Msg("failed to open storage")
		panic(err)
	}
}

func CloseStorage() {
	if config.Global().StorageDriver == config.StorageDriverPostgres {
		DisconnectPostgres()
	}
}
