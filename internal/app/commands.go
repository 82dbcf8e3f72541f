package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oponion/oponion-api/internal/config"
	"github.com/oponion/oponion-api/internal/repository/postgres"
)

var rootCmd = &cobra.Command{
	Use:   "oponion",
	Short: "Project, task and time tracking API",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		InitDefaultLogger()
		MustReadEnv()
		MustInitApplicationLogger()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		MustOpenStorage()
		defer CloseStorage()

		MustLoadCatalog()
		MustInitNotifier()

		MustListenAndServeHTTP()
	},
}

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply or inspect the postgres schema migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus},
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.Global().StorageDriver != config.StorageDriverPostgres {
			return fmt.Errorf("migrations require the %s storage driver", config.StorageDriverPostgres)
		}

		MustConnectPostgres()
		defer DisconnectPostgres()

		MustMigratePostgres(args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// Execute runs the command named on the command line. Without one it serves.
func Execute() error {
	rootCmd.Run = serveCmd.Run
	return rootCmd.Execute()
}
