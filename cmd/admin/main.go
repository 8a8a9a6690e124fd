package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flowfunds/internal/infrastructure/postgres"
	"flowfunds/internal/shared/config"
	"flowfunds/internal/shared/logger"
)

// Shared state initialized by the root command before any subcommand runs.
var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "flowfunds-admin",
	Short: "Operator commands for the flowfunds API",
	Long: `Management commands for a flowfunds deployment: schema migrations,
account recovery and hand-triggered notification batches.

Configuration is read from the same environment (and .env file) as the API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log, err = logger.New(logger.Config{Level: cfg.Log.Level, Format: "console"})
		return err
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, accountCmd, notifyCmd)
}

// openDB connects to the configured Postgres database.
func openDB() (*postgres.DB, error) {
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
