package cmd

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greenflash/greenflash/internal/config"
	"github.com/greenflash/greenflash/internal/db"
	"github.com/greenflash/greenflash/internal/logger"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.AddCommand(migrateStep("up", "Apply all pending migrations", db.RunMigrations))
	cmd.AddCommand(migrateStep("down", "Roll back the latest migration", db.MigrateDown))
	cmd.AddCommand(migrateStep("status", "Show applied and pending migrations", db.MigrationStatus))
	return cmd
}

func migrateStep(use, short string, run func(*sql.DB, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

			database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer database.Close()

			return run(database.DB, cfg.DBDriver)
		},
	}
}
