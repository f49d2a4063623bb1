package cli

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/yifanzh/studyclock/internal/shared/infrastructure/database"
	"github.com/yifanzh/studyclock/internal/shared/infrastructure/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		switch driver := database.DetectDriver(cfg.DatabaseURL); driver {
		case database.DriverPostgres:
			pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer pool.Close()
			if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
				return err
			}

		case database.DriverSQLite:
			db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
				return err
			}

		default:
			return fmt.Errorf("unsupported driver: %s", driver)
		}

		logger.Info("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
