package main

import (
	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-identity-go/pkg/database"
)

func newMigrateCmd(envFile *string) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lg, err := bootstrap(*envFile)
			if err != nil {
				return err
			}
			defer lg.Sync()

			db, err := database.Connect(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db.DB); err != nil {
				return err
			}
			lg.Sugar().Info("migrations applied")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Print the state of every migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lg, err := bootstrap(*envFile)
			if err != nil {
				return err
			}
			defer lg.Sync()

			db, err := database.Connect(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.MigrationStatus(cmd.Context(), db.DB)
		},
	}

	migrate.AddCommand(up, status)
	return migrate
}
