package cmd

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/filedrop/internal/config"
	"github.com/templui/filedrop/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back SQL metadata migrations (sqlite, pgx)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(db.RunMigrations)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(db.MigrateDown)
		},
	})

	return cmd
}

func migrate(run func(*sql.DB, string) error) error {
	cfg := config.Load()
	if cfg.MetadataDriver != "sqlite" && cfg.MetadataDriver != "pgx" {
		return fmt.Errorf("migrations need METADATA_DRIVER sqlite or pgx, got %q", cfg.MetadataDriver)
	}

	database, err := db.Init(cfg.MetadataDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer database.Close()

	return run(database.DB, cfg.MetadataDriver)
}
