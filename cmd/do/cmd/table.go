package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/filedrop/internal/config"
	"github.com/templui/filedrop/internal/db"
)

func TableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Manage the DynamoDB metadata table",
	}

	var wait time.Duration
	create := &cobra.Command{
		Use:   "create",
		Short: "Create METADATA_TABLE if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			client, err := db.NewDynamoClient(cmd.Context(), db.DynamoConfigFrom(cfg))
			if err != nil {
				return err
			}

			return db.CreateFileTable(cmd.Context(), client, cfg.MetadataTable, wait)
		},
	}
	create.Flags().DurationVar(&wait, "wait", 2*time.Minute, "how long to wait for the table to become active")

	cmd.AddCommand(create)
	return cmd
}
