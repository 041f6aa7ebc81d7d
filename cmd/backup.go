package cmd

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/restock/internal/backup"
	"github.com/Lumos-Labs-HQ/restock/internal/config"
	"github.com/Lumos-Labs-HQ/restock/internal/database"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Dump all tables to a JSON backup file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		dbURL, err := cfg.GetDatabaseURL()
		if err != nil {
			return err
		}

		ctx := context.Background()

		adapter := database.NewAdapter(cfg.Database.Provider)
		if err := adapter.Connect(ctx, dbURL); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer adapter.Close()

		comment, _ := cmd.Flags().GetString("comment")
		path, err := backup.Create(ctx, adapter, cfg.BackupPath, comment)
		if err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}

		color.Green("📦 Backup created: %s", path)
		return nil
	},
}

func init() {
	backupCmd.Flags().String("comment", "", "comment stored inside the backup file")
}
