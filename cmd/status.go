package cmd

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/restock/internal/config"
	"github.com/Lumos-Labs-HQ/restock/internal/database"
	"github.com/Lumos-Labs-HQ/restock/internal/engine"
	"github.com/Lumos-Labs-HQ/restock/internal/inventory"
	"github.com/Lumos-Labs-HQ/restock/internal/ledger"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ledger entries and which schema objects exist",
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

		led, err := ledger.Open(cfg.DriverName(), ledger.DSN(cfg.DriverName(), dbURL))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer led.Close()

		if err := led.EnsureTable(); err != nil {
			return err
		}

		entries, err := led.Applied()
		if err != nil {
			return err
		}

		color.Cyan("📒 Applied migrations: %d", len(entries))
		for _, entry := range entries {
			fmt.Printf("  - %s (applied %s)\n", entry.Name, entry.AppliedAt.Format("2006-01-02 15:04:05"))
		}

		adapter := database.NewAdapter(cfg.Database.Provider)
		if err := adapter.Connect(ctx, dbURL); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer adapter.Close()

		def := inventory.Default()
		prober := engine.NewProber(adapter, adapter)

		fmt.Println()
		color.Cyan("🔍 Schema objects:")
		for _, table := range def.Tables {
			exists, err := prober.Exists(ctx, engine.KindTable, table.Name, "")
			if err != nil {
				return err
			}
			printExists("table "+table.Name, exists)
		}
		for _, change := range def.Columns {
			exists, err := prober.Exists(ctx, engine.KindColumn, change.Column.Name, change.Table)
			if err != nil {
				return err
			}
			printExists(fmt.Sprintf("column %s.%s", change.Table, change.Column.Name), exists)
		}
		for _, change := range def.ForeignKeys {
			exists, err := prober.Exists(ctx, engine.KindConstraint, change.ForeignKey.Name, change.Table)
			if err != nil {
				return err
			}
			printExists("constraint "+change.ForeignKey.Name, exists)
		}

		return nil
	},
}

func printExists(object string, exists bool) {
	if exists {
		color.Green("  ✅ %s", object)
	} else {
		color.Yellow("  ⏳ %s (missing)", object)
	}
}
