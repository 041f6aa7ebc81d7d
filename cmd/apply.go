package cmd

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/restock/internal/backup"
	"github.com/Lumos-Labs-HQ/restock/internal/config"
	"github.com/Lumos-Labs-HQ/restock/internal/database"
	"github.com/Lumos-Labs-HQ/restock/internal/engine"
	"github.com/Lumos-Labs-HQ/restock/internal/inventory"
	"github.com/Lumos-Labs-HQ/restock/internal/ledger"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply the categorize-stock migration",
	Long: `Apply the migration to the database: ensure the categories table and the
stock_items.category_id column exist, seed the taxonomy, and backfill
existing stock rows. Safe to re-run; an already-applied run is skipped
unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		rulesPath, _ := cmd.Flags().GetString("rules")
		if rulesPath == "" {
			rulesPath = cfg.RulesPath
		}

		def, checksum, err := loadMigration(rulesPath)
		if err != nil {
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

		force, _ := cmd.Flags().GetBool("force")
		applied, err := led.IsApplied(def.Name)
		if err != nil {
			return err
		}
		if applied && !force {
			color.Green("✅ Migration %s already applied (use --force to re-run)", def.Name)
			return nil
		}

		adapter := database.NewAdapter(cfg.Database.Provider)
		if err := adapter.Connect(ctx, dbURL); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer adapter.Close()

		if err := adapter.Ping(ctx); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}

		if withBackup, _ := cmd.Flags().GetBool("backup"); withBackup {
			path, err := backup.Create(ctx, adapter, cfg.BackupPath, "pre-apply "+def.Name)
			if err != nil {
				return fmt.Errorf("failed to create backup: %w", err)
			}
			color.Green("📦 Backup created: %s", path)
		}

		runner := engine.NewRunner(adapter, def)
		result, err := runner.Run(ctx)
		if err != nil {
			return err
		}

		if err := led.Record(def.Name, checksum); err != nil {
			return err
		}

		color.Green("\n✅ Migration %s applied", def.Name)
		color.Green("   tables created:    %d", result.TablesCreated)
		color.Green("   columns added:     %d", result.ColumnsAdded)
		color.Green("   constraints added: %d", result.ConstraintsAdded)
		color.Green("   categories seeded: %d", result.CategoriesSeeded)
		color.Green("   rows backfilled:   %d", result.RowsBackfilled)
		return nil
	},
}

// loadMigration builds the migration definition and a checksum of the
// taxonomy that defined it.
func loadMigration(rulesPath string) (engine.Migration, string, error) {
	if rulesPath == "" {
		def := inventory.Default()
		return def, ledger.Checksum(fmt.Sprintf("%+v|%+v", def.Seed.Records, def.Backfill.Rules)), nil
	}

	def, err := inventory.FromRulesFile(rulesPath)
	if err != nil {
		return engine.Migration{}, "", err
	}
	return def, ledger.Checksum(fmt.Sprintf("%+v|%+v", def.Seed.Records, def.Backfill.Rules)), nil
}

func init() {
	applyCmd.Flags().Bool("force", false, "re-apply even if already recorded in the ledger")
	applyCmd.Flags().Bool("backup", false, "dump all tables to a JSON backup before applying")
	applyCmd.Flags().String("rules", "", "YAML rules file overriding the built-in taxonomy")
}
