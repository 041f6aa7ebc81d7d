package cmd

import (
	"fmt"
	"os"

	"github.com/Lumos-Labs-HQ/restock/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	sqliteFlag     bool
	postgresqlFlag bool
	mysqlFlag      bool
)

const configFileName = "restock.config.json"

const starterRules = `# Categories to seed and the item names that map onto them.
# Matching against item names is case-insensitive.
categories:
  - name: Drinks
    description: Beverages and soft drinks
  - name: Snacks
    description: Chips and packaged snacks
  - name: Biscuits
    description: Biscuits and cookies
rules:
  - match: coke
    category: Drinks
  - match: lays
    category: Snacks
  - match: bisckets
    category: Biscuits
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config and rules file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := "postgresql"
		flagCount := 0

		if sqliteFlag {
			provider = "sqlite"
			flagCount++
		}
		if postgresqlFlag {
			provider = "postgresql"
			flagCount++
		}
		if mysqlFlag {
			provider = "mysql"
			flagCount++
		}
		if flagCount > 1 {
			return fmt.Errorf("please specify only one database type (--sqlite, --postgresql, or --mysql)")
		}

		if _, err := os.Stat(configFileName); err == nil {
			return fmt.Errorf("%s already exists", configFileName)
		}

		cfg := &config.Config{
			Version:    "1",
			RulesPath:  "rules.yaml",
			BackupPath: "db_backup",
			Database: config.Database{
				Provider: provider,
				URLEnv:   "DATABASE_URL",
			},
		}
		if err := cfg.Save(configFileName); err != nil {
			return err
		}

		if _, err := os.Stat(cfg.RulesPath); os.IsNotExist(err) {
			if err := os.WriteFile(cfg.RulesPath, []byte(starterRules), 0644); err != nil {
				return fmt.Errorf("failed to write rules file: %w", err)
			}
		}

		color.Green("✅ Created %s and %s for %s", configFileName, cfg.RulesPath, provider)
		color.Cyan("   Set %s and run `restock apply`", cfg.Database.URLEnv)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&sqliteFlag, "sqlite", false, "initialize for SQLite")
	initCmd.Flags().BoolVar(&postgresqlFlag, "postgresql", false, "initialize for PostgreSQL")
	initCmd.Flags().BoolVar(&mysqlFlag, "mysql", false, "initialize for MySQL")
}
