package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "1.3.2"
)

var rootCmd = &cobra.Command{
	Use:   "restock",
	Short: "Idempotent migration and backfill runner for the stock inventory database",
	Long: `
Restock applies the categorize-inventory migration: it adds the categories
reference table and the stock_items.category_id column when they are missing,
seeds the category taxonomy without duplicating it, and backfills existing
stock rows onto their categories.

The whole run happens in one transaction and is safe to re-run any number of
times: an already-applied change is detected and skipped, a conflicting seed
row is resolved to the existing one, and the backfill converges on the same
final state.

Database Support:
- PostgreSQL
- MySQL
- SQLite`,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("restock version %s\n", Version)
			os.Exit(0)
		}
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("❌ %v", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default restock.config.json)")
	rootCmd.Flags().BoolP("version", "v", false, "show version")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(validateRulesCmd)
}

func initConfig() {
	// .env is optional; real deployments export DATABASE_URL directly.
	godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("restock.config")
		viper.SetConfigType("json")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			color.Red("❌ Failed to read config file %s: %v", cfgFile, err)
			os.Exit(1)
		}
	}
}
