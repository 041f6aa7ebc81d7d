package cmd

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/restock/internal/inventory"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var validateRulesCmd = &cobra.Command{
	Use:   "validate-rules <file>",
	Short: "Check a YAML rules file without touching the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := inventory.ParseRulesFile(args[0])
		if err != nil {
			return err
		}

		color.Green("✅ %s is valid", args[0])
		fmt.Printf("   categories: %d\n", len(file.Categories))
		fmt.Printf("   rules:      %d\n", len(file.Rules))
		return nil
	},
}
