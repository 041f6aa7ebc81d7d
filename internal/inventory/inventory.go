// Package inventory defines the categorize-stock migration: the categories
// reference table, the category_id link on stock_items, the built-in
// taxonomy, and the rules that sort existing stock rows into it.
package inventory

import (
	"github.com/Lumos-Labs-HQ/restock/internal/engine"
	"github.com/Lumos-Labs-HQ/restock/internal/types"
)

const MigrationName = "categorize_stock_items"

// Default returns the built-in migration definition. The taxonomy and rules
// can be replaced wholesale from a rules file, see FromRulesFile.
func Default() engine.Migration {
	return build(defaultRecords(), defaultRules())
}

func defaultRecords() []engine.SeedRecord {
	return []engine.SeedRecord{
		{Name: "Drinks", Description: "Beverages and soft drinks"},
		{Name: "Snacks", Description: "Chips and packaged snacks"},
		{Name: "Biscuits", Description: "Biscuits and cookies"},
	}
}

func defaultRules() []engine.Rule {
	return []engine.Rule{
		{Match: "coke", Target: "Drinks"},
		{Match: "lays", Target: "Snacks"},
		{Match: "bisckets", Target: "Biscuits"},
	}
}

func build(records []engine.SeedRecord, rules []engine.Rule) engine.Migration {
	return engine.Migration{
		Name: MigrationName,
		Tables: []types.TableDef{
			{
				Name: "categories",
				Columns: []types.ColumnDef{
					{Name: "id", Type: "INTEGER", IsPrimary: true, IsAutoIncrement: true},
					{Name: "name", Type: "VARCHAR(100)", IsUnique: true},
					{Name: "description", Type: "TEXT", Nullable: true},
				},
			},
		},
		Columns: []engine.ColumnChange{
			{
				Table: "stock_items",
				Column: types.ColumnDef{
					Name:             "category_id",
					Type:             "INTEGER",
					Nullable:         true,
					ForeignKeyTable:  "categories",
					ForeignKeyColumn: "id",
				},
			},
		},
		ForeignKeys: []engine.ForeignKeyChange{
			{
				Table: "stock_items",
				ForeignKey: types.ForeignKeyDef{
					Name:      "fk_stock_items_category",
					Column:    "category_id",
					RefTable:  "categories",
					RefColumn: "id",
				},
			},
		},
		Seed: engine.SeedSpec{
			Table:             "categories",
			NameColumn:        "name",
			DescriptionColumn: "description",
			IDColumn:          "id",
			Records:           records,
		},
		Backfill: engine.BackfillSpec{
			Table:       "stock_items",
			MatchColumn: "item_name",
			RefColumn:   "category_id",
			Rules:       rules,
		},
	}
}
