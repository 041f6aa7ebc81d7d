package engine

import (
	"fmt"
	"regexp"

	"github.com/Lumos-Labs-HQ/restock/internal/types"
)

// validIdentifier validates SQL identifiers (table/column names) to prevent
// SQL injection through migration definitions.
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Migration is the declarative definition of one forward-only, idempotent
// step: structural changes, reference rows to seed, and backfill rules that
// point existing rows at the seeded rows.
type Migration struct {
	Name        string
	Tables      []types.TableDef
	Columns     []ColumnChange
	ForeignKeys []ForeignKeyChange
	Seed        SeedSpec
	Backfill    BackfillSpec
}

type ColumnChange struct {
	Table  string
	Column types.ColumnDef
}

type ForeignKeyChange struct {
	Table      string
	ForeignKey types.ForeignKeyDef
}

// SeedSpec names the reference table and the fixed rows to insert into it.
// NameColumn carries the unique key that conflict-skip inserts are keyed on.
type SeedSpec struct {
	Table             string
	NameColumn        string
	DescriptionColumn string
	IDColumn          string
	Records           []SeedRecord
}

type SeedRecord struct {
	Name        string
	Description string
}

type SeedResult struct {
	Name        string
	ID          int64
	WasInserted bool
}

// BackfillSpec targets the mutable table whose RefColumn is populated from
// the seeded rows, matched case-insensitively on MatchColumn.
type BackfillSpec struct {
	Table       string
	MatchColumn string
	RefColumn   string
	Rules       []Rule
}

// Rule maps a lowercased item name to a seeded reference name. Rules apply
// in order; on overlap the later rule wins.
type Rule struct {
	Match  string
	Target string
}

func isValidIdentifier(name string) bool {
	return validIdentifier.MatchString(name)
}

// Validate rejects definitions whose identifiers cannot be safely
// interpolated into DDL and DML.
func (m *Migration) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("migration name cannot be empty")
	}

	for _, table := range m.Tables {
		if !isValidIdentifier(table.Name) {
			return fmt.Errorf("invalid table name: %s", table.Name)
		}
		for _, col := range table.Columns {
			if !isValidIdentifier(col.Name) {
				return fmt.Errorf("invalid column name in table %s: %s", table.Name, col.Name)
			}
		}
	}

	for _, change := range m.Columns {
		if !isValidIdentifier(change.Table) {
			return fmt.Errorf("invalid table name: %s", change.Table)
		}
		if !isValidIdentifier(change.Column.Name) {
			return fmt.Errorf("invalid column name in table %s: %s", change.Table, change.Column.Name)
		}
	}

	for _, change := range m.ForeignKeys {
		fk := change.ForeignKey
		for _, name := range []string{change.Table, fk.Name, fk.Column, fk.RefTable, fk.RefColumn} {
			if !isValidIdentifier(name) {
				return fmt.Errorf("invalid identifier in foreign key %s: %s", fk.Name, name)
			}
		}
	}

	if len(m.Seed.Records) > 0 {
		for _, name := range []string{m.Seed.Table, m.Seed.NameColumn, m.Seed.IDColumn} {
			if !isValidIdentifier(name) {
				return fmt.Errorf("invalid identifier in seed spec: %s", name)
			}
		}
		if m.Seed.DescriptionColumn != "" && !isValidIdentifier(m.Seed.DescriptionColumn) {
			return fmt.Errorf("invalid identifier in seed spec: %s", m.Seed.DescriptionColumn)
		}
		for _, record := range m.Seed.Records {
			if record.Name == "" {
				return fmt.Errorf("seed record with empty name in table %s", m.Seed.Table)
			}
		}
	}

	if len(m.Backfill.Rules) > 0 {
		for _, name := range []string{m.Backfill.Table, m.Backfill.MatchColumn, m.Backfill.RefColumn} {
			if !isValidIdentifier(name) {
				return fmt.Errorf("invalid identifier in backfill spec: %s", name)
			}
		}
		seeded := make(map[string]bool, len(m.Seed.Records))
		for _, record := range m.Seed.Records {
			seeded[record.Name] = true
		}
		for _, rule := range m.Backfill.Rules {
			if rule.Match == "" {
				return fmt.Errorf("backfill rule with empty match value")
			}
			if !seeded[rule.Target] {
				return fmt.Errorf("backfill rule %q targets unseeded reference %q", rule.Match, rule.Target)
			}
		}
	}

	return nil
}
