package engine

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/restock/internal/database"
	"github.com/fatih/color"
)

// Result aggregates what a run actually changed. A re-run of an already
// applied migration reports zeros everywhere except RowsBackfilled, which
// rewrites matching rows to the same values.
type Result struct {
	TablesCreated    int
	ColumnsAdded     int
	ConstraintsAdded int
	CategoriesSeeded int
	RowsBackfilled   int64
}

// Runner orchestrates one migration: ensure schema objects, seed reference
// rows, backfill existing rows, all inside a single transaction. Any step
// failure rolls the whole run back; re-running after success is a no-op with
// respect to observable state.
type Runner struct {
	adapter database.Adapter
	def     Migration
	quiet   bool
}

func NewRunner(adapter database.Adapter, def Migration) *Runner {
	return &Runner{adapter: adapter, def: def}
}

// Quiet suppresses progress output; results and errors still flow back to
// the caller.
func (r *Runner) Quiet() *Runner {
	r.quiet = true
	return r
}

func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.def.Validate(); err != nil {
		return nil, &MigrationError{Migration: r.def.Name, Step: StepSchema, Err: err}
	}

	tx, err := r.adapter.Begin(ctx)
	if err != nil {
		return nil, &MigrationError{Migration: r.def.Name, Step: StepSchema, Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}
	defer tx.Rollback(ctx)

	r.logf("🔒 Transaction started for %s", r.def.Name)

	result := &Result{}

	if err := r.ensureSchema(ctx, tx, result); err != nil {
		return nil, &MigrationError{Migration: r.def.Name, Step: StepSchema, Err: err}
	}

	ids, err := r.seed(ctx, tx, result)
	if err != nil {
		return nil, &MigrationError{Migration: r.def.Name, Step: StepSeed, Err: err}
	}

	if len(r.def.Backfill.Rules) > 0 {
		backfiller := NewBackfiller(r.adapter, tx)
		affected, err := backfiller.Apply(ctx, r.def.Backfill, ids)
		if err != nil {
			return nil, &MigrationError{Migration: r.def.Name, Step: StepBackfill, Err: err}
		}
		result.RowsBackfilled = affected
		r.logf("🧮 Backfilled %d rows", affected)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &MigrationError{Migration: r.def.Name, Step: StepCommit, Err: fmt.Errorf("failed to commit transaction: %w", err)}
	}

	r.logf("🔓 Transaction committed")
	return result, nil
}

func (r *Runner) ensureSchema(ctx context.Context, tx database.Tx, result *Result) error {
	mutator := NewMutator(r.adapter, tx)

	for _, table := range r.def.Tables {
		res, err := mutator.EnsureTable(ctx, table)
		if err != nil {
			return err
		}
		if res.Applied {
			result.TablesCreated++
			r.logf("📐 Created table %s", table.Name)
		}
	}

	for _, change := range r.def.Columns {
		res, err := mutator.EnsureColumn(ctx, change.Table, change.Column)
		if err != nil {
			return err
		}
		if res.Applied {
			result.ColumnsAdded++
			r.logf("📐 Added column %s.%s", change.Table, change.Column.Name)
		}
	}

	for _, change := range r.def.ForeignKeys {
		res, err := mutator.EnsureForeignKey(ctx, change.Table, change.ForeignKey)
		if err != nil {
			return err
		}
		if res.Applied {
			result.ConstraintsAdded++
			r.logf("📐 Added constraint %s", change.ForeignKey.Name)
		}
	}

	return nil
}

func (r *Runner) seed(ctx context.Context, tx database.Tx, result *Result) (map[string]int64, error) {
	ids := make(map[string]int64, len(r.def.Seed.Records))
	if len(r.def.Seed.Records) == 0 {
		return ids, nil
	}

	seeder := NewSeeder(r.adapter, tx)
	seeded, err := seeder.Seed(ctx, r.def.Seed)
	if err != nil {
		return nil, err
	}

	for _, res := range seeded {
		ids[res.Name] = res.ID
		if res.WasInserted {
			result.CategoriesSeeded++
		}
	}
	r.logf("🌱 Seeded %d of %d reference rows", result.CategoriesSeeded, len(seeded))

	return ids, nil
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.quiet {
		return
	}
	color.Cyan(format, args...)
}
