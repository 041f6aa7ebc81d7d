package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/Lumos-Labs-HQ/restock/internal/database"
	"github.com/Lumos-Labs-HQ/restock/internal/types"
)

func backfillFixture(t *testing.T, items ...string) (database.Adapter, map[string]int64) {
	t.Helper()

	adapter := newTestAdapter(t)
	createStockTable(t, adapter, items...)
	createCategoriesTable(t, adapter)

	ctx := context.Background()
	mutator := NewMutator(adapter, adapter)
	if _, err := mutator.EnsureColumn(ctx, "stock_items",
		types.ColumnDef{Name: "category_id", Type: "INTEGER", Nullable: true}); err != nil {
		t.Fatalf("Failed to add category_id: %v", err)
	}

	results, err := NewSeeder(adapter, adapter).Seed(ctx, seedSpec())
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	ids := make(map[string]int64, len(results))
	for _, res := range results {
		ids[res.Name] = res.ID
	}
	return adapter, ids
}

func backfillSpec(rules ...Rule) BackfillSpec {
	return BackfillSpec{
		Table:       "stock_items",
		MatchColumn: "item_name",
		RefColumn:   "category_id",
		Rules:       rules,
	}
}

func TestBackfillMatchesCaseInsensitively(t *testing.T) {
	adapter, ids := backfillFixture(t, "Coke", "coke", "COKE", "LAYS", "Water")
	ctx := context.Background()

	affected, err := NewBackfiller(adapter, adapter).Apply(ctx, backfillSpec(
		Rule{Match: "coke", Target: "Drinks"},
		Rule{Match: "lays", Target: "Snacks"},
	), ids)
	if err != nil {
		t.Fatalf("Backfill failed: %v", err)
	}

	if affected != 4 {
		t.Errorf("Expected 4 rows backfilled, got %d", affected)
	}

	for _, item := range []string{"Coke", "coke", "COKE"} {
		got := categoryOf(t, adapter, item)
		if got == nil || *got != ids["Drinks"] {
			t.Errorf("Expected %q in Drinks (%d), got %v", item, ids["Drinks"], got)
		}
	}
	if got := categoryOf(t, adapter, "LAYS"); got == nil || *got != ids["Snacks"] {
		t.Errorf("Expected LAYS in Snacks (%d), got %v", ids["Snacks"], got)
	}
	if got := categoryOf(t, adapter, "Water"); got != nil {
		t.Errorf("Expected unmatched Water to keep null category, got %v", *got)
	}
}

func TestBackfillLaterRuleWins(t *testing.T) {
	adapter, ids := backfillFixture(t, "Coke")

	_, err := NewBackfiller(adapter, adapter).Apply(context.Background(), backfillSpec(
		Rule{Match: "coke", Target: "Drinks"},
		Rule{Match: "coke", Target: "Snacks"},
	), ids)
	if err != nil {
		t.Fatalf("Backfill failed: %v", err)
	}

	if got := categoryOf(t, adapter, "Coke"); got == nil || *got != ids["Snacks"] {
		t.Errorf("Expected later rule's target Snacks (%d) to win, got %v", ids["Snacks"], got)
	}
}

func TestBackfillPreservesExistingReference(t *testing.T) {
	adapter, ids := backfillFixture(t, "Water")
	ctx := context.Background()

	// Pre-point Water at Biscuits; a run whose rules don't match it must
	// leave that reference alone.
	if _, err := adapter.Exec(ctx,
		"UPDATE stock_items SET category_id = ? WHERE item_name = ?", ids["Biscuits"], "Water"); err != nil {
		t.Fatalf("Failed to set existing category: %v", err)
	}

	if _, err := NewBackfiller(adapter, adapter).Apply(ctx, backfillSpec(
		Rule{Match: "coke", Target: "Drinks"},
	), ids); err != nil {
		t.Fatalf("Backfill failed: %v", err)
	}

	if got := categoryOf(t, adapter, "Water"); got == nil || *got != ids["Biscuits"] {
		t.Errorf("Expected Water to keep Biscuits (%d), got %v", ids["Biscuits"], got)
	}
}

func TestBackfillRewritesAlreadyCorrectRows(t *testing.T) {
	adapter, ids := backfillFixture(t, "Coke")
	ctx := context.Background()
	backfiller := NewBackfiller(adapter, adapter)
	spec := backfillSpec(Rule{Match: "coke", Target: "Drinks"})

	for run := 1; run <= 2; run++ {
		affected, err := backfiller.Apply(ctx, spec, ids)
		if err != nil {
			t.Fatalf("Backfill run %d failed: %v", run, err)
		}
		if affected != 1 {
			t.Errorf("Expected run %d to rewrite 1 row, got %d", run, affected)
		}
	}
}

func TestBackfillUnknownTarget(t *testing.T) {
	adapter, ids := backfillFixture(t, "Coke")

	_, err := NewBackfiller(adapter, adapter).Apply(context.Background(), backfillSpec(
		Rule{Match: "coke", Target: "Electronics"},
	), ids)
	if err == nil {
		t.Fatal("Expected unknown target to fail, got nil")
	}

	var backfillErr *BackfillExecutionError
	if !errors.As(err, &backfillErr) {
		t.Errorf("Expected BackfillExecutionError, got %T: %v", err, err)
	}
}
