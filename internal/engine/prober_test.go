package engine

import (
	"context"
	"testing"
)

func TestProberTableExists(t *testing.T) {
	adapter := newTestAdapter(t)
	prober := NewProber(adapter, adapter)
	ctx := context.Background()

	exists, err := prober.Exists(ctx, KindTable, "stock_items", "")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if exists {
		t.Error("Expected stock_items to be absent, but probe reported it exists")
	}

	createStockTable(t, adapter)

	exists, err = prober.Exists(ctx, KindTable, "stock_items", "")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if !exists {
		t.Error("Expected stock_items to exist after creation")
	}
}

func TestProberColumnExists(t *testing.T) {
	adapter := newTestAdapter(t)
	createStockTable(t, adapter)
	prober := NewProber(adapter, adapter)
	ctx := context.Background()

	exists, err := prober.Exists(ctx, KindColumn, "item_name", "stock_items")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if !exists {
		t.Error("Expected item_name column to exist")
	}

	exists, err = prober.Exists(ctx, KindColumn, "category_id", "stock_items")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if exists {
		t.Error("Expected category_id column to be absent")
	}
}

// Probing a column of a table that does not exist is still absence, not an
// error.
func TestProberMissingTableIsAbsence(t *testing.T) {
	adapter := newTestAdapter(t)
	prober := NewProber(adapter, adapter)

	exists, err := prober.Exists(context.Background(), KindColumn, "category_id", "no_such_table")
	if err != nil {
		t.Fatalf("Expected absence, got error: %v", err)
	}
	if exists {
		t.Error("Expected column of missing table to be reported absent")
	}
}

func TestProberUnknownKind(t *testing.T) {
	adapter := newTestAdapter(t)
	prober := NewProber(adapter, adapter)

	if _, err := prober.Exists(context.Background(), ObjectKind("index"), "x", ""); err == nil {
		t.Error("Expected unknown object kind to error, got nil")
	}
}
