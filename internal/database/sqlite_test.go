package database

import (
	"context"
	"testing"

	"github.com/Lumos-Labs-HQ/restock/internal/types"
)

func newSQLite(t *testing.T) *SQLiteAdapter {
	t.Helper()

	adapter := NewSQLiteAdapter()
	if err := adapter.Connect(context.Background(), "sqlite://:memory:"); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

func createCategories(t *testing.T, adapter *SQLiteAdapter) {
	t.Helper()

	ddl := adapter.CreateTableSQL(types.TableDef{
		Name: "categories",
		Columns: []types.ColumnDef{
			{Name: "id", Type: "INTEGER", IsPrimary: true, IsAutoIncrement: true},
			{Name: "name", Type: "VARCHAR(100)", IsUnique: true},
			{Name: "description", Type: "TEXT", Nullable: true},
		},
	})
	if _, err := adapter.Exec(context.Background(), ddl); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
}

func TestSQLiteInsertSkipConflict(t *testing.T) {
	adapter := newSQLite(t)
	createCategories(t, adapter)
	ctx := context.Background()

	insertSQL := adapter.InsertSkipConflictSQL("categories", []string{"name", "description"}, "name")

	affected, err := adapter.Exec(ctx, insertSQL, "Drinks", "Beverages")
	if err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if affected != 1 {
		t.Errorf("Expected first insert to affect 1 row, got %d", affected)
	}

	affected, err = adapter.Exec(ctx, insertSQL, "Drinks", "Beverages again")
	if err != nil {
		t.Fatalf("Conflicting insert failed: %v", err)
	}
	if affected != 0 {
		t.Errorf("Expected conflicting insert to be skipped, got %d affected rows", affected)
	}

	var count int
	if err := adapter.QueryRow(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 row after conflict skip, got %d", count)
	}
}

func TestSQLiteDuplicateObjectClassification(t *testing.T) {
	adapter := newSQLite(t)
	createCategories(t, adapter)
	ctx := context.Background()

	_, err := adapter.Exec(ctx, "ALTER TABLE categories ADD COLUMN description TEXT")
	if err == nil {
		t.Fatal("Expected duplicate column to fail")
	}
	if !adapter.IsDuplicateObject(err) {
		t.Errorf("Expected duplicate column error to classify as duplicate object: %v", err)
	}

	_, err = adapter.Exec(ctx, "CREATE TABLE categories (id INTEGER)")
	if err == nil {
		t.Fatal("Expected duplicate table to fail")
	}
	if !adapter.IsDuplicateObject(err) {
		t.Errorf("Expected duplicate table error to classify as duplicate object: %v", err)
	}

	_, err = adapter.Exec(ctx, "ALTER TABLE no_such_table ADD COLUMN x TEXT")
	if err == nil {
		t.Fatal("Expected missing table to fail")
	}
	if adapter.IsDuplicateObject(err) {
		t.Errorf("Expected missing-table error to NOT classify as duplicate object: %v", err)
	}
}

func TestSQLiteUniqueViolationClassification(t *testing.T) {
	adapter := newSQLite(t)
	createCategories(t, adapter)
	ctx := context.Background()

	if _, err := adapter.Exec(ctx,
		"INSERT INTO categories (name) VALUES (?)", "Drinks"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	_, err := adapter.Exec(ctx, "INSERT INTO categories (name) VALUES (?)", "Drinks")
	if err == nil {
		t.Fatal("Expected unique violation")
	}
	if !adapter.IsUniqueViolation(err) {
		t.Errorf("Expected unique violation classification, got: %v", err)
	}
	if adapter.IsDuplicateObject(err) {
		t.Errorf("Expected unique violation to NOT classify as duplicate object: %v", err)
	}
}

func TestSQLiteTxVisibilityAndRollback(t *testing.T) {
	adapter := newSQLite(t)
	ctx := context.Background()

	tx, err := adapter.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	if _, err := tx.Exec(ctx, "CREATE TABLE scratch (id INTEGER)"); err != nil {
		t.Fatalf("DDL in transaction failed: %v", err)
	}

	// The probe sees DDL from its own uncommitted transaction.
	exists, err := adapter.TableExists(ctx, tx, "scratch")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if !exists {
		t.Error("Expected in-transaction probe to see the new table")
	}

	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	exists, err = adapter.TableExists(ctx, adapter, "scratch")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if exists {
		t.Error("Expected rolled-back table to be gone")
	}
}

func TestSQLiteListTableNames(t *testing.T) {
	adapter := newSQLite(t)
	createCategories(t, adapter)

	tables, err := adapter.ListTableNames(context.Background(), adapter)
	if err != nil {
		t.Fatalf("ListTableNames failed: %v", err)
	}

	found := false
	for _, name := range tables {
		if name == "categories" {
			found = true
		}
		if name == "sqlite_sequence" {
			t.Error("Expected internal sqlite tables to be filtered out")
		}
	}
	if !found {
		t.Error("Expected categories in table list")
	}
}
