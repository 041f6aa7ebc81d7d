// Package backup dumps every table to a JSON file before a migration is
// applied, so a botched run on a backend without transactional DDL can
// still be recovered by hand.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Lumos-Labs-HQ/restock/internal/database"
	"github.com/Lumos-Labs-HQ/restock/internal/types"
)

// Create writes a JSON snapshot of all tables into dir and returns the file
// path. Per-table failures are logged and skipped rather than aborting the
// whole backup.
func Create(ctx context.Context, adapter database.Adapter, dir, comment string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	data := types.BackupData{
		Timestamp: time.Now().Format("2006-01-02_15-04-05"),
		Version:   "1",
		Tables:    make(map[string]interface{}),
		Comment:   comment,
	}

	tables, err := adapter.ListTableNames(ctx, adapter)
	if err != nil {
		return "", fmt.Errorf("failed to get table names: %w", err)
	}

	for _, table := range tables {
		rows, columns, err := dumpTable(ctx, adapter, table)
		if err != nil {
			log.Printf("⚠️  Warning: Failed to backup table %s: %v", table, err)
			continue
		}
		data.Tables[table] = map[string]interface{}{
			"columns": columns,
			"data":    rows,
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("backup_%s.json", data.Timestamp))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return "", fmt.Errorf("failed to write backup data: %w", err)
	}

	return path, nil
}

func dumpTable(ctx context.Context, adapter database.Adapter, table string) ([]map[string]interface{}, []string, error) {
	rows, err := adapter.Query(ctx, fmt.Sprintf("SELECT * FROM %s", table))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var result []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			row[column] = values[i]
		}
		result = append(result, row)
	}

	return result, columns, rows.Err()
}
