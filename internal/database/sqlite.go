package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/restock/internal/types"
	"github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"
)

type SQLiteAdapter struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
}

func NewSQLiteAdapter() *SQLiteAdapter {
	return &SQLiteAdapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (s *SQLiteAdapter) Connect(ctx context.Context, url string) error {
	// Remove sqlite:// prefix if present
	dbPath := strings.TrimPrefix(url, "sqlite://")

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite connection: %w", err)
	}
	// SQLite allows a single writer; a second pooled connection would also
	// see a different database entirely for :memory: URLs.
	db.SetMaxOpenConns(1)
	s.db = db
	return nil
}

func (s *SQLiteAdapter) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteAdapter) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteAdapter) Builder() squirrel.StatementBuilderType {
	return s.qb
}

func (s *SQLiteAdapter) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	return execAffected(ctx, s.db, query, args...)
}

func (s *SQLiteAdapter) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &sqlRows{rows: rows}, nil
}

func (s *SQLiteAdapter) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	return s.db.QueryRowContext(ctx, query, args...)
}

func (s *SQLiteAdapter) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

func (s *SQLiteAdapter) TableExists(ctx context.Context, q Queryer, tableName string) (bool, error) {
	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name = ?
	`, tableName).Scan(&count)
	return count > 0, err
}

func (s *SQLiteAdapter) ColumnExists(ctx context.Context, q Queryer, tableName, columnName string) (bool, error) {
	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?
	`, tableName, columnName).Scan(&count)
	return count > 0, err
}

// SQLite has no named table constraints to introspect; a constraint is
// considered present once its table exists.
func (s *SQLiteAdapter) ConstraintExists(ctx context.Context, q Queryer, tableName, constraintName string) (bool, error) {
	return s.TableExists(ctx, q, tableName)
}

func (s *SQLiteAdapter) ListTableNames(ctx context.Context, q Queryer) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}
	return tables, rows.Err()
}

func (s *SQLiteAdapter) CreateTableSQL(table types.TableDef) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("CREATE TABLE IF NOT EXISTS \"%s\" (", table.Name))

	for i, column := range table.Columns {
		comma := ","
		if i == len(table.Columns)-1 {
			comma = ""
		}
		lines = append(lines, fmt.Sprintf("  \"%s\" %s%s", column.Name, s.formatColumnType(column), comma))
	}

	lines = append(lines, ")")
	return strings.Join(lines, "\n")
}

// SQLite has no ADD COLUMN IF NOT EXISTS; the duplicate-column error path
// covers the race window instead.
func (s *SQLiteAdapter) AddColumnSQL(tableName string, column types.ColumnDef) string {
	return fmt.Sprintf("ALTER TABLE \"%s\" ADD COLUMN \"%s\" %s",
		tableName, column.Name, s.formatColumnType(column))
}

// SQLite cannot add a constraint to an existing table.
func (s *SQLiteAdapter) AddForeignKeySQL(tableName string, fk types.ForeignKeyDef) string {
	return ""
}

func (s *SQLiteAdapter) InsertSkipConflictSQL(tableName string, columns []string, conflictColumn string) string {
	placeholders := make([]string, len(columns))
	quoted := make([]string, len(columns))
	for i, col := range columns {
		placeholders[i] = "?"
		quoted[i] = fmt.Sprintf("\"%s\"", col)
	}
	return fmt.Sprintf("INSERT INTO \"%s\" (%s) VALUES (%s) ON CONFLICT (\"%s\") DO NOTHING",
		tableName, strings.Join(quoted, ", "), strings.Join(placeholders, ", "), conflictColumn)
}

func (s *SQLiteAdapter) IsDuplicateObject(err error) bool {
	if err == nil {
		return false
	}
	// SQLite reports duplicate DDL as plain SQL errors with stable messages.
	msg := err.Error()
	return strings.Contains(msg, "duplicate column name") ||
		strings.Contains(msg, "already exists")
}

func (s *SQLiteAdapter) IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func (s *SQLiteAdapter) formatColumnType(column types.ColumnDef) string {
	var parts []string

	if column.IsAutoIncrement && column.IsPrimary {
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	parts = append(parts, column.Type)

	if column.IsPrimary {
		parts = append(parts, "PRIMARY KEY")
	}

	if column.IsUnique && !column.IsPrimary {
		parts = append(parts, "UNIQUE")
	}

	if !column.Nullable && !column.IsPrimary {
		parts = append(parts, "NOT NULL")
	}

	if column.ForeignKeyTable != "" && column.ForeignKeyColumn != "" {
		parts = append(parts, fmt.Sprintf("REFERENCES \"%s\"(\"%s\")", column.ForeignKeyTable, column.ForeignKeyColumn))
		if column.OnDeleteAction != "" {
			parts = append(parts, fmt.Sprintf("ON DELETE %s", column.OnDeleteAction))
		}
	}

	if column.Default != "" {
		parts = append(parts, fmt.Sprintf("DEFAULT %s", column.Default))
	}

	return strings.Join(parts, " ")
}
