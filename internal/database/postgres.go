package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/restock/internal/types"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresAdapter struct {
	pool *pgxpool.Pool
	qb   squirrel.StatementBuilderType
}

func NewPostgresAdapter() *PostgresAdapter {
	return &PostgresAdapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (p *PostgresAdapter) Connect(ctx context.Context, url string) error {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	p.pool = pool
	return nil
}

func (p *PostgresAdapter) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *PostgresAdapter) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresAdapter) Builder() squirrel.StatementBuilderType {
	return p.qb
}

func (p *PostgresAdapter) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *PostgresAdapter) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &pgxRows{Rows: rows}, nil
}

func (p *PostgresAdapter) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	return p.pool.QueryRow(ctx, query, args...)
}

func (p *PostgresAdapter) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxTx{tx: tx}, nil
}

type pgxRows struct {
	pgx.Rows
}

func (r *pgxRows) Columns() ([]string, error) {
	fields := r.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = field.Name
	}
	return columns, nil
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *pgxTx) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &pgxRows{Rows: rows}, nil
}

func (t *pgxTx) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	return t.tx.QueryRow(ctx, query, args...)
}

func (t *pgxTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// Metadata probes run on the supplied Queryer so DDL issued earlier in the
// same transaction is visible to them.
func (p *PostgresAdapter) TableExists(ctx context.Context, q Queryer, tableName string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_name = $1 AND table_schema = 'public'
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func (p *PostgresAdapter) ColumnExists(ctx context.Context, q Queryer, tableName, columnName string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = $1 AND column_name = $2 AND table_schema = 'public'
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}

func (p *PostgresAdapter) ConstraintExists(ctx context.Context, q Queryer, tableName, constraintName string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.table_constraints
			WHERE table_name = $1 AND constraint_name = $2 AND table_schema = 'public'
		)
	`, tableName, constraintName).Scan(&exists)
	return exists, err
}

func (p *PostgresAdapter) ListTableNames(ctx context.Context, q Queryer) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name
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

func (p *PostgresAdapter) CreateTableSQL(table types.TableDef) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("CREATE TABLE IF NOT EXISTS \"%s\" (", table.Name))

	for i, column := range table.Columns {
		comma := ","
		if i == len(table.Columns)-1 {
			comma = ""
		}
		lines = append(lines, fmt.Sprintf("  \"%s\" %s%s", column.Name, p.formatColumnType(column), comma))
	}

	lines = append(lines, ")")
	return strings.Join(lines, "\n")
}

func (p *PostgresAdapter) AddColumnSQL(tableName string, column types.ColumnDef) string {
	return fmt.Sprintf("ALTER TABLE \"%s\" ADD COLUMN IF NOT EXISTS \"%s\" %s",
		tableName, column.Name, p.formatColumnType(column))
}

func (p *PostgresAdapter) AddForeignKeySQL(tableName string, fk types.ForeignKeyDef) string {
	sql := fmt.Sprintf("ALTER TABLE \"%s\" ADD CONSTRAINT \"%s\" FOREIGN KEY (\"%s\") REFERENCES \"%s\"(\"%s\")",
		tableName, fk.Name, fk.Column, fk.RefTable, fk.RefColumn)
	if fk.OnDeleteAction != "" {
		sql += fmt.Sprintf(" ON DELETE %s", fk.OnDeleteAction)
	}
	return sql
}

func (p *PostgresAdapter) InsertSkipConflictSQL(tableName string, columns []string, conflictColumn string) string {
	placeholders := make([]string, len(columns))
	quoted := make([]string, len(columns))
	for i, col := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		quoted[i] = fmt.Sprintf("\"%s\"", col)
	}
	return fmt.Sprintf("INSERT INTO \"%s\" (%s) VALUES (%s) ON CONFLICT (\"%s\") DO NOTHING",
		tableName, strings.Join(quoted, ", "), strings.Join(placeholders, ", "), conflictColumn)
}

// Duplicate-definition errors are a benign outcome for conditional DDL: they
// mean another process created the object between the probe and the mutation.
func (p *PostgresAdapter) IsDuplicateObject(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "42701", "42P07", "42710": // duplicate column, table, object
		return true
	}
	return false
}

func (p *PostgresAdapter) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (p *PostgresAdapter) formatColumnType(column types.ColumnDef) string {
	var parts []string

	typ := column.Type
	if column.IsAutoIncrement {
		if strings.EqualFold(typ, "BIGINT") {
			typ = "BIGSERIAL"
		} else {
			typ = "SERIAL"
		}
	}
	parts = append(parts, typ)

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
