package database

import (
	"context"

	"github.com/Lumos-Labs-HQ/restock/internal/types"
	"github.com/Masterminds/squirrel"
)

// Rows and Row mirror the subset of database/sql and pgx result types the
// engine needs, so both drivers can sit behind one interface.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Columns() ([]string, error)
	Close()
	Err() error
}

type Row interface {
	Scan(dest ...interface{}) error
}

// Queryer is satisfied by both an Adapter (pool-backed) and a Tx, so
// metadata probes and DML can run inside or outside a transaction.
type Queryer interface {
	Exec(ctx context.Context, query string, args ...interface{}) (int64, error)
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) Row
}

type Tx interface {
	Queryer
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Adapter interface {
	Queryer

	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (Tx, error)

	// Builder returns a statement builder with this dialect's placeholder
	// format already applied.
	Builder() squirrel.StatementBuilderType

	// Structural metadata probes. Absence is a successful false; an error
	// means the metadata query itself failed.
	TableExists(ctx context.Context, q Queryer, tableName string) (bool, error)
	ColumnExists(ctx context.Context, q Queryer, tableName, columnName string) (bool, error)
	ConstraintExists(ctx context.Context, q Queryer, tableName, constraintName string) (bool, error)

	ListTableNames(ctx context.Context, q Queryer) ([]string, error)

	// DDL generation
	CreateTableSQL(table types.TableDef) string
	AddColumnSQL(tableName string, column types.ColumnDef) string
	// AddForeignKeySQL returns "" when the dialect cannot add a constraint
	// to an existing table (sqlite).
	AddForeignKeySQL(tableName string, fk types.ForeignKeyDef) string

	// InsertSkipConflictSQL builds an insert that silently does nothing when
	// the unique constraint on conflictColumn would be violated.
	InsertSkipConflictSQL(tableName string, columns []string, conflictColumn string) string

	// Error classification
	IsDuplicateObject(err error) bool
	IsUniqueViolation(err error) bool
}

func NewAdapter(provider string) Adapter {
	switch provider {
	case "postgresql", "postgres":
		return NewPostgresAdapter()
	case "mysql":
		return NewMySQLAdapter()
	case "sqlite", "sqlite3":
		return NewSQLiteAdapter()
	default:
		return NewPostgresAdapter()
	}
}
