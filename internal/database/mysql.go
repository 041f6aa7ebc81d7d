package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/restock/internal/types"
	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
)

type MySQLAdapter struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
}

func NewMySQLAdapter() *MySQLAdapter {
	return &MySQLAdapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (m *MySQLAdapter) Connect(ctx context.Context, url string) error {
	db, err := sql.Open("mysql", MySQLDSN(url))
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	m.db = db
	return nil
}

// sslModes maps server-style ssl parameters onto the driver's tls parameter.
var sslModes = strings.NewReplacer(
	"ssl-mode=REQUIRED", "tls=skip-verify",
	"ssl-mode=DISABLED", "tls=false",
	"ssl-mode=VERIFY_CA", "tls=true",
	"ssl-mode=VERIFY_IDENTITY", "tls=true",
	"sslmode=require", "tls=skip-verify",
	"sslmode=disable", "tls=false",
	"sslmode=verify-ca", "tls=true",
	"sslmode=verify-full", "tls=true",
)

// MySQLDSN converts a mysql:// URL into the form go-sql-driver parses:
// host:port becomes tcp(host:port). A string already in DSN form passes
// through unchanged.
func MySQLDSN(url string) string {
	if !strings.HasPrefix(url, "mysql://") {
		return url
	}
	dsn := strings.TrimPrefix(url, "mysql://")

	credentials := ""
	remainder := dsn
	if at := strings.Index(dsn, "@"); at >= 0 {
		credentials = dsn[:at]
		remainder = dsn[at+1:]
	}

	hostPort := remainder
	dbAndParams := ""
	if slash := strings.Index(remainder, "/"); slash >= 0 {
		hostPort = remainder[:slash]
		dbAndParams = remainder[slash+1:]
	}
	if strings.Contains(hostPort, "(") {
		// Protocol already spelled out, e.g. tcp(host:port).
		return dsn
	}

	out := fmt.Sprintf("tcp(%s)/%s", hostPort, sslModes.Replace(dbAndParams))
	if credentials != "" {
		out = credentials + "@" + out
	}
	return out
}

func (m *MySQLAdapter) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func (m *MySQLAdapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *MySQLAdapter) Builder() squirrel.StatementBuilderType {
	return m.qb
}

func (m *MySQLAdapter) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	return execAffected(ctx, m.db, query, args...)
}

func (m *MySQLAdapter) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &sqlRows{rows: rows}, nil
}

func (m *MySQLAdapter) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	return m.db.QueryRowContext(ctx, query, args...)
}

func (m *MySQLAdapter) Begin(ctx context.Context) (Tx, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

func (m *MySQLAdapter) TableExists(ctx context.Context, q Queryer, tableName string) (bool, error) {
	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_name = ? AND table_schema = DATABASE()
	`, tableName).Scan(&count)
	return count > 0, err
}

func (m *MySQLAdapter) ColumnExists(ctx context.Context, q Queryer, tableName, columnName string) (bool, error) {
	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM information_schema.columns
		WHERE table_name = ? AND column_name = ? AND table_schema = DATABASE()
	`, tableName, columnName).Scan(&count)
	return count > 0, err
}

func (m *MySQLAdapter) ConstraintExists(ctx context.Context, q Queryer, tableName, constraintName string) (bool, error) {
	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM information_schema.table_constraints
		WHERE table_name = ? AND constraint_name = ? AND table_schema = DATABASE()
	`, tableName, constraintName).Scan(&count)
	return count > 0, err
}

func (m *MySQLAdapter) ListTableNames(ctx context.Context, q Queryer) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
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

func (m *MySQLAdapter) CreateTableSQL(table types.TableDef) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` (", table.Name))

	for i, column := range table.Columns {
		comma := ","
		if i == len(table.Columns)-1 {
			comma = ""
		}
		lines = append(lines, fmt.Sprintf("  `%s` %s%s", column.Name, m.formatColumnType(column), comma))
	}

	lines = append(lines, ")")
	return strings.Join(lines, "\n")
}

// MySQL before 8.0 has no ADD COLUMN IF NOT EXISTS; the duplicate-column
// error path covers the race window instead.
func (m *MySQLAdapter) AddColumnSQL(tableName string, column types.ColumnDef) string {
	return fmt.Sprintf("ALTER TABLE `%s` ADD COLUMN `%s` %s",
		tableName, column.Name, m.formatColumnType(column))
}

func (m *MySQLAdapter) AddForeignKeySQL(tableName string, fk types.ForeignKeyDef) string {
	sql := fmt.Sprintf("ALTER TABLE `%s` ADD CONSTRAINT `%s` FOREIGN KEY (`%s`) REFERENCES `%s`(`%s`)",
		tableName, fk.Name, fk.Column, fk.RefTable, fk.RefColumn)
	if fk.OnDeleteAction != "" {
		sql += fmt.Sprintf(" ON DELETE %s", fk.OnDeleteAction)
	}
	return sql
}

func (m *MySQLAdapter) InsertSkipConflictSQL(tableName string, columns []string, conflictColumn string) string {
	placeholders := make([]string, len(columns))
	quoted := make([]string, len(columns))
	for i, col := range columns {
		placeholders[i] = "?"
		quoted[i] = fmt.Sprintf("`%s`", col)
	}
	return fmt.Sprintf("INSERT IGNORE INTO `%s` (%s) VALUES (%s)",
		tableName, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
}

func (m *MySQLAdapter) IsDuplicateObject(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	switch mysqlErr.Number {
	case 1050, 1060, 1061, 1826: // table, column, key, foreign key already exists
		return true
	}
	return false
}

func (m *MySQLAdapter) IsUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

func (m *MySQLAdapter) formatColumnType(column types.ColumnDef) string {
	var parts []string

	typ := column.Type
	if strings.EqualFold(typ, "TEXT") && column.IsUnique {
		// MySQL cannot put a unique key on an unbounded TEXT column.
		typ = "VARCHAR(255)"
	}
	parts = append(parts, typ)

	if column.IsAutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}

	if column.IsPrimary {
		parts = append(parts, "PRIMARY KEY")
	}

	if column.IsUnique && !column.IsPrimary {
		parts = append(parts, "UNIQUE")
	}

	if !column.Nullable && !column.IsPrimary {
		parts = append(parts, "NOT NULL")
	}

	if column.Default != "" {
		parts = append(parts, fmt.Sprintf("DEFAULT %s", column.Default))
	}

	return strings.Join(parts, " ")
}
