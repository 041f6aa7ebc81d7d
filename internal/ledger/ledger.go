// Package ledger tracks which migration steps have already been applied.
// It sits outside the engine: the engine is one versioned step, the ledger
// decides whether that step still needs to run.
package ledger

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/restock/internal/database"
	"github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const tableName = "restock_migrations"

type Entry struct {
	Name      string
	Checksum  string
	AppliedAt time.Time
}

type Ledger struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
}

// Open connects with a plain database/sql driver; driver is one of
// "postgres", "mysql", "sqlite3".
func Open(driver, url string) (*Ledger, error) {
	db, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	qb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
	if driver == "postgres" {
		qb = qb.PlaceholderFormat(squirrel.Dollar)
	}

	return &Ledger{db: db, qb: qb}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// EnsureTable creates the ledger table if it doesn't exist.
func (l *Ledger) EnsureTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name VARCHAR(255) PRIMARY KEY,
			checksum VARCHAR(64) NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, tableName)

	if _, err := l.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// IsApplied reports whether a step with this name has been recorded.
func (l *Ledger) IsApplied(name string) (bool, error) {
	query, args, err := l.qb.Select("COUNT(*)").From(tableName).
		Where(squirrel.Eq{"name": name}).ToSql()
	if err != nil {
		return false, err
	}

	var count int
	if err := l.db.QueryRow(query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	return count > 0, nil
}

// Record marks a step as applied. Recording an already-recorded step
// updates its checksum rather than failing, so --force re-runs stay clean.
func (l *Ledger) Record(name, checksum string) error {
	applied, err := l.IsApplied(name)
	if err != nil {
		return err
	}

	if applied {
		query, args, err := l.qb.Update(tableName).
			Set("checksum", checksum).
			Where(squirrel.Eq{"name": name}).ToSql()
		if err != nil {
			return err
		}
		if _, err := l.db.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to update migration record: %w", err)
		}
		return nil
	}

	query, args, err := l.qb.Insert(tableName).
		Columns("name", "checksum").
		Values(name, checksum).ToSql()
	if err != nil {
		return err
	}
	if _, err := l.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return nil
}

// Applied returns all recorded steps in application order.
func (l *Ledger) Applied() ([]Entry, error) {
	query, _, err := l.qb.Select("name", "checksum", "applied_at").
		From(tableName).OrderBy("applied_at").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := l.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Name, &entry.Checksum, &entry.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration record: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Checksum fingerprints the content that defined a step, so a changed rules
// file shows up in status output.
func Checksum(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

// DSN converts the configured URL into the form the plain database/sql
// driver parses; the pgx-style postgres URL is accepted by lib/pq as is.
func DSN(driver, url string) string {
	switch driver {
	case "sqlite3":
		return strings.TrimPrefix(url, "sqlite://")
	case "mysql":
		return database.MySQLDSN(url)
	default:
		return url
	}
}
