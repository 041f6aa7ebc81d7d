package engine

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/restock/internal/database"
	"github.com/Masterminds/squirrel"
)

// Seeder inserts the fixed reference rows. A name collision is resolved by
// looking up the existing row's identity, never by erroring or duplicating:
// after Seed returns, every input name maps to exactly one stable id.
type Seeder struct {
	adapter database.Adapter
	q       database.Queryer
}

func NewSeeder(adapter database.Adapter, q database.Queryer) *Seeder {
	return &Seeder{adapter: adapter, q: q}
}

func (s *Seeder) Seed(ctx context.Context, spec SeedSpec) ([]SeedResult, error) {
	results := make([]SeedResult, 0, len(spec.Records))

	columns := []string{spec.NameColumn}
	if spec.DescriptionColumn != "" {
		columns = append(columns, spec.DescriptionColumn)
	}
	insertSQL := s.adapter.InsertSkipConflictSQL(spec.Table, columns, spec.NameColumn)

	for _, record := range spec.Records {
		args := []interface{}{record.Name}
		if spec.DescriptionColumn != "" {
			args = append(args, record.Description)
		}

		affected, err := s.q.Exec(ctx, insertSQL, args...)
		if err != nil {
			if !s.adapter.IsUniqueViolation(err) {
				return nil, fmt.Errorf("failed to seed %q into %s: %w", record.Name, spec.Table, err)
			}
			// Backends without a conflict-skip primitive surface the raw
			// unique violation; treat it the same as a skipped insert.
			affected = 0
		}
		inserted := affected > 0

		id, err := s.lookupID(ctx, spec, record.Name)
		if err != nil {
			if !inserted {
				return nil, &SeedResolutionError{Name: record.Name, Err: err}
			}
			return nil, fmt.Errorf("failed to resolve id for seeded %q: %w", record.Name, err)
		}

		results = append(results, SeedResult{
			Name:        record.Name,
			ID:          id,
			WasInserted: inserted,
		})
	}

	return results, nil
}

func (s *Seeder) lookupID(ctx context.Context, spec SeedSpec, name string) (int64, error) {
	query, args, err := s.adapter.Builder().
		Select(spec.IDColumn).
		From(spec.Table).
		Where(squirrel.Eq{spec.NameColumn: name}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := s.q.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
