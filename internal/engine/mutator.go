package engine

import (
	"context"

	"github.com/Lumos-Labs-HQ/restock/internal/database"
	"github.com/Lumos-Labs-HQ/restock/internal/types"
)

type MutationResult struct {
	Applied bool
}

// Mutator applies a structural change only when the Prober reports it
// absent. The probe is a cheap fast path, not the sole guard: the DDL uses
// the dialect's IF NOT EXISTS form where one exists, and a duplicate-object
// error from a racing process is collapsed to Applied=false.
type Mutator struct {
	adapter database.Adapter
	q       database.Queryer
	prober  *Prober
}

func NewMutator(adapter database.Adapter, q database.Queryer) *Mutator {
	return &Mutator{
		adapter: adapter,
		q:       q,
		prober:  NewProber(adapter, q),
	}
}

func (m *Mutator) EnsureTable(ctx context.Context, table types.TableDef) (MutationResult, error) {
	exists, err := m.prober.Exists(ctx, KindTable, table.Name, "")
	if err != nil {
		return MutationResult{}, err
	}
	if exists {
		return MutationResult{Applied: false}, nil
	}

	return m.exec(ctx, table.Name, m.adapter.CreateTableSQL(table))
}

func (m *Mutator) EnsureColumn(ctx context.Context, tableName string, column types.ColumnDef) (MutationResult, error) {
	exists, err := m.prober.Exists(ctx, KindColumn, column.Name, tableName)
	if err != nil {
		return MutationResult{}, err
	}
	if exists {
		return MutationResult{Applied: false}, nil
	}

	return m.exec(ctx, tableName+"."+column.Name, m.adapter.AddColumnSQL(tableName, column))
}

func (m *Mutator) EnsureForeignKey(ctx context.Context, tableName string, fk types.ForeignKeyDef) (MutationResult, error) {
	ddl := m.adapter.AddForeignKeySQL(tableName, fk)
	if ddl == "" {
		// Dialect cannot add a constraint to an existing table.
		return MutationResult{Applied: false}, nil
	}

	exists, err := m.prober.Exists(ctx, KindConstraint, fk.Name, tableName)
	if err != nil {
		return MutationResult{}, err
	}
	if exists {
		return MutationResult{Applied: false}, nil
	}

	return m.exec(ctx, fk.Name, ddl)
}

func (m *Mutator) exec(ctx context.Context, object, ddl string) (MutationResult, error) {
	if _, err := m.q.Exec(ctx, ddl); err != nil {
		if m.adapter.IsDuplicateObject(err) {
			return MutationResult{Applied: false}, nil
		}
		return MutationResult{}, &SchemaMutationError{Object: object, Err: err}
	}
	return MutationResult{Applied: true}, nil
}
