package engine

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/restock/internal/database"
)

type ObjectKind string

const (
	KindTable      ObjectKind = "table"
	KindColumn     ObjectKind = "column"
	KindConstraint ObjectKind = "constraint"
)

// Prober answers whether a named schema object exists right now. It is
// read-only; "not found" is a successful false, never an error.
type Prober struct {
	adapter database.Adapter
	q       database.Queryer
}

func NewProber(adapter database.Adapter, q database.Queryer) *Prober {
	return &Prober{adapter: adapter, q: q}
}

// Exists probes structural metadata, not data rows. containingTable is
// required for columns and constraints and ignored for tables.
func (p *Prober) Exists(ctx context.Context, kind ObjectKind, name, containingTable string) (bool, error) {
	var exists bool
	var err error

	switch kind {
	case KindTable:
		exists, err = p.adapter.TableExists(ctx, p.q, name)
	case KindColumn:
		exists, err = p.adapter.ColumnExists(ctx, p.q, containingTable, name)
	case KindConstraint:
		exists, err = p.adapter.ConstraintExists(ctx, p.q, containingTable, name)
	default:
		return false, &MetadataQueryError{Kind: kind, Name: name, Err: fmt.Errorf("unknown object kind")}
	}

	if err != nil {
		return false, &MetadataQueryError{Kind: kind, Name: name, Err: err}
	}
	return exists, nil
}
