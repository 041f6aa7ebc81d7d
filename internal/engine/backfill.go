package engine

import (
	"context"
	"strings"

	"github.com/Lumos-Labs-HQ/restock/internal/database"
	"github.com/Masterminds/squirrel"
)

// Backfiller points existing rows at the seeded reference rows. Rules apply
// strictly in sequence, so when two rules match the same row the later one
// wins. Matching rows are always rewritten, even when already correct; rows
// matching no rule keep their current reference.
type Backfiller struct {
	adapter database.Adapter
	q       database.Queryer
}

func NewBackfiller(adapter database.Adapter, q database.Queryer) *Backfiller {
	return &Backfiller{adapter: adapter, q: q}
}

// Apply runs every rule and returns the total number of updated rows.
// Matching lowers both sides: the stored value via SQL LOWER(), the
// predicate here. ASCII case folding is all the data model calls for.
func (b *Backfiller) Apply(ctx context.Context, spec BackfillSpec, ids map[string]int64) (int64, error) {
	var affected int64

	for _, rule := range spec.Rules {
		id, ok := ids[rule.Target]
		if !ok {
			return affected, &BackfillExecutionError{
				Rule: rule,
				Err:  errUnknownTarget(rule.Target),
			}
		}

		query, args, err := b.adapter.Builder().
			Update(spec.Table).
			Set(spec.RefColumn, id).
			Where(squirrel.Expr("LOWER("+spec.MatchColumn+") = ?", strings.ToLower(rule.Match))).
			ToSql()
		if err != nil {
			return affected, &BackfillExecutionError{Rule: rule, Err: err}
		}

		n, err := b.q.Exec(ctx, query, args...)
		if err != nil {
			return affected, &BackfillExecutionError{Rule: rule, Err: err}
		}
		affected += n
	}

	return affected, nil
}

type errUnknownTarget string

func (e errUnknownTarget) Error() string {
	return "no seeded reference named " + string(e)
}
