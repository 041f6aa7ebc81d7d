package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

type fakeExecer struct {
	res sql.Result
	err error
}

func (f fakeExecer) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return f.res, f.err
}

type fixedResult struct {
	affected int64
	err      error
}

func (r fixedResult) LastInsertId() (int64, error) { return 0, nil }
func (r fixedResult) RowsAffected() (int64, error) { return r.affected, r.err }

func TestExecAffected(t *testing.T) {
	ctx := context.Background()

	affected, err := execAffected(ctx, fakeExecer{res: fixedResult{affected: 3}}, "UPDATE t SET x = 1")
	if err != nil {
		t.Fatalf("Expected success, got: %v", err)
	}
	if affected != 3 {
		t.Errorf("Expected 3 affected rows, got %d", affected)
	}

	execErr := errors.New("syntax error")
	if _, err := execAffected(ctx, fakeExecer{err: execErr}, "nonsense"); !errors.Is(err, execErr) {
		t.Errorf("Expected exec error to surface, got: %v", err)
	}
}

// A driver that cannot report the affected-row count must fail loudly
// rather than claim zero rows.
func TestExecAffectedSurfacesRowsAffectedError(t *testing.T) {
	countErr := errors.New("rows affected not supported")
	_, err := execAffected(context.Background(),
		fakeExecer{res: fixedResult{err: countErr}}, "UPDATE t SET x = 1")
	if !errors.Is(err, countErr) {
		t.Errorf("Expected RowsAffected error to surface, got: %v", err)
	}
}
