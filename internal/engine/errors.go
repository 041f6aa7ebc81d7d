package engine

import "fmt"

// Step names reported inside MigrationError.
const (
	StepSchema   = "schema"
	StepSeed     = "seed"
	StepBackfill = "backfill"
	StepCommit   = "commit"
)

// MigrationError is the single error surface of a run. The wrapped cause is
// one of the typed step errors below.
type MigrationError struct {
	Migration string
	Step      string
	Err       error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %s failed at %s step: %v", e.Migration, e.Step, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// MetadataQueryError means an existence probe could not be answered at all.
// Absence of an object is never an error.
type MetadataQueryError struct {
	Kind ObjectKind
	Name string
	Err  error
}

func (e *MetadataQueryError) Error() string {
	return fmt.Sprintf("failed to probe %s %q: %v", e.Kind, e.Name, e.Err)
}

func (e *MetadataQueryError) Unwrap() error {
	return e.Err
}

// SchemaMutationError is a DDL failure that was not a benign duplicate.
type SchemaMutationError struct {
	Object string
	Err    error
}

func (e *SchemaMutationError) Error() string {
	return fmt.Sprintf("failed to apply schema change for %q: %v", e.Object, e.Err)
}

func (e *SchemaMutationError) Unwrap() error {
	return e.Err
}

// SeedResolutionError means a seed insert was skipped on conflict but the
// existing row could not be looked up afterwards.
type SeedResolutionError struct {
	Name string
	Err  error
}

func (e *SeedResolutionError) Error() string {
	return fmt.Sprintf("seed conflict on %q could not be resolved by lookup: %v", e.Name, e.Err)
}

func (e *SeedResolutionError) Unwrap() error {
	return e.Err
}

type BackfillExecutionError struct {
	Rule Rule
	Err  error
}

func (e *BackfillExecutionError) Error() string {
	return fmt.Sprintf("backfill rule %q -> %q failed: %v", e.Rule.Match, e.Rule.Target, e.Err)
}

func (e *BackfillExecutionError) Unwrap() error {
	return e.Err
}
