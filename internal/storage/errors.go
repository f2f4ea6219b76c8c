// Package storage defines the error taxonomy shared by the store and the
// analytics engines that read from and write back into it.
package storage

import "fmt"

// DuplicateError is returned when an insert targets a key that already
// exists. The existing row is left untouched.
type DuplicateError struct {
	Entity string
	Key    string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Entity, e.Key)
}

// LockTimeoutError is returned when a write transaction cannot acquire the
// database lock inside the configured busy-timeout window. It is fatal for
// the operation; the store never retries internally.
type LockTimeoutError struct {
	Operation string
	Err       error
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("lock wait timeout during %s: %v", e.Operation, e.Err)
}

func (e *LockTimeoutError) Unwrap() error { return e.Err }

// ValidationError is returned by the scoring engines when their input is
// empty or unusable (zero competitors, unparseable markup). No degraded
// score is produced.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// MigrationError is returned when schema introspection or an ALTER fails at
// startup. A partially migrated schema is unsafe, so initialization aborts.
type MigrationError struct {
	Table string
	Err   error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration of table %s failed: %v", e.Table, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }
