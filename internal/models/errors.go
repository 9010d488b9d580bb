package models

import (
	"errors"
	"fmt"
)

var (
	// ErrOperationInProgress is returned when a sync or hydrate is started
	// (or index-binding settings are changed) while another operation holds
	// the lock. There is no queueing; callers retry explicitly.
	ErrOperationInProgress = errors.New("operation already in progress")

	// ErrStoreUnavailable wraps connectivity failures to either vector store.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch is returned when an embedding's length disagrees
	// with the configured store dimension. Checked before any mutation.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// ConfigError marks an invalid threshold, factor, or dimension value.
// Rejected synchronously, before any mutation.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PartialSyncError reports a sync that pushed some vectors before the
// secondary store rejected a batch. Already-pushed vectors are not rolled
// back; re-running sync is safe because duplicates are fingerprint-skipped.
type PartialSyncError struct {
	Pushed     int
	Duplicates int
	Failed     int
	Err        error
}

func (e *PartialSyncError) Error() string {
	return fmt.Sprintf("sync failed after pushing %d vectors (%d duplicates skipped, %d in failed batch): %v",
		e.Pushed, e.Duplicates, e.Failed, e.Err)
}

func (e *PartialSyncError) Unwrap() error { return e.Err }

// PartialHydrateError reports a hydrate that cleared the primary store but
// failed partway through re-insertion, leaving the primary store with fewer
// memories than intended. The clear-then-insert sequence is deliberately
// not atomic across the two stores; callers must treat this as a degraded
// state and re-run hydrate.
type PartialHydrateError struct {
	Inserted int
	Expected int
	Err      error
}

func (e *PartialHydrateError) Error() string {
	return fmt.Sprintf("hydrate degraded: inserted %d of %d vectors before failure: %v",
		e.Inserted, e.Expected, e.Err)
}

func (e *PartialHydrateError) Unwrap() error { return e.Err }
