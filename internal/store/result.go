// Package store provides the concurrent CSV-backed record store.
//
// The store is the only component that touches engineer CSV files on disk.
// Every read and write runs under a reader/writer lock shared by all
// operations addressing the same file, so concurrent reads proceed in
// parallel while a write excludes everything else.
package store

import "github.com/Tocma/Engineer-system-sub000/internal/engineer"

// AccessResult is the aggregated outcome of one read operation.
//
// A record in Successes always passed full validation. A row that failed
// any check appears only in RowErrors, one entry per failed row. Records
// whose ID collided with an earlier row still appear in Successes; the
// merge/overwrite decision belongs to the caller.
type AccessResult struct {
	Successes    []engineer.Record
	RowErrors    []string
	DuplicateIDs []string // each colliding ID exactly once, in first-collision order

	FatalError   bool
	FatalMessage string

	// NotFound is set alongside FatalError when the file does not exist,
	// so callers can treat a never-written store as empty instead of
	// racing a stat against the read.
	NotFound bool
}

// Fatal builds a result for an operation that could not proceed at all.
func Fatal(msg string) AccessResult {
	return AccessResult{FatalError: true, FatalMessage: msg}
}

// WriteOutcome is the result of one write operation.
// OK is false both for fatal failures (FatalMessage set) and for the
// no-rows no-op case (FatalMessage empty).
type WriteOutcome struct {
	OK           bool
	FatalMessage string
}
