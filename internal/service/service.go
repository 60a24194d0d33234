// Package service orchestrates store access for the application.
//
// It is the host-side dispatch layer the store expects: callers invoke
// synchronous Load/Save/Append methods, the limiter bounds how many run at
// once, and each operation is tagged with an ID for log correlation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tocma/Engineer-system-sub000/internal/engineer"
	"github.com/Tocma/Engineer-system-sub000/internal/store"
	"github.com/google/uuid"
)

// ErrDuplicateID is returned by Append when the record's ID already exists
// in the file and overwrite was not requested. The caller is expected to
// confirm with the user before retrying with overwrite.
var ErrDuplicateID = errors.New("duplicate engineer id")

// Service is the entry point for all engineer record operations.
type Service struct {
	store   *store.Store
	limiter *OperationLimiter
}

// New creates a Service around the given store.
func New(st *store.Store, maxConcurrent int, maxWait time.Duration) *Service {
	return &Service{
		store:   st,
		limiter: NewOperationLimiter(maxConcurrent, maxWait),
	}
}

// ActiveOperations reports how many store operations are in flight.
func (s *Service) ActiveOperations() int {
	return s.limiter.ActiveCount()
}

// Load reads all records from the engineer file at path.
// The returned error covers dispatch failures only (limiter timeout,
// cancellation); read problems are reported inside the AccessResult.
func (s *Service) Load(ctx context.Context, path string) (store.AccessResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return store.AccessResult{}, err
	}
	defer s.limiter.Release()

	logger := slog.Default().With("op_id", uuid.NewString(), "path", path)
	logger.Info("load started")

	res := s.store.Read(ctx, path)
	if res.NotFound {
		logger.Info("load found no file")
	} else if res.FatalError {
		logger.Error("load failed", "error", res.FatalMessage)
	} else {
		logger.Info("load complete",
			"records", len(res.Successes),
			"row_errors", len(res.RowErrors),
			"duplicate_ids", len(res.DuplicateIDs),
		)
	}
	return res, nil
}

// Save writes records to path. In truncate mode the header row is written
// first; in append mode rows are added to the existing file as-is.
// Records without a registered date are stamped with the current time.
func (s *Service) Save(ctx context.Context, path string, records []engineer.Record, appendMode bool) (store.WriteOutcome, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return store.WriteOutcome{}, err
	}
	defer s.limiter.Release()

	logger := slog.Default().With("op_id", uuid.NewString(), "path", path)

	now := time.Now()
	rows := make([][]string, 0, len(records)+1)
	if !appendMode {
		rows = append(rows, engineer.Header())
	}
	for _, rec := range records {
		if rec.RegisteredDate.IsZero() {
			rec.RegisteredDate = now
		}
		rows = append(rows, rec.Row())
	}

	out := s.store.Write(ctx, path, rows, appendMode)
	switch {
	case out.FatalMessage != "":
		logger.Error("save failed", "error", out.FatalMessage)
	case !out.OK:
		logger.Warn("save skipped, nothing to write")
	default:
		logger.Info("save complete", "records", len(records), "append", appendMode)
	}
	return out, nil
}

// Append adds one record to the file at path. If the file does not exist
// it is created with a header row. When the ID already exists, Append
// returns ErrDuplicateID unless overwrite is set, in which case the
// existing record is replaced and the whole file rewritten.
//
// The read-then-write sequence takes the lock twice; a concurrent writer
// can interleave between the duplicate check and the write. That matches
// the caller-confirmation flow, which is advisory rather than atomic.
func (s *Service) Append(ctx context.Context, path string, rec engineer.Record, overwrite bool) error {
	existing, err := s.Load(ctx, path)
	if err != nil {
		return err
	}
	if existing.NotFound {
		// First record creates the file with its header row.
		out, err := s.Save(ctx, path, []engineer.Record{rec}, false)
		if err != nil {
			return err
		}
		if out.FatalMessage != "" {
			return fmt.Errorf("append: %s", out.FatalMessage)
		}
		return nil
	}
	if existing.FatalError {
		return fmt.Errorf("append: %s", existing.FatalMessage)
	}

	dupIdx := -1
	for i, r := range existing.Successes {
		if r.ID == rec.ID {
			dupIdx = i
			break
		}
	}

	if dupIdx >= 0 {
		if !overwrite {
			return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}
		records := existing.Successes
		records[dupIdx] = rec
		out, err := s.Save(ctx, path, records, false)
		if err != nil {
			return err
		}
		if out.FatalMessage != "" {
			return fmt.Errorf("append: %s", out.FatalMessage)
		}
		return nil
	}

	out, err := s.Save(ctx, path, []engineer.Record{rec}, true)
	if err != nil {
		return err
	}
	if out.FatalMessage != "" {
		return fmt.Errorf("append: %s", out.FatalMessage)
	}
	return nil
}
