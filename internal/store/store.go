package store

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Tocma/Engineer-system-sub000/internal/engineer"
)

// maxLineBytes bounds a single CSV line. Lines beyond this indicate a
// corrupt file and abort the read with a fatal error.
const maxLineBytes = 1024 * 1024

// Store reads and writes engineer CSV files under per-file reader/writer
// locking. One Store should be shared by the whole process; the lock
// registry inside it is what makes mutual exclusion hold across callers.
type Store struct {
	locks *lockRegistry
}

// New creates a Store with an empty lock registry.
func New() *Store {
	return &Store{locks: newLockRegistry()}
}

// Read loads the engineer file at path under the shared lock.
//
// The header line is skipped; every subsequent line is processed
// independently. A malformed line contributes one entry to RowErrors and
// never aborts the batch. Missing file and I/O failures are fatal; the
// missing-file result additionally carries NotFound.
// Cancellation while waiting for the lock aborts without touching the file.
func (s *Store) Read(ctx context.Context, path string) AccessResult {
	lock := s.locks.get(path)
	if err := lock.RLock(ctx); err != nil {
		return Fatal(fmt.Sprintf("read aborted while waiting for lock: %v", err))
	}
	defer lock.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			res := Fatal(fmt.Sprintf("file not found: %s", path))
			res.NotFound = true
			return res
		}
		return Fatal(fmt.Sprintf("open %s: %v", path, err))
	}
	defer f.Close()

	var result AccessResult
	tracker := newDuplicateTracker()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	headerSkipped := false
	lineNum := 0 // 1-indexed body line number
	for scanner.Scan() {
		if !headerSkipped {
			headerSkipped = true
			continue
		}
		lineNum++
		processLine(scanner.Text(), lineNum, tracker, &result)
	}
	if err := scanner.Err(); err != nil {
		result.FatalError = true
		result.FatalMessage = fmt.Sprintf("read %s: %v", path, err)
		return result
	}

	result.DuplicateIDs = tracker.Duplicates()

	slog.Debug("csv read complete",
		"path", path,
		"successes", len(result.Successes),
		"row_errors", len(result.RowErrors),
		"duplicate_ids", len(result.DuplicateIDs),
	)
	return result
}

// processLine handles one body line. Anything unexpected while processing
// a single line, including a panic, is demoted to a row error so later
// lines are still processed.
func processLine(line string, lineNum int, tracker *duplicateTracker, result *AccessResult) {
	defer func() {
		if p := recover(); p != nil {
			result.RowErrors = append(result.RowErrors,
				fmt.Sprintf("line %d: unexpected error: %v", lineNum, p))
		}
	}()

	if strings.TrimSpace(line) == "" {
		return
	}

	fields := engineer.ParseRow(line)
	if len(fields) < engineer.ColumnCount {
		result.RowErrors = append(result.RowErrors,
			fmt.Sprintf("line %d: row has %d columns, expected %d",
				lineNum, len(fields), engineer.ColumnCount))
		return
	}

	rec, err := engineer.FromRow(fields)
	if err != nil {
		result.RowErrors = append(result.RowErrors,
			fmt.Sprintf("line %d: %v", lineNum, err))
		return
	}

	// A repeat ID is recorded in the tracker but still appears in
	// Successes; overwrite-vs-skip is the caller's decision.
	tracker.Observe(rec.ID, lineNum)
	result.Successes = append(result.Successes, rec)
}

// Write stores the given rows at path under the exclusive lock.
//
// With no rows it is a no-op returning OK=false and no fatal message.
// The parent directory is created if missing. The file handle is closed
// on every exit path; a mid-write failure leaves partially written bytes
// in place (writes are not transactional).
func (s *Store) Write(ctx context.Context, path string, rows [][]string, appendMode bool) WriteOutcome {
	lock := s.locks.get(path)
	if err := lock.Lock(ctx); err != nil {
		return WriteOutcome{FatalMessage: fmt.Sprintf("write aborted while waiting for lock: %v", err)}
	}
	defer lock.Unlock()

	if len(rows) == 0 {
		slog.Warn("csv write skipped, no rows supplied", "path", path)
		return WriteOutcome{}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return WriteOutcome{FatalMessage: fmt.Sprintf("create directory for %s: %v", path, err)}
	}

	flag := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return WriteOutcome{FatalMessage: fmt.Sprintf("open %s: %v", path, err)}
	}

	writeErr := writeRows(f, rows)
	closeErr := f.Close()

	if writeErr != nil {
		return WriteOutcome{FatalMessage: fmt.Sprintf("write %s: %v", path, writeErr)}
	}
	if closeErr != nil {
		return WriteOutcome{FatalMessage: fmt.Sprintf("close %s: %v", path, closeErr)}
	}

	slog.Debug("csv write complete", "path", path, "rows", len(rows), "append", appendMode)
	return WriteOutcome{OK: true}
}

func writeRows(f *os.File, rows [][]string) error {
	w := bufio.NewWriter(f)
	for _, row := range rows {
		if _, err := w.WriteString(engineer.JoinRow(row)); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}
