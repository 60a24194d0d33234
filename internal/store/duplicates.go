package store

// duplicateTracker records the first body line each canonical ID was seen
// on during a single read pass. A fresh tracker is created per Read call;
// duplicate detection never spans operations.
type duplicateTracker struct {
	firstLine  map[string]int
	duplicates []string
	marked     map[string]bool
}

func newDuplicateTracker() *duplicateTracker {
	return &duplicateTracker{
		firstLine: make(map[string]int),
		marked:    make(map[string]bool),
	}
}

// Observe records an ID occurrence and reports whether it is a repeat.
// The first repeat adds the ID to the duplicates list; further repeats of
// the same ID do not add it again.
func (t *duplicateTracker) Observe(id string, line int) bool {
	if _, seen := t.firstLine[id]; !seen {
		t.firstLine[id] = line
		return false
	}
	if !t.marked[id] {
		t.marked[id] = true
		t.duplicates = append(t.duplicates, id)
	}
	return true
}

// Duplicates returns each colliding ID exactly once, in the order the
// first collision was observed.
func (t *duplicateTracker) Duplicates() []string {
	return t.duplicates
}
