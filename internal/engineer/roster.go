package engineer

// roster.go provides in-memory sorting and paging over already-loaded
// records for the API layer. It never touches the file; the store is the
// only component that does.

import "sort"

// Sort keys accepted by SortRecords.
const (
	SortByID   = "id"
	SortByName = "name"
	SortByJoin = "join"
)

// SortRecords returns a sorted copy of records. Unknown keys fall back to
// ID order. The sort is stable so repeated ids keep their file order.
func SortRecords(records []Record, key string, descending bool) []Record {
	out := make([]Record, len(records))
	copy(out, records)

	var less func(a, b Record) bool
	switch key {
	case SortByName:
		less = func(a, b Record) bool { return a.NameKana < b.NameKana }
	case SortByJoin:
		less = func(a, b Record) bool { return a.JoinDate.Before(b.JoinDate) }
	default:
		less = func(a, b Record) bool { return a.ID < b.ID }
	}

	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// Page slices records for 1-indexed page numbers. Out-of-range pages
// return an empty slice.
func Page(records []Record, page, perPage int) []Record {
	if page < 1 || perPage < 1 {
		return nil
	}
	start := (page - 1) * perPage
	if start >= len(records) {
		return nil
	}
	end := start + perPage
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}
