package engineer

import (
	"testing"
	"time"
)

func rosterFixture() []Record {
	return []Record{
		{ID: "00003", NameKana: "ウエダ", JoinDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "00001", NameKana: "タナカ", JoinDate: time.Date(2015, 4, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "00002", NameKana: "アオキ", JoinDate: time.Date(2018, 10, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestSortRecords(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		descending bool
		want       []string
	}{
		{"by id ascending", SortByID, false, []string{"00001", "00002", "00003"}},
		{"by id descending", SortByID, true, []string{"00003", "00002", "00001"}},
		{"by kana", SortByName, false, []string{"00002", "00001", "00003"}},
		{"by join date", SortByJoin, false, []string{"00001", "00002", "00003"}},
		{"unknown key falls back to id", "bogus", false, []string{"00001", "00002", "00003"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(SortRecords(rosterFixture(), tt.key, tt.descending))
			for i, want := range tt.want {
				if got[i] != want {
					t.Fatalf("order = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSortRecords_DoesNotMutateInput(t *testing.T) {
	in := rosterFixture()
	SortRecords(in, SortByID, false)
	if in[0].ID != "00003" {
		t.Error("SortRecords mutated its input")
	}
}

func TestPage(t *testing.T) {
	records := rosterFixture()

	tests := []struct {
		name    string
		page    int
		perPage int
		wantLen int
	}{
		{"first page", 1, 2, 2},
		{"last partial page", 2, 2, 1},
		{"page past end", 3, 2, 0},
		{"oversized page", 1, 10, 3},
		{"zero page invalid", 0, 2, 0},
		{"zero per page invalid", 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Page(records, tt.page, tt.perPage)
			if len(got) != tt.wantLen {
				t.Errorf("Page(%d, %d) returned %d records, want %d",
					tt.page, tt.perPage, len(got), tt.wantLen)
			}
		})
	}
}
