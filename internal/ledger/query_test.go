package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rfid-logbook/internal/models"
)

type names map[string]string

func (n names) Get(tagID string) (string, bool) {
	v, ok := n[tagID]
	return v, ok
}

func TestParseSortOption(t *testing.T) {
	assert.Equal(t, SortDateDesc, ParseSortOption(""))
	assert.Equal(t, SortDateDesc, ParseSortOption("bogus"))
	assert.Equal(t, SortDateAsc, ParseSortOption("date_asc"))
	assert.Equal(t, SortNameAsc, ParseSortOption(" NAME_ASC "))
	assert.Equal(t, SortNameDesc, ParseSortOption("name_desc"))
}

func TestFilterAttendance(t *testing.T) {
	entries := []models.AttendanceEntry{
		entry("AA:01", "2024-01-02 08:00:00"),
		entry("BB:02", "2024-01-01 09:00:00"),
		entry("CC:03", "2024-01-02 07:00:00"),
		entry("DD:04", "garbage"),
	}
	dir := names{"AA:01": "zoe", "BB:02": "Alice"}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "Default newest first", filter: Filter{}, want: []string{"AA:01", "CC:03", "BB:02"}},
		{name: "Oldest first", filter: Filter{Sort: SortDateAsc}, want: []string{"BB:02", "CC:03", "AA:01"}},
		{name: "Name ascending falls back to tag id", filter: Filter{Sort: SortNameAsc}, want: []string{"CC:03", "BB:02", "AA:01"}},
		{name: "Name descending", filter: Filter{Sort: SortNameDesc}, want: []string{"AA:01", "BB:02", "CC:03"}},
		{name: "Search nickname case-insensitive", filter: Filter{Search: "ALI"}, want: []string{"BB:02"}},
		{name: "Search tag id", filter: Filter{Search: "cc:"}, want: []string{"CC:03"}},
		{name: "Date filter", filter: Filter{Date: "2024-01-02"}, want: []string{"AA:01", "CC:03"}},
		{name: "No match", filter: Filter{Search: "nobody"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterAttendance(entries, dir, tt.filter)
			tags := make([]string, len(got))
			for i, e := range got {
				tags[i] = e.TagID
			}
			assert.Equal(t, tt.want, tags)
		})
	}
}

func TestFilterBorrows(t *testing.T) {
	day1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC).UnixMilli()
	day2 := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC).UnixMilli()
	ret := day2 + 1000

	logs := []models.BorrowLog{
		{ID: "1", TagID: "AA", ItemName: "Laptop", BorrowTimestamp: day1},
		{ID: "2", TagID: "BB", ItemName: "Charger", BorrowTimestamp: day2, IsReturned: true, ReturnTimestamp: &ret},
		{ID: "3", TagID: "CC", ItemName: "Proyektor", BorrowTimestamp: day2 + 5000},
	}
	dir := names{"AA": "Budi", "CC": "andi"}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "Default newest first", filter: Filter{}, want: []string{"3", "2", "1"}},
		{name: "Oldest first", filter: Filter{Sort: SortDateAsc}, want: []string{"1", "2", "3"}},
		{name: "Name ascending", filter: Filter{Sort: SortNameAsc}, want: []string{"2", "3", "1"}},
		{name: "Name descending", filter: Filter{Sort: SortNameDesc}, want: []string{"1", "3", "2"}},
		{name: "Date", filter: Filter{Date: "2024-01-01"}, want: []string{"1"}},
		{name: "Active only", filter: Filter{ActiveOnly: true}, want: []string{"3", "1"}},
		{name: "Search nickname", filter: Filter{Search: "BUD"}, want: []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterBorrows(logs, dir, tt.filter, time.UTC)
			ids := make([]string, 0, len(got))
			for _, l := range got {
				ids = append(ids, l.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFilterBorrowsDateUsesLocation(t *testing.T) {
	// 23:30 UTC on Jan 1 is already Jan 2 in UTC+7.
	ts := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC).UnixMilli()
	logs := []models.BorrowLog{{ID: "1", TagID: "AA", ItemName: "Laptop", BorrowTimestamp: ts}}
	loc := time.FixedZone("WIB", 7*3600)

	assert.Len(t, FilterBorrows(logs, nil, Filter{Date: "2024-01-02"}, loc), 1)
	assert.Empty(t, FilterBorrows(logs, nil, Filter{Date: "2024-01-01"}, loc))
}
