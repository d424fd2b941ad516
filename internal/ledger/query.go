package ledger

import (
	"sort"
	"strings"
	"time"

	"rfid-logbook/internal/models"
)

// SortOption selects the order of a filtered view
type SortOption string

const (
	SortDateDesc SortOption = "date_desc"
	SortDateAsc  SortOption = "date_asc"
	SortNameAsc  SortOption = "name_asc"
	SortNameDesc SortOption = "name_desc"
)

// ParseSortOption maps a query value to a SortOption, defaulting to newest first
func ParseSortOption(s string) SortOption {
	switch SortOption(strings.ToLower(strings.TrimSpace(s))) {
	case SortDateAsc:
		return SortDateAsc
	case SortNameAsc:
		return SortNameAsc
	case SortNameDesc:
		return SortNameDesc
	default:
		return SortDateDesc
	}
}

// NicknameLookup resolves a tag to its display name
type NicknameLookup interface {
	Get(tagID string) (string, bool)
}

// Filter describes a display projection of a ledger
type Filter struct {
	Search     string     // case-insensitive substring of tag id or nickname
	Date       string     // yyyy-MM-dd, empty for any date
	Sort       SortOption // defaults to SortDateDesc
	ActiveOnly bool       // borrows only
}

// FilterAttendance projects entries for display. Entries whose timestamp
// does not parse are left out.
func FilterAttendance(entries []models.AttendanceEntry, names NicknameLookup, f Filter) []models.AttendanceEntry {
	type row struct {
		entry models.AttendanceEntry
		at    time.Time
		name  string
	}

	var rows []row
	for _, e := range entries {
		at, err := time.Parse(models.TimestampLayout, e.Timestamp)
		if err != nil {
			continue
		}
		nickname := lookup(names, e.TagID)
		if !matchesSearch(f.Search, e.TagID, nickname) {
			continue
		}
		if f.Date != "" && e.Date() != f.Date {
			continue
		}
		rows = append(rows, row{entry: e, at: at, name: nameKey(nickname, e.TagID)})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		switch f.Sort {
		case SortDateAsc:
			return rows[i].at.Before(rows[j].at)
		case SortNameAsc:
			return rows[i].name < rows[j].name
		case SortNameDesc:
			return rows[i].name > rows[j].name
		default:
			return rows[i].at.After(rows[j].at)
		}
	})

	out := make([]models.AttendanceEntry, len(rows))
	for i, r := range rows {
		out[i] = r.entry
	}
	return out
}

// FilterBorrows projects borrow records for display. Dates are compared in loc.
func FilterBorrows(logs []models.BorrowLog, names NicknameLookup, f Filter, loc *time.Location) []models.BorrowLog {
	if loc == nil {
		loc = time.Local
	}

	var out []models.BorrowLog
	for _, l := range logs {
		if f.ActiveOnly && l.IsReturned {
			continue
		}
		if !matchesSearch(f.Search, l.TagID, lookup(names, l.TagID)) {
			continue
		}
		if f.Date != "" && l.BorrowedAt().In(loc).Format(models.DateLayout) != f.Date {
			continue
		}
		out = append(out, cloneLog(l))
	}

	sort.SliceStable(out, func(i, j int) bool {
		switch f.Sort {
		case SortDateAsc:
			return out[i].BorrowTimestamp < out[j].BorrowTimestamp
		case SortNameAsc:
			return nameKey(lookup(names, out[i].TagID), out[i].TagID) < nameKey(lookup(names, out[j].TagID), out[j].TagID)
		case SortNameDesc:
			return nameKey(lookup(names, out[i].TagID), out[i].TagID) > nameKey(lookup(names, out[j].TagID), out[j].TagID)
		default:
			return out[i].BorrowTimestamp > out[j].BorrowTimestamp
		}
	})
	return out
}

func lookup(names NicknameLookup, tagID string) string {
	if names == nil {
		return ""
	}
	nickname, _ := names.Get(tagID)
	return nickname
}

func matchesSearch(query, tagID, nickname string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(tagID), q) || strings.Contains(strings.ToLower(nickname), q)
}

// nameKey sorts by lowercase nickname, falling back to the raw tag id
func nameKey(nickname, tagID string) string {
	if nickname == "" {
		return tagID
	}
	return strings.ToLower(nickname)
}
