// Package ledger implements the attendance and borrow ledgers.
//
// Ledgers are plain in-memory collections and are not safe for concurrent
// use; the owning state holder serializes access. Every mutating method
// returns a copy of the full collection so the caller can persist it.
package ledger

import (
	"sort"

	"rfid-logbook/internal/models"
)

// Attendance keeps at most one check-in per tag per calendar date.
type Attendance struct {
	entries []models.AttendanceEntry
}

// NewAttendance creates a ledger from previously persisted entries.
// Entries are taken as-is; the one-per-day invariant is re-established on
// the next RecordScan.
func NewAttendance(entries []models.AttendanceEntry) *Attendance {
	return &Attendance{entries: cloneEntries(entries)}
}

type dayKey struct {
	tagID string
	date  string
}

// RecordScan inserts or overwrites the check-in of tagID on the date of
// timestamp and returns the new list sorted newest first.
func (a *Attendance) RecordScan(tagID, timestamp string) []models.AttendanceEntry {
	buckets := make(map[dayKey]models.AttendanceEntry, len(a.entries)+1)
	for _, e := range a.entries {
		buckets[dayKey{e.TagID, e.Date()}] = e
	}

	entry := models.AttendanceEntry{TagID: tagID, Timestamp: timestamp}
	buckets[dayKey{tagID, entry.Date()}] = entry

	merged := make([]models.AttendanceEntry, 0, len(buckets))
	for _, e := range buckets {
		merged = append(merged, e)
	}
	sortNewestFirst(merged)

	a.entries = merged
	return a.Entries()
}

// Delete removes the entry matching tag and timestamp exactly. Unknown
// entries leave the ledger unchanged.
func (a *Attendance) Delete(target models.AttendanceEntry) []models.AttendanceEntry {
	for i, e := range a.entries {
		if e == target {
			a.entries = append(a.entries[:i:i], a.entries[i+1:]...)
			break
		}
	}
	return a.Entries()
}

// Clear drops every entry
func (a *Attendance) Clear() []models.AttendanceEntry {
	a.entries = nil
	return []models.AttendanceEntry{}
}

// Entries returns a copy of the current list
func (a *Attendance) Entries() []models.AttendanceEntry {
	return cloneEntries(a.entries)
}

// Len returns the number of entries
func (a *Attendance) Len() int {
	return len(a.entries)
}

// sortNewestFirst orders by timestamp string descending. The comparison is
// lexicographic and relies on the fixed-width, zero-padded timestamp layout.
func sortNewestFirst(entries []models.AttendanceEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp != entries[j].Timestamp {
			return entries[i].Timestamp > entries[j].Timestamp
		}
		return entries[i].TagID < entries[j].TagID
	})
}

func cloneEntries(entries []models.AttendanceEntry) []models.AttendanceEntry {
	out := make([]models.AttendanceEntry, len(entries))
	copy(out, entries)
	return out
}
