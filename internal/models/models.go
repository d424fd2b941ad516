// Package models contains data structures for the application
package models

import (
	"time"
)

// TimestampLayout is the fixed, zero-padded layout of attendance timestamps.
// Lexicographic order of strings in this layout equals chronological order.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the calendar-date prefix of TimestampLayout.
const DateLayout = "2006-01-02"

// Mode selects which ledger receives incoming scans
type Mode string

const (
	ModeIdle       Mode = ""
	ModeAttendance Mode = "attendance"
	ModeBorrow     Mode = "borrow"
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	switch m {
	case ModeIdle, ModeAttendance, ModeBorrow:
		return true
	}
	return false
}

// ScanRequest represents a tag scan delivered by a reader
type ScanRequest struct {
	UID    string `json:"uid" validate:"required_without=RawUID"`
	RawUID string `json:"raw_uid" validate:"omitempty,hexadecimal"`
	Mode   Mode   `json:"mode" validate:"omitempty,oneof=attendance borrow"`
	Reader string `json:"reader"`
}

// AttendanceEntry is a single check-in; at most one exists per tag and calendar date
type AttendanceEntry struct {
	TagID     string `json:"tag_id"`
	Timestamp string `json:"timestamp"`
}

// Date returns the calendar-date portion of the timestamp
func (e AttendanceEntry) Date() string {
	if len(e.Timestamp) < len(DateLayout) {
		return e.Timestamp
	}
	return e.Timestamp[:len(DateLayout)]
}

// BorrowLog represents one borrow of an item by a tag holder
type BorrowLog struct {
	ID              string `json:"id"`
	TagID           string `json:"tagId"`
	ItemName        string `json:"itemName"`
	BorrowTimestamp int64  `json:"borrowTimestamp"`
	IsReturned      bool   `json:"isReturned"`
	ReturnTimestamp *int64 `json:"returnTimestamp"`
}

// BorrowedAt returns the borrow time
func (b BorrowLog) BorrowedAt() time.Time {
	return time.UnixMilli(b.BorrowTimestamp)
}

// ReturnedAt returns the return time, or the zero time while the item is out
func (b BorrowLog) ReturnedAt() time.Time {
	if b.ReturnTimestamp == nil {
		return time.Time{}
	}
	return time.UnixMilli(*b.ReturnTimestamp)
}

// Snapshot is the full persisted state of the logbook
type Snapshot struct {
	Nicknames  map[string]string
	Attendance []AttendanceEntry
	Borrows    []BorrowLog
}

// ScanStatus describes the most recent scan for display
type ScanStatus struct {
	Message         string    `json:"message"`
	TagID           string    `json:"tag_id,omitempty"`
	Nickname        string    `json:"nickname,omitempty"`
	Timestamp       string    `json:"timestamp,omitempty"`
	PendingNickname string    `json:"pending_nickname_tag,omitempty"`
	PendingBorrow   string    `json:"pending_borrow_tag,omitempty"`
	Mode            Mode      `json:"mode"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NicknameRequest adds or updates a nickname
type NicknameRequest struct {
	TagID    string `json:"tag_id"`
	Nickname string `json:"nickname" validate:"required"`
}

// BorrowRequest creates a borrow; an empty TagID uses the pending scanned tag
type BorrowRequest struct {
	TagID    string `json:"tag_id"`
	ItemName string `json:"item_name" validate:"required"`
}

// ImportRequest starts a nickname import from a remote JSON document
type ImportRequest struct {
	URL string `json:"url" validate:"required"`
}

// AttendanceView is an attendance entry decorated for display
type AttendanceView struct {
	TagID     string `json:"tag_id"`
	Nickname  string `json:"nickname,omitempty"`
	Date      string `json:"date"`
	Timestamp string `json:"timestamp"`
}

// BorrowView is a borrow record decorated for display
type BorrowView struct {
	BorrowLog
	Nickname string `json:"nickname,omitempty"`
	Status   string `json:"status"`
}

// Borrow statuses
const (
	BorrowActive   = "active"
	BorrowReturned = "returned"
)
