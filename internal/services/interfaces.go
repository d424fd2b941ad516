package services

import (
	"context"
	"time"

	"rfid-logbook/internal/importer"
	"rfid-logbook/internal/ledger"
	"rfid-logbook/internal/models"
)

// Persister saves whole collections after every mutation
type Persister interface {
	SaveNicknames(nicknames map[string]string)
	SaveAttendance(entries []models.AttendanceEntry)
	SaveBorrows(logs []models.BorrowLog)
}

// NicknameFetcher downloads a nickname dictionary
type NicknameFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*importer.Result, error)
}

// Notifier defines the interface for bot notifications
type Notifier interface {
	SendNotification(message string)
}

// ScanHandler routes tag scans; implemented by Logbook
type ScanHandler interface {
	HandleScan(uid string, mode models.Mode) (models.ScanStatus, error)
}

// LogbookService is the ledger surface driven by the API and the bot
type LogbookService interface {
	ScanHandler

	Mode() models.Mode
	SetMode(mode models.Mode) error
	Status() models.ScanStatus

	Attendance(f ledger.Filter) []models.AttendanceView
	DeleteAttendance(entry models.AttendanceEntry) []models.AttendanceEntry
	ClearAttendance()

	Catalog() []string
	Borrows(f ledger.Filter) []models.BorrowView
	CreateBorrow(tagID, itemName string) (models.BorrowLog, error)
	ReturnBorrow(id string) (models.BorrowLog, bool)
	DeleteBorrow(id string) []models.BorrowLog
	ClearBorrows()

	Nickname(tagID string) (string, bool)
	Nicknames() map[string]string
	AddNickname(tagID, nickname string) error
	SetNickname(tagID, nickname string) error
	RemoveNickname(tagID string)
	ReplaceNicknames(mapping map[string]string)
	ClearNicknames()
	ImportNicknames(ctx context.Context, rawURL string) (int, error)

	Location() *time.Location
	Now() time.Time
}

var _ LogbookService = (*Logbook)(nil)
