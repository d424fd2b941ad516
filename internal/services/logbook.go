// Package services implements business logic for the application
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"rfid-logbook/internal/directory"
	"rfid-logbook/internal/importer"
	"rfid-logbook/internal/ledger"
	"rfid-logbook/internal/models"
	"rfid-logbook/internal/nfc"
)

// Options tunes a Logbook
type Options struct {
	Catalog       []string
	Location      *time.Location
	WorkStartTime string // HH:MM:SS, optional
	InitialMode   models.Mode
	Now           func() time.Time
	NewID         func() string
}

// Logbook owns the attendance ledger, the borrow ledger and the nickname
// directory. All mutations are serialized and followed by a full write of
// the affected collection.
type Logbook struct {
	mu         sync.Mutex
	attendance *ledger.Attendance
	borrows    *ledger.Borrows
	names      *directory.Directory

	persist  Persister
	fetcher  NicknameFetcher
	notifier Notifier

	catalog       []string
	loc           *time.Location
	workStartTime string
	now           func() time.Time

	mode   models.Mode
	status models.ScanStatus
}

// NewLogbook creates a logbook from a loaded snapshot
func NewLogbook(snap *models.Snapshot, persist Persister, fetcher NicknameFetcher, notifier Notifier, opts Options) *Logbook {
	if snap == nil {
		snap = &models.Snapshot{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}

	now := func() time.Time { return opts.Now().In(opts.Location) }

	return &Logbook{
		attendance:    ledger.NewAttendance(snap.Attendance),
		borrows:       ledger.NewBorrows(snap.Borrows, ledger.WithClock(now), ledger.WithIDGenerator(opts.NewID)),
		names:         directory.New(snap.Nicknames),
		persist:       persist,
		fetcher:       fetcher,
		notifier:      notifier,
		catalog:       append([]string(nil), opts.Catalog...),
		loc:           opts.Location,
		workStartTime: opts.WorkStartTime,
		now:           now,
		mode:          opts.InitialMode,
		status:        models.ScanStatus{Message: "Scan a tag", Mode: opts.InitialMode},
	}
}

type nopNotifier struct{}

func (nopNotifier) SendNotification(string) {}

// Mode returns the ledger that currently receives scans
func (l *Logbook) Mode() models.Mode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mode
}

// SetMode switches the ledger that receives scans
func (l *Logbook) SetMode(mode models.Mode) error {
	if !mode.Valid() {
		return invalid("mode", fmt.Sprintf("unknown mode %q", mode))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.mode = mode
	l.status.Mode = mode
	if mode != models.ModeBorrow {
		l.status.PendingBorrow = ""
	}
	log.Infof("🔀 Scan mode set to %q", mode)
	return nil
}

// Status describes the most recent scan
func (l *Logbook) Status() models.ScanStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// HandleScan routes a scanned tag to the ledger selected by mode, or by the
// current mode when mode is empty. Scans with no active mode are ignored.
func (l *Logbook) HandleScan(uid string, mode models.Mode) (models.ScanStatus, error) {
	tagID, err := nfc.NormalizeUID(uid)
	if err != nil {
		return models.ScanStatus{}, invalid("uid", err.Error())
	}
	if !mode.Valid() {
		return models.ScanStatus{}, invalid("mode", fmt.Sprintf("unknown mode %q", mode))
	}
	if mode == models.ModeIdle {
		mode = l.Mode()
	}

	switch mode {
	case models.ModeAttendance:
		if _, err := l.RecordAttendance(tagID); err != nil {
			return models.ScanStatus{}, err
		}
	case models.ModeBorrow:
		l.selectBorrowTag(tagID)
	default:
		log.Infof("🏷️ Tag %s scanned with no active mode, ignoring", tagID)
	}
	return l.Status(), nil
}

func (l *Logbook) selectBorrowTag(tagID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	nickname, _ := l.names.Get(tagID)
	l.status = models.ScanStatus{
		Message:       describe(nickname, tagID, ""),
		TagID:         tagID,
		Nickname:      nickname,
		PendingBorrow: tagID,
		Mode:          l.mode,
		UpdatedAt:     l.now(),
	}
	log.Infof("📦 Tag %s selected for borrowing", tagID)
}

// RecordAttendance checks tagID in at the current time
func (l *Logbook) RecordAttendance(tagID string) (models.AttendanceEntry, error) {
	tagID = strings.TrimSpace(tagID)
	if tagID == "" {
		return models.AttendanceEntry{}, invalid("tag_id", "Tag ID cannot be empty.")
	}

	l.mu.Lock()
	at := l.now()
	entry := models.AttendanceEntry{TagID: tagID, Timestamp: at.Format(models.TimestampLayout)}
	first := !l.checkedInOn(tagID, entry.Date())
	entries := l.attendance.RecordScan(entry.TagID, entry.Timestamp)
	l.persist.SaveAttendance(entries)

	nickname, named := l.names.Get(tagID)
	l.status = models.ScanStatus{
		Message:   describe(nickname, tagID, entry.Timestamp),
		TagID:     tagID,
		Nickname:  nickname,
		Timestamp: entry.Timestamp,
		Mode:      l.mode,
		UpdatedAt: at,
	}
	if !named {
		l.status.PendingNickname = tagID
	}
	l.mu.Unlock()

	log.Infof("✅ Tag %s checked in at %s", tagID, entry.Timestamp)
	if first {
		l.notifier.SendNotification(checkInMessage(displayName(nickname, tagID), at, l.workStartTime))
	}
	return entry, nil
}

func (l *Logbook) checkedInOn(tagID, date string) bool {
	for _, e := range l.attendance.Entries() {
		if e.TagID == tagID && e.Date() == date {
			return true
		}
	}
	return false
}

// DeleteAttendance removes one entry; unknown entries are ignored
func (l *Logbook) DeleteAttendance(entry models.AttendanceEntry) []models.AttendanceEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.attendance.Delete(entry)
	l.persist.SaveAttendance(entries)
	return entries
}

// ClearAttendance removes every entry
func (l *Logbook) ClearAttendance() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.persist.SaveAttendance(l.attendance.Clear())
	log.Info("🧹 Attendance history cleared")
}

// Attendance returns the filtered attendance view
func (l *Logbook) Attendance(f ledger.Filter) []models.AttendanceView {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := ledger.FilterAttendance(l.attendance.Entries(), l.names, f)
	views := make([]models.AttendanceView, len(entries))
	for i, e := range entries {
		nickname, _ := l.names.Get(e.TagID)
		views[i] = models.AttendanceView{
			TagID:     e.TagID,
			Nickname:  nickname,
			Date:      e.Date(),
			Timestamp: e.Timestamp,
		}
	}
	return views
}

// Catalog returns the loanable item names
func (l *Logbook) Catalog() []string {
	return append([]string(nil), l.catalog...)
}

func (l *Logbook) inCatalog(item string) bool {
	for _, c := range l.catalog {
		if c == item {
			return true
		}
	}
	return false
}

// CreateBorrow lends itemName to tagID. An empty tagID uses the tag most
// recently scanned in borrow mode.
func (l *Logbook) CreateBorrow(tagID, itemName string) (models.BorrowLog, error) {
	itemName = strings.TrimSpace(itemName)

	l.mu.Lock()
	tagID = strings.TrimSpace(tagID)
	if tagID == "" {
		tagID = l.status.PendingBorrow
	}
	if tagID == "" {
		l.mu.Unlock()
		return models.BorrowLog{}, invalid("tag_id", "Scan a tag first.")
	}
	tagID = canonicalTag(tagID)
	if itemName == "" {
		l.mu.Unlock()
		return models.BorrowLog{}, invalid("item_name", "Select an item.")
	}
	if !l.inCatalog(itemName) {
		l.mu.Unlock()
		return models.BorrowLog{}, invalid("item_name", fmt.Sprintf("%q is not a loanable item.", itemName))
	}

	borrow, logs := l.borrows.Create(tagID, itemName)
	l.persist.SaveBorrows(logs)
	l.status.PendingBorrow = ""
	nickname, _ := l.names.Get(tagID)
	l.mu.Unlock()

	log.Infof("📦 %s borrowed %s", tagID, itemName)
	l.notifier.SendNotification(fmt.Sprintf("📦 *%s* borrowed `%s` at `%s`",
		displayName(nickname, tagID), itemName, borrow.BorrowedAt().In(l.loc).Format(models.TimestampLayout)))
	return borrow, nil
}

// ReturnBorrow marks a borrow as returned. It reports false when the id is
// unknown or the item was already returned; neither is an error.
func (l *Logbook) ReturnBorrow(id string) (models.BorrowLog, bool) {
	l.mu.Lock()
	returned, ok, logs := l.borrows.RecordReturn(id)
	if !ok {
		l.mu.Unlock()
		return models.BorrowLog{}, false
	}
	l.persist.SaveBorrows(logs)
	nickname, _ := l.names.Get(returned.TagID)
	l.mu.Unlock()

	log.Infof("↩️ %s returned %s", returned.TagID, returned.ItemName)
	l.notifier.SendNotification(fmt.Sprintf("↩️ *%s* returned `%s` at `%s`",
		displayName(nickname, returned.TagID), returned.ItemName, returned.ReturnedAt().In(l.loc).Format(models.TimestampLayout)))
	return returned, true
}

// DeleteBorrow removes a record; unknown ids are ignored
func (l *Logbook) DeleteBorrow(id string) []models.BorrowLog {
	l.mu.Lock()
	defer l.mu.Unlock()

	logs := l.borrows.Delete(id)
	l.persist.SaveBorrows(logs)
	return logs
}

// ClearBorrows removes every record
func (l *Logbook) ClearBorrows() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.persist.SaveBorrows(l.borrows.Clear())
	log.Info("🧹 Borrow history cleared")
}

// Borrows returns the filtered borrow view
func (l *Logbook) Borrows(f ledger.Filter) []models.BorrowView {
	l.mu.Lock()
	defer l.mu.Unlock()

	logs := ledger.FilterBorrows(l.borrows.Logs(), l.names, f, l.loc)
	views := make([]models.BorrowView, len(logs))
	for i, b := range logs {
		nickname, _ := l.names.Get(b.TagID)
		status := models.BorrowActive
		if b.IsReturned {
			status = models.BorrowReturned
		}
		views[i] = models.BorrowView{BorrowLog: b, Nickname: nickname, Status: status}
	}
	return views
}

// Nickname returns the nickname of tagID
func (l *Logbook) Nickname(tagID string) (string, bool) {
	return l.names.Get(canonicalTag(tagID))
}

// Nicknames returns a copy of the directory
func (l *Logbook) Nicknames() map[string]string {
	return l.names.Snapshot()
}

// SetNickname assigns or replaces the nickname of tagID
func (l *Logbook) SetNickname(tagID, nickname string) error {
	return l.updateNickname(tagID, nickname, l.names.Set)
}

// AddNickname assigns a nickname to a tag that has none
func (l *Logbook) AddNickname(tagID, nickname string) error {
	return l.updateNickname(tagID, nickname, l.names.Add)
}

func (l *Logbook) updateNickname(tagID, nickname string, apply func(string, string) error) error {
	tagID = canonicalTag(tagID)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := apply(tagID, nickname); err != nil {
		return directoryError(err)
	}
	l.persist.SaveNicknames(l.names.Snapshot())

	if l.status.PendingNickname == tagID {
		name, _ := l.names.Get(tagID)
		l.status.PendingNickname = ""
		l.status.Nickname = name
		l.status.Message = describe(name, tagID, l.status.Timestamp)
	}
	log.Infof("🏷️ Nickname for %s set to %q", tagID, strings.TrimSpace(nickname))
	return nil
}

// RemoveNickname forgets the nickname of tagID
func (l *Logbook) RemoveNickname(tagID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.names.Remove(canonicalTag(tagID))
	l.persist.SaveNicknames(l.names.Snapshot())
}

// ReplaceNicknames swaps the whole directory
func (l *Logbook) ReplaceNicknames(mapping map[string]string) {
	canonical := canonicalNicknames(mapping)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.names.ReplaceAll(canonical)
	l.persist.SaveNicknames(l.names.Snapshot())
}

// ClearNicknames empties the directory
func (l *Logbook) ClearNicknames() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.names.Clear()
	l.persist.SaveNicknames(l.names.Snapshot())
	log.Info("🧹 Nicknames cleared")
}

// ImportNicknames downloads a nickname dictionary and merges it into the
// directory. It returns the number of valid entries in the document.
func (l *Logbook) ImportNicknames(ctx context.Context, rawURL string) (int, error) {
	if l.fetcher == nil {
		return 0, &importer.Error{Message: "Import is not available."}
	}

	result, err := l.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		log.Warnf("⚠️ Nickname import from %s failed: %v", rawURL, err)
		return 0, err
	}

	canonical := canonicalNicknames(result.Nicknames)

	l.mu.Lock()
	l.names.Merge(canonical)
	l.persist.SaveNicknames(l.names.Snapshot())
	l.mu.Unlock()

	log.Infof("📥 Imported %d nickname(s) from %s", result.Count, rawURL)
	return result.Count, nil
}

// Snapshot returns copies of all three collections
func (l *Logbook) Snapshot() models.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	return models.Snapshot{
		Nicknames:  l.names.Snapshot(),
		Attendance: l.attendance.Entries(),
		Borrows:    l.borrows.Logs(),
	}
}

// Location is the time zone used for dates and display
func (l *Logbook) Location() *time.Location {
	return l.loc
}

// Now returns the current time in the logbook's time zone
func (l *Logbook) Now() time.Time {
	return l.now()
}

// canonicalTag normalizes hex tag ids and leaves anything else trimmed
func canonicalTag(tagID string) string {
	if normalized, err := nfc.NormalizeUID(tagID); err == nil {
		return normalized
	}
	return strings.TrimSpace(tagID)
}

// canonicalNicknames rekeys mapping by canonical tag id. When several keys
// collapse onto one tag, a key already in canonical form wins, then the
// lexically smallest raw key.
func canonicalNicknames(mapping map[string]string) map[string]string {
	keys := make([]string, 0, len(mapping))
	for tagID := range mapping {
		keys = append(keys, tagID)
	}
	sort.Strings(keys)

	canonical := make(map[string]string, len(mapping))
	exact := make(map[string]bool, len(mapping))
	for _, tagID := range keys {
		key := canonicalTag(tagID)
		isExact := key == tagID
		if _, seen := canonical[key]; seen && (exact[key] || !isExact) {
			continue
		}
		canonical[key] = mapping[tagID]
		exact[key] = isExact
	}
	return canonical
}

func directoryError(err error) error {
	switch err {
	case directory.ErrEmptyTagID:
		return invalid("tag_id", "Tag ID cannot be empty.")
	case directory.ErrEmptyNickname:
		return invalid("nickname", "Nickname cannot be empty.")
	case directory.ErrTagExists:
		return invalid("tag_id", "Tag ID already exists.")
	}
	return err
}

// displayName is the Markdown-safe name used in notifications
func displayName(nickname, tagID string) string {
	if nickname != "" {
		return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, nickname)
	}
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, tagID)
}

func describe(nickname, tagID, timestamp string) string {
	var b strings.Builder
	if nickname != "" {
		fmt.Fprintf(&b, "Nickname: %s\n", nickname)
	}
	fmt.Fprintf(&b, "Tag ID: %s", tagID)
	if timestamp != "" {
		fmt.Fprintf(&b, "\nTimestamp: %s", timestamp)
	}
	return b.String()
}
